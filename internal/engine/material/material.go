// Package material describes the surface appearance state a mapper renders with.
package material

import "github.com/Faultbox/meshgl/pkg/mtime"

// Representation selects how cells are drawn.
type Representation int

const (
	Points Representation = iota
	Wireframe
	Surface
)

func (r Representation) String() string {
	switch r {
	case Points:
		return "points"
	case Wireframe:
		return "wireframe"
	case Surface:
		return "surface"
	}
	return "unknown"
}

// Interpolation selects the shading model. Flat disables point normals.
type Interpolation int

const (
	Flat Interpolation = iota
	Gouraud
	Phong
)

// ScalarMode selects which colors a mapper draws with when both point and
// cell colors are available.
type ScalarMode int

const (
	// ScalarDefault prefers point colors, then cell colors.
	ScalarDefault ScalarMode = iota
	ScalarPoint
	ScalarCell
)

// ParseScalarMode converts a config string to a ScalarMode. Unknown values
// map to ScalarDefault.
func ParseScalarMode(s string) ScalarMode {
	switch s {
	case "point":
		return ScalarPoint
	case "cell":
		return ScalarCell
	}
	return ScalarDefault
}

// Mode selects which lighting terms vertex colors feed.
type Mode int

const (
	// ModeDefault picks ambient when the ambient intensity exceeds the
	// diffuse intensity and diffuse otherwise.
	ModeDefault Mode = iota
	ModeAmbient
	ModeDiffuse
	ModeAmbientAndDiffuse
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeAmbient:
		return "ambient"
	case ModeDiffuse:
		return "diffuse"
	case ModeAmbientAndDiffuse:
		return "ambient_and_diffuse"
	}
	return "unknown"
}

// ParseMode converts a config string to a Mode. Unknown values map to ModeDefault.
func ParseMode(s string) Mode {
	switch s {
	case "ambient":
		return ModeAmbient
	case "diffuse":
		return ModeDiffuse
	case "ambient_and_diffuse":
		return ModeAmbientAndDiffuse
	}
	return ModeDefault
}

// Material is the appearance of one actor.
// Call Modified after changing any field that affects shading.
type Material struct {
	Opacity float32

	AmbientColor  [3]float32
	Ambient       float32
	DiffuseColor  [3]float32
	Diffuse       float32
	SpecularColor [3]float32
	Specular      float32
	SpecularPower float32

	Representation Representation
	Interpolation  Interpolation
	Lighting       bool

	EdgeVisibility bool
	EdgeColor      [3]float32

	PointSize float32
	LineWidth float32

	// Texture is a texture handle owned by the caller, 0 when untextured.
	Texture uint32

	mtime mtime.Stamp
}

// Default returns an opaque white lit surface material.
func Default() *Material {
	m := &Material{
		Opacity:        1,
		AmbientColor:   [3]float32{1, 1, 1},
		Ambient:        0,
		DiffuseColor:   [3]float32{1, 1, 1},
		Diffuse:        1,
		SpecularColor:  [3]float32{1, 1, 1},
		Specular:       0,
		SpecularPower:  1,
		Representation: Surface,
		Interpolation:  Gouraud,
		Lighting:       true,
		EdgeColor:      [3]float32{0, 0, 0},
		PointSize:      1,
		LineWidth:      1,
	}
	m.Modified()
	return m
}

// Modified marks the material as changed.
func (m *Material) Modified() { m.mtime.Modified() }

// MTime returns the tick of the last modification.
func (m *Material) MTime() uint64 { return m.mtime.Time() }

// Edges derives the material used to draw surface edges: untextured unlit
// wireframe in the edge color. The result shares m's modification time so it only
// changes when m does.
func (m *Material) Edges() *Material {
	e := *m
	e.Lighting = false
	e.AmbientColor = m.EdgeColor
	e.Ambient = 1
	e.Diffuse = 0
	e.Specular = 0
	e.Representation = Wireframe
	e.EdgeVisibility = false
	e.Texture = 0
	return &e
}

// DrawsEdges reports whether an edge pass is needed on top of the surface.
func (m *Material) DrawsEdges() bool {
	return m.EdgeVisibility && m.Representation == Surface
}

// ColorsAmbient reports whether vertex colors replace the ambient term
// under the given mode.
func (m *Material) ColorsAmbient(mode Mode) bool {
	return mode == ModeAmbient || (mode == ModeDefault && m.Ambient > m.Diffuse)
}

// ColorsDiffuse reports whether vertex colors replace only the diffuse term.
func (m *Material) ColorsDiffuse(mode Mode) bool {
	return mode == ModeDiffuse || (mode == ModeDefault && m.Ambient <= m.Diffuse)
}
