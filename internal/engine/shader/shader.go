// Package shader builds GLSL program sources for mesh primitives.
//
// A fixed set of templates carries placeholder markers that Build replaces
// with feature-specific text. Substitution always runs color, normal,
// texture coordinate, picking and depth peeling in that order, so the same
// FeatureState yields byte-identical sources.
package shader

import (
	"fmt"
	"strings"

	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/shader/templates"
)

// Marker is a placeholder line inside a shader template.
type Marker string

const (
	ColorDec         Marker = "//MESH::Color::Dec"
	ColorImpl        Marker = "//MESH::Color::Impl"
	NormalDec        Marker = "//MESH::Normal::Dec"
	NormalImpl       Marker = "//MESH::Normal::Impl"
	TCoordDec        Marker = "//MESH::TCoord::Dec"
	TCoordImpl       Marker = "//MESH::TCoord::Impl"
	PickingDec       Marker = "//MESH::Picking::Dec"
	PickingImpl      Marker = "//MESH::Picking::Impl"
	DepthPeelingDec  Marker = "//MESH::DepthPeeling::Dec"
	DepthPeelingImpl Marker = "//MESH::DepthPeeling::Impl"
)

// Markers lists every marker in substitution order.
var Markers = []Marker{
	ColorDec, ColorImpl,
	NormalDec, NormalImpl,
	TCoordDec, TCoordImpl,
	PickingDec, PickingImpl,
	DepthPeelingDec, DepthPeelingImpl,
}

// Replace substitutes every occurrence of m in src with text.
func Replace(src string, m Marker, text string) string {
	return strings.ReplaceAll(src, string(m), text)
}

// ColorTerm selects which material terms vertex colors replace.
type ColorTerm int

const (
	// ColorDiffuse replaces the diffuse color, keeping the ambient uniform.
	ColorDiffuse ColorTerm = iota
	// ColorAmbient replaces the ambient color, keeping the diffuse uniform.
	ColorAmbient
	// ColorAmbientAndDiffuse replaces both.
	ColorAmbientAndDiffuse
)

func (c ColorTerm) String() string {
	switch c {
	case ColorDiffuse:
		return "diffuse"
	case ColorAmbient:
		return "ambient"
	case ColorAmbientAndDiffuse:
		return "ambient_and_diffuse"
	}
	return fmt.Sprintf("ColorTerm(%d)", int(c))
}

// ResolveColorTerm picks the color term for a material and color mode.
// The default mode favours whichever of ambient and diffuse intensity is
// larger, diffuse on a tie.
func ResolveColorTerm(m *material.Material, mode material.Mode) ColorTerm {
	switch {
	case mode == material.ModeAmbientAndDiffuse:
		return ColorAmbientAndDiffuse
	case m.ColorsAmbient(mode):
		return ColorAmbient
	}
	return ColorDiffuse
}

// FeatureState is every input that changes generated shader text.
type FeatureState struct {
	Lighting       lighting.Complexity
	HasVertexColor bool
	ColorTerm      ColorTerm
	HasNormals     bool
	HasTCoord1D    bool
	HasTCoord2D    bool
	Wireframe      bool
	Points         bool
	Picking        bool
	DepthPeeling   bool
}

// String renders the state compactly for logs.
func (f FeatureState) String() string {
	var b strings.Builder
	b.WriteString(f.Lighting.String())
	flag := func(on bool, name string) {
		if on {
			b.WriteByte('+')
			b.WriteString(name)
		}
	}
	if f.HasVertexColor {
		b.WriteString("+color:")
		b.WriteString(f.ColorTerm.String())
	}
	flag(f.HasNormals, "normals")
	flag(f.HasTCoord1D, "tcoord1d")
	flag(f.HasTCoord2D, "tcoord2d")
	flag(f.Wireframe, "wireframe")
	flag(f.Points, "points")
	flag(f.Picking, "picking")
	flag(f.DepthPeeling, "peeling")
	return b.String()
}

// Source is a program's stage sources. Geometry is empty when unused.
type Source struct {
	Vertex   string
	Fragment string
	Geometry string
}

// Build specializes the templates for f.
func Build(f FeatureState) Source {
	s := templatesFor(f.Lighting)
	s = replaceColor(s, f)
	s = replaceNormal(s, f)
	s = replaceTCoord(s, f)
	s = replacePicking(s, f)
	s = replaceDepthPeeling(s, f)
	return s
}

func templatesFor(c lighting.Complexity) Source {
	switch c {
	case lighting.Headlight:
		return Source{Vertex: templates.VertexFragmentLit, Fragment: templates.FragmentHeadlight}
	case lighting.LightKit:
		return Source{Vertex: templates.VertexFragmentLit, Fragment: templates.FragmentLightKit}
	case lighting.Positional:
		return Source{Vertex: templates.VertexFragmentLit, Fragment: templates.FragmentPositional}
	}
	return Source{Vertex: templates.VertexNoLighting, Fragment: templates.FragmentUnlit}
}

func sub(stage *string, m Marker, text string) {
	*stage = Replace(*stage, m, text)
}

func replaceColor(s Source, f FeatureState) Source {
	if f.HasVertexColor {
		sub(&s.Vertex, ColorDec, "in vec4 scalarColor;\nout vec4 vertexColorVSOutput;")
		sub(&s.Vertex, ColorImpl, "vertexColorVSOutput = scalarColor;")
		sub(&s.Fragment, ColorDec, "in vec4 vertexColorVSOutput;")
		switch f.ColorTerm {
		case ColorAmbient:
			sub(&s.Fragment, ColorImpl,
				"vec3 ambientColor = vertexColorVSOutput.rgb;\n"+
					"  vec3 diffuseColor = diffuseColorUniform.rgb;\n"+
					"  float opacity = vertexColorVSOutput.a;")
		case ColorAmbientAndDiffuse:
			sub(&s.Fragment, ColorImpl,
				"vec3 ambientColor = vertexColorVSOutput.rgb;\n"+
					"  vec3 diffuseColor = vertexColorVSOutput.rgb;\n"+
					"  float opacity = vertexColorVSOutput.a;")
		default:
			sub(&s.Fragment, ColorImpl,
				"vec3 diffuseColor = vertexColorVSOutput.rgb;\n"+
					"  vec3 ambientColor = ambientColorUniform;\n"+
					"  float opacity = vertexColorVSOutput.a;")
		}
		return s
	}
	sub(&s.Fragment, ColorImpl,
		"vec3 ambientColor = ambientColorUniform;\n"+
			"  vec3 diffuseColor = diffuseColorUniform;\n"+
			"  float opacity = opacityUniform;")
	return s
}

// WireframeNormal is the fragment normal for lit lines without point
// normals. The longer screen derivative is the line direction; the normal
// is perpendicular to it and faces the viewer. A line seen end-on gets
// +z.
const WireframeNormal = "vec3 fdx = dFdx(vertexVC.xyz);\n" +
	"  vec3 fdy = dFdy(vertexVC.xyz);\n" +
	"  vec3 lineDir = dot(fdx, fdx) > dot(fdy, fdy) ? fdx : fdy;\n" +
	"  vec3 lineN = cross(vec3(lineDir.y, -lineDir.x, 0.0), lineDir);\n" +
	"  vec3 normalVC = dot(lineN, lineN) > 0.0 ? normalize(lineN) : vec3(0.0, 0.0, 1.0);\n" +
	"  if (normalVC.z < 0.0) { normalVC = -1.0*normalVC; }"

func replaceNormal(s Source, f FeatureState) Source {
	if f.Lighting == lighting.NoLighting {
		return s
	}
	if f.HasNormals {
		sub(&s.Vertex, NormalDec, "in vec3 normalMC;\nout vec3 normalVCVSOutput;")
		sub(&s.Vertex, NormalImpl, "normalVCVSOutput = normalMatrix * normalMC;")
		sub(&s.Fragment, NormalDec, "in vec3 normalVCVSOutput;")
		sub(&s.Fragment, NormalImpl,
			"vec3 normalVC = normalize(gl_FrontFacing ? normalVCVSOutput : -normalVCVSOutput);")
		return s
	}
	if f.Wireframe {
		// Lines have no face to differentiate across.
		sub(&s.Fragment, NormalImpl, WireframeNormal)
		return s
	}
	sub(&s.Fragment, NormalImpl,
		"vec3 normalVC = normalize(cross(dFdx(vertexVC.xyz), dFdy(vertexVC.xyz)));\n"+
			"  if (normalVC.z < 0.0) { normalVC = -1.0*normalVC; }")
	return s
}

func replaceTCoord(s Source, f FeatureState) Source {
	var typ, lookup string
	switch {
	case f.HasTCoord1D:
		typ, lookup = "float", "vec2(tcoordVCVSOutput,0.0)"
	case f.HasTCoord2D:
		typ, lookup = "vec2", "tcoordVCVSOutput.st"
	default:
		return s
	}
	sub(&s.Vertex, TCoordDec, "in "+typ+" tcoordMC;\nout "+typ+" tcoordVCVSOutput;")
	sub(&s.Vertex, TCoordImpl, "tcoordVCVSOutput = tcoordMC;")
	sub(&s.Fragment, TCoordDec, "in "+typ+" tcoordVCVSOutput;\nuniform sampler2D texture1;")
	sub(&s.Fragment, TCoordImpl, "fragOutput0 = fragOutput0*texture(texture1, "+lookup+");")
	return s
}

func replacePicking(s Source, f FeatureState) Source {
	if !f.Picking {
		return s
	}
	sub(&s.Fragment, PickingDec, "uniform vec3 mapperIndex;")
	sub(&s.Fragment, PickingImpl,
		"if (mapperIndex == vec3(0.0,0.0,0.0))\n"+
			"  {\n"+
			"    int idx = gl_PrimitiveID + 1;\n"+
			"    fragOutput0 = vec4(float(idx%256)/255.0, float((idx/256)%256)/255.0, float(idx/65536)/255.0, 1.0);\n"+
			"  }\n"+
			"  else\n"+
			"  {\n"+
			"    fragOutput0 = vec4(mapperIndex,1.0);\n"+
			"  }")
	return s
}

func replaceDepthPeeling(s Source, f FeatureState) Source {
	if !f.DepthPeeling {
		return s
	}
	sub(&s.Fragment, DepthPeelingDec,
		"uniform sampler2D opaqueZTexture;\nuniform sampler2D translucentZTexture;")
	sub(&s.Fragment, DepthPeelingImpl,
		"float odepth = texelFetch(opaqueZTexture, ivec2(gl_FragCoord.xy), 0).r;\n"+
			"  if (gl_FragCoord.z >= odepth) { discard; }\n"+
			"  float tdepth = texelFetch(translucentZTexture, ivec2(gl_FragCoord.xy), 0).r;\n"+
			"  if (gl_FragCoord.z <= tdepth) { discard; }")
	return s
}
