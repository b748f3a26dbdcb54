package mapper

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/pkg/mtime"
)

// Camera carries the matrices of the current view.
type Camera struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	// Model places the mesh in the world. The zero value is treated as identity.
	Model mgl32.Mat4
}

func (c Camera) model() mgl32.Mat4 {
	if c.Model == (mgl32.Mat4{}) {
		return mgl32.Ident4()
	}
	return c.Model
}

// Pass is a hardware selection pass.
type Pass int

const (
	// PassProp renders each prop in its own flat color.
	PassProp Pass = iota
	// PassIDLow24 encodes the low 24 bits of the primitive id.
	PassIDLow24
	// PassIDHigh24 encodes the high 24 bits of the primitive id.
	PassIDHigh24
)

func (p Pass) String() string {
	switch p {
	case PassProp:
		return "prop"
	case PassIDLow24:
		return "id_low24"
	case PassIDHigh24:
		return "id_high24"
	}
	return fmt.Sprintf("Pass(%d)", int(p))
}

// Selection describes an active picking render.
type Selection struct {
	Pass Pass
	// PropColor overrides PickID when non-zero.
	PropColor [3]float32
	PickID    uint32

	mtime mtime.Stamp
}

// NewSelection returns a selection in the prop pass.
func NewSelection(pickID uint32) *Selection {
	s := &Selection{PickID: pickID}
	s.Modified()
	return s
}

// Modified marks the selection as changed.
func (s *Selection) Modified() { s.mtime.Modified() }

// MTime returns the tick of the last modification, 0 for nil.
func (s *Selection) MTime() uint64 {
	if s == nil {
		return 0
	}
	return s.mtime.Time()
}

// MapperIndex returns the color written by the picking shader.
// The low id pass writes zero so the shader encodes primitive ids instead.
func (s *Selection) MapperIndex() [3]float32 {
	switch {
	case s.Pass == PassIDLow24:
		return [3]float32{}
	case s.PropColor != [3]float32{}:
		return s.PropColor
	}
	return IDToColor(s.PickID)
}

// IDToColor encodes the low 24 bits of id as an RGB color.
func IDToColor(id uint32) [3]float32 {
	return [3]float32{
		float32(id&0xff) / 255,
		float32(id>>8&0xff) / 255,
		float32(id>>16&0xff) / 255,
	}
}

// ColorToID decodes a pixel read back from a selection pass. Zero means
// nothing was drawn there; the low id pass stores primitive id plus one.
func ColorToID(px [4]byte) uint32 {
	return uint32(px[0]) | uint32(px[1])<<8 | uint32(px[2])<<16
}

// DepthPeeling carries the depth textures of an active peeling pass.
type DepthPeeling struct {
	OpaqueZ      uint32
	TranslucentZ uint32

	mtime mtime.Stamp
}

// NewDepthPeeling returns a peeling pass over the two depth textures.
func NewDepthPeeling(opaqueZ, translucentZ uint32) *DepthPeeling {
	d := &DepthPeeling{OpaqueZ: opaqueZ, TranslucentZ: translucentZ}
	d.Modified()
	return d
}

// Modified marks the pass as changed.
func (d *DepthPeeling) Modified() { d.mtime.Modified() }

// MTime returns the tick of the last modification, 0 for nil.
func (d *DepthPeeling) MTime() uint64 {
	if d == nil {
		return 0
	}
	return d.mtime.Time()
}

// Frame is everything a mapper needs to draw once.
type Frame struct {
	Material *material.Material
	Lights   []lighting.Light
	Camera   Camera

	// Selection is nil outside picking renders.
	Selection *Selection
	// DepthPeeling is nil outside peeling renders.
	DepthPeeling *DepthPeeling
}
