package viewer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/meshgl/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/mapper"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/scene"
)

func newTestControls(t *testing.T, texture uint32) (*controls, *scene.Scene) {
	log := zaptest.NewLogger(t)
	s := scene.New(mapper.NewContext(gputest.New(), log), log)
	s.Add("grid", scene.Grid(2, 2, 1), material.Default(), mgl32.Ident4())
	s.Add("arrow", scene.Arrow(), material.Default(), mgl32.Ident4())
	return newControls(s, texture, true, mapper.CoincidentPolygonOffset), s
}

func TestLightSetupsClassify(t *testing.T) {
	assert.Equal(t, lighting.Headlight, lighting.Classify(lightsFor(setupHeadlight)))
	assert.Equal(t, lighting.LightKit, lighting.Classify(lightsFor(setupKit)))
	assert.Equal(t, lighting.Positional, lighting.Classify(lightsFor(setupSpot)))
}

func TestRepresentationCycle(t *testing.T) {
	c, s := newTestControls(t, 0)
	want := []material.Representation{material.Wireframe, material.Points, material.Surface}
	for _, rep := range want {
		before := s.Actors[0].Material.MTime()
		msg, ok := c.handleKey(sdl.SCANCODE_W)
		require.True(t, ok)
		assert.Equal(t, "representation: "+rep.String(), msg)
		for _, a := range s.Actors {
			assert.Equal(t, rep, a.Material.Representation)
		}
		assert.Greater(t, s.Actors[0].Material.MTime(), before)
	}
}

func TestToggles(t *testing.T) {
	c, s := newTestControls(t, 0)

	_, ok := c.handleKey(sdl.SCANCODE_E)
	require.True(t, ok)
	assert.True(t, s.Actors[0].Material.EdgeVisibility)

	c.handleKey(sdl.SCANCODE_L)
	assert.False(t, s.Actors[1].Material.Lighting)

	c.handleKey(sdl.SCANCODE_O)
	assert.Equal(t, float32(0.5), s.Actors[0].Material.Opacity)
	assert.False(t, s.Actors[0].Opaque())

	msg, _ := c.handleKey(sdl.SCANCODE_C)
	assert.Equal(t, "coincident topology: off", msg)

	before := s.Actors[0].Mapper.MTime()
	c.handleKey(sdl.SCANCODE_S)
	assert.False(t, c.scalars)
	assert.Greater(t, s.Actors[0].Mapper.MTime(), before)

	msg, _ = c.handleKey(sdl.SCANCODE_K)
	assert.Equal(t, "lights: light kit", msg)
	assert.Len(t, s.Lights, 3)

	_, ok = c.handleKey(sdl.SCANCODE_Q)
	assert.False(t, ok)
}

func TestTextureOnlyOnTexturedMeshes(t *testing.T) {
	c, s := newTestControls(t, 9)
	grid, arrow := s.Actors[0], s.Actors[1]
	assert.Equal(t, uint32(9), grid.Material.Texture)
	assert.Zero(t, arrow.Material.Texture)

	msg, _ := c.handleKey(sdl.SCANCODE_T)
	assert.Equal(t, "texture: false", msg)
	assert.Zero(t, grid.Material.Texture)

	c, _ = newTestControls(t, 0)
	msg, _ = c.handleKey(sdl.SCANCODE_T)
	assert.Equal(t, "no texture loaded", msg)
}
