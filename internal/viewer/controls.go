package viewer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/mapper"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/scene"
)

type lightSetup int

const (
	setupHeadlight lightSetup = iota
	setupKit
	setupSpot
	numSetups
)

func (s lightSetup) String() string {
	switch s {
	case setupHeadlight:
		return "headlight"
	case setupKit:
		return "light kit"
	case setupSpot:
		return "light kit + spot"
	}
	return "unknown"
}

func cameraLight(intensity, azimuth, elevation float32) lighting.Light {
	return lighting.Light{
		On:          true,
		Kind:        lighting.KindCamera,
		Color:       [3]float32{1, 1, 1},
		Intensity:   intensity,
		Position:    lighting.DirectionFromAngles(azimuth, elevation),
		Attenuation: [3]float32{1, 0, 0},
	}
}

func lightsFor(s lightSetup) []lighting.Light {
	switch s {
	case setupKit, setupSpot:
		kit := []lighting.Light{
			cameraLight(0.75, 10, 50),   // key
			cameraLight(0.25, -60, -10), // fill
			cameraLight(0.2, 110, 0),    // back
		}
		if s == setupSpot {
			kit = append(kit, lighting.Light{
				On:          true,
				Kind:        lighting.KindScene,
				Color:       [3]float32{1, 0.9, 0.7},
				Intensity:   1,
				Position:    [3]float32{0, 2, 3},
				Positional:  true,
				Attenuation: [3]float32{1, 0.1, 0},
				ConeAngle:   25,
				Exponent:    4,
			})
		}
		return kit
	}
	return []lighting.Light{lighting.NewHeadlight()}
}

// controls maps key presses onto scene state.
type controls struct {
	scene      *scene.Scene
	texture    uint32
	textured   bool
	lights     lightSetup
	scalars    bool
	coincident mapper.Coincident
}

func newControls(s *scene.Scene, texture uint32, scalars bool, coincident mapper.Coincident) *controls {
	c := &controls{
		scene:      s,
		texture:    texture,
		textured:   texture != 0,
		scalars:    scalars,
		coincident: coincident,
	}
	c.applyTexture()
	return c
}

func (c *controls) eachMaterial(fn func(m *material.Material)) {
	for _, a := range c.scene.Actors {
		fn(a.Material)
		a.Material.Modified()
	}
}

func (c *controls) applyTexture() {
	for _, a := range c.scene.Actors {
		if a.Mapper.Input().TCoords == nil {
			continue
		}
		tex := uint32(0)
		if c.textured {
			tex = c.texture
		}
		if a.Material.Texture != tex {
			a.Material.Texture = tex
			a.Material.Modified()
		}
	}
}

// handleKey applies key and describes the change. Unbound keys report false.
func (c *controls) handleKey(key sdl.Scancode) (string, bool) {
	switch key {
	case sdl.SCANCODE_W:
		var rep material.Representation
		c.eachMaterial(func(m *material.Material) {
			m.Representation = (m.Representation + 2) % 3
			rep = m.Representation
		})
		return "representation: " + rep.String(), true

	case sdl.SCANCODE_E:
		on := false
		c.eachMaterial(func(m *material.Material) {
			m.EdgeVisibility = !m.EdgeVisibility
			on = m.EdgeVisibility
		})
		return fmt.Sprintf("edges: %t", on), true

	case sdl.SCANCODE_L:
		on := false
		c.eachMaterial(func(m *material.Material) {
			m.Lighting = !m.Lighting
			on = m.Lighting
		})
		return fmt.Sprintf("lighting: %t", on), true

	case sdl.SCANCODE_K:
		c.lights = (c.lights + 1) % numSetups
		c.scene.Lights = lightsFor(c.lights)
		return "lights: " + c.lights.String(), true

	case sdl.SCANCODE_S:
		c.scalars = !c.scalars
		for _, a := range c.scene.Actors {
			a.Mapper.SetScalarVisibility(c.scalars)
		}
		return fmt.Sprintf("scalars: %t", c.scalars), true

	case sdl.SCANCODE_C:
		if c.coincident == mapper.CoincidentOff {
			c.coincident = mapper.CoincidentPolygonOffset
		} else {
			c.coincident = mapper.CoincidentOff
		}
		for _, a := range c.scene.Actors {
			a.Mapper.SetResolveCoincidentTopology(c.coincident)
		}
		return "coincident topology: " + c.coincident.String(), true

	case sdl.SCANCODE_T:
		if c.texture == 0 {
			return "no texture loaded", true
		}
		c.textured = !c.textured
		c.applyTexture()
		return fmt.Sprintf("texture: %t", c.textured), true

	case sdl.SCANCODE_O:
		opacity := float32(1)
		c.eachMaterial(func(m *material.Material) {
			if m.Opacity >= 1 {
				m.Opacity = 0.5
			} else {
				m.Opacity = 1
			}
			opacity = m.Opacity
		})
		return fmt.Sprintf("opacity: %.1f", opacity), true
	}
	return "", false
}
