package lighting

import "github.com/Faultbox/meshgl/internal/engine/material"

// Complexity classifies the lighting model a shader must implement.
type Complexity int

const (
	NoLighting Complexity = iota
	Headlight
	LightKit
	Positional
)

func (c Complexity) String() string {
	switch c {
	case NoLighting:
		return "none"
	case Headlight:
		return "headlight"
	case LightKit:
		return "lightkit"
	case Positional:
		return "positional"
	}
	return "unknown"
}

// ParseComplexity converts a name from String back to a Complexity.
func ParseComplexity(s string) (Complexity, bool) {
	for c := NoLighting; c <= Positional; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return NoLighting, false
}

// Classify returns the complexity needed to light a primitive with lights.
// A single unit-intensity headlight is the cheapest lit case; any other
// directional setup needs the light kit and any positional light needs the
// full model. Switched-off lights are ignored.
func Classify(lights []Light) Complexity {
	c := Headlight
	on := 0
	for _, l := range lights {
		if !l.On {
			continue
		}
		on++
		if c == Headlight && (on > 1 || l.Intensity != 1 || l.Kind != KindHeadlight) {
			c = LightKit
		}
		if l.Positional {
			return Positional
		}
	}
	return c
}

// NeedsLighting applies the legacy rules for whether a primitive is lit.
// Points are lit only with smooth normals. Triangles and strips are always
// lit in wireframe and surface mode, other primitives only with smooth normals.
func NeedsLighting(m *material.Material, haveNormals, trisOrStrips bool) bool {
	smooth := m.Interpolation != material.Flat && haveNormals
	if m.Representation == material.Points {
		return smooth
	}
	return trisOrStrips || smooth
}

// ComplexityFor combines NeedsLighting and Classify.
func ComplexityFor(m *material.Material, lights []Light, haveNormals, trisOrStrips bool) Complexity {
	if !m.Lighting || !NeedsLighting(m, haveNormals, trisOrStrips) {
		return NoLighting
	}
	return Classify(lights)
}
