// Package lighting describes scene lights and classifies how much of the
// lighting model a shader has to implement for them.
package lighting

import "github.com/chewxy/math32"

// MaxLights is the number of lights the light-kit and positional shaders accept.
const MaxLights = 6

// Kind tells how a light's position is interpreted.
type Kind int

const (
	// KindHeadlight is attached to the camera and points where it looks.
	KindHeadlight Kind = iota
	// KindCamera is positioned relative to the camera.
	KindCamera
	// KindScene is positioned in world coordinates.
	KindScene
)

// Light is one light source as seen by the renderer.
// Position and FocalPoint are already transformed into world coordinates.
type Light struct {
	On         bool
	Kind       Kind
	Color      [3]float32
	Intensity  float32
	Position   [3]float32
	FocalPoint [3]float32

	// Positional lights are spot or point lights with attenuation and a cone.
	Positional  bool
	Attenuation [3]float32 // constant, linear, quadratic
	ConeAngle   float32    // degrees
	Exponent    float32
}

// NewHeadlight returns a white unit-intensity headlight looking down -Z.
func NewHeadlight() Light {
	return Light{
		On:          true,
		Kind:        KindHeadlight,
		Color:       [3]float32{1, 1, 1},
		Intensity:   1,
		Position:    [3]float32{0, 0, 1},
		Attenuation: [3]float32{1, 0, 0},
		ConeAngle:   30,
		Exponent:    1,
	}
}

// Direction returns the normalized vector from the light toward its focal point.
func (l Light) Direction() [3]float32 {
	d := [3]float32{
		l.FocalPoint[0] - l.Position[0],
		l.FocalPoint[1] - l.Position[1],
		l.FocalPoint[2] - l.Position[2],
	}
	n := math32.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if n == 0 {
		return [3]float32{0, 0, -1}
	}
	return [3]float32{d[0] / n, d[1] / n, d[2] / n}
}

// ScaledColor returns the light color premultiplied by its intensity.
func (l Light) ScaledColor() [3]float32 {
	return [3]float32{l.Color[0] * l.Intensity, l.Color[1] * l.Intensity, l.Color[2] * l.Intensity}
}

// DirectionFromAngles converts azimuth (around Y) and elevation (from the
// horizon) in degrees to a unit vector pointing toward the light.
func DirectionFromAngles(azimuth, elevation float32) [3]float32 {
	az := azimuth * math32.Pi / 180
	el := elevation * math32.Pi / 180
	return [3]float32{
		math32.Cos(el) * math32.Sin(az),
		math32.Sin(el),
		math32.Cos(el) * math32.Cos(az),
	}
}

// Active returns the switched-on lights, capped at MaxLights.
func Active(lights []Light) []Light {
	out := make([]Light, 0, min(len(lights), MaxLights))
	for _, l := range lights {
		if l.On && len(out) < MaxLights {
			out = append(out, l)
		}
	}
	return out
}
