// Package camera provides the orbit camera used by the mesh viewer.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Orbit circles a center point at a distance.
type Orbit struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	FovY float32 // degrees
	Near float32
	Far  float32
}

// NewOrbit creates an orbit camera looking at the origin from +Z.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        3,
		MinDistance:     0.01,
		MaxDistance:     1e5,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            30,
		Near:            0.01,
		Far:             100,
	}
}

// Position returns the eye position in world space.
func (c *Orbit) Position() mgl32.Vec3 {
	return c.Center.Add(mgl32.Vec3{
		c.Distance * math32.Cos(c.Pitch) * math32.Sin(c.Yaw),
		c.Distance * math32.Sin(c.Pitch),
		c.Distance * math32.Cos(c.Pitch) * math32.Cos(c.Yaw),
	})
}

// View returns the world to view transform.
func (c *Orbit) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// Projection returns a perspective projection for the given aspect ratio.
func (c *Orbit) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// HandleDrag rotates by a mouse drag delta in pixels.
func (c *Orbit) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves toward the center for positive wheel deltas.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on a bounding box and backs off until the
// bounding sphere fills the vertical field of view. Clip planes follow.
func (c *Orbit) FitToBounds(lo, hi [3]float32) {
	a, b := mgl32.Vec3(lo), mgl32.Vec3(hi)
	c.Center = a.Add(b).Mul(0.5)
	radius := b.Sub(a).Len() / 2
	if radius == 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(mgl32.DegToRad(c.FovY)/2)
	c.MinDistance = radius * 0.05
	c.MaxDistance = radius * 100
	c.Near = c.Distance / 100
	c.Far = c.Distance + radius*10
}
