// Package scene holds the actors a viewer draws: one mapper and material
// per mesh, a shared light list and hardware picking over both.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/mapper"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

// Actor is one mesh placed in the scene.
type Actor struct {
	Name     string
	Mapper   *mapper.Mapper
	Material *material.Material
	Model    mgl32.Mat4
	Visible  bool

	// PickID is written by the prop selection pass. Never zero.
	PickID uint32
}

// Opaque reports whether the actor can be drawn in the opaque pass.
func (a *Actor) Opaque() bool {
	return a.Material.Opacity >= 1 && a.Mapper.IsOpaque()
}

// Scene owns the actors drawing into one mapper context.
type Scene struct {
	Actors []*Actor
	Lights []lighting.Light

	ctx *mapper.Context
	log *zap.Logger
}

// New creates an empty scene lit by a headlight.
func New(ctx *mapper.Context, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		Lights: []lighting.Light{lighting.NewHeadlight()},
		ctx:    ctx,
		log:    log,
	}
}

// Add creates a mapper for mesh and places it with model.
func (s *Scene) Add(name string, mesh *polydata.Mesh, mat *material.Material, model mgl32.Mat4) *Actor {
	m := mapper.New(s.ctx)
	m.SetInput(mesh)
	a := &Actor{
		Name:     name,
		Mapper:   m,
		Material: mat,
		Model:    model,
		Visible:  true,
		PickID:   uint32(len(s.Actors) + 1),
	}
	s.Actors = append(s.Actors, a)
	s.log.Debug("actor added",
		zap.String("name", name),
		zap.Int("points", mesh.NumberOfPoints()),
		zap.Int("cells", mesh.NumberOfCells()))
	return a
}

// ActorByPickID returns the actor with id, or nil.
func (s *Scene) ActorByPickID(id uint32) *Actor {
	for _, a := range s.Actors {
		if a.PickID == id {
			return a
		}
	}
	return nil
}

// Bounds returns the world bounds of every visible actor.
func (s *Scene) Bounds() (lo, hi [3]float32, ok bool) {
	for _, a := range s.Actors {
		if !a.Visible {
			continue
		}
		alo, ahi, aok := a.Mapper.Input().Bounds()
		if !aok {
			continue
		}
		// Every corner of the box, since a rotation can move any of them
		// to the extremes.
		for c := 0; c < 8; c++ {
			corner := mgl32.Vec3{alo[0], alo[1], alo[2]}
			for k := 0; k < 3; k++ {
				if c&(1<<k) != 0 {
					corner[k] = ahi[k]
				}
			}
			w := a.Model.Mul4x1(corner.Vec4(1)).Vec3()
			for k := 0; k < 3; k++ {
				if !ok || w[k] < lo[k] {
					lo[k] = w[k]
				}
				if !ok || w[k] > hi[k] {
					hi[k] = w[k]
				}
			}
			ok = true
		}
	}
	return lo, hi, ok
}

// order returns visible actors with opaque ones first.
func (s *Scene) order() []*Actor {
	var opaque, translucent []*Actor
	for _, a := range s.Actors {
		switch {
		case !a.Visible:
		case a.Opaque():
			opaque = append(opaque, a)
		default:
			translucent = append(translucent, a)
		}
	}
	return append(opaque, translucent...)
}

func (s *Scene) frame(a *Actor, view, proj mgl32.Mat4, sel *mapper.Selection) *mapper.Frame {
	return &mapper.Frame{
		Material:  a.Material,
		Lights:    s.Lights,
		Camera:    mapper.Camera{View: view, Projection: proj, Model: a.Model},
		Selection: sel,
	}
}

// Render draws every visible actor. An actor that fails is reported and
// the rest still draw.
func (s *Scene) Render(view, proj mgl32.Mat4) ([]gpu.DrawCall, error) {
	var calls []gpu.DrawCall
	var errs error
	for _, a := range s.order() {
		c, err := a.Mapper.Render(s.frame(a, view, proj, nil))
		calls = append(calls, c...)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", a.Name, err))
		}
	}
	return calls, errs
}

// Release frees every actor's GPU resources.
func (s *Scene) Release() {
	for _, a := range s.Actors {
		a.Mapper.Release()
	}
	s.Actors = nil
}
