// Package vbo packs per-point mesh attributes into one interleaved vertex buffer.
//
// Blocks are laid out per vertex in a fixed order that shader attribute
// binding relies on:
//
//	position (3 floats) | normal (3 floats) | tcoord (1-2 floats) | color (4 bytes)
//
// All floating point data is narrowed to float32. Colors occupy a single
// float-sized slot holding the raw RGBA bytes.
package vbo

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

const floatSize = 4

// Layout describes where each attribute block lives inside a vertex.
// A zero offset on an optional block means the block is absent.
type Layout struct {
	VertexOffset     int
	NormalOffset     int
	TCoordOffset     int
	TCoordComponents int
	ColorOffset      int
	ColorComponents  int
	Stride           int
	VertexCount      int
}

// HasNormals reports whether the layout carries a normal block.
func (l Layout) HasNormals() bool { return l.NormalOffset != 0 }

// HasColors reports whether the layout carries a color block.
func (l Layout) HasColors() bool { return l.ColorComponents != 0 }

// Input gathers the attribute arrays to pack.
type Input struct {
	Points  polydata.FloatArray
	Normals polydata.FloatArray // optional
	TCoords polydata.FloatArray // optional, 1 or 2 components
	Colors  *polydata.Colors    // optional, 3 or 4 components

	// NumVertices is the number of output vertices. Zero means one per point.
	NumVertices int

	// CellPointMap maps an output vertex to its source point plus one;
	// 0 means the vertex is its own source. Nil disables remapping.
	CellPointMap []uint32
	// PointCellMap maps an output vertex to the cell whose color it takes.
	// Nil means colors are indexed by vertex.
	PointCellMap []uint32
}

func (in Input) vertexCount() int {
	if in.NumVertices > 0 {
		return in.NumVertices
	}
	return in.Points.Tuples()
}

func (in Input) fastPath() ([]float32, bool) {
	if in.Normals != nil || in.TCoords != nil || in.Colors != nil || in.CellPointMap != nil {
		return nil, false
	}
	return in.Points.Float32s()
}

// ComputeLayout returns the layout Pack would produce for in.
func ComputeLayout(in Input) Layout {
	l := Layout{VertexCount: in.vertexCount()}
	block := 3
	if in.Normals != nil {
		l.NormalOffset = floatSize * block
		block += 3
	}
	if in.TCoords != nil {
		l.TCoordOffset = floatSize * block
		l.TCoordComponents = in.TCoords.Components()
		block += l.TCoordComponents
	}
	if in.Colors != nil {
		l.ColorOffset = floatSize * block
		l.ColorComponents = in.Colors.Components
		block++
	}
	l.Stride = floatSize * block
	return l
}

// Pack interleaves the attributes of in into a new byte buffer.
//
// When only float32 positions are present the returned slice aliases the
// position storage instead of copying it.
func Pack(in Input) ([]byte, Layout) {
	l := ComputeLayout(in)
	if raw, ok := in.fastPath(); ok {
		return gpu.Float32Bytes(raw[:l.VertexCount*3]), l
	}

	out := make([]byte, l.VertexCount*l.Stride)
	var tuple [3]float32
	for i := 0; i < l.VertexCount; i++ {
		src := i
		if in.CellPointMap != nil && in.CellPointMap[i] > 0 {
			src = int(in.CellPointMap[i] - 1)
		}
		v := out[i*l.Stride : (i+1)*l.Stride]

		in.Points.Tuple(src, tuple[:])
		putFloats(v[l.VertexOffset:], tuple[:3])

		if in.Normals != nil {
			in.Normals.Tuple(src, tuple[:])
			putFloats(v[l.NormalOffset:], tuple[:3])
		}
		if in.TCoords != nil {
			in.TCoords.Tuple(src, tuple[:])
			putFloats(v[l.TCoordOffset:], tuple[:l.TCoordComponents])
		}
		if in.Colors != nil {
			ci := i
			if in.PointCellMap != nil {
				ci = int(in.PointCellMap[i])
			}
			rgba := in.Colors.RGBA(ci)
			copy(v[l.ColorOffset:], rgba[:])
		}
	}
	return out, l
}

// Create packs in and uploads the result into buf as an array buffer.
func Create(in Input, buf *gpu.Buffer) Layout {
	data, l := Pack(in)
	buf.Upload(data)
	return l
}

func putFloats(dst []byte, values []float32) {
	for c, f := range values {
		binary.NativeEndian.PutUint32(dst[c*floatSize:], math.Float32bits(f))
	}
}
