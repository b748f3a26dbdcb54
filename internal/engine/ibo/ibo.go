// Package ibo builds index buffers for the four mesh primitive classes.
package ibo

import (
	"fmt"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

const indexSize = 4

// IndexBuffer is a flat index sequence. Multi-range buffers also carry one
// (byte offset, element count) pair per cell so strips can be drawn one
// call at a time.
type IndexBuffer struct {
	Indices []uint32
	Offsets []int
	Counts  []int
}

// Len returns the number of indices.
func (b IndexBuffer) Len() int { return len(b.Indices) }

// Ranges returns the number of per-cell draw ranges.
func (b IndexBuffer) Ranges() int { return len(b.Offsets) }

// Upload writes the indices into buf and returns the index count.
func (b IndexBuffer) Upload(buf *gpu.Buffer) int {
	buf.UploadUint32(b.Indices)
	return len(b.Indices)
}

// Points flattens every cell in traversal order.
func Points(cells *polydata.CellArray) IndexBuffer {
	out := make([]uint32, 0, cells.ConnectivitySize())
	cells.Each(func(_ int, ids []uint32) {
		out = append(out, ids...)
	})
	return IndexBuffer{Indices: out}
}

// Triangles converts polygon cells to a triangle list.
//
// Triangles pass through, quads are split as (0,1,2)(0,2,3) assuming they are
// planar and convex, and larger polygons go through TriangulatePolygon using
// positions from pts. A cell with fewer than three points is a producer bug
// and panics.
func Triangles(cells *polydata.CellArray, pts PointSource) IndexBuffer {
	out := make([]uint32, 0, cells.Len()*3)
	var poly [][3]float32
	cells.Each(func(cell int, ids []uint32) {
		switch n := len(ids); {
		case n < 3:
			panic(fmt.Sprintf("ibo: polygon cell %d has %d points, need at least 3", cell, n))
		case n == 3:
			out = append(out, ids...)
		case n == 4:
			out = append(out, ids[0], ids[1], ids[2], ids[0], ids[2], ids[3])
		default:
			poly = poly[:0]
			for _, id := range ids {
				poly = append(poly, pts(id))
			}
			for _, local := range TriangulatePolygon(poly) {
				out = append(out, ids[local])
			}
		}
	})
	return IndexBuffer{Indices: out}
}

// Multi builds a buffer with one draw range per cell, for line strips and
// triangle strips. Empty cells produce no range.
//
// With wireframeStrips set, each strip is followed by its even positions in
// reverse and then its odd positions in order, which turns the open strip
// into an outline that covers every strip edge. Each range doubles in length.
func Multi(cells *polydata.CellArray, wireframeStrips bool) IndexBuffer {
	size := cells.ConnectivitySize()
	if wireframeStrips {
		size *= 2
	}
	b := IndexBuffer{
		Indices: make([]uint32, 0, size),
		Offsets: make([]int, 0, cells.Len()),
		Counts:  make([]int, 0, cells.Len()),
	}
	cells.Each(func(_ int, ids []uint32) {
		n := len(ids)
		if n == 0 {
			return
		}
		b.Offsets = append(b.Offsets, len(b.Indices)*indexSize)
		b.Indices = append(b.Indices, ids...)
		if wireframeStrips {
			for j := (n - 1) / 2; j >= 0; j-- {
				b.Indices = append(b.Indices, ids[j*2])
			}
			for j := 1; j < (n/2)*2; j += 2 {
				b.Indices = append(b.Indices, ids[j])
			}
			n *= 2
		}
		b.Counts = append(b.Counts, n)
	})
	return b
}
