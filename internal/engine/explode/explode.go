// Package explode duplicates shared points so per-cell attributes can be
// expressed per vertex without interpolating across cell boundaries.
package explode

import "github.com/Faultbox/meshgl/pkg/polydata"

// Map is the result of exploding a mesh.
type Map struct {
	// CellPointMap maps an exploded vertex to its source point plus one.
	// 0 marks a point that no cell references.
	CellPointMap []uint32
	// PointCellMap maps an exploded vertex to the global id of its owning
	// cell, counted across verts, lines, polys and strips in that order.
	PointCellMap []uint32
	// Prims are the rewritten connectivity lists addressing exploded ids.
	Prims [polydata.NumPrimitives]*polydata.CellArray
}

// NumVertices returns the exploded vertex count.
func (m *Map) NumVertices() int { return len(m.CellPointMap) }

// Cells walks every cell of prims in order. The first reference to a point
// keeps the point's id; every later reference allocates a new trailing id
// that maps back to the original point.
func Cells(numPoints int, prims [polydata.NumPrimitives]*polydata.CellArray) *Map {
	size := 0
	for _, ca := range prims {
		size += ca.ConnectivitySize()
	}
	size = max(size, numPoints)

	m := &Map{
		CellPointMap: make([]uint32, size),
		PointCellMap: make([]uint32, size),
	}
	next := numPoints
	var cell uint32
	for p, ca := range prims {
		out := &polydata.CellArray{}
		scratch := make([]uint32, 0, 16)
		ca.Each(func(_ int, ids []uint32) {
			scratch = scratch[:0]
			for _, id := range ids {
				if m.CellPointMap[id] == 0 {
					m.CellPointMap[id] = id + 1
					m.PointCellMap[id] = cell
					scratch = append(scratch, id)
					continue
				}
				if next >= len(m.CellPointMap) {
					m.grow(next)
				}
				m.CellPointMap[next] = id + 1
				m.PointCellMap[next] = cell
				scratch = append(scratch, uint32(next))
				next++
			}
			out.InsertNextCell(scratch...)
			cell++
		})
		m.Prims[p] = out
	}
	m.CellPointMap = m.CellPointMap[:next]
	m.PointCellMap = m.PointCellMap[:next]
	return m
}

// grow extends both maps by half so repeated overflow stays amortized.
func (m *Map) grow(need int) {
	n := max(need+1, len(m.CellPointMap)*3/2)
	m.CellPointMap = append(m.CellPointMap, make([]uint32, n-len(m.CellPointMap))...)
	m.PointCellMap = append(m.PointCellMap, make([]uint32, n-len(m.PointCellMap))...)
}
