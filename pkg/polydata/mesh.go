package polydata

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshgl/pkg/mtime"
)

// ErrIndexOutOfRange is returned when connectivity references a missing point.
var ErrIndexOutOfRange = errors.New("point index out of range")

// ErrComponents is returned when an attribute array has the wrong tuple size.
var ErrComponents = errors.New("unsupported component count")

// Colors holds RGB or RGBA byte colors, one tuple per point or per cell.
type Colors struct {
	Data       []uint8
	Components int // 3 or 4
}

// Len returns the number of color tuples.
func (c *Colors) Len() int {
	if c == nil || c.Components == 0 {
		return 0
	}
	return len(c.Data) / c.Components
}

// RGBA returns tuple i, expanding RGB to RGBA with an opaque alpha.
func (c *Colors) RGBA(i int) [4]uint8 {
	base := i * c.Components
	if c.Components == 4 {
		return [4]uint8{c.Data[base], c.Data[base+1], c.Data[base+2], c.Data[base+3]}
	}
	return [4]uint8{c.Data[base], c.Data[base+1], c.Data[base+2], 255}
}

// Opaque reports whether every alpha is 255. RGB colors are always opaque.
func (c *Colors) Opaque() bool {
	if c.Components != 4 {
		return true
	}
	for i := 3; i < len(c.Data); i += 4 {
		if c.Data[i] < 255 {
			return false
		}
	}
	return true
}

// Mesh is a polygonal data set: points with optional attributes and
// four connectivity lists.
type Mesh struct {
	Points  FloatArray
	Normals FloatArray // optional, 3 components per point
	TCoords FloatArray // optional, 1 or 2 components per point

	PointColors *Colors // optional per-point scalars
	CellColors  *Colors // optional per-cell scalars, indexed by global cell id

	Verts  *CellArray
	Lines  *CellArray
	Polys  *CellArray
	Strips *CellArray

	mtime mtime.Stamp
}

// NewMesh creates a mesh over the given points and stamps it modified.
func NewMesh(points FloatArray) *Mesh {
	m := &Mesh{Points: points}
	m.Modified()
	return m
}

// Modified marks the mesh as changed.
func (m *Mesh) Modified() { m.mtime.Modified() }

// MTime returns the tick of the last modification.
func (m *Mesh) MTime() uint64 { return m.mtime.Time() }

// NumberOfPoints returns the point count.
func (m *Mesh) NumberOfPoints() int {
	if m.Points == nil {
		return 0
	}
	return m.Points.Tuples()
}

// NumberOfCells returns the cell count across all four lists.
func (m *Mesh) NumberOfCells() int {
	n := 0
	for _, ca := range m.Primitives() {
		n += ca.Len()
	}
	return n
}

// Primitives returns the connectivity lists in verts, lines, polys, strips order.
func (m *Mesh) Primitives() [NumPrimitives]*CellArray {
	return [NumPrimitives]*CellArray{m.Verts, m.Lines, m.Polys, m.Strips}
}

// Validate checks that every connectivity entry addresses an existing point,
// that points and normals are 3-tuples and that optional attribute arrays
// match the point count.
func (m *Mesh) Validate() error {
	n := m.NumberOfPoints()
	if m.Points != nil && m.Points.Components() != 3 {
		return fmt.Errorf("points: %d components: %w", m.Points.Components(), ErrComponents)
	}
	for p, ca := range m.Primitives() {
		for i := 0; i < ca.Len(); i++ {
			for _, id := range ca.Cell(i) {
				if int(id) >= n {
					return fmt.Errorf("%s cell %d references point %d of %d: %w",
						Primitive(p), i, id, n, ErrIndexOutOfRange)
				}
			}
		}
	}
	if m.Normals != nil && m.Normals.Tuples() != n {
		return fmt.Errorf("normals: %d tuples for %d points", m.Normals.Tuples(), n)
	}
	if m.Normals != nil && m.Normals.Components() != 3 {
		return fmt.Errorf("normals: %d components: %w", m.Normals.Components(), ErrComponents)
	}
	if m.TCoords != nil {
		if m.TCoords.Tuples() != n {
			return fmt.Errorf("tcoords: %d tuples for %d points", m.TCoords.Tuples(), n)
		}
		if c := m.TCoords.Components(); c != 1 && c != 2 {
			return fmt.Errorf("tcoords: %d components: %w", c, ErrComponents)
		}
	}
	if m.PointColors != nil && m.PointColors.Len() != n {
		return fmt.Errorf("point colors: %d tuples for %d points", m.PointColors.Len(), n)
	}
	if m.CellColors != nil && m.CellColors.Len() != m.NumberOfCells() {
		return fmt.Errorf("cell colors: %d tuples for %d cells", m.CellColors.Len(), m.NumberOfCells())
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the points.
// ok is false for an empty mesh.
func (m *Mesh) Bounds() (lo, hi [3]float32, ok bool) {
	n := m.NumberOfPoints()
	if n == 0 {
		return lo, hi, false
	}
	var p [3]float32
	m.Points.Tuple(0, p[:])
	lo, hi = p, p
	for i := 1; i < n; i++ {
		m.Points.Tuple(i, p[:])
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
	}
	return lo, hi, true
}
