package ibo

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshgl/pkg/polydata"
)

// PointSource resolves a point id to its position.
type PointSource func(id uint32) [3]float32

// FromArray returns a PointSource over points. When cellPointMap is non-nil,
// ids are exploded vertex ids and are mapped back to their source point.
func FromArray(points polydata.FloatArray, cellPointMap []uint32) PointSource {
	return func(id uint32) [3]float32 {
		src := id
		if cellPointMap != nil && cellPointMap[id] > 0 {
			src = cellPointMap[id] - 1
		}
		var p [3]float32
		points.Tuple(int(src), p[:])
		return p
	}
}

// epsilon is relative to the squared extent of the polygon, so the
// degeneracy tests hold at any coordinate scale.
const epsilon = 1e-6

// TriangulatePolygon splits a simple polygon into len(poly)-2 triangles by
// ear clipping in the polygon's dominant plane. It returns local vertex
// indices, three per triangle, in the polygon's winding order.
//
// Degenerate input (zero area, or no ear found because the polygon self
// intersects) falls back to a fan over the remaining vertices.
func TriangulatePolygon(poly [][3]float32) []int {
	n := len(poly)
	if n < 3 {
		return nil
	}
	tris := make([]int, 0, 3*(n-2))

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	tol := epsilon * extent2(poly)
	normal := newellNormal(poly)
	if tol == 0 || normal.len() < tol {
		return fan(tris, remaining)
	}
	pts := project(poly, normal)

	for len(remaining) > 3 {
		ear := -1
		for i := range remaining {
			if isEar(pts, remaining, i, tol) {
				ear = i
				break
			}
		}
		if ear < 0 {
			return fan(tris, remaining)
		}
		m := len(remaining)
		prev := remaining[(ear+m-1)%m]
		next := remaining[(ear+1)%m]
		tris = append(tris, prev, remaining[ear], next)
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}
	return append(tris, remaining[0], remaining[1], remaining[2])
}

func fan(tris []int, ids []int) []int {
	for i := 1; i+1 < len(ids); i++ {
		tris = append(tris, ids[0], ids[i], ids[i+1])
	}
	return tris
}

type vec3 [3]float32

func (v vec3) len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// newellNormal is robust for non-convex and slightly non-planar polygons.
func newellNormal(poly [][3]float32) vec3 {
	var n vec3
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	return n
}

// extent2 is the squared diagonal of the polygon's bounding box.
func extent2(poly [][3]float32) float32 {
	lo, hi := poly[0], poly[0]
	for _, p := range poly[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], p[k])
			hi[k] = math32.Max(hi[k], p[k])
		}
	}
	var d2 float32
	for k := 0; k < 3; k++ {
		d := hi[k] - lo[k]
		d2 += d * d
	}
	return d2
}

type vec2 [2]float32

// project drops the dominant normal axis, orienting the result so the
// polygon winds counter-clockwise in 2D.
func project(poly [][3]float32, n vec3) []vec2 {
	ax, ay, az := math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])
	u, v := 0, 1
	flip := n[2] < 0
	switch {
	case ax >= ay && ax >= az:
		u, v = 1, 2
		flip = n[0] < 0
	case ay >= ax && ay >= az:
		u, v = 2, 0
		flip = n[1] < 0
	}
	out := make([]vec2, len(poly))
	for i, p := range poly {
		out[i] = vec2{p[u], p[v]}
		if flip {
			out[i][0] = -out[i][0]
		}
	}
	return out
}

func cross2(o, a, b vec2) float32 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func isEar(pts []vec2, remaining []int, i int, tol float32) bool {
	m := len(remaining)
	a := pts[remaining[(i+m-1)%m]]
	b := pts[remaining[i]]
	c := pts[remaining[(i+1)%m]]
	if cross2(a, b, c) <= tol {
		return false // reflex or collinear
	}
	for j, idx := range remaining {
		if j == i || j == (i+m-1)%m || j == (i+1)%m {
			continue
		}
		if inTriangle(pts[idx], a, b, c) {
			return false
		}
	}
	return true
}

// inTriangle treats points on an edge as inside so touching vertices block the ear.
func inTriangle(p, a, b, c vec2) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}
