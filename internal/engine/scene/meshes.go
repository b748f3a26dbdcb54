package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshgl/pkg/polydata"
)

var palette = [][3]uint8{
	{230, 57, 70},
	{241, 250, 238},
	{69, 123, 157},
	{244, 162, 97},
}

// Grid returns an nx by ny quad grid of the given size in the XY plane,
// centered on the origin, with one color per cell and 2D texture
// coordinates spanning the grid.
func Grid(nx, ny int, size float32) *polydata.Mesh {
	pts := polydata.NewArray[float32](3)
	normals := polydata.NewArray[float32](3)
	tcoords := polydata.NewArray[float32](2)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			u, v := float32(i)/float32(nx), float32(j)/float32(ny)
			pts.Append((u-0.5)*size, (v-0.5)*size, 0)
			normals.Append(0, 0, 1)
			tcoords.Append(u, v)
		}
	}

	row := uint32(nx + 1)
	polys := polydata.NewCellArray()
	colors := &polydata.Colors{Components: 3}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			p := uint32(j)*row + uint32(i)
			polys.InsertNextCell(p, p+1, p+1+row, p+row)
			c := palette[(i+j)%len(palette)]
			colors.Data = append(colors.Data, c[:]...)
		}
	}

	m := polydata.NewMesh(pts)
	m.Normals = normals
	m.TCoords = tcoords
	m.Polys = polys
	m.CellColors = colors
	return m
}

// Ribbon returns a single triangle strip of n segments following a sine
// wave along X, with a per-point color gradient.
func Ribbon(n int) *polydata.Mesh {
	pts := polydata.NewArray[float32](3)
	normals := polydata.NewArray[float32](3)
	colors := &polydata.Colors{Components: 4}
	strip := make([]uint32, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		t := float32(i) / float32(n)
		x := 2*t - 1
		z := 0.3 * math32.Sin(2*math32.Pi*t)
		dz := 0.3 * math32.Pi * math32.Cos(2*math32.Pi*t) // dz/dx
		l := math32.Sqrt(dz*dz + 1)
		for _, y := range []float32{-0.2, 0.2} {
			strip = append(strip, uint32(pts.Tuples()))
			pts.Append(x, y, z)
			normals.Append(-dz/l, 0, 1/l)
			colors.Data = append(colors.Data, uint8(255*t), 80, uint8(255*(1-t)), 255)
		}
	}

	m := polydata.NewMesh(pts)
	m.Normals = normals
	m.PointColors = colors
	m.Strips = polydata.NewCellArray(strip)
	return m
}

// Arrow returns a concave polygon with its outline as a polyline and
// vertex cells on the three tips, one cell in each of the verts, lines and
// polys lists.
func Arrow() *polydata.Mesh {
	m := polydata.NewMesh(polydata.NewArray[float32](3,
		0, 1, 0,
		-1, 0, 0,
		-0.4, 0, 0,
		-0.4, -1, 0,
		0.4, -1, 0,
		0.4, 0, 0,
		1, 0, 0,
	))
	m.Verts = polydata.NewCellArray([]uint32{0}, []uint32{1}, []uint32{6})
	m.Lines = polydata.NewCellArray([]uint32{0, 1, 2, 3, 4, 5, 6, 0})
	m.Polys = polydata.NewCellArray([]uint32{0, 1, 2, 3, 4, 5, 6})
	return m
}
