package vbo

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.NativeEndian.Uint32(buf[off:]))
}

func TestFastPathUploadsRawPositions(t *testing.T) {
	pts := polydata.NewArray[float32](3, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0)
	data, l := Pack(Input{Points: pts})

	assert.Equal(t, 12, l.Stride)
	assert.Equal(t, 4, l.VertexCount)
	assert.Equal(t, gpu.Float32Bytes(pts.Data), data)
	assert.Same(t, &pts.Data[0], (*float32)(unsafePointer(data)))
}

func TestStrideAndOffsets(t *testing.T) {
	pts := polydata.NewArray[float64](3, 0, 0, 0, 1, 2, 3)
	normals := polydata.NewArray[float32](3, 0, 0, 1, 0, 0, 1)
	tc1 := polydata.NewArray[float32](1, 0.25, 0.75)
	tc2 := polydata.NewArray[float64](2, 0, 0, 1, 1)
	colors := &polydata.Colors{Data: []uint8{1, 2, 3, 4, 5, 6}, Components: 3}

	tests := []struct {
		name   string
		in     Input
		stride int
		normal int
		tcoord int
		tcomps int
		color  int
	}{
		{"positions only float64", Input{Points: pts}, 12, 0, 0, 0, 0},
		{"normals", Input{Points: pts, Normals: normals}, 24, 12, 0, 0, 0},
		{"tcoord 1d", Input{Points: pts, TCoords: tc1}, 16, 0, 12, 1, 0},
		{"tcoord 2d", Input{Points: pts, TCoords: tc2}, 20, 0, 12, 2, 0},
		{"colors", Input{Points: pts, Colors: colors}, 16, 0, 0, 0, 12},
		{"everything", Input{Points: pts, Normals: normals, TCoords: tc2, Colors: colors}, 36, 12, 24, 2, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, l := Pack(tt.in)
			assert.Equal(t, tt.stride, l.Stride)
			assert.Equal(t, 0, l.VertexOffset)
			assert.Equal(t, tt.normal, l.NormalOffset)
			assert.Equal(t, tt.tcoord, l.TCoordOffset)
			assert.Equal(t, tt.tcomps, l.TCoordComponents)
			assert.Equal(t, tt.color, l.ColorOffset)
			assert.Len(t, data, 2*tt.stride)

			hasN, hasT, hasC := 0, 0, 0
			if tt.in.Normals != nil {
				hasN = 1
			}
			if tt.in.TCoords != nil {
				hasT = 1
			}
			if tt.in.Colors != nil {
				hasC = 1
			}
			assert.Equal(t, 12+12*hasN+4*tt.tcomps*hasT+4*hasC, l.Stride)
		})
	}
}

func TestPackNarrowsAndInterleaves(t *testing.T) {
	pts := polydata.NewArray[float64](3, 1, 2, 3, 4, 5, 6)
	normals := polydata.NewArray[float64](3, 0, 1, 0, 0, 0, 1)
	tcoords := polydata.NewArray[float32](2, 0.5, 0.25, 1, 0)
	colors := &polydata.Colors{Data: []uint8{10, 20, 30, 40, 50, 60, 70, 80}, Components: 4}

	data, l := Pack(Input{Points: pts, Normals: normals, TCoords: tcoords, Colors: colors})
	require.Equal(t, 36, l.Stride)

	v1 := data[l.Stride:]
	assert.Equal(t, float32(4), floatAt(v1, 0))
	assert.Equal(t, float32(6), floatAt(v1, 8))
	assert.Equal(t, float32(1), floatAt(v1, l.NormalOffset+8))
	assert.Equal(t, float32(1), floatAt(v1, l.TCoordOffset))
	assert.Equal(t, []byte{50, 60, 70, 80}, v1[l.ColorOffset:l.ColorOffset+4])
}

func TestPackExpandsRGBToOpaqueRGBA(t *testing.T) {
	pts := polydata.NewArray[float32](3, 0, 0, 0)
	colors := &polydata.Colors{Data: []uint8{9, 8, 7}, Components: 3}

	data, l := Pack(Input{Points: pts, Colors: colors})
	assert.Equal(t, 3, l.ColorComponents)
	assert.Equal(t, []byte{9, 8, 7, 255}, data[l.ColorOffset:l.ColorOffset+4])
}

func TestPackFollowsExplosionMaps(t *testing.T) {
	// Three points; vertex 3 is a duplicate of point 1 owned by cell 1.
	pts := polydata.NewArray[float32](3, 0, 0, 0, 1, 0, 0, 2, 0, 0)
	cellColors := &polydata.Colors{Data: []uint8{255, 0, 0, 0, 255, 0}, Components: 3}

	data, l := Pack(Input{
		Points:       pts,
		Colors:       cellColors,
		NumVertices:  4,
		CellPointMap: []uint32{1, 2, 3, 2},
		PointCellMap: []uint32{0, 0, 1, 1},
	})
	require.Equal(t, 4, l.VertexCount)
	require.Len(t, data, 4*l.Stride)

	v3 := data[3*l.Stride:]
	assert.Equal(t, float32(1), floatAt(v3, 0), "vertex 3 takes point 1's position")
	assert.Equal(t, []byte{0, 255, 0, 255}, v3[l.ColorOffset:l.ColorOffset+4])

	v1 := data[1*l.Stride:]
	assert.Equal(t, []byte{255, 0, 0, 255}, v1[l.ColorOffset:l.ColorOffset+4])
}

func TestCreateUploads(t *testing.T) {
	dev := gputest.New()
	buf := gpu.NewBuffer(dev, gpu.ArrayBuffer)
	pts := polydata.NewArray[float64](3, 0, 0, 0, 1, 1, 1)

	l := Create(Input{Points: pts}, buf)
	assert.Equal(t, 12, l.Stride)
	assert.NotZero(t, buf.Handle())
	assert.Len(t, dev.Buffers[buf.Handle()], 24)
	assert.Equal(t, 1, dev.Uploads)
}
