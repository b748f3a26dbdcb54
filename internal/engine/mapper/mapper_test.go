package mapper

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/shadercache"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

func unitQuad() *polydata.Mesh {
	m := polydata.NewMesh(polydata.NewArray[float32](3,
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0))
	m.Polys = polydata.NewCellArray([]uint32{0, 1, 2, 3})
	return m
}

func newMapper(t *testing.T) (*Mapper, *gputest.Device) {
	dev := gputest.New()
	ctx := NewContext(dev, zaptest.NewLogger(t))
	return New(ctx), dev
}

func frame(mat *material.Material) *Frame {
	return &Frame{
		Material: mat,
		Lights:   []lighting.Light{lighting.NewHeadlight()},
		Camera: Camera{
			View:       mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
			Projection: mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100),
		},
	}
}

func TestRenderUnitQuadUnlit(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	mat := material.Default()
	mat.Lighting = false
	mat.Modified()

	calls, err := m.Render(frame(mat))
	require.NoError(t, err)

	assert.Equal(t, 12, m.layout.Stride)
	assert.Equal(t, 48, m.vbo.Size())
	tris := m.slots[polydata.Polys]
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, tris.ix.Indices)
	assert.Equal(t, lighting.NoLighting, tris.features.Lighting)

	require.Len(t, calls, 1)
	assert.Equal(t, gpu.DrawTriangles, calls[0].Mode)
	assert.Equal(t, 6, calls[0].Count)
	assert.Nil(t, calls[0].PolygonOffset)
	assert.Equal(t, calls, dev.Draws)

	vs := dev.ProgramSource(calls[0].Program, gpu.VertexStage)
	fs := dev.ProgramSource(calls[0].Program, gpu.FragmentStage)
	for _, s := range []string{vs, fs} {
		assert.NotContains(t, s, "scalarColor")
		assert.NotContains(t, s, "normalMC")
		assert.NotContains(t, s, "normalVC")
	}

	attrs := dev.Attributes[calls[0].VertexArray]
	require.Len(t, attrs, 1)
	assert.Equal(t, "vertexMC", attrs[0].Name)
	assert.Equal(t, 12, attrs[0].Stride)

	_, ok := dev.Uniform(calls[0].Program, "normalMatrix")
	assert.False(t, ok, "unlit programs get no normal matrix")
	op, _ := dev.Uniform(calls[0].Program, "opacityUniform")
	assert.Equal(t, float32(1), op)
}

func TestFlatInterpolationDropsNormals(t *testing.T) {
	m, dev := newMapper(t)
	mesh := unitQuad()
	mesh.Normals = polydata.NewArray[float32](3,
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
		0, 0, 1)
	m.SetInput(mesh)

	mat := material.Default()
	mat.Interpolation = material.Flat
	mat.Modified()
	calls, err := m.Render(frame(mat))
	require.NoError(t, err)
	require.Len(t, calls, 1)

	assert.Equal(t, 12, m.layout.Stride)
	assert.False(t, m.layout.HasNormals())
	tris := m.slots[polydata.Polys]
	assert.False(t, tris.features.HasNormals)
	assert.Equal(t, lighting.Headlight, tris.features.Lighting)
	assert.NotContains(t, dev.ProgramSource(calls[0].Program, gpu.VertexStage), "normalMC")
	assert.Contains(t, dev.ProgramSource(calls[0].Program, gpu.FragmentStage),
		"cross(dFdx(vertexVC.xyz), dFdy(vertexVC.xyz))")

	// Switching back to smooth shading packs the normals again.
	mat.Interpolation = material.Gouraud
	mat.Modified()
	calls, err = m.Render(frame(mat))
	require.NoError(t, err)
	assert.Equal(t, 24, m.layout.Stride)
	assert.True(t, m.slots[polydata.Polys].features.HasNormals)
	assert.Contains(t, dev.ProgramSource(calls[0].Program, gpu.VertexStage), "in vec3 normalMC;")
}

func TestRenderAvoidsRebuild(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	f := frame(material.Default())

	_, err := m.Render(f)
	require.NoError(t, err)
	compiles, links, uploads := dev.Compiles, dev.Links, dev.Uploads
	prog := m.slots[polydata.Polys].program
	built := m.slots[polydata.Polys].shaderSourceTime

	calls, err := m.Render(f)
	require.NoError(t, err)
	assert.Equal(t, compiles, dev.Compiles)
	assert.Equal(t, links, dev.Links)
	assert.Equal(t, uploads, dev.Uploads)
	assert.Same(t, prog, m.slots[polydata.Polys].program)
	assert.Equal(t, built, m.slots[polydata.Polys].shaderSourceTime)
	assert.Len(t, calls, 1)
	assert.Len(t, dev.Draws, 2)
}

func TestMaterialChangeRebuildsFromCache(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	mat := material.Default()
	f := frame(mat)

	_, err := m.Render(f)
	require.NoError(t, err)
	built := m.slots[polydata.Polys].shaderSourceTime

	// Same shader text: the slot rebuilds its source but the cache hits.
	mat.Opacity = 0.5
	mat.Modified()
	_, err = m.Render(f)
	require.NoError(t, err)
	assert.Greater(t, m.slots[polydata.Polys].shaderSourceTime, built)
	assert.Equal(t, 1, dev.Links)
	assert.Equal(t, 1, m.ctx.Shaders.Len())

	// Different lighting: a new program.
	mat.Lighting = false
	mat.Modified()
	_, err = m.Render(f)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Links)
	assert.Equal(t, 2, m.ctx.Shaders.Len())
}

func TestLightComplexityChangeRebuilds(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	f := frame(material.Default())

	_, err := m.Render(f)
	require.NoError(t, err)
	assert.Equal(t, lighting.Headlight, m.slots[polydata.Polys].features.Lighting)

	kit := lighting.NewHeadlight()
	kit.Intensity = 0.5
	f.Lights = []lighting.Light{kit}
	_, err = m.Render(f)
	require.NoError(t, err)
	assert.Equal(t, lighting.LightKit, m.slots[polydata.Polys].features.Lighting)
	assert.Equal(t, 2, dev.Links)

	calls := dev.Draws[len(dev.Draws)-1:]
	n, _ := dev.Uniform(calls[0].Program, "numberOfLights")
	assert.Equal(t, int32(1), n)
	dirs, _ := dev.Uniform(calls[0].Program, "lightDirectionVC")
	assert.Equal(t, [][3]float32{{0, 0, -1}}, dirs)
}

func TestCompileFailureSkipsSlot(t *testing.T) {
	m, dev := newMapper(t)
	mesh := unitQuad()
	mesh.Lines = polydata.NewCellArray([]uint32{0, 2})
	m.SetInput(mesh)
	f := frame(material.Default())

	// Lines are unlit without normals, polys are lit: fail only the lit program.
	dev.FailCompile = func(stage gpu.Stage, src string) error {
		if stage == gpu.FragmentStage && strings.Contains(src, "normalVC") {
			return errors.New("boom")
		}
		return nil
	}
	calls, err := m.Render(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, err, shadercache.ErrCompile)
	require.Len(t, calls, 1)
	assert.Equal(t, gpu.DrawLineStrip, calls[0].Mode)
	assert.Nil(t, m.slots[polydata.Polys].program)

	dev.FailCompile = nil
	calls, err = m.Render(f)
	require.NoError(t, err)
	assert.Len(t, calls, 2)
}

func TestRepresentationDrawModes(t *testing.T) {
	mesh := polydata.NewMesh(polydata.NewArray[float32](3,
		0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 0, 2, 0, 1, 2, 0))
	mesh.Verts = polydata.NewCellArray([]uint32{0}, []uint32{5})
	mesh.Lines = polydata.NewCellArray([]uint32{0, 1, 3})
	mesh.Polys = polydata.NewCellArray([]uint32{0, 1, 3, 2})
	mesh.Strips = polydata.NewCellArray([]uint32{0, 1, 2, 3, 4, 5})

	tests := []struct {
		rep  material.Representation
		want []gpu.DrawMode
	}{
		{material.Points, []gpu.DrawMode{gpu.DrawPoints, gpu.DrawPoints, gpu.DrawPoints, gpu.DrawPoints}},
		{material.Wireframe, []gpu.DrawMode{gpu.DrawPoints, gpu.DrawLineStrip, gpu.DrawLineLoop, gpu.DrawLineStrip}},
		{material.Surface, []gpu.DrawMode{gpu.DrawPoints, gpu.DrawLineStrip, gpu.DrawTriangles, gpu.DrawTriangleStrip}},
	}
	for _, tt := range tests {
		t.Run(tt.rep.String(), func(t *testing.T) {
			m, _ := newMapper(t)
			m.SetInput(mesh)
			mat := material.Default()
			mat.Representation = tt.rep
			mat.Modified()

			calls, err := m.Render(frame(mat))
			require.NoError(t, err)
			var modes []gpu.DrawMode
			for _, c := range calls {
				modes = append(modes, c.Mode)
			}
			assert.Equal(t, tt.want, modes)

			if tt.rep == material.Wireframe {
				strip := calls[3]
				assert.Equal(t, 12, strip.Count, "wireframe strips double in length")
			}
		})
	}
}

func TestCellColorsExplode(t *testing.T) {
	mesh := polydata.NewMesh(polydata.NewArray[float64](3,
		0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 2, 0, 0))
	mesh.Polys = polydata.NewCellArray([]uint32{0, 1, 2}, []uint32{1, 4, 2})
	mesh.CellColors = &polydata.Colors{Data: []uint8{255, 0, 0, 0, 255, 0}, Components: 3}

	m, dev := newMapper(t)
	m.SetInput(mesh)
	mat := material.Default()
	calls, err := m.Render(frame(mat))
	require.NoError(t, err)

	// Points 1 and 2 are shared, so the second triangle gets two new vertices.
	assert.Equal(t, 7, m.layout.VertexCount)
	assert.True(t, m.layout.HasColors())
	assert.Equal(t, []uint32{0, 1, 2, 5, 4, 6}, m.slots[polydata.Polys].ix.Indices)
	assert.True(t, m.IsOpaque())

	fs := dev.ProgramSource(calls[0].Program, gpu.FragmentStage)
	assert.Contains(t, fs, "vec3 diffuseColor = vertexColorVSOutput.rgb;")

	m.SetScalarVisibility(false)
	_, err = m.Render(frame(mat))
	require.NoError(t, err)
	assert.Equal(t, 5, m.layout.VertexCount)
	assert.False(t, m.layout.HasColors())
}

func TestIsOpaque(t *testing.T) {
	m, _ := newMapper(t)
	mesh := unitQuad()
	m.SetInput(mesh)
	assert.True(t, m.IsOpaque())

	mesh.PointColors = &polydata.Colors{Data: []uint8{
		255, 0, 0, 255,
		0, 255, 0, 255,
		0, 0, 255, 128,
		255, 255, 255, 255,
	}, Components: 4}
	assert.False(t, m.IsOpaque())

	m.SetScalarMode(material.ScalarCell)
	assert.True(t, m.IsOpaque())
}

func TestEdgePass(t *testing.T) {
	m, _ := newMapper(t)
	m.SetInput(unitQuad())
	m.SetResolveCoincidentTopology(CoincidentPolygonOffset)
	m.SetPolygonOffset(2, 4)
	mat := material.Default()
	mat.EdgeVisibility = true
	mat.EdgeColor = [3]float32{1, 0, 0}
	mat.Modified()

	calls, err := m.Render(frame(mat))
	require.NoError(t, err)
	require.Len(t, calls, 2)

	surface, edge := calls[0], calls[1]
	assert.Equal(t, gpu.DrawTriangles, surface.Mode)
	assert.Equal(t, &gpu.PolygonOffset{Factor: 2, Units: 4}, surface.PolygonOffset)
	assert.Equal(t, gpu.DrawLineLoop, edge.Mode)
	assert.Equal(t, 4, edge.Count)
	assert.Equal(t, &gpu.PolygonOffset{Factor: 2.5, Units: 6}, edge.PolygonOffset)
	assert.NotEqual(t, surface.Program, edge.Program)

	require.NotNil(t, m.edges)
	assert.Equal(t, lighting.NoLighting, m.edges.slots[polydata.Polys].features.Lighting)
}

func TestSelectionAndPeelingUniforms(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	f := frame(material.Default())
	f.Selection = NewSelection(0x030201)
	f.DepthPeeling = NewDepthPeeling(7, 8)

	calls, err := m.Render(f)
	require.NoError(t, err)
	prog := calls[0].Program

	idx, _ := dev.Uniform(prog, "mapperIndex")
	assert.Equal(t, IDToColor(0x030201), idx)
	oz, _ := dev.Uniform(prog, "opaqueZTexture")
	tz, _ := dev.Uniform(prog, "translucentZTexture")
	assert.Equal(t, int32(0), oz)
	assert.Equal(t, int32(1), tz)
	assert.Equal(t, uint32(7), dev.Textures[0])
	assert.Equal(t, uint32(8), dev.Textures[1])
	assert.False(t, m.ctx.Units.IsAllocated(0), "units are released after the frame")

	f.Selection.Pass = PassIDLow24
	_, err = m.Render(f)
	require.NoError(t, err)
	idx, _ = dev.Uniform(prog, "mapperIndex")
	assert.Equal(t, [3]float32{}, idx)

	// Ending the selection pass drops the picking program.
	f.Selection = nil
	calls, err = m.Render(f)
	require.NoError(t, err)
	assert.NotEqual(t, prog, calls[0].Program)
	assert.NotContains(t, dev.ProgramSource(calls[0].Program, gpu.FragmentStage), "mapperIndex")
}

func TestRenderErrors(t *testing.T) {
	m, _ := newMapper(t)
	_, err := m.Render(frame(material.Default()))
	assert.ErrorIs(t, err, ErrNotReady)

	mesh := unitQuad()
	mesh.Polys = polydata.NewCellArray([]uint32{0, 1, 9})
	m.SetInput(mesh)
	_, err = m.Render(frame(material.Default()))
	assert.ErrorIs(t, err, polydata.ErrIndexOutOfRange)
}

func TestShaderDump(t *testing.T) {
	m, _ := newMapper(t)
	dir := t.TempDir()
	m.ctx.SetShaderDumpDir(dir)
	m.SetInput(unitQuad())

	_, err := m.Render(frame(material.Default()))
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	src, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(src), "#version 410 core")
}

func TestRelease(t *testing.T) {
	m, dev := newMapper(t)
	m.SetInput(unitQuad())
	mat := material.Default()
	mat.EdgeVisibility = true
	mat.Modified()
	_, err := m.Render(frame(mat))
	require.NoError(t, err)

	m.Release()
	assert.Empty(t, dev.Buffers)
	assert.Empty(t, dev.Attributes)

	m.ctx.Release()
	assert.Empty(t, dev.Programs)
}

func TestColorToID(t *testing.T) {
	for _, id := range []uint32{0, 1, 0xff, 0x0100, 0x030201, 0xffffff} {
		c := IDToColor(id)
		px := [4]byte{byte(c[0]*255 + 0.5), byte(c[1]*255 + 0.5), byte(c[2]*255 + 0.5), 255}
		assert.Equal(t, id, ColorToID(px))
	}
}
