package mapper

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/engine/explode"
	"github.com/Faultbox/meshgl/internal/engine/gpu"
	"github.com/Faultbox/meshgl/internal/engine/ibo"
	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/material"
	"github.com/Faultbox/meshgl/internal/engine/shader"
	"github.com/Faultbox/meshgl/internal/engine/shadercache"
	"github.com/Faultbox/meshgl/internal/engine/vbo"
	"github.com/Faultbox/meshgl/pkg/mtime"
	"github.com/Faultbox/meshgl/pkg/polydata"
)

// Coincident selects how coincident geometry is kept apart in depth.
type Coincident int

const (
	CoincidentOff Coincident = iota
	CoincidentPolygonOffset
)

func (c Coincident) String() string {
	if c == CoincidentPolygonOffset {
		return "polygon_offset"
	}
	return "off"
}

// ParseCoincident converts a config string to a Coincident.
func ParseCoincident(s string) (Coincident, bool) {
	switch s {
	case "off", "":
		return CoincidentOff, true
	case "polygon_offset":
		return CoincidentPolygonOffset, true
	}
	return CoincidentOff, false
}

// slot is the GPU state of one primitive class.
type slot struct {
	prim polydata.Primitive
	ibo  *gpu.Buffer
	ix   ibo.IndexBuffer
	vao  uint32

	program          *shadercache.Program
	features         shader.FeatureState
	shaderSourceTime uint64

	lightComplexity     lighting.Complexity
	lightComplexityTime mtime.Stamp

	attrProgram *shadercache.Program
	attrTime    uint64
}

// Mapper draws one mesh.
type Mapper struct {
	ctx *Context
	log *zap.Logger

	mesh *polydata.Mesh

	materialMode     material.Mode
	scalarVisibility bool
	scalarMode       material.ScalarMode
	coincident       Coincident
	offset           gpu.PolygonOffset
	mtime            mtime.Stamp

	vbo     *gpu.Buffer
	layout  vbo.Layout
	vboTime uint64

	slots [polydata.NumPrimitives]*slot

	// edges draws the wireframe overlay of a surface with visible edges.
	edges *Mapper
}

// New creates a mapper drawing through ctx.
func New(ctx *Context) *Mapper {
	m := &Mapper{
		ctx:              ctx,
		log:              ctx.log.Named("mapper"),
		scalarVisibility: true,
		offset:           gpu.PolygonOffset{Factor: 1, Units: 1},
		vbo:              gpu.NewBuffer(ctx.Device, gpu.ArrayBuffer),
	}
	for p := range m.slots {
		m.slots[p] = &slot{
			prim:            polydata.Primitive(p),
			ibo:             gpu.NewBuffer(ctx.Device, gpu.ElementArrayBuffer),
			lightComplexity: -1,
		}
	}
	m.mtime.Modified()
	return m
}

// SetInput sets the mesh to draw.
func (m *Mapper) SetInput(mesh *polydata.Mesh) {
	if m.mesh == mesh {
		return
	}
	m.mesh = mesh
	m.mtime.Modified()
}

// Input returns the mesh being drawn.
func (m *Mapper) Input() *polydata.Mesh { return m.mesh }

// SetMaterialMode selects which material terms scalar colors replace.
func (m *Mapper) SetMaterialMode(mode material.Mode) {
	if m.materialMode != mode {
		m.materialMode = mode
		m.mtime.Modified()
	}
}

// SetScalarVisibility toggles coloring by the mesh's scalars.
func (m *Mapper) SetScalarVisibility(on bool) {
	if m.scalarVisibility != on {
		m.scalarVisibility = on
		m.mtime.Modified()
	}
}

// SetScalarMode selects point or cell scalars.
func (m *Mapper) SetScalarMode(mode material.ScalarMode) {
	if m.scalarMode != mode {
		m.scalarMode = mode
		m.mtime.Modified()
	}
}

// SetResolveCoincidentTopology sets how surfaces are offset in depth.
func (m *Mapper) SetResolveCoincidentTopology(c Coincident) {
	if m.coincident != c {
		m.coincident = c
		m.mtime.Modified()
	}
}

// SetPolygonOffset sets the offset used by CoincidentPolygonOffset.
func (m *Mapper) SetPolygonOffset(factor, units float32) {
	o := gpu.PolygonOffset{Factor: factor, Units: units}
	if m.offset != o {
		m.offset = o
		m.mtime.Modified()
	}
}

// MTime returns the tick of the last configuration change.
func (m *Mapper) MTime() uint64 { return m.mtime.Time() }

// scalars returns the colors to draw with and whether they are per cell.
func (m *Mapper) scalars() (*polydata.Colors, bool) {
	if !m.scalarVisibility || m.mesh == nil {
		return nil, false
	}
	switch m.scalarMode {
	case material.ScalarPoint:
		return m.mesh.PointColors, false
	case material.ScalarCell:
		return m.mesh.CellColors, m.mesh.CellColors != nil
	}
	if m.mesh.PointColors != nil {
		return m.mesh.PointColors, false
	}
	return m.mesh.CellColors, m.mesh.CellColors != nil
}

// IsOpaque reports false when the colors drawn carry any alpha below 255.
func (m *Mapper) IsOpaque() bool {
	c, _ := m.scalars()
	return c == nil || c.Opaque()
}

// Render uploads whatever changed, readies every non-empty slot's program
// and issues its draw calls. A slot whose program fails to build is skipped
// and reported in the returned error; the other slots still draw.
func (m *Mapper) Render(f *Frame) ([]gpu.DrawCall, error) {
	if m.mesh == nil {
		return nil, fmt.Errorf("%w: no input mesh", ErrNotReady)
	}
	if f.Material == nil {
		return nil, fmt.Errorf("%w: no material", ErrNotReady)
	}
	var offset *gpu.PolygonOffset
	if m.coincident == CoincidentPolygonOffset {
		o := m.offset
		offset = &o
	}
	calls, err := m.render(f, offset)

	if f.Material.DrawsEdges() {
		if m.edges == nil {
			m.edges = New(m.ctx)
			m.edges.log = m.log.Named("edges")
			m.edges.scalarVisibility = false
		}
		m.edges.SetInput(m.mesh)
		ef := *f
		ef.Material = f.Material.Edges()
		edgeOffset := gpu.PolygonOffset{Factor: m.offset.Factor + 0.5, Units: m.offset.Units * 1.5}
		edgeCalls, edgeErr := m.edges.render(&ef, &edgeOffset)
		calls = append(calls, edgeCalls...)
		err = multierr.Append(err, edgeErr)
	}
	m.ctx.Shaders.Unbind()
	m.ctx.Units.ReleaseAll()

	if err != nil {
		return calls, fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return calls, nil
}

func (m *Mapper) render(f *Frame, offset *gpu.PolygonOffset) ([]gpu.DrawCall, error) {
	if err := m.updateBuffers(f.Material); err != nil {
		return nil, err
	}
	var calls []gpu.DrawCall
	var errs error
	for _, s := range m.slots {
		if s.ix.Len() == 0 {
			continue
		}
		c, err := m.renderSlot(s, f, offset)
		if err != nil {
			m.log.Error("slot skipped", zap.Stringer("primitive", s.prim), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.prim, err))
			continue
		}
		calls = append(calls, c...)
	}
	return calls, errs
}

// updateBuffers rebuilds the vertex buffer and every index buffer when the
// mesh, the material or the mapper changed since the last upload.
func (m *Mapper) updateBuffers(mat *material.Material) error {
	if m.vboTime > max(m.mesh.MTime(), mat.MTime(), m.mtime.Time()) {
		return nil
	}
	if err := m.mesh.Validate(); err != nil {
		return err
	}

	in := vbo.Input{Points: m.mesh.Points}
	if mat.Interpolation != material.Flat {
		in.Normals = m.mesh.Normals
	}
	if mat.Texture != 0 {
		in.TCoords = m.mesh.TCoords
	}
	prims := m.mesh.Primitives()
	colors, perCell := m.scalars()
	in.Colors = colors
	if perCell {
		ex := explode.Cells(m.mesh.NumberOfPoints(), prims)
		in.NumVertices = ex.NumVertices()
		in.CellPointMap = ex.CellPointMap
		in.PointCellMap = ex.PointCellMap
		prims = ex.Prims
	}
	m.layout = vbo.Create(in, m.vbo)

	pts := ibo.FromArray(m.mesh.Points, in.CellPointMap)
	for p, s := range m.slots {
		s.ix = buildIndex(polydata.Primitive(p), prims[p], mat.Representation, pts)
		s.ix.Upload(s.ibo)
	}
	m.vboTime = mtime.Now()

	m.log.Debug("buffers rebuilt",
		zap.Int("vertices", m.layout.VertexCount),
		zap.Int("stride", m.layout.Stride),
		zap.Bool("exploded", perCell),
		zap.Int("points", m.slots[polydata.Verts].ix.Len()),
		zap.Int("lines", m.slots[polydata.Lines].ix.Len()),
		zap.Int("tris", m.slots[polydata.Polys].ix.Len()),
		zap.Int("strips", m.slots[polydata.Strips].ix.Len()))
	return nil
}

func buildIndex(p polydata.Primitive, cells *polydata.CellArray, rep material.Representation, pts ibo.PointSource) ibo.IndexBuffer {
	if p == polydata.Verts || rep == material.Points {
		return ibo.Points(cells)
	}
	switch p {
	case polydata.Polys:
		if rep == material.Wireframe {
			return ibo.Multi(cells, false)
		}
		return ibo.Triangles(cells, pts)
	case polydata.Strips:
		return ibo.Multi(cells, rep == material.Wireframe)
	}
	return ibo.Multi(cells, false)
}

// features collects the shader inputs for slot s.
func (m *Mapper) features(s *slot, f *Frame) shader.FeatureState {
	mat := f.Material
	trisOrStrips := s.prim == polydata.Polys || s.prim == polydata.Strips
	fs := shader.FeatureState{
		Lighting:       lighting.ComplexityFor(mat, f.Lights, m.layout.HasNormals(), trisOrStrips),
		HasVertexColor: m.layout.HasColors(),
		HasNormals:     m.layout.HasNormals(),
		Wireframe:      mat.Representation == material.Wireframe,
		Points:         mat.Representation == material.Points,
		Picking:        f.Selection != nil,
		DepthPeeling:   f.DepthPeeling != nil,
	}
	if fs.HasVertexColor {
		fs.ColorTerm = shader.ResolveColorTerm(mat, m.materialMode)
	}
	if mat.Texture != 0 {
		fs.HasTCoord1D = m.layout.TCoordComponents == 1
		fs.HasTCoord2D = m.layout.TCoordComponents == 2
	}
	return fs
}

// needsRebuild reports whether the slot's program source is stale. Any
// input stamped after the last build triggers a rebuild, as does a change
// in the feature set such as a selection pass ending.
func (m *Mapper) needsRebuild(s *slot, fs shader.FeatureState, f *Frame) bool {
	if s.lightComplexity != fs.Lighting {
		s.lightComplexity = fs.Lighting
		s.lightComplexityTime.Modified()
	}
	if s.program == nil || s.features != fs {
		return true
	}
	t := s.shaderSourceTime
	return t < m.mesh.MTime() ||
		t < f.Material.MTime() ||
		t < m.mtime.Time() ||
		t < f.Selection.MTime() ||
		t < f.DepthPeeling.MTime() ||
		t < s.lightComplexityTime.Time()
}

func (m *Mapper) renderSlot(s *slot, f *Frame, offset *gpu.PolygonOffset) ([]gpu.DrawCall, error) {
	fs := m.features(s, f)
	if m.needsRebuild(s, fs, f) {
		p, err := m.ctx.Build(fs)
		if err != nil {
			s.program = nil
			return nil, err
		}
		s.program = p
		s.features = fs
		s.shaderSourceTime = mtime.Now()
		m.log.Debug("shader selected",
			zap.Stringer("primitive", s.prim),
			zap.Stringer("features", fs),
			zap.String("hash", p.Hash[:12]))
	} else if err := m.ctx.Shaders.ReadyProgram(s.program); err != nil {
		return nil, err
	}

	m.bindAttributes(s)
	if err := m.setUniforms(s.program.Handle, fs, f); err != nil {
		return nil, err
	}
	return m.draw(s, f.Material, offset), nil
}

// bindAttributes records the vertex layout for the slot's program into its
// vertex array when the program or the vertex buffer changed.
func (m *Mapper) bindAttributes(s *slot) {
	if s.attrProgram == s.program && s.attrTime > m.vboTime {
		return
	}
	dev := m.ctx.Device
	if s.vao == 0 {
		s.vao = dev.GenVertexArray()
	}
	dev.BindVertexArray(s.vao)
	m.vbo.Bind()
	s.ibo.Bind()
	for _, a := range m.attributes() {
		if !dev.VertexAttribute(s.program.Handle, a) {
			m.log.Debug("attribute not active", zap.String("name", a.Name), zap.Stringer("primitive", s.prim))
		}
	}
	dev.BindVertexArray(0)
	s.attrProgram = s.program
	s.attrTime = mtime.Now()
}

func (m *Mapper) attributes() []gpu.VertexAttribute {
	l := m.layout
	attrs := []gpu.VertexAttribute{
		{Name: "vertexMC", Offset: l.VertexOffset, Stride: l.Stride, Components: 3, Type: gpu.Float},
	}
	if l.HasNormals() {
		attrs = append(attrs, gpu.VertexAttribute{Name: "normalMC", Offset: l.NormalOffset, Stride: l.Stride, Components: 3, Type: gpu.Float})
	}
	if l.TCoordComponents > 0 {
		attrs = append(attrs, gpu.VertexAttribute{Name: "tcoordMC", Offset: l.TCoordOffset, Stride: l.Stride, Components: l.TCoordComponents, Type: gpu.Float})
	}
	if l.HasColors() {
		attrs = append(attrs, gpu.VertexAttribute{Name: "scalarColor", Offset: l.ColorOffset, Stride: l.Stride, Components: 4, Type: gpu.UnsignedByte, Normalize: true})
	}
	return attrs
}

// draw issues the draw calls for s and returns them.
func (m *Mapper) draw(s *slot, mat *material.Material, offset *gpu.PolygonOffset) []gpu.DrawCall {
	base := gpu.DrawCall{
		Program:       s.program.Handle,
		VertexArray:   s.vao,
		PointSize:     mat.PointSize,
		LineWidth:     mat.LineWidth,
		PolygonOffset: offset,
	}
	var calls []gpu.DrawCall
	whole := func(mode gpu.DrawMode) {
		c := base
		c.Mode = mode
		c.Count = s.ix.Len()
		calls = append(calls, c)
	}
	ranges := func(mode gpu.DrawMode) {
		for i := range s.ix.Offsets {
			c := base
			c.Mode = mode
			c.Offset = s.ix.Offsets[i]
			c.Count = s.ix.Counts[i]
			calls = append(calls, c)
		}
	}

	switch {
	case s.prim == polydata.Verts || mat.Representation == material.Points:
		whole(gpu.DrawPoints)
	case s.prim == polydata.Lines:
		ranges(gpu.DrawLineStrip)
	case s.prim == polydata.Polys && mat.Representation == material.Wireframe:
		ranges(gpu.DrawLineLoop)
	case s.prim == polydata.Polys:
		whole(gpu.DrawTriangles)
	case mat.Representation == material.Wireframe:
		ranges(gpu.DrawLineStrip)
	default:
		ranges(gpu.DrawTriangleStrip)
	}

	for _, c := range calls {
		m.ctx.Device.Draw(c)
	}
	return calls
}

// Release deletes the mapper's buffers and vertex arrays. Programs stay in
// the context's cache.
func (m *Mapper) Release() {
	m.vbo.Delete()
	for _, s := range m.slots {
		s.ibo.Delete()
		if s.vao != 0 {
			m.ctx.Device.DeleteVertexArray(s.vao)
			s.vao = 0
		}
		s.ix = ibo.IndexBuffer{}
		s.program = nil
		s.attrProgram = nil
	}
	m.vboTime = 0
	if m.edges != nil {
		m.edges.Release()
		m.edges = nil
	}
}
