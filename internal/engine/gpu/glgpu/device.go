// Package glgpu implements gpu.Device on OpenGL 4.1 core.
//
// Every method must be called on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
)

// Device issues GL calls directly. Uniform locations are cached per program.
type Device struct {
	log       *zap.Logger
	locations map[uint32]map[string]int32
	unitLimit int
}

var _ gpu.Device = (*Device)(nil)

// New returns a device for the current GL context. gl.Init must have
// succeeded before.
func New(log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{
		log:       log,
		locations: make(map[uint32]map[string]int32),
	}
}

func target(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) GenBuffer() uint32 {
	var h uint32
	gl.GenBuffers(1, &h)
	return h
}

func (d *Device) BufferData(t gpu.BufferTarget, handle uint32, data []byte) {
	gl.BindBuffer(target(t), handle)
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(target(t), len(data), gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) BindBuffer(t gpu.BufferTarget, handle uint32) {
	gl.BindBuffer(target(t), handle)
}

func (d *Device) DeleteBuffer(handle uint32) {
	gl.DeleteBuffers(1, &handle)
}

func (d *Device) GenVertexArray() uint32 {
	var h uint32
	gl.GenVertexArrays(1, &h)
	return h
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *Device) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) VertexAttribute(program uint32, a gpu.VertexAttribute) bool {
	loc := gl.GetAttribLocation(program, gl.Str(a.Name+"\x00"))
	if loc < 0 {
		return false
	}
	typ := uint32(gl.FLOAT)
	if a.Type == gpu.UnsignedByte {
		typ = gl.UNSIGNED_BYTE
	}
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointerWithOffset(uint32(loc), int32(a.Components), typ, a.Normalize, int32(a.Stride), uintptr(a.Offset))
	return true
}

func shaderType(s gpu.Stage) uint32 {
	switch s {
	case gpu.FragmentStage:
		return gl.FRAGMENT_SHADER
	case gpu.GeometryStage:
		return gl.GEOMETRY_SHADER
	}
	return gl.VERTEX_SHADER
}

// CompileShader compiles a single stage and returns the driver's log on failure.
func (d *Device) CompileShader(stage gpu.Stage, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType(stage))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", stage, strings.TrimRight(string(log), "\x00"))
	}
	return shader, nil
}

func (d *Device) LinkProgram(shaders ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(string(log), "\x00"))
	}
	return program, nil
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *Device) DeleteProgram(program uint32) {
	delete(d.locations, program)
	gl.DeleteProgram(program)
}

// location returns the cached uniform location, -1 for inactive uniforms.
func (d *Device) location(program uint32, name string) int32 {
	locs, ok := d.locations[program]
	if !ok {
		locs = make(map[string]int32)
		d.locations[program] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		d.log.Debug("uniform not active", zap.Uint32("program", program), zap.String("name", name))
	}
	locs[name] = loc
	return loc
}

func (d *Device) Uniform1i(p uint32, name string, v int32) {
	gl.ProgramUniform1i(p, d.location(p, name), v)
}

func (d *Device) Uniform1f(p uint32, name string, v float32) {
	gl.ProgramUniform1f(p, d.location(p, name), v)
}

func (d *Device) Uniform3f(p uint32, name string, v [3]float32) {
	gl.ProgramUniform3f(p, d.location(p, name), v[0], v[1], v[2])
}

func (d *Device) Uniform1iv(p uint32, name string, v []int32) {
	if len(v) == 0 {
		return
	}
	gl.ProgramUniform1iv(p, d.location(p, name), int32(len(v)), &v[0])
}

func (d *Device) Uniform1fv(p uint32, name string, v []float32) {
	if len(v) == 0 {
		return
	}
	gl.ProgramUniform1fv(p, d.location(p, name), int32(len(v)), &v[0])
}

func (d *Device) Uniform3fv(p uint32, name string, v [][3]float32) {
	if len(v) == 0 {
		return
	}
	gl.ProgramUniform3fv(p, d.location(p, name), int32(len(v)), &v[0][0])
}

func (d *Device) UniformMatrix3(p uint32, name string, m mgl32.Mat3) {
	gl.ProgramUniformMatrix3fv(p, d.location(p, name), 1, false, &m[0])
}

func (d *Device) UniformMatrix4(p uint32, name string, m mgl32.Mat4) {
	gl.ProgramUniformMatrix4fv(p, d.location(p, name), 1, false, &m[0])
}

// LimitTextureUnits caps MaxTextureUnits below the driver limit. Zero
// removes the cap.
func (d *Device) LimitTextureUnits(n int) {
	d.unitLimit = n
}

func (d *Device) MaxTextureUnits() int {
	var n int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &n)
	if d.unitLimit > 0 && d.unitLimit < int(n) {
		return d.unitLimit
	}
	return int(n)
}

// BindTexture binds a 2D texture to unit. Depth peeling Z textures are 2D
// too; the peeling shader reads them with texelFetch.
func (d *Device) BindTexture(unit int, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.ActiveTexture(gl.TEXTURE0)
}

// UploadTexture creates a mipmapped, repeating 2D texture from img.
func (d *Device) UploadTexture(img *image.RGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	d.log.Debug("texture uploaded", zap.Uint32("texture", tex),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return tex
}

func (d *Device) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func drawMode(m gpu.DrawMode) uint32 {
	switch m {
	case gpu.DrawLines:
		return gl.LINES
	case gpu.DrawLineStrip:
		return gl.LINE_STRIP
	case gpu.DrawLineLoop:
		return gl.LINE_LOOP
	case gpu.DrawTriangles:
		return gl.TRIANGLES
	case gpu.DrawTriangleStrip:
		return gl.TRIANGLE_STRIP
	}
	return gl.POINTS
}

// Draw issues one indexed draw with its rasterization state. The caller
// has already made c.Program current.
func (d *Device) Draw(c gpu.DrawCall) {
	if c.Count == 0 {
		return
	}
	gl.BindVertexArray(c.VertexArray)
	if c.PointSize > 0 {
		gl.PointSize(c.PointSize)
	}
	if c.LineWidth > 0 {
		// Core profiles may only support width 1; wider values are clamped.
		gl.LineWidth(c.LineWidth)
	}
	if c.PolygonOffset != nil {
		gl.Enable(gl.POLYGON_OFFSET_FILL)
		gl.PolygonOffset(c.PolygonOffset.Factor, c.PolygonOffset.Units)
	}
	gl.DrawElementsWithOffset(drawMode(c.Mode), int32(c.Count), gl.UNSIGNED_INT, uintptr(c.Offset))
	if c.PolygonOffset != nil {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
	}
	gl.BindVertexArray(0)
}
