// Package gpu defines the narrow graphics backend the mesh pipeline talks to.
//
// The pipeline never owns a graphics context. It is handed a Device bound to
// the thread that owns the context and calls it synchronously.
package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferTarget selects the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	if t == ElementArrayBuffer {
		return "element_array"
	}
	return "array"
}

// Stage identifies a shader pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
	GeometryStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	case GeometryStage:
		return "geometry"
	}
	return "unknown"
}

// BufferDevice creates and fills buffer objects.
type BufferDevice interface {
	GenBuffer() uint32
	BufferData(target BufferTarget, handle uint32, data []byte)
	// BindBuffer binds handle to target; handle 0 unbinds.
	BindBuffer(target BufferTarget, handle uint32)
	DeleteBuffer(handle uint32)
}

// ShaderDevice compiles stages and links programs.
// Compile and link errors carry the backend info log.
type ShaderDevice interface {
	CompileShader(stage Stage, source string) (uint32, error)
	LinkProgram(shaders ...uint32) (uint32, error)
	// UseProgram makes program current; 0 releases the current program.
	UseProgram(program uint32)
	DeleteShader(shader uint32)
	DeleteProgram(program uint32)
}

// UniformDevice uploads uniform values by name to a linked program.
// Names that do not resolve to an active uniform are ignored.
type UniformDevice interface {
	Uniform1i(program uint32, name string, v int32)
	Uniform1f(program uint32, name string, v float32)
	Uniform3f(program uint32, name string, v [3]float32)
	Uniform1iv(program uint32, name string, v []int32)
	Uniform1fv(program uint32, name string, v []float32)
	Uniform3fv(program uint32, name string, v [][3]float32)
	UniformMatrix3(program uint32, name string, m mgl32.Mat3)
	UniformMatrix4(program uint32, name string, m mgl32.Mat4)
}

// AttribType is the element type of a vertex attribute.
type AttribType int

const (
	Float AttribType = iota
	UnsignedByte
)

// VertexAttribute describes one attribute block inside an interleaved buffer.
type VertexAttribute struct {
	Name       string
	Offset     int
	Stride     int
	Components int
	Type       AttribType
	Normalize  bool
}

// VertexArrayDevice records attribute layouts in vertex array objects.
type VertexArrayDevice interface {
	GenVertexArray() uint32
	// BindVertexArray binds vao; 0 unbinds.
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	// VertexAttribute points the named attribute of program at the array
	// buffer bound to the current vertex array. It reports false when the
	// program has no active attribute with that name.
	VertexAttribute(program uint32, attr VertexAttribute) bool
}

// TextureDevice binds existing textures to texture units.
type TextureDevice interface {
	MaxTextureUnits() int
	BindTexture(unit int, texture uint32)
}

// DrawMode is the primitive topology of a draw call.
type DrawMode int

const (
	DrawPoints DrawMode = iota
	DrawLines
	DrawLineStrip
	DrawLineLoop
	DrawTriangles
	DrawTriangleStrip
)

func (m DrawMode) String() string {
	switch m {
	case DrawPoints:
		return "points"
	case DrawLines:
		return "lines"
	case DrawLineStrip:
		return "line_strip"
	case DrawLineLoop:
		return "line_loop"
	case DrawTriangles:
		return "triangles"
	case DrawTriangleStrip:
		return "triangle_strip"
	}
	return fmt.Sprintf("DrawMode(%d)", int(m))
}

// PolygonOffset pushes filled polygons back in depth.
type PolygonOffset struct {
	Factor float32
	Units  float32
}

// DrawCall is one indexed draw out of the element buffer recorded in
// VertexArray.
type DrawCall struct {
	Program     uint32
	VertexArray uint32
	Mode        DrawMode
	// Offset is a byte offset into the element buffer.
	Offset int
	Count  int

	PointSize float32
	LineWidth float32
	// PolygonOffset is nil when no offset applies.
	PolygonOffset *PolygonOffset
}

// DrawDevice issues draw calls.
type DrawDevice interface {
	Draw(call DrawCall)
}

// Device is everything the pipeline needs from a graphics backend.
type Device interface {
	BufferDevice
	VertexArrayDevice
	ShaderDevice
	UniformDevice
	TextureDevice
	DrawDevice
}
