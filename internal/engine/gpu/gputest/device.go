// Package gputest provides a recording in-memory gpu.Device for tests.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
)

// Shader is a compiled stage held by the fake device.
type Shader struct {
	Stage  gpu.Stage
	Source string
}

// Device records every call made through the gpu.Device interface.
type Device struct {
	// FailCompile, when set, is consulted for every compile; a non-nil
	// return fails that stage with the given error.
	FailCompile func(stage gpu.Stage, source string) error

	Units int

	Buffers  map[uint32][]byte
	Shaders  map[uint32]Shader
	Programs map[uint32][]uint32
	Uniforms map[uint32]map[string]any
	Textures map[int]uint32

	// Attributes holds the attributes recorded per vertex array.
	Attributes map[uint32][]gpu.VertexAttribute
	VAO        uint32

	// Draws records every draw call in issue order.
	Draws []gpu.DrawCall

	Bound    map[gpu.BufferTarget]uint32
	Current  uint32
	Compiles int
	Links    int
	Uses     int
	Uploads  int

	DeletedBuffers  int
	DeletedShaders  int
	DeletedPrograms int

	next uint32
}

var _ gpu.Device = (*Device)(nil)

// New creates an empty device with 16 texture units.
func New() *Device {
	return &Device{
		Units:    16,
		Buffers:  make(map[uint32][]byte),
		Shaders:  make(map[uint32]Shader),
		Programs: make(map[uint32][]uint32),
		Uniforms: make(map[uint32]map[string]any),
		Textures: make(map[int]uint32),
		Bound:    make(map[gpu.BufferTarget]uint32),

		Attributes: make(map[uint32][]gpu.VertexAttribute),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) GenBuffer() uint32 {
	h := d.handle()
	d.Buffers[h] = nil
	return h
}

func (d *Device) BufferData(_ gpu.BufferTarget, handle uint32, data []byte) {
	d.Uploads++
	d.Buffers[handle] = append([]byte(nil), data...)
}

func (d *Device) BindBuffer(target gpu.BufferTarget, handle uint32) {
	d.Bound[target] = handle
}

func (d *Device) DeleteBuffer(handle uint32) {
	d.DeletedBuffers++
	delete(d.Buffers, handle)
}

func (d *Device) GenVertexArray() uint32 {
	h := d.handle()
	d.Attributes[h] = nil
	return h
}

func (d *Device) BindVertexArray(vao uint32) {
	d.VAO = vao
}

func (d *Device) DeleteVertexArray(vao uint32) {
	delete(d.Attributes, vao)
}

// VertexAttribute accepts a name when the linked vertex source mentions it.
func (d *Device) VertexAttribute(program uint32, attr gpu.VertexAttribute) bool {
	if !strings.Contains(d.ProgramSource(program, gpu.VertexStage), attr.Name) {
		return false
	}
	d.Attributes[d.VAO] = append(d.Attributes[d.VAO], attr)
	return true
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (uint32, error) {
	d.Compiles++
	if d.FailCompile != nil {
		if err := d.FailCompile(stage, source); err != nil {
			return 0, err
		}
	}
	h := d.handle()
	d.Shaders[h] = Shader{Stage: stage, Source: source}
	return h, nil
}

func (d *Device) LinkProgram(shaders ...uint32) (uint32, error) {
	d.Links++
	for _, s := range shaders {
		if _, ok := d.Shaders[s]; !ok {
			return 0, fmt.Errorf("link: unknown shader %d", s)
		}
	}
	h := d.handle()
	d.Programs[h] = append([]uint32(nil), shaders...)
	d.Uniforms[h] = make(map[string]any)
	return h, nil
}

func (d *Device) UseProgram(program uint32) {
	d.Uses++
	d.Current = program
}

func (d *Device) DeleteShader(shader uint32) {
	d.DeletedShaders++
	delete(d.Shaders, shader)
}

func (d *Device) DeleteProgram(program uint32) {
	d.DeletedPrograms++
	delete(d.Programs, program)
	delete(d.Uniforms, program)
}

func (d *Device) set(program uint32, name string, v any) {
	if u, ok := d.Uniforms[program]; ok {
		u[name] = v
	}
}

func (d *Device) Uniform1i(p uint32, name string, v int32)           { d.set(p, name, v) }
func (d *Device) Uniform1f(p uint32, name string, v float32)         { d.set(p, name, v) }
func (d *Device) Uniform3f(p uint32, name string, v [3]float32)      { d.set(p, name, v) }
func (d *Device) Uniform1iv(p uint32, name string, v []int32)        { d.set(p, name, v) }
func (d *Device) Uniform1fv(p uint32, name string, v []float32)      { d.set(p, name, v) }
func (d *Device) Uniform3fv(p uint32, name string, v [][3]float32)   { d.set(p, name, v) }
func (d *Device) UniformMatrix3(p uint32, name string, m mgl32.Mat3) { d.set(p, name, m) }
func (d *Device) UniformMatrix4(p uint32, name string, m mgl32.Mat4) { d.set(p, name, m) }
func (d *Device) MaxTextureUnits() int                               { return d.Units }
func (d *Device) BindTexture(unit int, texture uint32)               { d.Textures[unit] = texture }

func (d *Device) Draw(call gpu.DrawCall) { d.Draws = append(d.Draws, call) }

// Uniform returns the last value uploaded for name on program.
func (d *Device) Uniform(program uint32, name string) (any, bool) {
	v, ok := d.Uniforms[program][name]
	return v, ok
}

// ProgramSource returns the source of the given stage linked into program.
func (d *Device) ProgramSource(program uint32, stage gpu.Stage) string {
	for _, s := range d.Programs[program] {
		if sh := d.Shaders[s]; sh.Stage == stage {
			return sh.Source
		}
	}
	return ""
}
