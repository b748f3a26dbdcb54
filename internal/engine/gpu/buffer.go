package gpu

import "unsafe"

// Buffer owns a single buffer object on a device.
// The handle is created on first upload and lives until Delete.
type Buffer struct {
	dev    BufferDevice
	target BufferTarget
	handle uint32
	size   int
}

// NewBuffer creates an empty buffer bound to target.
func NewBuffer(dev BufferDevice, target BufferTarget) *Buffer {
	return &Buffer{dev: dev, target: target}
}

// Upload replaces the buffer contents. The buffer is left bound.
func (b *Buffer) Upload(data []byte) {
	if b.handle == 0 {
		b.handle = b.dev.GenBuffer()
	}
	b.dev.BindBuffer(b.target, b.handle)
	b.dev.BufferData(b.target, b.handle, data)
	b.size = len(data)
}

// UploadFloat32 uploads float32 values in native byte order.
func (b *Buffer) UploadFloat32(data []float32) {
	b.Upload(Float32Bytes(data))
}

// UploadUint32 uploads uint32 values in native byte order.
func (b *Buffer) UploadUint32(data []uint32) {
	b.Upload(Uint32Bytes(data))
}

// Bind binds the buffer to its target.
func (b *Buffer) Bind() {
	b.dev.BindBuffer(b.target, b.handle)
}

// Release unbinds the buffer target.
func (b *Buffer) Release() {
	b.dev.BindBuffer(b.target, 0)
}

// Delete frees the buffer object. The Buffer may be uploaded again afterwards.
func (b *Buffer) Delete() {
	if b.handle != 0 {
		b.dev.DeleteBuffer(b.handle)
		b.handle = 0
		b.size = 0
	}
}

// Handle returns the device handle, 0 before the first upload.
func (b *Buffer) Handle() uint32 { return b.handle }

// Size returns the uploaded size in bytes.
func (b *Buffer) Size() int { return b.size }

// Target returns the binding target.
func (b *Buffer) Target() BufferTarget { return b.target }

// Float32Bytes reinterprets a float32 slice as bytes without copying.
func Float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// Uint32Bytes reinterprets a uint32 slice as bytes without copying.
func Uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
