// Package gpu defines the graphics device used by geometry and material code.
//
// Geometry never calls the graphics API directly. It receives a Device, which
// is backed by glgpu at runtime and by gputest.Recorder in tests.
package gpu

import (
	"errors"
	"image"
)

// ErrOutOfMemory is returned when the device cannot allocate storage.
var ErrOutOfMemory = errors.New("gpu: out of memory")

// DrawMode is a primitive topology. Values match the OpenGL enums.
type DrawMode uint32

// Draw modes.
const (
	Lines         DrawMode = 0x0001
	Triangles     DrawMode = 0x0004
	TriangleStrip DrawMode = 0x0005
)

// String returns the topology name.
func (m DrawMode) String() string {
	switch m {
	case Lines:
		return "lines"
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	default:
		return "unknown"
	}
}

// Usage hints how often buffer contents change. Values match the OpenGL enums.
type Usage uint32

// Buffer usages.
const (
	StaticDraw  Usage = 0x88E4
	DynamicDraw Usage = 0x88E8
)

// Handles are opaque device object names. Zero is never a valid handle.
type (
	Buffer      uint32
	VertexArray uint32
	Texture     uint32
)

// AttribPointer binds one float attribute to a shader location. Offset is in
// bytes from the start of the vertex buffer; attributes are tightly packed.
type AttribPointer struct {
	Location uint32
	Size     int
	Offset   int
}

// Device allocates and draws GPU resources. All calls must come from the
// thread that owns the graphics context.
type Device interface {
	// CreateVertexBuffer allocates a float buffer initialized with data.
	CreateVertexBuffer(data []float32, usage Usage) (Buffer, error)
	// UpdateVertexBuffer overwrites part of a vertex buffer. offset is in floats.
	UpdateVertexBuffer(buf Buffer, offset int, data []float32) error
	// CreateIndexBuffer allocates an element buffer.
	CreateIndexBuffer(indices []uint32, usage Usage) (Buffer, error)
	// CreateVertexArray records attribute bindings over vbo.
	CreateVertexArray(vbo Buffer, attribs []AttribPointer) (VertexArray, error)
	// DrawElements draws count indices from ebo using the bindings in va.
	DrawElements(va VertexArray, ebo Buffer, mode DrawMode, count int)
	DeleteBuffer(buf Buffer)
	DeleteVertexArray(va VertexArray)

	// CreateTexture uploads an image with mipmaps and repeat wrapping.
	CreateTexture(img *image.RGBA) (Texture, error)
	// BindTexture binds tex to a texture unit. Zero unbinds.
	BindTexture(unit int, tex Texture)
	DeleteTexture(tex Texture)
}
