// Package glgpu implements gpu.Device with OpenGL 4.1 core.
package glgpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/logger"
)

// Device implements gpu.Device on the current OpenGL context.
type Device struct{}

var _ gpu.Device = (*Device)(nil)

// New loads the OpenGL function pointers for the current context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return &Device{}, nil
}

// checkAlloc drains the error queue after an allocation.
func checkAlloc(what string, size int) error {
	var outOfMemory bool
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		if e == gl.OUT_OF_MEMORY {
			outOfMemory = true
		}
	}
	if outOfMemory {
		return fmt.Errorf("%w: %s of %d bytes", gpu.ErrOutOfMemory, what, size)
	}
	return nil
}

// CreateVertexBuffer uploads data into a new GL_ARRAY_BUFFER.
func (d *Device) CreateVertexBuffer(data []float32, usage gpu.Usage) (gpu.Buffer, error) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, ptr, uint32(usage))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkAlloc("vertex buffer", len(data)*4); err != nil {
		gl.DeleteBuffers(1, &vbo)
		return 0, err
	}
	return gpu.Buffer(vbo), nil
}

// UpdateVertexBuffer overwrites data starting at float offset.
func (d *Device) UpdateVertexBuffer(buf gpu.Buffer, offset int, data []float32) error {
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.BufferSubData(gl.ARRAY_BUFFER, offset*4, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("gpu: updating vertex buffer %d: error 0x%x", buf, e)
	}
	return nil
}

// CreateIndexBuffer uploads indices into a new GL_ELEMENT_ARRAY_BUFFER.
func (d *Device) CreateIndexBuffer(indices []uint32, usage gpu.Usage) (gpu.Buffer, error) {
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)

	var ptr unsafe.Pointer
	if len(indices) > 0 {
		ptr = gl.Ptr(indices)
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, ptr, uint32(usage))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	if err := checkAlloc("index buffer", len(indices)*4); err != nil {
		gl.DeleteBuffers(1, &ebo)
		return 0, err
	}
	return gpu.Buffer(ebo), nil
}

// CreateVertexArray records attrib pointers into vbo in a new VAO.
func (d *Device) CreateVertexArray(vbo gpu.Buffer, attribs []gpu.AttribPointer) (gpu.VertexArray, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vbo))

	for _, a := range attribs {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, int32(a.Size), gl.FLOAT, false, 0, uintptr(a.Offset))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteVertexArrays(1, &vao)
		return 0, fmt.Errorf("gpu: creating vertex array: error 0x%x", e)
	}
	return gpu.VertexArray(vao), nil
}

// DrawElements draws count indices of ebo through va.
func (d *Device) DrawElements(va gpu.VertexArray, ebo gpu.Buffer, mode gpu.DrawMode, count int) {
	gl.BindVertexArray(uint32(va))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(ebo))
	gl.DrawElementsWithOffset(uint32(mode), int32(count), gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// DeleteBuffer releases a vertex or index buffer.
func (d *Device) DeleteBuffer(buf gpu.Buffer) {
	b := uint32(buf)
	gl.DeleteBuffers(1, &b)
}

// DeleteVertexArray releases a VAO.
func (d *Device) DeleteVertexArray(va gpu.VertexArray) {
	v := uint32(va)
	gl.DeleteVertexArrays(1, &v)
}

// CreateTexture uploads img as a mipmapped RGBA texture.
func (d *Device) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("gpu: empty texture %dx%d", w, h)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkAlloc("texture", len(img.Pix)); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return gpu.Texture(tex), nil
}

// BindTexture binds tex to texture unit.
func (d *Device) BindTexture(unit int, tex gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// DeleteTexture releases a texture.
func (d *Device) DeleteTexture(tex gpu.Texture) {
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
}
