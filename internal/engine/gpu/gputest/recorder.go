// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"fmt"
	"image"

	"github.com/Faultbox/r4/internal/engine/gpu"
)

// DrawCall is one recorded DrawElements call.
type DrawCall struct {
	VertexArray gpu.VertexArray
	Elements    gpu.Buffer
	Mode        gpu.DrawMode
	Count       int
}

// Recorder keeps buffer contents in memory and records draw calls.
type Recorder struct {
	VertexBuffers map[gpu.Buffer][]float32
	IndexBuffers  map[gpu.Buffer][]uint32
	VertexArrays  map[gpu.VertexArray][]gpu.AttribPointer
	Textures      map[gpu.Texture]image.Rectangle
	Bound         map[int]gpu.Texture
	Draws         []DrawCall

	// AllocLimit, when positive, fails any single allocation larger than
	// this many bytes with gpu.ErrOutOfMemory.
	AllocLimit int

	next uint32
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		VertexBuffers: make(map[gpu.Buffer][]float32),
		IndexBuffers:  make(map[gpu.Buffer][]uint32),
		VertexArrays:  make(map[gpu.VertexArray][]gpu.AttribPointer),
		Textures:      make(map[gpu.Texture]image.Rectangle),
		Bound:         make(map[int]gpu.Texture),
	}
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) checkAlloc(size int) error {
	if r.AllocLimit > 0 && size > r.AllocLimit {
		return fmt.Errorf("%w: %d bytes", gpu.ErrOutOfMemory, size)
	}
	return nil
}

// Live returns the number of buffers, vertex arrays and textures not yet deleted.
func (r *Recorder) Live() int {
	return len(r.VertexBuffers) + len(r.IndexBuffers) + len(r.VertexArrays) + len(r.Textures)
}

func (r *Recorder) CreateVertexBuffer(data []float32, _ gpu.Usage) (gpu.Buffer, error) {
	if err := r.checkAlloc(len(data) * 4); err != nil {
		return 0, err
	}
	b := gpu.Buffer(r.handle())
	r.VertexBuffers[b] = append([]float32(nil), data...)
	return b, nil
}

func (r *Recorder) UpdateVertexBuffer(buf gpu.Buffer, offset int, data []float32) error {
	dst, ok := r.VertexBuffers[buf]
	if !ok {
		return fmt.Errorf("gputest: unknown vertex buffer %d", buf)
	}
	if offset < 0 || offset+len(data) > len(dst) {
		return fmt.Errorf("gputest: update [%d,%d) outside buffer of %d floats", offset, offset+len(data), len(dst))
	}
	copy(dst[offset:], data)
	return nil
}

func (r *Recorder) CreateIndexBuffer(indices []uint32, _ gpu.Usage) (gpu.Buffer, error) {
	if err := r.checkAlloc(len(indices) * 4); err != nil {
		return 0, err
	}
	b := gpu.Buffer(r.handle())
	r.IndexBuffers[b] = append([]uint32(nil), indices...)
	return b, nil
}

func (r *Recorder) CreateVertexArray(vbo gpu.Buffer, attribs []gpu.AttribPointer) (gpu.VertexArray, error) {
	if _, ok := r.VertexBuffers[vbo]; !ok {
		return 0, fmt.Errorf("gputest: unknown vertex buffer %d", vbo)
	}
	va := gpu.VertexArray(r.handle())
	r.VertexArrays[va] = append([]gpu.AttribPointer(nil), attribs...)
	return va, nil
}

func (r *Recorder) DrawElements(va gpu.VertexArray, ebo gpu.Buffer, mode gpu.DrawMode, count int) {
	r.Draws = append(r.Draws, DrawCall{VertexArray: va, Elements: ebo, Mode: mode, Count: count})
}

func (r *Recorder) DeleteBuffer(buf gpu.Buffer) {
	delete(r.VertexBuffers, buf)
	delete(r.IndexBuffers, buf)
}

func (r *Recorder) DeleteVertexArray(va gpu.VertexArray) {
	delete(r.VertexArrays, va)
}

func (r *Recorder) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if img.Bounds().Empty() {
		return 0, fmt.Errorf("gputest: empty texture")
	}
	if err := r.checkAlloc(len(img.Pix)); err != nil {
		return 0, err
	}
	t := gpu.Texture(r.handle())
	r.Textures[t] = img.Bounds()
	return t, nil
}

func (r *Recorder) BindTexture(unit int, tex gpu.Texture) {
	r.Bound[unit] = tex
}

func (r *Recorder) DeleteTexture(tex gpu.Texture) {
	delete(r.Textures, tex)
}

var _ gpu.Device = (*Recorder)(nil)
