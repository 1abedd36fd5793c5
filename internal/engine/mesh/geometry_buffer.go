// Package mesh provides GPU geometry buffers, material libraries and static
// objects loaded from processed asset files.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/math"
)

// Geometry buffer errors.
var (
	ErrLayoutAlreadySet = errors.New("attribute layout already set")
	ErrLayoutNotSet     = errors.New("attribute layout not set")
	ErrInvalidLayout    = errors.New("invalid attribute layout")
	ErrAttributeCount   = errors.New("binding count does not match attribute count")
	ErrVertexDataSize   = errors.New("vertex data size mismatch")
	ErrElementCount     = errors.New("element count mismatch")
	ErrIndexOutOfRange  = errors.New("element index out of range")
)

// Binding maps one attribute to a shader input location for a rendering pass.
// Inactive attributes, or attributes bound to a negative location, are not
// enabled in that pass.
type Binding struct {
	Location int32
	Active   bool
}

// NoAttrib is the binding for an attribute a pass does not use.
var NoAttrib = Binding{Location: -1}

// Bindings returns active bindings for the given locations in attribute order.
func Bindings(locations ...int32) []Binding {
	b := make([]Binding, len(locations))
	for i, loc := range locations {
		b[i] = Binding{Location: loc, Active: loc >= 0}
	}
	return b
}

// SubGroup is an independent element buffer drawn with one material.
type SubGroup struct {
	MaterialIndex int
	Count         int

	buf      gpu.Buffer
	elements []uint32
}

type renderingPass struct {
	bindings []Binding
	va       gpu.VertexArray
}

// GeometryBuffer owns one vertex buffer and any number of element buffers
// ("subgroups") over it. Vertex data is stored attribute-major: all values of
// attribute 0, then all values of attribute 1, and so on. A rendering pass is
// one mapping of those attributes onto shader locations.
//
// The attribute layout is fixed once with SetAttributeLayout, which also
// allocates vertex storage. Passes may be added before or after data is loaded.
type GeometryBuffer struct {
	dev         gpu.Device
	numVertices int
	numElements int
	mode        gpu.DrawMode
	usage       gpu.Usage

	layout []int
	stride int
	vbo    gpu.Buffer
	data   []float32

	passes    []renderingPass
	subGroups []SubGroup
}

// New creates an empty geometry buffer. No device storage is allocated
// until SetAttributeLayout.
func New(dev gpu.Device, numVertices, numElements int, mode gpu.DrawMode, usage gpu.Usage) *GeometryBuffer {
	return &GeometryBuffer{
		dev:         dev,
		numVertices: numVertices,
		numElements: numElements,
		mode:        mode,
		usage:       usage,
	}
}

// SetAttributeLayout fixes the per-vertex attribute widths and allocates a
// zeroed vertex buffer of stride*numVertices floats.
func (g *GeometryBuffer) SetAttributeLayout(widths ...int) error {
	if g.layout != nil {
		return ErrLayoutAlreadySet
	}
	if len(widths) == 0 || len(widths) > formats.MaxAttributes {
		return fmt.Errorf("%w: %d attributes", ErrInvalidLayout, len(widths))
	}

	stride := 0
	for i, w := range widths {
		if w <= 0 {
			return fmt.Errorf("%w: attribute %d has width %d", ErrInvalidLayout, i, w)
		}
		stride += w
	}

	data := make([]float32, stride*g.numVertices)
	vbo, err := g.dev.CreateVertexBuffer(data, g.usage)
	if err != nil {
		return fmt.Errorf("allocating vertex buffer: %w", err)
	}

	g.layout = append([]int(nil), widths...)
	g.stride = stride
	g.vbo = vbo
	g.data = data
	return nil
}

// AttributeOffset returns the byte offset of attribute i in vertex storage.
func (g *GeometryBuffer) AttributeOffset(i int) int {
	offset := 0
	for j := 0; j < i; j++ {
		offset += g.layout[j]
	}
	return offset * g.numVertices * formats.FloatSize
}

// AddRenderingPass registers a binding configuration and returns its id.
// There must be exactly one binding per attribute.
func (g *GeometryBuffer) AddRenderingPass(bindings []Binding) (int, error) {
	if g.layout == nil {
		return 0, ErrLayoutNotSet
	}
	if len(bindings) != len(g.layout) {
		return 0, fmt.Errorf("%w: got %d bindings for %d attributes", ErrAttributeCount, len(bindings), len(g.layout))
	}

	attribs := make([]gpu.AttribPointer, 0, len(bindings))
	for i, b := range bindings {
		if !b.Active || b.Location < 0 {
			continue
		}
		attribs = append(attribs, gpu.AttribPointer{
			Location: uint32(b.Location),
			Size:     g.layout[i],
			Offset:   g.AttributeOffset(i),
		})
	}

	va, err := g.dev.CreateVertexArray(g.vbo, attribs)
	if err != nil {
		return 0, err
	}
	g.passes = append(g.passes, renderingPass{bindings: append([]Binding(nil), bindings...), va: va})
	return len(g.passes) - 1, nil
}

// MustAddRenderingPass is like AddRenderingPass but panics on error.
// A mismatched binding count is a programming error in the caller.
func (g *GeometryBuffer) MustAddRenderingPass(bindings []Binding) int {
	id, err := g.AddRenderingPass(bindings)
	if err != nil {
		panic(fmt.Sprintf("mesh: adding rendering pass: %v", err))
	}
	return id
}

// Load uploads attribute-major vertex data (stride*numVertices floats) and
// replaces all subgroups with one built from elements. A nil
// elements slice draws vertices 0..numElements-1 in order.
func (g *GeometryBuffer) Load(vertices []float32, elements []uint32) error {
	if err := g.checkElements(elements); err != nil {
		return err
	}
	if err := g.Update(vertices); err != nil {
		return err
	}
	return g.resetElements(elements)
}

// LoadAttributes is Load with one slice per attribute. The slices are
// concatenated in attribute order, not interleaved.
func (g *GeometryBuffer) LoadAttributes(attributes [][]float32, elements []uint32) error {
	if err := g.checkElements(elements); err != nil {
		return err
	}
	if err := g.UpdateAttributes(attributes); err != nil {
		return err
	}
	return g.resetElements(elements)
}

// Update overwrites the whole vertex buffer in place.
func (g *GeometryBuffer) Update(vertices []float32) error {
	if g.layout == nil {
		return ErrLayoutNotSet
	}
	if len(vertices) != len(g.data) {
		return fmt.Errorf("%w: got %d floats, want %d", ErrVertexDataSize, len(vertices), len(g.data))
	}
	if err := g.dev.UpdateVertexBuffer(g.vbo, 0, vertices); err != nil {
		return err
	}
	copy(g.data, vertices)
	return nil
}

// UpdateAttributes overwrites vertex storage one attribute at a time. A nil
// entry leaves that attribute unchanged.
func (g *GeometryBuffer) UpdateAttributes(attributes [][]float32) error {
	if g.layout == nil {
		return ErrLayoutNotSet
	}
	if len(attributes) != len(g.layout) {
		return fmt.Errorf("%w: got %d buffers for %d attributes", ErrAttributeCount, len(attributes), len(g.layout))
	}
	for i, attr := range attributes {
		if attr != nil && len(attr) != g.layout[i]*g.numVertices {
			return fmt.Errorf("%w: attribute %d has %d floats, want %d", ErrVertexDataSize, i, len(attr), g.layout[i]*g.numVertices)
		}
	}

	for i, attr := range attributes {
		if attr == nil {
			continue
		}
		offset := g.AttributeOffset(i) / formats.FloatSize
		if err := g.dev.UpdateVertexBuffer(g.vbo, offset, attr); err != nil {
			return err
		}
		copy(g.data[offset:], attr)
	}
	return nil
}

// checkElements validates a Load element list without touching any state.
func (g *GeometryBuffer) checkElements(elements []uint32) error {
	if elements == nil {
		elements = Sequence(0, g.numElements)
	} else if len(elements) != g.numElements {
		return fmt.Errorf("%w: got %d elements, want %d", ErrElementCount, len(elements), g.numElements)
	}
	return g.checkIndices(elements)
}

func (g *GeometryBuffer) resetElements(elements []uint32) error {
	if err := g.checkElements(elements); err != nil {
		return err
	}
	if elements == nil {
		elements = Sequence(0, g.numElements)
	}

	buf, err := g.dev.CreateIndexBuffer(elements, gpu.StaticDraw)
	if err != nil {
		return fmt.Errorf("allocating element buffer: %w", err)
	}
	g.deleteSubGroups()
	g.subGroups = []SubGroup{{Count: len(elements), buf: buf, elements: append([]uint32(nil), elements...)}}
	return nil
}

// AddSubGroup appends an element buffer drawn with the given material and
// returns its id. Ids are dense and in insertion order.
func (g *GeometryBuffer) AddSubGroup(elements []uint32, materialIndex int) (int, error) {
	if err := g.checkIndices(elements); err != nil {
		return 0, err
	}
	buf, err := g.dev.CreateIndexBuffer(elements, gpu.StaticDraw)
	if err != nil {
		return 0, fmt.Errorf("allocating element buffer: %w", err)
	}
	g.subGroups = append(g.subGroups, SubGroup{
		MaterialIndex: materialIndex,
		Count:         len(elements),
		buf:           buf,
		elements:      append([]uint32(nil), elements...),
	})
	return len(g.subGroups) - 1, nil
}

func (g *GeometryBuffer) checkIndices(elements []uint32) error {
	for i, e := range elements {
		if int(e) >= g.numVertices {
			return fmt.Errorf("%w: element %d is %d, have %d vertices", ErrIndexOutOfRange, i, e, g.numVertices)
		}
	}
	return nil
}

// SetMaterialIndex changes the material of a subgroup.
func (g *GeometryBuffer) SetMaterialIndex(subGroup, materialIndex int) {
	g.subGroups[subGroup].MaterialIndex = materialIndex
}

// Render draws one subgroup using one rendering pass. Unknown ids panic.
func (g *GeometryBuffer) Render(pass, subGroup int) {
	if pass < 0 || pass >= len(g.passes) {
		panic(fmt.Sprintf("mesh: rendering pass %d out of range [0,%d)", pass, len(g.passes)))
	}
	if subGroup < 0 || subGroup >= len(g.subGroups) {
		panic(fmt.Sprintf("mesh: subgroup %d out of range [0,%d)", subGroup, len(g.subGroups)))
	}
	sg := g.subGroups[subGroup]
	g.dev.DrawElements(g.passes[pass].va, sg.buf, g.mode, sg.Count)
}

// RenderAll draws every subgroup with the given pass.
func (g *GeometryBuffer) RenderAll(pass int) {
	for i := range g.subGroups {
		g.Render(pass, i)
	}
}

func (g *GeometryBuffer) deleteSubGroups() {
	for _, sg := range g.subGroups {
		g.dev.DeleteBuffer(sg.buf)
	}
	g.subGroups = nil
}

// Destroy releases all device resources. The buffer must not be used afterwards.
func (g *GeometryBuffer) Destroy() {
	for _, p := range g.passes {
		g.dev.DeleteVertexArray(p.va)
	}
	g.passes = nil
	g.deleteSubGroups()
	if g.vbo != 0 {
		g.dev.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
}

// NumVertices returns the vertex count.
func (g *GeometryBuffer) NumVertices() int { return g.numVertices }

// NumElements returns the element count given at construction.
func (g *GeometryBuffer) NumElements() int { return g.numElements }

// NumAttributes returns the attribute count.
func (g *GeometryBuffer) NumAttributes() int { return len(g.layout) }

// Stride returns the number of floats per vertex.
func (g *GeometryBuffer) Stride() int { return g.stride }

// Layout returns a copy of the attribute widths.
func (g *GeometryBuffer) Layout() []int { return append([]int(nil), g.layout...) }

// DrawMode returns the topology.
func (g *GeometryBuffer) DrawMode() gpu.DrawMode { return g.mode }

// NumPasses returns the number of rendering passes.
func (g *GeometryBuffer) NumPasses() int { return len(g.passes) }

// NumSubGroups returns the number of subgroups.
func (g *GeometryBuffer) NumSubGroups() int { return len(g.subGroups) }

// SubGroup returns subgroup i.
func (g *GeometryBuffer) SubGroup(i int) SubGroup { return g.subGroups[i] }

// Elements returns a copy of subgroup i's element indices.
func (g *GeometryBuffer) Elements(i int) []uint32 {
	return append([]uint32(nil), g.subGroups[i].elements...)
}

// Vertices returns a copy of the vertex data.
func (g *GeometryBuffer) Vertices() []float32 { return append([]float32(nil), g.data...) }

// Attribute returns a copy of attribute i's values.
func (g *GeometryBuffer) Attribute(i int) []float32 {
	start := g.AttributeOffset(i) / formats.FloatSize
	return append([]float32(nil), g.data[start:start+g.layout[i]*g.numVertices]...)
}

// Bounds returns the axis-aligned bounds of attribute 0, which must be a
// 3-component position. ok is false for empty or non-3D geometry.
func (g *GeometryBuffer) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(g.layout) == 0 || g.layout[0] != 3 || g.numVertices == 0 {
		return lo, hi, false
	}
	pos := g.data[:3*g.numVertices]
	lo = math.Vec3{X: pos[0], Y: pos[1], Z: pos[2]}
	hi = lo
	for i := 3; i < len(pos); i += 3 {
		p := math.Vec3{X: pos[i], Y: pos[i+1], Z: pos[i+2]}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, true
}

// Sequence returns the indices first..first+count-1.
func Sequence(first, count int) []uint32 {
	s := make([]uint32, count)
	for i := range s {
		s[i] = uint32(first + i)
	}
	return s
}
