package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/gpu/gputest"
	"github.com/Faultbox/r4/pkg/math"
)

// newQuadBuffer returns a 4-vertex, 6-element triangle buffer with layout [3,3,2].
func newQuadBuffer(t *testing.T, dev *gputest.Recorder) *GeometryBuffer {
	t.Helper()
	g := New(dev, 4, 6, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(3, 3, 2))
	return g
}

func TestSetAttributeLayout(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	assert.Equal(t, 8, g.Stride())
	assert.Equal(t, 3, g.NumAttributes())
	assert.Equal(t, []int{3, 3, 2}, g.Layout())
	assert.Len(t, dev.VertexBuffers, 1)
	for _, data := range dev.VertexBuffers {
		assert.Len(t, data, 32)
	}

	assert.ErrorIs(t, g.SetAttributeLayout(3), ErrLayoutAlreadySet)
}

func TestSetAttributeLayoutInvalid(t *testing.T) {
	dev := gputest.New()
	tests := []struct {
		name   string
		widths []int
	}{
		{"empty", nil},
		{"too many", []int{1, 1, 1, 1, 1}},
		{"zero width", []int{3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(dev, 4, 6, gpu.Triangles, gpu.StaticDraw)
			assert.ErrorIs(t, g.SetAttributeLayout(tt.widths...), ErrInvalidLayout)
		})
	}
	assert.Zero(t, dev.Live())
}

func TestSetAttributeLayoutOutOfMemory(t *testing.T) {
	dev := gputest.New()
	dev.AllocLimit = 64

	g := New(dev, 100, 100, gpu.Triangles, gpu.StaticDraw)
	err := g.SetAttributeLayout(3)
	assert.ErrorIs(t, err, gpu.ErrOutOfMemory)

	_, err = g.AddRenderingPass(Bindings(0))
	assert.ErrorIs(t, err, ErrLayoutNotSet)
}

func TestAttributeOffset(t *testing.T) {
	g := newQuadBuffer(t, gputest.New())

	assert.Equal(t, 0, g.AttributeOffset(0))
	assert.Equal(t, 3*4*4, g.AttributeOffset(1))
	assert.Equal(t, 6*4*4, g.AttributeOffset(2))
}

func TestAddRenderingPass(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	full, err := g.AddRenderingPass(Bindings(0, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, full)

	shadow, err := g.AddRenderingPass([]Binding{{Location: 0, Active: true}, NoAttrib, NoAttrib})
	require.NoError(t, err)
	assert.Equal(t, 1, shadow)
	assert.Equal(t, 2, g.NumPasses())

	var attribs [][]gpu.AttribPointer
	for _, a := range dev.VertexArrays {
		attribs = append(attribs, a)
	}
	require.Len(t, attribs, 2)

	want := []gpu.AttribPointer{
		{Location: 0, Size: 3, Offset: 0},
		{Location: 1, Size: 3, Offset: 48},
		{Location: 2, Size: 2, Offset: 96},
	}
	assert.ElementsMatch(t, [][]gpu.AttribPointer{want, want[:1]}, attribs)
}

func TestAddRenderingPassAttributeCount(t *testing.T) {
	for n := 1; n <= 4; n++ {
		widths := make([]int, n)
		for i := range widths {
			widths[i] = 2
		}
		g := New(gputest.New(), 3, 3, gpu.Triangles, gpu.StaticDraw)
		require.NoError(t, g.SetAttributeLayout(widths...))

		locs := make([]int32, n)
		for i := range locs {
			locs[i] = int32(i)
		}
		_, err := g.AddRenderingPass(Bindings(locs...))
		assert.NoError(t, err, "%d attributes", n)

		_, err = g.AddRenderingPass(Bindings(append(locs, int32(n))...))
		assert.ErrorIs(t, err, ErrAttributeCount, "%d attributes", n)

		assert.Panics(t, func() { g.MustAddRenderingPass(Bindings(locs[:n-1]...)) })
	}
}

func TestLoadDefaultElements(t *testing.T) {
	dev := gputest.New()
	g := New(dev, 3, 3, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(3))

	verts := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	require.NoError(t, g.Load(verts, nil))

	assert.Equal(t, 1, g.NumSubGroups())
	assert.Equal(t, []uint32{0, 1, 2}, g.Elements(0))
	assert.Equal(t, verts, g.Vertices())
}

func TestLoadReplacesSubGroups(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	verts := make([]float32, 32)
	elements := []uint32{0, 1, 2, 0, 2, 3}
	require.NoError(t, g.Load(verts, elements))
	_, err := g.AddSubGroup([]uint32{0, 1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumSubGroups())

	require.NoError(t, g.Load(verts, elements))
	assert.Equal(t, 1, g.NumSubGroups())
	assert.Len(t, dev.IndexBuffers, 1)
}

func TestLoadErrors(t *testing.T) {
	g := newQuadBuffer(t, gputest.New())

	assert.ErrorIs(t, g.Load(make([]float32, 31), nil), ErrVertexDataSize)
	assert.ErrorIs(t, g.Load(make([]float32, 32), []uint32{0, 1, 2}), ErrElementCount)
	assert.ErrorIs(t, g.Load(make([]float32, 32), []uint32{0, 1, 2, 0, 2, 4}), ErrIndexOutOfRange)

	// A nil element list over more elements than vertices indexes past the end.
	assert.ErrorIs(t, g.Load(make([]float32, 32), nil), ErrIndexOutOfRange)

	unset := New(gputest.New(), 4, 6, gpu.Triangles, gpu.StaticDraw)
	assert.ErrorIs(t, unset.Load(make([]float32, 32), nil), ErrLayoutNotSet)
}

func TestLoadBadElementsKeepsVertices(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	before := make([]float32, 32)
	for i := range before {
		before[i] = float32(i)
	}
	require.NoError(t, g.Load(before, []uint32{0, 1, 2, 0, 2, 3}))

	after := make([]float32, 32)
	assert.ErrorIs(t, g.Load(after, []uint32{0, 1, 2}), ErrElementCount)
	assert.ErrorIs(t, g.Load(after, []uint32{0, 1, 2, 0, 2, 9}), ErrIndexOutOfRange)
	assert.ErrorIs(t, g.LoadAttributes([][]float32{after[:12], after[12:24], after[24:]}, []uint32{7, 1, 2, 0, 2, 3}), ErrIndexOutOfRange)

	assert.Equal(t, before, g.Vertices())
	for _, data := range dev.VertexBuffers {
		assert.Equal(t, before, data)
	}
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Elements(0))
}

func TestLoadAttributes(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	pos := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	nor := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}
	uv := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	require.NoError(t, g.LoadAttributes([][]float32{pos, nor, uv}, []uint32{0, 1, 2, 0, 2, 3}))

	assert.Equal(t, pos, g.Attribute(0))
	assert.Equal(t, nor, g.Attribute(1))
	assert.Equal(t, uv, g.Attribute(2))

	for _, data := range dev.VertexBuffers {
		assert.Equal(t, append(append(append([]float32{}, pos...), nor...), uv...), data)
	}

	err := g.LoadAttributes([][]float32{pos, nor}, nil)
	assert.ErrorIs(t, err, ErrAttributeCount)
	err = g.LoadAttributes([][]float32{pos, nor, uv[:6]}, nil)
	assert.ErrorIs(t, err, ErrVertexDataSize)
}

func TestUpdateAttributesSkipsNil(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	uv := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	require.NoError(t, g.UpdateAttributes([][]float32{nil, nil, uv}))

	assert.Equal(t, make([]float32, 12), g.Attribute(0))
	assert.Equal(t, uv, g.Attribute(2))
	for _, data := range dev.VertexBuffers {
		assert.Equal(t, uv, data[24:])
	}
}

func TestRender(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)
	pass := g.MustAddRenderingPass(Bindings(0, 1, 2))
	require.NoError(t, g.Load(make([]float32, 32), []uint32{0, 1, 2, 0, 2, 3}))
	sub, err := g.AddSubGroup([]uint32{1, 2, 3}, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, sub)
	assert.Equal(t, 4, g.SubGroup(sub).MaterialIndex)

	g.RenderAll(pass)

	require.Len(t, dev.Draws, 2)
	assert.Equal(t, 6, dev.Draws[0].Count)
	assert.Equal(t, 3, dev.Draws[1].Count)
	for _, d := range dev.Draws {
		assert.Equal(t, gpu.Triangles, d.Mode)
	}
	assert.NotEqual(t, dev.Draws[0].Elements, dev.Draws[1].Elements)

	assert.Panics(t, func() { g.Render(1, 0) })
	assert.Panics(t, func() { g.Render(0, 2) })
	assert.Panics(t, func() { g.Render(-1, 0) })
}

func TestSetMaterialIndex(t *testing.T) {
	g := newQuadBuffer(t, gputest.New())
	require.NoError(t, g.Load(make([]float32, 32), []uint32{0, 1, 2, 0, 2, 3}))

	g.SetMaterialIndex(0, 3)
	assert.Equal(t, 3, g.SubGroup(0).MaterialIndex)
}

func TestAddSubGroupOutOfRange(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)

	_, err := g.AddSubGroup([]uint32{0, 1, 4}, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Zero(t, g.NumSubGroups())
	assert.Empty(t, dev.IndexBuffers)
}

func TestDestroyReleasesEverything(t *testing.T) {
	dev := gputest.New()
	g := newQuadBuffer(t, dev)
	g.MustAddRenderingPass(Bindings(0, 1, 2))
	g.MustAddRenderingPass(Bindings(0, -1, -1))
	require.NoError(t, g.Load(make([]float32, 32), []uint32{0, 1, 2, 0, 2, 3}))
	_, err := g.AddSubGroup([]uint32{0, 1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, dev.Live())

	g.Destroy()
	assert.Zero(t, dev.Live())
	assert.Zero(t, g.NumPasses())
	assert.Zero(t, g.NumSubGroups())
}

func TestBounds(t *testing.T) {
	g := New(gputest.New(), 3, 3, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(3))
	require.NoError(t, g.Load([]float32{-1, 2, 0, 3, -4, 1, 0, 0, 5}, nil))

	lo, hi, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -1, Y: -4, Z: 0}, lo)
	assert.Equal(t, math.Vec3{X: 3, Y: 2, Z: 5}, hi)

	uvOnly := New(gputest.New(), 3, 3, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, uvOnly.SetAttributeLayout(2))
	_, _, ok = uvOnly.Bounds()
	assert.False(t, ok)
}

func TestSequence(t *testing.T) {
	assert.Equal(t, []uint32{3, 4, 5}, Sequence(3, 3))
	assert.Empty(t, Sequence(0, 0))
}
