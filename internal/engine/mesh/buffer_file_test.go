package mesh

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/gpu/gputest"
	"github.com/Faultbox/r4/pkg/formats"
)

// twoTriangles returns 6 vertices of layout [3,3] with distinct values.
func twoTriangles() []float32 {
	v := make([]float32, 36)
	for i := range v {
		v[i] = float32(i)
	}
	return v
}

func TestToMeshBufferSequential(t *testing.T) {
	g := New(gputest.New(), 6, 6, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(3, 3))
	require.NoError(t, g.Load(twoTriangles(), nil))

	mb, err := g.ToMeshBuffer("box.obj")
	require.NoError(t, err)

	assert.Equal(t, "box.obj", mb.OriginName)
	assert.Equal(t, 6, mb.NumVertices)
	assert.Equal(t, 6, mb.NumElements)
	assert.Equal(t, []int{3, 3}, mb.Layout)
	assert.Equal(t, formats.ModeTriangles, mb.DrawMode)
	assert.Equal(t, twoTriangles(), mb.Vertices)
	assert.Empty(t, mb.SubGroups)
	assert.NoError(t, mb.Validate())
}

func TestToMeshBufferExpandsIndexed(t *testing.T) {
	g := New(gputest.New(), 4, 6, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(1))
	require.NoError(t, g.Load([]float32{10, 11, 12, 13}, []uint32{0, 1, 2, 0, 2, 3}))
	_, err := g.AddSubGroup([]uint32{3, 2, 1}, 5)
	require.NoError(t, err)

	mb, err := g.ToMeshBuffer("quad")
	require.NoError(t, err)

	assert.Equal(t, 9, mb.NumVertices)
	assert.Equal(t, 9, mb.NumElements)
	assert.Equal(t, []float32{10, 11, 12, 10, 12, 13, 13, 12, 11}, mb.Vertices)
	assert.Equal(t, []formats.SubGroupEntry{{FirstFace: 0, MaterialIndex: 0}, {FirstFace: 2, MaterialIndex: 5}}, mb.SubGroups)
}

func TestToMeshBufferMisalignedSubGroup(t *testing.T) {
	g := New(gputest.New(), 4, 4, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, g.SetAttributeLayout(1))
	require.NoError(t, g.Load(make([]float32, 4), nil))
	_, err := g.AddSubGroup([]uint32{0, 1, 2}, 1)
	require.NoError(t, err)

	_, err = g.ToMeshBuffer("bad")
	assert.ErrorIs(t, err, formats.ErrSubGroupTable)

	unset := New(gputest.New(), 4, 4, gpu.Triangles, gpu.StaticDraw)
	_, err = unset.ToMeshBuffer("unset")
	assert.ErrorIs(t, err, ErrLayoutNotSet)
}

func TestFromMeshBuffer(t *testing.T) {
	dev := gputest.New()
	mb := &formats.MeshBuffer{
		OriginName:  "crate",
		NumVertices: 6,
		NumElements: 6,
		Layout:      []int{3, 3},
		DrawMode:    formats.ModeTriangles,
		Vertices:    twoTriangles(),
		SubGroups:   []formats.SubGroupEntry{{FirstFace: 0, MaterialIndex: 1}, {FirstFace: 1, MaterialIndex: 0}},
	}

	g, err := FromMeshBuffer(dev, mb)
	require.NoError(t, err)

	assert.Equal(t, gpu.Triangles, g.DrawMode())
	assert.Equal(t, twoTriangles(), g.Vertices())
	require.Equal(t, 2, g.NumSubGroups())
	assert.Equal(t, []uint32{0, 1, 2}, g.Elements(0))
	assert.Equal(t, 1, g.SubGroup(0).MaterialIndex)
	assert.Equal(t, []uint32{3, 4, 5}, g.Elements(1))
	assert.Equal(t, 0, g.SubGroup(1).MaterialIndex)
	assert.Zero(t, g.NumPasses())

	bad := *mb
	bad.Vertices = bad.Vertices[:10]
	_, err = FromMeshBuffer(dev, &bad)
	assert.ErrorIs(t, err, ErrVertexDataSize)
}

func TestLoadFileRoundTrip(t *testing.T) {
	dev := gputest.New()
	src := New(dev, 6, 6, gpu.Triangles, gpu.StaticDraw)
	require.NoError(t, src.SetAttributeLayout(3, 3))
	require.NoError(t, src.Load(twoTriangles(), nil))
	src.SetMaterialIndex(0, 2)

	mb, err := src.ToMeshBuffer("crate")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "g0.glb")
	require.NoError(t, mb.WriteFile(path))

	g, err := LoadFile(dev, path)
	require.NoError(t, err)
	assert.Equal(t, src.Vertices(), g.Vertices())
	assert.Equal(t, src.Layout(), g.Layout())
	require.Equal(t, 1, g.NumSubGroups())
	// A single subgroup is stored without a table, so its material resets to 0.
	assert.Equal(t, 0, g.SubGroup(0).MaterialIndex)

	_, err = LoadFile(dev, filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}
