package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/gpu/gputest"
)

func TestStripElementCount(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{2, 2, 4},
		{4, 4, 28},
		{2, 3, 10},
		{5, 5, 46},
		{3, 2, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripElementCount(tt.w, tt.h), "%dx%d", tt.w, tt.h)
		assert.Len(t, appendStripIndices(nil, tt.w, tt.h), tt.want, "%dx%d", tt.w, tt.h)
	}
}

func TestStripIndices(t *testing.T) {
	got := appendStripIndices(nil, 2, 3)
	want := []uint32{
		0, 2, 1, 3, // rows 0-1
		3, 2, // degenerate join
		2, 4, 3, 5, // rows 1-2
	}
	assert.Equal(t, want, got)
}

func TestBuildChunkData(t *testing.T) {
	geom := NewHeightmapGeometry(rampField(8, 8))
	geom.Scale = 2
	geom.HeightScale = 5
	geom.TexScale = 4

	c, err := BuildChunkData(geom, 2, 3, 4, 4)
	require.NoError(t, err)

	assert.Equal(t, 16, c.NumVertices())
	assert.Len(t, c.Positions, 48)
	assert.Len(t, c.Normals, 48)
	assert.Len(t, c.UVs, 32)
	assert.Len(t, c.Indices, 28)

	// Vertex (1, 2) of the chunk is global sample (3, 5).
	i := 2*4 + 1
	p := geom.PositionAt(3, 5)
	assert.Equal(t, []float32{p.X, p.Y, p.Z}, c.Positions[3*i:3*i+3])
	assert.Equal(t, []float32{3.0 / 4, 5.0 / 4}, c.UVs[2*i:2*i+2])

	for i := 0; i < c.NumVertices(); i++ {
		n := c.Normals[3*i : 3*i+3]
		assert.InDelta(t, 1, n[0]*n[0]+n[1]*n[1]+n[2]*n[2], 1e-5)
		for _, x := range n {
			assert.GreaterOrEqual(t, x, float32(0))
		}
	}
	for _, idx := range c.Indices {
		assert.Less(t, int(idx), c.NumVertices())
	}
}

func TestBuildChunkDataTooSmall(t *testing.T) {
	geom := NewHeightmapGeometry(rampField(4, 4))
	for _, wh := range [][2]int{{1, 4}, {4, 1}, {0, 0}} {
		_, err := BuildChunkData(geom, 0, 0, wh[0], wh[1])
		assert.ErrorIs(t, err, ErrChunkTooSmall, "%v", wh)
	}
}

func TestBuildChunk(t *testing.T) {
	dev := gputest.New()
	geom := NewHeightmapGeometry(rampField(4, 4))

	g, err := BuildChunk(dev, geom, 0, 0, 4, 4)
	require.NoError(t, err)

	assert.Equal(t, gpu.TriangleStrip, g.DrawMode())
	assert.Equal(t, 16, g.NumVertices())
	assert.Equal(t, 28, g.NumElements())
	assert.Equal(t, []int{3, 3, 2}, g.Layout())
	assert.Equal(t, 1, g.NumPasses())

	g.Render(0, 0)
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, gpu.TriangleStrip, dev.Draws[0].Mode)
	assert.Equal(t, 28, dev.Draws[0].Count)

	_, err = BuildChunk(dev, geom, 0, 0, 1, 4)
	assert.ErrorIs(t, err, ErrChunkTooSmall)
}
