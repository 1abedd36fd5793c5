package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/gpu/gputest"
	"github.com/Faultbox/r4/pkg/math"
)

func TestAxis(t *testing.T) {
	dev := gputest.New()
	axis, err := NewAxis(dev, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, gpu.Lines, axis.DrawMode())
	assert.Equal(t, 6, axis.NumVertices())

	require.NoError(t, axis.Update(2, 3, 4))
	pos := axis.Attribute(0)
	assert.Equal(t, float32(2), pos[3])
	assert.Equal(t, float32(3), pos[10])
	assert.Equal(t, float32(4), pos[17])
	assert.Equal(t, float32(1), axis.Attribute(1)[0], "colors are kept")

	axis.Render(0, 0)
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, 6, dev.Draws[0].Count)
}

func TestBoundingBox(t *testing.T) {
	dev := gputest.New()
	box, err := NewBoundingBox(dev, 0, 1, math.Vec3{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, 24, box.NumElements())

	lo := math.Vec3{X: -1, Y: -2, Z: -3}
	hi := math.Vec3{X: 1, Y: 2, Z: 3}
	require.NoError(t, box.UpdateBounds(lo, hi))

	gotLo, gotHi, ok := box.Bounds()
	require.True(t, ok)
	assert.Equal(t, lo, gotLo)
	assert.Equal(t, hi, gotHi)

	// Every edge joins corners differing along exactly one axis.
	edges := box.Elements(0)
	for i := 0; i < len(edges); i += 2 {
		diff := edges[i] ^ edges[i+1]
		assert.True(t, diff == 1 || diff == 2 || diff == 4, "edge %d-%d", edges[i], edges[i+1])
	}
}

func TestGrid(t *testing.T) {
	g, err := NewGrid(gputest.New(), 0, 1, 4, 2, 0.5, math.Vec3{X: 0.8, Y: 0.8, Z: 0.8})
	require.NoError(t, err)

	assert.Equal(t, 2*(5+3), g.NumVertices())
	lo, hi, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -1, Z: -0.5}, lo)
	assert.Equal(t, math.Vec3{X: 1, Z: 0.5}, hi)
}

func TestTexturedQuad(t *testing.T) {
	dev := gputest.New()
	q, err := NewTexturedQuad(dev, 0, -1, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 2}, q.Layout())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, q.Elements(0))
	for _, attribs := range dev.VertexArrays {
		require.Len(t, attribs, 2, "normal is unbound")
		assert.Equal(t, uint32(2), attribs[1].Location)
		assert.Equal(t, 96, attribs[1].Offset)
	}
}
