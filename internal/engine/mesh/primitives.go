package mesh

import (
	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/pkg/math"
)

// Axis is a line mesh of the three coordinate axes colored red, green and blue.
type Axis struct {
	*GeometryBuffer
}

// NewAxis builds a unit axis gizmo for a position/color shader.
func NewAxis(dev gpu.Device, posLoc, colorLoc int32) (*Axis, error) {
	g, err := newLineMesh(dev, 6, 6, posLoc, colorLoc)
	if err != nil {
		return nil, err
	}
	colors := []float32{
		1, 0, 0, 1, 0, 0,
		0, 1, 0, 0, 1, 0,
		0, 0, 1, 0, 0, 1,
	}
	if err := g.LoadAttributes([][]float32{axisPositions(1, 1, 1), colors}, nil); err != nil {
		g.Destroy()
		return nil, err
	}
	return &Axis{g}, nil
}

// Update sets the length of each axis.
func (a *Axis) Update(x, y, z float32) error {
	return a.UpdateAttributes([][]float32{axisPositions(x, y, z), nil})
}

func axisPositions(x, y, z float32) []float32 {
	return []float32{
		0, 0, 0, x, 0, 0,
		0, 0, 0, 0, y, 0,
		0, 0, 0, 0, 0, z,
	}
}

// BoundingBox is a wireframe box drawn as 12 indexed lines over 8 corners.
type BoundingBox struct {
	*GeometryBuffer
}

var boxEdges = []uint32{
	0, 1, 1, 3, 3, 2, 2, 0, // bottom
	4, 5, 5, 7, 7, 6, 6, 4, // top
	0, 4, 1, 5, 2, 6, 3, 7, // vertical
}

// NewBoundingBox builds a unit box at the origin in a single color.
func NewBoundingBox(dev gpu.Device, posLoc, colorLoc int32, rgb math.Vec3) (*BoundingBox, error) {
	g, err := newLineMesh(dev, 8, len(boxEdges), posLoc, colorLoc)
	if err != nil {
		return nil, err
	}
	colors := make([]float32, 0, 24)
	for i := 0; i < 8; i++ {
		colors = append(colors, rgb.X, rgb.Y, rgb.Z)
	}
	corners := boxCorners(math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1})
	if err := g.LoadAttributes([][]float32{corners, colors}, boxEdges); err != nil {
		g.Destroy()
		return nil, err
	}
	return &BoundingBox{g}, nil
}

// UpdateBounds moves the box corners to span lo..hi.
func (b *BoundingBox) UpdateBounds(lo, hi math.Vec3) error {
	return b.UpdateAttributes([][]float32{boxCorners(lo, hi), nil})
}

// boxCorners orders corners so that bit 0 selects X, bit 1 selects Z and
// bit 2 selects Y.
func boxCorners(lo, hi math.Vec3) []float32 {
	out := make([]float32, 0, 24)
	for i := 0; i < 8; i++ {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Z = hi.Z
		}
		if i&4 != 0 {
			p.Y = hi.Y
		}
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

// NewGrid builds a width x height grid of tiles on the XZ plane, centered at
// the origin.
func NewGrid(dev gpu.Device, posLoc, colorLoc int32, width, height int, tileSize float32, rgb math.Vec3) (*GeometryBuffer, error) {
	n := 2 * (width + 1 + height + 1)
	g, err := newLineMesh(dev, n, n, posLoc, colorLoc)
	if err != nil {
		return nil, err
	}

	halfW := float32(width) * tileSize / 2
	halfH := float32(height) * tileSize / 2
	pos := make([]float32, 0, 3*n)
	for i := 0; i <= width; i++ {
		x := float32(i)*tileSize - halfW
		pos = append(pos, x, 0, -halfH, x, 0, halfH)
	}
	for j := 0; j <= height; j++ {
		z := float32(j)*tileSize - halfH
		pos = append(pos, -halfW, 0, z, halfW, 0, z)
	}
	colors := make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		colors = append(colors, rgb.X, rgb.Y, rgb.Z)
	}

	if err := g.LoadAttributes([][]float32{pos, colors}, nil); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}

// NewTexturedQuad builds a 2x2 quad in the XY plane facing +Z with
// position, normal and texture coordinate attributes. Pass a negative
// location to leave an attribute unbound.
func NewTexturedQuad(dev gpu.Device, posLoc, normalLoc, uvLoc int32) (*GeometryBuffer, error) {
	g := New(dev, 4, 6, gpu.Triangles, gpu.StaticDraw)
	if err := g.SetAttributeLayout(3, 3, 2); err != nil {
		return nil, err
	}
	if _, err := g.AddRenderingPass(Bindings(posLoc, normalLoc, uvLoc)); err != nil {
		g.Destroy()
		return nil, err
	}

	attrs := [][]float32{
		{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		{0, 0, 1, 0, 1, 1, 0, 1},
	}
	if err := g.LoadAttributes(attrs, []uint32{0, 1, 2, 0, 2, 3}); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}

// newLineMesh creates a position/color line buffer with one rendering pass.
func newLineMesh(dev gpu.Device, numVertices, numElements int, posLoc, colorLoc int32) (*GeometryBuffer, error) {
	g := New(dev, numVertices, numElements, gpu.Lines, gpu.StaticDraw)
	if err := g.SetAttributeLayout(3, 3); err != nil {
		return nil, err
	}
	if _, err := g.AddRenderingPass(Bindings(posLoc, colorLoc)); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}
