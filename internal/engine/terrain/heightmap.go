package terrain

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"

	"github.com/Faultbox/r4/pkg/math"
)

// FromImage converts an image to a height field. Each sample is the HSV value
// max(r, g, b) in 0..1. The image is flipped vertically first so that v grows
// from the bottom row, matching texture coordinates.
func FromImage(img image.Image) HeightField {
	flipped := transform.FlipV(img)
	b := flipped.Bounds()
	f := HeightField{
		Width:  b.Dx(),
		Height: b.Dy(),
		Values: make([]float32, b.Dx()*b.Dy()),
	}
	for v := 0; v < f.Height; v++ {
		for u := 0; u < f.Width; u++ {
			i := flipped.PixOffset(b.Min.X+u, b.Min.Y+v)
			p := flipped.Pix[i : i+3]
			f.Values[v*f.Width+u] = float32(max(p[0], p[1], p[2])) / 255
		}
	}
	return f
}

// HeightmapGeometry places a height field in world space.
type HeightmapGeometry struct {
	Field       HeightField
	Origin      math.Vec3 // World position of sample (0, 0) at height 0
	Scale       float32   // Horizontal distance between samples
	HeightScale float32   // World height of a sample with value 1
	TexScale    float32   // Samples per texture repeat
}

// NewHeightmapGeometry returns geometry at the origin with unit scales.
func NewHeightmapGeometry(field HeightField) *HeightmapGeometry {
	return &HeightmapGeometry{
		Field:       field,
		Scale:       1,
		HeightScale: 1,
		TexScale:    1,
	}
}

// Width returns the number of samples along X.
func (g *HeightmapGeometry) Width() int { return g.Field.Width }

// Height returns the number of samples along Z.
func (g *HeightmapGeometry) Height() int { return g.Field.Height }

// HeightAt returns the scaled height at grid coordinates, clamped to the grid.
func (g *HeightmapGeometry) HeightAt(u, v int) float32 {
	return g.Field.At(u, v) * g.HeightScale
}

// HeightAtWorld bilinearly interpolates the height at world (x, z). Points
// outside the grid take the height of the nearest edge.
func (g *HeightmapGeometry) HeightAtWorld(x, z float32) float32 {
	fu := snapToGrid((x - g.Origin.X) / g.Scale)
	fv := snapToGrid((z - g.Origin.Z) / g.Scale)
	uo := int(math32.Floor(fu))
	vo := int(math32.Floor(fv))

	alpha := fu - float32(uo)
	beta := fv - float32(vo)

	near := (1-alpha)*g.HeightAt(uo, vo) + alpha*g.HeightAt(uo+1, vo)
	far := (1-alpha)*g.HeightAt(uo, vo+1) + alpha*g.HeightAt(uo+1, vo+1)
	return (1-beta)*near + beta*far
}

// gridSnap is the distance, in samples, within which a coordinate counts as
// lying on a grid line.
const gridSnap = 1e-4

// snapToGrid rounds f to the nearest sample index when float error from the
// world transform left it just off the grid line.
func snapToGrid(f float32) float32 {
	if r := math32.Round(f); math32.Abs(f-r) <= gridSnap {
		return r
	}
	return f
}

// PositionAt returns the world position of grid sample (u, v), clamped.
func (g *HeightmapGeometry) PositionAt(u, v int) math.Vec3 {
	u = clampi(u, 0, g.Field.Width-1)
	v = clampi(v, 0, g.Field.Height-1)
	return math.Vec3{
		X: g.Origin.X + float32(u)*g.Scale,
		Y: g.Origin.Y + g.HeightAt(u, v),
		Z: g.Origin.Z + float32(v)*g.Scale,
	}
}

// NormalAt returns the unnormalized normal at (u, v): the sum of the cross
// products of the four neighbour edge vectors, taken around the sample.
// Neighbours outside the grid clamp onto the sample and contribute nothing.
func (g *HeightmapGeometry) NormalAt(u, v int) math.Vec3 {
	c := g.PositionAt(u, v)
	top := g.PositionAt(u, v-1).Sub(c)
	left := g.PositionAt(u-1, v).Sub(c)
	right := g.PositionAt(u+1, v).Sub(c)
	bottom := g.PositionAt(u, v+1).Sub(c)

	return right.Cross(top).
		Add(top.Cross(left)).
		Add(left.Cross(bottom)).
		Add(bottom.Cross(right))
}
