package viewer

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/r4/internal/engine/terrain"
	"github.com/Faultbox/r4/pkg/math"
)

type bounds struct {
	lo, hi math.Vec3
}

func unionBounds(boxes []bounds) (lo, hi math.Vec3, ok bool) {
	for i, b := range boxes {
		if i == 0 {
			lo, hi = b.lo, b.hi
			continue
		}
		lo = lo.Min(b.lo)
		hi = hi.Max(b.hi)
	}
	return lo, hi, len(boxes) > 0
}

// terrainBounds returns the world box spanned by every sample.
func terrainBounds(geom *terrain.HeightmapGeometry) (lo, hi math.Vec3) {
	lo = geom.PositionAt(0, 0)
	hi = geom.PositionAt(geom.Width()-1, geom.Height()-1)
	lo.Y, hi.Y = math32.MaxFloat32, -math32.MaxFloat32
	for v := 0; v < geom.Height(); v++ {
		for u := 0; u < geom.Width(); u++ {
			y := geom.PositionAt(u, v).Y
			lo.Y = math32.Min(lo.Y, y)
			hi.Y = math32.Max(hi.Y, y)
		}
	}
	return lo, hi
}

// gridTileSize picks a power-of-ten tile so that tiles grid cells cover the
// larger horizontal extent of the box.
func gridTileSize(lo, hi math.Vec3, tiles int) float32 {
	extent := math32.Max(hi.X-lo.X, hi.Z-lo.Z)
	if extent <= 0 {
		return 1
	}
	return math32.Pow(10, math32.Ceil(math32.Log10(extent/float32(tiles))))
}

// lightDirection normalizes the configured light, falling back to straight
// down for a zero vector.
func lightDirection(d [3]float32) math.Vec3 {
	v := math.Vec3FromArray(d)
	if v.Length() == 0 {
		return math.Vec3{Y: -1}
	}
	return v.Normalize()
}

// frameBudget returns the minimum frame time for an FPS limit, or zero when
// unlimited.
func frameBudget(limit int) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}
