// Package terrain builds renderable terrain from heightmap images.
//
// A heightmap is sampled on an integer (u, v) grid; u runs along world X and
// v along world Z. The terrain is cut into a grid of chunks, each drawn as a
// single triangle strip.
package terrain

import "errors"

// ErrChunkTooSmall is returned for chunk windows narrower than two samples.
var ErrChunkTooSmall = errors.New("terrain chunk needs at least 2x2 samples")

// HeightField holds normalized heights (0..1) in row-major order, v*Width+u.
type HeightField struct {
	Width  int
	Height int
	Values []float32
}

// At returns the sample at (u, v) clamped to the field.
func (f *HeightField) At(u, v int) float32 {
	if f.Width == 0 || f.Height == 0 {
		return 0
	}
	u = clampi(u, 0, f.Width-1)
	v = clampi(v, 0, f.Height-1)
	return f.Values[v*f.Width+u]
}

// ChunkData is the CPU side of one terrain chunk: w*h vertices with
// attribute-major positions, normals and texture coordinates, plus strip
// indices.
type ChunkData struct {
	Width     int
	Height    int
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// NumVertices returns the vertex count.
func (c *ChunkData) NumVertices() int { return c.Width * c.Height }

// StripElementCount returns the number of triangle strip indices for a
// w x h grid: two per vertex per row pair, plus two degenerate indices
// between consecutive row pairs.
func StripElementCount(w, h int) int {
	return 2*(h-2)*w + 2*w + 2*(h-2)
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
