package terrain

import (
	"fmt"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/mesh"
)

// BuildChunkData samples the window [xo, xo+w) x [yo, yo+h) of geom.
//
// Texture coordinates are the global sample coordinates divided by
// TexScale, so textures tile seamlessly across chunks. Normals are
// normalized and folded to non-negative components.
func BuildChunkData(geom *HeightmapGeometry, xo, yo, w, h int) (*ChunkData, error) {
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: window %dx%d at (%d,%d)", ErrChunkTooSmall, w, h, xo, yo)
	}

	n := w * h
	c := &ChunkData{
		Width:     w,
		Height:    h,
		Positions: make([]float32, 0, 3*n),
		Normals:   make([]float32, 0, 3*n),
		UVs:       make([]float32, 0, 2*n),
		Indices:   make([]uint32, 0, StripElementCount(w, h)),
	}

	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			p := geom.PositionAt(xo+u, yo+v)
			nrm := geom.NormalAt(xo+u, yo+v).Normalize().Abs()
			c.Positions = append(c.Positions, p.X, p.Y, p.Z)
			c.Normals = append(c.Normals, nrm.X, nrm.Y, nrm.Z)
			c.UVs = append(c.UVs,
				float32(xo+u)/geom.TexScale,
				float32(yo+v)/geom.TexScale)
		}
	}

	c.Indices = appendStripIndices(c.Indices, w, h)
	return c, nil
}

// appendStripIndices emits one strip over a w x h vertex grid. Each row pair
// zig-zags between rows v and v+1; consecutive row pairs are joined by
// repeating the last vertex of row v+1 and its first vertex.
func appendStripIndices(dst []uint32, w, h int) []uint32 {
	for v := 0; v < h-1; v++ {
		for u := 0; u < w; u++ {
			dst = append(dst, uint32(v*w+u), uint32((v+1)*w+u))
		}
		if v < h-2 {
			dst = append(dst, uint32((v+1)*w+w-1), uint32((v+1)*w))
		}
	}
	return dst
}

// BuildChunk samples a window of geom into a triangle strip geometry buffer
// with layout [3, 3, 2] and one rendering pass bound to locations 0, 1, 2.
func BuildChunk(dev gpu.Device, geom *HeightmapGeometry, xo, yo, w, h int) (*mesh.GeometryBuffer, error) {
	data, err := BuildChunkData(geom, xo, yo, w, h)
	if err != nil {
		return nil, err
	}

	g := mesh.New(dev, data.NumVertices(), len(data.Indices), gpu.TriangleStrip, gpu.StaticDraw)
	if err := g.SetAttributeLayout(3, 3, 2); err != nil {
		return nil, err
	}
	if _, err := g.AddRenderingPass(mesh.Bindings(0, 1, 2)); err != nil {
		g.Destroy()
		return nil, err
	}
	if err := g.LoadAttributes([][]float32{data.Positions, data.Normals, data.UVs}, data.Indices); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}
