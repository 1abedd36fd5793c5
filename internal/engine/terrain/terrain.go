package terrain

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/mesh"
	"github.com/Faultbox/r4/internal/engine/texture"
	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/math"
)

// Terrain is a heightmap cut into a grid of chunk meshes.
type Terrain struct {
	Geometry   *HeightmapGeometry
	Material   mesh.Material
	ColorMaps  []gpu.Texture // Zero where the color map failed to load
	NormalMaps []gpu.Texture // Zero where absent

	chunks [][]*mesh.GeometryBuffer // [u][v]
	dev    gpu.Device
}

// Load reads a .r4t terrain description and builds its chunk grid. Paths
// are relative to the description's directory. Textures that fail to load
// are logged and skipped; a missing heightmap is an error.
func Load(dev gpu.Device, path string) (*Terrain, error) {
	desc, geom, err := LoadGeometry(path)
	if err != nil {
		return nil, err
	}

	t, err := New(dev, geom, desc.GridWidth, desc.GridHeight)
	if err != nil {
		return nil, err
	}
	t.loadTextures(filepath.Dir(path), desc.Textures)

	logger.Named("terrain").Debug("terrain loaded",
		zap.String("path", path),
		zap.Int("width", geom.Width()),
		zap.Int("height", geom.Height()),
		zap.Int("gridWidth", desc.GridWidth),
		zap.Int("gridHeight", desc.GridHeight))
	return t, nil
}

// LoadGeometry reads a .r4t description and its heightmap without touching
// the GPU. The terrain is centered on the origin in X and Z.
func LoadGeometry(path string) (*formats.TerrainDescription, *HeightmapGeometry, error) {
	desc, err := formats.ParseTerrainFile(path)
	if err != nil {
		return nil, nil, err
	}

	img, err := texture.ReadFile(filepath.Join(filepath.Dir(path), desc.Heightmap))
	if err != nil {
		return nil, nil, fmt.Errorf("loading heightmap: %w", err)
	}

	geom := NewHeightmapGeometry(FromImage(img))
	geom.Scale = desc.Scale
	geom.HeightScale = desc.HeightScale
	geom.TexScale = desc.TexScale
	geom.Origin = math.Vec3{
		X: -float32(geom.Width()) * geom.Scale / 2,
		Z: -float32(geom.Height()) * geom.Scale / 2,
	}
	return desc, geom, nil
}

// ChunkWindow is the sample window covered by chunk (U, V).
type ChunkWindow struct {
	U, V   int
	X, Y   int // First sample
	Width  int
	Height int
}

// ChunkWindows partitions an imgW x imgH field into a gridW x gridH chunk
// grid, ordered by U then V. Chunk (u, v) starts at sample (u*cw, v*ch)
// where cw and ch are the integer chunk sizes. Every chunk but the last in a
// row or column is one sample wider so neighbours share their border
// vertices; the last extends to the edge of the field.
func ChunkWindows(imgW, imgH, gridW, gridH int) []ChunkWindow {
	chunkW, chunkH := imgW/gridW, imgH/gridH
	out := make([]ChunkWindow, 0, gridW*gridH)
	for u := 0; u < gridW; u++ {
		for v := 0; v < gridH; v++ {
			w := ChunkWindow{U: u, V: v, X: chunkW * u, Y: chunkH * v, Width: chunkW + 1, Height: chunkH + 1}
			if u == gridW-1 {
				w.Width = imgW - w.X
			}
			if v == gridH-1 {
				w.Height = imgH - w.Y
			}
			out = append(out, w)
		}
	}
	return out
}

// New builds a gridW x gridH chunk grid over geom, laid out by
// ChunkWindows.
func New(dev gpu.Device, geom *HeightmapGeometry, gridW, gridH int) (*Terrain, error) {
	if gridW <= 0 || gridH <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", formats.ErrInvalidTerrain, gridW, gridH)
	}

	t := &Terrain{
		Geometry: geom,
		Material: mesh.DefaultMaterial(),
		chunks:   make([][]*mesh.GeometryBuffer, gridW),
		dev:      dev,
	}
	for u := range t.chunks {
		t.chunks[u] = make([]*mesh.GeometryBuffer, gridH)
	}

	for _, w := range ChunkWindows(geom.Width(), geom.Height(), gridW, gridH) {
		c, err := BuildChunk(dev, geom, w.X, w.Y, w.Width, w.Height)
		if err != nil {
			t.Destroy()
			return nil, fmt.Errorf("chunk (%d,%d): %w", w.U, w.V, err)
		}
		t.chunks[w.U][w.V] = c
	}
	return t, nil
}

func (t *Terrain) loadTextures(dir string, textures []formats.TerrainTexture) {
	log := logger.Named("terrain")
	t.ColorMaps = make([]gpu.Texture, len(textures))
	t.NormalMaps = make([]gpu.Texture, len(textures))

	for i, tex := range textures {
		p := filepath.Join(dir, tex.ColorMap)
		if h, err := texture.Load(t.dev, p); err != nil {
			log.Warn("color map not loaded", zap.String("path", p), zap.Error(err))
		} else {
			t.ColorMaps[i] = h
		}

		if tex.NormalMap == "" {
			continue
		}
		p = filepath.Join(dir, tex.NormalMap)
		if h, err := texture.Load(t.dev, p); err != nil {
			log.Warn("normal map not loaded", zap.String("path", p), zap.Error(err))
		} else {
			t.NormalMaps[i] = h
		}
	}

	if len(t.ColorMaps) > 0 {
		t.Material.Maps[mesh.DiffuseMap] = t.ColorMaps[0]
	}
}

// GridSize returns the number of chunks along X and Z.
func (t *Terrain) GridSize() (w, h int) {
	if len(t.chunks) == 0 {
		return 0, 0
	}
	return len(t.chunks), len(t.chunks[0])
}

// Chunk returns the chunk at grid position (u, v).
func (t *Terrain) Chunk(u, v int) *mesh.GeometryBuffer {
	return t.chunks[u][v]
}

// HeightAt returns the interpolated terrain height at world (x, z).
func (t *Terrain) HeightAt(x, z float32) float32 {
	return t.Geometry.HeightAtWorld(x, z)
}

// Render binds the terrain material, whose diffuse map is the first color
// map, and draws every chunk.
func (t *Terrain) Render(b mesh.MaterialBinder) {
	b.BindMaterial(&t.Material)
	for _, column := range t.chunks {
		for _, c := range column {
			c.Render(0, 0)
		}
	}
}

// Destroy releases every chunk and texture.
func (t *Terrain) Destroy() {
	for _, column := range t.chunks {
		for _, c := range column {
			if c != nil {
				c.Destroy()
			}
		}
	}
	t.chunks = nil
	for _, list := range [][]gpu.Texture{t.ColorMaps, t.NormalMaps} {
		for _, tex := range list {
			if tex != 0 {
				t.dev.DeleteTexture(tex)
			}
		}
	}
	t.ColorMaps, t.NormalMaps = nil, nil
	t.Material.Maps = [formats.NumTextureSlots]gpu.Texture{}
}
