package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/obj"
)

const crateMTL = `newmtl wood
Kd 0.6 0.4 0.2
map_Kd wood.png
newmtl metal
Kd 0.5 0.5 0.5
Ns 64
`

const crateOBJ = `mtllib crate.mtl
o crate
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
g side
usemtl wood
f 1/1 2/2 3/3 4/4
g lid
usemtl metal
f 1/1 5/2 2/3
`

func writeCrate(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crate.mtl"), []byte(crateMTL), 0o644))
	path := filepath.Join(dir, "crate.obj")
	require.NoError(t, os.WriteFile(path, []byte(crateOBJ), 0o644))
	return path
}

func TestConvertOBJ(t *testing.T) {
	src := writeCrate(t, t.TempDir())
	out := t.TempDir()

	stats, err := convertOBJ(src, out, obj.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Faces)
	assert.Equal(t, 1, stats.Quads)
	assert.Equal(t, 2, stats.Materials)

	m, err := formats.ParseManifestFile(filepath.Join(out, "crate.r4o"))
	require.NoError(t, err)
	assert.Equal(t, "crate.mtlb", m.MaterialLibrary)
	assert.Equal(t, "crate", m.GroupsFolder)

	// "g side" renames the empty default group.
	require.Equal(t, 2, m.NumGroups)
	for i := 0; i < m.NumGroups; i++ {
		assert.FileExists(t, m.GroupPath(out, i))
	}

	side, err := formats.ParseMeshBufferFile(m.GroupPath(out, 0))
	require.NoError(t, err)
	assert.Equal(t, 6, side.NumElements, "quad is split into two triangles")
	assert.Equal(t, []int{3, 3, 2}, side.Layout)
}

func TestConvertOBJMissing(t *testing.T) {
	_, err := convertOBJ(filepath.Join(t.TempDir(), "none.obj"), t.TempDir(), obj.ExportOptions{})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	src := writeCrate(t, t.TempDir())
	out := t.TempDir()
	_, err := convertOBJ(src, out, obj.ExportOptions{})
	require.NoError(t, err)

	tests := []struct {
		path string
		want []string
	}{
		{src, []string{"Faces:     2 (1 triangles, 1 quads)", "side", "wood", "metal"}},
		{filepath.Join(out, "crate.r4o"), []string{"Groups:          2 in crate/", "crate.mtlb"}},
		{filepath.Join(out, "crate.mtlb"), []string{"Materials:        2", "diffuse: wood.png"}},
		{filepath.Join(out, "crate", "g1.glb"), []string{"Origin:      lid", "Elements:    3", "triangles", "material 1"}},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, describe(&buf, tt.path))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}

	assert.Error(t, describe(&bytes.Buffer{}, "notes.txt"))
}

func TestDescribeGLTF(t *testing.T) {
	src := writeCrate(t, t.TempDir())
	dst := filepath.Join(t.TempDir(), "crate.glb")
	require.NoError(t, exportGLTF(src, dst, false))

	var buf bytes.Buffer
	require.NoError(t, describe(&buf, dst))
	assert.Contains(t, buf.String(), "glTF:")
	assert.Contains(t, buf.String(), "Meshes:    2")
	assert.Contains(t, buf.String(), "Materials: 2")
}

func TestDescribeTerrain(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 9, 5))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(0, 0, color.RGBA{A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "height.png"), buf.Bytes(), 0o644))

	desc := &formats.TerrainDescription{
		Heightmap: "height.png", Scale: 1, HeightScale: 10,
		GridWidth: 2, GridHeight: 1, TexScale: 8,
		Textures: []formats.TerrainTexture{{ColorMap: "grass.png", NormalMap: "grass_n.png"}},
	}
	path := filepath.Join(dir, "field.r4t")
	var file bytes.Buffer
	_, err := desc.WriteTo(&file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0o644))

	var out bytes.Buffer
	require.NoError(t, describeTerrain(&out, path))
	s := out.String()
	assert.Contains(t, s, "Heightmap: height.png (9x5)")
	assert.Contains(t, s, "Grid:      2x1 chunks")
	assert.Contains(t, s, "normal=grass_n.png")
	// Chunk width 4: (0,0) spans 5 samples, (1,0) the remaining 5.
	assert.Contains(t, s, "(0,0) at 0,0 size 5x5: 25 vertices, 46 strip elements")
	assert.Contains(t, s, "(1,0) at 4,0 size 5x5: 25 vertices, 46 strip elements")
	assert.Contains(t, s, "Total:     50 vertices, 92 strip elements")
}

func TestWatcherAffected(t *testing.T) {
	dir := t.TempDir()
	writeCrate(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "barrel.OBJ"), nil, 0o644))

	w := &watcher{dir: dir}

	got, err := w.affected(filepath.Join(dir, "crate.obj"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "crate.obj")}, got)

	got, err = w.affected(filepath.Join(dir, "crate.mtl"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "crate.obj"), filepath.Join(dir, "barrel.OBJ")}, got)

	got, err = w.affected(filepath.Join(dir, "crate.r4o"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWatcherConvertsOnChange(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	w, err := newWatcher(src, out, obj.ExportOptions{})
	require.NoError(t, err)
	defer w.Close()
	w.delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	writeCrate(t, src)

	manifest := filepath.Join(out, "crate.r4o")
	assert.Eventually(t, func() bool {
		_, err := os.Stat(manifest)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
