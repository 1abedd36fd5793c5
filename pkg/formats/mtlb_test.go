package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func createTestMaterialLibrary() *MaterialLibrary {
	return &MaterialLibrary{
		Name: "crate.mtl",
		Materials: []MaterialRecord{
			{
				Ambient:   [3]float32{0.1, 0.2, 0.3},
				Diffuse:   [3]float32{0.8, 0.7, 0.6},
				Specular:  [3]float32{1, 1, 1},
				Shininess: 32,
				Opacity:   0.5,
				Illum:     2,
				Textures:  []string{"crate_d.png", "", "crate_n.png", ""},
			},
			{
				Diffuse:  [3]float32{0.5, 0.5, 0.5},
				Opacity:  1,
				Illum:    1,
				Textures: []string{"", "", "", ""},
			},
		},
	}
}

func TestMaterialHeaderSizes(t *testing.T) {
	if got := binary.Size(materialLibraryHeader{}); got != materialLibraryHeaderSize {
		t.Errorf("library header size = %d, want %d", got, materialLibraryHeaderSize)
	}
	if got := binary.Size(materialHeader{}); got != materialHeaderSize {
		t.Errorf("material header size = %d, want %d", got, materialHeaderSize)
	}
}

func TestMaterialLibraryRoundTrip(t *testing.T) {
	lib := createTestMaterialLibrary()

	var buf bytes.Buffer
	if _, err := lib.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	got, err := ParseMaterialLibrary(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseMaterialLibrary failed: %v", err)
	}

	if got.Name != lib.Name {
		t.Errorf("name = %q, want %q", got.Name, lib.Name)
	}
	if len(got.Materials) != len(lib.Materials) {
		t.Fatalf("got %d materials, want %d", len(got.Materials), len(lib.Materials))
	}
	for i, want := range lib.Materials {
		m := got.Materials[i]
		if m.Ambient != want.Ambient || m.Diffuse != want.Diffuse || m.Specular != want.Specular {
			t.Errorf("material %d colors = %v %v %v", i, m.Ambient, m.Diffuse, m.Specular)
		}
		if m.Shininess != want.Shininess || m.Opacity != want.Opacity || m.Illum != want.Illum {
			t.Errorf("material %d scalars = %v %v %v", i, m.Shininess, m.Opacity, m.Illum)
		}
		if len(m.Textures) != len(want.Textures) {
			t.Fatalf("material %d has %d textures, want %d", i, len(m.Textures), len(want.Textures))
		}
		for j := range want.Textures {
			if m.Textures[j] != want.Textures[j] {
				t.Errorf("material %d texture %d = %q, want %q", i, j, m.Textures[j], want.Textures[j])
			}
		}
	}

	if got.Materials[0].Texture(SlotNormal) != "crate_n.png" {
		t.Errorf("normal slot = %q", got.Materials[0].Texture(SlotNormal))
	}
	if got.Materials[0].Texture(7) != "" {
		t.Error("out-of-range slot should be empty")
	}
}

func TestMaterialLibraryAbsentTextureEncoding(t *testing.T) {
	lib := &MaterialLibrary{Materials: []MaterialRecord{{Textures: []string{"", "", "", ""}}}}

	var buf bytes.Buffer
	if _, err := lib.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	// Four zero-length entries follow the material header.
	want := materialLibraryHeaderSize + materialHeaderSize + 4*4
	if buf.Len() != want {
		t.Errorf("encoded size = %d, want %d", buf.Len(), want)
	}
}

func TestMaterialLibraryTruncatesLongPaths(t *testing.T) {
	long := strings.Repeat("t", 300) + ".png"
	lib := &MaterialLibrary{
		Name:      strings.Repeat("n", 100),
		Materials: []MaterialRecord{{Textures: []string{long}}},
	}

	var buf bytes.Buffer
	if _, err := lib.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	got, err := ParseMaterialLibrary(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseMaterialLibrary failed: %v", err)
	}
	if len(got.Materials[0].Textures[0]) != MaxTexturePath {
		t.Errorf("texture path length = %d, want %d", len(got.Materials[0].Textures[0]), MaxTexturePath)
	}
	if len(got.Name) != MaterialNameSize-1 {
		t.Errorf("name length = %d, want %d", len(got.Name), MaterialNameSize-1)
	}
}

func TestParseMaterialLibrary_Errors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := createTestMaterialLibrary().WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	data := buf.Bytes()

	if _, err := ParseMaterialLibrary(data[:20]); !errors.Is(err, ErrTruncatedData) {
		t.Errorf("short header: expected ErrTruncatedData, got %v", err)
	}
	if _, err := ParseMaterialLibrary(data[:len(data)-3]); !errors.Is(err, ErrTruncatedData) {
		t.Errorf("short texture path: expected ErrTruncatedData, got %v", err)
	}

	tooMany := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(tooMany[materialLibraryHeaderSize+48:], 5)
	if _, err := ParseMaterialLibrary(tooMany); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("5 textures: expected ErrInvalidHeader, got %v", err)
	}

	longPath := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(longPath[materialLibraryHeaderSize+materialHeaderSize:], 1000)
	if _, err := ParseMaterialLibrary(longPath); !errors.Is(err, ErrTexturePathTooLong) {
		t.Errorf("long path: expected ErrTexturePathTooLong, got %v", err)
	}
}

func TestMaterialLibraryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.mtlb")
	if err := createTestMaterialLibrary().WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ParseMaterialLibraryFile(path)
	if err != nil {
		t.Fatalf("ParseMaterialLibraryFile failed: %v", err)
	}
	if len(got.Materials) != 2 {
		t.Errorf("got %d materials, want 2", len(got.Materials))
	}
}
