package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTexturePathTooLong is returned when a stored texture path exceeds MaxTexturePath.
var ErrTexturePathTooLong = errors.New("texture path too long")

// Material library constants.
const (
	MaterialNameSize = 64
	MaxTexturePath   = 255
	NumTextureSlots  = 4

	materialLibraryHeaderSize = MaterialNameSize + 4
	materialHeaderSize        = 52
)

// Texture slot order inside a material record.
const (
	SlotDiffuse = iota
	SlotSpecular
	SlotNormal
	SlotTransparency
)

type materialLibraryHeader struct {
	Name         [MaterialNameSize]byte
	NumMaterials int32
}

type materialHeader struct {
	Ka, Kd, Ks  [3]float32
	Ns          float32
	D           float32
	Illum       int32
	NumTextures int32
}

// MaterialRecord is one material in a .mtlb file. Textures holds one path per
// slot; an empty path marks an absent texture.
type MaterialRecord struct {
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
	Opacity   float32
	Illum     int32
	Textures  []string
}

// Texture returns the path in the given slot, or "" if absent.
func (m *MaterialRecord) Texture(slot int) string {
	if slot < 0 || slot >= len(m.Textures) {
		return ""
	}
	return m.Textures[slot]
}

// MaterialLibrary is a decoded .mtlb file.
type MaterialLibrary struct {
	Name      string
	Materials []MaterialRecord
}

// ParseMaterialLibrary decodes a .mtlb material library from raw bytes.
func ParseMaterialLibrary(data []byte) (*MaterialLibrary, error) {
	if len(data) < materialLibraryHeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedData, materialLibraryHeaderSize, len(data))
	}

	r := bytes.NewReader(data)
	var h materialLibraryHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedData)
	}
	if h.NumMaterials < 0 || int64(h.NumMaterials)*materialHeaderSize > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %d materials, %d bytes left", ErrTruncatedData, h.NumMaterials, r.Len())
	}

	lib := &MaterialLibrary{
		Name:      cString(h.Name[:]),
		Materials: make([]MaterialRecord, h.NumMaterials),
	}
	for i := range lib.Materials {
		mat, err := parseMaterialRecord(r)
		if err != nil {
			return nil, fmt.Errorf("parsing material %d: %w", i, err)
		}
		lib.Materials[i] = mat
	}
	return lib, nil
}

func parseMaterialRecord(r *bytes.Reader) (MaterialRecord, error) {
	var h materialHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return MaterialRecord{}, fmt.Errorf("%w: reading material header", ErrTruncatedData)
	}
	if h.NumTextures < 0 || h.NumTextures > NumTextureSlots {
		return MaterialRecord{}, fmt.Errorf("%w: %d textures", ErrInvalidHeader, h.NumTextures)
	}

	mat := MaterialRecord{
		Ambient:   h.Ka,
		Diffuse:   h.Kd,
		Specular:  h.Ks,
		Shininess: h.Ns,
		Opacity:   h.D,
		Illum:     h.Illum,
		Textures:  make([]string, h.NumTextures),
	}
	for j := range mat.Textures {
		var length int32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return MaterialRecord{}, fmt.Errorf("%w: reading texture %d length", ErrTruncatedData, j)
		}
		if length < 0 || length > MaxTexturePath {
			return MaterialRecord{}, fmt.Errorf("%w: texture %d has length %d", ErrTexturePathTooLong, j, length)
		}
		if length == 0 {
			continue
		}
		path := make([]byte, length)
		if _, err := io.ReadFull(r, path); err != nil {
			return MaterialRecord{}, fmt.Errorf("%w: reading texture %d path", ErrTruncatedData, j)
		}
		mat.Textures[j] = string(path)
	}
	return mat, nil
}

// ParseMaterialLibraryFile parses a .mtlb file from disk.
func ParseMaterialLibraryFile(path string) (*MaterialLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading material library: %w", err)
	}
	return ParseMaterialLibrary(data)
}

// WriteTo encodes the material library. Names and texture paths longer than
// their fixed capacity are truncated.
func (l *MaterialLibrary) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	var h materialLibraryHeader
	putCString(h.Name[:], l.Name)
	h.NumMaterials = int32(len(l.Materials))
	binary.Write(buf, binary.LittleEndian, &h)

	for i, mat := range l.Materials {
		if len(mat.Textures) > NumTextureSlots {
			return 0, fmt.Errorf("%w: material %d has %d textures", ErrInvalidHeader, i, len(mat.Textures))
		}
		mh := materialHeader{
			Ka:          mat.Ambient,
			Kd:          mat.Diffuse,
			Ks:          mat.Specular,
			Ns:          mat.Shininess,
			D:           mat.Opacity,
			Illum:       mat.Illum,
			NumTextures: int32(len(mat.Textures)),
		}
		binary.Write(buf, binary.LittleEndian, &mh)
		for _, path := range mat.Textures {
			if len(path) > MaxTexturePath {
				path = path[:MaxTexturePath]
			}
			binary.Write(buf, binary.LittleEndian, int32(len(path)))
			buf.WriteString(path)
		}
	}
	return buf.WriteTo(w)
}

// WriteFile writes the material library to disk.
func (l *MaterialLibrary) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating material library: %w", err)
	}
	if _, err := l.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
