package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidTerrain is returned for malformed .r4t terrain descriptions.
var ErrInvalidTerrain = errors.New("invalid terrain description")

// TerrainTexture is a color map with an optional normal map.
type TerrainTexture struct {
	ColorMap  string
	NormalMap string // Empty when the texture has no normal map
}

// TerrainDescription is a decoded .r4t file. Paths are relative to the
// description's directory.
type TerrainDescription struct {
	Heightmap   string
	Scale       float32 // Horizontal distance between samples
	HeightScale float32 // Multiplier applied to normalized heights
	GridWidth   int     // Chunks along X
	GridHeight  int     // Chunks along Z
	TexScale    float32 // Samples per texture repeat
	Textures    []TerrainTexture
}

// ParseTerrain decodes a .r4t terrain description. The first line is the
// heightmap path; everything after it is whitespace-separated.
func ParseTerrain(r io.Reader) (*TerrainDescription, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	t := &TerrainDescription{Heightmap: strings.TrimRight(first, "\r\n")}
	if t.Heightmap == "" {
		return nil, fmt.Errorf("%w: missing heightmap path", ErrInvalidTerrain)
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	tok := &tokenReader{fields: strings.Fields(string(rest))}

	t.Scale = tok.readFloat("scale")
	t.HeightScale = tok.readFloat("height scale")
	t.GridWidth = tok.readInt("grid width")
	t.GridHeight = tok.readInt("grid height")
	t.TexScale = tok.readFloat("texture scale")
	numTextures := tok.readInt("texture count")
	if tok.err != nil {
		return nil, tok.err
	}

	if t.GridWidth <= 0 || t.GridHeight <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidTerrain, t.GridWidth, t.GridHeight)
	}
	if t.TexScale == 0 {
		return nil, fmt.Errorf("%w: zero texture scale", ErrInvalidTerrain)
	}
	if numTextures < 0 {
		return nil, fmt.Errorf("%w: %d textures", ErrInvalidTerrain, numTextures)
	}

	t.Textures = make([]TerrainTexture, numTextures)
	for i := range t.Textures {
		hasNormal := tok.readInt(fmt.Sprintf("texture %d normal flag", i))
		t.Textures[i].ColorMap = tok.readWord(fmt.Sprintf("texture %d color map", i))
		if hasNormal != 0 {
			t.Textures[i].NormalMap = tok.readWord(fmt.Sprintf("texture %d normal map", i))
		}
	}
	if tok.err != nil {
		return nil, tok.err
	}
	return t, nil
}

// ParseTerrainFile parses a .r4t file from disk.
func ParseTerrainFile(path string) (*TerrainDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading terrain description: %w", err)
	}
	defer f.Close()
	return ParseTerrain(f)
}

// WriteTo encodes the terrain description.
func (t *TerrainDescription) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, t.Heightmap)
	fmt.Fprintf(&buf, "%g %g\n", t.Scale, t.HeightScale)
	fmt.Fprintf(&buf, "%d %d\n", t.GridWidth, t.GridHeight)
	fmt.Fprintf(&buf, "%g\n", t.TexScale)
	fmt.Fprintf(&buf, "%d\n", len(t.Textures))
	for _, tex := range t.Textures {
		if tex.NormalMap != "" {
			fmt.Fprintf(&buf, "1 %s %s\n", tex.ColorMap, tex.NormalMap)
		} else {
			fmt.Fprintf(&buf, "0 %s\n", tex.ColorMap)
		}
	}
	return buf.WriteTo(w)
}

// tokenReader pulls typed fields and keeps the first error.
type tokenReader struct {
	fields []string
	pos    int
	err    error
}

func (t *tokenReader) readWord(what string) string {
	if t.err != nil {
		return ""
	}
	if t.pos >= len(t.fields) {
		t.err = fmt.Errorf("%w: missing %s", ErrInvalidTerrain, what)
		return ""
	}
	s := t.fields[t.pos]
	t.pos++
	return s
}

func (t *tokenReader) readInt(what string) int {
	s := t.readWord(what)
	if t.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		t.err = fmt.Errorf("%w: %s %q", ErrInvalidTerrain, what, s)
	}
	return v
}

func (t *tokenReader) readFloat(what string) float32 {
	s := t.readWord(what)
	if t.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		t.err = fmt.Errorf("%w: %s %q", ErrInvalidTerrain, what, s)
	}
	return float32(v)
}
