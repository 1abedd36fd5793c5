package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/r4/pkg/math"
)

var (
	ErrMalformedVertex    = errors.New("malformed vertex")
	ErrMalformedFace      = errors.New("malformed face")
	ErrMalformedMaterial  = errors.New("malformed material")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrNoMaterialLibrary  = errors.New("usemtl before mtllib")
	ErrEmptyMaterialName  = errors.New("empty material name")
	ErrMaterialLibraryRef = errors.New("cannot load material library")
)

// ParseError locates a failure in an OBJ or MTL file.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v (%q)", e.File, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MaxFaceVertices is the largest polygon kept. Extra vertices are dropped.
const MaxFaceVertices = 4

// parser carries the state that statements modify.
type parser struct {
	mesh   *Mesh
	fsys   fs.FS
	dir    string
	smooth bool
	loaded bool // true once an mtllib was read
}

// Parse reads an OBJ stream. name is recorded as Mesh.Name and used in
// errors. mtllib paths are resolved relative to name's directory inside
// fsys; a nil fsys makes mtllib statements fail.
func Parse(r io.Reader, name string, fsys fs.FS) (*Mesh, error) {
	p := &parser{
		mesh: NewMesh(name),
		fsys: fsys,
		dir:  path.Dir(filepath.ToSlash(name)),
	}

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		if err := p.processLine(s.Text()); err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				return nil, err
			}
			return nil, &ParseError{File: name, Line: line, Text: s.Text(), Err: err}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return p.mesh, nil
}

// ParseFile reads an OBJ file from disk together with its material library.
func ParseFile(file string) (*Mesh, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir, base := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	return Parse(f, base, os.DirFS(dir))
}

func (p *parser) processLine(text string) error {
	key, data := splitStatement(text)
	m := p.mesh

	switch key {
	case "":
		return nil
	case "v":
		v, err := parseVec3(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedVertex, err)
		}
		m.Positions = append(m.Positions, v)
	case "vn":
		v, err := parseVec3(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedVertex, err)
		}
		m.Normals = append(m.Normals, v)
	case "vt":
		v, err := parseVec2(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedVertex, err)
		}
		m.UVs = append(m.UVs, v)
	case "f":
		f, err := p.parseFace(data)
		if err != nil {
			return err
		}
		m.AddFace(f)
	case "g":
		m.AddGroup(data)
	case "o":
		m.AddObject(data)
	case "s":
		p.smooth = data != "off" && data != "0"
	case "mtllib":
		return p.loadLibrary(data)
	case "usemtl":
		if data == "" {
			return ErrEmptyMaterialName
		}
		if !p.loaded {
			return fmt.Errorf("%w: %s", ErrNoMaterialLibrary, data)
		}
		i := m.FindMaterial(data)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, data)
		}
		m.SetMaterial(i)
	}
	return nil
}

func (p *parser) loadLibrary(name string) error {
	if name == "" || p.fsys == nil {
		return fmt.Errorf("%w: %q", ErrMaterialLibraryRef, name)
	}
	full := path.Join(p.dir, filepath.ToSlash(name))
	f, err := p.fsys.Open(full)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMaterialLibraryRef, err)
	}
	defer f.Close()

	mats, err := ParseMTL(f, full)
	if err != nil {
		return err
	}
	p.mesh.Materials = append(p.mesh.Materials, mats...)
	p.mesh.MaterialFile = name
	p.loaded = true
	return nil
}

func (p *parser) parseFace(data string) (Face, error) {
	fields := strings.Fields(data)
	if len(fields) < 3 {
		return Face{}, fmt.Errorf("%w: %d vertices", ErrMalformedFace, len(fields))
	}
	if len(fields) > MaxFaceVertices {
		fields = fields[:MaxFaceVertices]
	}

	m := p.mesh
	f := Face{Smooth: p.smooth, Vertices: make([]VertexRef, len(fields))}
	for i, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return Face{}, fmt.Errorf("%w: vertex %q", ErrMalformedFace, field)
		}
		ref := VertexRef{Position: NoIndex, UV: NoIndex, Normal: NoIndex}
		var err error
		if ref.Position, err = resolveIndex(parts[0], len(m.Positions)); err != nil {
			return Face{}, err
		}
		if ref.Position == NoIndex {
			return Face{}, fmt.Errorf("%w: vertex %q has no position", ErrMalformedFace, field)
		}
		if len(parts) > 1 {
			if ref.UV, err = resolveIndex(parts[1], len(m.UVs)); err != nil {
				return Face{}, err
			}
		}
		if len(parts) > 2 {
			if ref.Normal, err = resolveIndex(parts[2], len(m.Normals)); err != nil {
				return Face{}, err
			}
		}
		f.Vertices[i] = ref
	}
	return f, nil
}

// resolveIndex turns a 1-based (or negative, relative) OBJ index into a
// 0-based one. Empty and zero indices mean absent.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return NoIndex, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedFace, s)
	}
	switch {
	case n == 0:
		return NoIndex, nil
	case n < 0:
		n += count
	default:
		n--
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("%w: index %s out of range (%d defined)", ErrMalformedFace, s, count)
	}
	return n, nil
}

// splitStatement returns the leading keyword and the trimmed remainder.
// Comments and blank lines yield an empty keyword.
func splitStatement(line string) (string, string) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	key := line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		key = line[:i]
	}
	return key, strings.TrimSpace(line[len(key):])
}

func parseFloats(data string, out []float32) error {
	fields := strings.Fields(data)
	if len(fields) < len(out) {
		return fmt.Errorf("want %d values, got %d", len(out), len(fields))
	}
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return err
		}
		out[i] = float32(v)
	}
	return nil
}

func parseVec3(data string) (math.Vec3, error) {
	var v [3]float32
	if err := parseFloats(data, v[:]); err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3FromArray(v), nil
}

func parseVec2(data string) (math.Vec2, error) {
	var v [2]float32
	if err := parseFloats(data, v[:]); err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: v[0], Y: v[1]}, nil
}

func parseFloat(data string) (float32, error) {
	var v [1]float32
	err := parseFloats(data, v[:])
	return v[0], err
}
