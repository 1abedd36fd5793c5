package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/r4/pkg/math"
)

// Material is one newmtl block of an MTL file.
type Material struct {
	Name      string
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
	Opacity   float32
	Illum     int

	DiffuseMap  string
	SpecularMap string
	BumpMap     string
	OpacityMap  string
}

func newMaterial(name string) Material {
	if name == "" {
		name = "??"
	}
	return Material{Name: name, Opacity: 1, Illum: 2}
}

// ParseMTL reads a material library. name is used in error messages.
// Statements before the first newmtl apply to an unnamed material that is
// kept only if something set it.
func ParseMTL(r io.Reader, name string) ([]Material, error) {
	var (
		mats    []Material
		cur     = newMaterial("")
		started bool
		dirty   bool
	)

	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		key, data := splitStatement(s.Text())
		if key == "" {
			continue
		}

		perr := func(err error) error {
			return &ParseError{File: name, Line: line, Text: s.Text(), Err: err}
		}

		var err error
		switch key {
		case "newmtl":
			if started || dirty {
				mats = append(mats, cur)
			}
			cur = newMaterial(data)
			started = true
			continue
		case "Ka":
			cur.Ambient, err = parseVec3(data)
		case "Kd":
			cur.Diffuse, err = parseVec3(data)
		case "Ks":
			cur.Specular, err = parseVec3(data)
		case "Ns":
			cur.Shininess, err = parseFloat(data)
		case "d":
			cur.Opacity, err = parseFloat(data)
		case "Tr":
			var tr float32
			tr, err = parseFloat(data)
			cur.Opacity = 1 - tr
		case "illum":
			cur.Illum, err = strconv.Atoi(firstField(data))
		case "map_Kd":
			cur.DiffuseMap = data
		case "map_Ks":
			cur.SpecularMap = data
		case "map_Bump", "map_bump", "bump":
			cur.BumpMap = data
		case "map_d":
			cur.OpacityMap = data
		default:
			continue
		}
		if err != nil {
			return nil, perr(fmt.Errorf("%w: %s: %v", ErrMalformedMaterial, key, err))
		}
		dirty = true
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if started || dirty {
		mats = append(mats, cur)
	}
	return mats, nil
}

// ParseMTLFile reads a material library from disk.
func ParseMTLFile(path string) ([]Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMTL(f, path)
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
