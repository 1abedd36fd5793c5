package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ErrInvalidManifest is returned for malformed .r4o object manifests.
var ErrInvalidManifest = errors.New("invalid object manifest")

// ManifestObject names a contiguous range of groups. LastGroup is inclusive.
type ManifestObject struct {
	Name       string
	FirstGroup int
	LastGroup  int
}

// Manifest is a decoded .r4o object manifest. Group geometry lives in
// GroupsFolder as g<i>.glb, relative to the manifest's directory.
type Manifest struct {
	Architecture    string
	NumGroups       int
	Objects         []ManifestObject
	GroupsFolder    string
	MaterialLibrary string
}

// HostArchitecture returns the tag written into new manifests.
func HostArchitecture() string {
	switch runtime.GOARCH {
	case "amd64", "arm64", "ppc64", "ppc64le", "mips64", "mips64le", "riscv64", "s390x", "loong64":
		return "x64"
	default:
		return "x86"
	}
}

// GroupPath returns the path of group i's mesh buffer for a manifest stored in dir.
func (m *Manifest) GroupPath(dir string, i int) string {
	return filepath.Join(dir, m.GroupsFolder, "g"+strconv.Itoa(i)+".glb")
}

// MaterialLibraryPath returns the path of the .mtlb file for a manifest stored in dir.
func (m *Manifest) MaterialLibraryPath(dir string) string {
	return filepath.Join(dir, m.MaterialLibrary)
}

// ParseManifest decodes a .r4o manifest.
func ParseManifest(r io.Reader) (*Manifest, error) {
	lines := &lineReader{s: bufio.NewScanner(r)}

	m := &Manifest{}
	var ok bool
	if m.Architecture, ok = lines.next(); !ok {
		return nil, fmt.Errorf("%w: missing architecture", ErrInvalidManifest)
	}

	counts, ok := lines.next()
	if !ok {
		return nil, fmt.Errorf("%w: missing object and group counts", ErrInvalidManifest)
	}
	var numObjects int
	if _, err := fmt.Sscan(counts, &numObjects, &m.NumGroups); err != nil {
		return nil, fmt.Errorf("%w: counts %q: %v", ErrInvalidManifest, counts, err)
	}
	if numObjects < 0 || m.NumGroups < 0 {
		return nil, fmt.Errorf("%w: counts %q", ErrInvalidManifest, counts)
	}

	m.Objects = make([]ManifestObject, numObjects)
	for i := range m.Objects {
		name, ok := lines.next()
		if !ok {
			return nil, fmt.Errorf("%w: object %d: missing name", ErrInvalidManifest, i)
		}
		interval, ok := lines.next()
		if !ok {
			return nil, fmt.Errorf("%w: object %d: missing group range", ErrInvalidManifest, i)
		}
		obj := ManifestObject{Name: name}
		if _, err := fmt.Sscan(interval, &obj.FirstGroup, &obj.LastGroup); err != nil {
			return nil, fmt.Errorf("%w: object %d range %q: %v", ErrInvalidManifest, i, interval, err)
		}
		m.Objects[i] = obj
	}

	if m.GroupsFolder, ok = lines.next(); !ok {
		return nil, fmt.Errorf("%w: missing groups folder", ErrInvalidManifest)
	}
	if m.MaterialLibrary, ok = lines.next(); !ok {
		return nil, fmt.Errorf("%w: missing material library", ErrInvalidManifest)
	}
	if err := lines.s.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseManifestFile parses a .r4o file from disk.
func ParseManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading object manifest: %w", err)
	}
	defer f.Close()
	return ParseManifest(f)
}

// WriteTo encodes the manifest.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, m.Architecture)
	fmt.Fprintf(&buf, "%d %d\n", len(m.Objects), m.NumGroups)
	for _, obj := range m.Objects {
		fmt.Fprintln(&buf, obj.Name)
		fmt.Fprintf(&buf, "%d %d\n", obj.FirstGroup, obj.LastGroup)
	}
	fmt.Fprintln(&buf, m.GroupsFolder)
	fmt.Fprintln(&buf, m.MaterialLibrary)
	return buf.WriteTo(w)
}

// WriteFile writes the manifest to disk.
func (m *Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating object manifest: %w", err)
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// lineReader yields lines with trailing CR stripped.
type lineReader struct {
	s *bufio.Scanner
}

func (l *lineReader) next() (string, bool) {
	if !l.s.Scan() {
		return "", false
	}
	return strings.TrimRight(l.s.Text(), "\r"), true
}
