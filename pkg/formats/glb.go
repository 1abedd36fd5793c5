package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Mesh buffer (.glb) format errors.
var (
	ErrTruncatedData = errors.New("truncated data")
	ErrInvalidHeader = errors.New("invalid header")
	ErrInvalidLayout = errors.New("invalid vertex layout")
	ErrSubGroupTable = errors.New("invalid subgroup table")
)

// Mesh buffer constants.
const (
	OriginNameSize = 30 // NUL-padded source identifier
	MaxAttributes  = 4  // Vertex format slots in the header
	FloatSize      = 4
	UintSize       = 4

	meshHeaderSize = 72
)

// Draw modes stored in mesh buffer headers. Values match the graphics API
// topology enums so they can be passed through unchanged.
const (
	ModeLines         uint32 = 0x0001
	ModeTriangles     uint32 = 0x0004
	ModeTriangleStrip uint32 = 0x0005
)

// meshHeader mirrors the on-disk header. The blank field is the two bytes of
// struct padding that follow the 30-byte name.
type meshHeader struct {
	OriginName    [OriginNameSize]byte
	_             [2]byte
	NumVertices   int32
	NumElements   int32
	VertexFormat  [MaxAttributes]int32
	NumAttributes int32
	FloatSize     int32
	UintSize      int32
	DrawMode      uint32
}

// SubGroupEntry starts a material range in a mesh buffer. Element ranges
// begin at FirstFace*3.
type SubGroupEntry struct {
	FirstFace     int32
	MaterialIndex int32
}

// ElementRange is a contiguous run of elements drawn with one material.
type ElementRange struct {
	First         int
	Count         int
	MaterialIndex int
}

// MeshBuffer is a decoded .glb file: one vertex buffer stored attribute-major
// (all of attribute 0, then all of attribute 1, ...) plus an optional table
// splitting the elements into per-material subgroups.
type MeshBuffer struct {
	OriginName  string
	NumVertices int
	NumElements int
	Layout      []int // Attribute widths in scalars
	DrawMode    uint32
	Vertices    []float32
	SubGroups   []SubGroupEntry
}

// Stride returns the number of scalars per vertex.
func (m *MeshBuffer) Stride() int {
	stride := 0
	for _, w := range m.Layout {
		stride += w
	}
	return stride
}

// Attribute returns the slice of Vertices holding attribute i.
func (m *MeshBuffer) Attribute(i int) []float32 {
	offset := 0
	for j := 0; j < i; j++ {
		offset += m.Layout[j]
	}
	start := offset * m.NumVertices
	return m.Vertices[start : start+m.Layout[i]*m.NumVertices]
}

// Validate checks the layout and sizes for consistency.
func (m *MeshBuffer) Validate() error {
	if len(m.Layout) == 0 || len(m.Layout) > MaxAttributes {
		return fmt.Errorf("%w: %d attributes", ErrInvalidLayout, len(m.Layout))
	}
	for i, w := range m.Layout {
		if w <= 0 {
			return fmt.Errorf("%w: attribute %d has width %d", ErrInvalidLayout, i, w)
		}
	}
	if m.NumVertices < 0 || m.NumElements < 0 {
		return fmt.Errorf("%w: %d vertices, %d elements", ErrInvalidHeader, m.NumVertices, m.NumElements)
	}
	if want := m.Stride() * m.NumVertices; len(m.Vertices) != want {
		return fmt.Errorf("%w: have %d floats, want %d", ErrInvalidLayout, len(m.Vertices), want)
	}
	prev := int32(0)
	for i, sg := range m.SubGroups {
		if sg.FirstFace < prev || int(sg.FirstFace)*3 > m.NumElements {
			return fmt.Errorf("%w: entry %d starts at face %d", ErrSubGroupTable, i, sg.FirstFace)
		}
		prev = sg.FirstFace
	}
	return nil
}

// SubGroupRanges converts the subgroup table into element ranges. Each range
// runs to the start of the next entry and the last one runs to NumElements.
// A buffer without a table yields a single range using material 0.
func (m *MeshBuffer) SubGroupRanges() []ElementRange {
	if len(m.SubGroups) == 0 {
		return []ElementRange{{First: 0, Count: m.NumElements}}
	}

	ranges := make([]ElementRange, len(m.SubGroups))
	for i, sg := range m.SubGroups {
		first := int(sg.FirstFace) * 3
		end := m.NumElements
		if i+1 < len(m.SubGroups) {
			end = int(m.SubGroups[i+1].FirstFace) * 3
		}
		ranges[i] = ElementRange{First: first, Count: end - first, MaterialIndex: int(sg.MaterialIndex)}
	}
	return ranges
}

// ParseMeshBuffer decodes a .glb mesh buffer from raw bytes.
func ParseMeshBuffer(data []byte) (*MeshBuffer, error) {
	if len(data) < meshHeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedData, meshHeaderSize, len(data))
	}

	r := bytes.NewReader(data)
	var h meshHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedData)
	}

	if h.NumAttributes < 1 || h.NumAttributes > MaxAttributes {
		return nil, fmt.Errorf("%w: %d attributes", ErrInvalidHeader, h.NumAttributes)
	}
	if h.FloatSize != FloatSize || h.UintSize != UintSize {
		return nil, fmt.Errorf("%w: float size %d, uint size %d", ErrInvalidHeader, h.FloatSize, h.UintSize)
	}
	if h.NumVertices < 0 || h.NumElements < 0 {
		return nil, fmt.Errorf("%w: %d vertices, %d elements", ErrInvalidHeader, h.NumVertices, h.NumElements)
	}

	m := &MeshBuffer{
		OriginName:  cString(h.OriginName[:]),
		NumVertices: int(h.NumVertices),
		NumElements: int(h.NumElements),
		Layout:      make([]int, h.NumAttributes),
		DrawMode:    h.DrawMode,
	}
	for i := range m.Layout {
		if h.VertexFormat[i] <= 0 {
			return nil, fmt.Errorf("%w: attribute %d has width %d", ErrInvalidLayout, i, h.VertexFormat[i])
		}
		m.Layout[i] = int(h.VertexFormat[i])
	}

	// Compare by division so huge header values cannot overflow.
	var stride int64
	for _, w := range m.Layout {
		stride += int64(w)
	}
	avail := int64(r.Len() / FloatSize)
	if m.NumVertices > 0 && stride > avail/int64(m.NumVertices) {
		return nil, fmt.Errorf("%w: body needs %d x %d floats, have %d bytes",
			ErrTruncatedData, m.NumVertices, stride, r.Len())
	}
	m.Vertices = make([]float32, int(stride)*m.NumVertices)
	if err := binary.Read(r, binary.LittleEndian, m.Vertices); err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedData)
	}

	if r.Len() == 0 {
		return m, nil
	}

	var numSubGroups int32
	if err := binary.Read(r, binary.LittleEndian, &numSubGroups); err != nil {
		return nil, fmt.Errorf("%w: reading subgroup count", ErrTruncatedData)
	}
	if numSubGroups < 0 || int64(r.Len()) < int64(numSubGroups)*8 {
		return nil, fmt.Errorf("%w: %d subgroups, %d bytes left", ErrTruncatedData, numSubGroups, r.Len())
	}
	m.SubGroups = make([]SubGroupEntry, numSubGroups)
	if err := binary.Read(r, binary.LittleEndian, m.SubGroups); err != nil {
		return nil, fmt.Errorf("%w: reading subgroups", ErrTruncatedData)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseMeshBufferFile parses a .glb file from disk.
func ParseMeshBufferFile(path string) (*MeshBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh buffer: %w", err)
	}
	return ParseMeshBuffer(data)
}

// WriteTo encodes the mesh buffer. The subgroup table is written only when
// SubGroups is non-empty.
func (m *MeshBuffer) WriteTo(w io.Writer) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	h := meshHeader{
		NumVertices:   int32(m.NumVertices),
		NumElements:   int32(m.NumElements),
		NumAttributes: int32(len(m.Layout)),
		FloatSize:     FloatSize,
		UintSize:      UintSize,
		DrawMode:      m.DrawMode,
	}
	putCString(h.OriginName[:], m.OriginName)
	for i, width := range m.Layout {
		h.VertexFormat[i] = int32(width)
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, &h)
	binary.Write(buf, binary.LittleEndian, m.Vertices)
	if len(m.SubGroups) > 0 {
		binary.Write(buf, binary.LittleEndian, int32(len(m.SubGroups)))
		binary.Write(buf, binary.LittleEndian, m.SubGroups)
	}
	return buf.WriteTo(w)
}

// WriteFile writes the mesh buffer to disk.
func (m *MeshBuffer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh buffer: %w", err)
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// cString returns the bytes up to the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// putCString copies s into dst, truncating so a terminating NUL always fits.
func putCString(dst []byte, s string) {
	n := copy(dst[:len(dst)-1], s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
