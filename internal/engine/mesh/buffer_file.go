package mesh

import (
	"fmt"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/pkg/formats"
)

// FromMeshBuffer builds a geometry buffer from a decoded .glb file. Each entry
// of the file's subgroup table becomes one subgroup; a file without a table
// yields a single subgroup with material 0. No rendering pass is added.
func FromMeshBuffer(dev gpu.Device, mb *formats.MeshBuffer) (*GeometryBuffer, error) {
	g := New(dev, mb.NumVertices, mb.NumElements, gpu.DrawMode(mb.DrawMode), gpu.StaticDraw)
	if err := g.SetAttributeLayout(mb.Layout...); err != nil {
		return nil, err
	}
	if err := g.Update(mb.Vertices); err != nil {
		g.Destroy()
		return nil, err
	}
	for _, r := range mb.SubGroupRanges() {
		if _, err := g.AddSubGroup(Sequence(r.First, r.Count), r.MaterialIndex); err != nil {
			g.Destroy()
			return nil, err
		}
	}
	return g, nil
}

// LoadFile reads a .glb file into a new geometry buffer.
func LoadFile(dev gpu.Device, path string) (*GeometryBuffer, error) {
	mb, err := formats.ParseMeshBufferFile(path)
	if err != nil {
		return nil, err
	}
	g, err := FromMeshBuffer(dev, mb)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return g, nil
}

// ToMeshBuffer encodes the buffer's current contents as a .glb record.
//
// Mesh buffer files store elements implicitly as 0..n-1, so when the
// subgroups are not already a contiguous run over every vertex the geometry
// is expanded to one vertex per element.
func (g *GeometryBuffer) ToMeshBuffer(originName string) (*formats.MeshBuffer, error) {
	if g.layout == nil {
		return nil, ErrLayoutNotSet
	}

	mb := &formats.MeshBuffer{
		OriginName: originName,
		Layout:     g.Layout(),
		DrawMode:   uint32(g.mode),
	}

	total := 0
	sequential := true
	for _, sg := range g.subGroups {
		for i, e := range sg.elements {
			if int(e) != total+i {
				sequential = false
			}
		}
		total += sg.Count
	}

	if sequential && total == g.numVertices {
		mb.NumVertices = g.numVertices
		mb.Vertices = g.Vertices()
	} else {
		mb.NumVertices = total
		mb.Vertices = g.expand(total)
	}
	mb.NumElements = total

	if len(g.subGroups) > 1 || (len(g.subGroups) == 1 && g.subGroups[0].MaterialIndex != 0) {
		first := 0
		for i, sg := range g.subGroups {
			if first%3 != 0 {
				return nil, fmt.Errorf("%w: subgroup %d starts at element %d", formats.ErrSubGroupTable, i, first)
			}
			mb.SubGroups = append(mb.SubGroups, formats.SubGroupEntry{
				FirstFace:     int32(first / 3),
				MaterialIndex: int32(sg.MaterialIndex),
			})
			first += sg.Count
		}
	}
	return mb, nil
}

// expand gathers every attribute through the element lists, producing n vertices.
func (g *GeometryBuffer) expand(n int) []float32 {
	out := make([]float32, 0, n*g.stride)
	for a, width := range g.layout {
		src := g.data[g.AttributeOffset(a)/formats.FloatSize:]
		for _, sg := range g.subGroups {
			for _, e := range sg.elements {
				out = append(out, src[int(e)*width:int(e)*width+width]...)
			}
		}
	}
	return out
}
