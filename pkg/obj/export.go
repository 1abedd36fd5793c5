package obj

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/math"
)

// triangleRun is a run of consecutive triangles sharing a material.
type triangleRun struct {
	Material int
	First    int
	Count    int
}

// flatGroup is a group expanded into three independent vertices per
// triangle, ordered by material.
type flatGroup struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2 // nil when the group has no texture coordinates
	Runs      []triangleRun
}

func (fg *flatGroup) numTriangles() int { return len(fg.Positions) / 3 }

// flatten de-indexes group gi. Quads are fanned into two triangles. Normals
// come from the normal list when smooth is set and the face is smooth,
// otherwise from the face normal.
func (m *Mesh) flatten(gi int, smooth bool) (*flatGroup, error) {
	if gi < 0 || gi >= len(m.Groups) {
		return nil, fmt.Errorf("group %d out of range (%d groups)", gi, len(m.Groups))
	}
	g := &m.Groups[gi]
	fg := &flatGroup{}
	if len(g.Faces) == 0 {
		return fg, nil
	}

	faces := make([]*Face, len(g.Faces))
	for i := range g.Faces {
		faces[i] = &g.Faces[i]
	}
	sort.SliceStable(faces, func(a, b int) bool {
		return max(faces[a].MaterialIndex, 0) < max(faces[b].MaterialIndex, 0)
	})

	hasUVs := faces[0].Vertices[0].UV != NoIndex
	if hasUVs {
		fg.UVs = []math.Vec2{}
	}

	for _, f := range faces {
		mat := max(f.MaterialIndex, 0)
		if n := len(fg.Runs); n == 0 || fg.Runs[n-1].Material != mat {
			fg.Runs = append(fg.Runs, triangleRun{Material: mat, First: fg.numTriangles()})
		}

		for k := 1; k+1 < len(f.Vertices); k++ {
			tri := [3]VertexRef{f.Vertices[0], f.Vertices[k], f.Vertices[k+1]}

			flat := f.Normal
			if k > 1 || flat == (math.Vec3{}) {
				flat = m.triangleNormal(tri[0], tri[1], tri[2]).Normalize()
			}
			for _, v := range tri {
				fg.Positions = append(fg.Positions, m.Positions[v.Position])

				n := flat
				if smooth && f.Smooth && v.Normal != NoIndex {
					n = m.Normals[v.Normal]
				}
				fg.Normals = append(fg.Normals, n)

				if hasUVs {
					var uv math.Vec2
					if v.UV != NoIndex {
						uv = m.UVs[v.UV]
					}
					fg.UVs = append(fg.UVs, uv)
				}
			}
			fg.Runs[len(fg.Runs)-1].Count++
		}
	}
	return fg, nil
}

// ExportGroup converts group gi into a mesh buffer with layout [3,3] or
// [3,3,2]. A subgroup table is added when the group uses more than one
// material. Empty groups produce a zero-vertex buffer.
func (m *Mesh) ExportGroup(gi int, smooth bool) (*formats.MeshBuffer, error) {
	fg, err := m.flatten(gi, smooth)
	if err != nil {
		return nil, err
	}

	n := len(fg.Positions)
	mb := &formats.MeshBuffer{
		OriginName:  m.Groups[gi].Name,
		NumVertices: n,
		NumElements: n,
		Layout:      []int{3, 3},
		DrawMode:    formats.ModeTriangles,
	}
	if fg.UVs != nil {
		mb.Layout = append(mb.Layout, 2)
	}

	mb.Vertices = make([]float32, 0, n*mb.Stride())
	for _, p := range fg.Positions {
		mb.Vertices = append(mb.Vertices, p.X, p.Y, p.Z)
	}
	for _, v := range fg.Normals {
		mb.Vertices = append(mb.Vertices, v.X, v.Y, v.Z)
	}
	for _, uv := range fg.UVs {
		mb.Vertices = append(mb.Vertices, uv.X, uv.Y)
	}

	if len(fg.Runs) > 1 {
		for _, r := range fg.Runs {
			mb.SubGroups = append(mb.SubGroups, formats.SubGroupEntry{
				FirstFace:     int32(r.First),
				MaterialIndex: int32(r.Material),
			})
		}
	} else if len(fg.Runs) == 1 && fg.Runs[0].Material != 0 {
		mb.SubGroups = []formats.SubGroupEntry{{FirstFace: 0, MaterialIndex: int32(fg.Runs[0].Material)}}
	}
	return mb, nil
}

// ExportMaterials converts the material list. Every record carries the
// diffuse, specular, normal and transparency slots.
func (m *Mesh) ExportMaterials() *formats.MaterialLibrary {
	lib := &formats.MaterialLibrary{
		Name:      m.MaterialFile,
		Materials: make([]formats.MaterialRecord, len(m.Materials)),
	}
	for i, mat := range m.Materials {
		rec := formats.MaterialRecord{
			Ambient:   mat.Ambient.Array(),
			Diffuse:   mat.Diffuse.Array(),
			Specular:  mat.Specular.Array(),
			Shininess: mat.Shininess,
			Opacity:   mat.Opacity,
			Illum:     int32(mat.Illum),
			Textures:  make([]string, formats.NumTextureSlots),
		}
		rec.Textures[formats.SlotDiffuse] = mat.DiffuseMap
		rec.Textures[formats.SlotSpecular] = mat.SpecularMap
		rec.Textures[formats.SlotNormal] = mat.BumpMap
		rec.Textures[formats.SlotTransparency] = mat.OpacityMap
		lib.Materials[i] = rec
	}
	return lib
}

// ExportManifest describes the mesh's objects as group intervals.
func (m *Mesh) ExportManifest(groupsFolder, materialLibrary string) *formats.Manifest {
	counts := make([]int, len(m.Objects))
	for _, g := range m.Groups {
		counts[g.Object]++
	}

	man := &formats.Manifest{
		Architecture:    formats.HostArchitecture(),
		NumGroups:       len(m.Groups),
		Objects:         make([]formats.ManifestObject, len(m.Objects)),
		GroupsFolder:    groupsFolder,
		MaterialLibrary: materialLibrary,
	}
	first := 0
	for i, o := range m.Objects {
		man.Objects[i] = formats.ManifestObject{
			Name:       o.Name,
			FirstGroup: first,
			LastGroup:  first + counts[i] - 1,
		}
		first += counts[i]
	}
	return man
}

// ExportOptions controls WriteR4O.
type ExportOptions struct {
	Smooth bool // Use vertex normals on smooth faces
	Center bool // Move the bounding box center to the origin first
}

// MaterialLibraryName returns the .mtlb file name WriteR4O uses.
func (m *Mesh) MaterialLibraryName(name string) string {
	if m.MaterialFile == "" {
		return name + ".mtlb"
	}
	return filepath.Base(m.MaterialFile) + "b"
}

// WriteR4O writes dir/name.r4o, its groups as dir/name/g<i>.glb and the
// material library next to the manifest. The mesh is triangulated and
// normals are computed in place.
func (m *Mesh) WriteR4O(dir, name string, opts ExportOptions) error {
	if opts.Center {
		m.MoveCenterToOrigin()
	}
	m.TriangulateQuads()
	if len(m.Normals) == 0 {
		m.ComputeVertexNormals(true)
	}
	m.ComputeFaceNormals(true)

	groupsDir := filepath.Join(dir, name)
	if err := os.MkdirAll(groupsDir, 0o755); err != nil {
		return fmt.Errorf("creating groups folder: %w", err)
	}

	for i := range m.Groups {
		mb, err := m.ExportGroup(i, opts.Smooth)
		if err != nil {
			return err
		}
		if err := mb.WriteFile(filepath.Join(groupsDir, "g"+strconv.Itoa(i)+".glb")); err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
	}

	mtlb := m.MaterialLibraryName(name)
	if err := m.ExportMaterials().WriteFile(filepath.Join(dir, mtlb)); err != nil {
		return fmt.Errorf("material library: %w", err)
	}
	return m.ExportManifest(name, mtlb).WriteFile(filepath.Join(dir, name+".r4o"))
}
