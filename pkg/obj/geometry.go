package obj

import "github.com/Faultbox/r4/pkg/math"

// TriangulateQuads splits every quad (0,1,2,3) into (0,1,2), kept in place,
// and (0,2,3), appended to the end of its group.
func (m *Mesh) TriangulateQuads() {
	for gi := range m.Groups {
		g := &m.Groups[gi]
		n := len(g.Faces)
		for i := 0; i < n; i++ {
			f := &g.Faces[i]
			if len(f.Vertices) != 4 {
				continue
			}
			v := f.Vertices
			f.Vertices = []VertexRef{v[0], v[1], v[2]}
			g.Faces = append(g.Faces, Face{
				Vertices:      []VertexRef{v[0], v[2], v[3]},
				Smooth:        f.Smooth,
				MaterialIndex: f.MaterialIndex,
			})
		}
	}
}

func (m *Mesh) triangleNormal(a, b, c VertexRef) math.Vec3 {
	v0 := m.Positions[a.Position]
	return m.Positions[b.Position].Sub(v0).Cross(m.Positions[c.Position].Sub(v0))
}

// ComputeFaceNormals sets Normal on every triangle to cross(v1-v0, v2-v0).
// Faces that are not triangles keep their normal.
func (m *Mesh) ComputeFaceNormals(normalize bool) {
	for gi := range m.Groups {
		for fi := range m.Groups[gi].Faces {
			f := &m.Groups[gi].Faces[fi]
			if len(f.Vertices) != 3 {
				continue
			}
			n := m.triangleNormal(f.Vertices[0], f.Vertices[1], f.Vertices[2])
			if normalize {
				n = n.Normalize()
			}
			f.Normal = n
		}
	}
}

// ComputeVertexNormals replaces the normal list with one normal per
// position: the average of the incident face normals weighted by their
// unnormalized length. Every face vertex is repointed to the normal of its
// position. Face normals are left unnormalized.
func (m *Mesh) ComputeVertexNormals(normalize bool) {
	m.ComputeFaceNormals(false)

	sum := make([]math.Vec3, len(m.Positions))
	weight := make([]float32, len(m.Positions))
	for gi := range m.Groups {
		for _, f := range m.Groups[gi].Faces {
			w := f.Normal.Length()
			for _, v := range f.Vertices {
				sum[v.Position] = sum[v.Position].Add(f.Normal.Scale(w))
				weight[v.Position] += w
			}
		}
	}

	normals := make([]math.Vec3, len(m.Positions))
	for i := range normals {
		if weight[i] == 0 {
			continue
		}
		n := sum[i].Scale(1 / weight[i])
		if normalize {
			n = n.Normalize()
		}
		normals[i] = n
	}
	m.Normals = normals

	for gi := range m.Groups {
		for fi := range m.Groups[gi].Faces {
			vs := m.Groups[gi].Faces[fi].Vertices
			for k := range vs {
				vs[k].Normal = vs[k].Position
			}
		}
	}
}

// Bounds returns the axis-aligned box of all positions.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// Center returns the centroid of all positions, accumulated in float64.
func (m *Mesh) Center() math.Vec3 {
	if len(m.Positions) == 0 {
		return math.Vec3{}
	}
	var x, y, z float64
	for _, p := range m.Positions {
		x += float64(p.X)
		y += float64(p.Y)
		z += float64(p.Z)
	}
	n := float64(len(m.Positions))
	return math.Vec3{X: float32(x / n), Y: float32(y / n), Z: float32(z / n)}
}

// MoveCenterToOrigin translates all positions so their centroid sits at the
// origin.
func (m *Mesh) MoveCenterToOrigin() {
	c := m.Center()
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(c)
	}
}

// Stats summarizes a mesh.
type Stats struct {
	Objects   int
	Groups    int
	Faces     int
	Triangles int
	Quads     int
	Positions int
	Normals   int
	UVs       int
	Materials int
}

// Stats counts the mesh contents.
func (m *Mesh) Stats() Stats {
	s := Stats{
		Objects:   len(m.Objects),
		Groups:    len(m.Groups),
		Positions: len(m.Positions),
		Normals:   len(m.Normals),
		UVs:       len(m.UVs),
		Materials: len(m.Materials),
	}
	for _, g := range m.Groups {
		for _, f := range g.Faces {
			s.Faces++
			switch len(f.Vertices) {
			case 3:
				s.Triangles++
			case 4:
				s.Quads++
			}
		}
	}
	return s
}
