// Package obj reads Wavefront OBJ/MTL files into an editable mesh and
// converts it into engine asset files.
package obj

import (
	"strconv"

	"github.com/Faultbox/r4/pkg/math"
)

// NoIndex marks a face vertex without a texture coordinate or normal.
const NoIndex = -1

// VertexRef indexes a face corner into the mesh attribute lists (0-based).
type VertexRef struct {
	Position int
	UV       int
	Normal   int
}

// Face is a triangle or quad.
type Face struct {
	Vertices      []VertexRef
	Normal        math.Vec3
	Smooth        bool
	MaterialIndex int
}

// Group is a named set of faces belonging to one object.
type Group struct {
	Name          string
	Object        int
	MaterialIndex int // -1 until a material is bound
	Faces         []Face
}

// Object is a named container of groups.
type Object struct {
	Name string
}

// Mesh is the editable result of parsing an OBJ file. It always holds at
// least one object and one group.
type Mesh struct {
	Name         string // Source file name
	MaterialFile string // mtllib argument, if any

	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2

	Objects   []Object
	Groups    []Group
	Materials []Material
}

// NewMesh returns an empty mesh holding the default object "o_0" and group "g_0".
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:    name,
		Objects: []Object{{Name: "o_0"}},
		Groups:  []Group{{Name: "g_0", MaterialIndex: NoIndex}},
	}
}

// current returns the group new faces are added to.
func (m *Mesh) current() *Group {
	return &m.Groups[len(m.Groups)-1]
}

// AddGroup starts a group under the last object. If the current group has
// no faces yet it is renamed instead. An empty name becomes "g_<n>".
func (m *Mesh) AddGroup(name string) {
	if name == "" {
		name = "g_" + strconv.Itoa(len(m.Groups))
	}
	if g := m.current(); len(g.Faces) == 0 {
		g.Name = name
		return
	}
	m.Groups = append(m.Groups, Group{
		Name:          name,
		Object:        len(m.Objects) - 1,
		MaterialIndex: NoIndex,
	})
}

// AddObject starts an object with a fresh default group. While the current
// object has no faces it is renamed instead. An empty name becomes "o_<n>".
func (m *Mesh) AddObject(name string) {
	if name == "" {
		name = "o_" + strconv.Itoa(len(m.Objects))
	}
	last := len(m.Objects) - 1
	if m.objectFaces(last) == 0 {
		m.Objects[last].Name = name
		return
	}
	m.Objects = append(m.Objects, Object{Name: name})
	m.Groups = append(m.Groups, Group{
		Name:          "g_" + strconv.Itoa(len(m.Groups)),
		Object:        last + 1,
		MaterialIndex: NoIndex,
	})
}

func (m *Mesh) objectFaces(obj int) int {
	n := 0
	for _, g := range m.Groups {
		if g.Object == obj {
			n += len(g.Faces)
		}
	}
	return n
}

// AddFace appends a face to the current group, tagged with the group's
// current material.
func (m *Mesh) AddFace(f Face) {
	g := m.current()
	f.MaterialIndex = g.MaterialIndex
	g.Faces = append(g.Faces, f)
}

// SetMaterial binds a material to the current group. Faces added afterwards
// use it; earlier faces keep theirs.
func (m *Mesh) SetMaterial(index int) {
	m.current().MaterialIndex = index
}

// FindMaterial returns the index of the last material with the given name,
// or -1.
func (m *Mesh) FindMaterial(name string) int {
	for i := len(m.Materials) - 1; i >= 0; i-- {
		if m.Materials[i].Name == name {
			return i
		}
	}
	return NoIndex
}

// NumFaces returns the face count over all groups.
func (m *Mesh) NumFaces() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Faces)
	}
	return n
}
