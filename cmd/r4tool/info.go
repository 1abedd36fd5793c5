package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/obj"
)

var slotNames = [formats.NumTextureSlots]string{"diffuse", "specular", "normal", "opacity"}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: r4tool info <file>")
		os.Exit(1)
	}
	for _, path := range args {
		if err := describe(os.Stdout, path); err != nil {
			fail(err)
		}
	}
}

// describe prints a summary of any asset file, picked by extension. Binary
// glTF files share the .glb extension and are told apart by their magic.
func describe(w io.Writer, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return describeOBJ(w, path)
	case ".glb":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.HasPrefix(data, []byte("glTF")) {
			return describeGLTF(w, path)
		}
		return describeMeshBuffer(w, path, data)
	case ".mtlb":
		return describeMaterialLibrary(w, path)
	case ".r4o":
		return describeManifest(w, path)
	case ".r4t":
		return describeTerrain(w, path)
	}
	return fmt.Errorf("%s: unknown asset type", path)
}

func describeOBJ(w io.Writer, path string) error {
	m, err := obj.ParseFile(path)
	if err != nil {
		return err
	}
	s := m.Stats()
	lo, hi := m.Bounds()

	fmt.Fprintf(w, "OBJ:       %s\n", path)
	fmt.Fprintf(w, "Objects:   %d\n", s.Objects)
	fmt.Fprintf(w, "Groups:    %d\n", s.Groups)
	fmt.Fprintf(w, "Faces:     %d (%d triangles, %d quads)\n", s.Faces, s.Triangles, s.Quads)
	fmt.Fprintf(w, "Vertices:  %d positions, %d normals, %d uvs\n", s.Positions, s.Normals, s.UVs)
	fmt.Fprintf(w, "Materials: %d", s.Materials)
	if m.MaterialFile != "" {
		fmt.Fprintf(w, " (%s)", m.MaterialFile)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	for _, g := range m.Groups {
		mat := "-"
		if g.MaterialIndex >= 0 && g.MaterialIndex < len(m.Materials) {
			mat = m.Materials[g.MaterialIndex].Name
		}
		fmt.Fprintf(w, "  %-16s object=%-12s faces=%-6d material=%s\n",
			g.Name, m.Objects[g.Object].Name, len(g.Faces), mat)
	}
	return nil
}

func describeMeshBuffer(w io.Writer, path string, data []byte) error {
	mb, err := formats.ParseMeshBuffer(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "Mesh buffer: %s\n", path)
	fmt.Fprintf(w, "Origin:      %s\n", mb.OriginName)
	fmt.Fprintf(w, "Vertices:    %d\n", mb.NumVertices)
	fmt.Fprintf(w, "Elements:    %d\n", mb.NumElements)
	fmt.Fprintf(w, "Layout:      %v (stride %d)\n", mb.Layout, mb.Stride())
	fmt.Fprintf(w, "Draw mode:   %s\n", drawModeName(mb.DrawMode))
	fmt.Fprintln(w, "Subgroups:")
	for i, r := range mb.SubGroupRanges() {
		fmt.Fprintf(w, "  %d: elements %d..%d material %d\n", i, r.First, r.First+r.Count, r.MaterialIndex)
	}
	return nil
}

func drawModeName(mode uint32) string {
	switch mode {
	case formats.ModeLines:
		return "lines"
	case formats.ModeTriangles:
		return "triangles"
	case formats.ModeTriangleStrip:
		return "triangle strip"
	}
	return fmt.Sprintf("0x%04x", mode)
}

func describeMaterialLibrary(w io.Writer, path string) error {
	lib, err := formats.ParseMaterialLibraryFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Material library: %s\n", path)
	fmt.Fprintf(w, "Name:             %s\n", lib.Name)
	fmt.Fprintf(w, "Materials:        %d\n", len(lib.Materials))
	for i, m := range lib.Materials {
		fmt.Fprintf(w, "  %d: diffuse=%v opacity=%g shininess=%g illum=%d\n",
			i, m.Diffuse, m.Opacity, m.Shininess, m.Illum)
		for slot, name := range slotNames {
			if tex := m.Texture(slot); tex != "" {
				fmt.Fprintf(w, "     %s: %s\n", name, tex)
			}
		}
	}
	return nil
}

func describeManifest(w io.Writer, path string) error {
	m, err := formats.ParseManifestFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Object manifest: %s\n", path)
	fmt.Fprintf(w, "Architecture:    %s\n", m.Architecture)
	fmt.Fprintf(w, "Groups:          %d in %s/\n", m.NumGroups, m.GroupsFolder)
	fmt.Fprintf(w, "Materials:       %s\n", m.MaterialLibrary)
	fmt.Fprintln(w, "Objects:")
	for _, o := range m.Objects {
		fmt.Fprintf(w, "  %-16s groups %d..%d\n", o.Name, o.FirstGroup, o.LastGroup)
	}
	return nil
}

func describeGLTF(w io.Writer, path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "glTF:      %s\n", path)
	fmt.Fprintf(w, "Meshes:    %d\n", len(doc.Meshes))
	fmt.Fprintf(w, "Materials: %d\n", len(doc.Materials))
	for _, m := range doc.Meshes {
		fmt.Fprintf(w, "  %-16s primitives=%d\n", m.Name, len(m.Primitives))
	}
	return nil
}
