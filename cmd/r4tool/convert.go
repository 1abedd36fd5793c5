package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/r4/pkg/obj"
)

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	out := fs.String("o", ".", "Output directory")
	smooth := fs.Bool("smooth", false, "Use vertex normals on smooth faces")
	center := fs.Bool("center", false, "Move the mesh center to the origin")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: r4tool convert [-o dir] [-smooth] [-center] <file.obj>")
		os.Exit(1)
	}

	opts := obj.ExportOptions{Smooth: *smooth, Center: *center}
	for _, src := range fs.Args() {
		stats, err := convertOBJ(src, *out, opts)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s -> %s (%d groups, %d faces, %d materials)\n",
			src, filepath.Join(*out, baseName(src)+".r4o"), stats.Groups, stats.Faces, stats.Materials)
	}
}

// convertOBJ writes outDir/<name>.r4o and its groups and materials, named
// after the source file. The returned stats describe the parsed source.
func convertOBJ(src, outDir string, opts obj.ExportOptions) (obj.Stats, error) {
	m, err := obj.ParseFile(src)
	if err != nil {
		return obj.Stats{}, err
	}
	stats := m.Stats()
	if err := m.WriteR4O(outDir, baseName(src), opts); err != nil {
		return stats, fmt.Errorf("writing %s: %w", src, err)
	}
	return stats, nil
}

func cmdGLTF(args []string) {
	fs := flag.NewFlagSet("gltf", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default <name>.glb next to the source)")
	smooth := fs.Bool("smooth", false, "Use vertex normals on smooth faces")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: r4tool gltf [-o file.glb] [-smooth] <file.obj>")
		os.Exit(1)
	}
	src := fs.Arg(0)
	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".glb"
	}

	if err := exportGLTF(src, dst, *smooth); err != nil {
		fail(err)
	}
	fmt.Printf("%s -> %s\n", src, dst)
}

func exportGLTF(src, dst string, smooth bool) error {
	m, err := obj.ParseFile(src)
	if err != nil {
		return err
	}
	m.TriangulateQuads()
	if len(m.Normals) == 0 {
		m.ComputeVertexNormals(true)
	}
	m.ComputeFaceNormals(true)
	return m.ExportGLTF(dst, smooth)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
