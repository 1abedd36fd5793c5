package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/r4/internal/engine/terrain"
)

func cmdTerrain(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: r4tool terrain <file.r4t>")
		os.Exit(1)
	}
	if err := describeTerrain(os.Stdout, args[0]); err != nil {
		fail(err)
	}
}

// describeTerrain prints the description and builds every chunk on the CPU
// to report its size.
func describeTerrain(w io.Writer, path string) error {
	desc, geom, err := terrain.LoadGeometry(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Terrain:   %s\n", path)
	fmt.Fprintf(w, "Heightmap: %s (%dx%d)\n", desc.Heightmap, geom.Width(), geom.Height())
	fmt.Fprintf(w, "Scale:     %g horizontal, %g vertical\n", desc.Scale, desc.HeightScale)
	fmt.Fprintf(w, "Texture:   repeat every %g samples\n", desc.TexScale)
	for i, tex := range desc.Textures {
		normal := "-"
		if tex.NormalMap != "" {
			normal = tex.NormalMap
		}
		fmt.Fprintf(w, "  %d: color=%s normal=%s\n", i, tex.ColorMap, normal)
	}
	fmt.Fprintf(w, "Grid:      %dx%d chunks\n", desc.GridWidth, desc.GridHeight)

	var vertices, elements int
	for _, cw := range terrain.ChunkWindows(geom.Width(), geom.Height(), desc.GridWidth, desc.GridHeight) {
		c, err := terrain.BuildChunkData(geom, cw.X, cw.Y, cw.Width, cw.Height)
		if err != nil {
			return fmt.Errorf("chunk (%d,%d): %w", cw.U, cw.V, err)
		}
		vertices += c.NumVertices()
		elements += len(c.Indices)
		fmt.Fprintf(w, "  (%d,%d) at %d,%d size %dx%d: %d vertices, %d strip elements\n",
			cw.U, cw.V, cw.X, cw.Y, cw.Width, cw.Height, c.NumVertices(), len(c.Indices))
	}
	fmt.Fprintf(w, "Total:     %d vertices, %d strip elements\n", vertices, elements)
	return nil
}
