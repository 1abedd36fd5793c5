// r4tool is a CLI utility for converting and inspecting engine assets.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/r4/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if err := logger.Init("info", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "gltf":
		cmdGLTF(args)
	case "info", "i":
		cmdInfo(args)
	case "terrain", "t":
		cmdTerrain(args)
	case "watch", "w":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`r4tool - R4 asset utility

Usage:
  r4tool <command> [options]

Commands:
  convert [-o dir] [-smooth] [-center] <file.obj>   Convert OBJ to .r4o/.glb/.mtlb
  gltf [-o file.glb] [-smooth] <file.obj>           Export OBJ as binary glTF
  info <file>                                       Describe .obj .glb .mtlb .r4o or .r4t
  terrain <file.r4t>                                Show the terrain chunk layout
  watch [-o dir] [-smooth] [-center] <dir>          Re-convert OBJ files as they change

Examples:
  r4tool convert -o assets/models models/crate.obj
  r4tool info assets/models/crate/g0.glb
  r4tool terrain assets/island.r4t
  r4tool watch -o assets/models models`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
