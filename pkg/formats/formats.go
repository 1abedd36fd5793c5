// Package formats reads and writes the engine asset formats: mesh buffers
// (.glb), material libraries (.mtlb), object manifests (.r4o) and terrain
// descriptions (.r4t).
//
// Binary formats are little-endian with 4-byte floats and integers.
package formats
