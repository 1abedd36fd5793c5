// Package texture decodes image files and uploads them as GPU textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/r4/internal/engine/gpu"
)

// decodable lists the sniffed types the registered image decoders handle.
var decodable = map[string]bool{"png": true, "jpg": true, "bmp": true, "tif": true}

// Decode decodes image data. The content is sniffed first; TGA has no magic
// number, so data named .tga that is not another known image goes to the TGA
// decoder and everything else to the registered image decoders.
func Decode(name string, data []byte) (*image.RGBA, error) {
	kind, _ := filetype.Match(data)
	switch {
	case decodable[kind.Extension]:
	case strings.EqualFold(filepath.Ext(name), ".tga"):
		return DecodeTGA(data)
	case kind != filetype.Unknown:
		return nil, fmt.Errorf("decoding %s: unsupported content %s", name, kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return clone.AsRGBA(img), nil
}

// ReadFile decodes an image file from disk.
func ReadFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// FlipVertical returns img mirrored top to bottom. Image rows run top-down
// while texture coordinates start at the bottom.
func FlipVertical(img image.Image) *image.RGBA {
	return transform.FlipV(img)
}

// Load reads an image file and uploads it flipped for texture coordinates
// with the origin in the lower left.
func Load(dev gpu.Device, path string) (gpu.Texture, error) {
	img, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	tex, err := dev.CreateTexture(FlipVertical(img))
	if err != nil {
		return 0, fmt.Errorf("uploading %s: %w", path, err)
	}
	return tex, nil
}
