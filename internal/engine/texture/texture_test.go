package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/r4/internal/engine/gpu/gputest"
)

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12] = byte(w)
	hdr[13] = byte(w >> 8)
	hdr[14] = byte(h)
	hdr[15] = byte(h >> 8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	// 2x2, 24 bpp, stored bottom row first.
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1, 32 bpp, top-to-bottom: a run of two then one raw pixel.
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 40,
		0x00, 1, 2, 3, 4,
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	run := color.RGBA{R: 30, G: 20, B: 10, A: 40}
	if img.RGBAAt(0, 0) != run || img.RGBAAt(1, 0) != run {
		t.Errorf("run pixels = %v %v, want %v", img.RGBAAt(0, 0), img.RGBAAt(1, 0), run)
	}
	if got, want := img.RGBAAt(2, 0), (color.RGBA{R: 3, G: 2, B: 1, A: 4}); got != want {
		t.Errorf("raw pixel = %v, want %v", got, want)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"paletted type", tgaHeader(1, 1, 1, 8, 0)},
		{"16 bpp", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated pixels", tgaHeader(TGATypeUncompressed, 4, 4, 24, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := DecodeTGA(tgaHeader(1, 1, 1, 8, 0)); !errors.Is(err, ErrUnsupportedTGA) {
		t.Errorf("expected ErrUnsupportedTGA, got %v", err)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadFileAndFlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grass.png")
	writePNG(t, path)

	img, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	flipped := FlipVertical(img)
	if got := flipped.RGBAAt(0, 0); got.B != 255 {
		t.Errorf("flipped top = %v, want blue", got)
	}
	if got := flipped.RGBAAt(0, 1); got.R != 255 {
		t.Errorf("flipped bottom = %v, want red", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grass.png")
	writePNG(t, path)

	dev := gputest.New()
	tex, err := Load(dev, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := dev.Textures[tex]; got.Dx() != 1 || got.Dy() != 2 {
		t.Errorf("texture bounds = %v, want 1x2", got)
	}

	if _, err := Load(dev, filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeSniffsContent(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	// The extension is wrong but the PNG signature wins.
	img, err := Decode("grass.tga", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("bounds = %v, want 2x2", img.Bounds())
	}

	zip := append([]byte("PK\x03\x04"), make([]byte, 60)...)
	if _, err := Decode("grass.png", zip); err == nil || !strings.Contains(err.Error(), "unsupported content") {
		t.Errorf("expected unsupported content error, got %v", err)
	}
}
