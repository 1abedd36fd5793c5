package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCapture(dir string) *ScreenshotCapture {
	sc := NewScreenshotCapture(dir, "r4")
	sc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 7e6, time.UTC) }
	return sc
}

func TestGenerateFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("shots", "r4_2024-03-09_14-05-06.007.png"), fixedCapture("shots").GenerateFilename())
	assert.Equal(t, "r4_2024-03-09_14-05-06.007.png", fixedCapture("").GenerateFilename())
}

func TestCaptureFromPixelsFlips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sc := fixedCapture(dir)

	// Two rows, bottom row red, top row blue, as read back from GL.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	name, err := sc.CaptureFromPixels(pixels, 2, 2)
	require.NoError(t, err)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{B: 255, A: 255}, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, color.RGBAModel.Convert(img.At(1, 1)))
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	_, err := fixedCapture(t.TempDir()).CaptureFromPixels(make([]byte, 12), 2, 2)
	assert.Error(t, err)
}
