package images

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeResizesLargeImages(t *testing.T) {
	data := pngBytes(t, 1000, 400, color.NRGBA{R: 200, G: 10, B: 10, A: 255})

	out := Optimize(data, 800, 85)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy(), "aspect ratio must be preserved")
}

func TestOptimizeLeavesSmallDimensionsAlone(t *testing.T) {
	data := pngBytes(t, 300, 200, color.NRGBA{R: 10, G: 200, B: 10, A: 255})

	out := Optimize(data, 800, 85)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestOptimizeFlattensTransparency(t *testing.T) {
	// Fully transparent source; flattened output should land on the white
	// background, not black.
	data := pngBytes(t, 100, 100, color.NRGBA{A: 0})

	out := Optimize(data, 800, 85)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestOptimizeFallsBackOnUndecodableInput(t *testing.T) {
	data := []byte("not an image at all")

	out := Optimize(data, 800, 85)

	assert.Equal(t, data, out, "optimization failure must pass original bytes through")
}
