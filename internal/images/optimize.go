package images

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Optimize decodes, flattens, resizes and re-encodes an image so nothing
// larger than maxDim x maxDim ever reaches the bucket. Sources with an alpha
// or palette model are flattened onto a white background before JPEG
// encoding. Any failure falls back to the original bytes unmodified: a
// full-size image beats a missing one.
func Optimize(data []byte, maxDim, quality int) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	img = flatten(img)

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return data
	}
	return buf.Bytes()
}

// flatten composites transparent and paletted images onto white RGB.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.Paletted:
		bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		return imaging.OverlayCenter(bg, img, 1.0)
	default:
		return img
	}
}
