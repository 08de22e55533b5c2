package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// CropRGBA extracts rect from img as a new *image.RGBA with its origin at
// (0,0).
//
// Returns an error if rect is empty or not fully inside the image bounds;
// the region is never silently clipped.
func CropRGBA(img image.Image, rect image.Rectangle) (*image.RGBA, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", rect)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return ToRGBA(imaging.Crop(img, rect)), nil
}

// ToRGBA returns img as an *image.RGBA with its origin at (0,0). An RGBA
// already anchored at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ScaleBinary resizes r by factor using nearest-neighbor sampling so the
// result stays strictly black and white. Tesseract reads small overlay fonts
// more reliably once glyphs are 20-30 pixels tall.
//
// Factors <= 0 or equal to 1 return r unchanged.
func ScaleBinary(r *BinaryRaster, factor float64) *BinaryRaster {
	if factor <= 0 || factor == 1 || r.Len() == 0 {
		return r
	}
	w := int(float64(r.Width) * factor)
	h := int(float64(r.Height) * factor)
	if w < 1 || h < 1 {
		return r
	}

	resized := imaging.Resize(r.Image(), w, h, imaging.NearestNeighbor)
	out := NewBinaryRaster(w, h)
	for y := 0; y < h; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4] >= 128 {
				out.Pix[y*w+x] = White
			}
		}
	}
	return out
}
