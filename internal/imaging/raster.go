package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Pixel values used by BinaryRaster.
const (
	Black uint8 = 0
	White uint8 = 255
)

// BinaryRaster is a black/white image stored as one byte per pixel.
//
// Every pixel is either Black (0) or White (255). Rasters produced by this
// package are polarity-normalized so that the majority of pixels are black;
// see NormalizePolarity. A raster is never mutated after it leaves the
// function that built it.
type BinaryRaster struct {
	Width  int
	Height int
	Pix    []uint8 // row-major, len == Width*Height
}

// NewBinaryRaster allocates an all-black raster of the given size.
func NewBinaryRaster(width, height int) *BinaryRaster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &BinaryRaster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the pixel at (x, y). Out-of-range coordinates read as Black.
func (b *BinaryRaster) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return Black
	}
	return b.Pix[y*b.Width+x]
}

// Set writes v at (x, y). Out-of-range coordinates are ignored.
func (b *BinaryRaster) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Pix[y*b.Width+x] = v
}

// Len returns the total number of pixels.
func (b *BinaryRaster) Len() int { return b.Width * b.Height }

// WhiteCount returns the number of White pixels.
func (b *BinaryRaster) WhiteCount() int {
	n := 0
	for _, v := range b.Pix {
		if v == White {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *BinaryRaster) Clone() *BinaryRaster {
	out := &BinaryRaster{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Equal reports whether both rasters have identical size and pixels.
func (b *BinaryRaster) Equal(o *BinaryRaster) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	return bytes.Equal(b.Pix, o.Pix)
}

// Image returns the raster as an *image.Gray. The pixel buffer is copied so
// the raster stays immutable.
func (b *BinaryRaster) Image() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	copy(g.Pix, b.Pix)
	return g
}

// EncodePNG encodes the raster as a grayscale PNG.
func (b *BinaryRaster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode binary raster: %w", err)
	}
	return buf.Bytes(), nil
}

// binaryFromGray thresholds g at t: values strictly above t become White.
func binaryFromGray(g *image.Gray, t uint8) *BinaryRaster {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := NewBinaryRaster(w, h)
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		dst := out.Pix[y*w : (y+1)*w]
		for x, v := range src {
			if v > t {
				dst[x] = White
			}
		}
	}
	return out
}

// NormalizePolarity inverts r in place when more than half of its pixels are
// White, so that text ends up as the minority color. The heuristic is coarse
// and can misfire on roughly balanced images; callers rely on its exact
// behavior. It reports whether the raster was inverted.
func NormalizePolarity(r *BinaryRaster) bool {
	if r.WhiteCount()*2 <= r.Len() {
		return false
	}
	for i, v := range r.Pix {
		r.Pix[i] = White - v
	}
	return true
}
