package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// createInMemoryImage creates a solid color RGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// createOverlayImage renders text in fg on a bg background, scaled up so
// strokes are several pixels wide.
func createOverlayImage(t *testing.T, text string, fg, bg color.Color, scale int) *image.RGBA {
	t.Helper()

	w := len(text)*7 + 20
	h := 30
	small := createInMemoryImage(w, h, bg)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(10), Y: fixed.I(20)},
	}
	d.DrawString(text)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.RGBAAt(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// createNoiseImage creates a deterministic random RGB image.
func createNoiseImage(width, height int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}

// rasterFromRows builds a raster from strings where '#' is White.
func rasterFromRows(rows ...string) *BinaryRaster {
	r := NewBinaryRaster(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				r.Set(x, y, White)
			}
		}
	}
	return r
}

// fillRect sets a rectangle of r to White.
func fillRect(r *BinaryRaster, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.Set(x, y, White)
		}
	}
}

func assertBinary(t *testing.T, r *BinaryRaster) {
	t.Helper()
	for i, v := range r.Pix {
		if v != White && v != Black {
			t.Fatalf("pixel %d has value %d, want 0 or 255", i, v)
		}
	}
}
