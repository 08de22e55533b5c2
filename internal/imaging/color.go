package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// SaturationCutoff is the HSV saturation above which a pixel is treated as
// colored overlay text rather than a shade of gray.
const SaturationCutoff = 0.3

// pixelBuffer is a 4-bytes-per-pixel view of an image with its origin at (0,0).
type pixelBuffer struct {
	pix    []uint8
	stride int
	width  int
	height int
}

// row returns the 4*width bytes of row y.
func (p pixelBuffer) row(y int) []uint8 {
	off := y * p.stride
	return p.pix[off : off+p.width*4]
}

// bufferOf returns an RGBA-layout view of img.
//
// *image.RGBA and *image.NRGBA are used in place (sub-images included). Any
// other image type is converted once with imaging.Clone. Captured frames are
// opaque, so premultiplied and non-premultiplied layouts hold the same bytes.
func bufferOf(img image.Image) pixelBuffer {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.RGBA:
		return pixelBuffer{
			pix:    src.Pix[src.PixOffset(b.Min.X, b.Min.Y):],
			stride: src.Stride,
			width:  b.Dx(),
			height: b.Dy(),
		}
	case *image.NRGBA:
		return pixelBuffer{
			pix:    src.Pix[src.PixOffset(b.Min.X, b.Min.Y):],
			stride: src.Stride,
			width:  b.Dx(),
			height: b.Dy(),
		}
	}
	n := imaging.Clone(img)
	return pixelBuffer{pix: n.Pix, stride: n.Stride, width: b.Dx(), height: b.Dy()}
}

// Grayscale converts img to an 8-bit grayscale image using a
// saturation-aware rule.
//
// # Algorithm
//
// For each pixel:
//
//  1. Compute ITU-R BT.601 luma: 0.299*R + 0.587*G + 0.114*B
//  2. Compute HSV saturation (max-min)/max
//  3. If saturation exceeds SaturationCutoff, use the max channel instead of
//     luma and contrast-stretch it: v + (v-128)/2, clamped to [0,255]
//
// Plain luma flattens saturated text on a saturated background (e.g. yellow
// on red) into nearly identical grays; the max channel keeps them apart.
//
// Rows are converted in parallel. The function returns after every row is
// done. The result always has its origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	src := bufferOf(img)
	out := image.NewGray(image.Rect(0, 0, src.width, src.height))

	parallel.Line(src.height, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.row(y)
			dst := out.Pix[y*out.Stride : y*out.Stride+src.width]
			for x := range dst {
				i := x * 4
				dst[x] = grayValue(row[i], row[i+1], row[i+2])
			}
		}
	})

	return out
}

// grayValue applies the saturation-aware conversion to one pixel.
func grayValue(r, g, b uint8) uint8 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	_, s, _ := c.Hsv()
	if s > SaturationCutoff {
		v := float64(max3(r, g, b))
		return clampByte(v + (v-128)/2)
	}
	return clampByte(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

func max3(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// clampByte truncates v into [0,255].
func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
