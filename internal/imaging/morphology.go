package imaging

import "github.com/anthonynsimon/bild/parallel"

// Erode shrinks white regions using a 4-connected neighborhood.
//
// A pixel stays White only if it and its up, down, left and right neighbors
// are all White. Pixels outside the raster count as Black, so white touching
// the border is eroded like any other edge.
func Erode(src *BinaryRaster) *BinaryRaster {
	return morph(src, func(c, u, d, l, r uint8) uint8 {
		if c == White && u == White && d == White && l == White && r == White {
			return White
		}
		return Black
	})
}

// Dilate grows white regions using a 4-connected neighborhood.
//
// A pixel becomes White if it or any of its four neighbors is White.
// Pixels outside the raster count as Black, as in Erode.
func Dilate(src *BinaryRaster) *BinaryRaster {
	return morph(src, func(c, u, d, l, r uint8) uint8 {
		if c == White || u == White || d == White || l == White || r == White {
			return White
		}
		return Black
	})
}

// Open performs morphological opening (erosion followed by dilation). It
// removes specks narrower than the structuring element and keeps larger
// strokes at roughly their original size. The result never has a White
// pixel that was Black in src.
func Open(src *BinaryRaster) *BinaryRaster {
	return Dilate(Erode(src))
}

// morph applies op to every pixel, one goroutine per row band. Interior
// rows take a fast path; the outer ring reads out-of-range neighbors as
// Black.
func morph(src *BinaryRaster, op func(c, u, d, l, r uint8) uint8) *BinaryRaster {
	w, h := src.Width, src.Height
	out := NewBinaryRaster(w, h)
	if w == 0 || h == 0 {
		return out
	}

	at := func(x, y int) uint8 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return Black
		}
		return src.Pix[y*w+x]
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			dst := out.Pix[y*w : (y+1)*w]
			if y == 0 || y == h-1 || w < 3 {
				for x := 0; x < w; x++ {
					dst[x] = op(at(x, y), at(x, y-1), at(x, y+1), at(x-1, y), at(x+1, y))
				}
				continue
			}

			up := src.Pix[(y-1)*w : y*w]
			mid := src.Pix[y*w : (y+1)*w]
			down := src.Pix[(y+1)*w : (y+2)*w]
			dst[0] = op(mid[0], up[0], down[0], Black, mid[1])
			for x := 1; x < w-1; x++ {
				dst[x] = op(mid[x], up[x], down[x], mid[x-1], mid[x+1])
			}
			dst[w-1] = op(mid[w-1], up[w-1], down[w-1], mid[w-2], Black)
		}
	})

	return out
}
