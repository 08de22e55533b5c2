package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultChannelCutoff is the fixed threshold used by per-channel fallbacks.
const DefaultChannelCutoff uint8 = 128

// Histogram counts the pixels of g at each intensity.
func Histogram(g *image.Gray) [256]int {
	var hist [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold picks the threshold that maximizes the between-class variance
// of the histogram of g.
//
// Thresholds 0..255 are scanned in order and the variance
//
//	wB * wF * (meanB - meanF)^2
//
// is evaluated for each, where class B holds intensities <= t. The first
// (lowest) threshold reaching the maximum wins. Degenerate histograms (empty
// image, a single intensity) return 0.
func OtsuThreshold(g *image.Gray) uint8 {
	return otsuFromHistogram(Histogram(g))
}

func otsuFromHistogram(hist [256]int) uint8 {
	total := 0
	var sum float64
	for i, n := range hist {
		total += n
		sum += float64(i) * float64(n)
	}
	if total == 0 {
		return 0
	}

	var (
		sumB      float64
		weightB   int
		best      uint8
		bestScore = -1.0
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		diff := meanB - meanF
		score := float64(weightB) * float64(weightF) * diff * diff
		if score > bestScore {
			bestScore = score
			best = uint8(t)
		}
	}
	return best
}

// Binarize thresholds g at t (values strictly above t become White) and
// normalizes polarity. It reports whether the raster was inverted.
func Binarize(g *image.Gray, t uint8) (*BinaryRaster, bool) {
	out := binaryFromGray(g, t)
	inverted := NormalizePolarity(out)
	return out, inverted
}

// Channel selects one color component of an RGBA pixel.
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// ChannelThreshold binarizes a single color channel of img at cutoff and
// normalizes polarity. Rows are processed in parallel.
//
// Overlay text that differs from its background mostly in one channel (red
// text on dark green, for example) survives this even when the saturation-aware
// grayscale pass loses it.
func ChannelThreshold(img image.Image, ch Channel, cutoff uint8) *BinaryRaster {
	src := bufferOf(img)
	out := NewBinaryRaster(src.width, src.height)
	off := int(ch)
	if off < 0 || off > 2 {
		off = 0
	}

	parallel.Line(src.height, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.row(y)
			dst := out.Pix[y*src.width : (y+1)*src.width]
			for x := range dst {
				if row[x*4+off] > cutoff {
					dst[x] = White
				}
			}
		}
	})

	NormalizePolarity(out)
	return out
}
