package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// RegionPreviewResult contains a screenshot annotated with the capture region.
type RegionPreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	GridSpacing int    `json:"grid_spacing"`
	InBounds    bool   `json:"in_bounds"`
}

// RegionPreview draws the capture rectangle on top of a full screenshot so an
// operator can check that the overlay text falls inside it.
//
// Parameters:
//   - img: Full-screen capture.
//   - region: Capture rectangle in screen coordinates.
//   - gridSpacing: Spacing of a faint coordinate grid; 0 disables the grid.
//   - colorHex: Outline color as "#RRGGBB" or "#RRGGBBAA". Invalid values
//     fall back to opaque red.
//
// Returns a base64 PNG. InBounds reports whether region lies fully inside the
// screenshot; an out-of-bounds region is still drawn, clipped.
func RegionPreview(img image.Image, region image.Rectangle, gridSpacing int, colorHex string) (*RegionPreviewResult, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	outline, err := parseHexColor(colorHex)
	if err != nil {
		outline = color.RGBA{255, 0, 0, 255}
	}

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	if gridSpacing > 0 {
		gridColor := color.RGBA{255, 255, 255, 64}
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}
		for x := gridSpacing; x < width; x += gridSpacing {
			for y := 0; y < height; y++ {
				blend(result, x, y, gridColor)
			}
		}
		for y := gridSpacing; y < height; y += gridSpacing {
			for x := 0; x < width; x++ {
				blend(result, x, y, gridColor)
			}
		}
		for y := gridSpacing; y < height; y += gridSpacing {
			for x := gridSpacing; x < width; x += gridSpacing {
				drawLabel(result, x+2, y+2, fmt.Sprintf("%d,%d", x, y), labelColor, bgColor)
			}
		}
	}

	local := region.Sub(bounds.Min)
	for t := 0; t < 2; t++ {
		r := local.Inset(-t)
		for x := r.Min.X; x < r.Max.X; x++ {
			setIn(result, x, r.Min.Y, outline)
			setIn(result, x, r.Max.Y-1, outline)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setIn(result, r.Min.X, y, outline)
			setIn(result, r.Max.X-1, y, outline)
		}
	}
	drawLabel(result, local.Min.X, local.Min.Y-9,
		fmt.Sprintf("%d,%d", region.Min.X, region.Min.Y), color.RGBA{255, 255, 255, 255}, outline)

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &RegionPreviewResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		GridSpacing: gridSpacing,
		InBounds:    !region.Empty() && region.In(bounds),
	}, nil
}

func setIn(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, c)
	}
}

// blend composites c over the pixel at (x, y).
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Rect) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{mix(c.R, dst.R), mix(c.G, dst.G), mix(c.B, dst.B), 255})
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// glyphs is a 3x5 bitmap font covering coordinate labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text with a filled background box at (x, y), clipped to
// the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const charWidth = 4
	const labelHeight = 7
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setIn(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setIn(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
