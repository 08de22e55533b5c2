package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestGrayscale_Luma(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{100, 100, 100, 255})
	g := Grayscale(img)

	if g.Rect.Dx() != 4 || g.Rect.Dy() != 4 {
		t.Fatalf("dimensions: got %dx%d, want 4x4", g.Rect.Dx(), g.Rect.Dy())
	}
	if v := g.GrayAt(1, 1).Y; v < 99 || v > 100 {
		t.Errorf("gray value: got %d, want ~100", v)
	}
}

func TestGrayscale_SaturationAware(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"pure red clamps high", color.RGBA{255, 0, 0, 255}, 255},
		{"bright saturated stretched up", color.RGBA{200, 40, 40, 255}, 236},
		{"dark saturated stretched down", color.RGBA{100, 20, 20, 255}, 86},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grayValue(tt.c.R, tt.c.G, tt.c.B); got != tt.want {
				t.Errorf("grayValue(%v): got %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestGrayscale_SeparatesSaturatedTextFromBackground(t *testing.T) {
	// Yellow on red: luma alone gives 225 vs 76; the saturation-aware rule
	// pushes both to the max channel, so the text must stay distinguishable.
	img := createInMemoryImage(10, 1, color.RGBA{200, 30, 30, 255})
	img.SetRGBA(5, 0, color.RGBA{250, 250, 20, 255})

	g := Grayscale(img)
	if g.GrayAt(5, 0).Y <= g.GrayAt(0, 0).Y {
		t.Errorf("text %d should be brighter than background %d", g.GrayAt(5, 0).Y, g.GrayAt(0, 0).Y)
	}
}

func TestGrayscale_SubImageOrigin(t *testing.T) {
	img := createInMemoryImage(20, 20, color.Black)
	img.SetRGBA(12, 12, color.RGBA{255, 255, 255, 255})
	sub := img.SubImage(image.Rect(10, 10, 20, 20))

	g := Grayscale(sub)
	if g.Rect.Min != (image.Point{}) {
		t.Fatalf("origin: got %v, want (0,0)", g.Rect.Min)
	}
	if g.GrayAt(2, 2).Y < 254 {
		t.Errorf("sub-image pixel not mapped to origin: got %d", g.GrayAt(2, 2).Y)
	}
}

func TestGrayscale_NonRGBAInput(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	src.SetGray(1, 1, color.Gray{Y: 180})

	g := Grayscale(src)
	if v := g.GrayAt(1, 1).Y; v < 179 || v > 180 {
		t.Errorf("gray value: got %d, want ~180", v)
	}
}

func TestPreprocess_PolarityInvariant(t *testing.T) {
	images := map[string]image.Image{
		"white":       createInMemoryImage(30, 20, color.White),
		"black":       createInMemoryImage(30, 20, color.Black),
		"noise":       createNoiseImage(64, 48, 7),
		"dark text":   createOverlayImage(t, "GOAL FOR ARSENAL", color.Black, color.White, 2),
		"light text":  createOverlayImage(t, "KICK OFF", color.White, color.RGBA{20, 40, 120, 255}, 2),
		"yellow text": createOverlayImage(t, "FULL TIME 3-1", color.RGBA{250, 230, 20, 255}, color.RGBA{180, 20, 20, 255}, 3),
		"bright edges": createEdgeFrameImage(20, 5),
		"thick edges":  createEdgeFrameImage(24, 9),
	}

	for _, denoise := range []bool{false, true} {
		p := NewPreprocessor(Options{Denoise: denoise})
		for name, img := range images {
			r := p.Preprocess(img)
			assertBinary(t, r)
			if r.WhiteCount()*2 > r.Len() {
				t.Errorf("%s (denoise=%v): %d of %d pixels white", name, denoise, r.WhiteCount(), r.Len())
			}
		}
	}
}

// createEdgeFrameImage draws a dark banner whose first and last rows are
// bright, so white touches the raster border.
func createEdgeFrameImage(width, height int) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{30, 30, 60, 255})
	for x := 0; x < width; x++ {
		img.SetRGBA(x, 0, color.RGBA{240, 240, 240, 255})
		img.SetRGBA(x, height-1, color.RGBA{240, 240, 240, 255})
		if height > 6 {
			img.SetRGBA(x, 1, color.RGBA{240, 240, 240, 255})
			img.SetRGBA(x, height-2, color.RGBA{240, 240, 240, 255})
		}
	}
	return img
}

func TestPreprocess_DenoiseNeverAddsWhite(t *testing.T) {
	img := createEdgeFrameImage(20, 5)

	plain := NewPreprocessor(Options{}).Preprocess(img)
	denoised := NewPreprocessor(Options{Denoise: true}).Preprocess(img)
	if plain.WhiteCount() != 40 {
		t.Fatalf("plain: got %d white, want the 40 frame pixels", plain.WhiteCount())
	}
	if denoised.WhiteCount() > plain.WhiteCount() {
		t.Errorf("denoise added white: %d > %d", denoised.WhiteCount(), plain.WhiteCount())
	}
}

func TestPreprocess_ManualThreshold(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{100, 100, 100, 255})
	for x := 0; x < 3; x++ {
		img.SetRGBA(x, 0, color.RGBA{160, 160, 160, 255})
	}

	th := uint8(150)
	res := NewPreprocessor(Options{Threshold: &th}).PreprocessDetailed(img)
	if res.Automatic {
		t.Error("manual threshold reported as automatic")
	}
	if res.Threshold != 150 {
		t.Errorf("threshold: got %d, want 150", res.Threshold)
	}
	if res.Raster.WhiteCount() != 3 {
		t.Errorf("white count: got %d, want 3", res.Raster.WhiteCount())
	}

	th = 10 // mutating the caller's value must not change the preprocessor
	if got := *NewPreprocessor(Options{Threshold: &th}).Options().Threshold; got != 10 {
		t.Errorf("Options().Threshold: got %d, want 10", got)
	}
}

func TestPreprocess_TextProducesInk(t *testing.T) {
	img := createOverlayImage(t, "GOAL", color.White, color.Black, 3)
	res := NewPreprocessor(Options{}).PreprocessDetailed(img)

	if !res.Automatic {
		t.Error("expected automatic threshold")
	}
	if res.Inverted {
		t.Error("light text on dark background should not need inversion")
	}
	if res.Raster.WhiteCount() == 0 {
		t.Error("expected text pixels in the raster")
	}
}

func TestPreprocess_DegenerateInputDoesNotPanic(t *testing.T) {
	p := NewPreprocessor(Options{Denoise: true})
	for _, img := range []image.Image{
		image.NewRGBA(image.Rect(0, 0, 0, 0)),
		image.NewRGBA(image.Rect(0, 0, 1, 1)),
		createInMemoryImage(2, 2, color.White),
	} {
		r := p.Preprocess(img)
		if r.Len() != img.Bounds().Dx()*img.Bounds().Dy() {
			t.Errorf("raster size %d does not match image %v", r.Len(), img.Bounds())
		}
		_ = p.Alternatives(img)
	}
}

func TestStrategies_Order(t *testing.T) {
	want := []string{StrategyPrimary, StrategyRed, StrategyGreen, StrategyBlue, StrategySobel}
	got := NewPreprocessor(Options{}).Strategies()
	if len(got) != len(want) {
		t.Fatalf("strategy count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("strategy %d: got %s, want %s", i, got[i].Name, want[i])
		}
	}
}

func TestAlternatives(t *testing.T) {
	img := createOverlayImage(t, "GOL", color.RGBA{230, 30, 30, 255}, color.RGBA{20, 110, 20, 255}, 2)
	alts := NewPreprocessor(Options{}).Alternatives(img)

	if len(alts) != 4 {
		t.Fatalf("alternatives: got %d, want 4", len(alts))
	}
	if alts[0].Strategy != StrategyRed || alts[3].Strategy != StrategySobel {
		t.Errorf("unexpected order: %s ... %s", alts[0].Strategy, alts[3].Strategy)
	}
	for _, c := range alts {
		assertBinary(t, c.Raster)
		if c.Raster.WhiteCount()*2 > c.Raster.Len() {
			t.Errorf("%s: polarity not normalized", c.Strategy)
		}
	}
	if alts[0].Raster.WhiteCount() == 0 {
		t.Error("red channel should isolate red text")
	}
}
