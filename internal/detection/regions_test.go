package detection

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func TestSuggestRegions_Uniform(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{20, 60, 20, 255}), image.Point{}, draw.Src)

	if regions := SuggestRegions(img, 0); len(regions) != 0 {
		t.Errorf("uniform image: got %d regions, want 0", len(regions))
	}
}

func TestSuggestRegions_FindsBanner(t *testing.T) {
	img := createBannerImage(t, 480, 240, "GOAL FOR ARSENAL", 40, 100)

	regions := SuggestRegions(img, 0)
	if len(regions) == 0 {
		t.Fatal("expected at least one region")
	}
	text := image.Rect(40, 100, 40+16*7*3, 100+13*3)
	found := false
	for i, r := range regions {
		if r.Bounds.Overlaps(text) {
			found = true
		}
		if i > 0 && r.Confidence > regions[i-1].Confidence {
			t.Error("regions not sorted by confidence")
		}
	}
	if !found {
		t.Errorf("no region overlaps the banner text: %v", regions)
	}
}

// createBannerImage renders white text scaled 3x onto a dark background with
// the text's top-left corner at (x, y).
func createBannerImage(t *testing.T, width, height int, text string, x, y int) *image.RGBA {
	t.Helper()

	small := image.NewRGBA(image.Rect(0, 0, len(text)*7, 13))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.I(11)},
	}
	d.DrawString(text)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{10, 10, 40, 255}), image.Point{}, draw.Src)
	for sy := 0; sy < small.Rect.Dy(); sy++ {
		for sx := 0; sx < small.Rect.Dx(); sx++ {
			if small.RGBAAt(sx, sy).A == 0 {
				continue
			}
			for dy := 0; dy < 3; dy++ {
				for dx := 0; dx < 3; dx++ {
					img.Set(x+sx*3+dx, y+sy*3+dy, color.White)
				}
			}
		}
	}
	return img
}
