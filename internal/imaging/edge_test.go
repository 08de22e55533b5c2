package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestSobelEdges_UniformImage(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	r := SobelEdges(img, DefaultEdgeThreshold)
	if r.WhiteCount() != 0 {
		t.Errorf("uniform image: got %d edge pixels, want 0", r.WhiteCount())
	}
}

func TestSobelEdges_VerticalEdge(t *testing.T) {
	img := createEdgeTestImage(40, 20)

	r := SobelEdges(img, DefaultEdgeThreshold)
	assertBinary(t, r)
	if r.At(19, 10) != White && r.At(20, 10) != White {
		t.Error("expected an edge next to the boundary column")
	}
	if r.At(5, 10) != Black || r.At(35, 10) != Black {
		t.Error("flat regions should not be edges")
	}
	for y := 0; y < r.Height; y++ {
		if r.At(0, y) != Black || r.At(r.Width-1, y) != Black {
			t.Fatalf("border pixel on row %d should be Black", y)
		}
	}
}

func TestSobelEdges_SmallImage(t *testing.T) {
	for _, size := range []int{0, 1, 2} {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		r := SobelEdges(img, DefaultEdgeThreshold)
		if r.Len() != size*size {
			t.Errorf("size %d: raster length %d", size, r.Len())
		}
	}
}

func TestFastMagnitude(t *testing.T) {
	tests := []struct {
		gx, gy, want int
	}{
		{0, 0, 0},
		{100, 0, 100},
		{0, -100, 100},
		{60, 80, 110},
		{-80, 60, 110},
	}
	for _, tt := range tests {
		if got := fastMagnitude(tt.gx, tt.gy); got != tt.want {
			t.Errorf("fastMagnitude(%d,%d): got %d, want %d", tt.gx, tt.gy, got, tt.want)
		}
	}
}

// createEdgeTestImage creates an image with black left half and white right half.
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}
