package capture

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// CaptureRegion is a rectangle in screen pixels.
type CaptureRegion struct {
	X      uint32 `json:"x"`
	Y      uint32 `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Rect returns the region as an image.Rectangle.
func (r CaptureRegion) Rect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

func (r CaptureRegion) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// Validate checks that the region is non-empty and lies inside bounds.
// It returns a *CaptureError of kind RegionOutOfBounds otherwise.
func (r CaptureRegion) Validate(bounds image.Rectangle) error {
	if r.Width == 0 || r.Height == 0 {
		return newError(RegionOutOfBounds, nil, "region %s has zero size", r)
	}
	if !r.Rect().Add(bounds.Min).In(bounds) {
		return newError(RegionOutOfBounds, nil, "region %s exceeds monitor bounds %dx%d", r, bounds.Dx(), bounds.Dy())
	}
	return nil
}

// ParseRegion parses "x,y,width,height".
func ParseRegion(s string) (CaptureRegion, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return CaptureRegion{}, fmt.Errorf("invalid region %q: want x,y,width,height", s)
	}
	var vals [4]uint32
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return CaptureRegion{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = uint32(v)
	}
	return CaptureRegion{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
