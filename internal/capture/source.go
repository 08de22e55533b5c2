package capture

import (
	"context"
	"image"
	"sync"

	"github.com/vova616/screenshot"

	"github.com/ironsheep/goalhorn/internal/imaging"
)

// FrameSource produces frames for a region of a monitor. Capture blocks
// until a frame is available and returns a fresh *image.RGBA with its
// origin at (0,0); callers must not share it across ticks.
type FrameSource interface {
	// Bounds returns the pixel bounds of monitor.
	Bounds(monitor int) (image.Rectangle, error)
	// Capture returns the pixels of region on monitor.
	Capture(ctx context.Context, region CaptureRegion, monitor int) (*image.RGBA, error)
}

// ScreenSource captures the live primary monitor.
type ScreenSource struct{}

// NewScreenSource returns a source backed by the operating system's screen.
func NewScreenSource() *ScreenSource { return &ScreenSource{} }

// Bounds returns the primary monitor's bounds. Any other index is reported
// as MonitorNotFound.
func (s *ScreenSource) Bounds(monitor int) (image.Rectangle, error) {
	if monitor != 0 {
		return image.Rectangle{}, newError(MonitorNotFound, nil, "monitor %d (only the primary monitor is supported)", monitor)
	}
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return image.Rectangle{}, classify(err, "query screen bounds")
	}
	return rect, nil
}

// Capture grabs region from the screen. The region is re-validated on every
// call because the display resolution can change under a running pipeline.
func (s *ScreenSource) Capture(ctx context.Context, region CaptureRegion, monitor int) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds, err := s.Bounds(monitor)
	if err != nil {
		return nil, err
	}
	if err := region.Validate(bounds); err != nil {
		return nil, err
	}

	img, err := screenshot.CaptureRect(region.Rect().Add(bounds.Min))
	if err != nil {
		return nil, classify(err, "capture screen")
	}
	return imaging.ToRGBA(img), nil
}

// FileSource replays screenshots from disk. Each Capture returns the next
// file, wrapping around after the last one, cropped to the region.
//
// FileSource is safe for concurrent use.
type FileSource struct {
	cache *imaging.ImageCache
	paths []string

	mu   sync.Mutex
	next int
}

// NewFileSource returns a source replaying paths in order. A nil cache gets
// a private one.
func NewFileSource(cache *imaging.ImageCache, paths ...string) *FileSource {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &FileSource{cache: cache, paths: append([]string(nil), paths...)}
}

// Bounds returns the bounds of the first screenshot.
func (s *FileSource) Bounds(monitor int) (image.Rectangle, error) {
	if monitor != 0 {
		return image.Rectangle{}, newError(MonitorNotFound, nil, "monitor %d (file sources have a single screen)", monitor)
	}
	if len(s.paths) == 0 {
		return image.Rectangle{}, newError(Unavailable, nil, "no screenshots to replay")
	}
	img, err := s.cache.Load(s.paths[0])
	if err != nil {
		return image.Rectangle{}, newError(Unavailable, err, "load %s", s.paths[0])
	}
	return img.Bounds(), nil
}

// Capture returns region of the next screenshot.
func (s *FileSource) Capture(ctx context.Context, region CaptureRegion, monitor int) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if monitor != 0 {
		return nil, newError(MonitorNotFound, nil, "monitor %d (file sources have a single screen)", monitor)
	}
	if len(s.paths) == 0 {
		return nil, newError(Unavailable, nil, "no screenshots to replay")
	}

	s.mu.Lock()
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)
	s.mu.Unlock()

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, newError(Unavailable, err, "load %s", path)
	}
	if err := region.Validate(img.Bounds()); err != nil {
		return nil, err
	}
	return imaging.CropRGBA(img, region.Rect())
}
