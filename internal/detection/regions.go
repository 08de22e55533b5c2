package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/goalhorn/internal/imaging"
)

// TextRegion is a screen area likely to hold an overlay banner.
type TextRegion struct {
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// bannerWindows are the sliding-window sizes tried by SuggestRegions, from
// compact score bugs to full-width goal banners.
var bannerWindows = []struct{ w, h int }{
	{120, 30},
	{200, 40},
	{320, 50},
	{80, 24},
}

// SuggestRegions scans a full screenshot for areas whose edge density and
// horizontal structure look like overlay text. It helps pick a capture
// region; the pipeline itself never calls it.
//
// Overlapping candidates are merged and returned by descending confidence.
// Coordinates are in img's coordinate space.
func SuggestRegions(img image.Image, minConfidence float64) []TextRegion {
	bounds := img.Bounds()
	edges := imaging.SobelEdges(img, imaging.DefaultEdgeThreshold)

	var candidates []TextRegion
	for _, ws := range bannerWindows {
		stepX, stepY := ws.w/2, ws.h/2
		for y := 0; y+ws.h <= edges.Height; y += stepY {
			for x := 0; x+ws.w <= edges.Width; x += stepX {
				count := 0
				for wy := y; wy < y+ws.h; wy++ {
					for wx := x; wx < x+ws.w; wx++ {
						if edges.At(wx, wy) == imaging.White {
							count++
						}
					}
				}

				density := float64(count) / float64(ws.w*ws.h)
				if density < 0.05 || density > 0.4 {
					continue
				}
				confidence := horizontalScore(edges, x, y, ws.w, ws.h) * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Bounds:     image.Rect(x, y, x+ws.w, y+ws.h).Add(bounds.Min),
					Confidence: math.Round(confidence*1000) / 1000,
				})
			}
		}
	}

	merged := mergeRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// horizontalScore is the share of edge runs that run horizontally. Text
// lines produce more horizontal runs than vertical ones.
func horizontalScore(edges *imaging.BinaryRaster, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0
	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			on := edges.At(col, row) == imaging.White
			if on && !inRun {
				horizontal++
			}
			inRun = on
		}
	}
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			on := edges.At(col, row) == imaging.White
			if on && !inRun {
				vertical++
			}
			inRun = on
		}
	}
	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

func mergeRegions(regions []TextRegion) []TextRegion {
	var merged []TextRegion
	for _, r := range regions {
		found := false
		for i := range merged {
			if r.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(r.Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, r)
		}
	}
	return merged
}
