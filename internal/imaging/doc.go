// Package imaging turns captured screen frames into binary rasters that the
// OCR engine can read.
//
// The primary pass is a saturation-aware grayscale conversion, a threshold
// (manual, or Otsu's method), polarity normalization and an optional
// morphological opening. When the primary raster yields nothing, callers walk
// the fallback strategies in order: per-channel thresholds for red, green and
// blue, then a Sobel edge map.
//
// # Coordinate System
//
// All rasters produced here have their origin at (0,0), X increasing
// rightward and Y increasing downward. Input images may have any origin.
//
// # Polarity
//
// Every BinaryRaster leaving this package has at most half of its pixels
// White. A raster whose binarization is majority White is inverted. This is a
// coarse proxy for "which color is the text" and is kept deliberately simple.
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently on different
// images. Pixel-local operations (grayscale, channel threshold, erosion,
// dilation, Sobel) split rows across goroutines internally and join before
// returning, so callers never observe a partially built raster.
//
// # Error Handling
//
// Preprocessing never fails. Only file loading (ImageCache) and cropping
// (CropRGBA) return errors, for unreadable files and out-of-bounds regions.
package imaging
