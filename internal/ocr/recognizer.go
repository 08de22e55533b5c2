package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ironsheep/goalhorn/internal/imaging"
)

// Recognizer turns a binary raster into text.
//
// Implementations may return an empty string for blank input. Errors from
// Recognize are per-call failures; callers treat them as "nothing
// recognized this frame".
type Recognizer interface {
	Recognize(ctx context.Context, raster *imaging.BinaryRaster) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, raster *imaging.BinaryRaster) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, raster *imaging.BinaryRaster) (string, error) {
	return f(ctx, raster)
}

// Normalize prepares recognized text for phrase matching: surrounding
// whitespace is trimmed and letters are uppercased. Nothing else changes.
func Normalize(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// InitError reports that the OCR engine could not be started. It is fatal
// for a detection session.
type InitError struct {
	Engine string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s initialization failed: %v", e.Engine, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *InitError) Unwrap() error { return e.Err }

// RecognitionError reports a failed recognition call. The engine stays
// usable.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed: %v", e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *RecognitionError) Unwrap() error { return e.Err }

// Info describes the OCR engine in use.
type Info struct {
	Engine      string   `json:"engine"`
	Version     string   `json:"version"`
	Languages   []string `json:"languages"`
	PageSegMode int      `json:"page_seg_mode"`
	Scale       float64  `json:"scale"`
}
