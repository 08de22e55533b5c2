package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/goalhorn/internal/detection"
	gimaging "github.com/ironsheep/goalhorn/internal/imaging"
)

// DefaultScale is the default upscaling factor applied before recognition.
const DefaultScale = 2.0

// TesseractOptions configures the Tesseract recognizer.
type TesseractOptions struct {
	// Languages are Tesseract language codes such as "eng" or "spa".
	// Empty means English.
	Languages []string
	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
	// PageSegMode is a Tesseract page segmentation mode. Zero selects
	// single-block segmentation, which suits one-line overlay banners.
	PageSegMode gosseract.PageSegMode
	// Scale enlarges the raster before recognition. Values <= 1 disable it.
	Scale float64
	// Whitelist restricts recognized characters when non-empty.
	Whitelist string
}

// Tesseract is a Recognizer backed by a long-lived gosseract client.
//
// A single client is reused across calls so the language model is loaded
// once. Calls are serialized by a mutex; Tesseract clients are not safe for
// concurrent use.
type Tesseract struct {
	opts TesseractOptions

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract starts a Tesseract client and runs one warm-up recognition so
// that a missing engine or language pack is reported here, as an
// *InitError, rather than on the first frame.
func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	if opts.PageSegMode == 0 {
		opts.PageSegMode = gosseract.PSM_SINGLE_BLOCK
	}

	client := gosseract.NewClient()
	fail := func(err error) (*Tesseract, error) {
		client.Close()
		return nil, &InitError{Engine: "tesseract", Err: err}
	}

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			return fail(fmt.Errorf("failed to set tessdata prefix: %w", err))
		}
	}
	if err := client.SetLanguage(opts.Languages...); err != nil {
		return fail(fmt.Errorf("failed to set language: %w", err))
	}
	if err := client.SetPageSegMode(opts.PageSegMode); err != nil {
		return fail(fmt.Errorf("failed to set page segmentation mode: %w", err))
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return fail(fmt.Errorf("failed to set whitelist: %w", err))
		}
	}

	warmup, err := encodeForEngine(gimaging.NewBinaryRaster(32, 16))
	if err != nil {
		return fail(err)
	}
	if err := client.SetImageFromBytes(warmup); err != nil {
		return fail(err)
	}
	if _, err := client.Text(); err != nil {
		return fail(err)
	}

	return &Tesseract{opts: opts, client: client}, nil
}

// Recognize returns the raw text Tesseract reads from raster.
func (t *Tesseract) Recognize(ctx context.Context, raster *gimaging.BinaryRaster) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if raster == nil || raster.Len() == 0 {
		return "", nil
	}

	data, err := encodeForEngine(gimaging.ScaleBinary(raster, t.opts.Scale))
	if err != nil {
		return "", &RecognitionError{Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return "", &RecognitionError{Err: errors.New("recognizer closed")}
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", &RecognitionError{Err: fmt.Errorf("failed to set image: %w", err)}
	}
	text, err := t.client.Text()
	if err != nil {
		return "", &RecognitionError{Err: err}
	}
	return text, nil
}

// Word is one recognized word with its location in the raster.
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Bounds     image.Rectangle `json:"bounds"`
}

// RecognizeWords returns word-level results. Bounds are mapped back to the
// raster's coordinates when upscaling is enabled. Empty words are dropped.
func (t *Tesseract) RecognizeWords(ctx context.Context, raster *gimaging.BinaryRaster) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if raster == nil || raster.Len() == 0 {
		return nil, nil
	}

	scaled := gimaging.ScaleBinary(raster, t.opts.Scale)
	data, err := encodeForEngine(scaled)
	if err != nil {
		return nil, &RecognitionError{Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil, &RecognitionError{Err: errors.New("recognizer closed")}
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, &RecognitionError{Err: fmt.Errorf("failed to set image: %w", err)}
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &RecognitionError{Err: err}
	}

	fx := float64(raster.Width) / float64(scaled.Width)
	fy := float64(raster.Height) / float64(scaled.Height)
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     unscale(box.Box.Sub(image.Pt(enginePadding, enginePadding)), fx, fy),
		})
	}
	return words, nil
}

func unscale(r image.Rectangle, fx, fy float64) image.Rectangle {
	return image.Rect(
		int(float64(r.Min.X)*fx), int(float64(r.Min.Y)*fy),
		int(float64(r.Max.X)*fx), int(float64(r.Max.Y)*fy),
	)
}

// Info reports the engine version and configuration.
func (t *Tesseract) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := Info{
		Engine:      "tesseract",
		Languages:   append([]string(nil), t.opts.Languages...),
		PageSegMode: int(t.opts.PageSegMode),
		Scale:       t.opts.Scale,
		Version:     gosseract.Version(),
	}
	return info
}

// Close releases the Tesseract client. Recognize fails afterwards.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// enginePadding is the width of the blank border added around rasters.
const enginePadding = 8

// encodeForEngine renders the raster as a PNG with dark ink on a light
// page, the polarity Tesseract reads best. White pixels of the raster are
// ink. The raster itself is not modified.
func encodeForEngine(r *gimaging.BinaryRaster) ([]byte, error) {
	g := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for i, v := range r.Pix {
		g.Pix[i] = gimaging.White - v
	}
	// A quiet border keeps glyphs touching the edge of the crop readable.
	page := imaging.PasteCenter(imaging.New(r.Width+2*enginePadding, r.Height+2*enginePadding, image.White), g)

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

var tesseractCodes = map[detection.Language]string{
	detection.English:    "eng",
	detection.Spanish:    "spa",
	detection.Portuguese: "por",
	detection.French:     "fra",
	detection.German:     "deu",
	detection.Italian:    "ita",
}

// LanguagesFor maps phrase-catalog languages to Tesseract language codes,
// preserving order and dropping duplicates.
func LanguagesFor(langs ...detection.Language) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, l := range langs {
		code, ok := tesseractCodes[l]
		if ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
