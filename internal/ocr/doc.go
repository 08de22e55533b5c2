// Package ocr recognizes text in preprocessed overlay rasters.
//
// The detection pipeline depends only on the Recognizer interface: a binary
// raster goes in, text comes out. Tesseract, via gosseract/v2, is the
// production implementation.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract tesseract-lang
//   - Windows: https://github.com/UB-Mannheim/tesseract/wiki
//
// Set TesseractOptions.TessdataPrefix when the traineddata files live
// outside Tesseract's default search path.
//
// # Languages
//
// LanguagesFor maps the phrase-catalog languages to Tesseract codes:
//   - English "eng", Spanish "spa", Portuguese "por"
//   - French "fra", German "deu", Italian "ita"
//
// # Input Handling
//
// Rasters arrive with ink as the White minority. The Tesseract adapter
// flips them to dark ink on a light page, adds a quiet border and upscales
// with nearest-neighbor sampling (TesseractOptions.Scale) before
// recognition. Small overlay fonts read far more reliably once glyphs are
// 20 to 30 pixels tall.
//
// # Error Handling
//
// NewTesseract returns *InitError when the engine or a language pack is
// missing; detection cannot start without it. Recognize returns
// *RecognitionError for a single failed call and the client stays usable.
//
// Recognized text is returned exactly as the engine emits it. Normalize
// trims and uppercases it before phrase matching.
package ocr
