package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/imaging"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Full Time 3-1\n": "FULL TIME 3-1",
		"goal for arsenal":  "GOAL FOR ARSENAL",
		"\t\n ":             "",
		"Kick  Off":         "KICK  OFF",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestRecognizerFunc(t *testing.T) {
	var r Recognizer = RecognizerFunc(func(ctx context.Context, raster *imaging.BinaryRaster) (string, error) {
		return "KICK OFF", nil
	})
	got, err := r.Recognize(context.Background(), imaging.NewBinaryRaster(1, 1))
	if err != nil || got != "KICK OFF" {
		t.Errorf("got (%q, %v)", got, err)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("no eng.traineddata")

	var ie error = &InitError{Engine: "tesseract", Err: cause}
	if !errors.Is(ie, cause) {
		t.Error("InitError should unwrap to its cause")
	}
	if ie.Error() != "tesseract initialization failed: no eng.traineddata" {
		t.Errorf("InitError message: %q", ie.Error())
	}

	var re error = &RecognitionError{Err: cause}
	var target *RecognitionError
	if !errors.As(re, &target) || !errors.Is(re, cause) {
		t.Error("RecognitionError should support errors.As and errors.Is")
	}
}

func TestLanguagesFor(t *testing.T) {
	got := LanguagesFor(detection.Spanish, detection.English, detection.Spanish, detection.Language(42))
	if len(got) != 2 || got[0] != "spa" || got[1] != "eng" {
		t.Errorf("got %v, want [spa eng]", got)
	}
	for _, lang := range detection.Languages() {
		if len(LanguagesFor(lang)) != 1 {
			t.Errorf("%s has no Tesseract code", lang)
		}
	}
}

func TestEncodeForEngine_FlipsPolarity(t *testing.T) {
	r := imaging.NewBinaryRaster(4, 4)
	r.Set(1, 1, imaging.White)

	data, err := encodeForEngine(r)
	if err != nil {
		t.Fatalf("encodeForEngine failed: %v", err)
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatalf("page size: got %v, want 20x20 with border", img.Bounds())
	}
	if v, _, _, _ := img.At(9, 9).RGBA(); v != 0 {
		t.Errorf("ink pixel: got %d, want black", v>>8)
	}
	if v, _, _, _ := img.At(10, 10).RGBA(); v>>8 != 255 {
		t.Errorf("background pixel: got %d, want white", v>>8)
	}
	if v, _, _, _ := img.At(0, 0).RGBA(); v>>8 != 255 {
		t.Errorf("border pixel: got %d, want white", v>>8)
	}
	if r.At(1, 1) != imaging.White {
		t.Error("encodeForEngine modified the raster")
	}
}
