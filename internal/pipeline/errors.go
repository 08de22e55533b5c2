package pipeline

import (
	"errors"
	"fmt"

	"github.com/ironsheep/goalhorn/internal/capture"
)

// Stage names the pipeline step a fatal error came from.
type Stage string

const (
	StageCapture    Stage = "capture"
	StageRecognizer Stage = "recognizer"
)

// ErrRunning is returned by Run when the pipeline is already polling.
var ErrRunning = errors.New("pipeline is already running")

// FatalError stops polling. Status reports Message() to the user.
type FatalError struct {
	Stage Stage
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *FatalError) Unwrap() error { return e.Err }

// Message returns a status line suitable for showing to the user.
// Permission failures include how to fix them.
func (e *FatalError) Message() string {
	if e.Stage == StageRecognizer {
		return fmt.Sprintf("OCR engine unavailable: %v. Install Tesseract with the language data for the configured languages, then restart detection.", e.Err)
	}

	kind, _ := capture.KindOf(e.Err)
	switch kind {
	case capture.PermissionDenied:
		return "Screen capture permission denied. Grant screen recording access to goalhorn " +
			"(macOS: System Settings > Privacy & Security > Screen Recording; Linux: run inside " +
			"an X11 session or allow the portal request), then restart detection."
	case capture.MonitorNotFound:
		return fmt.Sprintf("Capture monitor not found: %v. Select a connected monitor and restart detection.", e.Err)
	case capture.RegionOutOfBounds:
		return fmt.Sprintf("Capture region no longer fits the screen: %v. Pick a new region and restart detection.", e.Err)
	default:
		return fmt.Sprintf("Screen capture stopped: %v", e.Err)
	}
}
