// Package capture supplies the frames the detection pipeline reads.
//
// A FrameSource returns one RGBA frame per call for a CaptureRegion on a
// monitor. Two sources are provided:
//
//   - ScreenSource grabs the live screen with github.com/vova616/screenshot.
//     Only the primary monitor (index 0) is available.
//   - FileSource replays screenshots from disk, cycling through them, for
//     offline tuning and tests.
//
// Failures are reported as *CaptureError so callers can tell a revoked
// screen-recording permission from a disconnected monitor or a region that
// no longer fits the screen.
package capture
