package capture

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies capture failures.
type ErrorKind int

const (
	// Unavailable covers every failure that is not one of the kinds below,
	// such as a missing display server or an unreadable replay file.
	Unavailable ErrorKind = iota
	PermissionDenied
	MonitorNotFound
	RegionOutOfBounds
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case MonitorNotFound:
		return "monitor not found"
	case RegionOutOfBounds:
		return "region out of bounds"
	default:
		return "capture unavailable"
	}
}

// CaptureError is returned by frame sources and region validation.
type CaptureError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	s := e.Kind.String()
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *CaptureError) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, cause error, format string, args ...any) *CaptureError {
	return &CaptureError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of the first *CaptureError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return Unavailable, false
}

// classify wraps an error from the screen library. The library reports
// failures as plain errors, so permission problems are recognized by text.
func classify(err error, op string) *CaptureError {
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"permission", "denied", "not authorized", "authorization"} {
		if strings.Contains(msg, hint) {
			return newError(PermissionDenied, err, "%s", op)
		}
	}
	return newError(Unavailable, err, "%s", op)
}
