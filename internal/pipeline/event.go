package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/goalhorn/internal/detection"
)

// Side tells which configured team a goal was attributed to.
type Side string

const (
	SideNone Side = ""
	SideHome Side = "home"
	SideAway Side = "away"
)

// Event is an accepted, debounced detection.
type Event struct {
	ID         uuid.UUID        `json:"id"`
	Result     detection.Result `json:"result"`
	Classifier string           `json:"classifier"`
	Strategy   string           `json:"strategy"`
	Text       string           `json:"text"`
	Team       string           `json:"team,omitempty"`
	Side       Side             `json:"side,omitempty"`
	DetectedAt time.Time        `json:"detected_at"`
	Latency    time.Duration    `json:"latency_ns"`
}

// TickResult describes what one tick did. Event is set only when a
// detection passed the debouncer.
type TickResult struct {
	Skipped    bool             `json:"skipped"`
	Result     detection.Result `json:"result"`
	Classifier string           `json:"classifier,omitempty"`
	Strategy   string           `json:"strategy,omitempty"`
	Text       string           `json:"text,omitempty"`
	Suppressed bool             `json:"suppressed"`
	Event      *Event           `json:"event,omitempty"`
	Duration   time.Duration    `json:"duration_ns"`
}
