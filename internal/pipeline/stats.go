package pipeline

import (
	"sort"
	"time"
)

// latencyWindow is how many recent tick durations feed the p95 estimate.
const latencyWindow = 128

// Stats are running counters for a pipeline.
type Stats struct {
	Ticks             uint64        `json:"ticks"`
	Skipped           uint64        `json:"skipped"`
	Matches           uint64        `json:"matches"`
	Events            uint64        `json:"events"`
	Suppressed        uint64        `json:"suppressed"`
	Dropped           uint64        `json:"dropped"`
	RecognizeErrors   uint64        `json:"recognize_errors"`
	FallbackMatches   uint64        `json:"fallback_matches"`
	LastTick          time.Duration `json:"last_tick_ns"`
	AverageTick       time.Duration `json:"average_tick_ns"`
	P95Tick           time.Duration `json:"p95_tick_ns"`
	LastEventAt       time.Time     `json:"last_event_at,omitempty"`
	TotalTickDuration time.Duration `json:"-"`
}

// latencies is a fixed-size ring of recent tick durations.
type latencies struct {
	buf  [latencyWindow]time.Duration
	n    int
	next int
}

func (l *latencies) add(d time.Duration) {
	l.buf[l.next] = d
	l.next = (l.next + 1) % latencyWindow
	if l.n < latencyWindow {
		l.n++
	}
}

// p95 returns the 95th percentile of the recorded durations, zero when
// nothing was recorded.
func (l *latencies) p95() time.Duration {
	if l.n == 0 {
		return 0
	}
	sorted := make([]time.Duration, l.n)
	copy(sorted, l.buf[:l.n])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (l.n*95+99)/100 - 1
	return sorted[idx]
}
