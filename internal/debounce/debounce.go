// Package debounce suppresses repeated triggers for one real-world event.
//
// An overlay such as "GOAL FOR ARSENAL" stays on screen for several
// seconds and is recognized on every frame while visible. A Debouncer lets
// the first detection through and rejects the rest until a minimum interval
// has passed since the last accepted trigger.
package debounce

import "time"

// Interval bounds.
const (
	DefaultInterval = 8000 * time.Millisecond
	MinInterval     = 100 * time.Millisecond
	MaxInterval     = 60000 * time.Millisecond
)

// Clamp limits d to [MinInterval, MaxInterval].
func Clamp(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

// Debouncer is a leaky bucket of one: no burst allowance, and the interval
// is always measured from the last accepted trigger, never from the last
// attempt.
//
// A Debouncer is not safe for concurrent use; the pipeline driver goroutine
// owns it.
type Debouncer struct {
	interval time.Duration
	now      func() time.Time
	last     time.Time
	primed   bool
}

// New returns a Debouncer with the given interval. The interval is used as
// given; callers clamp configuration values with Clamp.
func New(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (d *Debouncer) WithClock(now func() time.Time) *Debouncer {
	d.now = now
	return d
}

// Interval returns the minimum time between accepted triggers.
func (d *Debouncer) Interval() time.Duration { return d.interval }

// ShouldTrigger reports whether a candidate trigger is accepted. The first
// call always is; later calls are accepted once the interval has elapsed
// since the last accepted one. Acceptance records the current time.
func (d *Debouncer) ShouldTrigger() bool {
	now := d.now()
	if d.primed && now.Sub(d.last) < d.interval {
		return false
	}
	d.last = now
	d.primed = true
	return true
}

// Remaining returns how long until a trigger would be accepted, zero when
// one would be accepted now.
func (d *Debouncer) Remaining() time.Duration {
	if !d.primed {
		return 0
	}
	if left := d.interval - d.now().Sub(d.last); left > 0 {
		return left
	}
	return 0
}

// Reset forgets the last accepted trigger.
func (d *Debouncer) Reset() {
	d.primed = false
	d.last = time.Time{}
}
