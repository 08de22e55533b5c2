// Package pipeline drives detection: it captures the configured screen
// region, preprocesses the frame, recognizes text, classifies it and emits
// debounced events.
//
// A Pipeline is driven by a single goroutine, either Run's loop or a caller
// invoking Tick directly. Status, Events and Subscribe may be used from any
// goroutine.
package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"github.com/ironsheep/goalhorn/internal/capture"
	"github.com/ironsheep/goalhorn/internal/debounce"
	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/imaging"
	"github.com/ironsheep/goalhorn/internal/ocr"
)

// Defaults applied by New for zero option values.
const (
	DefaultPollInterval = 16 * time.Millisecond
	DefaultEventBuffer  = 16
)

// State is the polling state of a pipeline.
type State int

const (
	StateIdle State = iota
	StatePolling
)

func (s State) String() string {
	if s == StatePolling {
		return "polling"
	}
	return "idle"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Options configures a Pipeline. Source, Recognizer and Region are
// required; everything else has a default.
type Options struct {
	Source     capture.FrameSource
	Recognizer ocr.Recognizer
	Region     capture.CaptureRegion
	Monitor    int

	// Preprocessor defaults to Otsu thresholding without denoising.
	Preprocessor *imaging.Preprocessor
	// Classifiers defaults to every language in the default catalog.
	Classifiers *detection.ClassifierSet
	// Debouncer defaults to debounce.DefaultInterval.
	Debouncer *debounce.Debouncer

	// Home and Away, when set, attribute goals to configured teams.
	Home *detection.TeamProfile
	Away *detection.TeamProfile

	PollInterval time.Duration
	// FrameSkipDistance is the largest difference-hash distance at which an
	// unchanged frame is skipped after a NoMatch tick. Zero disables skipping.
	FrameSkipDistance int
	EventBuffer       int

	Logger *slog.Logger
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Status is a snapshot of the pipeline for display.
type Status struct {
	State     State                 `json:"state"`
	Message   string                `json:"message,omitempty"`
	Region    capture.CaptureRegion `json:"region"`
	Monitor   int                   `json:"monitor"`
	Stats     Stats                 `json:"stats"`
	LastEvent *Event                `json:"last_event,omitempty"`
}

// Pipeline is the detection orchestrator.
type Pipeline struct {
	src      capture.FrameSource
	rec      ocr.Recognizer
	pre      *imaging.Preprocessor
	cls      *detection.ClassifierSet
	debounce *debounce.Debouncer
	region   capture.CaptureRegion
	monitor  int
	home     *detection.TeamMatcher
	away     *detection.TeamMatcher
	interval time.Duration
	skipDist int
	logger   *slog.Logger
	now      func() time.Time

	events chan Event

	// Owned by the goroutine calling Tick.
	tickMu      sync.Mutex
	lastHash    *goimagehash.ImageHash
	lastMatched bool

	mu          sync.Mutex
	state       State
	message     string
	stats       Stats
	latency     latencies
	lastEvent   *Event
	subscribers []func(Event)
	stop        chan struct{}
	done        chan struct{}
}

// New validates the region against the monitor bounds and returns an idle
// pipeline. Region problems are reported here, never mid-stream.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil {
		return nil, errors.New("pipeline: frame source is required")
	}
	if opts.Recognizer == nil {
		return nil, errors.New("pipeline: recognizer is required")
	}

	bounds, err := opts.Source.Bounds(opts.Monitor)
	if err != nil {
		return nil, err
	}
	if err := opts.Region.Validate(bounds); err != nil {
		return nil, err
	}

	p := &Pipeline{
		src:      opts.Source,
		rec:      opts.Recognizer,
		pre:      opts.Preprocessor,
		cls:      opts.Classifiers,
		debounce: opts.Debouncer,
		region:   opts.Region,
		monitor:  opts.Monitor,
		interval: opts.PollInterval,
		skipDist: opts.FrameSkipDistance,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if p.pre == nil {
		p.pre = imaging.NewPreprocessor(imaging.Options{})
	}
	if p.cls == nil {
		p.cls = detection.NewClassifierSet(detection.DefaultCatalog())
	}
	if p.debounce == nil {
		p.debounce = debounce.New(debounce.DefaultInterval)
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.skipDist < 0 {
		p.skipDist = 0
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.Home != nil {
		p.home = detection.NewTeamMatcher(*opts.Home)
	}
	if opts.Away != nil {
		p.away = detection.NewTeamMatcher(*opts.Away)
	}

	buf := opts.EventBuffer
	if buf <= 0 {
		buf = DefaultEventBuffer
	}
	p.events = make(chan Event, buf)
	return p, nil
}

// Events returns the channel of accepted events. When nobody drains it,
// new events are dropped rather than blocking the tick.
func (p *Pipeline) Events() <-chan Event { return p.events }

// Subscribe registers fn to be called with every accepted event, on the
// goroutine running the tick.
func (p *Pipeline) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Status returns a snapshot of the pipeline.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		State:   p.state,
		Message: p.message,
		Region:  p.region,
		Monitor: p.monitor,
		Stats:   p.stats,
	}
	st.Stats.P95Tick = p.latency.p95()
	if p.lastEvent != nil {
		ev := *p.lastEvent
		st.LastEvent = &ev
	}
	return st
}

// Run polls until ctx is cancelled, Stop is called or a fatal error occurs.
// Ticks start every PollInterval; when a tick overruns, the next one starts
// immediately without trying to catch up.
//
// Run returns nil after Stop, ctx.Err() after cancellation and a
// *FatalError when capture or the OCR engine fails.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StatePolling {
		p.mu.Unlock()
		return ErrRunning
	}
	p.state = StatePolling
	p.message = ""
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done
	p.mu.Unlock()

	p.logger.Info("detection started",
		"region", p.region.String(),
		"monitor", p.monitor,
		"interval", p.interval,
		"debounce", p.debounce.Interval())

	defer func() {
		p.mu.Lock()
		p.state = StateIdle
		p.stop, p.done = nil, nil
		p.mu.Unlock()
		close(done)
		p.logger.Info("detection stopped")
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	next := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if _, err := p.Tick(ctx); err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				return fatal
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		next = next.Add(p.interval)
		wait := time.Until(next)
		if wait <= 0 {
			next = time.Now()
			continue
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-timer.C:
		}
	}
}

// Stop ends a running Run loop and waits for the in-flight tick to finish.
// It is a no-op when the pipeline is idle.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	if stop != nil {
		select {
		case <-stop:
		default:
			close(stop)
		}
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Tick runs one capture-to-event cycle. The returned error is a
// *FatalError for capture or engine failures, or ctx.Err() when ctx was
// cancelled. Per-call recognition failures are logged and count as
// NoMatch.
func (p *Pipeline) Tick(ctx context.Context) (TickResult, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	start := p.now()
	res := TickResult{Result: detection.NoMatch()}

	frame, err := p.src.Capture(ctx, p.region, p.monitor)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, p.fail(&FatalError{Stage: StageCapture, Err: err})
	}

	if p.unchanged(frame) {
		res.Skipped = true
		res.Duration = p.now().Sub(start)
		p.record(res)
		return res, nil
	}

	ctxDetect := detection.DetectionContext{Timestamp: start}
	if p.home != nil {
		ctxDetect.HomeTeam = p.home.Profile().DisplayName
	}
	if p.away != nil {
		ctxDetect.AwayTeam = p.away.Profile().DisplayName
	}

	for _, strategy := range p.pre.Strategies() {
		raster := strategy.Apply(frame)
		text, err := p.rec.Recognize(ctx, raster)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			var initErr *ocr.InitError
			if errors.As(err, &initErr) {
				return res, p.fail(&FatalError{Stage: StageRecognizer, Err: err})
			}
			p.logger.Warn("recognition failed", "strategy", strategy.Name, "error", err)
			p.countRecognizeError()
			continue
		}

		text = ocr.Normalize(text)
		if text == "" {
			continue
		}
		ctxDetect.Text = text
		result, name := p.cls.Detect(ctxDetect)
		if result.IsMatch() {
			res.Result, res.Classifier, res.Strategy, res.Text = result, name, strategy.Name, text
			break
		}
		p.logger.Debug("no match", "strategy", strategy.Name, "text", text)
	}

	p.lastMatched = res.Result.IsMatch()
	if !res.Result.IsMatch() {
		res.Duration = p.now().Sub(start)
		p.record(res)
		return res, nil
	}

	team, side := p.attribute(res.Result)
	if res.Result.Kind == detection.KindGoal {
		res.Result.Team = team
	}

	if !p.debounce.ShouldTrigger() {
		res.Suppressed = true
		res.Duration = p.now().Sub(start)
		p.logger.Debug("detection suppressed",
			"result", res.Result.String(),
			"remaining", p.debounce.Remaining())
		p.record(res)
		return res, nil
	}

	res.Duration = p.now().Sub(start)
	ev := Event{
		ID:         uuid.New(),
		Result:     res.Result,
		Classifier: res.Classifier,
		Strategy:   res.Strategy,
		Text:       res.Text,
		Team:       team,
		Side:       side,
		DetectedAt: start,
		Latency:    res.Duration,
	}
	res.Event = &ev
	p.record(res)
	p.emit(ev)

	p.logger.Info("event detected",
		"id", ev.ID.String(),
		"result", ev.Result.String(),
		"strategy", ev.Strategy,
		"team", ev.Team,
		"latency", ev.Latency)
	return res, nil
}

// unchanged reports whether frame looks like the previous one and the
// previous tick found nothing. The reference hash advances only on frames
// that are processed.
func (p *Pipeline) unchanged(frame image.Image) bool {
	if p.skipDist == 0 {
		return false
	}
	hash, err := goimagehash.DifferenceHash(frame)
	if err != nil {
		p.lastHash = nil
		return false
	}
	if p.lastHash != nil && !p.lastMatched {
		if dist, err := p.lastHash.Distance(hash); err == nil && dist <= p.skipDist {
			p.logger.Debug("skipping unchanged frame", "distance", dist)
			return true
		}
	}
	p.lastHash = hash
	return false
}

// attribute resolves the team a goal belongs to. Configured profiles win
// over the raw OCR fragment; unmatched goals keep the fragment.
func (p *Pipeline) attribute(r detection.Result) (string, Side) {
	if r.Kind != detection.KindGoal || r.Team == "" {
		return r.Team, SideNone
	}
	if p.home != nil && p.home.Matches(r.Team) {
		return p.home.Profile().DisplayName, SideHome
	}
	if p.away != nil && p.away.Matches(r.Team) {
		return p.away.Profile().DisplayName, SideAway
	}
	switch strings.ToUpper(r.Team) {
	case "HOME":
		return r.Team, SideHome
	case "AWAY":
		return r.Team, SideAway
	}
	return r.Team, SideNone
}

func (p *Pipeline) emit(ev Event) {
	p.mu.Lock()
	subs := append([]func(Event)(nil), p.subscribers...)
	p.mu.Unlock()

	select {
	case p.events <- ev:
	default:
		p.mu.Lock()
		p.stats.Dropped++
		p.mu.Unlock()
		p.logger.Warn("event channel full, dropping event", "id", ev.ID.String())
	}
	for _, fn := range subs {
		fn(ev)
	}
}

func (p *Pipeline) record(res TickResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &p.stats
	s.Ticks++
	s.LastTick = res.Duration
	s.TotalTickDuration += res.Duration
	s.AverageTick = s.TotalTickDuration / time.Duration(s.Ticks)
	p.latency.add(res.Duration)

	switch {
	case res.Skipped:
		s.Skipped++
	case res.Result.IsMatch():
		s.Matches++
		if res.Strategy != imaging.StrategyPrimary {
			s.FallbackMatches++
		}
		if res.Suppressed {
			s.Suppressed++
		}
	}
	if res.Event != nil {
		s.Events++
		s.LastEventAt = res.Event.DetectedAt
		ev := *res.Event
		p.lastEvent = &ev
	}
}

func (p *Pipeline) countRecognizeError() {
	p.mu.Lock()
	p.stats.RecognizeErrors++
	p.mu.Unlock()
}

func (p *Pipeline) fail(fatal *FatalError) error {
	p.mu.Lock()
	p.message = fatal.Message()
	p.mu.Unlock()
	p.logger.Error("detection failed", "stage", string(fatal.Stage), "error", fatal.Err)
	return fatal
}
