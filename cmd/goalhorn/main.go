package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/goalhorn/internal/capture"
	"github.com/ironsheep/goalhorn/internal/config"
	"github.com/ironsheep/goalhorn/internal/debounce"
	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/feed"
	"github.com/ironsheep/goalhorn/internal/imaging"
	"github.com/ironsheep/goalhorn/internal/ocr"
	"github.com/ironsheep/goalhorn/internal/pipeline"
	"github.com/ironsheep/goalhorn/internal/server"
	"github.com/ironsheep/goalhorn/internal/teams"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `goalhorn - detect goals, kickoffs and full time from football overlays

Usage: goalhorn <command> [options]

Commands:
  serve     Run the MCP server on stdin/stdout (default)
  watch     Poll the capture region and report events
  detect    Run a single detection pass
  teams     Manage the team database (import, list)
  version   Print version information
  help      Print this help message

Common options:
  --config PATH    Config file (default: user config dir)
  --env PATH       .env file to load before reading GOALHORN_* variables

watch options:
  --replay FILE    Replay screenshots instead of capturing the screen (repeatable)
  --feed ADDR      Serve the websocket event feed on ADDR

detect options:
  --image FILE     Screenshot to run detection on
  --text TEXT      Classify TEXT without OCR

Environment variables:
  GOALHORN_LOG_LEVEL=debug    Enable debug logging
  GOALHORN_REGION=X,Y,W,H     Capture region
  GOALHORN_LANGUAGES=en,es    Phrase languages
`

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "version", "--version", "-v":
		fmt.Printf("goalhorn %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Tesseract: %s\n", gosseract.Version())
		return
	case "help", "--help", "-h":
		fmt.Print(usage)
		return
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "watch":
		err = runWatch(args)
	case "detect":
		err = runDetect(args)
	case "teams":
		err = runTeams(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		var fatal *pipeline.FatalError
		if errors.As(err, &fatal) {
			fmt.Fprintln(os.Stderr, fatal.Message())
		} else {
			fmt.Fprintf(os.Stderr, "goalhorn: %v\n", err)
		}
		os.Exit(1)
	}
}

// newLogger writes to stderr; stdout is reserved for MCP and event output.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(config.EnvLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig applies the .env file, the config file and then the
// environment, in that order.
func loadConfig(configPath, envPath string, logger *slog.Logger) (*config.Config, error) {
	var envFiles []string
	if envPath != "" {
		envFiles = append(envFiles, envPath)
	}
	if loaded, err := config.LoadEnvFile(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	} else if loaded {
		logger.Debug("loaded env file")
	}

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// Load hands back the defaults alongside the error.
		logger.Warn("config file ignored, using defaults", "path", configPath, "error", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds the components built from a Config.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	pre         *imaging.Preprocessor
	classifiers *detection.ClassifierSet
	store       *teams.Store
	home, away  *detection.TeamProfile
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logger,
		pre:    imaging.NewPreprocessor(imaging.Options{Threshold: cfg.Threshold(), Denoise: cfg.Denoise}),
	}

	langs, err := cfg.DetectionLanguages()
	if err != nil {
		return nil, err
	}
	a.classifiers = detection.NewClassifierSet(detection.DefaultCatalog(), langs...)
	if unknown := a.classifiers.SetEnabled(cfg.Classifiers); len(unknown) > 0 {
		logger.Warn("unknown classifiers ignored", "names", unknown)
	}

	if cfg.TeamDB != "" {
		a.store, err = teams.Open(cfg.TeamDB)
		if err != nil {
			return nil, err
		}
		a.home, a.away, err = pipeline.ResolveTeams(a.store, cfg.League, cfg.HomeTeam, cfg.AwayTeam)
		if err != nil {
			a.store.Close()
			return nil, err
		}
		if cfg.HomeTeam != "" && a.home == nil {
			logger.Warn("home team not in database", "league", cfg.League, "key", cfg.HomeTeam)
		}
		if cfg.AwayTeam != "" && a.away == nil {
			logger.Warn("away team not in database", "league", cfg.League, "key", cfg.AwayTeam)
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// teamName is the name handed to the classifiers for one side.
func teamName(profile *detection.TeamProfile, configured string) string {
	if profile != nil {
		return profile.DisplayName
	}
	return configured
}

func (a *app) newRecognizer() (*ocr.Tesseract, error) {
	langs := a.cfg.OCR.Languages
	if len(langs) == 0 {
		detLangs, err := a.cfg.DetectionLanguages()
		if err != nil {
			return nil, err
		}
		langs = ocr.LanguagesFor(detLangs...)
	}
	return ocr.NewTesseract(ocr.TesseractOptions{
		Languages:      langs,
		TessdataPrefix: a.cfg.OCR.TessdataPrefix,
		PageSegMode:    gosseract.PageSegMode(a.cfg.OCR.PageSegMode),
		Scale:          a.cfg.OCR.Scale,
		Whitelist:      a.cfg.OCR.Whitelist,
	})
}

func (a *app) newPipeline(src capture.FrameSource, rec ocr.Recognizer) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Options{
		Source:            src,
		Recognizer:        rec,
		Region:            a.cfg.Region,
		Monitor:           a.cfg.Monitor,
		Preprocessor:      a.pre,
		Classifiers:       a.classifiers,
		Debouncer:         debounce.New(a.cfg.Debounce()),
		Home:              a.home,
		Away:              a.away,
		PollInterval:      a.cfg.PollInterval(),
		FrameSkipDistance: a.cfg.FrameSkipDistance,
		Logger:            a.logger,
	})
}

func commonFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	envPath := fs.String("env", "", ".env file path")
	return fs, configPath, envPath
}

func setup(configPath, envPath string) (*app, error) {
	logger := newLogger()
	cfg, err := loadConfig(configPath, envPath, logger)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func runServe(args []string) error {
	fs, configPath, envPath := commonFlags("serve")
	fs.Parse(args)

	a, err := setup(*configPath, *envPath)
	if err != nil {
		return err
	}
	defer a.Close()
	a.logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	opts := server.Options{
		Preprocessor: a.pre,
		Classifiers:  a.classifiers,
		Logger:       a.logger,
		HomeTeam:     teamName(a.home, a.cfg.HomeTeam),
		AwayTeam:     teamName(a.away, a.cfg.AwayTeam),
	}
	if a.store != nil {
		opts.Teams = a.store
	}
	rec, err := a.newRecognizer()
	if err != nil {
		// Text classification and preprocessing still work without OCR.
		a.logger.Warn("OCR engine unavailable", "error", err)
	} else {
		defer rec.Close()
		opts.Recognizer = rec
	}

	return server.New(opts).Run()
}

func runWatch(args []string) error {
	fs, configPath, envPath := commonFlags("watch")
	var replay stringList
	fs.Var(&replay, "replay", "screenshot to replay (repeatable)")
	feedAddr := fs.String("feed", "", "websocket feed address")
	fs.Parse(args)

	a, err := setup(*configPath, *envPath)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.newRecognizer()
	if err != nil {
		return &pipeline.FatalError{Stage: pipeline.StageRecognizer, Err: err}
	}
	defer rec.Close()

	var src capture.FrameSource = capture.NewScreenSource()
	if len(replay) > 0 {
		src = capture.NewFileSource(nil, replay...)
	}
	p, err := a.newPipeline(src, rec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.Subscribe(func(ev pipeline.Event) {
		fmt.Printf("%s %s %s\n", ev.DetectedAt.Format("15:04:05.000"), ev.Result, ev.Team)
	})

	addr := *feedAddr
	if addr == "" {
		addr = a.cfg.FeedAddr
	}
	feedErr := make(chan error, 1)
	if addr != "" {
		hub := feed.NewHub(0, a.logger)
		p.Subscribe(hub.Publish)
		go func() { feedErr <- hub.ListenAndServe(ctx, addr, p.Status) }()
	}

	a.logger.Info("watching", "region", a.cfg.Region.String(), "monitor", a.cfg.Monitor)
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	select {
	case err = <-runErr:
	case err = <-feedErr:
		p.Stop()
		<-runErr
		if err != nil {
			return fmt.Errorf("event feed: %w", err)
		}
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	st := p.Status().Stats
	a.logger.Info("stopped", "ticks", st.Ticks, "events", st.Events, "suppressed", st.Suppressed, "p95", st.P95Tick)
	return err
}

func runDetect(args []string) error {
	fs, configPath, envPath := commonFlags("detect")
	imagePath := fs.String("image", "", "screenshot to analyze")
	text := fs.String("text", "", "text to classify without OCR")
	fs.Parse(args)

	a, err := setup(*configPath, *envPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if *text != "" {
		normalized := ocr.Normalize(*text)
		result, name := a.classifiers.Detect(detection.DetectionContext{
			Text:     normalized,
			HomeTeam: teamName(a.home, a.cfg.HomeTeam),
			AwayTeam: teamName(a.away, a.cfg.AwayTeam),
		})
		fmt.Printf("%s (classifier=%q)\n", result, name)
		return nil
	}

	rec, err := a.newRecognizer()
	if err != nil {
		return &pipeline.FatalError{Stage: pipeline.StageRecognizer, Err: err}
	}
	defer rec.Close()

	var src capture.FrameSource = capture.NewScreenSource()
	if *imagePath != "" {
		src = capture.NewFileSource(nil, *imagePath)
	}
	p, err := a.newPipeline(src, rec)
	if err != nil {
		return err
	}

	res, err := p.Tick(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s (strategy=%s, text=%q, took %s)\n", res.Result, res.Strategy, res.Text, res.Duration)
	return nil
}

func runTeams(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: goalhorn teams <import FILE | list> [options]")
	}
	sub, args := args[0], args[1:]

	fs, configPath, envPath := commonFlags("teams " + sub)
	league := fs.String("league", "", "league to list (default: configured league)")
	fs.Parse(args)

	a, err := setup(*configPath, *envPath)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.store == nil {
		return fmt.Errorf("no team database configured (set team_db or %s)", config.EnvTeamDB)
	}

	switch sub {
	case "import":
		if fs.NArg() != 1 {
			return errors.New("usage: goalhorn teams import FILE")
		}
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := a.store.SeedJSON(f)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d teams into %s\n", n, a.store.Path())
		return nil
	case "list":
		l := *league
		if l == "" {
			l = a.cfg.League
		}
		profiles, err := a.store.List(l)
		if err != nil {
			return err
		}
		for _, p := range profiles {
			fmt.Printf("%s/%s\t%s\t%s\n", p.League, p.Key, p.DisplayName, strings.Join(p.Variations, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown teams command %q", sub)
	}
}
