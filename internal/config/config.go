// Package config holds goalhorn's runtime configuration. Values come from a
// JSON file, then GOALHORN_* environment variables (optionally loaded from a
// .env file), then command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/goalhorn/internal/capture"
	"github.com/ironsheep/goalhorn/internal/debounce"
	"github.com/ironsheep/goalhorn/internal/detection"
)

// OCRConfig configures the Tesseract recognizer.
type OCRConfig struct {
	// Languages are Tesseract codes. Empty means derive them from the
	// detection languages.
	Languages      []string `json:"languages,omitempty"`
	TessdataPrefix string   `json:"tessdata_prefix,omitempty"`
	PageSegMode    int      `json:"page_seg_mode"`
	Scale          float64  `json:"scale"`
	Whitelist      string   `json:"whitelist,omitempty"`
}

// Config holds runtime configuration for capture, detection and output.
type Config struct {
	Region  capture.CaptureRegion `json:"region"`
	Monitor int                   `json:"monitor"`

	// Languages selects the phrase sets to match, by name or ISO code.
	Languages []string `json:"languages"`

	League   string `json:"league,omitempty"`
	HomeTeam string `json:"home_team,omitempty"`
	AwayTeam string `json:"away_team,omitempty"`
	TeamDB   string `json:"team_db,omitempty"`

	DebounceMS      int  `json:"debounce_ms"`
	ManualThreshold *int `json:"manual_threshold,omitempty"`
	Denoise         bool `json:"denoise"`

	OCR OCRConfig `json:"ocr"`

	PollIntervalMS    int      `json:"poll_interval_ms"`
	FrameSkipDistance int      `json:"frame_skip_distance"`
	Classifiers       []string `json:"classifiers"`
	FeedAddr          string   `json:"feed_addr,omitempty"`
}

// Defaults.
const (
	DefaultPollIntervalMS    = 16
	DefaultFrameSkipDistance = 2
	DefaultPageSegMode       = 6
	DefaultOCRScale          = 2.0
	maxFrameSkipDistance     = 64
)

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Languages:         []string{detection.English.String()},
		DebounceMS:        int(debounce.DefaultInterval / time.Millisecond),
		OCR:               OCRConfig{PageSegMode: DefaultPageSegMode, Scale: DefaultOCRScale},
		PollIntervalMS:    DefaultPollIntervalMS,
		FrameSkipDistance: DefaultFrameSkipDistance,
		Classifiers:       []string{detection.NameGoal, detection.NameKickoff, detection.NameMatchEnd},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "goalhorn.json"
	}
	return filepath.Join(dir, "goalhorn", "config.json")
}

// Validate clamps values to safe ranges. It returns an error only for
// values that cannot be repaired, such as an unknown language.
func (c *Config) Validate() error {
	c.DebounceMS = int(debounce.Clamp(time.Duration(c.DebounceMS)*time.Millisecond) / time.Millisecond)

	if c.ManualThreshold != nil {
		t := *c.ManualThreshold
		if t < 0 {
			t = 0
		}
		if t > 255 {
			t = 255
		}
		c.ManualThreshold = &t
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = DefaultPollIntervalMS
	}
	if c.FrameSkipDistance < 0 {
		c.FrameSkipDistance = 0
	}
	if c.FrameSkipDistance > maxFrameSkipDistance {
		c.FrameSkipDistance = maxFrameSkipDistance
	}
	if c.OCR.Scale < 1 {
		c.OCR.Scale = DefaultOCRScale
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		c.OCR.PageSegMode = DefaultPageSegMode
	}
	if c.Monitor < 0 {
		c.Monitor = 0
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{detection.English.String()}
	}
	if c.Classifiers == nil {
		c.Classifiers = DefaultConfig().Classifiers
	}

	if _, err := c.DetectionLanguages(); err != nil {
		return err
	}
	return nil
}

// DetectionLanguages parses Languages.
func (c *Config) DetectionLanguages() ([]detection.Language, error) {
	langs := make([]detection.Language, 0, len(c.Languages))
	for _, name := range c.Languages {
		lang, err := detection.ParseLanguage(name)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

// Threshold returns the manual threshold as a uint8 pointer, nil for Otsu.
func (c *Config) Threshold() *uint8 {
	if c.ManualThreshold == nil {
		return nil
	}
	t := uint8(*c.ManualThreshold)
	return &t
}

// Debounce returns the debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// PollInterval returns the polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Load reads configuration from the JSON file at path. A missing file
// yields DefaultConfig(). When the file cannot be read, decoded or
// validated, DefaultConfig() is returned along with the error, so callers
// can fall back to the defaults and nothing from the bad file leaks in.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON, creating the
// parent directory when needed.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
