package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/goalhorn/internal/capture"
	"github.com/ironsheep/goalhorn/internal/debounce"
	"github.com/ironsheep/goalhorn/internal/detection"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Debounce() != debounce.DefaultInterval {
		t.Errorf("Debounce: got %v, want %v", cfg.Debounce(), debounce.DefaultInterval)
	}
	if cfg.PollInterval() != 16*time.Millisecond {
		t.Errorf("PollInterval: got %v", cfg.PollInterval())
	}
	if cfg.Threshold() != nil {
		t.Error("default threshold should be automatic")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if cfg == nil || cfg.DebounceMS != 8000 {
		t.Errorf("defaults should accompany the error, got %+v", cfg)
	}
}

func TestLoad_InvalidValuesReturnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"languages": ["klingon"], "debounce_ms": 2000, "home_team": "arsenal"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if cfg == nil || cfg.HomeTeam != "" || cfg.DebounceMS != 8000 {
		t.Fatalf("nothing from the rejected file should be kept, got %+v", cfg)
	}
	if _, err := cfg.DetectionLanguages(); err != nil {
		t.Errorf("returned config should be usable: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	threshold := 140

	cfg := DefaultConfig()
	cfg.Region = capture.CaptureRegion{X: 100, Y: 40, Width: 600, Height: 80}
	cfg.Languages = []string{"en", "es"}
	cfg.League, cfg.HomeTeam, cfg.AwayTeam = "epl", "arsenal", "chelsea"
	cfg.ManualThreshold = &threshold
	cfg.Denoise = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Region != cfg.Region || got.HomeTeam != "arsenal" || !got.Denoise {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if th := got.Threshold(); th == nil || *th != 140 {
		t.Errorf("Threshold: got %v", th)
	}
	langs, err := got.DetectionLanguages()
	if err != nil || len(langs) != 2 || langs[1] != detection.Spanish {
		t.Errorf("DetectionLanguages: got (%v, %v)", langs, err)
	}
}

func TestValidate_Clamps(t *testing.T) {
	low, high := -5, 999
	tests := []struct {
		name  string
		mut   func(*Config)
		check func(*Config) bool
	}{
		{"debounce low", func(c *Config) { c.DebounceMS = 10 }, func(c *Config) bool { return c.DebounceMS == 100 }},
		{"debounce high", func(c *Config) { c.DebounceMS = 120000 }, func(c *Config) bool { return c.DebounceMS == 60000 }},
		{"threshold low", func(c *Config) { c.ManualThreshold = &low }, func(c *Config) bool { return *c.ManualThreshold == 0 }},
		{"threshold high", func(c *Config) { c.ManualThreshold = &high }, func(c *Config) bool { return *c.ManualThreshold == 255 }},
		{"poll interval", func(c *Config) { c.PollIntervalMS = 0 }, func(c *Config) bool { return c.PollIntervalMS == DefaultPollIntervalMS }},
		{"frame skip", func(c *Config) { c.FrameSkipDistance = -1 }, func(c *Config) bool { return c.FrameSkipDistance == 0 }},
		{"ocr scale", func(c *Config) { c.OCR.Scale = 0.5 }, func(c *Config) bool { return c.OCR.Scale == DefaultOCRScale }},
		{"languages", func(c *Config) { c.Languages = nil }, func(c *Config) bool { return len(c.Languages) == 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mut(c)
			if err := c.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("value not clamped: %+v", c)
			}
		})
	}
}

func TestValidate_UnknownLanguage(t *testing.T) {
	c := DefaultConfig()
	c.Languages = []string{"klingon"}
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown language")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvRegion, "10,20,300,60")
	t.Setenv(EnvLanguages, "de, it")
	t.Setenv(EnvDebounceMS, "5")
	t.Setenv(EnvThreshold, "200")
	t.Setenv(EnvDenoise, "1")
	t.Setenv(EnvClassifiers, "goal")
	t.Setenv(EnvFrameSkip, "not-a-number")

	c := DefaultConfig()
	if err := c.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Region != (capture.CaptureRegion{X: 10, Y: 20, Width: 300, Height: 60}) {
		t.Errorf("Region: got %+v", c.Region)
	}
	if len(c.Languages) != 2 || c.Languages[0] != "de" {
		t.Errorf("Languages: got %v", c.Languages)
	}
	if c.DebounceMS != 100 {
		t.Errorf("DebounceMS should be clamped, got %d", c.DebounceMS)
	}
	if c.ManualThreshold == nil || *c.ManualThreshold != 200 || !c.Denoise {
		t.Errorf("threshold/denoise not applied: %+v", c)
	}
	if len(c.Classifiers) != 1 || c.Classifiers[0] != "goal" {
		t.Errorf("Classifiers: got %v", c.Classifiers)
	}
	if c.FrameSkipDistance != DefaultFrameSkipDistance {
		t.Errorf("malformed value should be ignored, got %d", c.FrameSkipDistance)
	}

	t.Setenv(EnvThreshold, "auto")
	if err := c.ApplyEnv(); err != nil || c.ManualThreshold != nil {
		t.Errorf("auto threshold: got (%v, %v)", c.ManualThreshold, err)
	}
}

func TestApplyEnv_BadRegion(t *testing.T) {
	t.Setenv(EnvRegion, "10,20")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Error("expected error for malformed region")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GOALHORN_TEST_LEAGUE=laliga\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOALHORN_TEST_LEAGUE", "")
	os.Unsetenv("GOALHORN_TEST_LEAGUE")

	loaded, err := LoadEnvFile(filepath.Join(dir, "missing.env"), path)
	if err != nil || !loaded {
		t.Fatalf("LoadEnvFile: got (%v, %v)", loaded, err)
	}
	if got := os.Getenv("GOALHORN_TEST_LEAGUE"); got != "laliga" {
		t.Errorf("got %q, want laliga", got)
	}

	loaded, err = LoadEnvFile(filepath.Join(dir, "missing.env"))
	if err != nil || loaded {
		t.Errorf("missing file: got (%v, %v)", loaded, err)
	}
}
