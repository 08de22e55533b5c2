package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/goalhorn/internal/capture"
)

// Environment variables read by ApplyEnv.
const (
	EnvRegion      = "GOALHORN_REGION"
	EnvMonitor     = "GOALHORN_MONITOR"
	EnvLanguages   = "GOALHORN_LANGUAGES"
	EnvLeague      = "GOALHORN_LEAGUE"
	EnvHomeTeam    = "GOALHORN_HOME_TEAM"
	EnvAwayTeam    = "GOALHORN_AWAY_TEAM"
	EnvTeamDB      = "GOALHORN_TEAM_DB"
	EnvDebounceMS  = "GOALHORN_DEBOUNCE_MS"
	EnvThreshold   = "GOALHORN_THRESHOLD"
	EnvDenoise     = "GOALHORN_DENOISE"
	EnvOCRLangs    = "GOALHORN_OCR_LANGUAGES"
	EnvTessdata    = "GOALHORN_TESSDATA_PREFIX"
	EnvOCRScale    = "GOALHORN_OCR_SCALE"
	EnvPollMS      = "GOALHORN_POLL_INTERVAL_MS"
	EnvFrameSkip   = "GOALHORN_FRAME_SKIP_DISTANCE"
	EnvClassifiers = "GOALHORN_CLASSIFIERS"
	EnvFeedAddr    = "GOALHORN_FEED_ADDR"
	EnvLogLevel    = "GOALHORN_LOG_LEVEL"
)

// LoadEnvFile loads KEY=VALUE pairs from the given .env files (".env" when
// none are named) into the process environment. Variables already set are
// left alone and missing files are ignored. It reports whether any file
// was loaded.
func LoadEnvFile(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	loaded := false
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}

// ApplyEnv overrides fields from GOALHORN_* environment variables and
// re-validates. Malformed numeric values are ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvRegion); v != "" {
		r, err := capture.ParseRegion(v)
		if err != nil {
			return err
		}
		c.Region = r
	}
	c.Monitor = getEnvInt(EnvMonitor, c.Monitor)
	c.Languages = getEnvList(EnvLanguages, c.Languages)
	c.League = getEnv(EnvLeague, c.League)
	c.HomeTeam = getEnv(EnvHomeTeam, c.HomeTeam)
	c.AwayTeam = getEnv(EnvAwayTeam, c.AwayTeam)
	c.TeamDB = getEnv(EnvTeamDB, c.TeamDB)
	c.DebounceMS = getEnvInt(EnvDebounceMS, c.DebounceMS)
	if v := os.Getenv(EnvThreshold); v != "" {
		if strings.EqualFold(v, "auto") || strings.EqualFold(v, "otsu") {
			c.ManualThreshold = nil
		} else if t, err := strconv.Atoi(v); err == nil {
			c.ManualThreshold = &t
		}
	}
	c.Denoise = getEnvBool(EnvDenoise, c.Denoise)
	c.OCR.Languages = getEnvList(EnvOCRLangs, c.OCR.Languages)
	c.OCR.TessdataPrefix = getEnv(EnvTessdata, c.OCR.TessdataPrefix)
	c.OCR.Scale = getEnvFloat(EnvOCRScale, c.OCR.Scale)
	c.PollIntervalMS = getEnvInt(EnvPollMS, c.PollIntervalMS)
	c.FrameSkipDistance = getEnvInt(EnvFrameSkip, c.FrameSkipDistance)
	c.Classifiers = getEnvList(EnvClassifiers, c.Classifiers)
	c.FeedAddr = getEnv(EnvFeedAddr, c.FeedAddr)
	return c.Validate()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
