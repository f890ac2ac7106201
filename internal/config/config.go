// Package config resolves application settings from an optional .env file
// and DRILLS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/codedrills/internal/scoring"
)

// Environment variable names.
const (
	EnvDB          = "DRILLS_DB"
	EnvCatalog     = "DRILLS_CATALOG"
	EnvLogLevel    = "DRILLS_LOG_LEVEL"
	EnvLogFile     = "DRILLS_LOG_FILE"
	EnvSeed        = "DRILLS_SEED"
	EnvTimeLimit   = "DRILLS_TIME_LIMIT"
	EnvPointsEasy  = "DRILLS_POINTS_EASY"
	EnvPointsMed   = "DRILLS_POINTS_MEDIUM"
	EnvPointsHard  = "DRILLS_POINTS_HARD"
	EnvStreakBonus = "DRILLS_STREAK_BONUS"
	EnvStreakCap   = "DRILLS_STREAK_CAP"
)

// Config holds settings shared by the TUI and the CLI commands.
type Config struct {
	// DBPath is the sqlite file; empty means store.DefaultDBPath.
	DBPath string

	// CatalogPaths are extra problem banks merged over the built-in ones.
	CatalogPaths []string

	LogLevel string
	LogFile  string

	// Seed fixes problem order for every session when non-zero.
	Seed uint64

	// TimeLimit is the default per-question countdown; zero is untimed.
	TimeLimit time.Duration

	Scoring scoring.Policy
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Scoring:  scoring.DefaultPolicy(),
	}
}

// Load reads a .env file from the working directory if present, then
// applies the environment over Default and validates the result.
func Load() (Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv applies the variables returned by getenv over Default. Unset or
// empty variables keep their default; malformed ones are reported.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	cfg.DBPath = getenv(EnvDB)
	cfg.LogFile = getenv(EnvLogFile)
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvCatalog); v != "" {
		cfg.CatalogPaths = SplitPaths(v)
	}

	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSeed, err))
		}
		cfg.Seed = seed
	}
	if v := getenv(EnvTimeLimit); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeLimit, err))
		}
		cfg.TimeLimit = d
	}

	intVar(getenv, EnvPointsEasy, &cfg.Scoring.EasyPoints, &errs)
	intVar(getenv, EnvPointsMed, &cfg.Scoring.MediumPoints, &errs)
	intVar(getenv, EnvPointsHard, &cfg.Scoring.HardPoints, &errs)
	floatVar(getenv, EnvStreakBonus, &cfg.Scoring.StreakBonus, &errs)
	floatVar(getenv, EnvStreakCap, &cfg.Scoring.MaxMultiplier, &errs)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%s must be debug, info, warn or error, got %q", EnvLogLevel, c.LogLevel))
	}
	if c.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative", EnvTimeLimit))
	}
	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}
	return errors.Join(errs...)
}

// SplitPaths splits a list of paths on the OS list separator and drops
// empty entries.
func SplitPaths(v string) []string {
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSeconds accepts a bare number of seconds or a Go duration string.
func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func intVar(getenv func(string) string, key string, dst *int, errs *[]error) {
	v := getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func floatVar(getenv func(string) string, key string, dst *float64, errs *[]error) {
	v := getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = f
}
