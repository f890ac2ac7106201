package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/selector"
)

// Mode is the interaction mode a session is configured for.
type Mode string

const (
	ModeDrill      Mode = "drill"
	ModeQuiz       Mode = "quiz"
	ModeBrowse     Mode = "practice-browse"
	ModePlayground Mode = "playground"
)

// ParseMode parses a mode name. The empty string parses as ModeDrill.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeDrill:
		return ModeDrill, nil
	case ModeQuiz:
		return ModeQuiz, nil
	case ModeBrowse, "browse":
		return ModeBrowse, nil
	case ModePlayground:
		return ModePlayground, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Scored reports whether the mode runs through the session engine.
// Browse and playground are read-only catalog views.
func (m Mode) Scored() bool {
	return m == ModeDrill || m == ModeQuiz
}

// DisplayName returns a human-readable mode label.
func (m Mode) DisplayName() string {
	switch m {
	case ModeDrill:
		return "Drill"
	case ModeQuiz:
		return "Quiz"
	case ModeBrowse:
		return "Practice"
	case ModePlayground:
		return "Playground"
	default:
		return string(m)
	}
}

// Config is the user's choice of problems and pacing for one session.
type Config struct {
	// Categories to draw from; empty or containing "all" means every
	// category.
	Categories []string

	// Difficulty filter; DifficultyAll (or empty) means every difficulty.
	Difficulty catalog.Difficulty

	// QuestionCount is the requested number of problems. It is clamped to
	// the number of matching problems.
	QuestionCount int

	// TimeLimit is the per-question countdown; zero means untimed.
	TimeLimit time.Duration

	Mode Mode

	// Seed fixes the problem order. Zero means a seed is generated and
	// recorded when the session starts.
	Seed uint64
}

// DefaultConfig returns the configuration the setup form starts from.
func DefaultConfig() Config {
	return Config{
		Difficulty:    catalog.DifficultyAll,
		QuestionCount: 10,
		Mode:          ModeDrill,
	}
}

// Filter returns the selector filter for the configuration.
func (c Config) Filter() selector.Filter {
	return selector.Filter{
		Categories:     c.Categories,
		Difficulty:     c.Difficulty,
		RequireChoices: c.Mode == ModeQuiz,
	}
}

// Timed reports whether questions have a countdown.
func (c Config) Timed() bool {
	return c.TimeLimit > 0
}

func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeDrill
	}
	if c.Difficulty == "" {
		c.Difficulty = catalog.DifficultyAll
	}
	return c
}

// check validates the fields that do not depend on the catalog.
func (c Config) check() error {
	if c.QuestionCount <= 0 {
		return &ConfigurationError{Err: fmt.Errorf("%w: got %d", ErrInvalidCount, c.QuestionCount)}
	}
	if c.Mode != "" && !c.Mode.Scored() {
		return &ConfigurationError{Err: fmt.Errorf("%w: %s", ErrUnscoredMode, c.Mode)}
	}
	if c.TimeLimit < 0 {
		return &ConfigurationError{Err: fmt.Errorf("%w: %s", ErrInvalidTimeLimit, c.TimeLimit)}
	}
	if c.Difficulty != "" && c.Difficulty != catalog.DifficultyAll && !c.Difficulty.Valid() {
		return &ConfigurationError{Err: fmt.Errorf("%w: %q", ErrInvalidDifficulty, c.Difficulty)}
	}
	return nil
}
