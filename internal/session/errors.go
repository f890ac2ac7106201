package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProblems means the filters matched nothing in the catalog.
	ErrNoProblems = errors.New("no problems match the selected filters")

	ErrInvalidCount      = errors.New("question count must be positive")
	ErrInvalidTimeLimit  = errors.New("time limit must not be negative")
	ErrInvalidDifficulty = errors.New("unknown difficulty")
	ErrUnscoredMode      = errors.New("mode does not run a scored session")
	ErrNoScheduler       = errors.New("timed sessions need a countdown scheduler")

	// ErrNoMoreHints is returned by RevealHint once every hint is shown.
	ErrNoMoreHints = errors.New("no more hints for this problem")
)

// ConfigurationError reports a session configuration that cannot start a
// session. The engine stays in its current phase; the user must change the
// configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError reports a command issued in a phase that does not
// allow it. It signals a caller bug.
type InvalidTransitionError struct {
	Op    string
	Phase Phase
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s is not allowed in the %s phase", e.Op, e.Phase)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsInvalidTransition reports whether err is or wraps an
// InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
