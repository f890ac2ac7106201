// Package logging builds the structured loggers handed to the engine and
// its collaborators.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog.Level. Unknown names map to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Open returns a JSON logger appending to file, or a text logger on
// fallback when file is empty. A nil fallback discards. The returned
// close func is always safe to call.
func Open(file, level string, fallback io.Writer) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if file == "" {
		if fallback == nil {
			return Discard(), noop, nil
		}
		return New(fallback, level), noop, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, err
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	return logger, f.Close, nil
}
