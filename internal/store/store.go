package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// sqlBuilder renders queries with SQLite's ? placeholders.
var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Store owns the SQLite connection that session history and LLM request
// events are written to.
type Store struct {
	db   *sql.DB
	path string
	seq  *sequenceCounter
	now  func() time.Time
}

// Option configures Open.
type Option func(*Store)

// WithNow sets the clock used to timestamp appended events.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the SQLite database at path, creating it if needed,
// and brings its schema up to date. ":memory:" opens a private in-memory
// database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writes and keeps ":memory:" to one database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	for _, p := range pragmas(s.path) {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply %s: %w", p, err)
		}
	}
	if err := migrate(s.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	seq, err := newSequenceCounter(s.db)
	if err != nil {
		return err
	}
	s.seq = seq
	return nil
}

// DB exposes the connection for ad hoc queries in tests and tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path is the database location Open was called with.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns the event repository backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq, now: s.now}
}

// pragmas returns the connection settings for path. WAL needs a file.
func pragmas(path string) []string {
	ps := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	if path != ":memory:" {
		ps = append([]string{"PRAGMA journal_mode = WAL"}, ps...)
	}
	return ps
}

// DefaultDBPath resolves the database file path in priority order:
// 1. DRILLS_DB environment variable
// 2. $XDG_DATA_HOME/codedrills/codedrills.db
// 3. ~/.local/share/codedrills/codedrills.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("DRILLS_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "codedrills", "codedrills.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold the database file.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
