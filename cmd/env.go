package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/config"
	"github.com/abhisek/codedrills/internal/hints"
	"github.com/abhisek/codedrills/internal/history"
	"github.com/abhisek/codedrills/internal/llm"
	"github.com/abhisek/codedrills/internal/logging"
	"github.com/abhisek/codedrills/internal/store"
)

// environment is what every command builds before doing its work.
type environment struct {
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

// loadEnv resolves configuration with flags over env over defaults and
// opens the logger. logTo receives logs when DRILLS_LOG_FILE is unset; nil
// discards, which the TUI uses while it owns the terminal.
func loadEnv(cmd *cobra.Command, logTo io.Writer) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if paths, _ := cmd.Flags().GetStringSlice("catalog"); len(paths) > 0 {
		cfg.CatalogPaths = paths
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel, logTo)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &environment{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func (e *environment) Close() {
	if err := e.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: close log file:", err)
	}
}

// loadCatalog returns the built-in catalog merged with any configured
// banks.
func (e *environment) loadCatalog() (*catalog.Catalog, error) {
	builtin, err := catalog.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in catalog: %w", err)
	}
	if len(e.cfg.CatalogPaths) == 0 {
		return builtin, nil
	}
	extra, err := catalog.LoadFiles(e.cfg.CatalogPaths...)
	if err != nil {
		return nil, err
	}
	merged, err := catalog.Merge(builtin, extra)
	if err != nil {
		return nil, fmt.Errorf("merge catalogs: %w", err)
	}
	e.logger.Debug("catalog loaded", "problems", merged.Len(), "extra_banks", len(e.cfg.CatalogPaths))
	return merged, nil
}

// openStore opens the event store. The database path comes from --db,
// then the loaded config, then the default location.
func (e *environment) openStore(cmd *cobra.Command) (*store.Store, error) {
	var (
		dbPath string
		err    error
	)
	if p, _ := cmd.Flags().GetString("db"); p == "" && e.cfg.DBPath != "" {
		dbPath, err = e.cfg.DBPath, store.EnsureDir(e.cfg.DBPath)
	} else {
		dbPath, err = resolveDBPath(cmd)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// hintService builds the hint service. Without a configured provider it
// serves authored hints only; warn receives a one-line notice.
func (e *environment) hintService(ctx context.Context, repo store.EventRepo, rec *history.Recorder, warn io.Writer) *hints.Service {
	opts := []hints.Option{hints.WithLogger(e.logger)}
	if rec != nil {
		opts = append(opts, hints.WithRecorder(rec))
	}

	llmCfg, ok := llm.ConfigFromEnv(os.Getenv)
	if !ok {
		return hints.NewService(nil, hints.DefaultConfig(), opts...)
	}
	provider, err := llm.NewProvider(ctx, llmCfg, repo, e.logger)
	if err != nil {
		if warn != nil {
			fmt.Fprintln(warn, "LLM provider not configured:", err)
			fmt.Fprintln(warn, "Only authored hints will be available.")
		}
		return hints.NewService(nil, hints.DefaultConfig(), opts...)
	}
	return hints.NewService(provider, hints.DefaultConfig(), opts...)
}
