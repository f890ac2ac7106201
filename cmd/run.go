package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrills/internal/app"
	"github.com/abhisek/codedrills/internal/history"
	"github.com/abhisek/codedrills/internal/screens/drill"
	"github.com/abhisek/codedrills/internal/screens/home"
	"github.com/abhisek/codedrills/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	env, err := loadEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	cat, err := env.loadCatalog()
	if err != nil {
		return err
	}

	st, err := env.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	recorder := history.NewRecorder(eventRepo, env.logger)
	hintSvc := env.hintService(ctx, eventRepo, recorder, os.Stderr)

	defaults := session.DefaultConfig()
	defaults.TimeLimit = env.cfg.TimeLimit
	defaults.Seed = env.cfg.Seed

	return app.Run(home.Deps{
		Drill: drill.Deps{
			Catalog:  cat,
			Policy:   env.cfg.Scoring,
			Observer: session.Observers(recorder, hintSvc),
			Hints:    hintSvc,
			Logger:   env.logger,
		},
		Defaults: defaults,
		Repo:     eventRepo,
	})
}
