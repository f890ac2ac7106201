package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/codedrills/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "codedrills",
	Short: "Timed practice drills for programming problems",
	Long: "CodeDrills runs drill and quiz sessions over a catalog of algorithms, SQL,\n" +
		"regex and frontend problems, with an optional per-question countdown.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DRILLS_DB)")
	rootCmd.PersistentFlags().StringSlice("catalog", nil, "Extra problem bank files merged over the built-in catalog (overrides DRILLS_CATALOG)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides DRILLS_LOG_LEVEL)")

	rootCmd.AddCommand(drillCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db (highest priority),
// then DRILLS_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
