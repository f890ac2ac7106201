package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show best scores, recent sessions and accuracy by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		category, _ := cmd.Flags().GetString("category")
		return printStats(cmd.Context(), cmd.OutOrStdout(), st.EventRepo(), limit, category)
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 5, "Rows per table")
	statsCmd.Flags().String("category", "", "Only recent sessions that included this category")
}

func printStats(ctx context.Context, out io.Writer, repo store.EventRepo, limit int, category string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	recent, err := repo.RecentSessions(ctx, store.QueryOpts{Limit: limit, Category: category})
	if err != nil {
		return fmt.Errorf("query sessions: %w", err)
	}
	if len(recent) == 0 && category == "" {
		fmt.Fprintln(out, "No sessions recorded yet.")
		return nil
	}

	line := strings.Repeat("─", 72)
	for _, mode := range []session.Mode{session.ModeDrill, session.ModeQuiz} {
		best, err := repo.BestScores(ctx, string(mode), limit)
		if err != nil {
			return fmt.Errorf("query best scores: %w", err)
		}
		if len(best) == 0 {
			continue
		}
		fmt.Fprintf(out, "Best %s Scores\n", mode.DisplayName())
		fmt.Fprintln(out, line)
		for i, s := range best {
			fmt.Fprintf(out, "%2d. %6d pts  %3d/%-3d  %-12s  %s\n",
				i+1, s.Score, s.Correct, s.Total, difficultyLabel(s.Difficulty), s.Timestamp.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(out)
	}

	title := "Recent Sessions"
	if category != "" {
		title += " (" + category + ")"
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, line)
	fmt.Fprintf(out, "%-16s  %-5s  %6s  %7s  %5s  %6s  %s\n", "When", "Mode", "Score", "Correct", "Acc", "Time", "Seed")
	for _, s := range recent {
		fmt.Fprintf(out, "%-16s  %-5s  %6d  %3d/%-3d  %4.0f%%  %6s  %d\n",
			s.Timestamp.Local().Format("2006-01-02 15:04"), s.Mode, s.Score, s.Correct, s.Total,
			s.Accuracy()*100, layout.FormatDuration(int(s.DurationMs/1000)), s.Seed)
	}

	cats, err := repo.CategoryAccuracy(ctx)
	if err != nil {
		return fmt.Errorf("query category accuracy: %w", err)
	}
	if len(cats) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Accuracy by Category")
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "%-16s  %9s  %7s  %7s  %5s\n", "Category", "Attempted", "Correct", "Skipped", "Acc")
		for _, c := range cats {
			fmt.Fprintf(out, "%-16s  %9d  %7d  %7d  %4.0f%%\n",
				truncate(c.Category, 16), c.Attempted, c.Correct, c.Skipped, c.Accuracy()*100)
		}
	}
	return nil
}

func difficultyLabel(d string) string {
	if d == "" {
		return "all"
	}
	return d
}
