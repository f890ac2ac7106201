package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/selector"
	"github.com/abhisek/codedrills/internal/validator"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and check problem banks",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer env.Close()

		cat, err := env.loadCatalog()
		if err != nil {
			return err
		}

		f := selector.Filter{}
		f.Categories, _ = cmd.Flags().GetStringSlice("category")
		diff, _ := cmd.Flags().GetString("difficulty")
		d, ok := catalog.ParseDifficulty(diff)
		if !ok {
			return fmt.Errorf("invalid --difficulty %q", diff)
		}
		f.Difficulty = d
		f.RequireChoices, _ = cmd.Flags().GetBool("quiz")

		problems := selector.Filtered(cat, f)
		out := cmd.OutOrStdout()
		if len(problems) == 0 {
			fmt.Fprintln(out, "No problems match.")
			return nil
		}

		fmt.Fprintf(out, "%-28s  %-12s  %-6s  %-4s  %s\n", "ID", "Category", "Level", "Quiz", "Title")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, p := range problems {
			quiz := ""
			if p.HasChoices() {
				quiz = "✓"
			}
			fmt.Fprintf(out, "%-28s  %-12s  %-6s  %-4s  %s\n",
				truncate(p.ID, 28), truncate(p.Category, 12), p.Difficulty.DisplayName(), quiz, p.DisplayTitle())
		}
		fmt.Fprintf(out, "\n%d problem(s)\n", len(problems))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer env.Close()

		cat, err := env.loadCatalog()
		if err != nil {
			return err
		}
		p, ok := cat.ByID(args[0])
		if !ok {
			return fmt.Errorf("problem %q not found", args[0])
		}
		reveal, _ := cmd.Flags().GetBool("answer")
		printProblem(cmd.OutOrStdout(), p, reveal)
		return nil
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Validate problem banks and self-test their sample answers",
	Long: "Load the given bank files, or the configured catalog when none are given,\n" +
		"and check that every sample answer and quiz answer is accepted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer env.Close()

		var cat *catalog.Catalog
		if len(args) > 0 {
			cat, err = catalog.LoadFiles(args...)
		} else {
			cat, err = env.loadCatalog()
		}
		if err != nil {
			return err
		}

		failed := checkCatalog(cmd.OutOrStdout(), cat, validator.New(validator.WithLogger(env.logger)))
		if failed > 0 {
			return fmt.Errorf("%d problem(s) failed the self-test", failed)
		}
		return nil
	},
}

// checkCatalog self-tests every problem, printing each failure, and
// returns the number of failures.
func checkCatalog(out io.Writer, cat *catalog.Catalog, v *validator.Validator) int {
	var errs []error
	for _, p := range cat.Problems() {
		if err := v.SelfTest(p); err != nil {
			errs = append(errs, err)
		}
	}
	for _, err := range errs {
		fmt.Fprintln(out, "✗", err)
	}
	fmt.Fprintf(out, "%d problem(s) checked, %d failed\n", cat.Len(), len(errs))
	return len(errs)
}

func printProblem(out io.Writer, p catalog.Problem, reveal bool) {
	sep := strings.Repeat("─", 60)
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Title:       %s\n", p.DisplayTitle())
	fmt.Fprintf(out, "Category:    %s\n", p.Category)
	fmt.Fprintf(out, "Difficulty:  %s\n", p.Difficulty.DisplayName())
	if len(p.Tags) > 0 {
		fmt.Fprintf(out, "Tags:        %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, p.Prompt)
	if p.Setup != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, indent(p.Setup, "    "))
	}
	for _, c := range p.Choices {
		fmt.Fprintf(out, "  %s) %s\n", c.ID, c.Text)
	}
	if len(p.Hints) > 0 {
		fmt.Fprintln(out, sep)
		for i, h := range p.Hints {
			fmt.Fprintf(out, "Hint %d: %s\n", i+1, h)
		}
	}
	if reveal {
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, "Answer:", referenceAnswer(p, p.HasChoices() && len(p.Patterns) == 0 && p.ExpectedOutput == ""))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	catalogListCmd.Flags().StringSlice("category", nil, "Only these categories")
	catalogListCmd.Flags().String("difficulty", "all", "Only this difficulty")
	catalogListCmd.Flags().Bool("quiz", false, "Only problems usable in quiz mode")
	catalogShowCmd.Flags().Bool("answer", false, "Also print the reference answer")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogCheckCmd)
}
