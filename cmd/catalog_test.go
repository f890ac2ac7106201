package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/validator"
)

func TestCheckCatalog(t *testing.T) {
	cat, err := catalog.New(
		catalog.Problem{ID: "good", Category: "regex", Difficulty: catalog.DifficultyEasy, Prompt: "digits",
			Patterns: []catalog.Pattern{{Regex: `^\\d\+$`}}, SampleAnswer: `\d+`},
		catalog.Problem{ID: "bad", Category: "regex", Difficulty: catalog.DifficultyEasy, Prompt: "digits",
			Patterns: []catalog.Pattern{{Literal: `\d+`}}, SampleAnswer: `[0-9]+`},
	)
	require.NoError(t, err)

	var out bytes.Buffer
	failed := checkCatalog(&out, cat, validator.New())
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), `problem "bad"`)
	assert.Contains(t, out.String(), "2 problem(s) checked, 1 failed")
}

func TestCheckCatalog_Builtin(t *testing.T) {
	cat, err := catalog.Builtin()
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Zero(t, checkCatalog(&out, cat, validator.New()), out.String())
}

func TestPrintProblem(t *testing.T) {
	p := catalog.Problem{
		ID: "q1", Title: "Count rows", Category: "sql", Difficulty: catalog.DifficultyMedium,
		Prompt: "Which counts rows?", Hints: []string{"Star."},
		Choices: []catalog.Choice{{ID: "a", Text: "COUNT(*)"}, {ID: "b", Text: "SUM(1)"}}, Answer: "a",
	}

	var hidden bytes.Buffer
	printProblem(&hidden, p, false)
	assert.Contains(t, hidden.String(), "Hint 1: Star.")
	assert.NotContains(t, hidden.String(), "Answer:")

	var shown bytes.Buffer
	printProblem(&shown, p, true)
	assert.Contains(t, shown.String(), "Answer: a) COUNT(*)")
}

func TestPrintStats(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer st.Close()
	repo := st.EventRepo()
	ctx := context.Background()

	var empty bytes.Buffer
	require.NoError(t, printStats(ctx, &empty, repo, 5, ""))
	assert.Contains(t, empty.String(), "No sessions recorded yet.")

	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s1", Action: store.ActionEnd, Mode: "drill", Score: 30, Correct: 3, Total: 4, Seed: 77,
	}))
	require.NoError(t, repo.AppendAttemptEvent(ctx, store.AttemptEventData{
		SessionID: "s1", ProblemID: "p1", Category: "sql", Difficulty: "easy", Verdict: "correct", Points: 10,
	}))

	var out bytes.Buffer
	require.NoError(t, printStats(ctx, &out, repo, 5, ""))
	text := out.String()
	assert.Contains(t, text, "Best Drill Scores")
	assert.NotContains(t, text, "Best Quiz Scores")
	assert.Contains(t, text, "Accuracy by Category")
	assert.Contains(t, text, "77")
}
