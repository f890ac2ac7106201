package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlBank = `
category: go
problems:
  - id: go-defer
    title: Defer order
    difficulty: Medium
    prompt: In which order do deferred calls run?
    expectedOutput: LIFO
    validationPatterns:
      - literal: lifo
      - regex: "last[- ]in,? first[- ]out"
    hints:
      - Think of a stack.
  - id: go-zero-slice
    category: go-basics
    difficulty: easy
    prompt: What is the zero value of a slice?
    expectedOutput: nil
    choices:
      - {id: a, text: nil}
      - {id: b, text: "[]"}
    answer: a
`

const jsonBank = `{
  "category": "shell",
  "problems": [
    {"id": "sh-count", "difficulty": "easy", "prompt": "Count lines", "expectedOutput": "wc -l"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_YAML(t *testing.T) {
	problems, err := Parse([]byte(yamlBank), FormatYAML)
	require.NoError(t, err)
	require.Len(t, problems, 2)

	assert.Equal(t, "go", problems[0].Category, "bank category applies by default")
	assert.Equal(t, DifficultyMedium, problems[0].Difficulty, "difficulty is lower-cased")
	assert.Equal(t, []Pattern{{Literal: "lifo"}, {Regex: "last[- ]in,? first[- ]out"}}, problems[0].Patterns)
	assert.Equal(t, "go-basics", problems[1].Category, "problem category overrides bank")
	assert.True(t, problems[1].HasChoices())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"problems": [{"id": "x", "answr": "typo"}]}`), FormatJSON)
	assert.Error(t, err)

	_, err = Parse([]byte("problems:\n  - id: x\n    answr: typo\n"), FormatYAML)
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	y := writeFile(t, "go.yaml", yamlBank)
	j := writeFile(t, "shell.json", jsonBank)

	c, err := LoadFiles(y, j)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"go", "go-basics", "shell"}, c.Categories())

	p, ok := c.ByID("sh-count")
	require.True(t, ok)
	assert.Equal(t, "shell", p.Category)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeFile(t, "bank.txt", jsonBank))
	assert.ErrorContains(t, err, "unsupported catalog file extension")

	bad := writeFile(t, "bad.json", `{"problems": [{"id": "x", "category": "c", "difficulty": "easy", "prompt": "p",
		"validationPatterns": [{"regex": "("}]}]}`)
	_, err = LoadFile(bad)
	require.ErrorIs(t, err, ErrInvalidPattern)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, bad, le.Source)
	assert.Equal(t, "x", le.ProblemID)
}

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, []string{"algorithms", "frontend", "regex", "sql"}, c.Categories())
	for _, cat := range c.Categories() {
		for _, d := range AllDifficulties() {
			assert.NotEmpty(t, c.CountBy()[cat][d], "%s has no %s problems", cat, d)
		}
	}

	var quiz int
	for _, p := range c.Problems() {
		if p.HasChoices() {
			quiz++
		}
	}
	assert.GreaterOrEqual(t, quiz, 4, "builtin banks should support quiz mode")

	again, err := Builtin()
	require.NoError(t, err)
	assert.Same(t, c, again)
}
