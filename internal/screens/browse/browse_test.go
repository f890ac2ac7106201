package browse

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		catalog.Problem{
			ID: "re-1", Title: "Digits", Category: "regex", Difficulty: catalog.DifficultyEasy,
			Prompt:   "Match one or more digits.",
			Patterns: []catalog.Pattern{{Literal: `\d+`}},
			Hints:    []string{"Use a character class.", "\\d is a digit."},
		},
		catalog.Problem{
			ID: "re-2", Title: "Anchors", Category: "regex", Difficulty: catalog.DifficultyMedium,
			Prompt:   "Match a whole line.",
			Patterns: []catalog.Pattern{{Literal: `^.*$`}},
		},
		catalog.Problem{
			ID: "sql-1", Title: "Count rows", Category: "sql", Difficulty: catalog.DifficultyEasy,
			Prompt:  "Which counts rows?",
			Choices: []catalog.Choice{{ID: "a", Text: "COUNT(*)"}, {ID: "b", Text: "SUM(1)"}},
			Answer:  "a",
		},
	)
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	return c
}

func typeString(s *practiceScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestBrowseScreen_StartsOnFirstProblem(t *testing.T) {
	s := New(testCatalog(t), nil)
	if s.rows[s.cursor].kind != rowProblem {
		t.Fatal("cursor starts on a category header")
	}
	if got := s.rows[s.cursor].problem.ID; got != "re-1" {
		t.Errorf("first problem = %q, want re-1", got)
	}
}

func TestBrowseScreen_NavigationSkipsHeaders(t *testing.T) {
	s := New(testCatalog(t), nil)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	if got := s.rows[s.cursor].problem.ID; got != "sql-1" {
		t.Errorf("after two downs = %q, want sql-1", got)
	}

	s.Update(specialKey(tea.KeyDown))
	if got := s.rows[s.cursor].problem.ID; got != "sql-1" {
		t.Errorf("down past the end moved to %q", got)
	}

	s.Update(specialKey(tea.KeyUp))
	if got := s.rows[s.cursor].problem.ID; got != "re-2" {
		t.Errorf("after up = %q, want re-2", got)
	}
}

func TestBrowseScreen_TabJumpsCategory(t *testing.T) {
	s := New(testCatalog(t), nil)

	s.Update(specialKey(tea.KeyTab))
	if got := s.rows[s.cursor].category; got != "sql" {
		t.Errorf("tab landed in %q, want sql", got)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if got := s.rows[s.cursor].problem.ID; got != "re-1" {
		t.Errorf("shift+tab landed on %q, want re-1", got)
	}
}

func TestBrowseScreen_EnterPushesPractice(t *testing.T) {
	s := New(testCatalog(t), nil)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("enter produced %T, want PushScreenMsg", cmd())
	}
	if got := push.Screen.Title(); got != "Digits" {
		t.Errorf("pushed screen title = %q, want Digits", got)
	}
}

func TestBrowseScreen_EmptyCatalog(t *testing.T) {
	s := New(nil, nil)
	if !strings.Contains(s.View(80, 20), "empty") {
		t.Error("empty catalog view should say so")
	}
	s.Update(specialKey(tea.KeyDown))
}

func TestBrowseScreen_ViewListsCategories(t *testing.T) {
	s := New(testCatalog(t), nil)
	view := s.View(100, 30)
	for _, want := range []string{"REGEX", "SQL", "Digits", "Count rows"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPracticeScreen_CheckAnswer(t *testing.T) {
	b := New(testCatalog(t), nil)
	s := newPracticeScreen(*b.rows[b.cursor].problem, b.validator)

	typeString(s, "[0-9]+")
	s.Update(specialKey(tea.KeyEnter))
	if !s.checked || s.verdict.Correct {
		t.Fatalf("wrong answer: checked=%v correct=%v", s.checked, s.verdict.Correct)
	}
	if !strings.Contains(s.View(100, 40), "Not accepted") {
		t.Error("view should show the rejection")
	}

	s.Update(ctrlKey('t'))
	if s.checked {
		t.Fatal("try again should clear the verdict")
	}
	if got := s.input.Value(); got != "[0-9]+" {
		t.Errorf("try again should keep the answer for editing, got %q", got)
	}
	s.input.SetValue("")
	typeString(s, `\d+`)
	s.Update(specialKey(tea.KeyEnter))
	if !s.verdict.Correct {
		t.Error("literal answer should be accepted")
	}
}

func TestPracticeScreen_BlankAnswerIgnored(t *testing.T) {
	b := New(testCatalog(t), nil)
	s := newPracticeScreen(*b.rows[b.cursor].problem, b.validator)

	s.Update(specialKey(tea.KeyEnter))
	if s.checked {
		t.Error("blank answer should not be checked")
	}
}

func TestPracticeScreen_HintsAndReveal(t *testing.T) {
	b := New(testCatalog(t), nil)
	s := newPracticeScreen(*b.rows[b.cursor].problem, b.validator)

	for range 3 {
		s.Update(ctrlKey('g'))
	}
	if s.hintsShown != 2 {
		t.Errorf("hintsShown = %d, want 2 (capped at authored hints)", s.hintsShown)
	}

	s.Update(ctrlKey('r'))
	view := s.View(100, 60)
	if !strings.Contains(view, "Sample answer") || !strings.Contains(view, `\d+`) {
		t.Error("reveal should show the first literal pattern")
	}
}

func TestPracticeScreen_QuizProblem(t *testing.T) {
	p, _ := testCatalog(t).ByID("sql-1")
	s := newPracticeScreen(p, New(nil, nil).validator)
	if !s.quiz {
		t.Fatal("choice-only problem should use the choice selector")
	}

	s.Update(keyPress('b'))
	if !s.checked || s.verdict.Correct {
		t.Error("choice b should be checked and rejected")
	}
	if got := sampleAnswer(p); got != "a) COUNT(*)" {
		t.Errorf("sampleAnswer = %q", got)
	}
}
