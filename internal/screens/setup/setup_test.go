package setup

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/screens/drill"
	"github.com/abhisek/codedrills/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T) drill.Deps {
	t.Helper()
	var problems []catalog.Problem
	for i, cat := range []string{"regex", "regex", "sql"} {
		problems = append(problems, catalog.Problem{
			ID:             fmt.Sprintf("p%d", i),
			Category:       cat,
			Difficulty:     catalog.DifficultyEasy,
			Prompt:         "prompt",
			ExpectedOutput: "ok",
		})
	}
	c, err := catalog.New(problems...)
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	return drill.Deps{Catalog: c}
}

func TestSetupScreen_Prefill(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Categories = []string{"sql", "unknown"}
	cfg.QuestionCount = 5
	cfg.TimeLimit = 45 * time.Second
	s := New(testDeps(t), cfg)

	got, err := s.Config()
	if err != nil {
		t.Fatalf("Config() error: %v", err)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "sql" {
		t.Errorf("Categories = %v, want [sql]", got.Categories)
	}
	if got.QuestionCount != 5 || got.TimeLimit != 45*time.Second {
		t.Errorf("Config() = %+v", got)
	}
}

func TestSetupScreen_ToggleCategories(t *testing.T) {
	s := New(testDeps(t), session.DefaultConfig())

	// Cursor starts on "all"; move to "regex" and toggle it.
	s.Update(specialKey(tea.KeyRight))
	s.Update(keyPress(' '))
	cfg, _ := s.Config()
	if len(cfg.Categories) != 1 || cfg.Categories[0] != "regex" {
		t.Fatalf("Categories = %v, want [regex]", cfg.Categories)
	}

	// Toggling "all" clears the selection.
	s.Update(specialKey(tea.KeyLeft))
	s.Update(keyPress(' '))
	cfg, _ = s.Config()
	if len(cfg.Categories) != 0 {
		t.Errorf("Categories = %v, want all", cfg.Categories)
	}
}

func TestSetupScreen_CycleDifficultyAndMode(t *testing.T) {
	s := New(testDeps(t), session.DefaultConfig())

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.cfg.Difficulty != catalog.DifficultyEasy {
		t.Errorf("Difficulty = %s, want easy", s.cfg.Difficulty)
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if s.cfg.Difficulty != catalog.DifficultyHard {
		t.Errorf("Difficulty = %s, want hard after wrapping", s.cfg.Difficulty)
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.cfg.Mode != session.ModeQuiz || s.Title() != "Quiz Setup" {
		t.Errorf("Mode = %s, Title = %q", s.cfg.Mode, s.Title())
	}
}

func TestSetupScreen_EditCount(t *testing.T) {
	s := New(testDeps(t), session.DefaultConfig())
	s.setFocus(fieldQuestions)
	s.count.SetValue("")

	s.Update(keyPress('2'))
	s.Update(keyPress('x'))
	cfg, err := s.Config()
	if err != nil || cfg.QuestionCount != 2 {
		t.Errorf("Config() = %+v, %v", cfg, err)
	}
}

func TestSetupScreen_StartReplacesWithDrill(t *testing.T) {
	s := New(testDeps(t), session.DefaultConfig())

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("expected a command, error %q", s.errMsg)
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	d, ok := msg.Screen.(*drill.DrillScreen)
	if !ok {
		t.Fatalf("screen = %T, want *drill.DrillScreen", msg.Screen)
	}
	if got := d.Engine().Progress().Total; got != 3 {
		t.Errorf("problems = %d, want 3 (clamped)", got)
	}
}

func TestSetupScreen_ConfigurationErrorStays(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Mode = session.ModeQuiz // no problem has choices
	s := New(testDeps(t), cfg)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no navigation on a configuration error")
	}
	if !strings.Contains(s.errMsg, "No problems match") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if !strings.Contains(s.View(100, 30), "No problems match") {
		t.Error("expected error in view")
	}
}

func TestSetupScreen_ZeroCount(t *testing.T) {
	s := New(testDeps(t), session.DefaultConfig())
	s.count.SetValue("0")

	s.Update(specialKey(tea.KeyEnter))
	if !strings.Contains(s.errMsg, "at least one") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestSetupScreen_MatchLine(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Categories = []string{"regex"}
	s := New(testDeps(t), cfg)
	if got := s.matchLine(); !strings.Contains(got, "2 problems match") {
		t.Errorf("matchLine() = %q", got)
	}
}
