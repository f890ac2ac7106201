package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/screens/drill"
	"github.com/abhisek/codedrills/internal/screens/home"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

// escScreen optionally swallows Esc and reports a live score.
type escScreen struct {
	captures bool
	escs     int
}

func (s *escScreen) Init() tea.Cmd { return nil }
func (s *escScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		s.escs++
	}
	return s, nil
}
func (s *escScreen) View(int, int) string  { return "esc screen body" }
func (s *escScreen) Title() string         { return "Esc" }
func (s *escScreen) CapturesEsc() bool     { return s.captures }
func (s *escScreen) Status() layout.Status { return layout.Status{Score: 42, Shown: true} }
func (s *escScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "y", Description: "Yes please"}}
}

func testModel(t *testing.T) AppModel {
	t.Helper()
	cat, err := catalog.New(catalog.Problem{
		ID: "p1", Category: "sql", Difficulty: catalog.DifficultyEasy, Prompt: "Say ok.", ExpectedOutput: "ok",
	})
	if err != nil {
		t.Fatalf("catalog.New() error: %v", err)
	}
	return newAppModel(home.Deps{Drill: drill.Deps{Catalog: cat}})
}

func send(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestAppModel_EscPopsUnlessCaptured(t *testing.T) {
	m := testModel(t)
	s := &escScreen{}
	m.router.Push(s)

	_, cmd := send(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc on a pushed screen should pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should produce PopScreenMsg")
	}
	if s.escs != 0 {
		t.Error("esc should not reach a screen that does not capture it")
	}

	s.captures = true
	send(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.escs != 1 {
		t.Errorf("capturing screen saw %d escs, want 1", s.escs)
	}
	if m.router.Depth() != 2 {
		t.Error("captured esc should not pop")
	}
}

func TestAppModel_EscAtRootIsNoop(t *testing.T) {
	m := testModel(t)
	_, cmd := send(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc at root should do nothing")
	}
}

func TestAppModel_ViewUsesScreenStatusAndHints(t *testing.T) {
	m := testModel(t)
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m.router.Push(&escScreen{})

	out := m.render()
	for _, want := range []string{"42 pts", "Yes please", "esc screen body"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppModel_TooSmall(t *testing.T) {
	m := testModel(t)
	m, _ = send(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.render(), "bigger terminal") {
		t.Error("expected a minimum size message")
	}
}

func TestAppModel_NewSetupWired(t *testing.T) {
	m := testModel(t)
	h := m.router.Active()
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on home should open setup")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	if push.Screen.Title() != "Drill Setup" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
}
