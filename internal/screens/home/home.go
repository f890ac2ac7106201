package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/screens/browse"
	"github.com/abhisek/codedrills/internal/screens/drill"
	"github.com/abhisek/codedrills/internal/screens/history"
	"github.com/abhisek/codedrills/internal/screens/setup"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

const statsTimeout = 5 * time.Second

// Deps wires the home menu to the rest of the app.
type Deps struct {
	Drill drill.Deps

	// Defaults seed the setup form (time limit, fixed seed).
	Defaults session.Config

	// Repo is optional; without it the history entry is disabled.
	Repo store.EventRepo
}

// statsLoadedMsg carries the best recorded scores per mode.
type statsLoadedMsg struct {
	Best map[session.Mode]int
	Runs int
	Err  error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps   Deps
	menu   components.Menu
	best   map[session.Mode]int
	runs   int
	counts map[string]int
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, counts: make(map[string]int)}
	if deps.Drill.Catalog != nil {
		for cat, byDiff := range deps.Drill.Catalog.CountBy() {
			for _, n := range byDiff {
				h.counts[cat] += n
			}
		}
	}

	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Drill", Key: "d", Detail: "type your answers", Action: h.startSetup(session.ModeDrill)},
		{Label: "Quiz", Key: "z", Detail: "multiple choice", Action: h.startSetup(session.ModeQuiz)},
		{Label: "Browse problems", Key: "b", Detail: "practice without scoring", Action: func() tea.Cmd {
			return push(browse.New(deps.Drill.Catalog, deps.Drill.Logger))
		}},
		{Label: "History", Key: "h", Detail: "past sessions", Disabled: deps.Repo == nil, Action: func() tea.Cmd {
			return push(history.New(deps.Repo))
		}},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) startSetup(mode session.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		cfg := h.deps.Defaults
		if cfg.QuestionCount == 0 {
			cfg.QuestionCount = session.DefaultConfig().QuestionCount
		}
		cfg.Mode = mode
		return push(setup.New(h.deps.Drill, cfg))
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	repo := h.deps.Repo
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()

		best := make(map[session.Mode]int)
		for _, mode := range []session.Mode{session.ModeDrill, session.ModeQuiz} {
			top, err := repo.BestScores(ctx, string(mode), 1)
			if err != nil {
				return statsLoadedMsg{Err: err}
			}
			if len(top) > 0 {
				best[mode] = top[0].Score
			}
		}
		recent, err := repo.RecentSessions(ctx, store.QueryOpts{Limit: 1000})
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Best: best, Runs: len(recent)}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.best = msg.Best
			h.runs = msg.Runs
		}
		return h, nil
	case router.ResumedMsg:
		return h, h.loadStats()
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight)
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.catalogSize(), len(h.counts), h.runs, h.best, cw),
	}
	if !h.deps.Drill.Hints.CanGenerate() && !compact {
		sections = append(sections, renderHintBanner(cw))
	}
	sections = append(sections, renderMenu(h.menu, cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) catalogSize() int {
	if h.deps.Drill.Catalog == nil {
		return 0
	}
	return h.deps.Drill.Catalog.Len()
}
