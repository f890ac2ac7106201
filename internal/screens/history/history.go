// Package history shows finished sessions recorded in the event store.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/store"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

const (
	sessionLimit = 50
	loadTimeout  = 5 * time.Second
)

// modeFilters is the cycle used by the "f" key. Empty means every mode.
var modeFilters = []string{"", "drill", "quiz"}

type historyLoadedMsg struct {
	Filter     string
	Sessions   []store.SessionRecord
	Categories []store.CategoryAccuracy
	Err        error
}

type attemptsLoadedMsg struct {
	SessionID string
	Attempts  []store.AttemptRecord
	Err       error
}

// HistoryScreen lists past sessions. Selecting one expands its attempts,
// which are loaded on first use.
type HistoryScreen struct {
	eventRepo  store.EventRepo
	filter     int
	sessions   []store.SessionRecord
	categories []store.CategoryAccuracy
	attempts   map[string][]store.AttemptRecord
	selected   int
	expanded   map[string]bool
	loaded     bool
	errMsg     string
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		attempts:  make(map[string][]store.AttemptRecord),
		expanded:  make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.eventRepo
	filter := modeFilters[s.filter]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		sessions, err := repo.RecentSessions(ctx, store.QueryOpts{Limit: sessionLimit, Mode: filter})
		if err != nil {
			return historyLoadedMsg{Filter: filter, Err: err}
		}
		cats, err := repo.CategoryAccuracy(ctx)
		if err != nil {
			return historyLoadedMsg{Filter: filter, Sessions: sessions}
		}
		return historyLoadedMsg{Filter: filter, Sessions: sessions, Categories: cats}
	}
}

func (s *HistoryScreen) loadAttempts(sessionID string) tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		attempts, err := repo.SessionAttempts(ctx, sessionID)
		return attemptsLoadedMsg{SessionID: sessionID, Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "f", Description: "Filter: " + filterName(modeFilters[s.filter])},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Filter != modeFilters[s.filter] {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.sessions = msg.Sessions
		s.categories = msg.Categories
		s.selected = min(s.selected, max(len(s.sessions)-1, 0))
		return s, nil

	case attemptsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.attempts[msg.SessionID] = msg.Attempts
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			if len(s.sessions) == 0 {
				return s, nil
			}
			id := s.sessions[s.selected].SessionID
			s.expanded[id] = !s.expanded[id]
			if _, ok := s.attempts[id]; s.expanded[id] && !ok {
				return s, s.loadAttempts(id)
			}
		case "f":
			s.filter = (s.filter + 1) % len(modeFilters)
			s.loaded = false
			s.selected = 0
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return layout.Centered(width, theme.Hint, "\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return layout.Centered(width, theme.Hint.Italic(true), "\n\n  No sessions yet. Start a drill!")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	if len(s.categories) > 0 {
		b.WriteString(components.TitledPanel("Accuracy by category", renderCategories(s.categories, cw-4), cw))
		b.WriteString("\n\n")
	}

	for i, sess := range s.sessions {
		b.WriteString(renderSession(sess, i == s.selected))
		b.WriteString("\n")
		if s.expanded[sess.SessionID] {
			b.WriteString(s.renderAttempts(sess.SessionID))
		}
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}

func (s *HistoryScreen) renderAttempts(sessionID string) string {
	attempts, ok := s.attempts[sessionID]
	if !ok {
		return theme.Hint.Render("      loading...") + "\n"
	}
	if len(attempts) == 0 {
		return theme.Hint.Italic(true).Render("      No attempts recorded") + "\n"
	}

	var b strings.Builder
	for _, a := range attempts {
		style := verdictStyle(a.Verdict)
		line := fmt.Sprintf("      %2d. %s  %-10s %-6s %+d", a.Position+1, verdictMark(a.Verdict, a.TimedOut), a.Category, a.Difficulty, a.Points)
		if a.Answer != "" {
			line += "  " + truncate(a.Answer, 30)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSession(sess store.SessionRecord, selected bool) string {
	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		prefix = "▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}

	dur := layout.FormatDuration(int(sess.DurationMs / 1000))
	line := fmt.Sprintf("%s%s  %-5s  %3d pts  %d/%d correct  %.0f%%  %s",
		prefix,
		sess.Timestamp.Local().Format("Jan 02 15:04"),
		sess.Mode,
		sess.Score,
		sess.Correct, sess.Total,
		sess.Accuracy()*100,
		dur,
	)
	if sess.Retry {
		line += "  (retry)"
	}
	return style.Render(line)
}

func renderCategories(cats []store.CategoryAccuracy, width int) string {
	barWidth := max(width-24, 10)
	lines := make([]string, 0, len(cats))
	for _, c := range cats {
		bar := components.NewProgressBar("", c.Accuracy(), false, barWidth).View()
		lines = append(lines, fmt.Sprintf("%-12s %s %3.0f%%  %d", truncate(c.Category, 12), bar, c.Accuracy()*100, c.Attempted))
	}
	return strings.Join(lines, "\n")
}

func verdictMark(v string, timedOut bool) string {
	switch {
	case timedOut:
		return "⏱"
	case v == string(scoring.VerdictCorrect):
		return "✓"
	case v == string(scoring.VerdictIncorrect):
		return "✗"
	default:
		return "–"
	}
}

func verdictStyle(v string) lipgloss.Style {
	switch v {
	case string(scoring.VerdictCorrect):
		return theme.Correct
	case string(scoring.VerdictIncorrect):
		return theme.Incorrect
	default:
		return theme.Skipped
	}
}

func filterName(f string) string {
	if f == "" {
		return "all"
	}
	return f
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
