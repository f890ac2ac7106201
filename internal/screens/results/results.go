// Package results shows the summary of a finished drill or quiz and
// offers the retry edges back into the session.
package results

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

// RetrySameMsg asks the drill screen to replay the same problems.
type RetrySameMsg struct{}

// RetryNewMsg asks the drill screen for a fresh selection with the same
// settings.
type RetryNewMsg struct{}

// ChangeSetupMsg asks the drill screen to go back to the setup form.
type ChangeSetupMsg struct{}

// ResultsScreen displays a session summary.
type ResultsScreen struct {
	summary  session.Summary
	showList bool
}

var (
	_ screen.Screen          = (*ResultsScreen)(nil)
	_ screen.KeyHintProvider = (*ResultsScreen)(nil)
	_ screen.StatusProvider  = (*ResultsScreen)(nil)
	_ screen.KeyCapturer     = (*ResultsScreen)(nil)
)

// New creates a ResultsScreen for summary.
func New(summary session.Summary) *ResultsScreen {
	return &ResultsScreen{summary: summary}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return s.summary.Mode.DisplayName() + " Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Retry same"},
		{Key: "N", Description: "New problems"},
		{Key: "C", Description: "Change setup"},
		{Key: "A", Description: "Answers"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *ResultsScreen) Status() layout.Status {
	return layout.Status{Score: s.summary.TotalPoints, Streak: s.summary.MaxStreak, Final: true, Shown: true}
}

func (s *ResultsScreen) CapturesEsc() bool {
	return true
}

// Summary returns the summary being shown.
func (s *ResultsScreen) Summary() session.Summary {
	return s.summary
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "r", "R":
		return s, popThen(RetrySameMsg{})
	case "n", "N":
		return s, popThen(RetryNewMsg{})
	case "c", "C":
		return s, popThen(ChangeSetupMsg{})
	case "a", "A":
		s.showList = !s.showList
		return s, nil
	case "esc", "enter":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

// popThen removes this screen and then delivers msg to the screen below.
func popThen(msg tea.Msg) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg { return router.PopScreenMsg{} },
		func() tea.Msg { return msg },
	)
}

func (s *ResultsScreen) View(width, height int) string {
	sum := s.summary
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, headline(sum)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Subtitle,
		fmt.Sprintf("%s  ·  seed %d", layout.FormatDuration(int(sum.Elapsed/time.Second)), sum.Seed)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score %d    Correct %d    Incorrect %d    Skipped %d    Accuracy %.0f%%    Best streak %d",
		sum.TotalPoints, sum.CorrectCount, sum.IncorrectCount, sum.SkippedCount, sum.Accuracy*100, sum.MaxStreak)
	b.WriteString(layout.Centered(width, theme.Body, stats))
	b.WriteString("\n")
	if sum.MaxScore > 0 {
		bar := components.NewProgressBar("Score", float64(sum.TotalPoints)/float64(sum.MaxScore), false, cw)
		bar.Suffix = fmt.Sprintf("%d / %d", sum.TotalPoints, sum.MaxScore)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	if sum.TimedOutCount > 0 || sum.Unattempted() > 0 {
		b.WriteString(layout.Centered(width, theme.Hint,
			fmt.Sprintf("%d timed out, %d not reached", sum.TimedOutCount, sum.Unattempted())))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.showList {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.TitledPanel("Answers", attemptLines(sum), cw)))
		return b.String()
	}

	if len(sum.Breakdown) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.TitledPanel("By category", breakdownBars(sum, cw-4), cw)))
		b.WriteString("\n")
	}
	if !layout.IsCompactHeight(height) && len(sum.ByDifficulty) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.TitledPanel("By difficulty", difficultyLine(sum), cw)))
	}
	return b.String()
}

func headline(sum session.Summary) string {
	switch {
	case sum.TotalCount == 0:
		return "Session ended"
	case sum.CorrectCount == sum.TotalCount && sum.Unattempted() == 0:
		return "Perfect run!"
	case sum.Accuracy >= 0.7:
		return "Nice work!"
	default:
		return "Session complete"
	}
}

func breakdownBars(sum session.Summary, width int) string {
	var b strings.Builder
	labelWidth := 0
	for _, c := range sum.Categories() {
		labelWidth = max(labelWidth, len(c))
	}
	for _, c := range sum.Categories() {
		e := sum.Breakdown[c]
		label := fmt.Sprintf("%-*s %2d/%-2d", labelWidth, c, e.Correct, e.Attempted)
		b.WriteString(components.NewProgressBar(label, e.Accuracy(), true, width).View())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func difficultyLine(sum session.Summary) string {
	var parts []string
	for _, d := range catalog.AllDifficulties() {
		e, ok := sum.ByDifficulty[d]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", d.DisplayName(), e.Correct, e.Attempted))
	}
	return theme.Body.Render(strings.Join(parts, "    "))
}

func attemptLines(sum session.Summary) string {
	if len(sum.Attempts) == 0 {
		return theme.Hint.Render("No answers recorded.")
	}
	var b strings.Builder
	for i, a := range sum.Attempts {
		mark, style := verdictMark(a)
		line := fmt.Sprintf("%2d. %s %-28s %+4d  %5.1fs", i+1, mark, a.ProblemID, a.Points, a.TimeTaken.Seconds())
		if a.HintsUsed > 0 {
			line += fmt.Sprintf("  %d hint(s)", a.HintsUsed)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func verdictMark(a session.Attempt) (string, lipgloss.Style) {
	switch {
	case a.Verdict == scoring.VerdictCorrect:
		return "✓", theme.Correct
	case a.Verdict == scoring.VerdictIncorrect:
		return "✗", theme.Incorrect
	case a.TimedOut:
		return "⏱", theme.Skipped
	default:
		return "–", theme.Skipped
	}
}
