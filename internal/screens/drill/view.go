package drill

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/scoring"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

func (s *DrillScreen) View(width, height int) string {
	if s.confirmingEnd {
		return renderEndConfirm(width, height)
	}
	p, ok := s.engine.CurrentProblem()
	if !ok {
		return layout.Centered(width, theme.Hint, "\n\nSession finished.")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(s.renderInfoLine(p, width))
	b.WriteString("\n")
	prog := s.engine.Progress()
	b.WriteString("  " + components.NewCountBar("", prog.Index, prog.Total, width-4).View())
	b.WriteString("\n")
	if rem, ok := s.engine.Remaining(); ok {
		b.WriteString("  " + components.NewCountdownBar(rem, s.engine.Config().TimeLimit, width-4).View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.last != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderFeedback(s.last, cw)))
		b.WriteString("\n")
	}

	body := theme.Selected.Render(p.DisplayTitle()) + "\n\n" +
		theme.Body.Width(cw-4).Render(p.Prompt)
	if p.Setup != "" {
		body += "\n\n" + components.CodeBlock(p.Setup, cw-4)
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Panel(body, cw)))
	b.WriteString("\n\n")

	if s.quiz() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(cw).Render("Answer: "+s.input.View())))
	}
	b.WriteString("\n")

	if len(s.hints) > 0 || s.hintWait {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderHints(cw)))
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString(layout.Centered(width, theme.Hint, s.notice))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *DrillScreen) renderInfoLine(p catalog.Problem, width int) string {
	prog := s.engine.Progress()
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s  ·  %s", p.Category, p.Difficulty.DisplayName()))

	right := fmt.Sprintf("Q %d/%d", prog.Index+1, prog.Total)
	if rem, ok := s.engine.Remaining(); ok {
		style := lipgloss.NewStyle().Foreground(theme.Accent)
		if rem <= 5*time.Second {
			style = style.Foreground(theme.Error).Bold(true)
		}
		right += "  " + style.Render("⏱ "+layout.FormatDuration(int((rem+time.Second-1)/time.Second)))
	}
	right = lipgloss.NewStyle().Foreground(theme.TextDim).Render(right)

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *DrillScreen) renderHints(cw int) string {
	var b strings.Builder
	for i, h := range s.hints {
		label := fmt.Sprintf("Hint %d", i+1)
		if h.Generated() {
			label += " (AI)"
		}
		b.WriteString(theme.Hint.Render(label+": ") + theme.Body.Render(h.Text))
		b.WriteString("\n")
	}
	if s.hintWait {
		b.WriteString(theme.Hint.Render("Thinking of a hint..."))
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.TrimRight(b.String(), "\n"))
}

func renderFeedback(f *feedback, cw int) string {
	a := f.attempt
	var line string
	switch {
	case a.Verdict == scoring.VerdictCorrect:
		line = theme.Correct.Render(fmt.Sprintf("✓ Correct  +%d", a.Points))
		if scoring.IsStreakMilestone(f.streak) {
			line += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(streakCallout(f.streak))
		}
	case a.Verdict == scoring.VerdictIncorrect:
		line = theme.Incorrect.Render("✗ Not quite.")
	case a.TimedOut:
		line = theme.Skipped.Render("⏱ Time's up.")
	default:
		line = theme.Skipped.Render("Skipped.")
	}
	if a.Verdict != scoring.VerdictCorrect {
		if ref := referenceAnswer(f.problem, f.quiz); ref != "" {
			line += "  " + theme.Hint.Render("Expected: ") + theme.Body.Render(ref)
		}
	}
	return lipgloss.NewStyle().Width(cw).Render(line)
}

func streakCallout(n int) string {
	return fmt.Sprintf("🔥 %d in a row!", n)
}

// referenceAnswer is the answer shown after a miss.
func referenceAnswer(p catalog.Problem, quiz bool) string {
	if quiz {
		if c, ok := p.Choice(p.Answer); ok {
			return fmt.Sprintf("%s) %s", c.ID, c.Text)
		}
	}
	if p.SampleAnswer != "" {
		return p.SampleAnswer
	}
	return p.ExpectedOutput
}

func renderEndConfirm(width, height int) string {
	box := components.Panel(
		theme.Selected.Render("End this session?")+"\n\n"+
			theme.Body.Render("Unanswered problems will not be counted.")+"\n\n"+
			theme.Hint.Render("Y to end, N to keep going"),
		min(width-4, 50))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

