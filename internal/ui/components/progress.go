package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/ui/theme"
)

// urgentFraction is the share of a countdown left when its bar turns red.
const urgentFraction = 0.25

// ProgressBar renders a fraction as a horizontal bar with an optional
// label in front and a suffix such as "60%" or "3/10" behind it.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string
	// Urgent fills the bar in the error color.
	Urgent bool
	Width  int
}

// NewProgressBar returns a bar for percent, a fraction in [0, 1]. With
// showPercent the bar ends in the rounded percentage.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	p := ProgressBar{Label: label, Percent: percent, Width: width}
	if showPercent {
		p.Suffix = fmt.Sprintf("%d%%", int(clamp01(percent)*100+0.5))
	}
	return p
}

// NewCountBar returns a bar for n of total done, e.g. questions answered
// in a run.
func NewCountBar(label string, n, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(n) / float64(total)
	}
	return ProgressBar{Label: label, Percent: pct, Suffix: fmt.Sprintf("%d/%d", n, total), Width: width}
}

// NewCountdownBar returns a draining bar for the time left on a question.
// It turns urgent in the last quarter of the limit.
func NewCountdownBar(remaining, limit time.Duration, width int) ProgressBar {
	if limit <= 0 {
		return ProgressBar{Width: width}
	}
	pct := float64(remaining) / float64(limit)
	return ProgressBar{Percent: pct, Urgent: pct <= urgentFraction, Width: width}
}

// View renders the bar.
func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  ")
	}

	suffix := ""
	if p.Suffix != "" {
		suffix = "  " + p.Suffix
	}
	barWidth := max(p.Width-lipgloss.Width(b.String())-lipgloss.Width(suffix), 4)
	filled := int(float64(barWidth) * clamp01(p.Percent))

	fill := theme.ProgressFilled
	if p.Urgent {
		fill = theme.ProgressUrgent
	}
	b.WriteString(fill.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))
	if suffix != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	}
	return b.String()
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}
