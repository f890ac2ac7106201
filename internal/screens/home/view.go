package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

const titleFull = ` ┌─┐┌─┐┌┬┐┌─┐  ┌┬┐┬─┐┬┬  ┬  ┌─┐
 │  │ │ ││├┤    ││├┬┘││  │  └─┐
 └─┘└─┘─┴┘└─┘  ─┴┘┴└─┴┴─┘┴─┘└─┘`

const titleCompact = "C O D E   D R I L L S"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	text := titleFull
	if compact {
		text = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(text))
}

// renderStatsBar shows the catalog size and the best recorded scores.
func renderStatsBar(problems, categories, runs int, best map[session.Mode]int, cw int) string {
	num := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := []string{
		num.Render(fmt.Sprint(problems)) + dim.Render(" problems"),
		num.Render(fmt.Sprint(categories)) + dim.Render(" categories"),
		num.Render(fmt.Sprint(runs)) + dim.Render(" runs"),
	}
	for _, mode := range []session.Mode{session.ModeDrill, session.ModeQuiz} {
		if score, ok := best[mode]; ok {
			parts = append(parts, dim.Render("best "+strings.ToLower(mode.DisplayName())+" ")+num.Render(fmt.Sprint(score)))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, "   "))
}

// renderHintBanner notes that only authored hints are available.
func renderHintBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("Set an LLM API key for AI hints (see codedrills --help)")
}

func renderMenu(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Align(lipgloss.Left).Render(m.View()))
}

// renderFrame wraps content in a double border, centered in the given
// area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
