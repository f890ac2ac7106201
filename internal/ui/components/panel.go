package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/ui/theme"
)

// ContentWidth returns the inner width used for stacked panels so that
// they visually align.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 76)
}

// Panel wraps content in a rounded-border card of width cw.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}

// TitledPanel is Panel with a bold heading line.
func TitledPanel(title, content string, cw int) string {
	return Panel(theme.Selected.Render(title)+"\n"+content, cw)
}

// CodeBlock renders preformatted text, such as a problem setup, on the
// code background.
func CodeBlock(content string, cw int) string {
	return theme.Code.Width(cw - 2).Render(content)
}
