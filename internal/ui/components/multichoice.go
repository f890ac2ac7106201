package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

// MultiChoice selects one of a quiz problem's choices. It only tracks the
// cursor; grading is done by the caller.
type MultiChoice struct {
	Choices  []catalog.Choice
	Selected int

	// Chosen is the submitted choice ID, empty until Enter or a label key.
	Chosen string

	// Answer, once set, colors the correct and chosen rows.
	Answer string
}

// NewMultiChoice creates a selector over choices.
func NewMultiChoice(choices []catalog.Choice) MultiChoice {
	return MultiChoice{Choices: choices}
}

// Submitted reports whether a choice has been picked.
func (m MultiChoice) Submitted() bool {
	return m.Chosen != ""
}

// Reveal marks answer as the correct choice for rendering.
func (m *MultiChoice) Reveal(answer string) {
	m.Answer = answer
}

// Update handles navigation. A key matching a choice ID picks it directly.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted() {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
	case "enter":
		if m.Selected < len(m.Choices) {
			m.Chosen = m.Choices[m.Selected].ID
		}
	default:
		for i, c := range m.Choices {
			if strings.EqualFold(c.ID, key) {
				m.Selected = i
				m.Chosen = c.ID
				break
			}
		}
	}

	return m, nil
}

// View renders the choices.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, c := range m.Choices {
		prefix := "  "
		if i == m.Selected && !m.Submitted() {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, c.ID, c.Text)

		style := theme.Unselected
		switch {
		case m.Answer != "" && strings.EqualFold(c.ID, m.Answer):
			style = theme.Correct
		case m.Answer != "" && strings.EqualFold(c.ID, m.Chosen):
			style = theme.Incorrect
		case m.Answer != "":
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
