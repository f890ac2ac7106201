package setup

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/selector"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
)

func (s *SetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	rows := []string{
		s.row(fieldCategories, "Categories", s.renderCategories()),
		s.row(fieldDifficulty, "Difficulty", cycle(s.cfg.Difficulty.DisplayName())),
		s.row(fieldMode, "Mode", cycle(s.cfg.Mode.DisplayName())),
		s.row(fieldQuestions, "Questions", s.count.View()),
		s.row(fieldTime, "Seconds per question", s.timeSecs.View()),
	}

	start := theme.Unselected.Render("  Start")
	if s.focus == fieldStart {
		start = theme.Selected.Render("▸ Start")
	}
	rows = append(rows, "", start)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.TitledPanel(s.cfg.Mode.DisplayName()+" setup", strings.Join(rows, "\n"), cw)))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Hint, s.matchLine()))
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Incorrect, s.errMsg))
	}
	return b.String()
}

func (s *SetupScreen) row(f field, label, value string) string {
	prefix := "  "
	style := theme.Body
	if s.focus == f {
		prefix = "▸ "
		style = theme.Selected
	}
	return style.Render(fmt.Sprintf("%s%-22s", prefix, label)) + value
}

func cycle(v string) string {
	return theme.Hint.Render("‹ ") + theme.Body.Render(v) + theme.Hint.Render(" ›")
}

func (s *SetupScreen) renderCategories() string {
	items := append([]string{"all"}, s.categories...)
	parts := make([]string, len(items))
	for i, c := range items {
		on := len(s.chosen) == 0
		if i > 0 {
			on = s.chosen[c]
		}
		mark := "[ ]"
		if on {
			mark = "[x]"
		}
		label := mark + " " + c
		switch {
		case s.focus == fieldCategories && i == s.catCursor:
			parts[i] = theme.Selected.Underline(true).Render(label)
		case on:
			parts[i] = theme.Body.Render(label)
		default:
			parts[i] = theme.Hint.Render(label)
		}
	}
	return strings.Join(parts, "  ")
}

// matchLine previews how many problems the filters select.
func (s *SetupScreen) matchLine() string {
	if s.deps.Catalog == nil {
		return "No catalog loaded."
	}
	cfg, err := s.Config()
	if err != nil {
		return ""
	}
	n := len(selector.Filtered(s.deps.Catalog, cfg.Filter()))
	if cfg.QuestionCount > n {
		return fmt.Sprintf("%d problems match; the session will use all of them.", n)
	}
	return fmt.Sprintf("%d problems match; %d will be drawn%s.", n, cfg.QuestionCount, difficultyNote(cfg.Difficulty))
}

func difficultyNote(d catalog.Difficulty) string {
	if d == catalog.DifficultyAll || d == "" {
		return ""
	}
	return " at " + strings.ToLower(d.DisplayName()) + " difficulty"
}
