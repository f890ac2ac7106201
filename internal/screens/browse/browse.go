// Package browse lists the catalog by category and lets the learner try
// problems without scoring.
package browse

import (
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
	"github.com/abhisek/codedrills/internal/validator"
)

type rowKind int

const (
	rowCategoryHeader rowKind = iota
	rowProblem
)

type row struct {
	kind     rowKind
	category string
	problem  *catalog.Problem
}

// BrowseScreen displays the catalog organized by category.
type BrowseScreen struct {
	rows         []row
	cursor       int
	scrollOffset int
	validator    *validator.Validator
}

var (
	_ screen.Screen          = (*BrowseScreen)(nil)
	_ screen.KeyHintProvider = (*BrowseScreen)(nil)
)

// New creates a BrowseScreen over cat.
func New(cat *catalog.Catalog, logger *slog.Logger) *BrowseScreen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &BrowseScreen{validator: validator.New(validator.WithLogger(logger))}
	if cat == nil {
		return s
	}

	for _, c := range cat.Categories() {
		s.rows = append(s.rows, row{kind: rowCategoryHeader, category: c})
		problems := cat.ByCategory(c)
		for i := range problems {
			s.rows = append(s.rows, row{kind: rowProblem, category: c, problem: &problems[i]})
		}
	}

	for i, r := range s.rows {
		if r.kind == rowProblem {
			s.cursor = i
			break
		}
	}
	return s
}

func (s *BrowseScreen) Init() tea.Cmd {
	return nil
}

func (s *BrowseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextCategory()
		case "shift+tab":
			s.prevCategory()
		case "enter":
			return s, s.selectProblem()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *BrowseScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return layout.Centered(width, theme.Hint, "\n\nThe catalog is empty.")
	}

	s.adjustScroll(height)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < height; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowCategoryHeader:
			lines = append(lines, renderCategoryHeader(r.category, width))
		case rowProblem:
			lines = append(lines, renderProblemRow(*r.problem, i == s.cursor, width))
		}
	}
	return strings.Join(lines, "\n")
}

func (s *BrowseScreen) Title() string {
	return "Browse"
}

func (s *BrowseScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Category"},
		{Key: "Enter", Description: "Practice"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping category headers.
func (s *BrowseScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowProblem {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextCategory jumps to the first problem of the next category.
func (s *BrowseScreen) nextCategory() {
	current := s.rows[s.cursor].category
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowProblem && s.rows[i].category != current {
			s.cursor = i
			return
		}
	}
}

// prevCategory jumps to the first problem of the previous category.
func (s *BrowseScreen) prevCategory() {
	current := s.rows[s.cursor].category
	target := ""
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowProblem && s.rows[i].category != current {
			target = s.rows[i].category
			break
		}
	}
	if target == "" {
		return
	}
	for i, r := range s.rows {
		if r.kind == rowProblem && r.category == target {
			s.cursor = i
			return
		}
	}
}

// adjustScroll keeps the cursor, and its category header where possible,
// inside the viewport.
func (s *BrowseScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	top := s.cursor
	for top > 0 && s.rows[top-1].kind == rowCategoryHeader {
		top--
	}
	if top < s.scrollOffset {
		s.scrollOffset = top
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *BrowseScreen) selectProblem() tea.Cmd {
	r := s.rows[s.cursor]
	if r.kind != rowProblem || r.problem == nil {
		return nil
	}
	detail := newPracticeScreen(*r.problem, s.validator)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func renderCategoryHeader(category string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(category))
}

func renderProblemRow(p catalog.Problem, selected bool, width int) string {
	const (
		indent    = 4
		diffWidth = 8
		kindWidth = 6
		spacing   = 6
	)
	nameWidth := max(width-indent-diffWidth-kindWidth-spacing, 10)

	name := p.DisplayTitle()
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}
	kind := ""
	if p.HasChoices() {
		kind = "quiz"
	}

	nameStyle := theme.Unselected
	diffStyle := lipgloss.NewStyle().Foreground(difficultyColor(p.Difficulty))
	cursor := "  "
	if selected {
		nameStyle = theme.Selected
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s  %s  %s",
		cursor,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		diffStyle.Render(fmt.Sprintf("%-*s", diffWidth, p.Difficulty.DisplayName())),
		theme.Hint.Render(fmt.Sprintf("%-*s", kindWidth, kind)),
	)
}
