package browse

import (
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
	"github.com/abhisek/codedrills/internal/ui/theme"
	"github.com/abhisek/codedrills/internal/validator"
)

// practiceScreen shows one problem and checks attempts without scoring
// or recording them.
type practiceScreen struct {
	problem   catalog.Problem
	validator *validator.Validator

	input   components.TextInput
	choices components.MultiChoice
	quiz    bool

	hintsShown int
	revealed   bool
	checked    bool
	verdict    validator.Verdict
}

var (
	_ screen.Screen          = (*practiceScreen)(nil)
	_ screen.KeyHintProvider = (*practiceScreen)(nil)
)

func newPracticeScreen(p catalog.Problem, v *validator.Validator) *practiceScreen {
	s := &practiceScreen{problem: p, validator: v}
	s.reset()
	return s
}

func (s *practiceScreen) reset() {
	s.checked = false
	s.verdict = validator.Verdict{}
	s.quiz = s.problem.HasChoices() && len(s.problem.Patterns) == 0
	if s.quiz {
		s.choices = components.NewMultiChoice(s.problem.Choices)
		return
	}
	s.input = components.NewAnswerInput("Type your answer and press Enter")
}

func (s *practiceScreen) Init() tea.Cmd {
	if s.quiz {
		return nil
	}
	return s.input.Init()
}

func (s *practiceScreen) Title() string {
	return s.problem.DisplayTitle()
}

func (s *practiceScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Check"},
		{Key: "Ctrl+G", Description: "Hint"},
		{Key: "Ctrl+R", Description: "Reveal"},
	}
	if s.checked {
		hints[0] = layout.KeyHint{Key: "Ctrl+T", Description: "Try again"}
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *practiceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.quiz {
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch kmsg.String() {
	case "ctrl+g":
		if s.hintsShown < len(s.problem.Hints) {
			s.hintsShown++
		}
		return s, nil
	case "ctrl+r":
		s.revealed = true
		return s, nil
	case "ctrl+t":
		if !s.checked {
			return s, nil
		}
		if s.quiz {
			s.reset()
			return s, nil
		}
		s.checked = false
		s.verdict = validator.Verdict{}
		return s, s.input.Retry()
	}

	if s.checked {
		return s, nil
	}

	if s.quiz {
		s.choices, _ = s.choices.Update(msg)
		if s.choices.Submitted() {
			s.verdict = s.validator.ValidateChoice(s.problem, s.choices.Chosen)
			s.choices.Reveal(s.problem.Answer)
			s.checked = true
		}
		return s, nil
	}

	if kmsg.String() == "enter" {
		if s.input.Blank() {
			return s, nil
		}
		s.verdict = s.validator.Validate(s.problem, s.input.Value())
		s.input.Submit(s.verdict.Correct)
		s.checked = true
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *practiceScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	p := s.problem

	meta := lipgloss.NewStyle().Foreground(difficultyColor(p.Difficulty)).Render(p.Difficulty.DisplayName()) +
		theme.Hint.Render("  ·  "+p.Category)
	if len(p.Tags) > 0 {
		meta += theme.Hint.Render("  ·  " + strings.Join(p.Tags, ", "))
	}

	body := theme.Body.Width(cw - 4).Render(p.Prompt)
	if p.Setup != "" {
		body += "\n\n" + components.CodeBlock(p.Setup, cw-4)
	}
	if p.ExpectedOutput != "" {
		body += "\n\n" + theme.Hint.Render("Expected output:") + "\n" + components.CodeBlock(p.ExpectedOutput, cw-4)
	}

	sections := []string{
		"  " + meta,
		components.TitledPanel(p.DisplayTitle(), body, cw),
	}

	if s.quiz {
		sections = append(sections, s.choices.View())
	} else {
		sections = append(sections, "  "+s.input.View())
	}

	if s.checked {
		sections = append(sections, renderVerdict(s.verdict))
	}

	if s.hintsShown > 0 {
		var hb strings.Builder
		for i := 0; i < s.hintsShown; i++ {
			hb.WriteString("💡 " + p.Hints[i])
			if i < s.hintsShown-1 {
				hb.WriteString("\n")
			}
		}
		sections = append(sections, components.Panel(theme.Hint.Render(hb.String()), cw))
	} else if len(p.Hints) == 0 {
		sections = append(sections, theme.Hint.Render("  No hints for this problem."))
	}

	if s.revealed {
		sections = append(sections, components.TitledPanel("Sample answer", components.CodeBlock(sampleAnswer(p), cw-4), cw))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.NewStyle().MaxHeight(height).Render(content)
}

func renderVerdict(v validator.Verdict) string {
	if v.Correct {
		return theme.Correct.Render("  ✓ That answer would be accepted.")
	}
	return theme.Incorrect.Render("  ✗ Not accepted. Try again or reveal the sample answer.")
}

func sampleAnswer(p catalog.Problem) string {
	if p.SampleAnswer != "" {
		return p.SampleAnswer
	}
	if c, ok := p.Choice(p.Answer); ok {
		return c.ID + ") " + c.Text
	}
	for _, pat := range p.Patterns {
		if pat.IsLiteral() {
			return pat.Literal
		}
	}
	return "(no sample answer)"
}

func difficultyColor(d catalog.Difficulty) color.Color {
	switch d {
	case catalog.DifficultyEasy:
		return theme.Success
	case catalog.DifficultyMedium:
		return theme.Accent
	case catalog.DifficultyHard:
		return theme.Error
	default:
		return theme.TextDim
	}
}
