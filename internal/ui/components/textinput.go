package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codedrills/internal/ui/theme"
)

// TextInput is a styled single-line input for answers and numeric form
// fields. After Submit it is read-only and shows the verdict mark.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	submitted   bool
	valid       bool
}

// NewAnswerInput returns a focused input for a typed answer of any length.
func NewAnswerInput(placeholder string) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()
	return TextInput{Model: ti}
}

// NewNumberInput returns an unfocused input that accepts up to digits
// decimal digits.
func NewNumberInput(placeholder string, digits int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = digits
	return TextInput{Model: ti, NumericOnly: true}
}

// Init starts the cursor blinking.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Focus gives the input the keyboard.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur takes the keyboard away.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Update handles messages. Non-digit keys are dropped for numeric inputs.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.submitted {
		return t, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok && t.NumericOnly {
		if k := kmsg.String(); len(k) == 1 && (k[0] < '0' || k[0] > '9') {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	if !t.submitted {
		return view
	}
	if t.valid {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}

// Value returns the text as typed.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Blank reports whether only whitespace has been typed.
func (t TextInput) Blank() bool {
	return strings.TrimSpace(t.Model.Value()) == ""
}

func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// NumericValue parses the value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(strings.TrimSpace(t.Model.Value()))
}

// Submit freezes the input and records whether the answer was accepted.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}

// Submitted reports whether Submit has been called.
func (t TextInput) Submitted() bool {
	return t.submitted
}

// Retry unfreezes a submitted input, keeping the text for editing.
func (t *TextInput) Retry() tea.Cmd {
	t.submitted = false
	t.valid = false
	t.Model.CursorEnd()
	return t.Model.Focus()
}
