// Package setup is the form that configures a drill or quiz before it
// starts.
package setup

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/router"
	"github.com/abhisek/codedrills/internal/screen"
	"github.com/abhisek/codedrills/internal/screens/drill"
	"github.com/abhisek/codedrills/internal/session"
	"github.com/abhisek/codedrills/internal/ui/components"
	"github.com/abhisek/codedrills/internal/ui/layout"
)

type field int

const (
	fieldCategories field = iota
	fieldDifficulty
	fieldMode
	fieldQuestions
	fieldTime
	fieldStart
	numFields
)

var difficulties = []catalog.Difficulty{
	catalog.DifficultyAll,
	catalog.DifficultyEasy,
	catalog.DifficultyMedium,
	catalog.DifficultyHard,
}

var modes = []session.Mode{session.ModeDrill, session.ModeQuiz}

// SetupScreen collects a session.Config.
type SetupScreen struct {
	deps drill.Deps
	cfg  session.Config

	categories []string
	chosen     map[string]bool
	catCursor  int

	focus    field
	count    components.TextInput
	timeSecs components.TextInput
	errMsg   string
}

var (
	_ screen.Screen          = (*SetupScreen)(nil)
	_ screen.KeyHintProvider = (*SetupScreen)(nil)
)

// New creates a setup form prefilled from cfg.
func New(deps drill.Deps, cfg session.Config) *SetupScreen {
	s := &SetupScreen{
		deps:   deps,
		cfg:    cfg,
		chosen: make(map[string]bool),
	}
	if deps.Catalog != nil {
		s.categories = deps.Catalog.Categories()
	}
	for _, c := range cfg.Categories {
		if slices.Contains(s.categories, c) {
			s.chosen[c] = true
		}
	}
	if s.cfg.Difficulty == "" {
		s.cfg.Difficulty = catalog.DifficultyAll
	}
	if s.cfg.Mode == "" {
		s.cfg.Mode = session.ModeDrill
	}

	s.count = components.NewNumberInput("10", 3)
	if cfg.QuestionCount > 0 {
		s.count.SetValue(strconv.Itoa(cfg.QuestionCount))
	}
	s.timeSecs = components.NewNumberInput("0 = untimed", 4)
	if cfg.TimeLimit > 0 {
		s.timeSecs.SetValue(strconv.Itoa(int(cfg.TimeLimit / time.Second)))
	}
	s.setFocus(fieldCategories)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return s.cfg.Mode.DisplayName() + " Setup"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Field"}}
	switch s.focus {
	case fieldCategories:
		hints = append(hints,
			layout.KeyHint{Key: "←→", Description: "Category"},
			layout.KeyHint{Key: "Space", Description: "Toggle"})
	case fieldDifficulty, fieldMode:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Change"})
	case fieldQuestions, fieldTime:
		hints = append(hints, layout.KeyHint{Key: "0-9", Description: "Edit"})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Start"},
		layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.forward(msg)
	}

	switch kmsg.String() {
	case "up", "shift+tab":
		s.setFocus((s.focus + numFields - 1) % numFields)
		return s, nil
	case "down", "tab":
		s.setFocus((s.focus + 1) % numFields)
		return s, nil
	case "enter":
		return s, s.start()
	case "left", "h":
		s.change(-1)
		return s, nil
	case "right", "l":
		s.change(1)
		return s, nil
	case "space", " ":
		if s.focus == fieldCategories {
			s.toggleCategory()
			return s, nil
		}
	}
	return s, s.forward(msg)
}

func (s *SetupScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldQuestions:
		s.count, cmd = s.count.Update(msg)
	case fieldTime:
		s.timeSecs, cmd = s.timeSecs.Update(msg)
	}
	return cmd
}

func (s *SetupScreen) setFocus(f field) {
	s.focus = f
	s.count.Blur()
	s.timeSecs.Blur()
	switch f {
	case fieldQuestions:
		s.count.Focus()
	case fieldTime:
		s.timeSecs.Focus()
	}
}

func (s *SetupScreen) change(delta int) {
	switch s.focus {
	case fieldCategories:
		// Position 0 is "all"; categories follow.
		n := len(s.categories) + 1
		s.catCursor = (s.catCursor + delta + n) % n
	case fieldDifficulty:
		i := slices.Index(difficulties, s.cfg.Difficulty)
		s.cfg.Difficulty = difficulties[(i+delta+len(difficulties))%len(difficulties)]
	case fieldMode:
		i := slices.Index(modes, s.cfg.Mode)
		s.cfg.Mode = modes[(i+delta+len(modes))%len(modes)]
	}
}

func (s *SetupScreen) toggleCategory() {
	if s.catCursor == 0 {
		clear(s.chosen)
		return
	}
	c := s.categories[s.catCursor-1]
	s.chosen[c] = !s.chosen[c]
	if !s.chosen[c] {
		delete(s.chosen, c)
	}
}

// Config returns the configuration the form currently describes.
func (s *SetupScreen) Config() (session.Config, error) {
	cfg := s.cfg
	cfg.Categories = nil
	for _, c := range s.categories {
		if s.chosen[c] {
			cfg.Categories = append(cfg.Categories, c)
		}
	}

	n, err := s.count.NumericValue()
	if err != nil {
		return cfg, fmt.Errorf("question count must be a number")
	}
	cfg.QuestionCount = n

	cfg.TimeLimit = 0
	if v := s.timeSecs.Value(); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("time limit must be a number of seconds")
		}
		cfg.TimeLimit = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// start builds the drill screen; configuration errors stay on the form.
func (s *SetupScreen) start() tea.Cmd {
	cfg, err := s.Config()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	d, err := drill.New(s.deps, cfg)
	if err != nil {
		s.errMsg = describe(err)
		return nil
	}
	s.errMsg = ""
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: d} }
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrNoProblems):
		return "No problems match these filters. Widen the categories or difficulty."
	case errors.Is(err, session.ErrInvalidCount):
		return "Choose at least one question."
	case errors.Is(err, session.ErrInvalidTimeLimit):
		return "The time limit cannot be negative."
	default:
		return err.Error()
	}
}
