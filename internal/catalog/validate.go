package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// LoadError describes one authoring problem found while building a catalog.
type LoadError struct {
	Source    string
	ProblemID string
	Err       error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.ProblemID != "" {
		fmt.Fprintf(&b, "problem %q: ", e.ProblemID)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var (
	ErrDuplicateID       = errors.New("duplicate problem id")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidPattern    = errors.New("invalid validation pattern")
	ErrInvalidAnswer     = errors.New("answer is not one of the choices")
)

// validateProblems performs all structural checks on the problem set and
// returns every error found joined together, or nil.
func validateProblems(problems []Problem) error {
	var errs []error
	add := func(id string, err error) {
		errs = append(errs, &LoadError{ProblemID: id, Err: err})
	}

	seen := make(map[string]bool, len(problems))
	for i, p := range problems {
		if p.ID == "" {
			add("", fmt.Errorf("%w: id (index %d)", ErrMissingField, i))
			continue
		}
		if seen[p.ID] {
			add(p.ID, ErrDuplicateID)
		}
		seen[p.ID] = true

		if p.Category == "" {
			add(p.ID, fmt.Errorf("%w: category", ErrMissingField))
		}
		if strings.EqualFold(p.Category, string(DifficultyAll)) {
			add(p.ID, fmt.Errorf("category %q is reserved", p.Category))
		}
		if !p.Difficulty.Valid() {
			add(p.ID, fmt.Errorf("%w: %q", ErrInvalidDifficulty, p.Difficulty))
		}
		if p.Prompt == "" {
			add(p.ID, fmt.Errorf("%w: prompt", ErrMissingField))
		}

		for j, pat := range p.Patterns {
			if err := checkPattern(pat); err != nil {
				add(p.ID, fmt.Errorf("%w %d: %v", ErrInvalidPattern, j, err))
			}
		}

		if len(p.Choices) > 0 {
			ids := make(map[string]bool, len(p.Choices))
			for _, c := range p.Choices {
				key := strings.ToLower(c.ID)
				if c.ID == "" || ids[key] {
					add(p.ID, fmt.Errorf("choice ids must be unique and non-empty"))
					break
				}
				ids[key] = true
			}
			if _, ok := p.Choice(p.Answer); !ok {
				add(p.ID, fmt.Errorf("%w: %q", ErrInvalidAnswer, p.Answer))
			}
		}
	}

	return errors.Join(errs...)
}

func checkPattern(p Pattern) error {
	switch {
	case p.Regex != "" && p.Literal != "":
		return errors.New("regex and literal are mutually exclusive")
	case p.Regex == "" && p.Literal == "":
		return errors.New("empty pattern")
	case p.Regex != "":
		_, err := regexp.Compile(p.Regex)
		return err
	}
	return nil
}
