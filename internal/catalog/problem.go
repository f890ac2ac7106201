package catalog

import "strings"

// Difficulty is the authored difficulty of a problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// DifficultyAll is a filter value only; no problem carries it.
	DifficultyAll Difficulty = "all"
)

// AllDifficulties returns the problem difficulties in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty parses a difficulty or filter value. The empty string
// parses as DifficultyAll.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", DifficultyAll:
		return DifficultyAll, true
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyHard:
		return DifficultyHard, true
	}
	return "", false
}

// Rank orders difficulties: easy < medium < hard. Unknown values rank 0.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// Valid reports whether d is a problem difficulty (not a filter value).
func (d Difficulty) Valid() bool {
	return d.Rank() > 0
}

// DisplayName returns a human-readable difficulty label.
func (d Difficulty) DisplayName() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	case DifficultyAll:
		return "All"
	default:
		return string(d)
	}
}

// Pattern is one authored validation matcher. Exactly one of Regex or
// Literal is set.
type Pattern struct {
	Regex         string `json:"regex,omitempty" yaml:"regex,omitempty"`
	Literal       string `json:"literal,omitempty" yaml:"literal,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
}

// IsLiteral reports whether the pattern is a literal rather than a regex.
func (p Pattern) IsLiteral() bool {
	return p.Regex == "" && p.Literal != ""
}

// Choice is one option of a multiple-choice problem.
type Choice struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Problem is a single authored practice problem. Problems are data only;
// matching lives in the validator package.
type Problem struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title,omitempty" yaml:"title,omitempty"`
	Category       string     `json:"category" yaml:"category"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	Prompt         string     `json:"prompt" yaml:"prompt"`
	Setup          string     `json:"setup,omitempty" yaml:"setup,omitempty"`
	ExpectedOutput string     `json:"expectedOutput,omitempty" yaml:"expectedOutput,omitempty"`
	SampleAnswer   string     `json:"sampleAnswer,omitempty" yaml:"sampleAnswer,omitempty"`
	Patterns       []Pattern  `json:"validationPatterns,omitempty" yaml:"validationPatterns,omitempty"`
	Hints          []string   `json:"hints,omitempty" yaml:"hints,omitempty"`
	Tags           []string   `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Choices and Answer are set for problems usable in quiz mode.
	// Answer is the ID of the correct choice.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Answer  string   `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// HasChoices reports whether the problem can be asked as multiple choice.
func (p Problem) HasChoices() bool {
	return len(p.Choices) > 0 && p.Answer != ""
}

// Choice returns the choice with the given id.
func (p Problem) Choice(id string) (Choice, bool) {
	for _, c := range p.Choices {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Choice{}, false
}

// DisplayTitle returns Title, falling back to ID.
func (p Problem) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}
