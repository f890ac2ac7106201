package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/codedrills/internal/catalog"
)

// NoMatch is the MatchedPattern value of a verdict that matched no pattern.
const NoMatch = -1

// Verdict is the outcome of judging one submission.
type Verdict struct {
	Correct bool

	// MatchedPattern is the index of the first pattern that accepted the
	// submission, or NoMatch.
	MatchedPattern int

	// Ambiguous lists the indices of later patterns that also accepted
	// the submission. Only the first match counts. It is filled only
	// when the validator's logger is enabled at warn level.
	Ambiguous []int
}

// IsAmbiguous reports whether more than one pattern accepted the submission.
func (v Verdict) IsAmbiguous() bool {
	return len(v.Ambiguous) > 0
}

func incorrect() Verdict {
	return Verdict{MatchedPattern: NoMatch}
}

// Validator judges submissions against a problem's matcher. Submissions are
// compared as text and are never executed. A Validator is safe for
// concurrent use; compiled patterns are cached across calls.
type Validator struct {
	logger *slog.Logger
	cache  sync.Map // pattern source -> *regexp.Regexp
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used to report ambiguous matches.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate judges answer against the problem.
//
// Rules:
//   - The answer is normalized first (see Normalize); an empty answer is
//     always incorrect
//   - With validation patterns, patterns are tried in order and the first
//     match wins; regex patterns are case-insensitive unless marked
//     case-sensitive, literals compare after normalization
//   - Without patterns, the answer must equal the expected output; when the
//     expected output is a JSON value such as an array or object, both sides
//     are decoded and compared by value
func (v *Validator) Validate(p catalog.Problem, answer string) Verdict {
	submitted := Normalize(answer)
	if submitted == "" {
		return incorrect()
	}

	m := p.Matcher()
	switch m.Kind {
	case catalog.MatchAnyOf:
		return v.matchAny(p.ID, m.Patterns, submitted)
	case catalog.MatchExact:
		if equalValue(m.Value, submitted) {
			return Verdict{Correct: true, MatchedPattern: NoMatch}
		}
	}
	return incorrect()
}

// ValidateChoice judges a multiple-choice selection. The selection matches
// when it is the correct option's id, its 1-based position, or its text.
func (v *Validator) ValidateChoice(p catalog.Problem, selected string) Verdict {
	selected = strings.TrimSpace(selected)
	if selected == "" || !p.HasChoices() {
		return incorrect()
	}

	if strings.EqualFold(selected, p.Answer) {
		return Verdict{Correct: true, MatchedPattern: NoMatch}
	}
	if _, isID := p.Choice(selected); isID {
		return incorrect()
	}

	if idx, err := strconv.Atoi(selected); err == nil && idx >= 1 && idx <= len(p.Choices) {
		if strings.EqualFold(p.Choices[idx-1].ID, p.Answer) {
			return Verdict{Correct: true, MatchedPattern: NoMatch}
		}
		return incorrect()
	}

	want, _ := p.Choice(p.Answer)
	if strings.EqualFold(Normalize(selected), Normalize(want.Text)) {
		return Verdict{Correct: true, MatchedPattern: NoMatch}
	}
	return incorrect()
}

// SelfTest checks that the problem's sample answer is accepted and, for
// multiple-choice problems, that the answer option validates.
func (v *Validator) SelfTest(p catalog.Problem) error {
	if p.SampleAnswer != "" {
		if !v.Validate(p, p.SampleAnswer).Correct {
			return fmt.Errorf("problem %q: sample answer %q is rejected", p.ID, p.SampleAnswer)
		}
	} else if len(p.Patterns) == 0 && p.ExpectedOutput == "" {
		return fmt.Errorf("problem %q: no sample answer, patterns or expected output", p.ID)
	}
	if p.HasChoices() && !v.ValidateChoice(p, p.Answer).Correct {
		return fmt.Errorf("problem %q: answer %q does not validate", p.ID, p.Answer)
	}
	return nil
}

// matchAny stops at the first accepting pattern unless ambiguity is being
// logged, in which case the remaining patterns are tried too.
func (v *Validator) matchAny(problemID string, patterns []catalog.Pattern, submitted string) Verdict {
	verdict := incorrect()
	reportAmbiguity := v.logger.Enabled(context.Background(), slog.LevelWarn)
	for i, pat := range patterns {
		if !v.matchOne(problemID, pat, submitted) {
			continue
		}
		if !verdict.Correct {
			verdict.Correct = true
			verdict.MatchedPattern = i
			if !reportAmbiguity {
				break
			}
			continue
		}
		verdict.Ambiguous = append(verdict.Ambiguous, i)
	}

	if verdict.IsAmbiguous() {
		v.logger.Warn("validation ambiguity",
			"problem", problemID,
			"matched", verdict.MatchedPattern,
			"also_matched", verdict.Ambiguous)
	}
	return verdict
}

func (v *Validator) matchOne(problemID string, pat catalog.Pattern, submitted string) bool {
	if pat.IsLiteral() {
		lit := Normalize(pat.Literal)
		if pat.CaseSensitive {
			return lit == submitted
		}
		return strings.EqualFold(lit, submitted)
	}

	re, err := v.compile(pat)
	if err != nil {
		v.logger.Error("invalid validation pattern",
			"problem", problemID, "pattern", pat.Regex, "error", err)
		return false
	}
	return re.MatchString(submitted)
}

func (v *Validator) compile(pat catalog.Pattern) (*regexp.Regexp, error) {
	src := pat.Regex
	if !pat.CaseSensitive {
		src = "(?i)" + src
	}
	if cached, ok := v.cache.Load(src); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	v.cache.Store(src, re)
	return re, nil
}

// equalValue compares a normalized submission with an expected value.
// JSON values other than bare strings compare structurally.
func equalValue(expected, submitted string) bool {
	expected = Normalize(expected)
	if expected == "" {
		return false
	}

	if want, ok := decodeStructured(expected); ok {
		got, ok := decodeStructured(submitted)
		return ok && cmp.Equal(want, got)
	}
	return expected == submitted
}

func decodeStructured(s string) (any, bool) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, false
	}
	if _, isString := out.(string); isString {
		return nil, false
	}
	return out, true
}
