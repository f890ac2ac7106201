package catalog

// MatcherKind tags the variant held by a Matcher.
type MatcherKind int

const (
	// MatchExact compares against a single expected value.
	MatchExact MatcherKind = iota
	// MatchAnyOf accepts a submission matching any pattern, in order.
	MatchAnyOf
)

func (k MatcherKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchAnyOf:
		return "any-of"
	default:
		return "unknown"
	}
}

// Matcher describes how a submission for a problem is judged:
// ExactValue(Value) or AnyOf(Patterns).
type Matcher struct {
	Kind     MatcherKind
	Value    string
	Patterns []Pattern
}

// ExactValue builds a MatchExact matcher.
func ExactValue(v string) Matcher {
	return Matcher{Kind: MatchExact, Value: v}
}

// AnyOf builds a MatchAnyOf matcher.
func AnyOf(patterns ...Pattern) Matcher {
	return Matcher{Kind: MatchAnyOf, Patterns: patterns}
}

// Matcher derives the problem's matcher. An empty pattern list means the
// submission is compared with ExpectedOutput.
func (p Problem) Matcher() Matcher {
	if len(p.Patterns) > 0 {
		return AnyOf(p.Patterns...)
	}
	return ExactValue(p.ExpectedOutput)
}
