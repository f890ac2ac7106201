package scoring

import "github.com/abhisek/codedrills/internal/catalog"

// Verdict is the outcome recorded for one problem.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictSkipped   Verdict = "skipped"
)

// Tally is the running score of a session.
type Tally struct {
	Score     int
	Streak    int
	MaxStreak int

	Correct   int
	Incorrect int
	Skipped   int
}

// Total returns the number of outcomes applied.
func (t Tally) Total() int {
	return t.Correct + t.Incorrect + t.Skipped
}

// Accuracy returns Correct/Total, or 0 when nothing was applied.
func (t Tally) Accuracy() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total())
}

// Apply returns the tally after one outcome and the points it awarded.
// A correct answer earns points at the prior streak's multiplier and
// extends the streak; anything else earns nothing and resets the streak.
func (p Policy) Apply(t Tally, d catalog.Difficulty, v Verdict) (Tally, int) {
	switch v {
	case VerdictCorrect:
		points := p.Points(d, t.Streak)
		t.Score += points
		t.Streak++
		t.MaxStreak = max(t.MaxStreak, t.Streak)
		t.Correct++
		return t, points
	case VerdictIncorrect:
		t.Incorrect++
	default:
		t.Skipped++
	}
	t.Streak = 0
	return t, 0
}

// streakMilestones are the first streak lengths called out to the player.
var streakMilestones = []int{3, 5, 10, 15, 20}

// NextStreakMilestone returns the next milestone above the current streak.
func NextStreakMilestone(current int) int {
	for _, m := range streakMilestones {
		if m > current {
			return m
		}
	}
	// Beyond the table, every 5.
	return ((current / 5) + 1) * 5
}

// IsStreakMilestone reports whether a streak of exactly n is a milestone.
func IsStreakMilestone(n int) bool {
	return n > 0 && NextStreakMilestone(n-1) == n
}
