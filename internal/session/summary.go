package session

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/scoring"
)

// BreakdownEntry aggregates attempts for one category or difficulty.
type BreakdownEntry struct {
	Attempted int
	Correct   int
}

// Accuracy returns Correct/Attempted, or 0 when nothing was attempted.
func (b BreakdownEntry) Accuracy() float64 {
	if b.Attempted == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Attempted)
}

// Summary is the read-only result of a finished run.
type Summary struct {
	SessionID string
	Mode      Mode
	Seed      uint64

	TotalPoints    int
	CorrectCount   int
	IncorrectCount int
	SkippedCount   int

	// TimedOutCount is the subset of SkippedCount caused by the countdown.
	TimedOutCount int

	// TotalCount is the number of attempts; unattempted problems are not
	// counted.
	TotalCount int

	// Accuracy is CorrectCount/TotalCount, 0 when TotalCount is 0.
	Accuracy float64

	MaxStreak int
	// MaxScore is the most points the run could have earned under its
	// scoring policy. Zero when unknown.
	MaxScore  int
	StartedAt time.Time
	EndedAt   time.Time
	Elapsed   time.Duration

	// Breakdown is keyed by category.
	Breakdown    map[string]BreakdownEntry
	ByDifficulty map[catalog.Difficulty]BreakdownEntry

	// ProblemIDs is the full play order, including unattempted problems.
	ProblemIDs []string
	Attempts   []Attempt
}

// BuildSummary derives a Summary from a run's attempts.
func BuildSummary(info RunInfo, attempts []Attempt, maxStreak int, endedAt time.Time) Summary {
	s := Summary{
		SessionID:    info.SessionID,
		Mode:         info.Config.Mode,
		Seed:         info.Seed,
		MaxStreak:    maxStreak,
		StartedAt:    info.StartedAt,
		EndedAt:      endedAt,
		Elapsed:      endedAt.Sub(info.StartedAt),
		Breakdown:    make(map[string]BreakdownEntry),
		ByDifficulty: make(map[catalog.Difficulty]BreakdownEntry),
		ProblemIDs:   slices.Clone(info.ProblemIDs),
		Attempts:     slices.Clone(attempts),
		TotalCount:   len(attempts),
	}

	for _, a := range attempts {
		s.TotalPoints += a.Points

		cat := s.Breakdown[a.Category]
		diff := s.ByDifficulty[a.Difficulty]
		cat.Attempted++
		diff.Attempted++

		switch a.Verdict {
		case scoring.VerdictCorrect:
			s.CorrectCount++
			cat.Correct++
			diff.Correct++
		case scoring.VerdictIncorrect:
			s.IncorrectCount++
		default:
			s.SkippedCount++
			if a.TimedOut {
				s.TimedOutCount++
			}
		}

		s.Breakdown[a.Category] = cat
		s.ByDifficulty[a.Difficulty] = diff
	}

	if s.TotalCount > 0 {
		s.Accuracy = float64(s.CorrectCount) / float64(s.TotalCount)
	}
	return s
}

// Categories returns the breakdown categories, sorted.
func (s Summary) Categories() []string {
	cats := slices.Collect(maps.Keys(s.Breakdown))
	sort.Strings(cats)
	return cats
}

// Unattempted returns how many selected problems were never reached.
func (s Summary) Unattempted() int {
	return len(s.ProblemIDs) - s.TotalCount
}

func (s Summary) clone() Summary {
	s.Breakdown = maps.Clone(s.Breakdown)
	s.ByDifficulty = maps.Clone(s.ByDifficulty)
	s.ProblemIDs = slices.Clone(s.ProblemIDs)
	s.Attempts = slices.Clone(s.Attempts)
	return s
}
