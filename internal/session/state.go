package session

import (
	"time"

	"github.com/abhisek/codedrills/internal/catalog"
	"github.com/abhisek/codedrills/internal/scoring"
)

// Phase is the lifecycle phase of a session.
type Phase int

const (
	PhaseSetup   Phase = iota // Waiting for a configuration
	PhaseActive               // Serving problems
	PhaseResults              // Finished; summary available
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseActive:
		return "active"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Attempt records the outcome of one problem. Attempts are append-only.
type Attempt struct {
	ProblemID  string
	Category   string
	Difficulty catalog.Difficulty

	// Answer is the raw submitted text; empty for skips and timeouts.
	Answer string

	Verdict scoring.Verdict
	Points  int

	// TimeTaken runs from the problem being shown to the outcome.
	TimeTaken time.Duration

	// TimedOut is set when the countdown expired. The verdict is skipped.
	TimedOut bool

	// HintsUsed counts the authored hints revealed for this problem.
	HintsUsed int

	// MatchedPattern is the index of the accepting validation pattern, or
	// -1.
	MatchedPattern int
}

// TimeTakenMs returns TimeTaken in milliseconds.
func (a Attempt) TimeTakenMs() int64 {
	return a.TimeTaken.Milliseconds()
}

// Progress is the position within the session's problem list.
type Progress struct {
	Index int
	Total int
}

// ScoreSnapshot is the live score of an active session.
type ScoreSnapshot struct {
	Score     int
	Streak    int
	MaxStreak int
}

// RunInfo describes one Active run, reported when it begins.
type RunInfo struct {
	SessionID  string
	Config     Config
	Seed       uint64
	ProblemIDs []string
	StartedAt  time.Time

	// Retry is set for runs started by RetrySame.
	Retry bool
}

// Observer is notified of session lifecycle events. Calls are made
// synchronously from the engine command that caused them.
type Observer interface {
	SessionStarted(info RunInfo)
	AttemptRecorded(sessionID string, index int, a Attempt)
	SessionEnded(summary Summary)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(RunInfo)                {}
func (nopObserver) AttemptRecorded(string, int, Attempt) {}
func (nopObserver) SessionEnded(Summary)                 {}

// Observers fans events out to each non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var out multiObserver
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) SessionStarted(info RunInfo) {
	for _, o := range m {
		o.SessionStarted(info)
	}
}

func (m multiObserver) AttemptRecorded(sessionID string, index int, a Attempt) {
	for _, o := range m {
		o.AttemptRecorded(sessionID, index, a)
	}
}

func (m multiObserver) SessionEnded(summary Summary) {
	for _, o := range m {
		o.SessionEnded(summary)
	}
}
