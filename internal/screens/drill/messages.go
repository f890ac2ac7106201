package drill

import (
	"github.com/abhisek/codedrills/internal/hints"
)

// timerFiredMsg is delivered when a per-question countdown elapses.
type timerFiredMsg struct {
	sched *teaScheduler
	id    uint64
}

// countdownTickMsg refreshes the countdown display every second.
type countdownTickMsg struct {
	sched *teaScheduler
}

// hintGeneratedMsg carries the result of a background hint request.
type hintGeneratedMsg struct {
	sched *teaScheduler
	key   string
	Hint  hints.Hint
	Err   error
}
