package clock

import (
	"sync"
	"time"
)

// Guarded wraps s so every callback runs while holding mu. Callers that
// drive an engine from another goroutine hold the same lock around their
// own calls, which keeps timer callbacks from interleaving with them.
func Guarded(s Scheduler, mu sync.Locker) Scheduler {
	return guarded{s: s, mu: mu}
}

type guarded struct {
	s  Scheduler
	mu sync.Locker
}

func (g guarded) AfterFunc(d time.Duration, f func()) Timer {
	return g.s.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		f()
	})
}
