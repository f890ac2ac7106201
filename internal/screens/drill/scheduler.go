package drill

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codedrills/internal/clock"
)

// teaScheduler implements clock.Scheduler on top of tea.Tick so that
// countdown callbacks run inside Update, on the same goroutine as every
// other engine call. AfterFunc only queues the tick; the screen hands the
// queued commands to the runtime through drain.
type teaScheduler struct {
	next   uint64
	live   map[uint64]func()
	queued []tea.Cmd
}

var _ clock.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{live: make(map[uint64]func())}
}

func (s *teaScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	s.next++
	id := s.next
	s.live[id] = f
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{sched: s, id: id}
	}))
	return teaTimer{s: s, id: id}
}

// fire runs the callback for id unless it was stopped. It reports whether
// a callback ran.
func (s *teaScheduler) fire(id uint64) bool {
	f, ok := s.live[id]
	if !ok {
		return false
	}
	delete(s.live, id)
	f()
	return true
}

// drain returns the ticks queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

func (s *teaScheduler) stopAll() {
	clear(s.live)
	s.queued = nil
}

type teaTimer struct {
	s  *teaScheduler
	id uint64
}

func (t teaTimer) Stop() bool {
	_, ok := t.s.live[t.id]
	delete(t.s.live, t.id)
	return ok
}
