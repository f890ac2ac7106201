// Package clock abstracts wall time and delayed callbacks so that timed
// sessions can be driven by a fake in tests.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a pending callback. Stop cancels it and reports whether it was
// still pending.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real uses the system clock and time.AfterFunc. Callbacks run on their
// own goroutine.
type Real struct{}

var (
	_ Clock     = Real{}
	_ Scheduler = Real{}
)

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
