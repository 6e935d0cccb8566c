package scheduler

import (
	"time"
)

// Clock abstracts wall-clock reads and waits so the trigger can be driven
// by a simulated clock in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewRealClock returns the wall clock.
func NewRealClock() Clock {
	return realClock{}
}
