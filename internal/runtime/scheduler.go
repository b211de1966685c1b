package runtime

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran
	// or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. The engine uses it for transition
// nodes and mini-game time limits, the typewriter for its reveal ticks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ClockScheduler schedules on a clockwork clock. Tests drive it with a
// clockwork.FakeClock.
type ClockScheduler struct {
	Clock clockwork.Clock
}

// NewClockScheduler returns a scheduler over clock, or the wall clock when
// clock is nil.
func NewClockScheduler(clock clockwork.Clock) ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return ClockScheduler{Clock: clock}
}

// AfterFunc runs f on its own goroutine once d has elapsed on the clock.
func (s ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.Clock.AfterFunc(d, f)
}
