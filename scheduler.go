package disconnected

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected/internal/runtime"
	"github.com/jonboulle/clockwork"
)

// deferredScheduler queues every callback with its due time on clock. Due
// callbacks run only when the game drains the queue, so story work never
// happens on a timer goroutine. The engine schedules while holding its lock,
// so immediate work cannot run inline either.
type deferredScheduler struct {
	clock clockwork.Clock

	mu    sync.Mutex
	queue []*deferredTimer
}

type deferredTimer struct {
	s       *deferredScheduler
	due     time.Time
	f       func()
	stopped bool
	fired   bool
}

func newDeferredScheduler(clock clockwork.Clock) *deferredScheduler {
	return &deferredScheduler{clock: clock}
}

func (t *deferredTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.queue = slices.DeleteFunc(t.s.queue, func(o *deferredTimer) bool { return o == t })
	return true
}

func (s *deferredScheduler) AfterFunc(d time.Duration, f func()) runtime.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &deferredTimer{s: s, due: s.clock.Now().Add(d), f: f}
	s.queue = append(s.queue, t)
	return t
}

// drain runs due callbacks, including due ones they queue, up to limit rounds.
func (s *deferredScheduler) drain(limit int) {
	for range limit {
		batch := s.takeDue()
		if len(batch) == 0 {
			return
		}
		for _, t := range batch {
			s.mu.Lock()
			run := !t.stopped
			t.fired = true
			s.mu.Unlock()
			if run {
				t.f()
			}
		}
	}
}

// takeDue removes the callbacks due now from the queue, earliest first.
func (s *deferredScheduler) takeDue() []*deferredTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	var due []*deferredTimer
	s.queue = slices.DeleteFunc(s.queue, func(t *deferredTimer) bool {
		if t.due.After(now) {
			return false
		}
		due = append(due, t)
		return true
	})
	slices.SortStableFunc(due, func(a, b *deferredTimer) int { return a.due.Compare(b.due) })
	return due
}

// wait sleeps on the clock until the earliest queued callback is due. It
// reports false when nothing is queued or ctx ends first.
func (s *deferredScheduler) wait(ctx context.Context) bool {
	s.mu.Lock()
	var next time.Time
	for _, t := range s.queue {
		if next.IsZero() || t.due.Before(next) {
			next = t.due
		}
	}
	s.mu.Unlock()
	if next.IsZero() {
		return false
	}

	d := next.Sub(s.clock.Now())
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}
