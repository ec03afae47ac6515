// Package clock abstracts timers so the session's scheduled work (splash
// dismissal, search debounce, placeholder rotation) can be driven by virtual
// time in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is a self re-arming scheduled callback. Each step returns the delay
// until the next step. Cancel tears the task down; no step runs after Cancel
// returns.
type Task struct {
	clock     Clock
	step      func() time.Duration
	mu        sync.Mutex
	timer     Timer
	cancelled bool
}

// Schedule arms step to run after initial and keeps re-arming it with the
// delay step returns. step must not call Cancel on its own task.
func Schedule(c Clock, initial time.Duration, step func() time.Duration) *Task {
	t := &Task{clock: c, step: step}
	t.mu.Lock()
	t.timer = c.AfterFunc(initial, t.fire)
	t.mu.Unlock()
	return t
}

func (t *Task) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled {
		return
	}
	next := t.step()
	t.timer = t.clock.AfterFunc(next, t.fire)
}

// Cancel stops the task. It reports whether this call did the teardown;
// later calls are no-ops and return false.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled {
		return false
	}
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

// Cancelled reports whether Cancel has been called.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
