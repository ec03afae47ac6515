package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dishuflix/internal/clock"
	"dishuflix/internal/clock/fakeclock"
)

func TestSchedule_ReArmsWithReturnedDelay(t *testing.T) {
	fc := fakeclock.New()
	var fired []time.Duration
	start := fc.Now()

	clock.Schedule(fc, 100*time.Millisecond, func() time.Duration {
		fired = append(fired, fc.Now().Sub(start))
		return 50 * time.Millisecond
	})

	fc.Advance(99 * time.Millisecond)
	assert.Empty(t, fired)

	fc.Advance(101 * time.Millisecond)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 200 * time.Millisecond}, fired)
}

func TestTask_CancelStopsFurtherSteps(t *testing.T) {
	fc := fakeclock.New()
	steps := 0

	task := clock.Schedule(fc, 10*time.Millisecond, func() time.Duration {
		steps++
		return 10 * time.Millisecond
	})

	fc.Advance(30 * time.Millisecond)
	assert.Equal(t, 3, steps)

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel is a no-op")
	assert.True(t, task.Cancelled())

	fc.Advance(time.Second)
	assert.Equal(t, 3, steps)
	assert.Zero(t, fc.Pending())
}

func TestFakeClock_StopPreventsFire(t *testing.T) {
	fc := fakeclock.New()
	fired := false

	timer := fc.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	fc.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	fc := fakeclock.New()
	var order []string

	fc.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	fc.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	fc.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	fc.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestReal_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	clock.Real().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
