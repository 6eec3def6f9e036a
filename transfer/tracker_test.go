package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock returns a clock that advances by step on every call.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Run("given new tracker, then idle with zeroed counters", func(t *testing.T) {
		tr := NewTracker()
		s := tr.State()

		assert.Equal(t, StatusIdle, s.Status)
		assert.Zero(t, s.Progress)
		assert.Zero(t, s.Loaded)
	})

	t.Run("given Start, then transferring with total recorded", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(200)
		s := tr.State()

		assert.Equal(t, StatusTransferring, s.Status)
		assert.EqualValues(t, 200, s.Total)
		assert.False(t, s.StartTime.IsZero())
	})

	t.Run("given Complete, then progress forced to 100", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(100)
		tr.Update(30, 100)
		tr.Complete()
		s := tr.State()

		assert.Equal(t, 100, s.Progress)
		assert.Equal(t, StatusCompleted, s.Status)
	})

	t.Run("given Fail, then status error with message", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(100)
		tr.Fail(errors.New("connection reset"))
		s := tr.State()

		assert.Equal(t, StatusError, s.Status)
		assert.Equal(t, "connection reset", s.Err)
	})
}

func TestTracker_Update(t *testing.T) {
	t.Run("given known total, then progress is rounded percentage", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(100)
		tr.Update(50, 100)

		assert.Equal(t, 50, tr.State().Progress)
	})

	t.Run("given zero total, then progress stays at zero", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(0)
		tr.Update(4096, 0)
		s := tr.State()

		assert.Zero(t, s.Progress)
		assert.EqualValues(t, 4096, s.Loaded)
	})

	t.Run("given elapsed time, then speed and remaining time derived", func(t *testing.T) {
		tr := NewTracker()
		tr.now = fakeClock(time.Unix(1000, 0), 2*time.Second)

		tr.Start(1000)      // clock at t=0
		tr.Update(500, 1000) // clock at t=2s

		s := tr.State()
		assert.EqualValues(t, 250, s.Speed)         // 500 bytes / 2s
		assert.EqualValues(t, 2, s.RemainingTime)   // 500 bytes left / 250 B/s
	})

	t.Run("given no elapsed time, then previous speed kept", func(t *testing.T) {
		tr := NewTracker()
		now := time.Unix(1000, 0)
		tr.now = func() time.Time { return now }

		tr.Start(100)
		tr.Update(10, 100)

		assert.Zero(t, tr.State().Speed)
	})
}

func TestTracker_Reset(t *testing.T) {
	t.Run("given reset after history, then behaves like fresh tracker", func(t *testing.T) {
		tr := NewTracker()
		tr.Start(10)
		tr.Update(10, 10)
		tr.Complete()

		tr.Reset()
		assert.Equal(t, StatusIdle, tr.State().Status)

		tr.Start(100)
		tr.Update(50, 100)
		assert.Equal(t, 50, tr.State().Progress)
	})
}

func TestTracker_Subscribe(t *testing.T) {
	t.Run("given subscriber, then observes every update", func(t *testing.T) {
		tr := NewTracker()
		var progress []int
		stop := tr.Subscribe(func(s State) { progress = append(progress, s.Progress) })
		defer stop()

		tr.Start(100)
		tr.Update(25, 100)
		tr.Update(75, 100)
		tr.Complete()

		assert.Equal(t, []int{0, 25, 75, 100}, progress)
	})
}
