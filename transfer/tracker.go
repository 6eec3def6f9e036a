// Package transfer provides observable progress tracking for
// upload and download transfers.
package transfer

import (
	"math"
	"time"

	"github.com/lumen-labs/pulse-go/observable"
)

// Status describes the lifecycle phase of a transfer.
type Status string

const (
	// StatusIdle means no transfer is in progress.
	StatusIdle Status = "idle"

	// StatusTransferring means bytes are moving.
	StatusTransferring Status = "transferring"

	// StatusCompleted means the transfer finished successfully.
	StatusCompleted Status = "completed"

	// StatusError means the transfer failed.
	StatusError Status = "error"
)

// State is a snapshot of transfer progress.
//
// Progress is a 0-100 integer. When Total is unknown (zero), Progress
// stays at 0 for the whole transfer even as Loaded grows. Speed is in
// bytes per second and RemainingTime in whole seconds; both are
// derived on each Update.
type State struct {
	Progress      int
	Loaded        int64
	Total         int64
	Status        Status
	Err           string
	StartTime     time.Time
	Speed         int64
	RemainingTime int64
}

// Tracker is a mutable observable record of transfer progress.
//
// A Tracker starts idle, moves to transferring on Start, is updated
// per chunk via Update, and terminates at Complete or Fail. Reset
// returns it to idle so the same Tracker can observe another
// transfer.
//
// Example:
//
//	tracker := transfer.NewTracker()
//	stop := tracker.Subscribe(func(s transfer.State) {
//	    fmt.Printf("%d%% (%d/%d bytes)\n", s.Progress, s.Loaded, s.Total)
//	})
//	defer stop()
type Tracker struct {
	state *observable.Value[State]

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewTracker creates an idle Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		state: observable.New(State{Status: StatusIdle}),
		now:   time.Now,
	}
}

// Start resets all counters and marks the transfer as running.
// A zero total means the size is unknown; Progress will stay at 0.
func (t *Tracker) Start(total int64) {
	t.state.Set(State{
		Status:    StatusTransferring,
		Total:     total,
		StartTime: t.now(),
	})
}

// Update records loaded bytes out of total and recomputes the derived
// fields.
//
// Progress is round(loaded/total*100) when total is positive, else 0.
// Speed is round(loaded/elapsedSeconds); when no time has elapsed the
// previous speed is kept. RemainingTime is round((total-loaded)/speed)
// when speed is positive, else 0.
func (t *Tracker) Update(loaded, total int64) {
	now := t.now()
	t.state.Update(func(s State) State {
		s.Loaded = loaded
		s.Total = total

		if total > 0 {
			s.Progress = int(math.Round(float64(loaded) / float64(total) * 100))
		} else {
			s.Progress = 0
		}

		elapsed := now.Sub(s.StartTime).Seconds()
		if elapsed > 0 {
			s.Speed = int64(math.Round(float64(loaded) / elapsed))
		}

		if s.Speed > 0 {
			s.RemainingTime = int64(math.Round(float64(total-loaded) / float64(s.Speed)))
		} else {
			s.RemainingTime = 0
		}
		return s
	})
}

// Complete forces progress to 100 and marks the transfer finished.
func (t *Tracker) Complete() {
	t.state.Update(func(s State) State {
		s.Progress = 100
		s.Status = StatusCompleted
		return s
	})
}

// Fail marks the transfer failed and records the error message.
func (t *Tracker) Fail(err error) {
	t.state.Update(func(s State) State {
		s.Status = StatusError
		if err != nil {
			s.Err = err.Error()
		}
		return s
	})
}

// Reset returns the tracker to idle with all counters zeroed.
func (t *Tracker) Reset() {
	t.state.Set(State{Status: StatusIdle})
}

// State returns the current progress snapshot.
func (t *Tracker) State() State {
	return t.state.Get()
}

// Subscribe registers fn to run after every progress change.
func (t *Tracker) Subscribe(fn func(State)) observable.Unsubscribe {
	return t.state.Subscribe(fn)
}
