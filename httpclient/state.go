package httpclient

import (
	"time"

	"github.com/lumen-labs/pulse-go/observable"
)

// LastRequest records the most recently submitted request.
type LastRequest struct {
	Method    string
	URL       string
	Timestamp time.Time
}

// State is the observable per-client state record. It is advisory
// display state: callers must still inspect their own call's result
// for correctness.
type State struct {
	// Loading is true while any request is in flight.
	Loading bool

	// Err is the most recent unrecovered failure message. It is
	// cleared at the start of the next request.
	Err string

	// PendingRequests counts in-flight requests. Never negative.
	PendingRequests int

	// LastRequest echoes the most recently submitted request.
	LastRequest *LastRequest
}

// clientState wraps the observable State with the begin/end discipline
// every request follows. The decrement clamps at zero so a late
// cleanup racing CancelAll's unconditional reset cannot drive the
// counter negative.
type clientState struct {
	obs *observable.Value[State]
}

func newClientState() *clientState {
	return &clientState{obs: observable.New(State{})}
}

// begin records a submitted request: the pending counter rises, the
// previous error is cleared, and the last-request echo is updated.
func (s *clientState) begin(method, url string) {
	now := time.Now()
	s.obs.Update(func(st State) State {
		st.PendingRequests++
		st.Loading = true
		st.Err = ""
		st.LastRequest = &LastRequest{Method: method, URL: url, Timestamp: now}
		return st
	})
}

// end releases a request slot. Runs exactly once per request on every
// exit path.
func (s *clientState) end() {
	s.obs.Update(func(st State) State {
		if st.PendingRequests > 0 {
			st.PendingRequests--
		}
		st.Loading = st.PendingRequests > 0
		return st
	})
}

// fail records the most recent unrecovered failure.
func (s *clientState) fail(msg string) {
	s.obs.Update(func(st State) State {
		st.Err = msg
		return st
	})
}

// reset clears loading and the pending counter unconditionally.
// Used by CancelAll.
func (s *clientState) reset() {
	s.obs.Update(func(st State) State {
		st.PendingRequests = 0
		st.Loading = false
		return st
	})
}
