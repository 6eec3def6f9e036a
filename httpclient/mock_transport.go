package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockTransport is a scriptable http.RoundTripper for tests. Queued
// results are consumed in FIFO order, one per attempt, which makes
// retry sequences easy to express:
//
//	mock := httpclient.NewMockTransport().
//	    QueueStatus(503, "").
//	    QueueStatus(503, "").
//	    QueueJSON(200, `{"ok":true}`)
//
// When the queue is empty the default result is served. Every request
// is recorded for assertions.
type MockTransport struct {
	mu          sync.Mutex
	queue       []mockResult
	defaultRes  *mockResult
	requests    []*http.Request
	requestHook func(*http.Request)
}

type mockResult struct {
	status     int
	body       string
	header     http.Header
	err        error
	delayUntil func(*http.Request) // optional block before responding
}

// NewMockTransport creates an empty transport. With nothing queued and
// no default set, requests fail loudly.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// QueueStatus enqueues one plain-text response.
func (m *MockTransport) QueueStatus(status int, body string) *MockTransport {
	return m.enqueue(mockResult{status: status, body: body, header: textHeader()})
}

// QueueJSON enqueues one application/json response.
func (m *MockTransport) QueueJSON(status int, body string) *MockTransport {
	return m.enqueue(mockResult{status: status, body: body, header: jsonHeader()})
}

// QueueError enqueues one transport-level failure.
func (m *MockTransport) QueueError(err error) *MockTransport {
	return m.enqueue(mockResult{err: err})
}

// QueueFunc enqueues a result that blocks in fn before responding.
// Useful for holding a request open while the test cancels it.
func (m *MockTransport) QueueFunc(status int, body string, fn func(*http.Request)) *MockTransport {
	return m.enqueue(mockResult{status: status, body: body, header: textHeader(), delayUntil: fn})
}

// StubStatus sets the default plain-text response served once the
// queue is drained.
func (m *MockTransport) StubStatus(status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRes = &mockResult{status: status, body: body, header: textHeader()}
	return m
}

// StubJSON sets the default application/json response.
func (m *MockTransport) StubJSON(status int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRes = &mockResult{status: status, body: body, header: jsonHeader()}
	return m
}

// StubError sets the default transport-level failure.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRes = &mockResult{err: err}
	return m
}

// OnRequest sets a hook called for each request before it is served.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHook = fn
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.requestHook

	var res mockResult
	switch {
	case len(m.queue) > 0:
		res = m.queue[0]
		m.queue = m.queue[1:]
	case m.defaultRes != nil:
		res = *m.defaultRes
	default:
		m.mu.Unlock()
		return nil, errors.New("no mock result for request: " + req.Method + " " + req.URL.String())
	}
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if res.delayUntil != nil {
		res.delayUntil(req)
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if res.err != nil {
		return nil, res.err
	}

	return &http.Response{
		Status:        http.StatusText(res.status),
		StatusCode:    res.status,
		Header:        res.header.Clone(),
		Body:          io.NopCloser(bytes.NewBufferString(res.body)),
		ContentLength: int64(len(res.body)),
		Request:       req,
	}, nil
}

// Requests returns a copy of every request served so far.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// RequestCount returns the number of requests served.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, nil when none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears queued results, the default, and recorded requests.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.defaultRes = nil
	m.requests = nil
	m.requestHook = nil
}

func (m *MockTransport) enqueue(res mockResult) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, res)
	return m
}

func jsonHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

func textHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain")
	return h
}
