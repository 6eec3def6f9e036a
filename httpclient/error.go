package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrCancelled is the sentinel wrapped by errors raised when a request
// is cancelled by the caller (CancelRequest, CancelAll, or a cancelled
// parent context). It is distinct from a timeout, which surfaces as an
// *Error with Status 408.
var ErrCancelled = errors.New("request cancelled")

// errTimedOut is the cancellation cause installed by the per-attempt
// timeout timer. It never escapes the executor; callers see an *Error
// with Status 408 instead.
var errTimedOut = errors.New("request deadline reached")

// ConfigError reports invalid request configuration, such as an
// unsupported HTTP method. It is raised before any transfer starts
// and is never retried.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Detail)
}

// RequestEcho is a lightweight record of what was sent: the method,
// the fully resolved URL, and the headers applied. It is attached to
// errors and responses so handlers can identify the originating call
// without holding the full configuration.
type RequestEcho struct {
	Method  string
	URL     string
	Headers map[string]string
}

// Error is the failure value for a request whose transfer ran (or was
// aborted). Status is 0 when no response was received — a network
// failure or cancellation — and the HTTP status code otherwise.
// Status 408 is reserved for timeouts.
type Error struct {
	Message string

	// Status is 0 for network/abort failures, positive otherwise.
	Status int

	// Response carries the received envelope for non-2xx statuses,
	// nil when the transfer produced nothing.
	Response *Response

	// Request echoes what was sent.
	Request *RequestEcho

	// Cause is the underlying transport or decode error, if any.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Request != nil {
		b.WriteString(e.Request.Method)
		b.WriteString(" ")
		b.WriteString(e.Request.URL)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else if e.Status > 0 {
		fmt.Fprintf(&b, "http %d %s", e.Status, http.StatusText(e.Status))
	} else {
		b.WriteString("request failed")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	he, ok := AsError(err)
	return ok && he.Status == http.StatusRequestTimeout && he.Cause == errTimedOut
}

// IsCancelled reports whether err stems from an explicit cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// InterceptorError reports a request or response interceptor that
// failed without a recovery handler. It fails the request immediately
// and is never retried or silently swallowed.
type InterceptorError struct {
	// Phase is "request" or "response".
	Phase string

	// ID identifies the interceptor that failed.
	ID int64

	Err error
}

func (e *InterceptorError) Error() string {
	return fmt.Sprintf("%s interceptor %d: %s", e.Phase, e.ID, e.Err)
}

func (e *InterceptorError) Unwrap() error { return e.Err }

// newStatusError builds the *Error for a non-2xx response.
func newStatusError(resp *Response) *Error {
	return &Error{
		Message:  fmt.Sprintf("request failed with status %d", resp.Status),
		Status:   resp.Status,
		Response: resp,
		Request:  resp.Request,
	}
}

// newTimeoutError builds the *Error for an attempt aborted by the
// timeout timer. Status 408 is the documented timeout marker even
// though no server response exists.
func newTimeoutError(echo *RequestEcho) *Error {
	return &Error{
		Message: "Request timeout",
		Status:  http.StatusRequestTimeout,
		Request: echo,
		Cause:   errTimedOut,
	}
}

// newNetworkError builds the *Error for a transport-level failure.
func newNetworkError(echo *RequestEcho, cause error) *Error {
	return &Error{
		Message: "network error",
		Request: echo,
		Cause:   cause,
	}
}

// newCancelledError builds the error for a caller-driven abort.
func newCancelledError(echo *RequestEcho) *Error {
	return &Error{
		Message: "request cancelled",
		Request: echo,
		Cause:   ErrCancelled,
	}
}
