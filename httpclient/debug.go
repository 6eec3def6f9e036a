package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// logRequest emits a debug line for an outgoing attempt. Header values
// are not logged; authorization material must never reach the logs.
func logRequest(logger zerolog.Logger, req *http.Request) {
	logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int64("content_length", req.ContentLength).
		Msg("sending request")
}

// logResponse emits a debug line for a completed attempt.
func logResponse(logger zerolog.Logger, resp *http.Response, elapsed time.Duration) {
	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Int64("content_length", resp.ContentLength).
		Msg("received response")
}

// logRetry emits a debug line before a retry wait.
func logRetry(logger zerolog.Logger, echo *RequestEcho, attempt int, delay time.Duration, status int, cause error) {
	evt := logger.Debug().
		Str("method", echo.Method).
		Str("url", echo.URL).
		Int("attempt", attempt).
		Dur("delay", delay)
	if status > 0 {
		evt = evt.Int("status", status)
	}
	if cause != nil {
		evt = evt.Err(cause)
	}
	evt.Msg("retrying request")
}
