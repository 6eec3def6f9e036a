package httpclient

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// Response is the envelope for one successful transfer attempt.
//
// Data holds the parsed body: a structured JSON value, a string for
// text content types, or the raw bytes when nothing else applies.
// Response interceptors receive the envelope and may replace it; the
// raw body stays available through Body for callers that want to
// decode into their own types.
type Response struct {
	// Data is the parsed body. See parseBody for the rules.
	Data any

	// Status is the HTTP status code (100-599).
	Status int

	// StatusText is the status line text.
	StatusText string

	// Headers are the response headers. Lookups through Get are
	// case-insensitive per net/http canonicalization.
	Headers http.Header

	// Body is the raw response body.
	Body []byte

	// Config is the request configuration that produced this response.
	Config *RequestConfig

	// Request echoes the method, URL, and headers sent.
	Request *RequestEcho
}

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode unmarshals the raw body as JSON into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// parseBody interprets raw bytes by content type.
//
// application/json parses into a structured value and reports a parse
// failure as an error. text/* yields a string. Anything else attempts
// a JSON parse and silently falls back to the raw string; that branch
// never fails.
func parseBody(contentType string, raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	switch {
	case strings.Contains(contentType, "application/json"):
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case strings.HasPrefix(contentType, "text/"):
		return string(raw), nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw), nil
		}
		return v, nil
	}
}

// newResponse assembles the envelope from a raw transfer result.
func newResponse(cfg *RequestConfig, echo *RequestEcho, httpResp *http.Response, raw []byte) (*Response, error) {
	data, err := parseBody(httpResp.Header.Get("Content-Type"), raw)
	resp := &Response{
		Data:       data,
		Status:     httpResp.StatusCode,
		StatusText: http.StatusText(httpResp.StatusCode),
		Headers:    httpResp.Header,
		Body:       raw,
		Config:     cfg,
		Request:    echo,
	}
	if err != nil {
		return resp, &Error{
			Message:  "decoding response body",
			Status:   httpResp.StatusCode,
			Response: resp,
			Request:  echo,
			Cause:    err,
		}
	}
	return resp, nil
}
