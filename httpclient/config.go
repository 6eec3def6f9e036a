package httpclient

import "time"

// Config holds the client-level request defaults. Every request merges
// these with the per-call options into one effective RequestConfig at
// submission time; later mutation of the client config never affects
// requests already in flight.
type Config struct {
	// BaseURL is prepended to relative request URLs. URLs that
	// already carry an http/https scheme are used verbatim.
	BaseURL string

	// Headers are applied to every request. Per-call headers override
	// them key by key; keys are matched exactly as provided.
	Headers map[string]string

	// Timeout bounds each attempt. Zero disables the timeout.
	//
	// Default: 30s
	Timeout time.Duration

	// Retries is the number of additional attempts after the first
	// for qualifying failures (5xx responses and network errors).
	//
	// Default: 0 (retries disabled)
	Retries int

	// RetryDelay is the wait between attempts. The delay source can
	// be replaced wholesale with WithRetryBackOff.
	//
	// Default: 1s
	RetryDelay time.Duration

	// WithCredentials attaches the client's cookie jar to requests,
	// sending stored cookies and recording Set-Cookie responses.
	//
	// Default: false
	WithCredentials bool
}

// DefaultConfig returns the builtin request defaults.
func DefaultConfig() Config {
	return Config{
		Headers:    map[string]string{"Content-Type": "application/json"},
		Timeout:    30 * time.Second,
		Retries:    0,
		RetryDelay: 1 * time.Second,
	}
}

// clone returns a deep copy so derived clients and resolved requests
// never alias the instance config's header map.
func (c Config) clone() Config {
	out := c
	out.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		out.Headers[k] = v
	}
	return out
}

// RequestConfig is the effective descriptor for one request, produced
// by merging builtin defaults, the client instance config, and the
// per-call options. Interceptors may mutate or replace it before the
// transfer starts; once the attempt is in flight it is fixed.
type RequestConfig struct {
	// Method is one of GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS,
	// normalized to upper case.
	Method string

	// URL is the fully resolved target including the query string.
	URL string

	// Headers are the merged request headers.
	Headers map[string]string

	// Body is the tagged request body variant.
	Body Body

	// Timeout bounds each attempt; zero disables the timer.
	Timeout time.Duration

	// WithCredentials controls cookie jar use for this request.
	WithCredentials bool

	// Retries is the remaining retry budget.
	Retries int

	// RetryDelay is the wait between attempts.
	RetryDelay time.Duration
}

// echo captures the request identity for errors and state records.
func (rc *RequestConfig) echo() *RequestEcho {
	headers := make(map[string]string, len(rc.Headers))
	for k, v := range rc.Headers {
		headers[k] = v
	}
	return &RequestEcho{Method: rc.Method, URL: rc.URL, Headers: headers}
}

// requestOptions collects the per-call overrides applied on top of the
// client config. Zero-valued fields inherit.
type requestOptions struct {
	headers         map[string]string
	params          map[string][]string
	body            Body
	timeout         time.Duration
	hasTimeout      bool
	retries         int
	hasRetries      bool
	retryDelay      time.Duration
	hasRetryDelay   bool
	withCredentials bool
	hasCredentials  bool
	requestID       string
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithHeader sets one header for this request, overriding any
// client-level value for the same key.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHeaders sets multiple headers for this request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithParam adds a query parameter. A single value produces one
// key=value pair; multiple values produce repeated pairs in order.
// Keys registered with no values are skipped entirely.
func WithParam(key string, values ...string) RequestOption {
	return func(o *requestOptions) {
		if o.params == nil {
			o.params = make(map[string][]string)
		}
		o.params[key] = append(o.params[key], values...)
	}
}

// WithParams merges a full parameter map into the request.
func WithParams(params map[string][]string) RequestOption {
	return func(o *requestOptions) {
		if o.params == nil {
			o.params = make(map[string][]string, len(params))
		}
		for k, vs := range params {
			o.params[k] = append(o.params[k], vs...)
		}
	}
}

// WithBody sets the request body.
func WithBody(b Body) RequestOption {
	return func(o *requestOptions) { o.body = b }
}

// WithJSON sets a JSON request body. Shorthand for
// WithBody(JSONBody(v)).
func WithJSON(v any) RequestOption {
	return WithBody(JSONBody(v))
}

// WithRequestTimeout overrides the client timeout for this request.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
		o.hasTimeout = true
	}
}

// WithRequestRetries overrides the retry budget for this request.
func WithRequestRetries(n int) RequestOption {
	return func(o *requestOptions) {
		o.retries = n
		o.hasRetries = true
	}
}

// WithRequestRetryDelay overrides the delay between attempts for this
// request.
func WithRequestRetryDelay(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.retryDelay = d
		o.hasRetryDelay = true
	}
}

// WithRequestCredentials overrides cookie jar use for this request.
func WithRequestCredentials(enabled bool) RequestOption {
	return func(o *requestOptions) {
		o.withCredentials = enabled
		o.hasCredentials = true
	}
}

// WithRequestID sets the cancellation registry key for this request so
// the caller can target it with CancelRequest. When absent a random
// UUID is assigned.
func WithRequestID(id string) RequestOption {
	return func(o *requestOptions) { o.requestID = id }
}
