package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// options collects the client construction knobs. Request defaults
// live in the embedded Config; the rest wires transport, logging, and
// tracing.
type options struct {
	config         Config
	transport      http.RoundTripper
	jar            http.CookieJar
	backOff        BackOffFactory
	errorHook      func(*Error)
	logger         zerolog.Logger
	debug          bool
	tracerProvider trace.TracerProvider
	serviceName    string
	breaker        *BreakerConfig
}

func defaultOptions() *options {
	return &options{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// Option configures a Client at construction time.
type Option func(*options)

// WithBaseURL sets the base URL prepended to relative request paths.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.config.BaseURL = baseURL }
}

// WithDefaultHeader sets one header applied to every request.
func WithDefaultHeader(key, value string) Option {
	return func(o *options) { o.config.Headers[key] = value }
}

// WithDefaultHeaders merges headers applied to every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		for k, v := range headers {
			o.config.Headers[k] = v
		}
	}
}

// WithTimeout sets the default per-attempt timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.config.Timeout = d }
}

// WithRetries sets the default retry budget for qualifying failures.
func WithRetries(n int) Option {
	return func(o *options) { o.config.Retries = n }
}

// WithRetryDelay sets the default wait between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.config.RetryDelay = d }
}

// WithRetryBackOff replaces the constant-delay retry wait with a
// custom strategy, such as ExponentialBackOffFactory.
func WithRetryBackOff(factory BackOffFactory) Option {
	return func(o *options) { o.backOff = factory }
}

// WithTransport replaces the underlying round tripper. Useful for
// tests (see MockTransport) and custom connection tuning.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithCookieJar installs a cookie jar used by requests that enable
// credentials.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithCredentials enables cookie handling for every request by
// default, creating an in-memory jar when none was installed.
func WithCredentials() Option {
	return func(o *options) {
		o.config.WithCredentials = true
		if o.jar == nil {
			o.jar, _ = cookiejar.New(nil)
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDebug enables per-attempt request/response debug logging.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithErrorHook registers a callback invoked for every request that
// fails with an *Error, before recovery handlers run. Intended for
// centralized error reporting.
func WithErrorHook(hook func(*Error)) Option {
	return func(o *options) { o.errorHook = hook }
}

// WithTracerProvider sets the tracer provider for request spans. The
// global provider is used when absent.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = provider }
}

// WithServiceName sets the tracer instrumentation name.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithBreaker wraps the transport with a circuit breaker. A request
// rejected by an open breaker fails immediately with a network-class
// error and is never retried.
func WithBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = &cfg }
}
