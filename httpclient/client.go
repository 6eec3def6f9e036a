package httpclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumen-labs/pulse-go/observable"
)

// Client is the request facade. It owns the instance configuration,
// the interceptor chains, the cancellation registry, and the
// observable client state. A Client is safe for concurrent use.
type Client struct {
	mu     sync.Mutex
	config Config

	chain    *InterceptorChain
	registry *cancelRegistry
	state    *clientState
	exec     *executor

	// retained for Create so derived clients inherit the wiring.
	transport http.RoundTripper
	jar       http.CookieJar
	backOff   BackOffFactory
	errorHook func(*Error)
	logger    zerolog.Logger
	debug     bool
	tracing   *tracing
}

// New creates a Client with the builtin defaults overlaid by opts.
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return build(o)
}

func build(o *options) *Client {
	transport := o.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if o.breaker != nil {
		transport = newBreakerTransport(transport, *o.breaker, o.logger)
	}

	c := &Client{
		config:    o.config,
		chain:     NewInterceptorChain(),
		registry:  newCancelRegistry(),
		state:     newClientState(),
		transport: transport,
		jar:       o.jar,
		backOff:   o.backOff,
		errorHook: o.errorHook,
		logger:    o.logger,
		debug:     o.debug,
		tracing:   newTracing(o.tracerProvider, o.serviceName),
	}
	c.exec = newExecutor(transport, c.chain, c.state, c.jar, c.backOff, c.errorHook, c.logger, c.debug, c.tracing)
	return c
}

// Create returns an independent client derived from this one: the
// instance configuration is copied and overlaid with opts, while the
// interceptor chain, cancellation registry, and state start fresh.
// The transport, logger, and tracing wiring are inherited unless
// overridden.
func (c *Client) Create(opts ...Option) *Client {
	c.mu.Lock()
	o := &options{
		config:    c.config.clone(),
		transport: c.transport,
		jar:       c.jar,
		backOff:   c.backOff,
		errorHook: c.errorHook,
		logger:    c.logger,
		debug:     c.debug,
	}
	c.mu.Unlock()

	for _, opt := range opts {
		opt(o)
	}

	derived := build(o)
	derived.tracing = c.tracing
	derived.exec.tracing = c.tracing
	return derived
}

// Do submits one request and blocks until it settles. The effective
// configuration is resolved at submission time from the instance
// config and opts; mutating the client afterwards does not affect this
// request. Cancel the request via its id (WithRequestID or the
// generated UUID), CancelAll, or the caller's own ctx.
func (c *Client) Do(ctx context.Context, method, url string, opts ...RequestOption) (*Response, error) {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}

	c.mu.Lock()
	cfg := c.config.clone()
	c.mu.Unlock()

	rc, err := resolveConfig(cfg, method, url, ro)
	if err != nil {
		return nil, err
	}

	id := ro.requestID
	if id == "" {
		id = uuid.NewString()
	}

	token := newCancelToken(ctx)
	c.registry.add(id, token)
	defer func() {
		c.registry.remove(id)
		token.release()
	}()

	c.state.begin(rc.Method, rc.URL)
	defer c.state.end()

	return c.exec.run(token.ctx, rc)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, opts...)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, url string, body Body, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, append([]RequestOption{WithBody(body)}, opts...)...)
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, url string, body Body, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, append([]RequestOption{WithBody(body)}, opts...)...)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, url string, body Body, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, url, append([]RequestOption{WithBody(body)}, opts...)...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, url, opts...)
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodHead, url, opts...)
}

// Options issues an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodOptions, url, opts...)
}

// SetHeader sets a default header for subsequent requests. Requests
// already in flight keep their resolved headers.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Headers[key] = value
}

// RemoveHeader removes a default header for subsequent requests.
func (c *Client) RemoveHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.config.Headers, key)
}

// SetBaseURL replaces the base URL for subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.BaseURL = baseURL
}

// SetTimeout replaces the default timeout for subsequent requests.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Timeout = d
}

// SetBearerToken sets the Authorization header for subsequent
// requests. An empty token removes it.
func (c *Client) SetBearerToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		delete(c.config.Headers, "Authorization")
		return
	}
	c.config.Headers["Authorization"] = "Bearer " + token
}

// UseRequest appends a request interceptor and returns its id.
func (c *Client) UseRequest(fulfilled RequestHandler, rejected RequestRecovery) int64 {
	return c.chain.UseRequest(fulfilled, rejected)
}

// UseResponse appends a response interceptor and returns its id.
func (c *Client) UseResponse(fulfilled ResponseHandler, rejected ResponseRecovery) int64 {
	return c.chain.UseResponse(fulfilled, rejected)
}

// EjectRequest removes a request interceptor by id.
func (c *Client) EjectRequest(id int64) { c.chain.EjectRequest(id) }

// EjectResponse removes a response interceptor by id.
func (c *Client) EjectResponse(id int64) { c.chain.EjectResponse(id) }

// CancelRequest aborts the in-flight request with the given id. The
// request fails with a cancellation error, never a timeout. No-op for
// unknown or already settled ids.
func (c *Client) CancelRequest(id string) {
	c.registry.cancel(id)
}

// CancelAll aborts every in-flight request and resets the pending
// counter unconditionally.
func (c *Client) CancelAll() {
	c.registry.cancelAll()
	c.state.reset()
}

// State returns a snapshot of the observable client state.
func (c *Client) State() State {
	return c.state.obs.Get()
}

// Subscribe registers a callback invoked on every state change and
// returns its unsubscribe function.
func (c *Client) Subscribe(fn func(State)) observable.Unsubscribe {
	return c.state.obs.Subscribe(fn)
}
