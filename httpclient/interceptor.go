package httpclient

import (
	"context"
	"sync"
)

// RequestHandler transforms the request configuration before the
// transfer starts. Returning nil leaves the configuration unchanged;
// returning a value replaces it for the rest of the chain.
//
// Common use cases:
//   - Adding authentication headers (Bearer tokens, API keys)
//   - Injecting correlation IDs
//   - Request logging
type RequestHandler func(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error)

// RequestRecovery handles a failure raised earlier in the request
// chain. Returning a non-nil configuration recovers the chain with
// that value; returning an error (or nil, nil) keeps the failure.
type RequestRecovery func(ctx context.Context, err error) (*RequestConfig, error)

// ResponseHandler transforms the response after a successful transfer.
// Returning nil keeps the current response; returning a value replaces
// it for the rest of the chain. Handlers must return a replacement
// rather than rely on in-place mutation being observed downstream.
type ResponseHandler func(ctx context.Context, resp *Response) (*Response, error)

// ResponseRecovery handles a transfer or chain failure on the response
// side. Returning a non-nil response recovers: the request resolves
// with that response instead of failing.
type ResponseRecovery func(ctx context.Context, err error) (*Response, error)

type requestEntry struct {
	id        int64
	fulfilled RequestHandler
	rejected  RequestRecovery
}

type responseEntry struct {
	id        int64
	fulfilled ResponseHandler
	rejected  ResponseRecovery
}

// InterceptorChain holds the ordered request-side and response-side
// interceptor lists. Insertion order is execution order. Entries are
// identified by ids from a monotonic counter, so ids stay valid and
// unique no matter how many entries are removed.
type InterceptorChain struct {
	mu       sync.Mutex
	nextID   int64
	request  []requestEntry
	response []responseEntry
}

// NewInterceptorChain creates an empty chain pair.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// UseRequest appends a request interceptor and returns its id.
// Either handler may be nil.
func (c *InterceptorChain) UseRequest(fulfilled RequestHandler, rejected RequestRecovery) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.request = append(c.request, requestEntry{id: id, fulfilled: fulfilled, rejected: rejected})
	return id
}

// UseResponse appends a response interceptor and returns its id.
// Either handler may be nil.
func (c *InterceptorChain) UseResponse(fulfilled ResponseHandler, rejected ResponseRecovery) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.response = append(c.response, responseEntry{id: id, fulfilled: fulfilled, rejected: rejected})
	return id
}

// EjectRequest removes the request interceptor with the given id.
// No-op if the id is absent.
func (c *InterceptorChain) EjectRequest(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.request {
		if e.id == id {
			c.request = append(c.request[:i], c.request[i+1:]...)
			return
		}
	}
}

// EjectResponse removes the response interceptor with the given id.
// No-op if the id is absent.
func (c *InterceptorChain) EjectResponse(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.response {
		if e.id == id {
			c.response = append(c.response[:i], c.response[i+1:]...)
			return
		}
	}
}

// runRequest walks the request list in order. A handler error is fed
// to the same entry's rejected recovery if present; without one the
// chain stops immediately and the request fails.
func (c *InterceptorChain) runRequest(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error) {
	for _, e := range c.snapshotRequest() {
		if e.fulfilled == nil {
			continue
		}

		out, err := e.fulfilled(ctx, cfg)
		if err != nil {
			if e.rejected == nil {
				return nil, &InterceptorError{Phase: "request", ID: e.id, Err: err}
			}
			recovered, rerr := e.rejected(ctx, err)
			if rerr != nil {
				return nil, &InterceptorError{Phase: "request", ID: e.id, Err: rerr}
			}
			if recovered != nil {
				cfg = recovered
			}
			continue
		}
		if out != nil {
			cfg = out
		}
	}
	return cfg, nil
}

// runResponse walks the response list in order over a received
// response. A handler error is fed to the same entry's rejected
// recovery; a non-nil recovery result replaces the response.
func (c *InterceptorChain) runResponse(ctx context.Context, resp *Response) (*Response, error) {
	for _, e := range c.snapshotResponse() {
		if e.fulfilled == nil {
			continue
		}

		out, err := e.fulfilled(ctx, resp)
		if err != nil {
			if e.rejected == nil {
				return nil, &InterceptorError{Phase: "response", ID: e.id, Err: err}
			}
			recovered, rerr := e.rejected(ctx, err)
			if rerr != nil {
				return nil, &InterceptorError{Phase: "response", ID: e.id, Err: rerr}
			}
			if recovered != nil {
				resp = recovered
			}
			continue
		}
		if out != nil {
			resp = out
		}
	}
	return resp, nil
}

// runResponseError offers a failed transfer to the response-side
// recovery handlers. The first one returning a non-nil response
// short-circuits: the request resolves with that value. A recovery
// handler returning an error replaces the propagated failure. When
// nothing recovers the original error is returned.
func (c *InterceptorChain) runResponseError(ctx context.Context, cause error) (*Response, error) {
	for _, e := range c.snapshotResponse() {
		if e.rejected == nil {
			continue
		}
		recovered, err := e.rejected(ctx, cause)
		if err != nil {
			return nil, err
		}
		if recovered != nil {
			return recovered, nil
		}
	}
	return nil, cause
}

func (c *InterceptorChain) snapshotRequest() []requestEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]requestEntry(nil), c.request...)
}

func (c *InterceptorChain) snapshotResponse() []responseEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]responseEntry(nil), c.response...)
}

// Common interceptor helpers

// BearerAuth returns a request handler that sets an Authorization
// Bearer header.
func BearerAuth(token string) RequestHandler {
	return func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
		cfg.Headers["Authorization"] = "Bearer " + token
		return cfg, nil
	}
}

// BearerAuthFunc returns a request handler that sets an Authorization
// Bearer header from a function (useful for refreshable tokens).
func BearerAuthFunc(tokenFunc func() (string, error)) RequestHandler {
	return func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
		token, err := tokenFunc()
		if err != nil {
			return nil, err
		}
		cfg.Headers["Authorization"] = "Bearer " + token
		return cfg, nil
	}
}

// APIKey returns a request handler that sets an API key header.
func APIKey(headerName, key string) RequestHandler {
	return func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
		cfg.Headers[headerName] = key
		return cfg, nil
	}
}

// UserAgent returns a request handler that sets the User-Agent header.
func UserAgent(userAgent string) RequestHandler {
	return func(_ context.Context, cfg *RequestConfig) (*RequestConfig, error) {
		cfg.Headers["User-Agent"] = userAgent
		return cfg, nil
	}
}
