package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// executor orchestrates one logical request: it runs the request
// interceptors, performs attempts bound to the cancellation token,
// classifies failures, retries when the failure qualifies, and runs
// the response interceptors. Cleanup (timeout timer, registry slot,
// pending counter) is guaranteed on every exit path by the caller's
// defers plus the per-attempt defers here.
type executor struct {
	transport http.RoundTripper
	chain     *InterceptorChain
	state     *clientState
	jar       http.CookieJar
	backOff   BackOffFactory
	errorHook func(*Error)
	logger    zerolog.Logger
	debug     bool
	tracing   *tracing
}

// run drives the retry state machine for one request. The context is
// the request's cancellation token; cancelling it aborts the in-flight
// attempt and any retry wait.
func (e *executor) run(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	cfg, err := e.chain.runRequest(ctx, cfg)
	if err != nil {
		e.state.fail(err.Error())
		return nil, err
	}

	echo := cfg.echo()
	retriesLeft := cfg.Retries
	delays := e.backOff(cfg)

	ctx, span := e.tracing.start(ctx, cfg)
	defer span.End()

	for attempt := 0; ; attempt++ {
		resp, attemptErr := e.attempt(ctx, cfg, echo)

		if attemptErr == nil {
			if resp.IsSuccess() {
				e.tracing.success(span, resp.Status)
				out, rerr := e.chain.runResponse(ctx, resp)
				if rerr != nil {
					e.state.fail(rerr.Error())
					return nil, rerr
				}
				return out, nil
			}

			if isRetryableStatus(resp.Status) && retriesLeft > 0 {
				retriesLeft--
				if werr := e.wait(ctx, span, delays.NextBackOff(), echo, attempt+1, resp.Status, nil); werr != nil {
					return e.settle(ctx, span, werr)
				}
				continue
			}

			return e.finish(ctx, span, newStatusError(resp))
		}

		var cfgErr *ConfigError
		if errors.As(attemptErr, &cfgErr) {
			e.state.fail(cfgErr.Error())
			return nil, cfgErr
		}

		he, _ := AsError(attemptErr)

		switch {
		case he == nil:
			return e.finish(ctx, span, attemptErr)

		case IsTimeout(he):
			// Timeouts are terminal: they never count against the
			// retry budget.
			return e.finish(ctx, span, he)

		case errors.Is(he.Cause, ErrCancelled):
			return e.settle(ctx, span, he)

		case he.Status > 0:
			// A response arrived but its body could not be decoded.
			return e.finish(ctx, span, he)

		default:
			// Raw network failure.
			if retriesLeft > 0 && isRetryableTransportError(he.Cause) {
				retriesLeft--
				if werr := e.wait(ctx, span, delays.NextBackOff(), echo, attempt+1, 0, he.Cause); werr != nil {
					return e.settle(ctx, span, werr)
				}
				continue
			}
			return e.finish(ctx, span, he)
		}
	}
}

// settle routes a terminal failure: caller-driven cancellation
// propagates directly, everything else gets a recovery walk.
func (e *executor) settle(ctx context.Context, span requestSpan, cause error) (*Response, error) {
	if he, ok := AsError(cause); ok && errors.Is(he.Cause, ErrCancelled) {
		e.state.fail(he.Error())
		e.tracing.failure(span, he)
		return nil, he
	}
	return e.finish(ctx, span, cause)
}

// finish handles an unrecovered-so-far failure: it notifies the error
// hook, offers the failure to the response-side recovery handlers, and
// records the outcome in client state.
func (e *executor) finish(ctx context.Context, span requestSpan, cause error) (*Response, error) {
	if he, ok := AsError(cause); ok && e.errorHook != nil {
		e.errorHook(he)
	}

	resp, err := e.chain.runResponseError(ctx, cause)
	if err != nil {
		e.state.fail(err.Error())
		e.tracing.failure(span, err)
		return nil, err
	}
	return resp, nil
}

// attempt performs one transfer bound to a derived cancellation
// context. The timeout timer cancels with a timeout cause; the
// returned error is always classified (*ConfigError or *Error).
func (e *executor) attempt(parent context.Context, cfg *RequestConfig, echo *RequestEcho) (*Response, error) {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(context.Canceled)

	if cfg.Timeout > 0 {
		timer := time.AfterFunc(cfg.Timeout, func() { cancel(errTimedOut) })
		defer timer.Stop()
	}

	reader, contentType, contentLength, err := cfg.Body.encode()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, reader)
	if err != nil {
		return nil, &ConfigError{Field: "url", Detail: err.Error()}
	}
	req.ContentLength = contentLength

	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		// Raw and multipart bodies carry an authoritative content type
		// that must win over the default header.
		if cfg.Body.Kind() == BodyJSON {
			if req.Header.Get("Content-Type") == "" {
				req.Header.Set("Content-Type", contentType)
			}
		} else {
			req.Header.Set("Content-Type", contentType)
		}
	}

	if cfg.WithCredentials && e.jar != nil {
		for _, ck := range e.jar.Cookies(req.URL) {
			req.AddCookie(ck)
		}
	}

	if e.debug {
		logRequest(e.logger, req)
	}
	start := time.Now()

	httpResp, err := e.transport.RoundTrip(req)
	if err != nil {
		return nil, classifyTransportFailure(ctx, echo, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransportFailure(ctx, echo, err)
	}

	if cfg.WithCredentials && e.jar != nil {
		e.jar.SetCookies(req.URL, httpResp.Cookies())
	}

	if e.debug {
		logResponse(e.logger, httpResp, time.Since(start))
	}

	return newResponse(cfg, echo, httpResp, raw)
}

// wait sleeps out one retry delay, aborting early if the request is
// cancelled meanwhile.
func (e *executor) wait(ctx context.Context, span requestSpan, delay time.Duration, echo *RequestEcho, attempt, status int, cause error) error {
	logRetry(e.logger, echo, attempt, delay, status, cause)
	e.tracing.retry(span, attempt, delay)

	if delay <= 0 {
		if ctx.Err() != nil {
			return classifyTransportFailure(ctx, echo, ctx.Err())
		}
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return classifyTransportFailure(ctx, echo, ctx.Err())
	}
}

// classifyTransportFailure maps a failed transfer onto the error
// taxonomy using the cancellation cause, never the error's text: the
// timeout timer and an explicit cancel abort the same token, and the
// cause is what tells them apart.
func classifyTransportFailure(ctx context.Context, echo *RequestEcho, err error) *Error {
	cause := context.Cause(ctx)

	switch {
	case errors.Is(cause, errTimedOut), errors.Is(cause, context.DeadlineExceeded):
		return newTimeoutError(echo)
	case errors.Is(cause, ErrCancelled):
		return newCancelledError(echo)
	case ctx.Err() != nil:
		// The caller's own context was cancelled upstream.
		return newCancelledError(echo)
	default:
		return newNetworkError(echo, err)
	}
}

// newExecutor assembles an executor from resolved client internals.
func newExecutor(transport http.RoundTripper, chain *InterceptorChain, state *clientState, jar http.CookieJar, factory BackOffFactory, hook func(*Error), logger zerolog.Logger, debug bool, tr *tracing) *executor {
	if factory == nil {
		factory = defaultBackOffFactory
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &executor{
		transport: transport,
		chain:     chain,
		state:     state,
		jar:       jar,
		backOff:   factory,
		errorHook: hook,
		logger:    logger,
		debug:     debug,
		tracing:   tr,
	}
}
