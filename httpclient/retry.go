package httpclient

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Ensure the default delay strategy implements the backoff interface.
var _ backoff.BackOff = (*constantBackOff)(nil)

// BackOffFactory produces a fresh delay strategy for one request's
// retry sequence. Each request gets its own instance so concurrent
// requests never share backoff state.
type BackOffFactory func(cfg *RequestConfig) backoff.BackOff

// constantBackOff waits exactly the configured delay between attempts.
// This is the default strategy: the effective RequestConfig carries a
// single RetryDelay and every wait honors it verbatim.
type constantBackOff struct {
	interval time.Duration
}

func (b *constantBackOff) NextBackOff() time.Duration { return b.interval }

func (b *constantBackOff) Reset() {}

// defaultBackOffFactory returns the constant-delay strategy from the
// request's RetryDelay.
func defaultBackOffFactory(cfg *RequestConfig) backoff.BackOff {
	return &constantBackOff{interval: cfg.RetryDelay}
}

// ExponentialBackOffFactory returns a factory producing exponential
// backoff with jitter, seeded from the request's RetryDelay.
//
// Use with WithRetryBackOff when a fixed delay between attempts is too
// aggressive:
//
//	client := httpclient.New(
//	    httpclient.WithRetries(3),
//	    httpclient.WithRetryBackOff(httpclient.ExponentialBackOffFactory(30*time.Second, 2.0)),
//	)
func ExponentialBackOffFactory(maxInterval time.Duration, multiplier float64) BackOffFactory {
	return func(cfg *RequestConfig) backoff.BackOff {
		return &backoff.ExponentialBackOff{
			InitialInterval:     cfg.RetryDelay,
			RandomizationFactor: 0.5,
			Multiplier:          multiplier,
			MaxInterval:         maxInterval,
		}
	}
}
