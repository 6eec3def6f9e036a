package httpclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the optional circuit breaker wrapped around the
// transport. Only transport-level failures trip it; HTTP error
// statuses pass through untouched so the retry rules stay in charge of
// those.
type BreakerConfig struct {
	// Name labels the breaker in logs. Defaults to "pulse".
	Name string

	// MaxRequests is the number of probe requests allowed while
	// half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// ReadyToTrip overrides the default trip rule of five consecutive
	// failures.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// breakerTransport guards a round tripper with a circuit breaker. A
// rejected request surfaces gobreaker.ErrOpenState, which the retry
// classifier treats as permanent.
type breakerTransport struct {
	next    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerTransport(next http.RoundTripper, cfg BreakerConfig, logger zerolog.Logger) *breakerTransport {
	name := cfg.Name
	if name == "" {
		name = "pulse"
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &breakerTransport{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.breaker.Execute(func() (*http.Response, error) {
		return t.next.RoundTrip(req)
	})
}
