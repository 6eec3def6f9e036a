package httpclient

import (
	"crypto/tls"
	"errors"
	"net"
	"syscall"

	"github.com/sony/gobreaker/v2"
)

// isRetryableStatus reports whether an HTTP status qualifies for a
// retry. Only server errors do; 4xx responses describe a request that
// will not improve by resending it.
func isRetryableStatus(status int) bool {
	return status >= 500
}

// isRetryableTransportError reports whether a transport-level failure
// qualifies for a retry. Timeouts and cancellations never reach this
// check — the executor classifies them from the context cause first.
//
// Permanent failures are excluded: a TLS certificate problem, a DNS
// name that does not exist, or an open circuit breaker will not
// resolve by resending the same request.
func isRetryableTransportError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EHOSTDOWN) {
		return false
	}

	// Everything else at the transport level (connection refused,
	// reset, unreachable host, broken pipe) is treated as transient.
	return true
}
