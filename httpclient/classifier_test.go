package httpclient

import (
	"crypto/tls"
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "given 500, then retryable", status: 500, want: true},
		{name: "given 503, then retryable", status: 503, want: true},
		{name: "given 599, then retryable", status: 599, want: true},
		{name: "given 499, then not retryable", status: 499, want: false},
		{name: "given 404, then not retryable", status: 404, want: false},
		{name: "given 429, then not retryable", status: 429, want: false},
		{name: "given 200, then not retryable", status: 200, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableStatus(tt.status))
		})
	}
}

func TestIsRetryableTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "given nil, then not retryable",
			err:  nil,
			want: false,
		},
		{
			name: "given connection refused, then retryable",
			err:  &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			want: true,
		},
		{
			name: "given connection reset, then retryable",
			err:  syscall.ECONNRESET,
			want: true,
		},
		{
			name: "given open circuit breaker, then not retryable",
			err:  gobreaker.ErrOpenState,
			want: false,
		},
		{
			name: "given half-open breaker rejecting, then not retryable",
			err:  gobreaker.ErrTooManyRequests,
			want: false,
		},
		{
			name: "given certificate verification failure, then not retryable",
			err:  &tls.CertificateVerificationError{Err: errors.New("bad cert")},
			want: false,
		},
		{
			name: "given permanent dns failure, then not retryable",
			err:  &net.DNSError{Err: "no such host", IsNotFound: true},
			want: false,
		},
		{
			name: "given temporary dns failure, then retryable",
			err:  &net.DNSError{Err: "server misbehaving", IsTemporary: true},
			want: true,
		},
		{
			name: "given dns timeout, then retryable",
			err:  &net.DNSError{Err: "i/o timeout", IsTimeout: true},
			want: true,
		},
		{
			name: "given permission denied, then not retryable",
			err:  syscall.EACCES,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableTransportError(tt.err))
		})
	}
}
