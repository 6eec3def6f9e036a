package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	echo := &RequestEcho{Method: "GET", URL: "https://api.test/x"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "given status error, then message names the status",
			err:  newStatusError(&Response{Status: 503, Request: echo}),
			want: "GET https://api.test/x: request failed with status 503",
		},
		{
			name: "given timeout error, then message is the timeout marker",
			err:  newTimeoutError(echo),
			want: "GET https://api.test/x: Request timeout: request deadline reached",
		},
		{
			name: "given network error, then cause is included",
			err:  newNetworkError(echo, errors.New("connection refused")),
			want: "GET https://api.test/x: network error: connection refused",
		},
		{
			name: "given config error, then field and detail are named",
			err:  &ConfigError{Field: "method", Detail: "unsupported method TRACE"},
			want: "invalid config: method: unsupported method TRACE",
		},
		{
			name: "given interceptor error, then phase and id are named",
			err:  &InterceptorError{Phase: "request", ID: 3, Err: errors.New("boom")},
			want: "request interceptor 3: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	echo := &RequestEcho{Method: "GET", URL: "/x"}

	t.Run("given timeout error, then IsTimeout and not IsCancelled", func(t *testing.T) {
		err := newTimeoutError(echo)
		assert.True(t, IsTimeout(err))
		assert.False(t, IsCancelled(err))
		assert.Equal(t, http.StatusRequestTimeout, err.Status)
	})

	t.Run("given cancelled error, then IsCancelled and not IsTimeout", func(t *testing.T) {
		err := newCancelledError(echo)
		assert.True(t, IsCancelled(err))
		assert.False(t, IsTimeout(err))
		assert.Zero(t, err.Status)
	})

	t.Run("given 408 from a server, then it is not classified as a client timeout", func(t *testing.T) {
		err := newStatusError(&Response{Status: 408, Request: echo})
		assert.False(t, IsTimeout(err))
	})

	t.Run("given wrapped error, then AsError finds it", func(t *testing.T) {
		inner := newNetworkError(echo, errors.New("refused"))
		wrapped := fmt.Errorf("handler: %w", inner)

		he, ok := AsError(wrapped)
		require.True(t, ok)
		assert.Same(t, inner, he)
	})

	t.Run("given unrelated error, then AsError declines", func(t *testing.T) {
		_, ok := AsError(errors.New("plain"))
		assert.False(t, ok)
	})
}
