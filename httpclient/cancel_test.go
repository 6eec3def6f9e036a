package httpclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelToken(t *testing.T) {
	t.Run("given abort, then the cause is the cancellation sentinel", func(t *testing.T) {
		token := newCancelToken(context.Background())
		token.abort()

		<-token.ctx.Done()
		assert.True(t, errors.Is(context.Cause(token.ctx), ErrCancelled))
	})

	t.Run("given release, then the cause is not the sentinel", func(t *testing.T) {
		token := newCancelToken(context.Background())
		token.release()

		<-token.ctx.Done()
		assert.False(t, errors.Is(context.Cause(token.ctx), ErrCancelled))
	})

	t.Run("given cancelled parent, then the token observes it", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		token := newCancelToken(parent)
		cancel()

		<-token.ctx.Done()
		require.Error(t, token.ctx.Err())
	})
}

func TestCancelRegistry(t *testing.T) {
	t.Run("given cancel by id, then only that token aborts", func(t *testing.T) {
		reg := newCancelRegistry()
		a := newCancelToken(context.Background())
		b := newCancelToken(context.Background())
		reg.add("a", a)
		reg.add("b", b)

		reg.cancel("a")

		assert.Error(t, a.ctx.Err())
		assert.NoError(t, b.ctx.Err())
		assert.Equal(t, 1, reg.size())
	})

	t.Run("given unknown id, then cancel is a no-op", func(t *testing.T) {
		reg := newCancelRegistry()
		assert.NotPanics(t, func() { reg.cancel("missing") })
	})

	t.Run("given cancelAll, then every token aborts and the registry empties", func(t *testing.T) {
		reg := newCancelRegistry()
		a := newCancelToken(context.Background())
		b := newCancelToken(context.Background())
		reg.add("a", a)
		reg.add("b", b)

		reg.cancelAll()

		assert.True(t, errors.Is(context.Cause(a.ctx), ErrCancelled))
		assert.True(t, errors.Is(context.Cause(b.ctx), ErrCancelled))
		assert.Equal(t, 0, reg.size())
	})

	t.Run("given remove, then the token is no longer cancellable by id", func(t *testing.T) {
		reg := newCancelRegistry()
		a := newCancelToken(context.Background())
		reg.add("a", a)
		reg.remove("a")

		reg.cancel("a")
		assert.NoError(t, a.ctx.Err())
	})
}

func TestClientState(t *testing.T) {
	t.Run("given begin and end, then the pending counter round-trips", func(t *testing.T) {
		st := newClientState()

		st.begin("GET", "/a")
		snap := st.obs.Get()
		assert.True(t, snap.Loading)
		assert.Equal(t, 1, snap.PendingRequests)
		require.NotNil(t, snap.LastRequest)
		assert.Equal(t, "GET", snap.LastRequest.Method)
		assert.Equal(t, "/a", snap.LastRequest.URL)

		st.end()
		snap = st.obs.Get()
		assert.False(t, snap.Loading)
		assert.Equal(t, 0, snap.PendingRequests)
	})

	t.Run("given begin, then the previous error is cleared", func(t *testing.T) {
		st := newClientState()
		st.fail("boom")
		assert.Equal(t, "boom", st.obs.Get().Err)

		st.begin("GET", "/a")
		assert.Empty(t, st.obs.Get().Err)
	})

	t.Run("given end after reset, then the counter clamps at zero", func(t *testing.T) {
		st := newClientState()
		st.begin("GET", "/a")
		st.reset()
		st.end()

		snap := st.obs.Get()
		assert.Equal(t, 0, snap.PendingRequests)
		assert.False(t, snap.Loading)
	})

	t.Run("given overlapping requests, then loading holds until the last ends", func(t *testing.T) {
		st := newClientState()
		st.begin("GET", "/a")
		st.begin("GET", "/b")

		st.end()
		assert.True(t, st.obs.Get().Loading)

		st.end()
		assert.False(t, st.obs.Get().Loading)
	})
}
