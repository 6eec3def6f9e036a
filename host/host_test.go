package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-labs/pulse-go/httpclient"
)

// fakeScope is a minimal scope backed by a map.
type fakeScope struct {
	values   map[string]any
	provided int
}

func newFakeScope() *fakeScope {
	return &fakeScope{values: make(map[string]any)}
}

func (s *fakeScope) Provide(name string, value any) {
	s.provided++
	s.values[name] = value
}

func (s *fakeScope) Lookup(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// fakeHost records after-render callbacks and lets tests drive render
// passes by hand.
type fakeHost struct {
	callbacks []func(Scope)
}

func (h *fakeHost) AfterRender(fn func(Scope)) {
	h.callbacks = append(h.callbacks, fn)
}

func (h *fakeHost) render(s Scope) {
	for _, fn := range h.callbacks {
		fn(s)
	}
}

func TestInstall(t *testing.T) {
	t.Run("given a rendered scope, then the client is provided under the name", func(t *testing.T) {
		h := &fakeHost{}
		client := httpclient.New()
		Install(h, "api", client)

		scope := newFakeScope()
		h.render(scope)

		assert.Same(t, client, FromScope(scope, "api"))
	})

	t.Run("given repeated renders of one scope, then injection happens once", func(t *testing.T) {
		h := &fakeHost{}
		Install(h, "api", httpclient.New())

		scope := newFakeScope()
		h.render(scope)
		h.render(scope)
		h.render(scope)

		assert.Equal(t, 1, scope.provided)
	})

	t.Run("given multiple scopes, then each gets its own injection", func(t *testing.T) {
		h := &fakeHost{}
		client := httpclient.New()
		Install(h, "api", client)

		a := newFakeScope()
		b := newFakeScope()
		h.render(a)
		h.render(b)

		assert.Same(t, client, FromScope(a, "api"))
		assert.Same(t, client, FromScope(b, "api"))
	})

	t.Run("given an empty name, then the default name is used", func(t *testing.T) {
		h := &fakeHost{}
		client := httpclient.New()
		Install(h, "", client)

		scope := newFakeScope()
		h.render(scope)

		assert.Same(t, client, FromScope(scope, ""))
		assert.Same(t, client, FromScope(scope, DefaultName))
	})

	t.Run("given a scope that already carries the capability, then it is not overwritten", func(t *testing.T) {
		h := &fakeHost{}
		existing := httpclient.New()
		Install(h, "api", httpclient.New())

		scope := newFakeScope()
		scope.values["api"] = existing
		h.render(scope)

		assert.Same(t, existing, FromScope(scope, "api"))
	})

	t.Run("given a non-client capability under the name, then FromScope returns nil", func(t *testing.T) {
		scope := newFakeScope()
		scope.values["api"] = "not a client"

		require.Nil(t, FromScope(scope, "api"))
	})
}
