// Package host bridges a client into a hosting framework's lifecycle.
//
// The hosting framework renders consumer scopes and exposes an
// after-render hook. Install uses that hook to provide a client handle
// to every scope exactly once; there is no process-wide singleton, the
// handle is always passed explicitly.
package host

import (
	"sync"

	"github.com/lumen-labs/pulse-go/httpclient"
)

// DefaultName is the capability name used when Install is given none.
const DefaultName = "http"

// Scope is one consumer scope of the hosting framework.
type Scope interface {
	// Provide makes a named capability available to the scope.
	Provide(name string, value any)

	// Lookup returns a previously provided capability.
	Lookup(name string) (any, bool)
}

// Host exposes the lifecycle hook installation needs: a callback
// invoked after each render pass with the scope that was rendered.
type Host interface {
	AfterRender(fn func(Scope))
}

// Install registers client under name in every scope the host renders.
// Each scope is injected exactly once, even when it renders repeatedly
// or already carries the capability.
func Install(h Host, name string, client *httpclient.Client) {
	if name == "" {
		name = DefaultName
	}

	var mu sync.Mutex
	seen := make(map[Scope]struct{})

	h.AfterRender(func(s Scope) {
		mu.Lock()
		if _, done := seen[s]; done {
			mu.Unlock()
			return
		}
		seen[s] = struct{}{}
		mu.Unlock()

		if _, exists := s.Lookup(name); exists {
			return
		}
		s.Provide(name, client)
	})
}

// FromScope retrieves the client installed under name, nil when the
// scope has none.
func FromScope(s Scope, name string) *httpclient.Client {
	if name == "" {
		name = DefaultName
	}
	v, ok := s.Lookup(name)
	if !ok {
		return nil
	}
	client, _ := v.(*httpclient.Client)
	return client
}
