package httpclient

import (
	"context"
	"sync"
)

// cancelToken is the per-request cancellation handle. The context is
// derived with a cause-carrying cancel so the executor can tell a
// timeout apart from a caller-driven abort: the cause is the reason,
// never the error's type name.
type cancelToken struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// newCancelToken derives a token from the caller's context.
func newCancelToken(parent context.Context) *cancelToken {
	ctx, cancel := context.WithCancelCause(parent)
	return &cancelToken{ctx: ctx, cancel: cancel}
}

// abort cancels the token on behalf of the caller.
func (t *cancelToken) abort() {
	t.cancel(ErrCancelled)
}

// release cancels the token with no meaningful cause, freeing its
// resources once the request has settled.
func (t *cancelToken) release() {
	t.cancel(context.Canceled)
}

// cancelRegistry maps in-flight request ids to their cancellation
// tokens. Every request registers exactly one token at submission and
// deregisters it on every exit path.
type cancelRegistry struct {
	mu     sync.Mutex
	tokens map[string]*cancelToken
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{tokens: make(map[string]*cancelToken)}
}

func (r *cancelRegistry) add(id string, token *cancelToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[id] = token
}

func (r *cancelRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
}

// cancel aborts the request with the given id. No-op if absent.
func (r *cancelRegistry) cancel(id string) {
	r.mu.Lock()
	token, ok := r.tokens[id]
	if ok {
		delete(r.tokens, id)
	}
	r.mu.Unlock()

	if ok {
		token.abort()
	}
}

// cancelAll aborts every registered request and clears the registry.
func (r *cancelRegistry) cancelAll() {
	r.mu.Lock()
	tokens := make([]*cancelToken, 0, len(r.tokens))
	for _, t := range r.tokens {
		tokens = append(tokens, t)
	}
	r.tokens = make(map[string]*cancelToken)
	r.mu.Unlock()

	for _, t := range tokens {
		t.abort()
	}
}

// size returns the number of in-flight tokens.
func (r *cancelRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
