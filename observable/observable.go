// Package observable provides a minimal observable value container.
//
// A Value holds a snapshot of type T and notifies subscribers after
// every write. It is the state capability the httpclient package
// builds its client state and transfer progress on: anything with
// assignment-visibility semantics satisfies the same contract, so a
// host framework may substitute its own reactive primitive.
//
// Example:
//
//	state := observable.New(Counter{})
//	stop := state.Subscribe(func(c Counter) {
//	    fmt.Println("count is now", c.N)
//	})
//	defer stop()
//
//	state.Update(func(c Counter) Counter {
//	    c.N++
//	    return c
//	})
package observable

import "sync"

// Unsubscribe removes a subscription when called. Calling it more
// than once is a no-op.
type Unsubscribe func()

// Value is a mutex-guarded observable container for a value of type T.
//
// Writes replace the whole snapshot; subscribers receive the new
// snapshot synchronously, outside the internal lock, in registration
// order. T should be a value type (struct, not pointer) so snapshots
// do not alias each other.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	nextID int
	subs   map[int]func(T)
	order  []int
}

// New creates a Value holding the initial snapshot.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		v:    initial,
		subs: make(map[int]func(T)),
	}
}

// Get returns the current snapshot.
func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set replaces the snapshot and notifies subscribers.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	fns := o.snapshotSubs()
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Update applies fn to the current snapshot, stores the result, and
// notifies subscribers. The returned value is the stored snapshot.
//
// fn runs under the lock and must not call back into the Value.
func (o *Value[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	o.v = fn(o.v)
	v := o.v
	fns := o.snapshotSubs()
	o.mu.Unlock()

	for _, f := range fns {
		f(v)
	}
	return v
}

// Subscribe registers fn to run after every write. The returned
// Unsubscribe removes the registration.
func (o *Value[T]) Subscribe(fn func(T)) Unsubscribe {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.order = append(o.order, id)
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// snapshotSubs returns subscriber callbacks in registration order.
// Caller must hold the lock.
func (o *Value[T]) snapshotSubs() []func(T) {
	if len(o.subs) == 0 {
		return nil
	}
	fns := make([]func(T), 0, len(o.subs))
	for _, id := range o.order {
		if fn, ok := o.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
