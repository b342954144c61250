// Package stream provides a small observable state cell: a current value
// plus registered listeners notified on change. It is the in-process
// backbone for the location slot, the favorites list, the mock-setting
// flag, and the on/off state.
package stream

import "sync"

// Value holds a current value of type T and notifies subscribers when it
// changes. Writes that compare equal to the current value are dropped, so
// subscribers only see distinct values.
//
// Listeners run synchronously in the goroutine that called Set, after the
// new value is visible to Get. Guard rules built on top of this (e.g.
// "force off when the location clears") therefore take effect within the
// same notification step as the triggering write.
type Value[T any] struct {
	eq func(a, b T) bool

	mu        sync.Mutex
	current   T
	listeners map[int]func(T)
	nextID    int
}

// NewValue creates a cell with the given initial value. eq decides whether
// a write is a change; writes equal to the current value do not notify.
func NewValue[T any](initial T, eq func(a, b T) bool) *Value[T] {
	return &Value[T]{
		eq:        eq,
		current:   initial,
		listeners: make(map[int]func(T)),
	}
}

// Get returns the latest value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores a new value and synchronously notifies all subscribers,
// unless it compares equal to the current value.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	if v.eq(v.current, value) {
		v.mu.Unlock()
		return
	}
	v.current = value

	// Snapshot under the lock, invoke outside it so a listener may
	// subscribe, unsubscribe, or write a different cell without deadlock.
	fns := make([]func(T), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Subscribe registers fn to be called on every subsequent change.
// It does not replay the current value; callers that need it should Get
// first. The returned function removes the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.listeners[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}
