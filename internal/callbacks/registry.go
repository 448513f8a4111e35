/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package callbacks holds the subscriber registry shared by stores, oracles and
// the time change watcher.
package callbacks

import "sync"

type entry[T any] struct {
	id    int
	value T
}

// Registry is a concurrency-safe list of subscribers kept in registration order.
// The zero value is ready to use.
type Registry[T any] struct {
	mu      sync.Mutex
	next    int
	entries []entry[T]
}

// Add registers v and returns a func removing it. Calling the func more than once is a no-op.
func (r *Registry[T]) Add(v T) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.entries = append(r.entries, entry[T]{id: id, value: v})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.entries {
			if e.id == id {
				r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the registered values in registration order. Callers invoke
// them after Snapshot returns, so a subscriber may add or remove itself.
func (r *Registry[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]T, len(r.entries))
	for i, e := range r.entries {
		values[i] = e.value
	}
	return values
}

// Len returns the number of registered values.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
