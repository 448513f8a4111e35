/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package oracle

import "sync"

// Static is an oracle whose state is set explicitly. It is used in tests and for
// deployments that feed day/night readings from another process.
type Static struct {
	mu        sync.RWMutex
	state     *State
	listeners listeners
}

// NewStatic creates a Static oracle with an initial state, which may be nil.
func NewStatic(initial *State) *Static {
	return &Static{state: initial}
}

// CurrentState returns a copy of the current state.
func (s *Static) CurrentState() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil
	}
	cp := *s.state
	return &cp
}

// Set replaces the state and notifies all listeners.
func (s *Static) Set(state *State) {
	s.mu.Lock()
	if state == nil {
		s.state = nil
	} else {
		cp := *state
		s.state = &cp
	}
	s.mu.Unlock()

	s.listeners.notify(s.CurrentState())
}

// Subscribe registers a listener.
func (s *Static) Subscribe(l Listener) {
	s.listeners.add(l)
}

// Unsubscribe removes a listener.
func (s *Static) Unsubscribe(l Listener) {
	s.listeners.remove(l)
}

// Subscribers returns the number of registered listeners.
func (s *Static) Subscribers() int {
	return s.listeners.len()
}
