/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package oracle provides day/night signals used by the oracle-driven policy.
package oracle

import (
	"sync"
	"time"

	"github.com/ardikabs/autodark/internal/callbacks"
)

// State is a day/night reading.
type State struct {
	// IsNight reports whether it is currently between sunset and sunrise.
	IsNight bool

	// Sunrise is the sunrise instant of the current day/night cycle.
	Sunrise time.Time

	// Sunset is the sunset instant of the current day/night cycle.
	Sunset time.Time
}

// Equal reports whether two readings describe the same segment.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.IsNight == other.IsNight && s.Sunrise.Equal(other.Sunrise) && s.Sunset.Equal(other.Sunset)
}

// Listener is notified whenever the oracle's state changes, including every sunrise and sunset crossing.
// A nil state means the oracle has no usable signal.
type Listener interface {
	OnStateChanged(state *State)
}

// Oracle is an external authority for whether it is night.
type Oracle interface {
	// CurrentState returns the latest reading, or nil when none is available yet.
	CurrentState() *State

	// Subscribe registers a listener. Registering the same listener twice is a no-op.
	Subscribe(l Listener)

	// Unsubscribe removes a listener. Unknown listeners are ignored.
	Unsubscribe(l Listener)
}

// listeners is a set of subscribers shared by the oracle implementations.
type listeners struct {
	mu      sync.Mutex
	removes map[Listener]func()
	reg     callbacks.Registry[Listener]
}

func (ls *listeners) add(l Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if _, ok := ls.removes[l]; ok {
		return
	}
	if ls.removes == nil {
		ls.removes = make(map[Listener]func())
	}
	ls.removes[l] = ls.reg.Add(l)
}

func (ls *listeners) remove(l Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if remove, ok := ls.removes[l]; ok {
		remove()
		delete(ls.removes, l)
	}
}

func (ls *listeners) notify(state *State) {
	for _, l := range ls.reg.Snapshot() {
		l.OnStateChanged(state)
	}
}

func (ls *listeners) len() int {
	return ls.reg.Len()
}
