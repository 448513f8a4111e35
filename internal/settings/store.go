/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package settings persists per-user scheduler settings in a key/value store
// and exposes them as typed values.
package settings

import (
	"context"
	"sort"

	"github.com/ardikabs/autodark/internal/callbacks"
)

// Store is a string key/value store scoped to one user.
type Store interface {
	// GetString returns the value of key and whether it is set.
	GetString(ctx context.Context, key string) (string, bool, error)

	// SetString writes key. A nil value deletes it.
	SetString(ctx context.Context, key string, value *string) error

	// Subscribe registers fn to be called with the key of every value that changed.
	// Writes that leave a value unchanged do not notify.
	Subscribe(fn func(key string)) (unsubscribe func())
}

// subscribers is the registry of change callbacks shared by the store backends.
type subscribers struct {
	callbacks.Registry[func(key string)]
}

func (s *subscribers) add(fn func(key string)) func() {
	return s.Add(fn)
}

// notify calls every subscriber outside the registry lock.
func (s *subscribers) notify(keys ...string) {
	fns := s.Snapshot()
	for _, key := range keys {
		for _, fn := range fns {
			fn(key)
		}
	}
}

// changedKeys returns the keys whose values differ between before and after, sorted.
func changedKeys(before, after map[string]string) []string {
	var keys []string
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
