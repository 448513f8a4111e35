/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
	subs subscribers
}

var _ Store = (*Memory)(nil)

// NewMemory creates a Memory store holding a copy of initial.
func NewMemory(initial map[string]string) *Memory {
	data := make(map[string]string, len(initial))
	maps.Copy(data, initial)
	return &Memory{data: data}
}

// GetString implements Store.
func (m *Memory) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// SetString implements Store.
func (m *Memory) SetString(_ context.Context, key string, value *string) error {
	m.mu.Lock()
	old, existed := m.data[key]
	changed := false
	switch {
	case value == nil && existed:
		delete(m.data, key)
		changed = true
	case value != nil && (!existed || old != *value):
		m.data[key] = *value
		changed = true
	}
	m.mu.Unlock()

	if changed {
		m.subs.notify(key)
	}
	return nil
}

// Subscribe implements Store.
func (m *Memory) Subscribe(fn func(key string)) func() {
	return m.subs.add(fn)
}

// Data returns a copy of every stored value.
func (m *Memory) Data() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}
