/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package session runs one scheduler for the current foreground user and
// moves it along user switches.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/ardikabs/autodark/internal/metrics"
)

// ErrEmptyUser is returned when a lifecycle call names no user.
var ErrEmptyUser = errors.New("user must not be empty")

// Runner is a per-user scheduler.
type Runner interface {
	Start(ctx context.Context) error
	Shutdown()
}

// Factory builds the runner for a user.
type Factory func(ctx context.Context, user string, log logr.Logger) (Runner, error)

// Info describes the running session.
type Info struct {
	ID   string
	User string
}

type session struct {
	Info
	runner Runner
}

// Manager owns at most one running session.
type Manager struct {
	factory Factory
	log     logr.Logger

	mu      sync.Mutex
	current *session
}

// NewManager creates a Manager.
func NewManager(factory Factory, log logr.Logger) *Manager {
	return &Manager{factory: factory, log: log.WithName("session")}
}

// StartUser starts a session for user unless one is already running.
func (m *Manager) StartUser(ctx context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user == "" {
		return ErrEmptyUser
	}
	if m.current != nil {
		m.log.V(1).Info("session already running, ignoring start", "running", m.current.User, "user", user)
		return nil
	}
	return m.startLocked(ctx, user)
}

// SwitchUser stops the running session, if any, and starts one for user.
func (m *Manager) SwitchUser(ctx context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user == "" {
		return ErrEmptyUser
	}
	if m.current != nil && m.current.User == user {
		return nil
	}
	m.stopLocked()
	return m.startLocked(ctx, user)
}

// StopUser stops the session if it belongs to user.
func (m *Manager) StopUser(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.User != user {
		return
	}
	m.stopLocked()
}

// Current returns the running session.
func (m *Manager) Current() (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Info{}, false
	}
	return m.current.Info, true
}

// Shutdown stops the running session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) startLocked(ctx context.Context, user string) error {
	id := uuid.NewString()
	log := m.log.WithValues("user", user, "session", id)

	runner, err := m.factory(ctx, user, log)
	if err != nil {
		return fmt.Errorf("create session for user %s: %w", user, err)
	}
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start session for user %s: %w", user, err)
	}

	m.current = &session{Info: Info{ID: id, User: user}, runner: runner}
	metrics.ActiveSessions.Set(1)
	log.Info("session started")
	return nil
}

func (m *Manager) stopLocked() {
	if m.current == nil {
		return
	}

	m.current.runner.Shutdown()
	m.log.Info("session stopped", "user", m.current.User, "session", m.current.ID)
	m.current = nil
	metrics.ActiveSessions.Set(0)
}
