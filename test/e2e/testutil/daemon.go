//go:build e2e

/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/ardikabs/autodark/internal/applier"
	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/session"
	"github.com/ardikabs/autodark/internal/settings"
)

// ProbeKey is written by WaitForWatch to detect that a store watch is live.
const ProbeKey = "e2e_probe"

type watcher interface {
	Watch(ctx context.Context) error
}

// Daemon wires sessions, settings, schedulers and fakes the same way autodarkd
// does, with a fake clock and recording appliers.
type Daemon struct {
	Clock    *clocktesting.FakeClock
	Oracle   *oracle.Static
	Sessions *session.Manager

	newStore func(user string) settings.Store
	log      logr.Logger

	mu       sync.Mutex
	appliers map[string]*applier.Fake
	runners  map[string]*Runner
}

// Runner is one user's scheduler plus the store watch feeding it.
type Runner struct {
	Scheduler *scheduler.Scheduler
	Settings  *settings.Settings

	store  settings.Store
	log    logr.Logger
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	keys  map[string]int
	unsub func()
}

// NewDaemon creates a daemon whose users keep their settings in newStore(user).
func NewDaemon(clk *clocktesting.FakeClock, dayNight *oracle.Static, newStore func(user string) settings.Store, log logr.Logger) *Daemon {
	d := &Daemon{
		Clock:    clk,
		Oracle:   dayNight,
		newStore: newStore,
		log:      log,
		appliers: make(map[string]*applier.Fake),
		runners:  make(map[string]*Runner),
	}
	d.Sessions = session.NewManager(d.build, log)
	return d
}

// Location is the zone every daemon in the suite runs in.
func Location() *time.Location { return time.UTC }

// NewSettings opens a user's settings the way autodarkctl does.
func NewSettings(store settings.Store, clk *clocktesting.FakeClock) *settings.Settings {
	return settings.New(store, clk, Location, settings.DefaultDefaults())
}

func (d *Daemon) build(_ context.Context, user string, log logr.Logger) (session.Runner, error) {
	store := d.newStore(user)
	s := NewSettings(store, d.Clock)

	d.mu.Lock()
	fake, ok := d.appliers[user]
	if !ok {
		fake = &applier.Fake{}
		d.appliers[user] = fake
	}
	d.mu.Unlock()

	r := &Runner{
		Settings: s,
		store:    store,
		log:      log,
		keys:     make(map[string]int),
		Scheduler: scheduler.New(scheduler.Config{
			Log:      log,
			Clock:    d.Clock,
			Location: Location,
			Settings: s,
			Oracle:   d.Oracle,
			Applier:  fake,
			User:     user,
		}),
	}

	d.mu.Lock()
	d.runners[user] = r
	d.mu.Unlock()
	return r, nil
}

// Applied returns every value applied for user, oldest first.
func (d *Daemon) Applied(user string) []bool {
	d.mu.Lock()
	fake, ok := d.appliers[user]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	return fake.Values()
}

// LastApplied returns the most recent applied value for user and whether any exists.
func (d *Daemon) LastApplied(user string) (bool, bool) {
	values := d.Applied(user)
	if len(values) == 0 {
		return false, false
	}
	return values[len(values)-1], true
}

// Runner returns the most recent runner built for user.
func (d *Daemon) Runner(user string) *Runner {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runners[user]
}

// Start implements session.Runner.
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	r.unsub = r.store.Subscribe(func(key string) {
		r.mu.Lock()
		r.keys[key]++
		r.mu.Unlock()
	})

	go func() {
		defer close(r.done)
		w, ok := r.store.(watcher)
		if !ok {
			return
		}
		if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error(err, "settings watch stopped")
		}
	}()

	return r.Scheduler.Start(ctx)
}

// Shutdown implements session.Runner.
func (r *Runner) Shutdown() {
	r.Scheduler.Shutdown()
	r.unsub()
	r.cancel()
	<-r.done
}

// Seen reports how many change notifications the runner's store delivered for key.
func (r *Runner) Seen(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key]
}

// Probe writes a fresh probe value through writer. It is used with Seen to
// find out when the runner's store watch delivers external edits.
func Probe(ctx context.Context, writer settings.Store, attempt int) error {
	v := fmt.Sprintf("%d", attempt)
	return writer.SetString(ctx, ProbeKey, &v)
}
