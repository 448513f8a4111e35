/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/session"
	"github.com/ardikabs/autodark/internal/settings"
)

// sessionDeps are the process-wide collaborators shared by every user session.
type sessionDeps struct {
	backend  storeBackend
	defaults settings.Defaults
	clock    clock.WithTickerAndDelayedExecution
	location func() *time.Location
	oracle   oracle.Oracle
	times    scheduler.TimeChangeNotifier
	applier  func(user string) scheduler.Applier
}

var _ session.Runner = (*userSession)(nil)

// userSession is a scheduler plus the store watch feeding it.
type userSession struct {
	scheduler *scheduler.Scheduler
	store     settings.Store
	log       logr.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func newSessionFactory(deps sessionDeps) session.Factory {
	return func(_ context.Context, user string, log logr.Logger) (session.Runner, error) {
		store := deps.backend.Store(user)
		s := settings.New(store, deps.clock, deps.location, deps.defaults)

		sched := scheduler.New(scheduler.Config{
			Log:        log,
			Clock:      deps.clock,
			Location:   deps.location,
			Settings:   s,
			Oracle:     deps.oracle,
			TimeChange: deps.times,
			Applier:    deps.applier(user),
			User:       user,
		})
		return &userSession{scheduler: sched, store: store, log: log}, nil
	}
}

func (u *userSession) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})

	go func() {
		defer close(u.done)
		w, ok := u.store.(watcher)
		if !ok {
			return
		}
		if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			u.log.Error(err, "settings watch stopped")
		}
	}()

	if err := u.scheduler.Start(ctx); err != nil {
		cancel()
		<-u.done
		return err
	}
	return nil
}

func (u *userSession) Shutdown() {
	u.scheduler.Shutdown()
	if u.cancel != nil {
		u.cancel()
		<-u.done
	}
}
