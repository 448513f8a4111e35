/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/ardikabs/autodark/internal/wellknown"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func utc() *time.Location { return time.UTC }

// fakeSettings is an in-memory Settings that records activation writes.
type fakeSettings struct {
	mu    sync.Mutex
	clock clock.PassiveClock

	activated bool
	last      *time.Time
	mode      Kind
	modeErr   error
	window    Window
	windowErr error

	readErr  error
	writeErr error
	writes   []bool
	clears   int

	next int
	subs map[int]func(key string)
}

func newFakeSettings(clk clock.PassiveClock) *fakeSettings {
	return &fakeSettings{
		clock:  clk,
		mode:   KindFixedWindow,
		window: Window{Start: MustTimeOfDay(22, 0), End: MustTimeOfDay(6, 0)},
		subs:   map[int]func(key string){},
	}
}

func (f *fakeSettings) IsActivated(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.activated, nil
}

func (f *fakeSettings) SetActivated(_ context.Context, activated bool) error {
	f.mu.Lock()
	if f.writeErr != nil {
		f.mu.Unlock()
		return f.writeErr
	}
	f.writes = append(f.writes, activated)
	if f.activated == activated {
		f.mu.Unlock()
		return nil
	}
	now := f.clock.Now()
	f.last = &now
	f.activated = activated
	f.mu.Unlock()

	f.notify(wellknown.KeyLastActivatedTime)
	f.notify(wellknown.KeyActivated)
	return nil
}

// setExternally flips the flag the way another writer would.
func (f *fakeSettings) setExternally(activated bool) {
	f.mu.Lock()
	now := f.clock.Now()
	f.last = &now
	f.activated = activated
	f.mu.Unlock()

	f.notify(wellknown.KeyActivated)
}

func (f *fakeSettings) LastActivatedAt(context.Context) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return nil, nil
	}
	t := *f.last
	return &t, nil
}

func (f *fakeSettings) ClearLastActivatedAt(context.Context) error {
	f.mu.Lock()
	f.clears++
	f.last = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeSettings) Mode(context.Context) (Kind, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode, f.modeErr
}

func (f *fakeSettings) setMode(kind Kind) {
	f.mu.Lock()
	f.mode = kind
	f.mu.Unlock()
	f.notify(wellknown.KeyAutoMode)
}

func (f *fakeSettings) Window(context.Context) (Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window, f.windowErr
}

func (f *fakeSettings) setWindow(w Window) {
	f.mu.Lock()
	f.window = w
	f.mu.Unlock()
	f.notify(wellknown.KeyCustomStartTime)
	f.notify(wellknown.KeyCustomEndTime)
}

func (f *fakeSettings) Subscribe(fn func(key string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeSettings) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeSettings) notify(key string) {
	f.mu.Lock()
	fns := make([]func(string), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

func (f *fakeSettings) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeSettings) isActivated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activated
}

// manualQueue collects posted tasks until drain runs them.
type manualQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *manualQueue) post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, fn)
}

func (q *manualQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		fn()
	}
}

func newTestEnv(clk clock.WithDelayedExecution) (*policyEnv, *manualQueue) {
	q := &manualQueue{}
	return &policyEnv{
		ctx:      context.Background(),
		log:      logr.Discard(),
		clock:    clk,
		location: utc,
		post:     q.post,
		user:     "test",
	}, q
}

// fakeTimeChange lets tests fire time-change notifications.
type fakeTimeChange struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func (f *fakeTimeChange) Subscribe(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = map[int]func(){}
	}
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeTimeChange) fire() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeTimeChange) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// recordingApplier records every applied value.
type recordingApplier struct {
	mu      sync.Mutex
	applied []bool
}

func (r *recordingApplier) Apply(_ context.Context, activated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, activated)
	return nil
}

func (r *recordingApplier) values() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.applied...)
}

// countingPolicy counts lifecycle calls.
type countingPolicy struct {
	kind       Kind
	starts     int
	stops      int
	activated  []bool
	parameters []Window
}

func (p *countingPolicy) Kind() Kind                   { return p.kind }
func (p *countingPolicy) OnStart()                     { p.starts++ }
func (p *countingPolicy) OnStop()                      { p.stops++ }
func (p *countingPolicy) OnActivated(v bool)           { p.activated = append(p.activated, v) }
func (p *countingPolicy) OnParametersChanged(w Window) { p.parameters = append(p.parameters, w) }

var _ Policy = (*countingPolicy)(nil)

func newFakeClock(t time.Time) *clocktesting.FakeClock {
	return clocktesting.NewFakeClock(t)
}
