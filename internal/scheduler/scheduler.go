/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/samber/lo"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/metrics"
	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/wellknown"
)

// ErrAlreadyStarted is returned by Start on a running Scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Config holds the collaborators of a Scheduler.
type Config struct {
	Log      logr.Logger
	Clock    clock.WithDelayedExecution
	Location func() *time.Location

	Settings   Settings
	Oracle     oracle.Oracle
	TimeChange TimeChangeNotifier
	Applier    Applier

	// User scopes metrics and log lines.
	User string

	// PolicyFactory overrides policy construction. Nil uses the built-in policies.
	PolicyFactory func(kind Kind) Policy
}

// Scheduler owns the active policy for one user and dispatches settings changes to it.
//
// Public methods take the Scheduler's lock directly. Timer fires, oracle pushes,
// time changes and settings changes are posted to a serialized queue and run
// under the same lock, so a policy never observes concurrent calls.
// The Applier runs in order on its own worker, outside the lock.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config
	log logr.Logger
	env *policyEnv

	queue   *taskQueue
	applies *taskQueue
	policy  Policy
	applied *bool

	started     bool
	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
	applyDone   chan struct{}
}

// New creates a Scheduler. Missing clock and location default to the real clock and time.Local.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Location == nil {
		cfg.Location = func() *time.Location { return time.Local }
	}
	if cfg.User == "" {
		cfg.User = wellknown.DefaultUser
	}

	s := &Scheduler{
		cfg:     cfg,
		log:     cfg.Log.WithName("scheduler").WithValues("user", cfg.User),
		queue:   newTaskQueue(),
		applies: newTaskQueue(),
	}
	s.env = &policyEnv{
		ctx:      context.Background(),
		log:      s.log,
		clock:    cfg.Clock,
		location: cfg.Location,
		post:     s.post,
		user:     cfg.User,
	}
	return s
}

// Start subscribes to settings changes, starts the stored policy and applies
// the current activation flag once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.applyDone = make(chan struct{})
	s.env.ctx = ctx
	s.applied = nil

	queue, done := s.queue, s.done
	go func() {
		defer close(done)
		queue.run(ctx, s.exec)
	}()

	applies, applyDone := s.applies, s.applyDone
	go func() {
		defer close(applyDone)
		applies.run(ctx, func(fn func()) { fn() })
	}()

	s.unsubscribe = s.cfg.Settings.Subscribe(func(key string) {
		s.post(func() { s.onSettingChangedLocked(key) })
	})

	kind, err := s.cfg.Settings.Mode(ctx)
	if err != nil {
		s.log.Error(err, "invalid stored policy kind, using fallback", "kind", kind.String())
	}

	s.log.Info("starting scheduler", "policy", kind.String())
	s.setPolicyLocked(kind)
	s.applyActivationLocked(true)
	return nil
}

// Shutdown stops the active policy and the worker. It is safe to call more than once.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false

	if s.policy != nil {
		s.policy.OnStop()
		metrics.ActivePolicy.WithLabelValues(s.cfg.User, s.policy.Kind().String()).Set(0)
		s.policy = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	cancel, done, applyDone := s.cancel, s.done, s.applyDone
	s.mu.Unlock()

	cancel()
	<-done
	<-applyDone
	s.log.Info("scheduler stopped")
}

// SetPolicy switches to the given policy kind. Switching to the active kind is a no-op.
func (s *Scheduler) SetPolicy(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPolicyLocked(kind)
}

// OnManualActivationToggled tells the active policy the flag was changed outside of it.
func (s *Scheduler) OnManualActivationToggled(activated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy != nil {
		s.policy.OnActivated(activated)
	}
}

// OnParametersChanged relays new window boundaries to a fixed window policy.
func (s *Scheduler) OnParametersChanged(w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parametersChangedLocked(w)
}

// ActivePolicy returns the kind of the running policy.
func (s *Scheduler) ActivePolicy() (Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy == nil {
		return 0, false
	}
	return s.policy.Kind(), true
}

// NextWake returns the pending fixed window recomputation instant, if any.
func (s *Scheduler) NextWake() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fw, ok := s.policy.(*FixedWindowPolicy)
	if !ok {
		return time.Time{}, false
	}
	return fw.NextWake()
}

// Sync blocks until every task queued so far, and every task those tasks queued,
// has run, including the resulting Applier calls.
func (s *Scheduler) Sync(ctx context.Context) error {
	for {
		for _, q := range []*taskQueue{s.queue, s.applies} {
			barrier := make(chan struct{})
			q.post(func() { close(barrier) })

			select {
			case <-barrier:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if s.queue.len() == 0 && s.applies.len() == 0 {
			return nil
		}
	}
}

func (s *Scheduler) post(fn func()) {
	s.queue.post(fn)
}

func (s *Scheduler) exec(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Scheduler) setPolicyLocked(kind Kind) {
	if !kind.Valid() {
		s.log.Info("unknown policy kind, falling back", "kind", kind.String(), "fallback", KindOracle.String())
		kind = KindOracle
	}
	if s.policy != nil && s.policy.Kind() == kind {
		return
	}

	if s.policy != nil {
		s.policy.OnStop()
		metrics.ActivePolicy.WithLabelValues(s.cfg.User, s.policy.Kind().String()).Set(0)
	}

	s.log.Info("switching policy", "policy", kind.String())
	s.policy = s.newPolicy(kind)
	s.policy.OnStart()
	metrics.ActivePolicy.WithLabelValues(s.cfg.User, kind.String()).Set(1)
}

func (s *Scheduler) newPolicy(kind Kind) Policy {
	if s.cfg.PolicyFactory != nil {
		return s.cfg.PolicyFactory(kind)
	}
	if kind == KindFixedWindow {
		return newFixedWindowPolicy(s.env, s.cfg.Settings, s.cfg.TimeChange)
	}
	return newOraclePolicy(s.env, s.cfg.Settings, s.cfg.Oracle)
}

func (s *Scheduler) parametersChangedLocked(w Window) {
	if s.policy == nil {
		return
	}
	if s.policy.Kind() != KindFixedWindow {
		s.log.V(1).Info("ignoring window change for non fixed-window policy",
			"policy", s.policy.Kind().String(), "window", w.String())
		return
	}
	s.policy.OnParametersChanged(w)
}

func (s *Scheduler) onSettingChangedLocked(key string) {
	if !s.started {
		return
	}

	switch key {
	case wellknown.KeyActivated:
		s.applyActivationLocked(false)
	case wellknown.KeyAutoMode:
		kind, err := s.cfg.Settings.Mode(s.env.ctx)
		if err != nil {
			s.log.Error(err, "invalid stored policy kind, using fallback", "kind", kind.String())
		}
		s.setPolicyLocked(kind)
	case wellknown.KeyCustomStartTime, wellknown.KeyCustomEndTime:
		w, err := s.cfg.Settings.Window(s.env.ctx)
		if err != nil {
			s.log.Error(err, "invalid stored window, using defaults", "window", w.String())
		}
		s.parametersChangedLocked(w)
	}
}

// applyActivationLocked runs the side effect for the stored flag. Unless forced,
// it does nothing when the flag equals the last applied value.
func (s *Scheduler) applyActivationLocked(force bool) {
	activated, err := s.cfg.Settings.IsActivated(s.env.ctx)
	if err != nil {
		s.log.Error(err, "failed to read activation flag")
		return
	}
	if !force && s.applied != nil && *s.applied == activated {
		return
	}
	s.applied = lo.ToPtr(activated)

	s.log.Info(lo.Ternary(activated, "turning on dark theme", "turning on light theme"))
	metrics.ActivationState.WithLabelValues(s.cfg.User).Set(lo.Ternary(activated, 1.0, 0.0))

	if applier := s.cfg.Applier; applier != nil {
		ctx := s.env.ctx
		s.applies.post(func() {
			if err := applier.Apply(ctx, activated); err != nil {
				s.log.Error(err, "failed to apply theme", "activated", activated)
				metrics.ApplyFailuresTotal.WithLabelValues(s.cfg.User).Inc()
			}
		})
	}

	if !force && s.policy != nil {
		s.policy.OnActivated(activated)
	}
}
