/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

// Kind identifies an activation policy. The integer values are the persisted encoding.
type Kind int

const (
	// KindFixedWindow activates the flag inside a fixed daily time window.
	KindFixedWindow Kind = 0

	// KindOracle activates the flag at night, as reported by a day/night oracle.
	KindOracle Kind = 1
)

// Valid reports whether k is a known policy kind.
func (k Kind) Valid() bool {
	return k == KindFixedWindow || k == KindOracle
}

// String returns the user-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFixedWindow:
		return "fixed-window"
	case KindOracle:
		return "oracle"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind accepts a kind name ("fixed-window", "custom", "oracle", "twilight") or its integer encoding.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed-window", "fixed", "custom":
		return KindFixedWindow, nil
	case "oracle", "twilight":
		return KindOracle, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Kind(n).Valid() {
		return 0, fmt.Errorf("invalid policy kind %q, expected fixed-window or oracle", s)
	}
	return Kind(n), nil
}

// Policy is one of the interchangeable scheduling strategies owned by a Scheduler.
// All methods are called with the Scheduler's lock held.
type Policy interface {
	// Kind returns the policy kind.
	Kind() Kind

	// OnStart computes the initial state and registers timers or subscriptions.
	OnStart()

	// OnStop releases timers and subscriptions. The persisted record is left untouched.
	OnStop()

	// OnActivated is called when the activation flag changed outside of this policy's own decision.
	OnActivated(activated bool)

	// OnParametersChanged is called when the fixed window boundaries were edited.
	OnParametersChanged(w Window)
}

// ActivationStore is the persisted activation record as seen by a policy.
type ActivationStore interface {
	IsActivated(ctx context.Context) (bool, error)
	SetActivated(ctx context.Context, activated bool) error
	LastActivatedAt(ctx context.Context) (*time.Time, error)
	ClearLastActivatedAt(ctx context.Context) error
}

// Settings is the per-user settings view consumed by the Scheduler.
// Mode and Window always return a usable value; a non-nil error reports that a
// malformed stored value was replaced by its default.
type Settings interface {
	ActivationStore
	Mode(ctx context.Context) (Kind, error)
	Window(ctx context.Context) (Window, error)
	Subscribe(fn func(key string)) (unsubscribe func())
}

// TimeChangeNotifier reports wall-clock or time zone changes.
type TimeChangeNotifier interface {
	Subscribe(fn func()) (cancel func())
}

// Applier performs the side effect of an activation change, e.g. switching the display theme.
type Applier interface {
	Apply(ctx context.Context, activated bool) error
}

// policyEnv carries the collaborators shared by both policy implementations.
type policyEnv struct {
	ctx      context.Context
	log      logr.Logger
	clock    clock.WithDelayedExecution
	location func() *time.Location
	post     func(fn func())
	user     string
}

func (e *policyEnv) now() time.Time {
	return e.clock.Now().In(e.location())
}
