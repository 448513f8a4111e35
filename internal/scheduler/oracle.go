/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"github.com/ardikabs/autodark/internal/metrics"
	"github.com/ardikabs/autodark/internal/oracle"
)

// OraclePolicy follows the day/night signal of an oracle: activated at night.
// It owns no timers; the oracle pushes every state change.
type OraclePolicy struct {
	env     *policyEnv
	store   ActivationStore
	oracle  oracle.Oracle
	running bool
}

var _ oracle.Listener = (*OraclePolicy)(nil)

func newOraclePolicy(env *policyEnv, store ActivationStore, o oracle.Oracle) *OraclePolicy {
	return &OraclePolicy{env: env, store: store, oracle: o}
}

// Kind implements Policy.
func (p *OraclePolicy) Kind() Kind { return KindOracle }

// OnStart implements Policy.
func (p *OraclePolicy) OnStart() {
	if p.running {
		return
	}
	p.running = true

	if p.oracle == nil {
		p.env.log.Info("no day/night oracle configured, activation follows manual toggles only")
		return
	}
	p.oracle.Subscribe(p)
	p.recompute(p.oracle.CurrentState())
}

// OnStop implements Policy.
func (p *OraclePolicy) OnStop() {
	if !p.running {
		return
	}
	p.running = false

	if p.oracle != nil {
		p.oracle.Unsubscribe(p)
	}
}

// OnActivated implements Policy. The last activation time is read from the store on every recompute.
func (p *OraclePolicy) OnActivated(bool) {}

// OnParametersChanged implements Policy. Window parameters do not apply to this policy.
func (p *OraclePolicy) OnParametersChanged(Window) {}

// OnStateChanged implements oracle.Listener.
func (p *OraclePolicy) OnStateChanged(state *oracle.State) {
	p.env.post(func() {
		if !p.running {
			return
		}
		p.recompute(state)
	})
}

func (p *OraclePolicy) recompute(state *oracle.State) {
	if state == nil {
		p.env.log.V(1).Info("oracle has no state yet, keeping activation")
		metrics.RecomputeTotal.WithLabelValues(p.env.user, KindOracle.String(), "skipped").Inc()
		return
	}

	stored, err := p.store.IsActivated(p.env.ctx)
	if err != nil {
		p.env.log.Error(err, "failed to read activation flag")
		metrics.RecomputeTotal.WithLabelValues(p.env.user, KindOracle.String(), "error").Inc()
		return
	}

	now := p.env.now()
	desired := state.IsNight

	last, err := p.store.LastActivatedAt(p.env.ctx)
	if err != nil {
		p.env.log.Error(err, "failed to read last activation time")
	}
	// A flip recorded between the two bounding instants belongs to the current period.
	if last != nil && last.Before(now) && (last.Before(state.Sunrise) != last.Before(state.Sunset)) {
		desired = stored
	}

	result := "unchanged"
	if desired != stored {
		result = "changed"
		if err := p.store.SetActivated(p.env.ctx, desired); err != nil {
			result = "error"
			p.env.log.Error(err, "failed to persist activation flag", "activated", desired)
			metrics.StoreWriteFailuresTotal.WithLabelValues(p.env.user).Inc()
		} else {
			metrics.TransitionsTotal.WithLabelValues(p.env.user, metrics.BoolLabel(desired)).Inc()
		}
	}
	metrics.RecomputeTotal.WithLabelValues(p.env.user, KindOracle.String(), result).Inc()

	p.env.log.V(1).Info("recomputed activation",
		"isNight", state.IsNight,
		"sunrise", state.Sunrise,
		"sunset", state.Sunset,
		"activated", desired,
	)
}
