/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/metrics"
)

// FixedWindowPolicy keeps the activation flag on inside a daily [start, end) window.
//
// The policy sleeps until the next boundary instead of polling. A manual toggle
// made inside the current period is respected until the period ends: the instant
// of the last flip is persisted and compared against the window bounds on every
// recomputation.
type FixedWindowPolicy struct {
	env        *policyEnv
	settings   Settings
	timeChange TimeChangeNotifier

	window  Window
	last    *time.Time
	running bool

	timer      clock.Timer
	nextWake   time.Time
	generation uint64

	cancelTimeChange func()
}

func newFixedWindowPolicy(env *policyEnv, settings Settings, timeChange TimeChangeNotifier) *FixedWindowPolicy {
	return &FixedWindowPolicy{
		env:        env,
		settings:   settings,
		timeChange: timeChange,
	}
}

// Kind implements Policy.
func (p *FixedWindowPolicy) Kind() Kind { return KindFixedWindow }

// Window returns the window currently in effect.
func (p *FixedWindowPolicy) Window() Window { return p.window }

// NextWake returns the instant of the pending recomputation, if any.
func (p *FixedWindowPolicy) NextWake() (time.Time, bool) {
	if p.timer == nil {
		return time.Time{}, false
	}
	return p.nextWake, true
}

// OnStart implements Policy.
func (p *FixedWindowPolicy) OnStart() {
	if p.running {
		return
	}
	p.running = true

	w, err := p.settings.Window(p.env.ctx)
	if err != nil {
		p.env.log.Error(err, "invalid window parameters, using defaults", "window", w.String())
	}
	p.window = w
	p.last = p.loadLastActivatedAt()

	p.env.log.V(1).Info("fixed window policy started", "window", w.String())
	p.recompute(p.env.now())

	if p.timeChange != nil {
		p.cancelTimeChange = p.timeChange.Subscribe(func() {
			p.env.post(p.onTimeOrZoneChanged)
		})
	}
}

// OnStop implements Policy.
func (p *FixedWindowPolicy) OnStop() {
	if !p.running {
		return
	}
	p.running = false

	p.cancelWake()
	if p.cancelTimeChange != nil {
		p.cancelTimeChange()
		p.cancelTimeChange = nil
	}
	p.last = nil
	metrics.NextWakeTimestamp.DeleteLabelValues(p.env.user)
}

// OnParametersChanged implements Policy.
func (p *FixedWindowPolicy) OnParametersChanged(w Window) {
	p.window = w
	p.last = nil

	if err := p.settings.ClearLastActivatedAt(p.env.ctx); err != nil {
		p.env.log.Error(err, "failed to reset last activation time")
		metrics.StoreWriteFailuresTotal.WithLabelValues(p.env.user).Inc()
	}

	if !p.running {
		return
	}
	p.env.log.Info("window changed", "window", w.String())
	p.recompute(p.env.now())
}

// OnActivated implements Policy.
func (p *FixedWindowPolicy) OnActivated(activated bool) {
	if !p.running {
		return
	}
	p.last = p.loadLastActivatedAt()
	p.scheduleWake(p.env.now(), activated)
}

func (p *FixedWindowPolicy) onTimerFired(gen uint64) {
	if !p.running || gen != p.generation {
		return
	}
	p.timer = nil
	p.recompute(p.env.now())
}

func (p *FixedWindowPolicy) onTimeOrZoneChanged() {
	if !p.running {
		return
	}
	p.env.log.V(1).Info("time or zone changed, recomputing")
	p.recompute(p.env.now())
}

func (p *FixedWindowPolicy) recompute(now time.Time) {
	start, end := p.window.Bounds(now)
	desired := now.Before(end)

	stored, err := p.settings.IsActivated(p.env.ctx)
	if err != nil {
		p.env.log.Error(err, "failed to read activation flag")
		metrics.RecomputeTotal.WithLabelValues(p.env.user, KindFixedWindow.String(), "error").Inc()
		p.scheduleWake(now, desired)
		return
	}

	if p.last != nil {
		last := *p.last
		if last.Before(now) && last.After(start) && (last.After(end) || now.Before(end)) {
			desired = stored
		}
	}

	result := "unchanged"
	if desired != stored {
		result = "changed"
		if err := p.settings.SetActivated(p.env.ctx, desired); err != nil {
			result = "error"
			p.env.log.Error(err, "failed to persist activation flag", "activated", desired)
			metrics.StoreWriteFailuresTotal.WithLabelValues(p.env.user).Inc()
		} else {
			metrics.TransitionsTotal.WithLabelValues(p.env.user, metrics.BoolLabel(desired)).Inc()
			p.last = p.loadLastActivatedAt()
		}
	}
	metrics.RecomputeTotal.WithLabelValues(p.env.user, KindFixedWindow.String(), result).Inc()

	p.env.log.V(1).Info("recomputed activation",
		"now", now,
		"windowStart", start,
		"windowEnd", end,
		"activated", desired,
	)
	p.scheduleWake(now, desired)
}

func (p *FixedWindowPolicy) scheduleWake(now time.Time, activated bool) {
	p.cancelWake()

	boundary := p.window.Start
	if activated {
		boundary = p.window.End
	}
	wake := OccurrenceAfter(boundary, now)
	if !wake.After(now) {
		wake = wake.AddDate(0, 0, 1)
	}

	gen := p.generation
	p.nextWake = wake
	p.timer = p.env.clock.AfterFunc(wake.Sub(now), func() {
		p.env.post(func() { p.onTimerFired(gen) })
	})
	metrics.NextWakeTimestamp.WithLabelValues(p.env.user).Set(float64(wake.Unix()))
}

// cancelWake stops the pending timer and invalidates any fire already in flight.
func (p *FixedWindowPolicy) cancelWake() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.generation++
}

func (p *FixedWindowPolicy) loadLastActivatedAt() *time.Time {
	last, err := p.settings.LastActivatedAt(p.env.ctx)
	if err != nil {
		p.env.log.Error(err, "failed to read last activation time")
		return nil
	}
	return last
}
