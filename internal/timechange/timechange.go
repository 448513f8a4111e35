/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package timechange reports wall-clock jumps and local time zone changes.
package timechange

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/callbacks"
	"github.com/ardikabs/autodark/internal/wellknown"
)

// Config configures a Watcher.
type Config struct {
	// LocaltimePath is the zoneinfo file describing the local zone. Empty disables zone watching.
	LocaltimePath string

	// CheckInterval is how often the wall clock is sampled.
	CheckInterval time.Duration

	// Threshold is the deviation from CheckInterval treated as a clock change.
	Threshold time.Duration
}

// DefaultConfig returns the configuration used by the daemon.
func DefaultConfig() Config {
	return Config{
		LocaltimePath: wellknown.LocaltimePath,
		CheckInterval: wellknown.ClockJumpCheckInterval,
		Threshold:     wellknown.ClockJumpThreshold,
	}
}

// Watcher samples the wall clock to detect jumps (manual changes, NTP steps,
// resume from suspend) and watches the localtime file for zone changes.
type Watcher struct {
	cfg   Config
	clock clock.WithTicker
	log   logr.Logger

	mu   sync.Mutex
	loc  *time.Location
	subs callbacks.Registry[func()]
}

// New creates a Watcher. The initial location is time.Local.
func New(cfg Config, clk clock.WithTicker, log logr.Logger) *Watcher {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = wellknown.ClockJumpCheckInterval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = wellknown.ClockJumpThreshold
	}
	return &Watcher{
		cfg:   cfg,
		clock: clk,
		log:   log.WithName("timechange"),
		loc:   time.Local,
	}
}

// Location returns the current local zone.
func (w *Watcher) Location() *time.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loc
}

// Subscribe registers fn to be called after every detected change.
func (w *Watcher) Subscribe(fn func()) func() {
	return w.subs.Add(fn)
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)

	if w.cfg.LocaltimePath != "" {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create zone watcher: %w", err)
		}
		defer fsw.Close()

		// The file is usually a symlink that gets replaced, so watch its directory.
		if err := fsw.Add(filepath.Dir(w.cfg.LocaltimePath)); err != nil {
			w.log.Error(err, "zone changes will not be detected", "path", w.cfg.LocaltimePath)
		} else {
			events, errs = fsw.Events, fsw.Errors
		}
	}

	ticker := w.clock.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	prev := w.clock.Now()
	w.log.V(1).Info("watching for time changes", "interval", w.cfg.CheckInterval, "localtime", w.cfg.LocaltimePath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C():
			now := w.clock.Now()
			if w.jumped(prev, now) {
				w.log.Info("wall clock changed", "expected", prev.Add(w.cfg.CheckInterval).Round(0), "actual", now.Round(0))
				w.notify()
			}
			prev = now

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.cfg.LocaltimePath) {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if w.reloadLocation() {
				w.notify()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.Error(err, "zone watcher error")
		}
	}
}

// jumped reports whether the wall time elapsed between two samples deviates
// from the sampling interval by more than the threshold.
func (w *Watcher) jumped(prev, now time.Time) bool {
	elapsed := now.Round(0).Sub(prev.Round(0))
	drift := elapsed - w.cfg.CheckInterval
	if drift < 0 {
		drift = -drift
	}
	return drift > w.cfg.Threshold
}

// reloadLocation reads the localtime file and reports whether a new zone was loaded.
func (w *Watcher) reloadLocation() bool {
	data, err := os.ReadFile(w.cfg.LocaltimePath)
	if err != nil {
		w.log.V(1).Info("localtime not readable", "reason", err.Error())
		return false
	}

	loc, err := time.LoadLocationFromTZData("Local", data)
	if err != nil {
		w.log.Error(err, "failed to parse localtime", "path", w.cfg.LocaltimePath)
		return false
	}

	now := w.clock.Now()
	w.mu.Lock()
	oldName, _ := now.In(w.loc).Zone()
	w.loc = loc
	w.mu.Unlock()

	newName, _ := now.In(loc).Zone()
	w.log.Info("time zone reloaded", "from", oldName, "to", newName)
	return true
}

func (w *Watcher) notify() {
	for _, fn := range w.subs.Snapshot() {
		fn()
	}
}
