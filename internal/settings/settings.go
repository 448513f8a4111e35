/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"k8s.io/utils/clock"

	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/wellknown"
)

// localDateTimeLayouts are the zone-less layouts written by older releases.
// Seconds are omitted when they and the fraction are zero.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// Defaults are returned for settings that are not stored.
type Defaults struct {
	Mode   scheduler.Kind
	Window scheduler.Window
}

// DefaultDefaults returns the built-in defaults: fixed window 22:00-06:00.
func DefaultDefaults() Defaults {
	return Defaults{
		Mode: scheduler.KindFixedWindow,
		Window: scheduler.Window{
			Start: lo.Must(scheduler.ParseTimeOfDay(wellknown.DefaultStartTime)),
			End:   lo.Must(scheduler.ParseTimeOfDay(wellknown.DefaultEndTime)),
		},
	}
}

// Snapshot is a point-in-time view of every scheduler setting.
type Snapshot struct {
	Activated       bool
	LastActivatedAt *time.Time
	Mode            scheduler.Kind
	Window          scheduler.Window
}

// Settings exposes typed accessors over a Store.
type Settings struct {
	store    Store
	clock    clock.PassiveClock
	location func() *time.Location
	defaults Defaults
}

var _ scheduler.Settings = (*Settings)(nil)

// New creates typed settings over store. A nil location uses time.Local.
func New(store Store, clk clock.PassiveClock, location func() *time.Location, defaults Defaults) *Settings {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if location == nil {
		location = func() *time.Location { return time.Local }
	}
	return &Settings{store: store, clock: clk, location: location, defaults: defaults}
}

// Store returns the underlying store.
func (s *Settings) Store() Store { return s.store }

// Subscribe implements scheduler.Settings.
func (s *Settings) Subscribe(fn func(key string)) func() {
	return s.store.Subscribe(fn)
}

// GetBool reads a "1"/"0" flag. Unset returns def; a malformed value returns def and a ParameterParseError.
func (s *Settings) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := s.store.GetString(ctx, key)
	if err != nil {
		return def, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}

	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, &ParameterParseError{Key: key, Value: raw, Err: err}
	}
	return b, nil
}

// SetBool writes a flag as "1" or "0".
func (s *Settings) SetBool(ctx context.Context, key string, v bool) error {
	if err := s.store.SetString(ctx, key, lo.ToPtr(lo.Ternary(v, "1", "0"))); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// IsActivated implements scheduler.ActivationStore. A malformed flag reads as off.
func (s *Settings) IsActivated(ctx context.Context) (bool, error) {
	v, err := s.GetBool(ctx, wellknown.KeyActivated, false)
	var perr *ParameterParseError
	if errors.As(err, &perr) {
		return false, nil
	}
	return v, err
}

// SetActivated implements scheduler.ActivationStore. The last activation time
// is stamped only when the flag actually flips, and before the flag is written.
func (s *Settings) SetActivated(ctx context.Context, activated bool) error {
	current, err := s.IsActivated(ctx)
	if err != nil {
		return err
	}
	if current == activated {
		return nil
	}

	stamp := s.clock.Now().In(s.location()).Format(time.RFC3339Nano)
	if err := s.store.SetString(ctx, wellknown.KeyLastActivatedTime, &stamp); err != nil {
		return fmt.Errorf("set %s: %w", wellknown.KeyLastActivatedTime, err)
	}
	return s.SetBool(ctx, wellknown.KeyActivated, activated)
}

// LastActivatedAt implements scheduler.ActivationStore.
func (s *Settings) LastActivatedAt(ctx context.Context) (*time.Time, error) {
	raw, ok, err := s.store.GetString(ctx, wellknown.KeyLastActivatedTime)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", wellknown.KeyLastActivatedTime, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.location()); err == nil {
			return &t, nil
		}
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &ParameterParseError{Key: wellknown.KeyLastActivatedTime, Value: raw, Err: err}
	}
	return lo.ToPtr(time.UnixMilli(ms).In(s.location())), nil
}

// ClearLastActivatedAt implements scheduler.ActivationStore.
func (s *Settings) ClearLastActivatedAt(ctx context.Context) error {
	if err := s.store.SetString(ctx, wellknown.KeyLastActivatedTime, nil); err != nil {
		return fmt.Errorf("clear %s: %w", wellknown.KeyLastActivatedTime, err)
	}
	return nil
}

// Mode implements scheduler.Settings. An unset kind returns the configured default;
// an unknown stored kind returns scheduler.KindOracle and a ParameterParseError.
func (s *Settings) Mode(ctx context.Context) (scheduler.Kind, error) {
	raw, ok, err := s.store.GetString(ctx, wellknown.KeyAutoMode)
	if err != nil {
		return s.defaults.Mode, fmt.Errorf("get %s: %w", wellknown.KeyAutoMode, err)
	}
	if !ok {
		return s.defaults.Mode, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return scheduler.KindOracle, &ParameterParseError{Key: wellknown.KeyAutoMode, Value: raw, Err: err}
	}
	if kind := scheduler.Kind(n); kind.Valid() {
		return kind, nil
	}
	return scheduler.KindOracle, &ParameterParseError{
		Key:   wellknown.KeyAutoMode,
		Value: raw,
		Err:   fmt.Errorf("unknown policy kind %d", n),
	}
}

// SetMode stores the policy kind. Changing the kind resets the last activation time.
func (s *Settings) SetMode(ctx context.Context, kind scheduler.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid policy kind %d", int(kind))
	}

	current, err := s.Mode(ctx)
	var perr *ParameterParseError
	if err != nil && !errors.As(err, &perr) {
		return err
	}
	if err == nil && current == kind {
		return nil
	}

	if err := s.ClearLastActivatedAt(ctx); err != nil {
		return err
	}
	if err := s.store.SetString(ctx, wellknown.KeyAutoMode, lo.ToPtr(strconv.Itoa(int(kind)))); err != nil {
		return fmt.Errorf("set %s: %w", wellknown.KeyAutoMode, err)
	}
	return nil
}

// StartTime returns the window start.
func (s *Settings) StartTime(ctx context.Context) (scheduler.TimeOfDay, error) {
	return s.timeOfDay(ctx, wellknown.KeyCustomStartTime, s.defaults.Window.Start)
}

// EndTime returns the window end.
func (s *Settings) EndTime(ctx context.Context) (scheduler.TimeOfDay, error) {
	return s.timeOfDay(ctx, wellknown.KeyCustomEndTime, s.defaults.Window.End)
}

// SetStartTime stores the window start.
func (s *Settings) SetStartTime(ctx context.Context, tod scheduler.TimeOfDay) error {
	return s.setTimeOfDay(ctx, wellknown.KeyCustomStartTime, tod)
}

// SetEndTime stores the window end.
func (s *Settings) SetEndTime(ctx context.Context, tod scheduler.TimeOfDay) error {
	return s.setTimeOfDay(ctx, wellknown.KeyCustomEndTime, tod)
}

// Window implements scheduler.Settings. Each malformed bound falls back to its default.
func (s *Settings) Window(ctx context.Context) (scheduler.Window, error) {
	start, startErr := s.StartTime(ctx)
	end, endErr := s.EndTime(ctx)
	return scheduler.Window{Start: start, End: end}, errors.Join(startErr, endErr)
}

// Snapshot reads every setting. Parse errors are reported after falling back to defaults.
func (s *Settings) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		errs []error
	)

	activated, err := s.GetBool(ctx, wellknown.KeyActivated, false)
	errs = append(errs, err)
	snap.Activated = activated

	snap.LastActivatedAt, err = s.LastActivatedAt(ctx)
	errs = append(errs, err)

	snap.Mode, err = s.Mode(ctx)
	errs = append(errs, err)

	snap.Window, err = s.Window(ctx)
	errs = append(errs, err)

	return snap, errors.Join(errs...)
}

func (s *Settings) timeOfDay(ctx context.Context, key string, def scheduler.TimeOfDay) (scheduler.TimeOfDay, error) {
	raw, ok, err := s.store.GetString(ctx, key)
	if err != nil {
		return def, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def, &ParameterParseError{Key: key, Value: raw, Err: err}
	}
	tod, err := scheduler.TimeOfDayFromMillis(ms)
	if err != nil {
		return def, &ParameterParseError{Key: key, Value: raw, Err: err}
	}
	return tod, nil
}

func (s *Settings) setTimeOfDay(ctx context.Context, key string, tod scheduler.TimeOfDay) error {
	if err := s.store.SetString(ctx, key, lo.ToPtr(strconv.FormatInt(tod.Millis(), 10))); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
