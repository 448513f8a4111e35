/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package scheduler decides when the dark theme activation flag should flip.
package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeOfDay is returned when a time-of-day value cannot be parsed or is out of range.
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

const millisPerDay = 24 * 60 * 60 * 1000

// TimeOfDay is a wall-clock hour and minute without a date or zone.
type TimeOfDay struct {
	hour   int
	minute int
}

// NewTimeOfDay builds a TimeOfDay, validating the hour (0-23) and minute (0-59).
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d out of range (0-23)", ErrInvalidTimeOfDay, hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute %d out of range (0-59)", ErrInvalidTimeOfDay, minute)
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// MustTimeOfDay is like NewTimeOfDay but panics on invalid input. Intended for constants and tests.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	tod, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return tod
}

// ParseTimeOfDay parses HH:MM format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q, expected HH:MM", ErrInvalidTimeOfDay, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute)
}

// TimeOfDayFromMillis decodes milliseconds since local midnight.
// Seconds and sub-second precision are dropped.
func TimeOfDayFromMillis(ms int64) (TimeOfDay, error) {
	if ms < 0 || ms >= millisPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: %dms since midnight out of range", ErrInvalidTimeOfDay, ms)
	}
	minutes := int(ms / 1000 / 60)
	return TimeOfDay{hour: minutes / 60, minute: minutes % 60}, nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return t.hour }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return t.minute }

// Millis encodes the value as milliseconds since local midnight.
func (t TimeOfDay) Millis() int64 {
	return int64(t.hour*60+t.minute) * 60 * 1000
}

// String formats the value as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// on returns the instant at this time of day on ref's calendar date, in ref's location.
func (t TimeOfDay) on(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.hour, t.minute, 0, 0, ref.Location())
}

// OccurrenceBefore returns the latest occurrence of tod that is at or before ref.
func OccurrenceBefore(tod TimeOfDay, ref time.Time) time.Time {
	t := tod.on(ref)
	if t.After(ref) {
		return t.AddDate(0, 0, -1)
	}
	return t
}

// OccurrenceAfter returns the earliest occurrence of tod that is at or after ref.
func OccurrenceAfter(tod TimeOfDay, ref time.Time) time.Time {
	t := tod.on(ref)
	if t.Before(ref) {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// Window is the half-open daily interval [Start, End) during which the flag should be on.
// A window whose end is before its start wraps midnight; equal bounds never activate.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// String formats the window as HH:MM-HH:MM.
func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Bounds resolves the current period around now. The end is resolved relative to the
// period's start, not to now, so that windows wrapping midnight are handled.
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	start = OccurrenceBefore(w.Start, now)
	end = OccurrenceAfter(w.End, start)
	return start, end
}

// Contains reports whether now falls inside the current period.
func (w Window) Contains(now time.Time) bool {
	_, end := w.Bounds(now)
	return now.Before(end)
}
