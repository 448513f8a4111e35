/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrEmptyWindow is returned when a window has identical start and end and therefore never activates.
var ErrEmptyWindow = errors.New("window start equals end, flag never activates")

// Transition is a scheduled flip of the activation flag.
type Transition struct {
	// At is the instant of the flip.
	At time.Time

	// Activated is the flag value after the flip.
	Activated bool
}

// PreviewEvaluator lists upcoming transitions of a fixed window using cron schedules.
type PreviewEvaluator struct {
	parser cron.Parser
}

// NewPreviewEvaluator creates a new preview evaluator.
func NewPreviewEvaluator() *PreviewEvaluator {
	return &PreviewEvaluator{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// ConvertWindowToCron converts a window into daily cron expressions.
// Returns activateCron and deactivateCron.
func ConvertWindowToCron(w Window) (string, string) {
	// Format: MIN HOUR DAY MONTH DOW
	activateCron := fmt.Sprintf("%d %d * * *", w.Start.Minute(), w.Start.Hour())
	deactivateCron := fmt.Sprintf("%d %d * * *", w.End.Minute(), w.End.Hour())
	return activateCron, deactivateCron
}

// Upcoming returns the next n transitions strictly after from, evaluated in from's location.
func (e *PreviewEvaluator) Upcoming(w Window, from time.Time, n int) ([]Transition, error) {
	if w.Start == w.End {
		return nil, ErrEmptyWindow
	}

	activateCron, deactivateCron := ConvertWindowToCron(w)

	activateSched, err := e.parser.Parse(activateCron)
	if err != nil {
		return nil, fmt.Errorf("invalid activate cron %q: %w", activateCron, err)
	}
	deactivateSched, err := e.parser.Parse(deactivateCron)
	if err != nil {
		return nil, fmt.Errorf("invalid deactivate cron %q: %w", deactivateCron, err)
	}

	nextOn := activateSched.Next(from)
	nextOff := deactivateSched.Next(from)

	events := make([]Transition, 0, n)
	for len(events) < n {
		if nextOn.Before(nextOff) {
			events = append(events, Transition{At: nextOn, Activated: true})
			nextOn = activateSched.Next(nextOn)
		} else {
			events = append(events, Transition{At: nextOff, Activated: false})
			nextOff = deactivateSched.Next(nextOff)
		}
	}

	return events, nil
}
