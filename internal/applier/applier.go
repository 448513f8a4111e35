/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package applier performs the side effect of an activation change.
package applier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Applier switches the theme for an activation value.
type Applier interface {
	Apply(ctx context.Context, activated bool) error
}

// Theme returns the theme name for an activation value.
func Theme(activated bool) string {
	if activated {
		return "dark"
	}
	return "light"
}

// Payload is the JSON document describing an applied activation.
type Payload struct {
	User      string `json:"user"`
	Activated bool   `json:"activated"`
	Theme     string `json:"theme"`
	Timestamp string `json:"timestamp"`
}

// FormatPayload creates the JSON payload for an activation applied at ts.
func FormatPayload(user string, activated bool, ts time.Time) ([]byte, error) {
	return json.Marshal(Payload{
		User:      user,
		Activated: activated,
		Theme:     Theme(activated),
		Timestamp: ts.UTC().Format(time.RFC3339),
	})
}

// Multi applies to every applier in order and joins their errors.
type Multi []Applier

// Apply implements Applier.
func (m Multi) Apply(ctx context.Context, activated bool) error {
	var errs []error
	for i, a := range m {
		if err := a.Apply(ctx, activated); err != nil {
			errs = append(errs, fmt.Errorf("applier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
