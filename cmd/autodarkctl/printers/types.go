/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"time"

	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
)

// StatusOutput is a wrapper for printing a user's settings.
type StatusOutput struct {
	User     string
	Store    string
	Snapshot settings.Snapshot
	Next     *scheduler.Transition
	Now      time.Time
}

// PreviewOutput is a wrapper for printing upcoming window transitions.
type PreviewOutput struct {
	Window scheduler.Window
	Events []scheduler.Transition
	Now    time.Time
}

// StatusJSON represents the JSON output for the status command.
type StatusJSON struct {
	User            string          `json:"user"`
	Store           string          `json:"store"`
	Activated       bool            `json:"activated"`
	Theme           string          `json:"theme"`
	LastActivatedAt string          `json:"lastActivatedAt,omitempty"`
	Mode            string          `json:"mode"`
	Window          WindowJSON      `json:"window"`
	Next            *TransitionJSON `json:"nextTransition,omitempty"`
}

// WindowJSON represents a fixed window.
type WindowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TransitionJSON represents a single upcoming flip.
type TransitionJSON struct {
	At        string `json:"at"`
	Activated bool   `json:"activated"`
}

// PreviewJSON represents the JSON output for the preview command.
type PreviewJSON struct {
	Window WindowJSON       `json:"window"`
	Events []TransitionJSON `json:"upcomingTransitions"`
}
