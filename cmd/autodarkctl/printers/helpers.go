/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"fmt"
	"time"

	"github.com/ardikabs/autodark/internal/applier"
	"github.com/ardikabs/autodark/internal/scheduler"
)

const timeLayout = "2006-01-02 15:04 MST"

// HumanDuration formats a duration into a human-readable string.
func HumanDuration(d time.Duration) string {
	if d < 0 {
		return "past"
	}

	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}

	hours := int(d.Hours())
	if hours < 24 {
		if mins := int(d.Minutes()) % 60; mins > 0 {
			return fmt.Sprintf("%dh%dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if rem := hours % 24; rem > 0 {
		return fmt.Sprintf("%dd%dh", days, rem)
	}
	return fmt.Sprintf("%dd", days)
}

// FormatTransition renders a transition relative to now, e.g. "dark at 2026-03-10 22:00 UTC (in 3h)".
func FormatTransition(tr *scheduler.Transition, now time.Time) string {
	if tr == nil {
		return "-"
	}
	return fmt.Sprintf("%s at %s (in %s)", applier.Theme(tr.Activated), tr.At.Format(timeLayout), HumanDuration(tr.At.Sub(now)))
}

func windowJSON(w scheduler.Window) WindowJSON {
	return WindowJSON{Start: w.Start.String(), End: w.End.String()}
}

func transitionJSON(tr scheduler.Transition) TransitionJSON {
	return TransitionJSON{At: tr.At.Format(time.RFC3339), Activated: tr.Activated}
}
