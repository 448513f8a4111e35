/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/ardikabs/autodark/internal/applier"
	"github.com/ardikabs/autodark/internal/scheduler"
)

// ResourcePrinter is an interface that knows how to print objects.
type ResourcePrinter interface {
	PrintObj(obj any, w io.Writer) error
}

// Dispatcher selects between JSON and human-readable (table) output formats.
type Dispatcher struct {
	JSON bool
}

func (d *Dispatcher) PrintObj(obj any, w io.Writer) error {
	if d.JSON {
		return (&JSONPrinter{}).PrintObj(obj, w)
	}
	return (&HumanReadablePrinter{}).PrintObj(obj, w)
}

// JSONPrinter prints outputs as indented JSON. Unknown objects are encoded as-is.
type JSONPrinter struct{}

func (p *JSONPrinter) PrintObj(obj any, w io.Writer) error {
	var output any = obj

	switch v := obj.(type) {
	case *StatusOutput:
		output = statusToJSON(v)
	case *PreviewOutput:
		output = PreviewJSON{
			Window: windowJSON(v.Window),
			Events: lo.Map(v.Events, func(tr scheduler.Transition, _ int) TransitionJSON { return transitionJSON(tr) }),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func statusToJSON(v *StatusOutput) StatusJSON {
	out := StatusJSON{
		User:      v.User,
		Store:     v.Store,
		Activated: v.Snapshot.Activated,
		Theme:     applier.Theme(v.Snapshot.Activated),
		Mode:      v.Snapshot.Mode.String(),
		Window:    windowJSON(v.Snapshot.Window),
	}
	if v.Snapshot.LastActivatedAt != nil {
		out.LastActivatedAt = v.Snapshot.LastActivatedAt.Format(time.RFC3339)
	}
	if v.Next != nil {
		out.Next = lo.ToPtr(transitionJSON(*v.Next))
	}
	return out
}

// HumanReadablePrinter handles table-like output.
type HumanReadablePrinter struct{}

func (p *HumanReadablePrinter) PrintObj(obj any, w io.Writer) error {
	switch v := obj.(type) {
	case *StatusOutput:
		return p.printStatus(v, w)
	case *PreviewOutput:
		return p.printPreview(v, w)
	default:
		return fmt.Errorf("no human-readable printer registered for %T", obj)
	}
}

func (p *HumanReadablePrinter) printStatus(out *StatusOutput, w io.Writer) error {
	tw := newTextWriter(w)
	snap := out.Snapshot

	tw.line("User:\t%s", out.User)
	tw.line("Store:\t%s", out.Store)
	tw.line("Theme:\t%s", applier.Theme(snap.Activated))
	tw.line("Last Changed:\t%s", lo.TernaryF(snap.LastActivatedAt == nil,
		func() string { return "-" },
		func() string { return snap.LastActivatedAt.Format(timeLayout) }))
	tw.line("Mode:\t%s", snap.Mode)
	tw.line("Window:\t%s", snap.Window)
	if out.Next != nil {
		tw.line("Next:\t%s", FormatTransition(out.Next, out.Now))
	}

	return tw.flush()
}

func (p *HumanReadablePrinter) printPreview(out *PreviewOutput, w io.Writer) error {
	tw := newTextWriter(w)

	tw.line("Window: %s", out.Window)
	tw.newline()
	tw.header("Time", "Theme", "In")
	for _, ev := range out.Events {
		tw.row(ev.At.Format(timeLayout), applier.Theme(ev.Activated), HumanDuration(ev.At.Sub(out.Now)))
	}

	return tw.flush()
}
