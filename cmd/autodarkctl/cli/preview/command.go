/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package preview

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/cmd/autodarkctl/printers"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
)

type previewOptions struct {
	root   *common.RootOptions
	start  string
	end    string
	events int
}

// NewCommand creates the "preview" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	previewOpts := &previewOptions{root: opts, events: 4}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List upcoming fixed window transitions",
		Long: `List the next dark/light transitions of the fixed window.

Uses the stored window unless --start and --end are given, in which case
the store is not contacted at all:
  autodarkctl preview
  autodarkctl preview --start 22:00 --end 06:00 --events 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := common.ResolveLocation(opts)
			if err != nil {
				return err
			}
			win, err := resolveWindow(cmd.Context(), previewOpts)
			if err != nil {
				return err
			}
			return Run(win, time.Now().In(loc), previewOpts.events, opts.JsonOutput, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&previewOpts.start, "start", "", "Window start, HH:MM (requires --end)")
	cmd.Flags().StringVar(&previewOpts.end, "end", "", "Window end, HH:MM (requires --start)")
	cmd.Flags().IntVar(&previewOpts.events, "events", 4, "Number of upcoming transitions to display")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

func resolveWindow(ctx context.Context, opts *previewOptions) (scheduler.Window, error) {
	if opts.start != "" {
		start, err := scheduler.ParseTimeOfDay(opts.start)
		if err != nil {
			return scheduler.Window{}, fmt.Errorf("invalid --start: %w", err)
		}
		end, err := scheduler.ParseTimeOfDay(opts.end)
		if err != nil {
			return scheduler.Window{}, fmt.Errorf("invalid --end: %w", err)
		}
		return scheduler.Window{Start: start, End: end}, nil
	}

	s, closeFn, err := common.NewSettings(opts.root)
	if err != nil {
		return scheduler.Window{}, err
	}
	defer closeFn()

	return windowFrom(ctx, s)
}

func windowFrom(ctx context.Context, s *settings.Settings) (scheduler.Window, error) {
	win, err := s.Window(ctx)
	if err != nil {
		return win, fmt.Errorf("stored window is invalid: %w", err)
	}
	return win, nil
}

// Run prints the next n transitions of win after now.
func Run(win scheduler.Window, now time.Time, n int, jsonOutput bool, w io.Writer) error {
	if n <= 0 {
		return fmt.Errorf("--events must be positive, got %d", n)
	}

	events, err := scheduler.NewPreviewEvaluator().Upcoming(win, now, n)
	if err != nil {
		return err
	}

	d := &printers.Dispatcher{JSON: jsonOutput}
	return d.PrintObj(&printers.PreviewOutput{Window: win, Events: events, Now: now}, w)
}
