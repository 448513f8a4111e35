/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package window

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
)

type windowOptions struct {
	root  *common.RootOptions
	start string
	end   string
}

// NewCommand creates the "window" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	winOpts := &windowOptions{root: opts}

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show or set the fixed activation window",
		Long: `Without flags, print the stored window. With --start and/or --end,
store new bounds (HH:MM, local time). An end before the start wraps
midnight, e.g. --start 22:00 --end 06:00. When both are given the end
is stored first; a daemon may recompute once against the new end and
the old start before the new start arrives.

Examples:
  autodarkctl window
  autodarkctl window --start 21:30 --end 06:30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := common.NewSettings(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return Run(cmd.Context(), s, winOpts.start, winOpts.end, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&winOpts.start, "start", "", "Window start, HH:MM")
	cmd.Flags().StringVar(&winOpts.end, "end", "", "Window end, HH:MM")

	return cmd
}

// Run prints the stored window, or stores the given non-empty bounds.
// Both bounds are validated before anything is written. The end is written
// first, so a running daemon briefly sees the new end with the old start.
func Run(ctx context.Context, s *settings.Settings, start, end string, w io.Writer) error {
	var startTOD, endTOD *scheduler.TimeOfDay
	if start != "" {
		tod, err := scheduler.ParseTimeOfDay(start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		startTOD = &tod
	}
	if end != "" {
		tod, err := scheduler.ParseTimeOfDay(end)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		endTOD = &tod
	}

	if endTOD != nil {
		if err := s.SetEndTime(ctx, *endTOD); err != nil {
			return err
		}
	}
	if startTOD != nil {
		if err := s.SetStartTime(ctx, *startTOD); err != nil {
			return err
		}
	}

	win, err := s.Window(ctx)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	if _, err := fmt.Fprintln(w, win); err != nil {
		return err
	}
	if win.Start == win.End {
		_, err = fmt.Fprintf(w, "warning: %v\n", scheduler.ErrEmptyWindow)
		return err
	}
	return nil
}
