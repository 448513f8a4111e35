/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package status

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/cmd/autodarkctl/printers"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
)

// NewCommand creates the "status" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the theme, policy and window of a user",
		Long: `Show the stored activation flag, the time it last changed, the active
policy and the fixed window. With the fixed-window policy the next
transition is shown as well.

Examples:
  autodarkctl status
  autodarkctl status --user 1000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := common.NewSettings(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			loc, err := common.ResolveLocation(opts)
			if err != nil {
				return err
			}
			return Run(cmd.Context(), opts, s, time.Now().In(loc), cmd.OutOrStdout())
		},
	}

	return cmd
}

// Run prints the status of s as seen at now.
func Run(ctx context.Context, opts *common.RootOptions, s *settings.Settings, now time.Time, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	out := &printers.StatusOutput{
		User:     opts.User,
		Store:    opts.Store,
		Snapshot: snap,
		Now:      now,
	}

	if snap.Mode == scheduler.KindFixedWindow {
		events, err := scheduler.NewPreviewEvaluator().Upcoming(snap.Window, now, 1)
		if err == nil && len(events) > 0 {
			out.Next = &events[0]
		}
	}

	d := &printers.Dispatcher{JSON: opts.JsonOutput}
	return d.PrintObj(out, w)
}
