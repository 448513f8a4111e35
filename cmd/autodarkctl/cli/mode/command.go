/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package mode

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
)

// NewCommand creates the "mode" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode [fixed-window|oracle]",
		Short: "Show or set the activation policy",
		Long: `Without an argument, print the active policy. With an argument, switch
the daemon to that policy. Switching policies forgets the last
activation time so the new policy starts from a clean record.

Examples:
  autodarkctl mode
  autodarkctl mode oracle`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{scheduler.KindFixedWindow.String(), scheduler.KindOracle.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := common.NewSettings(opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return Run(cmd.Context(), s, args, cmd.OutOrStdout())
		},
	}

	return cmd
}

// Run prints the stored kind, or stores the kind named by args[0].
func Run(ctx context.Context, s *settings.Settings, args []string, w io.Writer) error {
	if len(args) == 0 {
		kind, err := s.Mode(ctx)
		if err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
		}
		_, err = fmt.Fprintln(w, kind)
		return err
	}

	kind, err := scheduler.ParseKind(args[0])
	if err != nil {
		return err
	}
	if err := s.SetMode(ctx, kind); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}

	_, err = fmt.Fprintf(w, "mode set to %s\n", kind)
	return err
}
