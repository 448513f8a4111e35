/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package toggle

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/internal/applier"
	"github.com/ardikabs/autodark/internal/settings"
)

// NewCommand creates the "toggle" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle [on|off]",
		Short: "Manually switch the dark theme",
		Long: `Flip the activation flag, or set it explicitly with on/off. The daemon
keeps a manual choice until the next scheduled boundary.

Examples:
  autodarkctl toggle
  autodarkctl toggle off`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
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

// Run flips the flag, or sets it from args[0].
func Run(ctx context.Context, s *settings.Settings, args []string, w io.Writer) error {
	current, err := s.IsActivated(ctx)
	if err != nil {
		return fmt.Errorf("failed to read activation flag: %w", err)
	}

	target := !current
	if len(args) == 1 {
		switch args[0] {
		case "on":
			target = true
		case "off":
			target = false
		default:
			return fmt.Errorf("invalid argument %q, expected on or off", args[0])
		}
	}

	if err := s.SetActivated(ctx, target); err != nil {
		return fmt.Errorf("failed to set activation flag: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s theme %s\n", applier.Theme(target), lo.Ternary(target == current, "already set", "set"))
	return err
}
