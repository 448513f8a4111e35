/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/cmd/autodarkctl/printers"
	"github.com/ardikabs/autodark/internal/version"
)

// NewCommand creates the "version" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of autodarkctl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.JsonOutput {
				return (&printers.JSONPrinter{}).PrintObj(version.Get(), cmd.OutOrStdout())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "autodarkctl", version.GetVersion())
			return err
		},
	}

	return cmd
}
