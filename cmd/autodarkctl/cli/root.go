/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/mode"
	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/preview"
	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/status"
	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/toggle"
	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/version"
	"github.com/ardikabs/autodark/cmd/autodarkctl/cli/window"
	"github.com/ardikabs/autodark/cmd/autodarkctl/common"
	"github.com/ardikabs/autodark/internal/wellknown"
	"github.com/ardikabs/autodark/pkg/envutil"
)

// NewRootCommand creates the root command for autodarkctl.
func NewRootCommand() *cobra.Command {
	opts := &common.RootOptions{}

	cmd := &cobra.Command{
		Use:   "autodarkctl",
		Short: "Inspect and edit autodark settings from the command line",
		Long: "autodarkctl reads and writes the per-user settings an autodark daemon follows.\n\n" +
			"Changes are written to the same store the daemon watches, so they take effect\n" +
			"without restarting it.\n\n" +
			"Examples:\n" +
			"  autodarkctl status --user 1000\n" +
			"  autodarkctl mode fixed-window\n" +
			"  autodarkctl window --start 21:30 --end 06:30\n" +
			"  autodarkctl toggle on\n" +
			"  autodarkctl preview --events 6",
		SilenceUsage: true,
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Store, "store", envutil.GetString("AUTODARK_STORE", common.StoreConfigMap), "Settings store backend: configmap or redis")
	flags.StringVarP(&opts.User, "user", "u", envutil.GetString("AUTODARK_USER", wellknown.DefaultUser), "User whose settings are read or written")
	flags.StringVar(&opts.Timezone, "timezone", envutil.GetString("TZ", ""), "Zone used to interpret and print times (defaults to local)")
	flags.StringVar(&opts.ConfigFile, "config", envutil.GetString("AUTODARK_CONFIG", ""), "Optional YAML file with default window and mode")
	flags.BoolVar(&opts.JsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log store operations to stderr")
	flags.StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig file (defaults to $KUBECONFIG or ~/.kube/config)")
	flags.StringVarP(&opts.Namespace, "namespace", "n", envutil.GetString("AUTODARK_NAMESPACE", ""), "Namespace of the settings ConfigMaps (defaults to current context namespace)")
	flags.StringVar(&opts.RedisAddr, "redis-address", envutil.GetString("AUTODARK_REDIS_ADDRESS", "localhost:6379"), "Redis address when --store=redis")
	flags.StringVar(&opts.RedisPassword, "redis-password", envutil.GetString("AUTODARK_REDIS_PASSWORD", ""), "Redis password")
	flags.IntVar(&opts.RedisDB, "redis-db", envutil.GetInt("AUTODARK_REDIS_DB", 0), "Redis database number")

	// Register subcommands
	cmd.AddCommand(version.NewCommand(opts))
	cmd.AddCommand(status.NewCommand(opts))
	cmd.AddCommand(mode.NewCommand(opts))
	cmd.AddCommand(window.NewCommand(opts))
	cmd.AddCommand(toggle.NewCommand(opts))
	cmd.AddCommand(preview.NewCommand(opts))

	return cmd
}
