package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dbFlag string
	var logLevel string

	ctx := newCommandContext(&dbFlag, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "tubefilter",
		Short:         "Manage tubefilter rules, settings and statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.configureLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Settings database path (defaults to TUBEFILTER_SETTINGS_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRulesCommand(ctx))
	rootCmd.AddCommand(newModeCommand(ctx))
	rootCmd.AddCommand(newEnableCommand(ctx, true))
	rootCmd.AddCommand(newEnableCommand(ctx, false))
	rootCmd.AddCommand(newOptionsCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newFilterCommand(ctx))

	return rootCmd
}
