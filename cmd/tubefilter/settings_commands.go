package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

func newModeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mode [block|show]",
		Short: "Show or set the filter mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo *settings.Repository) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					s, err := repo.Load(commandContextOf(cmd))
					if err != nil {
						return err
					}
					fmt.Fprintln(out, s.Mode)
					return nil
				}
				mode, err := domain.ParseFilterMode(args[0])
				if err != nil {
					return err
				}
				if err := repo.SetMode(commandContextOf(cmd), mode); err != nil {
					return err
				}
				fmt.Fprintf(out, "Filter mode set to %s\n", mode)
				return nil
			})
		},
	}
}

func newEnableCommand(ctx *commandContext, enabled bool) *cobra.Command {
	use, short, done := "enable", "Turn filtering on", "Filtering enabled"
	if !enabled {
		use, short, done = "disable", "Turn filtering off", "Filtering disabled"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo *settings.Repository) error {
				if err := repo.SetEnabled(commandContextOf(cmd), enabled); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), done)
				return nil
			})
		},
	}
}

func newOptionsCommand(ctx *commandContext) *cobra.Command {
	var (
		style         string
		matchMode     string
		caseSensitive bool
		scanInterval  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change the match and display options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo *settings.Repository) error {
				s, err := repo.Load(commandContextOf(cmd))
				if err != nil {
					return err
				}
				opts := s.Options
				flags := cmd.Flags()
				if flags.Changed("style") {
					st, ok := domain.ParseDisplayStyle(style)
					if !ok {
						return fmt.Errorf("unsupported display style: %q", style)
					}
					opts.Style = st
				}
				if flags.Changed("match") {
					m, err := domain.ParseMatchMode(matchMode)
					if err != nil {
						return err
					}
					opts.Match.Mode = m
				}
				if flags.Changed("case-sensitive") {
					opts.Match.CaseSensitive = caseSensitive
				}
				if flags.Changed("scan-interval") {
					if scanInterval <= 0 {
						return fmt.Errorf("scan interval must be positive, got %s", scanInterval)
					}
					opts.ScanInterval = scanInterval
				}
				if opts != s.Options {
					if err := repo.SetOptions(commandContextOf(cmd), opts); err != nil {
						return err
					}
				}
				printOptions(cmd, s.Enabled, s.Mode, opts)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "Display style for blocked videos (hide, blur, replace)")
	cmd.Flags().StringVar(&matchMode, "match", "", "Keyword match mode (partial, word, exact)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match keywords case-sensitively")
	cmd.Flags().DurationVar(&scanInterval, "scan-interval", 0, "Debounce interval between page scans")
	return cmd
}

func printOptions(cmd *cobra.Command, enabled bool, mode domain.FilterMode, o domain.Options) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Enabled:        %s\n", yesNo(enabled))
	fmt.Fprintf(out, "Filter mode:    %s\n", mode)
	fmt.Fprintf(out, "Display style:  %s\n", o.Style)
	fmt.Fprintf(out, "Match mode:     %s\n", o.Match.Mode)
	fmt.Fprintf(out, "Case sensitive: %s\n", yesNo(o.Match.CaseSensitive))
	fmt.Fprintf(out, "Scan interval:  %s\n", o.Debounce())
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
