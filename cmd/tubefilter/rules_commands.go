package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit the keyword, creator and interest lists",
	}

	rulesCmd.AddCommand(newRulesListCommand(ctx))
	rulesCmd.AddCommand(newRulesAddCommand(ctx))
	rulesCmd.AddCommand(newRulesRemoveCommand(ctx))

	return rulesCmd
}

func newRulesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <keyword|creator|interest>",
		Short: "Print one rule list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseRuleKind(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(func(repo *settings.Repository) error {
				values, err := repo.List(commandContextOf(cmd), kind)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, values)
				}
				out := cmd.OutOrStdout()
				if len(values) == 0 {
					fmt.Fprintf(out, "No %s rules\n", kind)
					return nil
				}
				for _, v := range values {
					fmt.Fprintln(out, v)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newRulesAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <keyword|creator|interest> <value>...",
		Short: "Add one or more rules to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseRuleKind(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(func(repo *settings.Repository) error {
				out := cmd.OutOrStdout()
				for _, raw := range args[1:] {
					value, err := repo.AddRule(commandContextOf(cmd), kind, raw)
					switch {
					case errors.Is(err, settings.ErrDuplicateRule):
						fmt.Fprintf(out, "Already present: %s\n", raw)
					case err != nil:
						return fmt.Errorf("add %s rule %q: %w", kind, raw, err)
					default:
						fmt.Fprintf(out, "Added %s rule: %s\n", kind, value)
					}
				}
				return nil
			})
		},
	}
}

func newRulesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <keyword|creator|interest> <value>",
		Short: "Remove a rule from a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseRuleKind(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(func(repo *settings.Repository) error {
				if err := repo.RemoveRule(commandContextOf(cmd), kind, args[1]); err != nil {
					return fmt.Errorf("remove %s rule %q: %w", kind, args[1], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s rule: %s\n", kind, args[1])
				return nil
			})
		},
	}
}
