package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

type statsReport struct {
	BlockedCount uint64              `json:"blockedCount"`
	LastBlocked  *domain.LastBlocked `json:"lastBlocked,omitempty"`
	TopKeywords  []domain.Count      `json:"topKeywords"`
	TopCreators  []domain.Count      `json:"topCreators"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var top int
	var asJSON bool
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show block statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo *settings.Repository) error {
				s, err := repo.Statistics(commandContextOf(cmd))
				if err != nil {
					return err
				}
				report := statsReport{
					BlockedCount: s.BlockedCount,
					LastBlocked:  s.LastBlocked,
					TopKeywords:  domain.TopN(s.KeywordCounts, top),
					TopCreators:  domain.TopN(s.CreatorCounts, top),
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				printStats(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	statsCmd.Flags().IntVar(&top, "top", 5, "Number of top keywords and creators to list (0 for all)")
	statsCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	statsCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Zero every block counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(func(repo *settings.Repository) error {
				if err := repo.SaveStatistics(commandContextOf(cmd), domain.NewStatistics()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Statistics reset")
				return nil
			})
		},
	})

	return statsCmd
}

func printStats(out io.Writer, r statsReport) {
	fmt.Fprintf(out, "Blocked: %d\n", r.BlockedCount)
	if lb := r.LastBlocked; lb != nil {
		const stampLayout = "2006-01-02 15:04"
		fmt.Fprintf(out, "Last:    %q by %s (%s) at %s\n", lb.Title, lb.Channel, lb.Reason, lb.Timestamp.Local().Format(stampLayout))
	}
	printCounts(out, "Top keywords", r.TopKeywords)
	printCounts(out, "Top creators", r.TopCreators)
}

func printCounts(out io.Writer, label string, counts []domain.Count) {
	if len(counts) == 0 {
		fmt.Fprintf(out, "%s: none\n", label)
		return
	}
	fmt.Fprintf(out, "%s:\n", label)
	for _, c := range counts {
		fmt.Fprintf(out, "  %-24s %d\n", c.Value, c.Count)
	}
}
