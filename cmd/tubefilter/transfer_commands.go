package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/tubefilter/internal/filter/repos/rulefile"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|directory>",
		Short: "Replace rule lists, mode and options from YAML, JSON or TOML files",
		Long: "Import reads a single rule file, or every supported file in a directory merged in name order. " +
			"Lists present in the input replace the stored ones; absent fields are left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadRuleDocument(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(func(repo *settings.Repository) error {
				if err := repo.Import(commandContextOf(cmd), doc); err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keywords, %d creators, %d interests from %s\n",
					len(doc.BlockedKeywords), len(doc.BlockedCreators), len(doc.InterestKeywords), args[0])
				return nil
			})
		},
	}
}

func loadRuleDocument(path string) (settings.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return settings.Document{}, err
	}
	if info.IsDir() {
		return rulefile.LoadDirectory(path)
	}
	return rulefile.Load(path)
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string
	var withStats bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current settings as JSON, YAML or TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && !cmd.Flags().Changed("format") {
				format = output
			}
			return ctx.withRepository(func(repo *settings.Repository) error {
				doc, err := repo.Export(commandContextOf(cmd))
				if err != nil {
					return err
				}
				if !withStats {
					doc.Statistics = nil
				}
				data, err := rulefile.Marshal(doc, format)
				if err != nil {
					return err
				}
				if strings.TrimSpace(output) == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported settings to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, toml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout; format follows the extension unless --format is set")
	cmd.Flags().BoolVar(&withStats, "stats", true, "Include statistics")
	return cmd
}
