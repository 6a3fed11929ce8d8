package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/food-inspections/internal/bootstrap"
	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/parsing"
)

func newParseCommand(opts *rootOptions) *cobra.Command {
	var withDiagnostics bool

	cmd := &cobra.Command{
		Use:   "parse <report.pdf|dump.txt>",
		Short: "Parse a local report and print its establishments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseOutputFormat(opts.output); err != nil {
				return err
			}
			logger := opts.logger(cmd)

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			doc := &domain.SourceDocument{URL: args[0], Filename: filepath.Base(args[0]), Body: body}

			pages, err := bootstrap.NewExtractor(logger).ExtractPages(cmd.Context(), doc)
			if err != nil {
				return fmt.Errorf("extract pages: %w", err)
			}

			result := parsing.NewParser(logger).Parse(pages)
			logger.Info("parse_finished",
				"file", doc.Filename,
				"pages", result.Stats.Pages,
				"matched_rows", result.Stats.MatchedRows,
				"format_errors", result.Stats.FormatErrors,
				"establishments", len(result.Establishments),
			)

			if withDiagnostics {
				return printOutput(cmd.OutOrStdout(), opts.output, result)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, result.Establishments)
		},
	}
	cmd.Flags().BoolVar(&withDiagnostics, "diagnostics", false, "print stats and row diagnostics along with the establishments")
	return cmd
}
