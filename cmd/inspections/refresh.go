package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kirillkom/food-inspections/internal/bootstrap"
	"github.com/kirillkom/food-inspections/internal/config"
)

func newRefreshCommand(cfg config.Config, opts *rootOptions) *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Download the newest report, publish its artifacts and rebuild the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := parseOutputFormat(opts.output); err != nil {
				return err
			}
			runCfg := cfg
			runCfg.PersistEnabled = persist

			ctx, cancel := context.WithTimeout(cmd.Context(), runCfg.RefreshTimeout)
			defer cancel()

			app, err := bootstrap.New(ctx, runCfg, bootstrap.Options{Logger: opts.logger(cmd)})
			if err != nil {
				return err
			}
			defer app.Close()

			run, err := app.RefreshUC.Run(ctx, "")
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), opts.output, run)
		},
	}
	cmd.Flags().StringVar(&cfg.SourcePageURL, "source-url", cfg.SourcePageURL, "landing page listing the inspection reports")
	cmd.Flags().StringVar(&cfg.ArtifactDir, "artifact-dir", cfg.ArtifactDir, "directory for published artifacts")
	cmd.Flags().BoolVar(&cfg.ExportXLSX, "xlsx", cfg.ExportXLSX, "also publish an xlsx workbook")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the run and establishments in postgres")
	return cmd
}
