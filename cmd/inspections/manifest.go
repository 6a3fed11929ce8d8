package main

import (
	"github.com/spf13/cobra"

	"github.com/kirillkom/food-inspections/internal/config"
	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/usecase"
	"github.com/kirillkom/food-inspections/internal/infrastructure/storage/localfs"
)

func newManifestCommand(cfg config.Config, opts *rootOptions) *cobra.Command {
	var (
		dir   string
		write bool
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the artifact manifest, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := parseOutputFormat(opts.output); err != nil {
				return err
			}
			store, err := localfs.New(dir)
			if err != nil {
				return err
			}
			uc := usecase.NewManifestUseCase(store, usecase.ArtifactPattern)

			var entries []domain.ManifestEntry
			if write {
				entries, err = uc.Publish(cmd.Context())
			} else {
				entries, err = uc.Build(cmd.Context())
			}
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []domain.ManifestEntry{}
			}
			return printOutput(cmd.OutOrStdout(), opts.output, entries)
		},
	}
	cmd.Flags().StringVar(&dir, "artifact-dir", cfg.ArtifactDir, "directory holding the artifacts")
	cmd.Flags().BoolVar(&write, "write", false, "also write manifest.json into the artifact directory")
	return cmd
}
