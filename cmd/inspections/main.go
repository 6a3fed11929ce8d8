package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/food-inspections/internal/config"
	"github.com/kirillkom/food-inspections/internal/observability/logging"
)

const serviceName = "inspections"

type rootOptions struct {
	logLevel  string
	logFormat string
	output    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "inspections",
		Short:         "Extract food inspection records from the health department's PDF reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format (json, yaml)")

	root.AddCommand(
		newParseCommand(opts),
		newRefreshCommand(cfg, opts),
		newManifestCommand(cfg, opts),
	)
	return root
}

// logger writes to stderr so stdout stays machine readable.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	var w io.Writer = cmd.ErrOrStderr()
	return logging.NewLogger(w, serviceName, o.logLevel, o.logFormat)
}
