package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/food-inspections/internal/bootstrap"
	"github.com/kirillkom/food-inspections/internal/config"
	"github.com/kirillkom/food-inspections/internal/observability/logging"
	"github.com/kirillkom/food-inspections/internal/observability/metrics"
)

const serviceName = "inspections-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refreshMetrics := metrics.NewRefreshMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger:    logger,
		Observer:  refreshMetrics,
		WithQueue: true,
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", refreshMetrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeRefreshRequested(ctx, func(handlerCtx context.Context, runID string) error {
		if app.Runs != nil {
			if run, err := app.Runs.GetRun(handlerCtx, runID); err == nil {
				refreshMetrics.ObserveQueueLag(time.Since(run.CreatedAt))
			}
		}

		runCtx, cancel := context.WithTimeout(handlerCtx, cfg.RefreshTimeout)
		defer cancel()
		_, err := app.RefreshUC.Run(runCtx, runID)
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
