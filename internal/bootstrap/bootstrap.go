package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/food-inspections/internal/config"
	"github.com/kirillkom/food-inspections/internal/core/parsing"
	"github.com/kirillkom/food-inspections/internal/core/ports"
	"github.com/kirillkom/food-inspections/internal/core/usecase"
	"github.com/kirillkom/food-inspections/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/food-inspections/internal/infrastructure/extractor"
	"github.com/kirillkom/food-inspections/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/food-inspections/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/food-inspections/internal/infrastructure/queue/nats"
	"github.com/kirillkom/food-inspections/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/food-inspections/internal/infrastructure/resilience"
	"github.com/kirillkom/food-inspections/internal/infrastructure/source/web"
	"github.com/kirillkom/food-inspections/internal/infrastructure/storage/localfs"
)

type Options struct {
	Logger   *slog.Logger
	Observer ports.RefreshObserver
	// WithQueue connects to NATS; the one-shot CLI runs without it.
	WithQueue bool
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue          ports.MessageQueue
	Runs           ports.RunRepository
	Establishments ports.EstablishmentRepository

	Extractor  ports.PageExtractor
	ManifestUC *usecase.ManifestUseCase
	RefreshUC  *usecase.RefreshUseCase
	TriggerUC  *usecase.TriggerUseCase

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	if cfg.PersistEnabled {
		db, err := openDatabase(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.closeFns = append(app.closeFns, func() { _ = db.Close() })
		app.Runs = postgres.NewRunRepository(db)
		app.Establishments = postgres.NewEstablishmentRepository(db)
	}

	store, err := localfs.New(cfg.ArtifactDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init artifact storage: %w", err)
	}

	executor := resilience.NewExecutor(resilienceConfig(cfg)).WithLogger(logger)

	if opts.WithQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.closeFns = append(app.closeFns, queue.Close)
		app.Queue = queue
		app.TriggerUC = usecase.NewTriggerUseCase(app.Runs, queue)
	}

	source := web.New(cfg.SourcePageURL, web.Options{
		LinkMarker:         cfg.SourceLinkMarker,
		UserAgent:          cfg.SourceUserAgent,
		Timeout:            cfg.SourceFetchTimeout,
		ResilienceExecutor: executor,
	})
	app.Extractor = NewExtractor(logger)
	app.ManifestUC = usecase.NewManifestUseCase(store, usecase.ArtifactPattern)

	var exporter ports.SpreadsheetExporter
	if cfg.ExportXLSX {
		exporter = xlsx.NewExporter()
	}

	app.RefreshUC = usecase.NewRefreshUseCase(usecase.RefreshDeps{
		Locator:        source,
		Fetcher:        source,
		Extractor:      app.Extractor,
		Parser:         parsing.NewParser(logger),
		Store:          store,
		Manifest:       app.ManifestUC,
		Exporter:       exporter,
		Establishments: app.Establishments,
		Runs:           app.Runs,
		Observer:       opts.Observer,
		Logger:         logger,
	})

	return app, nil
}

// NewExtractor returns the page extractor used for both downloaded reports
// and local files.
func NewExtractor(logger *slog.Logger) ports.PageExtractor {
	return extractor.NewAuto(pdftext.NewExtractor(logger), plaintext.NewExtractor())
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := postgres.OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.RetryInitialBackoff = cfg.ResilienceRetryInitialBackoff
	out.RetryMaxBackoff = cfg.ResilienceRetryMaxBackoff
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	out.BreakerOpenTimeout = cfg.ResilienceBreakerOpenTimeout
	return out
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
