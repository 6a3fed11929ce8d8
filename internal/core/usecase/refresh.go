package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/parsing"
	"github.com/kirillkom/food-inspections/internal/core/ports"
)

// RefreshDeps wires a RefreshUseCase. Exporter, Establishments and Runs are
// optional.
type RefreshDeps struct {
	Locator        ports.SourceLocator
	Fetcher        ports.SourceFetcher
	Extractor      ports.PageExtractor
	Parser         *parsing.Parser
	Store          ports.ArtifactStore
	Manifest       *ManifestUseCase
	Exporter       ports.SpreadsheetExporter
	Establishments ports.EstablishmentRepository
	Runs           ports.RunRepository
	Observer       ports.RefreshObserver
	Logger         *slog.Logger
	Now            func() time.Time
}

type RefreshUseCase struct {
	deps RefreshDeps
}

func NewRefreshUseCase(deps RefreshDeps) *RefreshUseCase {
	if deps.Parser == nil {
		deps.Parser = parsing.NewParser(deps.Logger)
	}
	if deps.Manifest == nil {
		deps.Manifest = NewManifestUseCase(deps.Store, ArtifactPattern)
	}
	if deps.Observer == nil {
		deps.Observer = ports.NoopObserver()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &RefreshUseCase{deps: deps}
}

type refreshOutcome struct {
	summary domain.RunSummary
	stats   domain.ParseStats
}

// Run executes locate, fetch, extract, parse and publish for runID. An
// empty runID gets a fresh id.
func (uc *RefreshUseCase) Run(ctx context.Context, runID string) (*domain.Run, error) {
	run, err := uc.beginRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	logger := uc.deps.Logger.With("run_id", run.ID)
	logger.Info("refresh_started")

	uc.deps.Observer.StartRun()
	start := uc.deps.Now()
	outcome, err := uc.pipeline(ctx, run.ID, logger)
	uc.deps.Observer.FinishRun(uc.deps.Now().Sub(start), outcome.stats, outcome.summary.Establishments, err)

	if err != nil {
		logger.Error("refresh_failed", "error", err)
		// The run context may already be past its deadline.
		if failErr := uc.markStatus(context.WithoutCancel(ctx), run.ID, domain.RunStatusFailed, err.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		return run, err
	}

	if uc.deps.Runs != nil {
		if err := uc.deps.Runs.CompleteRun(ctx, run.ID, outcome.summary); err != nil {
			return nil, fmt.Errorf("complete run: %w", err)
		}
	}
	applySummary(run, outcome.summary)
	run.Status = domain.RunStatusSucceeded
	run.UpdatedAt = uc.deps.Now().UTC()

	logger.Info("refresh_finished",
		"artifact", outcome.summary.Artifact,
		"establishments", outcome.summary.Establishments,
		"matched_rows", outcome.summary.MatchedRows,
		"format_errors", outcome.summary.FormatErrors,
		"duration_ms", float64(uc.deps.Now().Sub(start).Microseconds())/1000.0,
	)
	return run, nil
}

func (uc *RefreshUseCase) beginRun(ctx context.Context, runID string) (*domain.Run, error) {
	now := uc.deps.Now().UTC()
	if runID == "" {
		runID = uuid.NewString()
	}
	run := &domain.Run{ID: runID, Trigger: "direct", Status: domain.RunStatusRunning, CreatedAt: now, UpdatedAt: now}
	if uc.deps.Runs == nil {
		return run, nil
	}

	existing, err := uc.deps.Runs.GetRun(ctx, runID)
	switch {
	case err == nil:
		run = existing
	case domain.IsKind(err, domain.ErrNotFound):
		if err := uc.deps.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	default:
		return nil, fmt.Errorf("fetch run by id: %w", err)
	}

	if err := uc.markStatus(ctx, runID, domain.RunStatusRunning, ""); err != nil {
		return nil, fmt.Errorf("set status=running: %w", err)
	}
	run.Status = domain.RunStatusRunning
	return run, nil
}

func (uc *RefreshUseCase) pipeline(ctx context.Context, runID string, logger *slog.Logger) (refreshOutcome, error) {
	var outcome refreshOutcome

	url, err := uc.deps.Locator.Locate(ctx)
	if err != nil {
		return outcome, fmt.Errorf("locate source: %w", err)
	}
	outcome.summary.SourceURL = url
	logger.Info("source_located", "url", url)

	doc, err := uc.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		return outcome, fmt.Errorf("fetch source: %w", err)
	}
	logger.Info("source_downloaded", "file", doc.Filename, "bytes", len(doc.Body))

	pages, err := uc.deps.Extractor.ExtractPages(ctx, doc)
	if err != nil {
		return outcome, fmt.Errorf("extract pages: %w", err)
	}

	result := uc.deps.Parser.Parse(pages)
	outcome.stats = result.Stats
	outcome.summary.Establishments = len(result.Establishments)
	outcome.summary.MatchedRows = result.Stats.MatchedRows
	outcome.summary.FormatErrors = result.Stats.FormatErrors
	if len(result.Establishments) == 0 {
		return outcome, domain.WrapError(domain.ErrInvalidInput, "parse source", errors.New("no inspection rows found"))
	}

	artifact := ArtifactName(doc.Filename, uc.deps.Now())
	if err := uc.publish(ctx, runID, artifact, result.Establishments); err != nil {
		return outcome, err
	}
	outcome.summary.Artifact = artifact

	entries, err := uc.deps.Manifest.Publish(ctx)
	if err != nil {
		return outcome, fmt.Errorf("publish manifest: %w", err)
	}
	logger.Info("manifest_published", "entries", len(entries))
	return outcome, nil
}

// publish writes the JSON artifact, the optional workbook and the optional
// database snapshot concurrently.
func (uc *RefreshUseCase) publish(ctx context.Context, runID, artifact string, establishments []domain.Establishment) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := encodeJSON(establishments)
		if err != nil {
			return fmt.Errorf("encode establishments: %w", err)
		}
		if err := uc.deps.Store.Save(gctx, artifact, bytes.NewReader(raw)); err != nil {
			return domain.WrapError(domain.ErrArtifactAccess, "save artifact", err)
		}
		return nil
	})

	if uc.deps.Exporter != nil {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := uc.deps.Exporter.Export(establishments, &buf); err != nil {
				return fmt.Errorf("export workbook: %w", err)
			}
			if err := uc.deps.Store.Save(gctx, SpreadsheetName(artifact), &buf); err != nil {
				return domain.WrapError(domain.ErrArtifactAccess, "save workbook", err)
			}
			return nil
		})
	}

	if uc.deps.Establishments != nil {
		g.Go(func() error {
			if err := uc.deps.Establishments.ReplaceAll(gctx, runID, establishments); err != nil {
				return fmt.Errorf("persist establishments: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (uc *RefreshUseCase) markStatus(ctx context.Context, runID string, status domain.RunStatus, errMessage string) error {
	if uc.deps.Runs == nil {
		return nil
	}
	return uc.deps.Runs.UpdateRunStatus(ctx, runID, status, errMessage)
}

func applySummary(run *domain.Run, summary domain.RunSummary) {
	run.SourceURL = summary.SourceURL
	run.Artifact = summary.Artifact
	run.Establishments = summary.Establishments
	run.MatchedRows = summary.MatchedRows
	run.FormatErrors = summary.FormatErrors
}
