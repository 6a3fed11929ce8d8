package ports

import (
	"context"
	"io"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// SourceLocator finds the URL of the newest inspection report.
type SourceLocator interface {
	Locate(ctx context.Context) (string, error)
}

// SourceFetcher downloads a report.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.SourceDocument, error)
}

// PageExtractor turns a report into plain page texts, in document order.
type PageExtractor interface {
	ExtractPages(ctx context.Context, doc *domain.SourceDocument) ([]string, error)
}

// ArtifactStore keeps published output files.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, pattern string) ([]domain.ArtifactInfo, error)
}

// SpreadsheetExporter renders establishments as a workbook.
type SpreadsheetExporter interface {
	Export(establishments []domain.Establishment, w io.Writer) error
}

// EstablishmentRepository persists the establishments of the latest run.
type EstablishmentRepository interface {
	ReplaceAll(ctx context.Context, runID string, establishments []domain.Establishment) error
	GetByPermit(ctx context.Context, permit string) (*domain.Establishment, error)
}

// RunRepository persists run state.
type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	UpdateRunStatus(ctx context.Context, id string, status domain.RunStatus, errMessage string) error
	CompleteRun(ctx context.Context, id string, summary domain.RunSummary) error
}

// MessageQueue publishes/consumes refresh requests.
type MessageQueue interface {
	PublishRefreshRequested(ctx context.Context, runID string) error
	SubscribeRefreshRequested(ctx context.Context, handler func(context.Context, string) error) error
}
