package ports

import (
	"context"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// RefreshRunner is the inbound contract for one full extraction run.
type RefreshRunner interface {
	Run(ctx context.Context, runID string) (*domain.Run, error)
}

// RefreshTrigger is the inbound contract for requesting a run asynchronously.
type RefreshTrigger interface {
	Trigger(ctx context.Context, source string) (*domain.Run, error)
}

// ManifestReader lists the published artifacts.
type ManifestReader interface {
	Build(ctx context.Context) ([]domain.ManifestEntry, error)
}

// EstablishmentReader is the read model for the latest persisted run.
type EstablishmentReader interface {
	GetByPermit(ctx context.Context, permit string) (*domain.Establishment, error)
}

// RunReader is the read model for run state.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*domain.Run, error)
}
