package ports

import (
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// RefreshObserver receives run outcomes, typically for metrics.
type RefreshObserver interface {
	StartRun()
	FinishRun(duration time.Duration, stats domain.ParseStats, establishments int, err error)
}

type noopObserver struct{}

func (noopObserver) StartRun() {}

func (noopObserver) FinishRun(time.Duration, domain.ParseStats, int, error) {}

// NoopObserver discards all observations.
func NoopObserver() RefreshObserver { return noopObserver{} }
