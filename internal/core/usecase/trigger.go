package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/food-inspections/internal/core/domain"
	"github.com/kirillkom/food-inspections/internal/core/ports"
)

type TriggerUseCase struct {
	runs  ports.RunRepository
	queue ports.MessageQueue
}

func NewTriggerUseCase(runs ports.RunRepository, queue ports.MessageQueue) *TriggerUseCase {
	return &TriggerUseCase{runs: runs, queue: queue}
}

// Trigger records a queued run and hands it to the worker. Without a run
// repository the run is only published.
func (uc *TriggerUseCase) Trigger(ctx context.Context, source string) (*domain.Run, error) {
	now := time.Now().UTC()
	if source == "" {
		source = "api"
	}
	run := &domain.Run{
		ID:        uuid.NewString(),
		Trigger:   source,
		Status:    domain.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if uc.runs != nil {
		if err := uc.runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	}

	if err := uc.queue.PublishRefreshRequested(ctx, run.ID); err != nil {
		publishErr := fmt.Errorf("publish refresh request: %w", err)
		if uc.runs == nil {
			return nil, publishErr
		}
		if failErr := uc.runs.UpdateRunStatus(ctx, run.ID, domain.RunStatusFailed, publishErr.Error()); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", publishErr, failErr)
		}
		return nil, publishErr
	}
	return run, nil
}
