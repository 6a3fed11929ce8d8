package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO refresh_runs (
	id, trigger, source_url, artifact, status, establishments, matched_rows, format_errors, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		run.ID, run.Trigger, run.SourceURL, run.Artifact, string(run.Status), run.Establishments,
		run.MatchedRows, run.FormatErrors, run.Error, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, trigger, source_url, artifact, status, establishments, matched_rows, format_errors, error_message, created_at, updated_at
FROM refresh_runs
WHERE id = $1
`, id)

	var run domain.Run
	var status string
	err := row.Scan(
		&run.ID, &run.Trigger, &run.SourceURL, &run.Artifact, &status, &run.Establishments,
		&run.MatchedRows, &run.FormatErrors, &run.Error, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get run", fmt.Errorf("run id %s", id))
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = domain.RunStatus(status)
	return &run, nil
}

func (r *RunRepository) UpdateRunStatus(ctx context.Context, id string, status domain.RunStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE refresh_runs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, r.now())
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return requireAffected(result, "update run status", id)
}

func (r *RunRepository) CompleteRun(ctx context.Context, id string, summary domain.RunSummary) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE refresh_runs
SET status = $2, source_url = $3, artifact = $4, establishments = $5, matched_rows = $6, format_errors = $7, error_message = '', updated_at = $8
WHERE id = $1
`, id, string(domain.RunStatusSucceeded), summary.SourceURL, summary.Artifact, summary.Establishments,
		summary.MatchedRows, summary.FormatErrors, r.now())
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return requireAffected(result, "complete run", id)
}

func requireAffected(result sql.Result, op, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("run id %s", id))
	}
	return nil
}
