package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

// EstablishmentRepository keeps the establishments of the most recent
// successful run. Each ReplaceAll swaps the whole set in one transaction.
type EstablishmentRepository struct {
	db *sql.DB
}

func NewEstablishmentRepository(db *sql.DB) *EstablishmentRepository {
	return &EstablishmentRepository{db: db}
}

func (r *EstablishmentRepository) ReplaceAll(ctx context.Context, runID string, establishments []domain.Establishment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inspections`); err != nil {
		return fmt.Errorf("clear inspections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM establishments`); err != nil {
		return fmt.Errorf("clear establishments: %w", err)
	}

	for i, est := range establishments {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO establishments (permit, name, address, position, run_id)
VALUES ($1,$2,$3,$4,$5)
`, est.Permit, est.Name, est.Address, i, runID); err != nil {
			return fmt.Errorf("insert establishment %s: %w", est.Permit, err)
		}

		for j, rec := range est.Inspections {
			violations, err := json.Marshal(nonNilViolations(rec.Violations))
			if err != nil {
				return fmt.Errorf("marshal violations: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO inspections (permit, position, inspected_on, inspection_type, category, score, violations)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, est.Permit, j, rec.Date.Time, rec.InspectionType, string(rec.Category), rec.Score, violations); err != nil {
				return fmt.Errorf("insert inspection %s/%d: %w", est.Permit, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (r *EstablishmentRepository) GetByPermit(ctx context.Context, permit string) (*domain.Establishment, error) {
	var est domain.Establishment
	err := r.db.QueryRowContext(ctx, `
SELECT permit, name, address
FROM establishments
WHERE permit = $1
`, permit).Scan(&est.Permit, &est.Name, &est.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get establishment", fmt.Errorf("permit %s", permit))
		}
		return nil, fmt.Errorf("scan establishment: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT inspected_on, inspection_type, category, score, violations
FROM inspections
WHERE permit = $1
ORDER BY position
`, permit)
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}
	defer rows.Close()

	est.Inspections = []domain.InspectionRecord{}
	for rows.Next() {
		var rec domain.InspectionRecord
		var inspectedOn time.Time
		var category string
		var violationsRaw []byte
		if err := rows.Scan(&inspectedOn, &rec.InspectionType, &category, &rec.Score, &violationsRaw); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		rec.Date = domain.NewDate(inspectedOn.Year(), inspectedOn.Month(), inspectedOn.Day())
		rec.Category = domain.Category(category)
		if err := json.Unmarshal(violationsRaw, &rec.Violations); err != nil {
			return nil, fmt.Errorf("unmarshal violations: %w", err)
		}
		rec.Violations = nonNilViolations(rec.Violations)
		est.Inspections = append(est.Inspections, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspections: %w", err)
	}
	return &est, nil
}

func nonNilViolations(codes []int) []int {
	if codes == nil {
		return []int{}
	}
	return codes
}
