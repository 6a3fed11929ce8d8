package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaLockID int64 = 2026101801

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS refresh_runs (
	id TEXT PRIMARY KEY,
	trigger TEXT NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	artifact TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	establishments INTEGER NOT NULL DEFAULT 0,
	matched_rows INTEGER NOT NULL DEFAULT 0,
	format_errors INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_refresh_runs_created_at ON refresh_runs(created_at DESC);

CREATE TABLE IF NOT EXISTS establishments (
	permit TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	position INTEGER NOT NULL,
	run_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS inspections (
	permit TEXT NOT NULL REFERENCES establishments(permit) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	inspected_on DATE NOT NULL,
	inspection_type TEXT NOT NULL,
	category TEXT NOT NULL,
	score INTEGER NOT NULL,
	violations JSONB NOT NULL DEFAULT '[]'::jsonb,
	PRIMARY KEY (permit, position)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
