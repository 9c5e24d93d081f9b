package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"datalens/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}
	if err := r.createAnswersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create answers table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		row_count INTEGER NOT NULL DEFAULT 0,
		column_count INTEGER NOT NULL DEFAULT 0,
		profile JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createAnswersTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS answers (
		id UUID PRIMARY KEY,
		dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		used_web_search BOOLEAN NOT NULL DEFAULT FALSE,
		snippet_count INTEGER NOT NULL DEFAULT 0,
		model TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_dataset_id ON answers(dataset_id, created_at)`,
	}
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
