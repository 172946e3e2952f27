package migration

import (
	"context"

	"chantier/internal"
	"chantier/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		logger:  internal.DefaultLogger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every step is
// idempotent so Run is safe on each start.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createImportedTasksTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create imported_tasks table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	r.logger.Info("[Migration] Schema at version %s", r.version)
	return nil
}

func (r *MigrationRunner) createImportedTasksTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS imported_tasks (
			id VARCHAR(64) NOT NULL,
			project_id VARCHAR(128) NOT NULL,
			position BIGSERIAL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'todo'
				CHECK (status IN ('todo', 'in-progress', 'review', 'done')),
			priority VARCHAR(10) NOT NULL DEFAULT 'medium'
				CHECK (priority IN ('low', 'medium', 'high')),
			assignee TEXT NOT NULL DEFAULT 'Unassigned',
			due_date DATE NOT NULL,
			progress SMALLINT NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
			imported_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (project_id, id)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_imported_tasks_project_position ON imported_tasks(project_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_imported_tasks_project_status ON imported_tasks(project_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_imported_tasks_due_date ON imported_tasks(due_date)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.logger.Warn("[Migration] Failed to create index: %v", err)
		}
	}
	return nil
}
