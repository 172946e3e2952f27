package postgres

import (
	"context"
	"fmt"

	"chantier/domain/core"
	"chantier/domain/task"
	"chantier/ports"

	"github.com/jmoiron/sqlx"
)

// taskRepository implements ports.TaskStore on the imported_tasks table
type taskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new PostgreSQL task store
func NewTaskRepository(db *sqlx.DB) ports.TaskStore {
	return &taskRepository{db: db}
}

// taskRow is a Record plus the owning project, for named inserts
type taskRow struct {
	task.Record
	ProjectID core.ProjectID `db:"project_id"`
}

// AddTasks inserts all records in one transaction; position follows slice order
func (r *taskRepository) AddTasks(ctx context.Context, projectID core.ProjectID, records []task.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO imported_tasks (
			id, project_id, title, description, status, priority, assignee, due_date, progress
		) VALUES (
			:id, :project_id, :title, :description, :status, :priority, :assignee, :due_date, :progress
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare task insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.ExecContext(ctx, taskRow{Record: record, ProjectID: projectID}); err != nil {
			return fmt.Errorf("failed to insert task %d (%s): %w", i+1, record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

// GetTasks returns the project's tasks in insertion order
func (r *taskRepository) GetTasks(ctx context.Context, projectID core.ProjectID) ([]task.Record, error) {
	tasks := make([]task.Record, 0)
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT id, title, description, status, priority, assignee,
		       to_char(due_date, 'YYYY-MM-DD') AS due_date, progress
		FROM imported_tasks
		WHERE project_id = $1
		ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return tasks, nil
}

// RemoveTask deletes one task of the project
func (r *taskRepository) RemoveTask(ctx context.Context, projectID core.ProjectID, taskID core.TaskID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM imported_tasks WHERE project_id = $1 AND id = $2`, projectID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.NewTaskNotFoundError(projectID, taskID)
	}
	return nil
}

// ClearTasks deletes every task of the project
func (r *taskRepository) ClearTasks(ctx context.Context, projectID core.ProjectID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM imported_tasks WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	return nil
}
