package ports

import (
	"context"

	"chantier/domain/core"
	"chantier/domain/task"
)

// TaskStore keeps imported tasks per project. Implementations are owned by
// the caller of the importer; the importer itself never persists anything.
type TaskStore interface {
	// AddTasks appends records to the project, keeping their order
	AddTasks(ctx context.Context, projectID core.ProjectID, records []task.Record) error
	// GetTasks returns the project's tasks in insertion order
	GetTasks(ctx context.Context, projectID core.ProjectID) ([]task.Record, error)
	// RemoveTask deletes one task; core.ErrTaskNotFound when it does not exist
	RemoveTask(ctx context.Context, projectID core.ProjectID, taskID core.TaskID) error
	// ClearTasks deletes every task of the project
	ClearTasks(ctx context.Context, projectID core.ProjectID) error
}
