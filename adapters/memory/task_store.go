package memory

import (
	"context"
	"sync"

	"chantier/domain/core"
	"chantier/domain/task"
	"chantier/ports"
)

// taskStore keeps tasks in process memory, keyed by project
type taskStore struct {
	mu       sync.RWMutex
	projects map[core.ProjectID][]task.Record
}

// NewTaskStore creates an empty in-memory task store
func NewTaskStore() ports.TaskStore {
	return &taskStore{projects: make(map[core.ProjectID][]task.Record)}
}

// AddTasks appends records after the project's existing tasks
func (s *taskStore) AddTasks(ctx context.Context, projectID core.ProjectID, records []task.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = append(s.projects[projectID], records...)
	return nil
}

// GetTasks returns a copy of the project's tasks; unknown projects have none
func (s *taskStore) GetTasks(ctx context.Context, projectID core.ProjectID) ([]task.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]task.Record, len(s.projects[projectID]))
	copy(tasks, s.projects[projectID])
	return tasks, nil
}

// RemoveTask deletes one task, keeping the order of the others
func (s *taskStore) RemoveTask(ctx context.Context, projectID core.ProjectID, taskID core.TaskID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.projects[projectID]
	for i, t := range tasks {
		if t.ID == taskID {
			remaining := make([]task.Record, 0, len(tasks)-1)
			remaining = append(remaining, tasks[:i]...)
			s.projects[projectID] = append(remaining, tasks[i+1:]...)
			return nil
		}
	}
	return core.NewTaskNotFoundError(projectID, taskID)
}

// ClearTasks forgets every task of the project
func (s *taskStore) ClearTasks(ctx context.Context, projectID core.ProjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, projectID)
	return nil
}
