// Package task holds the task records produced by spreadsheet imports.
package task

import (
	"fmt"
	"sync"

	"chantier/domain/core"

	"github.com/go-playground/validator/v10"
)

// Status is the kanban column a task sits in
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists every status in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is one of the defined statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Priority ranks a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the defined priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// UnassignedAssignee is the sentinel used when no assignee is known
const UnassignedAssignee = "Unassigned"

// Record is one task produced by an import
type Record struct {
	ID          core.TaskID `json:"id" db:"id" validate:"required"`
	Title       string      `json:"title" db:"title" validate:"required"`
	Description string      `json:"description" db:"description"`
	Status      Status      `json:"status" db:"status" validate:"oneof=todo in-progress review done"`
	Priority    Priority    `json:"priority" db:"priority" validate:"oneof=low medium high"`
	Assignee    string      `json:"assignee" db:"assignee" validate:"required"`
	DueDate     string      `json:"dueDate" db:"due_date" validate:"required,datetime=2006-01-02"`
	Progress    int         `json:"progress" db:"progress" validate:"min=0,max=100"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the record invariants: every field set, enums in range,
// progress within [0,100] and an ISO due date.
func (r Record) Validate() error {
	if err := recordValidator().Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return core.NewValidationError(fe.Field(), fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}
	return nil
}

// ValidateAll validates a batch and reports the first failing position
func ValidateAll(records []Record) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}
