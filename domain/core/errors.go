package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// Import errors
	ErrDecode            = errors.New("file is not readable as tabular data")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrDecode)
	ErrEmptyTable        = fmt.Errorf("%w: no header row", ErrDecode)

	// Validation errors
	ErrInvalidRecord = errors.New("invalid task record")
)

// Error constructors with context
func NewTaskNotFoundError(projectID ProjectID, taskID TaskID) error {
	return fmt.Errorf("%w: %s in project %s", ErrTaskNotFound, taskID, projectID)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRecord, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRecord)
}
