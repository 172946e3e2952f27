package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ProjectID ID
	TaskID    ID
)

// String conversions for domain IDs
func (id ProjectID) String() string { return ID(id).String() }
func (id TaskID) String() string    { return ID(id).String() }

// NewTaskID creates a time-ordered task identifier
func NewTaskID() TaskID { return TaskID(NewID()) }

// ParseProjectID parses a string into ProjectID
func ParseProjectID(s string) (ProjectID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("project ID cannot be empty")
	}
	return ProjectID(strings.TrimSpace(s)), nil
}

// ParseTaskID parses a string into TaskID
func ParseTaskID(s string) (TaskID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	return TaskID(strings.TrimSpace(s)), nil
}
