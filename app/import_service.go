package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"chantier/domain/core"
	"chantier/domain/task"
	"chantier/internal"
	"chantier/internal/errors"
	"chantier/internal/importer"
	"chantier/ports"
)

// ImportService runs uploads through the importer and hands the records to
// the project's task store
type ImportService struct {
	importer          *importer.Importer
	store             ports.TaskStore
	allowedExtensions []string
	maxBytes          int64
	logger            *internal.Logger
}

// ImportServiceConfig gates which uploads reach the importer
type ImportServiceConfig struct {
	AllowedExtensions []string
	// MaxBytes caps the declared upload size; 0 disables the check
	MaxBytes int64
}

// ImportRequest describes one uploaded file
type ImportRequest struct {
	ProjectID core.ProjectID
	Filename  string
	// Size is the declared size in bytes, or -1 when unknown
	Size   int64
	Reader io.Reader
}

// ImportOutcome is what callers show the operator after an import
type ImportOutcome struct {
	Message  string           `json:"message"`
	Imported int              `json:"imported"`
	Tasks    []task.Record    `json:"tasks"`
	Summary  importer.Summary `json:"summary"`
}

// NewImportService creates an import service
func NewImportService(im *importer.Importer, store ports.TaskStore, cfg ImportServiceConfig) *ImportService {
	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed = append(allowed, strings.ToLower(ext))
	}
	return &ImportService{
		importer:          im,
		store:             store,
		allowedExtensions: allowed,
		maxBytes:          cfg.MaxBytes,
		logger:            internal.DefaultLogger,
	}
}

// Import decodes the upload, validates and stores every record under the
// project and builds the operator message. Decode errors are returned
// unchanged and nothing is stored.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportOutcome, error) {
	if req.ProjectID == "" {
		return nil, errors.InvalidInput("project ID is required")
	}
	if req.Reader == nil || strings.TrimSpace(req.Filename) == "" {
		return nil, errors.InvalidInput("a spreadsheet file is required")
	}
	if err := s.checkExtension(req.Filename); err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && req.Size > s.maxBytes {
		return nil, errors.PayloadTooLarge(fmt.Sprintf("file %s is %d bytes, the limit is %d", req.Filename, req.Size, s.maxBytes))
	}

	result, err := s.importer.Import(ctx, req.Reader, req.Filename)
	if err != nil {
		return nil, err
	}

	if err := task.ValidateAll(result.Tasks); err != nil {
		s.logger.Error("[ImportService] Rejected %s for project %s: %v", req.Filename, req.ProjectID, err)
		return nil, errors.ValidationError(fmt.Sprintf("imported tasks from %s are invalid", req.Filename), err)
	}

	if err := s.store.AddTasks(ctx, req.ProjectID, result.Tasks); err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to store %d imported tasks", len(result.Tasks)), err)
	}

	outcome := &ImportOutcome{
		Message:  importMessage(req.ProjectID, result.Summary),
		Imported: len(result.Tasks),
		Tasks:    result.Tasks,
		Summary:  result.Summary,
	}
	s.logger.Info("[ImportService] %s (file %s)", outcome.Message, req.Filename)
	return outcome, nil
}

func (s *ImportService) checkExtension(filename string) error {
	if len(s.allowedExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return errors.UnsupportedFormat(fmt.Sprintf("%s is not a spreadsheet, expected one of %s",
		filename, strings.Join(s.allowedExtensions, ", ")))
}

func importMessage(projectID core.ProjectID, summary importer.Summary) string {
	msg := fmt.Sprintf("%d tasks imported for project %s", summary.Rows, projectID)
	if n := summary.FallbackCount(importer.FieldDueDate); n > 0 {
		msg += fmt.Sprintf("; %d without a readable due date were set to today", n)
	}
	return msg
}

// ListTasks returns the project's tasks in import order
func (s *ImportService) ListTasks(ctx context.Context, projectID core.ProjectID) ([]task.Record, error) {
	tasks, err := s.store.GetTasks(ctx, projectID)
	if err != nil {
		return nil, errors.DatabaseError("failed to list tasks", err)
	}
	return tasks, nil
}

// RemoveTask deletes one task; a missing task reports NOT_FOUND
func (s *ImportService) RemoveTask(ctx context.Context, projectID core.ProjectID, taskID core.TaskID) error {
	if err := s.store.RemoveTask(ctx, projectID, taskID); err != nil {
		if core.IsNotFoundError(err) {
			return errors.NotFound(fmt.Sprintf("task %s in project %s", taskID, projectID), err)
		}
		return errors.DatabaseError("failed to remove task", err)
	}
	return nil
}

// ClearTasks deletes every task of the project
func (s *ImportService) ClearTasks(ctx context.Context, projectID core.ProjectID) error {
	if err := s.store.ClearTasks(ctx, projectID); err != nil {
		return errors.DatabaseError("failed to clear tasks", err)
	}
	return nil
}
