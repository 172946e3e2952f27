package ui

import (
	"bytes"
	stderrors "errors"
	"net/http"

	"chantier/adapters/excel"
	"chantier/app"
	"chantier/domain/core"
	"chantier/internal/errors"
	"chantier/ui/middleware"

	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	templateFilename = "modele-import-taches.xlsx"
)

// handleImportTasks accepts a multipart upload in the "file" field
func (s *Server) handleImportTasks(c *gin.Context) {
	projectID := middleware.ProjectID(c)

	if s.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+uploadOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(c, errors.PayloadTooLarge("upload exceeds the size limit"))
			return
		}
		s.writeError(c, errors.InvalidInput("no file uploaded in field \"file\""))
		return
	}
	defer file.Close()

	s.logger.Debug("[TaskAPI] Import upload %q (%d bytes) for project %s", header.Filename, header.Size, projectID)

	outcome, err := s.imports.Import(c.Request.Context(), app.ImportRequest{
		ProjectID: projectID,
		Filename:  header.Filename,
		Size:      header.Size,
		Reader:    file,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, outcome)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.imports.ListTasks(c.Request.Context(), middleware.ProjectID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleRemoveTask(c *gin.Context) {
	taskID, err := core.ParseTaskID(c.Param("taskID"))
	if err != nil {
		s.writeError(c, errors.InvalidInput(err.Error()))
		return
	}
	if err := s.imports.RemoveTask(c.Request.Context(), middleware.ProjectID(c), taskID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearTasks(c *gin.Context) {
	if err := s.imports.ClearTasks(c.Request.Context(), middleware.ProjectID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleImportTemplate serves a workbook with the expected header row
func (s *Server) handleImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := excel.WriteTemplate(&buf); err != nil {
		s.writeError(c, errors.Wrap(err, "failed to build import template"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+templateFilename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// writeError renders err as {"error", "code"} with the status its code maps to
func (s *Server) writeError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[TaskAPI] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
