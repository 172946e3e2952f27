package ui

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chantier/adapters/excel"
	"chantier/adapters/memory"
	"chantier/app"
	"chantier/domain/core"
	"chantier/domain/task"
	"chantier/internal"
	"chantier/internal/importer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, maxUpload int64) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	im := importer.New(excel.NewDecoder(excel.DefaultReaderOptions()), importer.Options{
		Clock: core.FixedClock(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
	})
	svc := app.NewImportService(im, memory.NewTaskStore(), app.ImportServiceConfig{
		AllowedExtensions: []string{".xlsx", ".xls", ".csv"},
		MaxBytes:          maxUpload,
	})
	return NewServer(svc, ServerOptions{
		MaxUploadBytes: maxUpload,
		Logger:         internal.NewLoggerTo(io.Discard, internal.LogLevelError),
	})
}

func uploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type importResponse struct {
	Message  string        `json:"message"`
	Imported int           `json:"imported"`
	Tasks    []task.Record `json:"tasks"`
	Summary  struct {
		Rows      int            `json:"rows"`
		Fallbacks map[string]int `json:"fallbacks"`
	} `json:"summary"`
}

func TestImportTasks_CSV(t *testing.T) {
	s := newTestServer(t, 1<<20)
	csv := "Tâche;Statut;Priorité;Date fin;Progrès\n" +
		"Coulage dalle;En cours;Haute;28/06/2024;60%\n" +
		"Réception;Terminé;;;100\n"

	w := serve(s, uploadRequest(t, "/api/projects/villa-lyon/tasks/import", "file", "planning.csv", []byte(csv)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, "2 tasks imported for project villa-lyon; 1 without a readable due date were set to today", resp.Message)
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, task.StatusInProgress, resp.Tasks[0].Status)
	assert.Equal(t, "2024-06-28", resp.Tasks[0].DueDate)
	assert.Equal(t, "2024-03-15", resp.Tasks[1].DueDate)
	assert.Equal(t, 1, resp.Summary.Fallbacks["priority"])

	list := serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/villa-lyon/tasks", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var listed struct {
		Tasks []task.Record `json:"tasks"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	assert.Equal(t, 2, listed.Count)
	assert.Equal(t, resp.Tasks, listed.Tasks)
}

func TestImportTasks_XLSX(t *testing.T) {
	s := newTestServer(t, 1<<20)
	var workbook bytes.Buffer
	require.NoError(t, excel.WriteTemplate(&workbook))

	w := serve(s, uploadRequest(t, "/api/projects/p1/tasks/import", "file", "Modele.XLSX", workbook.Bytes()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Coffrage voiles sous-sol", resp.Tasks[0].Title)
	assert.Equal(t, task.PriorityHigh, resp.Tasks[0].Priority)
	assert.Equal(t, 45, resp.Tasks[0].Progress)
}

func TestImportTasks_Errors(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		status   int
		code     string
	}{
		{"plain text renamed to xlsx", "file", "notes.xlsx", []byte("compte rendu de chantier\nrien de tabulaire\n"), http.StatusUnprocessableEntity, "DECODE_ERROR"},
		{"empty csv", "file", "vide.csv", []byte{}, http.StatusUnprocessableEntity, "DECODE_ERROR"},
		{"pdf extension", "file", "plan.pdf", []byte("%PDF-1.7"), http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"wrong form field", "document", "planning.csv", []byte("Tâche\nA\n"), http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 1<<20)
			w := serve(s, uploadRequest(t, "/api/projects/p1/tasks/import", tt.field, tt.filename, tt.content))
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp["code"])
			assert.NotEmpty(t, resp["error"])

			list := serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/p1/tasks", nil))
			assert.Contains(t, list.Body.String(), `"count":0`)
		})
	}
}

func TestImportTasks_TooLarge(t *testing.T) {
	s := newTestServer(t, 64)
	big := "Tâche\n" + strings.Repeat("Une tâche de chantier assez longue\n", 80000)

	w := serve(s, uploadRequest(t, "/api/projects/p1/tasks/import", "file", "gros.csv", []byte(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestRemoveAndClearTasks(t *testing.T) {
	s := newTestServer(t, 1<<20)
	csv := "Tâche\nA\nB\nC\n"
	w := serve(s, uploadRequest(t, "/api/projects/p1/tasks/import", "file", "t.csv", []byte(csv)))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	taskID := string(resp.Tasks[1].ID)

	del := serve(s, httptest.NewRequest(http.MethodDelete, "/api/projects/p1/tasks/"+taskID, nil))
	assert.Equal(t, http.StatusNoContent, del.Code)

	again := serve(s, httptest.NewRequest(http.MethodDelete, "/api/projects/p1/tasks/"+taskID, nil))
	assert.Equal(t, http.StatusNotFound, again.Code)

	clear := serve(s, httptest.NewRequest(http.MethodDelete, "/api/projects/p1/tasks", nil))
	assert.Equal(t, http.StatusNoContent, clear.Code)

	list := serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/p1/tasks", nil))
	assert.Contains(t, list.Body.String(), `"count":0`)
}

func TestImportTemplateDownload(t *testing.T) {
	s := newTestServer(t, 0)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/tasks/import/template", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), templateFilename)

	table, err := excel.NewDecoder(excel.DefaultReaderOptions()).DecodeBytes(w.Body.Bytes(), templateFilename)
	require.NoError(t, err)
	assert.Equal(t, excel.TemplateHeaders, table.Headers)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBlankProjectIsRejected(t *testing.T) {
	s := newTestServer(t, 0)
	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/projects/%20/tasks", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
