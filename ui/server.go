package ui

import (
	"net/http"

	"chantier/app"
	"chantier/internal"
	"chantier/ui/middleware"

	"github.com/gin-gonic/gin"
)

// uploadOverhead leaves room for multipart boundaries and headers on top of
// the file size cap
const uploadOverhead = 1 << 20

// Server exposes the task import API
type Server struct {
	router         *gin.Engine
	imports        *app.ImportService
	logger         *internal.Logger
	maxUploadBytes int64
}

// ServerOptions configures the HTTP layer
type ServerOptions struct {
	// MaxUploadBytes caps the request body of imports; 0 leaves it unbounded
	MaxUploadBytes int64
	Logger         *internal.Logger
}

// NewServer creates the server and registers its routes
func NewServer(imports *app.ImportService, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:         gin.New(),
		imports:        imports,
		logger:         logger,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/tasks/import/template", s.handleImportTemplate)

	projects := api.Group("/projects/:projectID", middleware.RequireProject())
	projects.POST("/tasks/import", s.handleImportTasks)
	projects.GET("/tasks", s.handleListTasks)
	projects.DELETE("/tasks", s.handleClearTasks)
	projects.DELETE("/tasks/:taskID", s.handleRemoveTask)
}

// Handler returns the router for use in an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on addr until it fails
func (s *Server) Start(addr string) error {
	s.logger.Info("[TaskAPI] Listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
