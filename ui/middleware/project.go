package middleware

import (
	"net/http"
	"time"

	"chantier/domain/core"
	"chantier/internal"
	"chantier/internal/errors"

	"github.com/gin-gonic/gin"
)

// ProjectIDKey is the gin context key holding the parsed core.ProjectID
const ProjectIDKey = "projectID"

// RequireProject parses the :projectID route parameter and aborts with 400
// when it is blank
func RequireProject() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := core.ParseProjectID(c.Param("projectID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errors.CodeInvalidInput})
			return
		}
		c.Set(ProjectIDKey, projectID)
		c.Next()
	}
}

// ProjectID returns the project set by RequireProject
func ProjectID(c *gin.Context) core.ProjectID {
	if v, ok := c.Get(ProjectIDKey); ok {
		if id, ok := v.(core.ProjectID); ok {
			return id
		}
	}
	return ""
}

// RequestLogger logs one line per request through the leveled logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "[TaskAPI] %s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Microsecond)}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(line, args...)
		case status >= http.StatusBadRequest:
			logger.Warn(line, args...)
		default:
			logger.Info(line, args...)
		}
	}
}
