// Package server is the development backend the directory client talks to.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estate/estate/internal/people"
)

const healthyMessage = "Backend is running"

// StorageInfo is reported by /api/config
type StorageInfo struct {
	Environment string `json:"environment"`
	Storage     string `json:"storage"`
	Mount       string `json:"mount"`
}

// Server holds the dependencies of the HTTP handlers
type Server struct {
	people     people.Manager
	recordings *people.RecordingArchive
	health     *HealthManager
	storage    StorageInfo
	logger     *zap.Logger
}

// New creates a server. Recording import is served only when recordings is non-nil.
func New(manager people.Manager, recordings *people.RecordingArchive, health *HealthManager, storage StorageInfo, logger *zap.Logger) *Server {
	return &Server{
		people:     manager,
		recordings: recordings,
		health:     health,
		storage:    storage,
		logger:     logger,
	}
}

// Router builds the gin engine with all routes
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(cors.Default())
	router.Use(s.requestLogger())
	router.Use(gin.Recovery())

	router.GET("/health", s.healthCheck)
	router.GET("/api/config", s.getConfig)

	// GET /api/people/ shares the catch-all with single-record lookups
	router.GET("/api/people/*slug", s.getPeople)
	router.POST("/api/people/", s.createPerson)

	if s.recordings != nil {
		router.POST("/api/import/recording", s.importRecording)
	}

	return router
}

// requestLogger logs every request through zap, tagging it with the
// caller's X-Request-ID or a fresh one.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("Request failed", fields...)
			return
		}
		s.logger.Info("Request handled", fields...)
	}
}
