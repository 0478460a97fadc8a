// Package api exposes the content pipeline over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"content-creator/internal/common/errors"
	"content-creator/internal/common/logger"
	"content-creator/internal/common/observability"
	"content-creator/internal/content/pipeline"
	"content-creator/internal/history"
	"content-creator/internal/models"
)

// Generator runs one request body through the content pipeline.
type Generator interface {
	Handle(ctx context.Context, body []byte) pipeline.Outcome
}

type HistoryLister interface {
	List(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	generator Generator
	history   HistoryLister
	checks    []ReadinessCheck
	obs       *observability.Observability
	logger    logger.Logger
}

type Option func(*Server)

func WithHistory(h HistoryLister) Option { return func(s *Server) { s.history = h } }

func WithReadinessChecks(checks ...ReadinessCheck) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Server) { s.obs = o }
}

func WithLogger(l logger.Logger) Option { return func(s *Server) { s.logger = l } }

func NewServer(g Generator, opts ...Option) *Server {
	s := &Server{generator: g, logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(map[string]interface{}{"component": "api"})
	return s
}

// Router builds the gin engine. Set the gin mode before calling it.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestID(), recovery(s.logger), corsMiddleware(), accessLog(s.logger, s.obs))

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.POST("/generate", s.generate)
	if s.history != nil {
		apiGroup.GET("/history", s.listHistory)
	}
	return router
}

func (s *Server) generate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		status, payload := ErrorEnvelope(err.Error())
		writeJSON(c, status, payload)
		return
	}

	out := s.generator.Handle(c.Request.Context(), body)
	status, payload := Envelope(out)
	writeJSON(c, status, payload)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"check": check.Name,
				"error": err.Error(),
			})
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"failed": check.Name,
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) listHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_, payload := encode(http.StatusBadRequest, ErrorBody{Error: "limit must be an integer"})
			writeJSON(c, http.StatusBadRequest, payload)
			return
		}
		limit = n
	}

	records, err := s.history.List(c.Request.Context(), history.NormalizeLimit(limit))
	if err != nil {
		stdErr := errors.AsStandardError(err)
		s.logger.Error("History query failed", map[string]interface{}{"error": stdErr.Details})
		status, payload := ErrorEnvelope(stdErr.Details)
		writeJSON(c, status, payload)
		return
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	_, payload := encode(http.StatusOK, records)
	writeJSON(c, http.StatusOK, payload)
}

func writeJSON(c *gin.Context, status int, body []byte) {
	for k, v := range Headers {
		c.Header(k, v)
	}
	c.Data(status, contentTypeJSON, body)
}
