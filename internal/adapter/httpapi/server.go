// Package httpapi exposes the operational HTTP surface: on-demand ingestion,
// risk queries, alert management, and health/metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/ingest"
	"github.com/agrisat/field-monitor/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Server routes API requests to the ingestion service and repositories.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	service    *ingest.Service
	fields     *store.FieldRepository
	alerts     *store.AlertRepository
	db         *gorm.DB
	logger     *slog.Logger
}

// NewServer builds the gin router and wraps it in an http.Server.
func NewServer(addr string, service *ingest.Service, fields *store.FieldRepository, alerts *store.AlertRepository, db *gorm.DB, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute, // bulk ingestion runs inline
			IdleTimeout:  60 * time.Second,
		},
		engine:  engine,
		service: service,
		fields:  fields,
		alerts:  alerts,
		db:      db,
		logger:  logger,
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")
	{
		fieldsGroup := v1.Group("/fields/:id")
		{
			fieldsGroup.POST("/weather/ingest", s.handleIngestWeather)
			fieldsGroup.POST("/satellite/ingest", s.handleIngestSatellite)
			fieldsGroup.GET("/fire-risk", s.handleFireRisk)
			fieldsGroup.GET("/ndvi-trend", s.handleNDVITrend)
			fieldsGroup.GET("/alerts", s.handleListAlerts)
		}
		bulk := v1.Group("/ingest")
		{
			bulk.POST("/weather", s.handleBulkWeather)
			bulk.POST("/satellite", s.handleBulkSatellite)
			bulk.POST("/fire-check", s.handleBulkFireCheck)
		}
		alertsGroup := v1.Group("/alerts/:id")
		{
			alertsGroup.POST("/resolve", s.handleResolveAlert)
			alertsGroup.POST("/reopen", s.handleReopenAlert)
		}
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleIngestWeather(c *gin.Context) {
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.IngestWeather(c.Request.Context(), c.Param("id"), days, boolQuery(c, "force"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleIngestSatellite(c *gin.Context) {
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.IngestSatellite(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleFireRisk(c *gin.Context) {
	bufferKm, ok := floatQuery(c, "buffer_km", 0)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.CheckFire(c.Request.Context(), c.Param("id"), bufferKm, days)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleNDVITrend(c *gin.Context) {
	res, err := s.service.ProcessTrend(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleListAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	field, err := s.fields.FieldByID(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	alerts, err := s.alerts.ListByField(ctx, field.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field_id": field.ID, "alerts": alerts})
}

func (s *Server) handleBulkWeather(c *gin.Context) {
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.BulkIngestWeather(c.Request.Context(), c.Query("owner_id"), days, boolQuery(c, "force"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleBulkSatellite(c *gin.Context) {
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.BulkIngestSatellite(c.Request.Context(), c.Query("owner_id"), days)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleBulkFireCheck(c *gin.Context) {
	bufferKm, ok := floatQuery(c, "buffer_km", 0)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days", 0)
	if !ok {
		return
	}
	res, err := s.service.BulkCheckFires(c.Request.Context(), bufferKm, days)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type resolveRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

func (s *Server) handleResolveAlert(c *gin.Context) {
	var req resolveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	alert, err := s.alerts.Resolve(c.Request.Context(), c.Param("id"), req.ResolvedBy)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *Server) handleReopenAlert(c *gin.Context) {
	alert, err := s.alerts.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// writeError translates domain errors onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFieldNotFound), errors.Is(err, domain.ErrAlertNotFound):
		status = http.StatusNotFound
	case domain.IsValidation(err), errors.Is(err, domain.ErrMissingBoundary):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case domain.IsTransient(err):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
		return 0, false
	}
	return v, true
}

func floatQuery(c *gin.Context, name string, def float64) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative number"})
		return 0, false
	}
	return v, true
}

func boolQuery(c *gin.Context, name string) bool {
	return c.Query(name) == "true"
}

// requestLogger logs each request with its latency and status.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
