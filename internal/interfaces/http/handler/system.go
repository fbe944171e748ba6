package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/scheduler"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DatabaseChecker reports database reachability and pool usage
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// SchedulerReporter reports the periodic pass state
type SchedulerReporter interface {
	Status() scheduler.Status
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        DatabaseChecker
	scheduler SchedulerReporter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. scheduler may be nil.
func NewSystemHandler(name, version string, db DatabaseChecker, scheduler SchedulerReporter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		scheduler: scheduler,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string                       `json:"name"`
	Version   string                       `json:"version"`
	GoVersion string                       `json:"go_version"`
	Uptime    string                       `json:"uptime"`
	Database  *persistence.ConnectionStats `json:"database,omitempty"`
	Scheduler *scheduler.Status            `json:"scheduler,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

// GetSystemInfo returns version, uptime, pool usage and scheduler state
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.db != nil {
		if stats, err := h.db.Stats(); err == nil {
			info.Database = &stats
		}
	}
	if h.scheduler != nil {
		status := h.scheduler.Status()
		info.Scheduler = &status
	}
	h.Success(c, info)
}

// Health pings the database
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Format(time.RFC3339),
		Database: "ok",
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
