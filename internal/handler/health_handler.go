// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/printer"
	"print-agent/internal/storage"
	"print-agent/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store   *storage.Store
	manager *printer.Manager
	config  *config.Config
	logger  *utils.ServiceLogger
	started time.Time
}

// CheckResult is one named component check inside a health response
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the overall health report
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *storage.Store, manager *printer.Manager, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		manager: manager,
		config:  config,
		logger:  utils.NewServiceLogger(logger, "health-handler"),
		started: time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/live", h.LivenessCheck)
	router.GET("/ready", h.ReadinessCheck)
}

// HealthCheck reports storage health and the printer state machine
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.started).String(),
		Checks:    make(map[string]CheckResult),
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		health.Status = "unhealthy"
		health.Checks["storage"] = CheckResult{Status: "unhealthy", Message: err.Error()}
	} else {
		health.Checks["storage"] = CheckResult{Status: "healthy", Message: "Storage OK"}
	}

	// The printer being disconnected is normal between jobs; only the
	// state machine value is reported, never folded into health. The
	// web transport has no device behind it and no manager at all.
	printerState := "N/A (web transport)"
	if h.manager != nil {
		printerState = string(h.manager.Status())
	}
	health.Checks["printer"] = CheckResult{
		Status:  "healthy",
		Message: printerState,
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, health)
}

// LivenessCheck reports that the process is running
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
}

// ReadinessCheck reports whether the agent can take print requests
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now()})
}
