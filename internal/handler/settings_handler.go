// internal/handler/settings_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/layout"
	"print-agent/internal/service"
	"print-agent/internal/utils"
)

// SettingsHandler handles layout configuration
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *utils.ServiceLogger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   utils.NewServiceLogger(logger, "settings-handler"),
	}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("/layout", h.GetLayout)
		settings.PUT("/layout", h.UpdateLayout)
		settings.POST("/layout/reset", h.ResetLayout)
	}
}

// GetLayout returns the active layout configuration
func (h *SettingsHandler) GetLayout(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Print layout", h.settings.Layout())
}

// UpdateLayout validates and activates a new layout
func (h *SettingsHandler) UpdateLayout(c *gin.Context) {
	var cfg layout.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"body": err.Error()})
		return
	}

	if err := h.settings.UpdateLayout(c.Request.Context(), cfg); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid layout", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Layout updated", cfg)
}

// ResetLayout restores the default layout
func (h *SettingsHandler) ResetLayout(c *gin.Context) {
	cfg, err := h.settings.ResetLayout(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to reset layout", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Layout reset", cfg)
}
