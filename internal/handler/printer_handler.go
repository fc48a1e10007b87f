// internal/handler/printer_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/model"
	"print-agent/internal/printer"
	"print-agent/internal/service"
	"print-agent/internal/utils"
)

// PrinterHandler handles printer discovery and selection
type PrinterHandler struct {
	manager  *printer.Manager
	settings *service.SettingsService
	logger   *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(manager *printer.Manager, settings *service.SettingsService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		manager:  manager,
		settings: settings,
		logger:   utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	printers := router.Group("/printers")
	{
		printers.POST("/scan", h.Scan)
		printers.GET("/status", h.Status)
		printers.GET("/saved", h.GetSaved)
		printers.PUT("/saved", h.SaveSaved)
		printers.DELETE("/saved", h.ClearSaved)
		printers.GET("/saved/availability", h.SavedAvailability)
	}
}

// requireManager rejects device endpoints when the agent runs the web
// transport, which has no printer hardware behind it
func (h *PrinterHandler) requireManager(c *gin.Context) bool {
	if h.manager == nil {
		utils.ErrorResponse(c, http.StatusPreconditionFailed, "No printer transport configured", nil)
		return false
	}
	return true
}

// Scan discovers nearby printers
func (h *PrinterHandler) Scan(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}

	devices, err := h.manager.Scan(c.Request.Context())
	if err != nil {
		h.logger.Error("Printer scan failed", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Printer scan failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Scan complete", gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}

// Status reports the connection state machine
func (h *PrinterHandler) Status(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer status", gin.H{
		"status": h.manager.Status(),
	})
}

// GetSaved returns the remembered printer
func (h *PrinterHandler) GetSaved(c *gin.Context) {
	saved := h.settings.SavedPrinter()
	if saved == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "No printer saved", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Saved printer", saved)
}

// SaveSaved remembers a printer for future jobs
func (h *PrinterHandler) SaveSaved(c *gin.Context) {
	var device model.PrinterDevice
	if err := c.ShouldBindJSON(&device); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"body": err.Error()})
		return
	}

	if err := h.settings.SaveSavedPrinter(c.Request.Context(), device); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to save printer", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer saved", device)
}

// ClearSaved forgets the remembered printer
func (h *PrinterHandler) ClearSaved(c *gin.Context) {
	if err := h.settings.ClearSavedPrinter(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to clear printer", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer cleared", nil)
}

// SavedAvailability rescans and reports whether the remembered printer
// is currently in range
func (h *PrinterHandler) SavedAvailability(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}

	saved := h.settings.SavedPrinter()
	if saved == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "No printer saved", nil)
		return
	}

	available, err := h.manager.IsAvailable(c.Request.Context(), saved.Address)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Availability check failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability checked", gin.H{
		"device":    saved,
		"available": available,
	})
}
