// internal/handler/job_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-agent/internal/service"
	"print-agent/internal/storage"
	"print-agent/internal/utils"
)

// JobHandler exposes the print job history
type JobHandler struct {
	printService *service.PrintService
	logger       *utils.ServiceLogger
}

// NewJobHandler creates a new job handler
func NewJobHandler(printService *service.PrintService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		printService: printService,
		logger:       utils.NewServiceLogger(logger, "job-handler"),
	}
}

// RegisterRoutes registers job routes
func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
	}
}

// ListJobs returns recent print jobs, newest first
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	jobs, err := h.printService.Jobs(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print jobs", gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob returns one print job by ID
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid job ID", err)
		return
	}

	job, err := h.printService.Job(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Job not found", nil)
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to read job", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Print job", job)
}
