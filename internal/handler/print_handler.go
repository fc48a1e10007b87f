// internal/handler/print_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/printer"
	"print-agent/internal/service"
	"print-agent/internal/utils"
)

// PrintHandler handles receipt printing requests
type PrintHandler struct {
	printService *service.PrintService
	logger       *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printService: printService,
		logger:       utils.NewServiceLogger(logger, "print-handler"),
	}
}

// RegisterRoutes registers print routes
func (h *PrintHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/print", h.PrintReceipt)
	router.POST("/receipts/document", h.ReceiptDocument)
}

// PrintReceipt prints one sale receipt on the configured printer
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	var req service.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"body": err.Error()})
		return
	}

	result, err := h.printService.PrintSale(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("Print request failed", zap.Error(err))
		utils.ErrorResponse(c, printStatusCode(err), service.UserMessage(err), err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, result.Message, result)
}

// ReceiptDocument renders a sale as a printable HTML page for the
// browser print dialog. Returned as text/html, not wrapped in the
// JSON envelope, so the frontend can load it straight into an iframe.
func (h *PrintHandler) ReceiptDocument(c *gin.Context) {
	var req service.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"body": err.Error()})
		return
	}

	document, err := h.printService.ReceiptDocument(req.Sale)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to render receipt", err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(document))
}

// printStatusCode maps pipeline errors to HTTP status codes
func printStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidReceipt):
		return http.StatusBadRequest
	case errors.Is(err, printer.ErrPrinterBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoPrinterSaved):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
