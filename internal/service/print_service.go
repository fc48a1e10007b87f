// internal/service/print_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/layout"
	"print-agent/internal/model"
	"print-agent/internal/printer"
	"print-agent/internal/receipt"
	"print-agent/internal/render"
	"print-agent/internal/storage"
)

var (
	// ErrNoPrinterSaved is returned when a print is requested with no
	// device override and no remembered printer
	ErrNoPrinterSaved = errors.New("no printer saved")

	// ErrInvalidReceipt is returned when a sale cannot be turned into a
	// printable receipt
	ErrInvalidReceipt = errors.New("invalid receipt")
)

// PrintRequest is a request to print one sale receipt
type PrintRequest struct {
	Sale *model.Sale `json:"sale" binding:"required"`
	// Device overrides the saved printer for this job only
	Device *model.PrinterDevice `json:"device,omitempty"`
}

// PrintResult reports the outcome of a print job to the caller
type PrintResult struct {
	JobID   uuid.UUID       `json:"job_id"`
	Mode    model.PrintMode `json:"mode"`
	Message string          `json:"message"`
	// Document carries the printable HTML when the web strategy is
	// active; empty for native printing
	Document string `json:"document,omitempty"`
}

// EventPublisher receives job lifecycle events for push channels
type EventPublisher interface {
	PublishJob(job *model.PrintJob)
}

// PrintStrategy is how a formatted receipt physically reaches paper.
// Picked once at startup from the configured transport.
type PrintStrategy interface {
	Print(ctx context.Context, job *model.PrintJob, data *model.ReceiptData) (*PrintResult, error)
}

// PrintService orchestrates the whole print pipeline: formatting,
// validation, job bookkeeping and the strategy handoff.
type PrintService struct {
	cfg      *config.Config
	store    *storage.Store
	settings *SettingsService
	strategy PrintStrategy
	events   EventPublisher
	logger   *zap.Logger
}

// NewPrintService creates the print service. The strategy is selected
// from the configured transport: web gets the browser document
// strategy, everything else prints natively through the manager.
func NewPrintService(
	cfg *config.Config,
	store *storage.Store,
	settings *SettingsService,
	manager *printer.Manager,
	events EventPublisher,
	logger *zap.Logger,
) *PrintService {
	s := &PrintService{
		cfg:      cfg,
		store:    store,
		settings: settings,
		events:   events,
		logger:   logger.With(zap.String("service", "print")),
	}

	if cfg.Printer.Transport == "web" {
		s.strategy = &webStrategy{settings: settings}
	} else {
		s.strategy = &nativeStrategy{
			settings: settings,
			manager:  manager,
			capture:  render.Capture,
			logger:   s.logger,
		}
	}
	return s
}

// PrintSale formats, validates and prints a sale receipt. Exactly one
// job runs at a time; a second request fails fast with ErrPrinterBusy.
func (s *PrintService) PrintSale(ctx context.Context, req *PrintRequest) (*PrintResult, error) {
	data := receipt.FormatReceiptData(req.Sale, s.cfg.Store)
	if err := receipt.ValidateReceiptData(data); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReceipt, err)
	}

	job := &model.PrintJob{
		ID:        uuid.New(),
		SaleID:    data.SaleID,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if req.Device != nil {
		job.DeviceName = req.Device.Name
		job.DeviceAddress = req.Device.Address
	} else if saved := s.settings.SavedPrinter(); saved != nil {
		job.DeviceName = saved.Name
		job.DeviceAddress = saved.Address
	}

	if err := s.store.InsertJob(ctx, job); err != nil {
		return nil, err
	}

	job.Status = model.JobStatusPrinting
	if err := s.store.UpdateJob(ctx, job); err != nil {
		s.logger.Warn("Failed to record job start", zap.Error(err), zap.String("job_id", job.ID.String()))
	}
	if s.events != nil {
		s.events.PublishJob(job)
	}

	started := time.Now()
	result, err := s.strategy.Print(ctx, job, data)
	s.finishJob(ctx, job, started, err)

	if err != nil {
		return nil, err
	}
	result.JobID = job.ID
	return result, nil
}

// finishJob records the terminal job state. Bookkeeping failures are
// logged, never surfaced: the paper already did or did not come out.
func (s *PrintService) finishJob(ctx context.Context, job *model.PrintJob, started time.Time, printErr error) {
	now := time.Now().UTC()
	job.DurationMs = time.Since(started).Milliseconds()
	job.CompletedAt = &now

	if printErr != nil {
		job.Status = model.JobStatusFailed
		job.ErrorMessage = printErr.Error()
	} else {
		job.Status = model.JobStatusCompleted
	}

	if err := s.store.UpdateJob(ctx, job); err != nil {
		s.logger.Warn("Failed to record job outcome", zap.Error(err), zap.String("job_id", job.ID.String()))
	}
	if s.events != nil {
		s.events.PublishJob(job)
	}

	s.logger.Info("Print job finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("sale_id", job.SaleID),
		zap.String("status", string(job.Status)),
		zap.Int64("duration_ms", job.DurationMs),
	)
}

// Jobs lists recent print jobs, newest first
func (s *PrintService) Jobs(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	return s.store.ListJobs(ctx, limit)
}

// Job returns a single print job by ID
func (s *PrintService) Job(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	return s.store.GetJob(ctx, id)
}

// ReceiptDocument renders a sale as a standalone printable HTML page,
// regardless of the active strategy. Used by the preview endpoint.
func (s *PrintService) ReceiptDocument(sale *model.Sale) (string, error) {
	data := receipt.FormatReceiptData(sale, s.cfg.Store)
	if err := receipt.ValidateReceiptData(data); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidReceipt, err)
	}
	return render.BuildHTML(data, s.settings.Layout())
}

// UserMessage translates a pipeline error into text fit for the
// cashier screen. Unknown errors get a generic message; the precise
// cause stays in the logs and the job record.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return "Receipt printed"
	case errors.Is(err, printer.ErrPrinterBusy):
		return "A print job is already in progress. Wait for it to finish and try again."
	case errors.Is(err, ErrNoPrinterSaved):
		return "No printer is set up. Scan for printers and save one first."
	case errors.Is(err, ErrInvalidReceipt):
		return "This sale cannot be printed. Check that it has items and a total."
	case errors.Is(err, printer.ErrNotConnected):
		return "Lost the printer connection. Check the printer and try again."
	default:
		return "Printing failed. Check that the printer is on and in range, then try again."
	}
}

// nativeStrategy prints through the connected transport. Each job is
// connect, print, disconnect: holding a BLE link between jobs blocks
// other terminals from reaching the same printer.
type nativeStrategy struct {
	settings *SettingsService
	manager  *printer.Manager
	capture  func(data *model.ReceiptData, cfg layout.Config, logger *zap.Logger) string
	logger   *zap.Logger
}

func (n *nativeStrategy) Print(ctx context.Context, job *model.PrintJob, data *model.ReceiptData) (*PrintResult, error) {
	if job.DeviceAddress == "" {
		return nil, ErrNoPrinterSaved
	}

	if err := n.manager.Acquire(); err != nil {
		return nil, err
	}
	defer n.manager.Release()

	if err := n.manager.Connect(ctx, job.DeviceAddress); err != nil {
		return nil, err
	}
	// Disconnect no matter how the print went; teardown noise never
	// overrides the job outcome.
	defer n.manager.Disconnect(ctx)

	// Raster when the renderer can produce an image, otherwise fall
	// back to the printer's built-in font.
	if imageBase64 := n.capture(data, n.settings.Layout(), n.logger); imageBase64 != "" {
		job.Mode = model.PrintModeImage
		if err := n.manager.PrintImage(ctx, imageBase64); err != nil {
			return nil, err
		}
	} else {
		job.Mode = model.PrintModeText
		if err := n.manager.PrintText(ctx, data); err != nil {
			return nil, err
		}
	}

	return &PrintResult{Mode: job.Mode, Message: "Receipt printed"}, nil
}

// webStrategy skips the hardware entirely and hands back a printable
// HTML document for the browser's print dialog
type webStrategy struct {
	settings *SettingsService
}

func (w *webStrategy) Print(ctx context.Context, job *model.PrintJob, data *model.ReceiptData) (*PrintResult, error) {
	document, err := render.BuildHTML(data, w.settings.Layout())
	if err != nil {
		return nil, fmt.Errorf("failed to build receipt document: %w", err)
	}

	job.Mode = model.PrintModeHTML
	return &PrintResult{
		Mode:     model.PrintModeHTML,
		Message:  "Receipt ready to print",
		Document: document,
	}, nil
}
