// internal/model/job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a print job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusPrinting  JobStatus = "PRINTING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// PrintMode records which payload shape actually reached the printer
type PrintMode string

const (
	PrintModeImage PrintMode = "IMAGE"
	PrintModeText  PrintMode = "TEXT"
	PrintModeHTML  PrintMode = "HTML"
)

// PrintJob is the durable record of one print attempt
type PrintJob struct {
	ID            uuid.UUID  `json:"id"`
	SaleID        int        `json:"sale_id"`
	DeviceName    string     `json:"device_name,omitempty"`
	DeviceAddress string     `json:"device_address,omitempty"`
	Mode          PrintMode  `json:"mode,omitempty"`
	Status        JobStatus  `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the job reached a final state
func (j *PrintJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
