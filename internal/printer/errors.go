// internal/printer/errors.go
package printer

import "errors"

var (
	// ErrPrinterBusy is returned when a print job is already in flight.
	// Concurrent jobs are rejected rather than queued so a stuck
	// connection never backs up a silent queue of receipts.
	ErrPrinterBusy = errors.New("a print job is already in progress")

	// ErrNotConnected is returned when a write is attempted with no
	// active printer connection
	ErrNotConnected = errors.New("printer is not connected")
)
