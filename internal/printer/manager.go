// internal/printer/manager.go
package printer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"sync"

	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/model"
	"print-agent/internal/printer/escpos"
	"print-agent/internal/transport"
)

// StatusListener receives connection state transitions
type StatusListener func(status model.ConnectionStatus)

// Manager owns the printer connection state machine. All transitions
// flow through it; the transport underneath never changes status on its
// own. One manager per process, one printer at a time.
type Manager struct {
	cfg       *config.PrinterConfig
	transport transport.Transport
	logger    *zap.Logger

	mutex     sync.RWMutex
	status    model.ConnectionStatus
	listeners []StatusListener

	// busy serializes print jobs; TryLock so a second job is rejected
	// immediately instead of queueing behind a possibly stuck link
	busy sync.Mutex
}

// NewManager creates a connection manager over the given transport
func NewManager(cfg *config.PrinterConfig, tr transport.Transport, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		transport: tr,
		logger:    logger.With(zap.String("component", "printer_manager")),
		status:    model.StatusDisconnected,
	}
}

// Status returns the current connection status
func (m *Manager) Status() model.ConnectionStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.status
}

// OnStatusChange registers a listener for status transitions. Listeners
// are invoked synchronously in registration order.
func (m *Manager) OnStatusChange(listener StatusListener) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.listeners = append(m.listeners, listener)
}

func (m *Manager) setStatus(status model.ConnectionStatus) {
	m.mutex.Lock()
	if m.status == status {
		m.mutex.Unlock()
		return
	}
	m.status = status
	listeners := make([]StatusListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mutex.Unlock()

	m.logger.Info("Printer status changed", zap.String("status", string(status)))
	for _, listener := range listeners {
		listener(status)
	}
}

// Acquire claims the printer for a single job. It fails fast with
// ErrPrinterBusy when a job is already running. Callers must Release.
func (m *Manager) Acquire() error {
	if !m.busy.TryLock() {
		return ErrPrinterBusy
	}
	return nil
}

// Release returns the printer to the idle pool
func (m *Manager) Release() {
	m.busy.Unlock()
}

// Scan discovers printers, bounded by the configured scan timeout.
// An empty result is a valid outcome, not an error.
func (m *Manager) Scan(ctx context.Context) ([]model.PrinterDevice, error) {
	scanCtx, cancel := context.WithTimeout(ctx, m.cfg.ScanTimeout)
	defer cancel()

	devices, err := m.transport.Scan(scanCtx)
	if err != nil {
		return nil, fmt.Errorf("printer scan failed: %w", err)
	}
	return devices, nil
}

// IsAvailable reports whether the printer at address is currently
// reachable, by scanning and checking membership by address.
func (m *Manager) IsAvailable(ctx context.Context, address string) (bool, error) {
	devices, err := m.Scan(ctx)
	if err != nil {
		return false, err
	}
	for _, device := range devices {
		if device.Address == address {
			return true, nil
		}
	}
	return false, nil
}

// Connect establishes a connection to the printer at address. On
// failure the state machine lands in ERROR, never back in CONNECTING.
func (m *Manager) Connect(ctx context.Context, address string) error {
	if m.transport.IsConnected() {
		m.setStatus(model.StatusConnected)
		return nil
	}

	m.setStatus(model.StatusConnecting)

	connectCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	if err := m.transport.Connect(connectCtx, address); err != nil {
		m.setStatus(model.StatusError)
		return fmt.Errorf("failed to connect to printer %s: %w", address, err)
	}

	m.setStatus(model.StatusConnected)
	return nil
}

// Disconnect drops the connection. Transport failures during teardown
// are logged and swallowed: by the time we disconnect the job outcome
// is already decided and a noisy teardown must not overwrite it.
func (m *Manager) Disconnect(ctx context.Context) {
	if err := m.transport.Disconnect(ctx); err != nil {
		m.logger.Warn("Printer disconnect failed", zap.Error(err))
	}
	m.setStatus(model.StatusDisconnected)
}

// PrintImage decodes a base64 PNG receipt, converts it to printer
// raster data and streams it to the connected printer.
func (m *Manager) PrintImage(ctx context.Context, imageBase64 string) error {
	if !m.transport.IsConnected() {
		return ErrNotConnected
	}

	decoded, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return fmt.Errorf("failed to decode receipt image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return fmt.Errorf("failed to parse receipt image: %w", err)
	}

	raster, err := escpos.RasterFromImage(img, m.cfg.DotsPerLine())
	if err != nil {
		return fmt.Errorf("failed to rasterize receipt: %w", err)
	}
	commands, err := escpos.RasterCommands(raster)
	if err != nil {
		return err
	}

	return m.send(ctx, commands)
}

// PrintText renders the receipt with the printer's built-in font. Used
// when image capture is unavailable.
func (m *Manager) PrintText(ctx context.Context, data *model.ReceiptData) error {
	if !m.transport.IsConnected() {
		return ErrNotConnected
	}
	return m.send(ctx, escpos.ReceiptCommands(data, m.cfg.DotsPerLine()))
}

func (m *Manager) send(ctx context.Context, commands [][]byte) error {
	printCtx, cancel := context.WithTimeout(ctx, m.cfg.PrintTimeout)
	defer cancel()

	total := 0
	for _, command := range commands {
		if err := m.transport.Write(printCtx, command); err != nil {
			return fmt.Errorf("printer write failed: %w", err)
		}
		total += len(command)
	}

	m.logger.Info("Print data sent", zap.Int("bytes", total), zap.Int("commands", len(commands)))
	return nil
}
