// internal/transport/serial.go
package transport

import (
	"context"
	"fmt"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

// SerialTransport drives a wired ESC/POS printer over a serial port.
// The device address is the port name (COM3, /dev/ttyUSB0).
type SerialTransport struct {
	cfg    *config.SerialConfig
	logger *zap.Logger

	mutex  sync.Mutex
	port   serial.Port
	isOpen bool
}

// NewSerialTransport creates a serial transport
func NewSerialTransport(cfg *config.SerialConfig, logger *zap.Logger) *SerialTransport {
	return &SerialTransport{
		cfg:    cfg,
		logger: logger.With(zap.String("transport", "serial")),
	}
}

// Kind returns the transport kind
func (t *SerialTransport) Kind() model.TransportKind {
	return model.TransportSerial
}

// Scan lists serial ports present on the system. Ports cannot be
// probed without opening them, so every port is offered as a candidate.
func (t *SerialTransport) Scan(ctx context.Context) ([]model.PrinterDevice, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	devices := make([]model.PrinterDevice, 0, len(ports))
	for _, port := range ports {
		devices = append(devices, model.PrinterDevice{Name: port, Address: port})
	}

	t.logger.Info("Serial scan finished", zap.Int("ports_found", len(devices)))
	return devices, nil
}

// Connect opens the serial port named by address
func (t *SerialTransport) Connect(ctx context.Context, address string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.isOpen {
		return nil
	}

	t.logger.Info("Opening serial port",
		zap.String("port", address),
		zap.Int("baud_rate", t.cfg.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: t.cfg.DataBits,
		StopBits: serial.StopBits(t.cfg.StopBits),
	}

	switch t.cfg.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(address, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(t.cfg.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	t.port = port
	t.isOpen = true
	return nil
}

// Disconnect closes the port; safe to call when not open
func (t *SerialTransport) Disconnect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen || t.port == nil {
		return nil
	}

	t.isOpen = false
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	t.port = nil
	return nil
}

// IsConnected reports whether the port is open
func (t *SerialTransport) IsConnected() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.isOpen && t.port != nil
}

// Write writes data to the open port
func (t *SerialTransport) Write(ctx context.Context, data []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.isOpen || t.port == nil {
		return fmt.Errorf("serial port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := t.port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	t.logger.Debug("Serial write completed", zap.Int("bytes", len(data)))
	return nil
}
