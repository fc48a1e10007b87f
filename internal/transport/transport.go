// internal/transport/transport.go
package transport

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

// Transport is the wire-level boundary to a physical printer. The
// connection manager owns the state machine; a transport only moves
// bytes and reports hard failures. Scan returning an empty list is not
// an error: permission problems and a silent radio look identical from
// here and the caller owns the retry affordance.
type Transport interface {
	Kind() model.TransportKind

	// Discovery
	Scan(ctx context.Context) ([]model.PrinterDevice, error)

	// Connection lifecycle
	Connect(ctx context.Context, address string) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	// Data transfer
	Write(ctx context.Context, data []byte) error
}

// New selects the transport implementation for the configured printer
// path. The choice happens once at process start; call sites never
// branch on platform again.
func New(cfg *config.PrinterConfig, logger *zap.Logger) (Transport, error) {
	switch cfg.Transport {
	case "bluetooth":
		return NewBluetoothTransport(cfg, logger), nil
	case "serial":
		return NewSerialTransport(&cfg.Serial, logger), nil
	case "web":
		return nil, fmt.Errorf("web transport has no printer connection")
	default:
		return nil, fmt.Errorf("unsupported printer transport: %s", cfg.Transport)
	}
}
