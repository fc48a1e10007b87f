// internal/transport/bluetooth.go
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

// Thermal printers expose a vendor serial service at 0xFF00 with a
// write characteristic at 0xFF02.
func printerUUID(short byte) bluetooth.UUID {
	return bluetooth.NewUUID([16]byte{
		0x00, 0x00, 0xff, short, 0x00, 0x00, 0x10, 0x00,
		0x80, 0x00, 0x00, 0x80, 0x5f, 0x9b, 0x34, 0xfb,
	})
}

// BLE write-without-response payloads must stay under the negotiated MTU
const bleChunkSize = 244

// BluetoothTransport drives a BLE thermal printer. One device at a time:
// the agent is a single-printer client, not a fleet manager.
type BluetoothTransport struct {
	cfg     *config.PrinterConfig
	logger  *zap.Logger
	adapter *bluetooth.Adapter

	mutex     sync.Mutex
	enabled   bool
	connected bool
	device    bluetooth.Device
	writer    bluetooth.DeviceCharacteristic
	// known maps scan-result address strings back to native addresses
	// so Connect can dial a device discovered in an earlier scan
	known map[string]bluetooth.Address
}

// NewBluetoothTransport creates a Bluetooth transport over the default adapter
func NewBluetoothTransport(cfg *config.PrinterConfig, logger *zap.Logger) *BluetoothTransport {
	return &BluetoothTransport{
		cfg:     cfg,
		logger:  logger.With(zap.String("transport", "bluetooth")),
		adapter: bluetooth.DefaultAdapter,
		known:   make(map[string]bluetooth.Address),
	}
}

// Kind returns the transport kind
func (t *BluetoothTransport) Kind() model.TransportKind {
	return model.TransportBluetooth
}

func (t *BluetoothTransport) enable() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.enabled {
		return nil
	}
	if err := t.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable bluetooth adapter: %w", err)
	}
	t.enabled = true
	return nil
}

// Scan discovers nearby named BLE devices until the context deadline.
// No results is a normal outcome and returns an empty list, not an
// error; only an adapter failure errors.
func (t *BluetoothTransport) Scan(ctx context.Context) ([]model.PrinterDevice, error) {
	if err := t.enable(); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		devices []model.PrinterDevice
		seen    = make(map[string]bool)
	)

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- t.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			name := result.LocalName()
			if name == "" {
				return
			}
			address := result.Address.String()

			mu.Lock()
			if !seen[address] {
				seen[address] = true
				devices = append(devices, model.PrinterDevice{Name: name, Address: address})
			}
			mu.Unlock()

			t.mutex.Lock()
			t.known[address] = result.Address
			t.mutex.Unlock()
		})
	}()

	select {
	case <-ctx.Done():
		t.adapter.StopScan()
		<-scanDone
	case err := <-scanDone:
		if err != nil {
			return nil, fmt.Errorf("bluetooth scan failed: %w", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	t.logger.Info("Bluetooth scan finished", zap.Int("devices_found", len(devices)))
	return devices, nil
}

// resolve finds the native address for a device, rescanning if the
// address was saved in a previous session and not seen yet.
func (t *BluetoothTransport) resolve(ctx context.Context, address string) (bluetooth.Address, error) {
	t.mutex.Lock()
	native, ok := t.known[address]
	t.mutex.Unlock()
	if ok {
		return native, nil
	}

	t.logger.Debug("Address not cached, rescanning", zap.String("address", address))
	if _, err := t.Scan(ctx); err != nil {
		return bluetooth.Address{}, err
	}

	t.mutex.Lock()
	native, ok = t.known[address]
	t.mutex.Unlock()
	if !ok {
		return bluetooth.Address{}, fmt.Errorf("printer %s not found during scan", address)
	}
	return native, nil
}

// Connect dials the printer and discovers its write characteristic
func (t *BluetoothTransport) Connect(ctx context.Context, address string) error {
	if err := t.enable(); err != nil {
		return err
	}
	if t.IsConnected() {
		return nil
	}

	native, err := t.resolve(ctx, address)
	if err != nil {
		return err
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = bluetooth.NewDuration(time.Until(deadline))
	}

	device, err := t.adapter.Connect(native, params)
	if err != nil {
		return fmt.Errorf("failed to connect to printer: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{printerUUID(0x00)})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover printer service: %w", err)
	}

	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{printerUUID(0x02)})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover write characteristic: %w", err)
	}

	t.mutex.Lock()
	t.device = device
	t.writer = characteristics[0]
	t.connected = true
	t.mutex.Unlock()

	t.logger.Info("Connected to bluetooth printer", zap.String("address", address))
	return nil
}

// Disconnect drops the link; safe to call when not connected
func (t *BluetoothTransport) Disconnect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.connected {
		return nil
	}
	t.connected = false

	if err := t.device.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect printer: %w", err)
	}
	return nil
}

// IsConnected reports whether a link is up
func (t *BluetoothTransport) IsConnected() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.connected
}

// Write streams data to the write characteristic in MTU-sized chunks
func (t *BluetoothTransport) Write(ctx context.Context, data []byte) error {
	t.mutex.Lock()
	writer := t.writer
	connected := t.connected
	t.mutex.Unlock()

	if !connected {
		return fmt.Errorf("bluetooth printer not connected")
	}

	for offset := 0; offset < len(data); offset += bleChunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := offset + bleChunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := writer.WriteWithoutResponse(data[offset:end]); err != nil {
			return fmt.Errorf("failed to write to printer: %w", err)
		}
	}

	t.logger.Debug("Wrote data to printer", zap.Int("bytes", len(data)))
	return nil
}
