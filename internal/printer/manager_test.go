// internal/printer/manager_test.go
package printer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/model"
)

// fakeTransport scripts transport behavior for state machine tests
type fakeTransport struct {
	devices     []model.PrinterDevice
	scanErr     error
	connectErr  error
	writeErr    error
	connected   bool
	disconnects int
	written     [][]byte
}

func (f *fakeTransport) Kind() model.TransportKind { return model.TransportBluetooth }

func (f *fakeTransport) Scan(ctx context.Context) ([]model.PrinterDevice, error) {
	return f.devices, f.scanErr
}

func (f *fakeTransport) Connect(ctx context.Context, address string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Disconnect(ctx context.Context) error {
	f.disconnects++
	f.connected = false
	return nil
}

func (f *fakeTransport) IsConnected() bool { return f.connected }

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, data)
	return nil
}

func testPrinterConfig() *config.PrinterConfig {
	return &config.PrinterConfig{
		Transport:      "bluetooth",
		PaperWidthMm:   58,
		ScanTimeout:    time.Second,
		ConnectTimeout: time.Second,
		PrintTimeout:   time.Second,
	}
}

func newTestManager(tr *fakeTransport) *Manager {
	return NewManager(testPrinterConfig(), tr, zap.NewNop())
}

func sampleReceipt() *model.ReceiptData {
	return &model.ReceiptData{
		StoreName:     "Corner Pharmacy",
		SaleID:        42,
		SaleDate:      "Aug 30, 2026 14:05",
		Items:         []model.ReceiptItem{{Name: "Paracetamol", Quantity: 2, UnitPrice: decimal.NewFromInt(500), Total: decimal.NewFromInt(1000)}},
		TotalAmount:   decimal.NewFromInt(1000),
		PaymentMethod: "cash",
		FooterLine:    "Thank you for your purchase!",
	}
}

func pngBase64(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestIsAvailableMatchesByAddress(t *testing.T) {
	tr := &fakeTransport{devices: []model.PrinterDevice{
		{Name: "RPP02N", Address: "AA:BB:CC:DD:EE:FF"},
		{Name: "Other", Address: "11:22:33:44:55:66"},
	}}
	m := newTestManager(tr)

	available, err := m.IsAvailable(context.Background(), "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Fatal("expected saved printer to be reported available")
	}

	available, err = m.IsAvailable(context.Background(), "FF:FF:FF:FF:FF:FF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Fatal("expected unknown printer to be reported unavailable")
	}
}

func TestConnectTransitionsStatus(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestManager(tr)

	var transitions []model.ConnectionStatus
	m.OnStatusChange(func(status model.ConnectionStatus) {
		transitions = append(transitions, status)
	})

	if m.Status() != model.StatusDisconnected {
		t.Fatalf("expected initial status DISCONNECTED, got %s", m.Status())
	}

	if err := m.Connect(context.Background(), "AA:BB"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if m.Status() != model.StatusConnected {
		t.Fatalf("expected CONNECTED, got %s", m.Status())
	}

	want := []model.ConnectionStatus{model.StatusConnecting, model.StatusConnected}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestConnectFailureLandsInError(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("link layer refused")}
	m := newTestManager(tr)

	if err := m.Connect(context.Background(), "AA:BB"); err == nil {
		t.Fatal("expected connect to fail")
	}
	if m.Status() != model.StatusError {
		t.Fatalf("expected ERROR, got %s", m.Status())
	}
}

func TestPrintFailureStillDisconnectsOnce(t *testing.T) {
	tr := &fakeTransport{writeErr: errors.New("printer powered off mid job")}
	m := newTestManager(tr)

	if err := m.Connect(context.Background(), "AA:BB"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	err := m.PrintText(context.Background(), sampleReceipt())
	if err == nil {
		t.Fatal("expected print to surface the write error")
	}

	m.Disconnect(context.Background())
	if tr.disconnects != 1 {
		t.Fatalf("expected exactly one disconnect, got %d", tr.disconnects)
	}
	if m.Status() != model.StatusDisconnected {
		t.Fatalf("expected DISCONNECTED after teardown, got %s", m.Status())
	}
}

func TestPrintImageStreamsRasterData(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestManager(tr)

	if err := m.Connect(context.Background(), "AA:BB"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := m.PrintImage(context.Background(), pngBase64(t, 200, 120)); err != nil {
		t.Fatalf("print image failed: %v", err)
	}
	if len(tr.written) == 0 {
		t.Fatal("expected raster commands to be written")
	}
}

func TestPrintImageRejectsGarbageInput(t *testing.T) {
	tr := &fakeTransport{connected: true}
	m := newTestManager(tr)

	if err := m.PrintImage(context.Background(), "not base64!!"); err == nil {
		t.Fatal("expected invalid base64 to be rejected")
	}
	if err := m.PrintImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("not a png"))); err == nil {
		t.Fatal("expected non-image payload to be rejected")
	}
	if len(tr.written) != 0 {
		t.Fatal("expected nothing written for rejected payloads")
	}
}

func TestPrintRequiresConnection(t *testing.T) {
	m := newTestManager(&fakeTransport{})

	if err := m.PrintText(context.Background(), sampleReceipt()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestAcquireRejectsConcurrentJobs(t *testing.T) {
	m := newTestManager(&fakeTransport{})

	if err := m.Acquire(); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := m.Acquire(); !errors.Is(err, ErrPrinterBusy) {
		t.Fatalf("expected ErrPrinterBusy, got %v", err)
	}

	m.Release()
	if err := m.Acquire(); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	m.Release()
}
