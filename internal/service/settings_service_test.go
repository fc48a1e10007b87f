// internal/service/settings_service_test.go
package service

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"print-agent/internal/layout"
	"print-agent/internal/model"
	"print-agent/internal/storage"
)

func newSettingsFixture(t *testing.T) (*storage.Store, *SettingsService) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "agent.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := NewSettingsService(context.Background(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create settings service: %v", err)
	}
	return store, settings
}

func reopenSettings(t *testing.T, store *storage.Store) *SettingsService {
	t.Helper()
	settings, err := NewSettingsService(context.Background(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to reload settings service: %v", err)
	}
	return settings
}

func TestLayoutDefaultsWhenNothingStored(t *testing.T) {
	_, settings := newSettingsFixture(t)

	if settings.Layout() != layout.Default() {
		t.Fatal("expected default layout on first start")
	}
	if settings.SavedPrinter() != nil {
		t.Fatal("expected no saved printer on first start")
	}
}

func TestLayoutSurvivesRestart(t *testing.T) {
	store, settings := newSettingsFixture(t)

	cfg := layout.Default()
	cfg.Scale = 4
	cfg.Fonts.StoreName = 26
	if err := settings.UpdateLayout(context.Background(), cfg); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded := reopenSettings(t, store)
	if reloaded.Layout() != cfg {
		t.Fatalf("layout lost across restart: got %+v", reloaded.Layout())
	}
}

func TestUpdateLayoutRejectsInvalidConfig(t *testing.T) {
	_, settings := newSettingsFixture(t)

	cfg := layout.Default()
	cfg.PaperWidth = 0
	if err := settings.UpdateLayout(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid layout to be rejected")
	}
	if settings.Layout() != layout.Default() {
		t.Fatal("rejected layout must not replace the active one")
	}
}

func TestCorruptStoredLayoutFallsBackToDefault(t *testing.T) {
	store, settings := newSettingsFixture(t)
	_ = settings

	if err := store.PutSetting(context.Background(), "print_layout", `{"version": 99}`); err != nil {
		t.Fatalf("failed to plant corrupt layout: %v", err)
	}

	reloaded := reopenSettings(t, store)
	if reloaded.Layout() != layout.Default() {
		t.Fatal("expected defaults when the stored layout is invalid")
	}
}

func TestResetLayoutRestoresDefaults(t *testing.T) {
	store, settings := newSettingsFixture(t)

	cfg := layout.Default()
	cfg.PaddingBase = 20
	if err := settings.UpdateLayout(context.Background(), cfg); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	restored, err := settings.ResetLayout(context.Background())
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if restored != layout.Default() {
		t.Fatal("expected reset to return defaults")
	}

	reloaded := reopenSettings(t, store)
	if reloaded.Layout() != layout.Default() {
		t.Fatal("expected reset to persist")
	}
}

func TestSavedPrinterRoundTrip(t *testing.T) {
	store, settings := newSettingsFixture(t)
	ctx := context.Background()

	device := model.PrinterDevice{Name: "RPP02N", Address: "AA:BB:CC:DD:EE:FF"}
	if err := settings.SaveSavedPrinter(ctx, device); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded := reopenSettings(t, store)
	saved := reloaded.SavedPrinter()
	if saved == nil || !saved.SameAddress(device) {
		t.Fatalf("saved printer lost across restart: %+v", saved)
	}

	if err := reloaded.ClearSavedPrinter(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if reloaded.SavedPrinter() != nil {
		t.Fatal("expected saved printer to be cleared")
	}
	if reopenSettings(t, store).SavedPrinter() != nil {
		t.Fatal("expected cleared printer to stay cleared after restart")
	}
}

func TestSaveSavedPrinterRequiresAddress(t *testing.T) {
	_, settings := newSettingsFixture(t)

	if err := settings.SaveSavedPrinter(context.Background(), model.PrinterDevice{Name: "Ghost"}); err == nil {
		t.Fatal("expected a printer without an address to be rejected")
	}
}
