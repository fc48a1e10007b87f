// internal/service/settings_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"print-agent/internal/layout"
	"print-agent/internal/model"
	"print-agent/internal/storage"
)

// Settings keys in the storage KV table
const (
	settingSavedPrinter = "saved_printer"
	settingPrintLayout  = "print_layout"
)

// SettingsService owns the saved printer and the layout configuration.
// Both are loaded once at startup and mutated only through this
// service, so reads never touch the database on the print path.
type SettingsService struct {
	store  *storage.Store
	logger *zap.Logger

	mutex        sync.RWMutex
	layout       layout.Config
	savedPrinter *model.PrinterDevice
}

// NewSettingsService creates the settings service and loads persisted
// state. A missing or unreadable saved value falls back to defaults
// rather than failing startup.
func NewSettingsService(ctx context.Context, store *storage.Store, logger *zap.Logger) (*SettingsService, error) {
	s := &SettingsService{
		store:  store,
		logger: logger.With(zap.String("service", "settings")),
		layout: layout.Default(),
	}

	if err := s.loadLayout(ctx); err != nil {
		return nil, err
	}
	if err := s.loadSavedPrinter(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SettingsService) loadLayout(ctx context.Context) error {
	raw, err := s.store.GetSetting(ctx, settingPrintLayout)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load layout: %w", err)
	}

	var cfg layout.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Warn("Stored layout is unreadable, using defaults", zap.Error(err))
		return nil
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("Stored layout is invalid, using defaults", zap.Error(err))
		return nil
	}

	s.layout = cfg
	s.logger.Info("Loaded print layout from storage")
	return nil
}

func (s *SettingsService) loadSavedPrinter(ctx context.Context) error {
	raw, err := s.store.GetSetting(ctx, settingSavedPrinter)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load saved printer: %w", err)
	}

	var device model.PrinterDevice
	if err := json.Unmarshal([]byte(raw), &device); err != nil || device.Address == "" {
		s.logger.Warn("Stored printer is unreadable, clearing", zap.Error(err))
		return nil
	}

	s.savedPrinter = &device
	s.logger.Info("Loaded saved printer",
		zap.String("name", device.Name),
		zap.String("address", device.Address),
	)
	return nil
}

// Layout returns the active layout configuration
func (s *SettingsService) Layout() layout.Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.layout
}

// UpdateLayout validates, persists and activates a new layout. The
// in-memory copy only swaps after the write succeeds.
func (s *SettingsService) UpdateLayout(ctx context.Context, cfg layout.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := s.store.PutSetting(ctx, settingPrintLayout, string(raw)); err != nil {
		return err
	}

	s.mutex.Lock()
	s.layout = cfg
	s.mutex.Unlock()

	s.logger.Info("Print layout updated")
	return nil
}

// ResetLayout restores and persists the default layout
func (s *SettingsService) ResetLayout(ctx context.Context) (layout.Config, error) {
	cfg := layout.Default()
	if err := s.UpdateLayout(ctx, cfg); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// SavedPrinter returns the remembered printer, or nil when none is saved
func (s *SettingsService) SavedPrinter() *model.PrinterDevice {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.savedPrinter == nil {
		return nil
	}
	device := *s.savedPrinter
	return &device
}

// SaveSavedPrinter remembers a printer for future print jobs
func (s *SettingsService) SaveSavedPrinter(ctx context.Context, device model.PrinterDevice) error {
	if device.Address == "" {
		return fmt.Errorf("printer address is required")
	}

	raw, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("failed to encode printer: %w", err)
	}
	if err := s.store.PutSetting(ctx, settingSavedPrinter, string(raw)); err != nil {
		return err
	}

	s.mutex.Lock()
	s.savedPrinter = &device
	s.mutex.Unlock()

	s.logger.Info("Saved printer updated",
		zap.String("name", device.Name),
		zap.String("address", device.Address),
	)
	return nil
}

// ClearSavedPrinter forgets the remembered printer
func (s *SettingsService) ClearSavedPrinter(ctx context.Context) error {
	if err := s.store.DeleteSetting(ctx, settingSavedPrinter); err != nil {
		return err
	}

	s.mutex.Lock()
	s.savedPrinter = nil
	s.mutex.Unlock()

	s.logger.Info("Saved printer cleared")
	return nil
}
