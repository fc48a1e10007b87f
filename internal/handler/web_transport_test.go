// internal/handler/web_transport_test.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/service"
	"print-agent/internal/storage"
)

// The web transport runs the agent with no printer manager at all;
// every endpoint that would touch the device must degrade instead of
// dereferencing a nil manager.

func webModeRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store, err := storage.Open(filepath.Join(t.TempDir(), "agent.db"), logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings, err := service.NewSettingsService(context.Background(), store, logger)
	if err != nil {
		t.Fatalf("failed to build settings service: %v", err)
	}

	cfg := &config.Config{App: config.AppConfig{Name: "print-agent", Version: "test"}}

	router := gin.New()
	NewHealthHandler(store, nil, cfg, logger).RegisterRoutes(router)
	api := router.Group("/api/v1")
	NewPrinterHandler(nil, settings, logger).RegisterRoutes(api)
	return router
}

func TestHealthCheckWithoutPrinterManager(t *testing.T) {
	router := webModeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("expected healthy status, got %q", health.Status)
	}
	if health.Checks["printer"].Message != "N/A (web transport)" {
		t.Fatalf("expected web transport printer check, got %+v", health.Checks["printer"])
	}
}

func TestPrinterEndpointsWithoutManager(t *testing.T) {
	router := webModeRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/printers/scan"},
		{http.MethodGet, "/api/v1/printers/status"},
		{http.MethodGet, "/api/v1/printers/saved/availability"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusPreconditionFailed {
			t.Errorf("%s %s: expected 412, got %d: %s", tc.method, tc.path, rec.Code, rec.Body.String())
		}
	}
}

func TestSavedPrinterEndpointsSurviveWithoutManager(t *testing.T) {
	router := webModeRouter(t)

	// Saved-printer bookkeeping is pure settings work and stays usable
	// even when no transport is configured.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/printers/saved", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with nothing saved, got %d", rec.Code)
	}
}
