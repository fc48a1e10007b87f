// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/handler"
	"print-agent/internal/printer"
	"print-agent/internal/routes"
	"print-agent/internal/service"
	"print-agent/internal/storage"
	"print-agent/internal/transport"
	"print-agent/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	store  *storage.Store

	manager *printer.Manager

	printService    *service.PrintService
	settingsService *service.SettingsService

	wsHandler *handler.WebSocketHandler
}

func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "print-agent")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initializePrinter(); err != nil {
		return nil, fmt.Errorf("failed to initialize printer: %w", err)
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeStorage opens the local database
func (app *Application) initializeStorage() error {
	store, err := storage.Open(app.config.Storage.Path, app.logger)
	if err != nil {
		return err
	}

	app.store = store
	app.logger.Info("Storage initialized successfully")
	return nil
}

// initializePrinter wires the transport and connection manager. The
// web transport has no hardware link, so the manager stays nil and the
// print service renders browser documents instead.
func (app *Application) initializePrinter() error {
	if app.config.Printer.Transport == "web" {
		app.logger.Info("Web print strategy active, no printer transport")
		return nil
	}

	tr, err := transport.New(&app.config.Printer, app.logger)
	if err != nil {
		return err
	}

	app.manager = printer.NewManager(&app.config.Printer, tr, app.logger)
	app.logger.Info("Printer transport initialized",
		zap.String("transport", app.config.Printer.Transport),
		zap.Int("dots_per_line", app.config.Printer.DotsPerLine()),
	)
	return nil
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settingsService, err := service.NewSettingsService(ctx, app.store, app.logger)
	if err != nil {
		return err
	}
	app.settingsService = settingsService

	app.wsHandler = handler.NewWebSocketHandler(app.logger)
	if app.manager != nil {
		app.manager.OnStatusChange(app.wsHandler.PublishStatus)
	}

	app.printService = service.NewPrintService(
		app.config,
		app.store,
		app.settingsService,
		app.manager,
		app.wsHandler,
		app.logger,
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.store,
		app.manager,
		app.printService,
		app.settingsService,
		app.wsHandler,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// Start runs the HTTP server until a shutdown signal arrives
func (app *Application) Start() error {
	errChan := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server starting", zap.String("address", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		app.shutdown()
	}

	return nil
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "print-agent")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.manager != nil {
		app.manager.Disconnect(ctx)
	}

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Error("Storage close error", zap.Error(err))
		} else {
			app.logger.Info("Storage closed")
		}
	}

	utils.CloseLogger(app.logger)
}
