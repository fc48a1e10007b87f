// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-agent/internal/config"
	"print-agent/internal/handler"
	"print-agent/internal/middleware"
	"print-agent/internal/printer"
	"print-agent/internal/service"
	"print-agent/internal/storage"
	"print-agent/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config          *config.Config
	logger          *zap.Logger
	store           *storage.Store
	manager         *printer.Manager
	printService    *service.PrintService
	settingsService *service.SettingsService
	wsHandler       *handler.WebSocketHandler
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	store *storage.Store,
	manager *printer.Manager,
	printService *service.PrintService,
	settingsService *service.SettingsService,
	wsHandler *handler.WebSocketHandler,
) *Router {
	return &Router{
		config:          config,
		logger:          logger,
		store:           store,
		manager:         manager,
		printService:    printService,
		settingsService: settingsService,
		wsHandler:       wsHandler,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.store, r.manager, r.config, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.logger)
	printerHandler := handler.NewPrinterHandler(r.manager, r.settingsService, r.logger)
	settingsHandler := handler.NewSettingsHandler(r.settingsService, r.logger)
	jobHandler := handler.NewJobHandler(r.printService, r.logger)

	healthHandler.RegisterRoutes(router)

	apiV1 := router.Group("/api/v1")
	printHandler.RegisterRoutes(apiV1)
	printerHandler.RegisterRoutes(apiV1)
	settingsHandler.RegisterRoutes(apiV1)
	jobHandler.RegisterRoutes(apiV1)

	r.wsHandler.RegisterRoutes(router)

	r.logger.Info("All routes configured successfully")
}
