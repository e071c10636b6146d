// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/ussd-go/internal/application/container"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ussd-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/ussd-go/pkg/config"
)

// RegisterFunc lets the hosting application bind business function handlers
// into the registry before traffic starts.
type RegisterFunc func(c *container.Container)

// Initialize performs the complete startup sequence and blocks until
// shutdown. registerFuncs run after the container is wired and before the
// server starts accepting requests.
func Initialize(registerFuncs ...RegisterFunc) error {
	setupLogging()

	start := time.Now().UTC()

	// Step 1: Channeled logger
	loggerCfg := logging.DefaultLoggerConfig()
	loggerCfg.LogDirectory = config.LogDirectory
	loggerCfg.OutputToFile = config.LogToFile
	logger, err := logging.NewChanneledLogger(loggerCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	// Step 2: Menu database
	logger.Startup().Info("Opening menu database...")
	startDBTime := time.Now()
	db, err := database.NewDatabase()
	if err != nil {
		return fmt.Errorf("failed to open menu database: %w", err)
	}
	if err := database.NewTableCreator().CreateSchema(db.Conn); err != nil {
		return fmt.Errorf("failed to create menu schema: %w", err)
	}
	logger.LogStartupPhase("database", time.Since(startDBTime), true)

	// Step 3: Session store
	logger.Startup().Info("Initializing session store...", "driver", config.SessionStoreDriver)
	store, err := container.NewSessionStore()
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Step 4: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(logger, db, store)

	// Step 5: Business function registration
	for _, register := range registerFuncs {
		register(appContainer)
	}
	logger.Startup().Info("Service handlers registered",
		"functions", len(appContainer.Registry.Names()))

	// Step 6: Menu definition
	logger.Startup().Info("Loading menu definition...")
	startMenuTime := time.Now()
	if err := appContainer.MenuService.Load(context.Background()); err != nil {
		logger.LogStartupPhase("menu", time.Since(startMenuTime), false)
		return fmt.Errorf("failed to load menu definition: %w", err)
	}
	logger.LogStartupPhase("menu", time.Since(startMenuTime), true)

	// Step 7: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing menu database...")
	if err := db.Close(); err != nil {
		logger.Shutdown().Error("Error closing menu database", "error", err.Error())
	}

	if closer, ok := store.(interface{ Close() error }); ok {
		logger.Shutdown().Info("Closing session store...")
		if err := closer.Close(); err != nil {
			logger.Shutdown().Error("Error closing session store", "error", err.Error())
		}
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
