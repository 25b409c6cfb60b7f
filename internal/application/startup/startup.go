// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajcreationz/livesite/internal/application/container"
	schema "github.com/rajcreationz/livesite/internal/infrastructure/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/localcache"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
	"github.com/rajcreationz/livesite/internal/infrastructure/persistence/database"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
	"github.com/rajcreationz/livesite/internal/presentation/http/server"
	"github.com/rajcreationz/livesite/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[31m" + `
  ___       _  ___              _   _
 | _ \__ _ (_)/ __|_ _ ___ __ _| |_(_)___ _ _
 |   / _' || | (__| '_/ -_) _' |  _| / _ \ ' \
 |_|_\__,_|/ |\___|_| \___\__,_|\__|_\___/_||_|
         |__/                           live
` + "\033[0m")

	// Step 1: Channeled logger
	log.Println("Initializing logger...")
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:     config.LogToFile,
		OutputToConsole:  true,
		OutputToSSE:      true,
		LogDirectory:     config.LogDir,
		JSONFormat:       config.LogJSON,
		DefaultLevel:     slog.LevelInfo,
		SuppressPatterns: config.LogSuppressPatterns,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging ready")

	if config.MetricsEnabled {
		if err := metrics.RegisterSuppressedLogs(logger.Filter().Dropped); err != nil {
			logger.Startup().Warn("Failed to register suppressed log metric", "error", err.Error())
		}
	}

	// Step 2: Site configuration with hot reload
	logger.Startup().Info("Loading site configuration...", "path", config.SiteConfigPath)
	site, err := config.NewSiteHolder(config.SiteConfigPath, logger.System())
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}
	applySuppressPatterns(logger, site.Get())
	if err := site.StartWatcher(ctx); err != nil {
		logger.Startup().Warn("Site config watcher disabled", "error", err.Error())
	}
	siteUpdates := make(chan config.SiteConfig, 1)
	site.Subscribe(siteUpdates)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cfg := <-siteUpdates:
				applySuppressPatterns(logger, cfg)
			}
		}
	}()

	// Step 3: Remote store
	logger.Startup().Info("Connecting to remote store...", "driver", config.DatabaseDriver)
	db, err := database.Open(database.OptionsFromConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}
	defer db.Close()

	tables := schema.NewTableCreator()
	if config.AutoMigrate {
		if err := tables.CreateSchema(db.DB); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if err := tables.VerifySchema(db.DB); err != nil {
		logger.Startup().Error("Remote store schema incomplete", "error", err.Error())
	}

	// Step 4: Local cache mirror
	logger.Startup().Info("Opening local cache...", "dir", config.LocalCacheDir, "inMemory", config.LocalCacheInMemory)
	cache, err := localcache.Open(config.LocalCacheDir, config.LocalCacheInMemory)
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	defer cache.Close()

	// Step 5: Admin secret
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not set, generated an ephemeral secret; admin sessions end on restart")
	}
	if config.AdminPassword == "" {
		logger.Startup().Warn("ADMIN_PASSWORD not set, admin login is disabled")
	}

	// Step 6: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(container.Dependencies{
		Logger: logger,
		DB:     db,
		Cache:  cache,
		Site:   site,
	})
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	// Step 7: Background workers
	logger.Startup().Info("Starting background workers...")
	var workers workerGroup
	workers.Go(func() { appContainer.StatusHub.Run(ctx) })
	workers.Go(func() { appContainer.StreamMonitor.Start(ctx) })
	offlineMode := site.Get().Features.EnableOfflineMode
	workers.Go(func() { appContainer.SettingsResolver.Start(ctx, config.SettingsRefreshInterval, offlineMode) })

	// Step 8: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"storage", config.StorageBackend)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}
	if err := workers.Wait(shutdownCtx); err != nil {
		logger.Shutdown().Error("Background workers did not stop in time", "error", err.Error())
	}
	appContainer.LogBroadcaster.Shutdown()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// applySuppressPatterns merges the env patterns with the site file's.
func applySuppressPatterns(logger *logging.ChanneledLogger, site config.SiteConfig) {
	patterns := append([]string(nil), config.LogSuppressPatterns...)
	patterns = append(patterns, site.Logging.SuppressPatterns...)
	logger.Filter().SetPatterns(patterns)
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
