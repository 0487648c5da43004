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

	_ "github.com/btb36/escpos-emulator/docs"
	"github.com/btb36/escpos-emulator/internal/auditstore"
	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/database"
	"github.com/btb36/escpos-emulator/internal/httpapi"
	"github.com/btb36/escpos-emulator/internal/session"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// Application represents the main application.
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB
	migrator *database.Migrator

	store   *auditstore.Repository
	manager *session.Manager
}

// @title ESC/POS Emulator API
// @version 1.0.0
// @description Streaming ESC/POS decoder and BLE thermal-printer emulator, driven over WebSocket
// @termsOfService http://swagger.io/terms/

// @contact.name ESC/POS Emulator API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8084
// @BasePath /
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "escpos-emulator")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initializeAuditStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}

	if err := app.initializeSessionManager(); err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeDatabase opens the database connection and runs migrations.
func (app *Application) initializeDatabase() error {
	db, err := database.New(&app.config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	app.migrator = database.NewMigrator(db, app.logger, &app.config.Database)

	if err := app.migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.logger.Info("database initialized successfully")
	return nil
}

// initializeAuditStore wires the audit record repository.
func (app *Application) initializeAuditStore() error {
	app.store = auditstore.New(app.database, app.logger)
	app.logger.Info("audit store initialized successfully")
	return nil
}

// initializeSessionManager wires the session manager that owns one
// escpos.Decoder per connected client.
func (app *Application) initializeSessionManager() error {
	app.manager = session.NewManager(app.store, app.logger, &app.config.Decoder)
	app.logger.Info("session manager initialized successfully")
	return nil
}

// initializeServer sets up the HTTP server and routes.
func (app *Application) initializeServer() error {
	routerManager := httpapi.NewRouter(app.config, app.logger, app.database, app.manager, app.store)
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
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)

	return nil
}

// startBackgroundServices starts background maintenance tasks.
func (app *Application) startBackgroundServices() {
	go app.startCleanupService()
	app.logger.Info("background services started")
}

// startCleanupService periodically prunes sessions and audit records older
// than the retention window, via the cleanup_old_records() function the
// migrations install.
func (app *Application) startCleanupService() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	app.logger.Info("cleanup service started")

	for range ticker.C {
		if err := app.migrator.RunCleanup(); err != nil {
			app.logger.Error("failed to run cleanup", zap.Error(err))
		}
	}
}

// waitForShutdown blocks until an OS signal requests shutdown.
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs a graceful shutdown of the HTTP server and database.
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "escpos-emulator")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("database close error", zap.Error(err))
		} else {
			app.logger.Info("database connection closed")
		}
	}

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("logger close error: %v\n", err)
	}

	app.logger.Info("application shutdown completed")
}

// Start runs the HTTP server and blocks until shutdown.
func (app *Application) Start() error {
	go func() {
		app.logger.Info("starting HTTP server", zap.String("address", app.server.Addr))

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(app.config.Server.TLS.CertFile, app.config.Server.TLS.KeyFile)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()
	app.waitForShutdown()

	return nil
}
