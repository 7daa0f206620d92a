package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/app"
	"github.com/Olprog59/go-crudstarter/internal/config"
	"github.com/Olprog59/go-crudstarter/internal/logging"
	"github.com/Olprog59/go-crudstarter/internal/transport/web"
	"github.com/prometheus/client_golang/prometheus"
)

// init configures standard logger flags / Configure les flags du logger standard
func init() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.LstdFlags)
}

// main is the application entry point / Point d'entrée de l'application
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run initializes and starts the HTTP server / Initialise et démarre le serveur HTTP
func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Configure the logger according to the environment
	flushLogs := logging.Setup(cfg.Logging, cfg.IsProduction())
	defer func() {
		if err := flushLogs(); err != nil {
			log.Printf("failed to flush logs: %v", err)
		}
	}()

	logStartupInfo(cfg)

	// Initialize container with all dependencies
	container, err := app.NewContainer(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer container.Close()

	// HTTP layer: one route table for every catalog resource
	handler := web.NewHandler(container)
	mux, mw := web.NewMux(handler, container, prometheus.DefaultGatherer)
	defer mw.Close()

	for _, route := range handler.Routes() {
		slog.Debug("route registered", "route", route.String(), "resource", route.Resource)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "routes", len(handler.Routes()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("shutting down server gracefully", "timeout", shutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(conf *config.Config) {
	slog.Info("🚀 Starting application",
		"environment", conf.Environment,
		"port", conf.Server.Port,
		"database", conf.Database.Type,
		"migrations", conf.Database.MigrationsPath,
		"request_timeout", conf.Server.RequestTimeout,
	)

	if conf.Metrics.Enabled {
		slog.Info("📈 Metrics exposed", "path", conf.Metrics.Path)
	}

	if conf.RateLimiter.Enabled {
		slog.Info("🛡️  Rate limiter enabled",
			"rps", conf.RateLimiter.RPS,
			"burst", conf.RateLimiter.Burst,
		)
	} else {
		slog.Warn("⚠️  Rate limiter is DISABLED")
	}

	if conf.Backup.Enabled {
		slog.Info("💾 Backups enabled",
			"interval", conf.Backup.Interval,
			"path", conf.Backup.Path,
			"retention_days", conf.Backup.RetentionDays,
		)
	}
}
