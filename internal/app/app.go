// Package app wires the application together: configuration, logging,
// metrics, the dashboard service and the HTTP server, with graceful
// shutdown on SIGINT/SIGTERM.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"enrollapi/internal/config"
	"enrollapi/internal/infrastructure"
	"enrollapi/internal/services"
	transporthttp "enrollapi/internal/transport/http"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application holds the assembled components.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Service   *services.DashboardService
	Scheduler *services.Scheduler
	Server    *http.Server
}

// NewApplication loads configuration and builds every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	metrics := infrastructure.NewMetrics(prometheus.DefaultRegisterer)

	service, err := services.NewDashboardService(cfg, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("create dashboard service: %w", err)
	}

	router := transporthttp.NewRouter(cfg, logger, service, Version)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Service:   service,
		Scheduler: services.NewScheduler(logger, service, cfg.Cache.RefreshInterval),
		Server:    server,
	}, nil
}

// Run starts the scheduler and the HTTP server and blocks until a
// shutdown signal arrives or the server fails.
func (a *Application) Run() error {
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Stop()
}

// Stop shuts the server down gracefully within the configured timeout.
func (a *Application) Stop() error {
	a.Scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Logger.Info("server stopped")
	return infrastructure.CloseLogFile()
}
