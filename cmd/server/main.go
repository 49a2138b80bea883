package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/amirasaad/studentrelief/docs"
	"github.com/amirasaad/studentrelief/infra/initializer"
	"github.com/amirasaad/studentrelief/pkg/app"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/webapi"
	log "github.com/charmbracelet/log"
)

const shutdownTimeout = 15 * time.Second

// @title Student Relief API
// @version 1.0.0
// @description Donations toward verified students' loan debt.
// @contact.name API Support
// @license.name MIT
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	a := app.New(deps, cfg)
	fiberApp := webapi.SetupApp(a)

	sched := a.NewScheduler()
	if cfg.Scheduler != nil && cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			_ = cleanup()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 Starting server",
			"env", cfg.Env,
			"address", addr,
			"scheme", cfg.Server.Scheme,
		)
		listenErr <- fiberApp.Listen(addr)
	}()

	select {
	case err = <-listenErr:
		logger.Error("server stopped", "error", err)
	case <-ctx.Done():
		logger.Info("🛑 Shutdown signal received")
	}

	return shutdown(logger, fiberApp.ShutdownWithTimeout, sched.Stop, cleanup, err)
}

// shutdown stops intake first, then waits for running jobs, then releases the
// bus, cache and database.
func shutdown(
	logger *slog.Logger,
	stopServer func(time.Duration) error,
	stopScheduler func() context.Context,
	cleanup func() error,
	cause error,
) error {
	errs := []error{cause}
	if err := stopServer(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	select {
	case <-stopScheduler().Done():
	case <-time.After(shutdownTimeout):
		logger.Warn("scheduler jobs still running at shutdown")
	}

	if err := cleanup(); err != nil {
		errs = append(errs, fmt.Errorf("release dependencies: %w", err))
	}
	logger.Info("👋 Server stopped")
	return errors.Join(errs...)
}
