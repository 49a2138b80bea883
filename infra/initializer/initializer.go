// Package initializer builds the infrastructure the app runs on from configuration.
package initializer

import (
	"errors"
	"fmt"

	"github.com/amirasaad/studentrelief/infra"
	infrarepo "github.com/amirasaad/studentrelief/infra/repository"
	"github.com/amirasaad/studentrelief/pkg/app"
	"github.com/amirasaad/studentrelief/pkg/config"
)

// InitializeDependencies opens every backing service selected by cfg.
// The returned cleanup releases them in reverse order and is safe to call once.
func InitializeDependencies(cfg *config.App) (_ *app.Deps, _ func() error, err error) {
	logger := SetupLogger(cfg.Log)
	deps := &app.Deps{Logger: logger}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			if cerr := cleanup(); cerr != nil {
				logger.Warn("cleanup after failed initialization", "error", cerr)
			}
		}
	}()

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("database handle: %w", err)
	}
	closers = append(closers, sqlDB.Close)

	// Initialize unit of work
	deps.Uow = infrarepo.NewUoW(db)

	// Initialize event bus
	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	closers = append(closers, bus.Close)
	deps.EventBus = bus

	deps.PaymentGateway, err = initPaymentGateway(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	deps.DocumentStore, err = initDocumentStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	campaignCache, closeCache, err := initCampaignCache(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if closeCache != nil {
		closers = append(closers, closeCache)
	}
	deps.CampaignCache = campaignCache

	logger.Info("✅ Dependencies initialized",
		"gateway", deps.PaymentGateway.Name(),
		"env", cfg.Env,
	)
	return deps, cleanup, nil
}
