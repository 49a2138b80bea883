// Package app wires the services of the donation backend around a set of
// infrastructure dependencies.
package app

import (
	"log/slog"
	"time"

	"github.com/amirasaad/studentrelief/pkg/cache"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/amirasaad/studentrelief/pkg/handler/common"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/provider/storage"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/amirasaad/studentrelief/pkg/scheduler"
	"github.com/amirasaad/studentrelief/pkg/service/auth"
	"github.com/amirasaad/studentrelief/pkg/service/campaign"
	"github.com/amirasaad/studentrelief/pkg/service/document"
	"github.com/amirasaad/studentrelief/pkg/service/donation"
	"github.com/amirasaad/studentrelief/pkg/service/notification"
	"github.com/amirasaad/studentrelief/pkg/service/profile"
	"github.com/amirasaad/studentrelief/pkg/service/verification"
	"github.com/amirasaad/studentrelief/pkg/service/webhook"
)

// Deps contains the infrastructure the services run on.
type Deps struct {
	Uow            repository.UnitOfWork
	PaymentGateway payment.Gateway
	DocumentStore  storage.DocumentStore
	CampaignCache  cache.CampaignCache
	EventBus       eventbus.Bus
	Logger         *slog.Logger
}

type App struct {
	Deps                *Deps
	Config              *config.App
	AuthService         *auth.Service
	ProfileService      *profile.Service
	DonationService     *donation.Service
	WebhookService      *webhook.Service
	VerificationService *verification.Service
	DocumentService     *document.Service
	NotificationService *notification.Service
	CampaignService     *campaign.Service
}

func New(deps *Deps, cfg *config.App) *App {
	logger := deps.Logger
	currency := "usd"
	if cfg.PaymentProviders != nil && cfg.PaymentProviders.Stripe != nil && cfg.PaymentProviders.Stripe.Currency != "" {
		currency = cfg.PaymentProviders.Stripe.Currency
	}
	ttl := cacheTTL(cfg)

	a := &App{Deps: deps, Config: cfg}
	a.AuthService = auth.New(cfg.Auth.Jwt, logger)
	a.ProfileService = profile.New(deps.Uow, a.AuthService, logger)
	a.DonationService = donation.New(deps.Uow, deps.PaymentGateway, currency, logger)
	a.WebhookService = webhook.New(deps.Uow, deps.PaymentGateway, common.NewIdempotencyTracker(), deps.EventBus, logger)
	a.VerificationService = verification.New(deps.Uow, logger)
	a.DocumentService = document.New(deps.Uow, deps.DocumentStore, deps.EventBus, logger)
	a.NotificationService = notification.New(deps.Uow, common.NewIdempotencyTracker(), logger)
	a.CampaignService = campaign.New(deps.Uow, deps.CampaignCache, ttl, logger)

	a.setupEventBus()
	return a
}

// NewScheduler builds the maintenance scheduler. It is not started.
func (a *App) NewScheduler() *scheduler.Scheduler {
	cfg := a.Config.Scheduler
	if cfg == nil {
		cfg = &config.Scheduler{}
	}
	jobs := scheduler.NewJobs(
		a.Deps.Uow,
		a.Deps.PaymentGateway,
		a.CampaignService,
		cfg.PendingAuditAge,
		cfg.PendingAuditBatchMax,
		a.Deps.Logger,
	)
	return scheduler.New(jobs, cfg, a.Deps.Logger)
}

func cacheTTL(cfg *config.App) (ttl time.Duration) {
	if cfg.Cache != nil {
		ttl = cfg.Cache.TTL
	}
	return ttl
}
