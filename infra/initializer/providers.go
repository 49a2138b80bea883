package initializer

import (
	"errors"
	"io"
	"log/slog"

	infracache "github.com/amirasaad/studentrelief/infra/cache"
	"github.com/amirasaad/studentrelief/infra/provider/cloudinarystorage"
	"github.com/amirasaad/studentrelief/infra/provider/mockpayment"
	"github.com/amirasaad/studentrelief/infra/provider/mockstorage"
	"github.com/amirasaad/studentrelief/infra/provider/stripepayment"
	"github.com/amirasaad/studentrelief/pkg/cache"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/amirasaad/studentrelief/pkg/provider/storage"
)

const envProduction = "production"

// initPaymentGateway selects Stripe when an API key is configured. Outside
// production a missing key falls back to the in-memory gateway.
func initPaymentGateway(cfg *config.App, logger *slog.Logger) (payment.Gateway, error) {
	var stripeCfg *config.Stripe
	if cfg.PaymentProviders != nil {
		stripeCfg = cfg.PaymentProviders.Stripe
	}
	if stripeCfg != nil && stripeCfg.ApiKey != "" {
		if stripeCfg.SigningSecret == "" {
			logger.Warn("⚠️ PAYMENT_PROVIDER_STRIPE_SIGNING_SECRET is empty; every webhook will be rejected")
		}
		return stripepayment.New(stripeCfg, logger), nil
	}
	if cfg.Env == envProduction {
		return nil, errors.New("PAYMENT_PROVIDER_STRIPE_API_KEY is required in production")
	}
	logger.Warn("⚠️ Stripe is not configured, using the mock payment gateway")
	return mockpayment.NewMockPaymentProvider(), nil
}

// initDocumentStore selects Cloudinary when a cloud name is configured.
func initDocumentStore(cfg *config.App, logger *slog.Logger) (storage.DocumentStore, error) {
	if cfg.Cloudinary != nil && cfg.Cloudinary.CloudName != "" {
		return cloudinarystorage.New(cfg.Cloudinary, logger)
	}
	if cfg.Env == envProduction {
		logger.Warn("⚠️ Cloudinary is not configured; direct file uploads keep files in memory")
	}
	return mockstorage.NewMockDocumentStore(), nil
}

// initCampaignCache builds the configured cache and returns its closer, if any.
func initCampaignCache(cfg *config.App, logger *slog.Logger) (cache.CampaignCache, func() error, error) {
	c, err := infracache.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if closer, ok := c.(io.Closer); ok {
		return c, closer.Close, nil
	}
	return c, nil, nil
}
