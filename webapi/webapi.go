// Package webapi provides the HTTP surface of the donation backend.
// It is organized into sub-packages per area:
// - donation: donation intake and payment-method setup
// - payment: payment gateway webhooks
// - admin: student verification
// - document: student document uploads
// - user: roles and profiles
// - campaign: public campaign listing
// - notification: the caller's notifications
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/studentrelief/pkg/app"
	adminweb "github.com/amirasaad/studentrelief/webapi/admin"
	campaignweb "github.com/amirasaad/studentrelief/webapi/campaign"
	"github.com/amirasaad/studentrelief/webapi/common"
	documentweb "github.com/amirasaad/studentrelief/webapi/document"
	donationweb "github.com/amirasaad/studentrelief/webapi/donation"
	notificationweb "github.com/amirasaad/studentrelief/webapi/notification"
	"github.com/amirasaad/studentrelief/webapi/payment"
	userweb "github.com/amirasaad/studentrelief/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config
	log := a.Deps.Logger

	fiberApp := fiber.New(fiber.Config{
		BodyLimit: documentweb.MaxFileSize + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, nil, fe.Code)
			}
			log.Error("unhandled request error", "path", c.Path(), "error", err)
			return common.ProblemDetailsJSON(c, "Internal Server Error", err, fiber.StatusInternalServerError)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	if cfg.RateLimit != nil && cfg.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.MaxRequests,
			Expiration: cfg.RateLimit.Window,
			Next: func(c *fiber.Ctx) bool {
				// gateway retries must never be throttled
				return c.Path() == "/stripe/webhooks"
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					// Take the first IP in the chain
					if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
						return strings.TrimSpace(forwardedFor[:commaIndex])
					}
					return strings.TrimSpace(forwardedFor)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("Student Relief API is running! 🎓")
		},
	)

	payment.Routes(fiberApp, a.WebhookService, log)
	donationweb.Routes(fiberApp, a.DonationService, a.AuthService, cfg)
	adminweb.Routes(fiberApp, a.VerificationService, a.AuthService, cfg)
	documentweb.Routes(fiberApp, a.DocumentService, a.AuthService, cfg)
	userweb.Routes(fiberApp, a.ProfileService, a.AuthService, cfg)
	campaignweb.Routes(fiberApp, a.CampaignService)
	notificationweb.Routes(fiberApp, a.NotificationService, a.AuthService, cfg)
	return fiberApp
}
