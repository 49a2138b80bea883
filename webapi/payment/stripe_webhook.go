package payment

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/studentrelief/pkg/domain"
	webhooksvc "github.com/amirasaad/studentrelief/pkg/service/webhook"
	"github.com/amirasaad/studentrelief/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

// StripeWebhookHandler handles incoming Stripe webhook events.
// @Summary Payment gateway webhook
// @Description Verifies the signature and applies the event. Internal failures answer 500 so the gateway redelivers.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /stripe/webhooks [post]
func StripeWebhookHandler(svc *webhooksvc.Service, logger *slog.Logger) fiber.Handler {
	log := logger.With("handler", "StripeWebhook")
	return func(c *fiber.Ctx) error {
		signature := c.Get(SignatureHeader)
		if signature == "" {
			return common.ProblemDetailsJSON(c, "Invalid signature", nil, "Missing "+SignatureHeader+" header")
		}
		// the body buffer is reused by fasthttp after the handler returns
		payload := append([]byte(nil), c.Body()...)

		if _, err := svc.Process(c.UserContext(), payload, signature); err != nil {
			if errors.Is(err, domain.ErrInvalidSignature) {
				log.Warn("⛔ Webhook signature rejected", "error", err)
				return common.ProblemDetailsJSON(c, "Invalid signature", nil, fiber.StatusBadRequest)
			}
			return common.ProblemDetailsJSON(c, "Webhook handler failed", err, fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"received": true})
	}
}

// Routes sets up the Stripe webhook route.
func Routes(app *fiber.App, svc *webhooksvc.Service, logger *slog.Logger) {
	app.Post("/stripe/webhooks", StripeWebhookHandler(svc, logger))
}
