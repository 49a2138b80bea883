package payment

import (
	"context"
)

// Gateway is the payment processor used for donations.
type Gateway interface {
	// Name identifies the provider in the webhook ledger.
	Name() string

	CreateCustomer(ctx context.Context, params *CreateCustomerParams) (string, error)

	CreatePaymentIntent(
		ctx context.Context,
		params *CreatePaymentIntentParams,
	) (*PaymentIntent, error)

	CreateSetupIntent(ctx context.Context, customerID string) (*SetupIntent, error)

	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)

	// ParseWebhook verifies the signature and normalizes the event.
	// A bad signature returns an error wrapping domain.ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
