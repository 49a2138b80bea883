package stripepayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const providerName = "stripe"

// StripePaymentProvider implements payment.Gateway using the Stripe API.
type StripePaymentProvider struct {
	client          *stripe.Client
	cfg             *config.Stripe
	logger          *slog.Logger
	webhookHandlers map[stripe.EventType]webhookHandler
}

type webhookHandler func(stripe.Event, *slog.Logger) (*payment.WebhookEvent, error)

// New creates a new StripePaymentProvider.
func New(cfg *config.Stripe, logger *slog.Logger) *StripePaymentProvider {
	provider := &StripePaymentProvider{
		client: stripe.NewClient(cfg.ApiKey),
		cfg:    cfg,
		logger: logger.With("provider", providerName),
	}
	provider.initializeWebhookHandlers()
	return provider
}

// initializeWebhookHandlers sets up the handlers for the Stripe events we act on.
// Everything else is ignored.
func (s *StripePaymentProvider) initializeWebhookHandlers() {
	s.webhookHandlers = map[stripe.EventType]webhookHandler{
		stripe.EventTypePaymentIntentSucceeded:     s.handlePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed: s.handlePaymentIntentFailed,
		stripe.EventTypeCustomerCreated:            s.handleCustomerCreated,
	}
}

func (s *StripePaymentProvider) Name() string { return providerName }

// CreateCustomer creates a Stripe customer and returns its id.
func (s *StripePaymentProvider) CreateCustomer(
	ctx context.Context,
	params *payment.CreateCustomerParams,
) (string, error) {
	const op = "stripe.CreateCustomer"
	cp := &stripe.CustomerCreateParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
	}
	for k, v := range params.Metadata {
		cp.AddMetadata(k, v)
	}

	c, err := s.client.V1Customers.Create(ctx, cp)
	if err != nil {
		s.logger.Error("failed to create customer", "op", op, "error", err)
		return "", fmt.Errorf("%s: %w: %w", op, domain.ErrPaymentGateway, err)
	}
	s.logger.Info("👤 Stripe customer created", "customer_id", c.ID)
	return c.ID, nil
}

// CreatePaymentIntent creates a PaymentIntent with automatic payment methods.
func (s *StripePaymentProvider) CreatePaymentIntent(
	ctx context.Context,
	params *payment.CreatePaymentIntentParams,
) (*payment.PaymentIntent, error) {
	const op = "stripe.CreatePaymentIntent"
	log := s.logger.With(
		"handler", op,
		"amount", params.AmountCents,
		"currency", params.Currency,
	)

	currency := params.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	pp := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.CustomerID != "" {
		pp.Customer = stripe.String(params.CustomerID)
	}
	for k, v := range params.Metadata {
		pp.AddMetadata(k, v)
	}

	pi, err := s.client.V1PaymentIntents.Create(ctx, pp)
	if err != nil {
		log.Error("failed to create payment intent", "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPaymentGateway, err)
	}
	log.Info("💳 Payment intent created", "payment_intent_id", pi.ID)
	return toPaymentIntent(pi), nil
}

// CreateSetupIntent creates a card SetupIntent for saving a payment method.
func (s *StripePaymentProvider) CreateSetupIntent(ctx context.Context, customerID string) (*payment.SetupIntent, error) {
	const op = "stripe.CreateSetupIntent"
	si, err := s.client.V1SetupIntents.Create(ctx, &stripe.SetupIntentCreateParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	})
	if err != nil {
		s.logger.Error("failed to create setup intent", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPaymentGateway, err)
	}
	return &payment.SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		CustomerID:   customerID,
	}, nil
}

// GetPaymentIntent retrieves the current state of a PaymentIntent.
func (s *StripePaymentProvider) GetPaymentIntent(ctx context.Context, id string) (*payment.PaymentIntent, error) {
	const op = "stripe.GetPaymentIntent"
	pi, err := s.client.V1PaymentIntents.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPaymentGateway, err)
	}
	return toPaymentIntent(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and normalizes the event.
func (s *StripePaymentProvider) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	const op = "stripe.ParseWebhook"
	log := s.logger.With("method", "ParseWebhook")

	if s.cfg.SigningSecret == "" {
		return nil, fmt.Errorf("%s: webhook signing secret not configured", op)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.SigningSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: s.cfg.IgnoreAPIVersionMismatch})
	if err != nil {
		log.Warn("webhook signature verification failed", "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidSignature, err)
	}

	log = log.With("event_id", event.ID, "type", event.Type)
	log.Info("📨 Received webhook event")

	handler, ok := s.webhookHandlers[event.Type]
	if !ok {
		log.Debug("no handler for event type")
		return &payment.WebhookEvent{
			ID:   event.ID,
			Type: string(event.Type),
			Kind: payment.WebhookIgnored,
		}, nil
	}
	return handler(event, log)
}

func (s *StripePaymentProvider) handlePaymentIntentSucceeded(event stripe.Event, log *slog.Logger) (*payment.WebhookEvent, error) {
	const op = "stripe.handlePaymentIntentSucceeded"
	pi, err := decodePaymentIntent(event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrMalformedWebhookEvent, err)
	}

	out := &payment.WebhookEvent{
		ID:              event.ID,
		Type:            string(event.Type),
		Kind:            payment.WebhookPaymentSucceeded,
		PaymentIntentID: pi.ID,
		Metadata:        maps.Clone(pi.Metadata),
	}
	if pi.LatestCharge != nil {
		out.ChargeID = pi.LatestCharge.ID
	}
	log.Info("💰 Payment intent succeeded", "payment_intent_id", pi.ID, "charge_id", out.ChargeID)
	return out, nil
}

func (s *StripePaymentProvider) handlePaymentIntentFailed(event stripe.Event, log *slog.Logger) (*payment.WebhookEvent, error) {
	const op = "stripe.handlePaymentIntentFailed"
	pi, err := decodePaymentIntent(event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrMalformedWebhookEvent, err)
	}
	log.Info("❌ Payment intent failed", "payment_intent_id", pi.ID)
	return &payment.WebhookEvent{
		ID:              event.ID,
		Type:            string(event.Type),
		Kind:            payment.WebhookPaymentFailed,
		PaymentIntentID: pi.ID,
		Metadata:        maps.Clone(pi.Metadata),
	}, nil
}

func (s *StripePaymentProvider) handleCustomerCreated(event stripe.Event, log *slog.Logger) (*payment.WebhookEvent, error) {
	log.Info("👤 Customer created")
	return &payment.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: payment.WebhookAcknowledged,
	}, nil
}

func decodePaymentIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil || event.Data.Raw == nil {
		return nil, errors.New("event data is nil")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	if pi.ID == "" {
		return nil, errors.New("payment intent ID is empty")
	}
	return &pi, nil
}

func toPaymentIntent(pi *stripe.PaymentIntent) *payment.PaymentIntent {
	status := payment.PaymentPending
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = payment.PaymentCompleted
	case stripe.PaymentIntentStatusCanceled:
		status = payment.PaymentCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			status = payment.PaymentFailed
		}
	}
	return &payment.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       status,
		AmountCents:  pi.Amount,
		Metadata:     maps.Clone(pi.Metadata),
	}
}

var _ payment.Gateway = (*StripePaymentProvider)(nil)
