package mockpayment

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/google/uuid"
)

// Signature is the only webhook signature the mock gateway accepts.
const Signature = "mock-signature"

// Event type names understood by ParseWebhook. They mirror the hosted gateway.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventCustomerCreated  = "customer.created"
)

// Webhook is the JSON body ParseWebhook accepts.
type Webhook struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	PaymentIntentID string            `json:"paymentIntentId,omitempty"`
	ChargeID        string            `json:"chargeId,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// MockPaymentProvider simulates the payment gateway for tests and local development.
//
// Intents are created synchronously in the pending state and only change when
// Complete or Fail is called, mirroring webhook-driven confirmation.
type MockPaymentProvider struct {
	mu        sync.Mutex
	customers map[string]*payment.CreateCustomerParams
	intents   map[string]*payment.PaymentIntent

	// Set any of these to make the matching call fail.
	CustomerErr      error
	PaymentIntentErr error
	SetupIntentErr   error
}

// NewMockPaymentProvider creates a new instance of MockPaymentProvider.
func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{
		customers: make(map[string]*payment.CreateCustomerParams),
		intents:   make(map[string]*payment.PaymentIntent),
	}
}

func (m *MockPaymentProvider) Name() string { return "mock" }

func (m *MockPaymentProvider) CreateCustomer(
	_ context.Context,
	params *payment.CreateCustomerParams,
) (string, error) {
	if m.CustomerErr != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPaymentGateway, m.CustomerErr)
	}
	id := "cus_" + uuid.NewString()
	m.mu.Lock()
	m.customers[id] = params
	m.mu.Unlock()
	return id, nil
}

func (m *MockPaymentProvider) CreatePaymentIntent(
	_ context.Context,
	params *payment.CreatePaymentIntentParams,
) (*payment.PaymentIntent, error) {
	if m.PaymentIntentErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentGateway, m.PaymentIntentErr)
	}
	id := "pi_" + uuid.NewString()
	pi := &payment.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       payment.PaymentPending,
		AmountCents:  params.AmountCents,
		Metadata:     maps.Clone(params.Metadata),
	}
	m.mu.Lock()
	m.intents[id] = pi
	m.mu.Unlock()
	cp := *pi
	return &cp, nil
}

func (m *MockPaymentProvider) CreateSetupIntent(_ context.Context, customerID string) (*payment.SetupIntent, error) {
	if m.SetupIntentErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentGateway, m.SetupIntentErr)
	}
	id := "seti_" + uuid.NewString()
	return &payment.SetupIntent{ID: id, ClientSecret: id + "_secret", CustomerID: customerID}, nil
}

func (m *MockPaymentProvider) GetPaymentIntent(_ context.Context, id string) (*payment.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent %s", domain.ErrPaymentGateway, id)
	}
	cp := *pi
	return &cp, nil
}

// ParseWebhook accepts a Webhook JSON body signed with Signature.
func (m *MockPaymentProvider) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if signature != Signature {
		return nil, domain.ErrInvalidSignature
	}
	var w Webhook
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	if (w.Type == EventPaymentSucceeded || w.Type == EventPaymentFailed) && w.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: payment intent ID is empty", domain.ErrMalformedWebhookEvent)
	}

	evt := &payment.WebhookEvent{
		ID:              w.ID,
		Type:            w.Type,
		PaymentIntentID: w.PaymentIntentID,
		ChargeID:        w.ChargeID,
		Metadata:        w.Metadata,
	}
	switch w.Type {
	case EventPaymentSucceeded:
		evt.Kind = payment.WebhookPaymentSucceeded
		m.setStatus(w.PaymentIntentID, payment.PaymentCompleted)
	case EventPaymentFailed:
		evt.Kind = payment.WebhookPaymentFailed
		m.setStatus(w.PaymentIntentID, payment.PaymentFailed)
	case EventCustomerCreated:
		evt.Kind = payment.WebhookAcknowledged
	default:
		evt.Kind = payment.WebhookIgnored
	}
	return evt, nil
}

// Complete builds a signed succeeded webhook for an intent.
func (m *MockPaymentProvider) Complete(eventID, paymentIntentID, chargeID string) (payload []byte, signature string) {
	return m.webhook(Webhook{ID: eventID, Type: EventPaymentSucceeded, PaymentIntentID: paymentIntentID, ChargeID: chargeID})
}

// Fail builds a signed payment_failed webhook for an intent.
func (m *MockPaymentProvider) Fail(eventID, paymentIntentID string) (payload []byte, signature string) {
	return m.webhook(Webhook{ID: eventID, Type: EventPaymentFailed, PaymentIntentID: paymentIntentID})
}

func (m *MockPaymentProvider) webhook(w Webhook) ([]byte, string) {
	m.mu.Lock()
	if pi, ok := m.intents[w.PaymentIntentID]; ok {
		w.Metadata = maps.Clone(pi.Metadata)
	}
	m.mu.Unlock()
	b, _ := json.Marshal(w)
	return b, Signature
}

// Customers returns the number of customers created.
func (m *MockPaymentProvider) Customers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers)
}

func (m *MockPaymentProvider) setStatus(id string, status payment.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pi, ok := m.intents[id]; ok {
		pi.Status = status
	}
}

var _ payment.Gateway = (*MockPaymentProvider)(nil)
