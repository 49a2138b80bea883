// Package mocks holds testify mocks for the collaborator interfaces.
package mocks

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/provider/payment"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func NewMockGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreateCustomer(ctx context.Context, params *payment.CreateCustomerParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreatePaymentIntent(
	ctx context.Context,
	params *payment.CreatePaymentIntentParams,
) (*payment.PaymentIntent, error) {
	args := m.Called(ctx, params)
	pi, _ := args.Get(0).(*payment.PaymentIntent)
	return pi, args.Error(1)
}

func (m *MockGateway) CreateSetupIntent(ctx context.Context, customerID string) (*payment.SetupIntent, error) {
	args := m.Called(ctx, customerID)
	si, _ := args.Get(0).(*payment.SetupIntent)
	return si, args.Error(1)
}

func (m *MockGateway) GetPaymentIntent(ctx context.Context, id string) (*payment.PaymentIntent, error) {
	args := m.Called(ctx, id)
	pi, _ := args.Get(0).(*payment.PaymentIntent)
	return pi, args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	evt, _ := args.Get(0).(*payment.WebhookEvent)
	return evt, args.Error(1)
}

var _ payment.Gateway = (*MockGateway)(nil)
