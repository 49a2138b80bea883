package mocks

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/stretchr/testify/mock"
)

type MockBus struct {
	mock.Mock
}

func NewMockBus(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBus {
	m := &MockBus{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	m.Called(eventType, handler)
}

func (m *MockBus) Emit(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var _ eventbus.Bus = (*MockBus)(nil)
