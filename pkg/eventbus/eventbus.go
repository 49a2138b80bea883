package eventbus

import (
	"context"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
)

// HandlerFunc processes one event delivered by the bus.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes events and routes them to the handlers registered for their type.
// Register every handler before the first Emit.
type Bus interface {
	Register(eventType events.EventType, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
