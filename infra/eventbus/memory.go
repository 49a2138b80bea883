package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
)

// MemoryEventBus dispatches synchronously to every handler in the caller's goroutine.
// Handler errors are logged, never returned to the emitter.
type MemoryEventBus struct {
	handlers  map[events.EventType][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a synchronous in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[events.EventType(event.Type())]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		runHandler(ctx, b.logger, handler, event)
	}
	return nil
}

// Published returns every emitted event in order. Useful in tests.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event{}, b.published...)
}

func (b *MemoryEventBus) Close() error { return nil }

var _ eventbus.Bus = (*MemoryEventBus)(nil)

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// MemoryAsyncEventBus queues events on a bounded channel drained by a fixed
// worker pool, so Emit returns before handlers run.
type MemoryAsyncEventBus struct {
	handlers map[events.EventType][]eventbus.HandlerFunc
	mu       sync.RWMutex
	eventCh  chan queuedEvent
	wg       sync.WaitGroup
	once     sync.Once
	log      *slog.Logger
}

// NewWithMemoryAsync starts workers goroutines reading from a queue of size buffer.
func NewWithMemoryAsync(logger *slog.Logger, workers, buffer int) *MemoryAsyncEventBus {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	b := &MemoryAsyncEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		eventCh:  make(chan queuedEvent, buffer),
		log:      logger.With("bus", "memory-async"),
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.process()
	}
	return b
}

func (b *MemoryAsyncEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Emit enqueues the event. The handler context is detached from ctx's
// cancellation so a finished HTTP request does not abort delivery.
func (b *MemoryAsyncEventBus) Emit(ctx context.Context, event events.Event) error {
	select {
	case b.eventCh <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for queued ones to be handled.
func (b *MemoryAsyncEventBus) Close() error {
	b.once.Do(func() { close(b.eventCh) })
	b.wg.Wait()
	return nil
}

func (b *MemoryAsyncEventBus) process() {
	defer b.wg.Done()
	for w := range b.eventCh {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc{}, b.handlers[events.EventType(w.event.Type())]...)
		b.mu.RUnlock()
		for _, handler := range handlers {
			runHandler(w.ctx, b.log, handler, w.event)
		}
	}
}

var _ eventbus.Bus = (*MemoryAsyncEventBus)(nil)

// runHandler invokes handler, converting a panic into a logged error.
func runHandler(ctx context.Context, logger *slog.Logger, handler eventbus.HandlerFunc, event events.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
			ok = false
		}
	}()
	if err := handler(ctx, event); err != nil {
		logger.Error("failed to process event", "type", event.Type(), "error", err)
		return false
	}
	return true
}
