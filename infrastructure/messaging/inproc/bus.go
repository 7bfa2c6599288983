package inproc

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"listingsvc/application/ports"
	"listingsvc/domain/events"
)

// Bus is a synchronous in-process event bus. Publish fans out to every
// subscriber in the caller's goroutine, after the caller's own write has
// committed. A subscriber must contain its own failures; a panic in one is
// recovered and logged so it can never fail the mutation that published
// the event.
type Bus struct {
	mu       sync.RWMutex
	handlers []ports.EventHandler
	logger   *zap.Logger
}

// NewBus creates an empty event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers a handler for all published events
func (b *Bus) Subscribe(handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every subscriber
func (b *Bus) Publish(ctx context.Context, event events.DomainEvent) {
	b.mu.RLock()
	handlers := make([]ports.EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, handler, event)
	}
}

func (b *Bus) dispatch(ctx context.Context, handler ports.EventHandler, event events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Any("panic", r),
			)
		}
	}()

	handler.Handle(ctx, event)
}
