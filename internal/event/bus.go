package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/monikerhq/moniker/internal/domain"
)

// Publisher is the subset of Bus that usecases depend on.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event)
}

// Handler reacts to a single event. Errors are logged by the bus and
// never reach the publisher.
type Handler func(ctx context.Context, e domain.Event) error

// Bus is a synchronous in-process event dispatcher. Handlers run on
// the publisher's goroutine, in subscription order, so a test that
// publishes can observe every side effect deterministically.
type Bus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger:   logger.With("component", "event_bus"),
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers h for events with the given name. Subscriptions
// normally happen once at startup, but the lock makes it safe to call
// concurrently with Publish.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers e to every subscriber of its name.
func (b *Bus) Publish(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	hs := b.handlers[e.EventName()]
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed", "event", e.EventName(), "error", err)
		}
	}
}
