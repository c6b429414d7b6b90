// Package event dispatches domain events to handlers inside the caller's
// transaction, so a failing handler rolls back the write that raised it.
package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/domain"
)

type Handler func(ctx context.Context, tx *gorm.DB, ev domain.Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *zap.Logger
}

func NewBus(l *zap.Logger) *Bus {
	if l == nil {
		l = zap.NewNop()
	}
	return &Bus{handlers: map[string][]Handler{}, log: l}
}

// Subscribe registers h for events named like sample.
func (b *Bus) Subscribe(sample domain.Event, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := sample.EventName()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish runs handlers in subscription order and stops at the first error.
func (b *Bus) Publish(ctx context.Context, tx *gorm.DB, ev domain.Event) error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[ev.EventName()]...)
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, tx, ev); err != nil {
			b.log.Warn("event handler failed", zap.String("event", ev.EventName()), zap.Error(err))
			return fmt.Errorf("%s: %w", ev.EventName(), err)
		}
	}
	b.log.Debug("event published", zap.String("event", ev.EventName()), zap.Int("handlers", len(hs)))
	return nil
}
