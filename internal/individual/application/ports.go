package application

import (
	"context"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

// EventPublisher delivers drained domain events to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// EventPublisherFunc adapts a function to EventPublisher.
type EventPublisherFunc func(ctx context.Context, events ...domain.Event) error

// Publish calls f.
func (f EventPublisherFunc) Publish(ctx context.Context, events ...domain.Event) error {
	return f(ctx, events...)
}
