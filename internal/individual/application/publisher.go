package application

import (
	"context"
	"errors"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/pubsub"
)

// FanoutPublisher hands every batch to each publisher in order. All
// publishers run even if an earlier one fails; failures are joined.
type FanoutPublisher []EventPublisher

// Publish implements EventPublisher.
func (f FanoutPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BrokerPublisher forwards events to an in-process broker.
type BrokerPublisher struct {
	Broker *pubsub.Broker[domain.Event]
}

// Publish implements EventPublisher.
func (p BrokerPublisher) Publish(_ context.Context, events ...domain.Event) error {
	for _, e := range events {
		p.Broker.Publish(e)
	}
	return nil
}

var (
	_ EventPublisher = FanoutPublisher(nil)
	_ EventPublisher = BrokerPublisher{}
)
