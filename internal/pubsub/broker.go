// Package pubsub provides a generic in-process publish/subscribe broker.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zjrosen/vitality/internal/log"
)

const defaultBufferSize = 64

// Broker fans published values out to every live subscriber. Publish never
// blocks: a subscriber whose buffer is full misses the value.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan T]struct{}
	bufferSize int
	closed     bool
	done       chan struct{}
	dropped    atomic.Int64
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriber channels hold up to
// size undelivered values.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Broker[T]{
		subs:       make(map[chan T]struct{}),
		bufferSize: size,
		done:       make(chan struct{}),
	}
}

// Subscribe returns a channel receiving every value published after the call.
// The channel is closed when ctx is done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()

	return ch
}

func (b *Broker[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers v to all subscribers.
func (b *Broker[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped.Add(1)
			log.Warn(log.CatApp, "Dropped event for slow subscriber", "buffer", b.bufferSize)
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (b *Broker[T]) Dropped() int64 {
	return b.dropped.Load()
}

// Shutdown closes every subscriber channel. Later publishes are ignored.
// It is safe to call Shutdown more than once.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
