package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// subscriberBuffer bounds the events queued per subscriber. Slow
// subscribers miss events rather than stall the build.
const subscriberBuffer = 8

// Broker fans rebuild events out to in-process subscribers, such as the
// server-sent event stream of serve mode.
type Broker struct {
	mu     sync.RWMutex
	subs   map[chan RebuiltEvent]struct{}
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan RebuiltEvent]struct{})}
}

// Subscribe returns a channel receiving every event published from now on
// and a function that ends the subscription and closes the channel.
func (b *Broker) Subscribe() (<-chan RebuiltEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan RebuiltEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// PublishRebuilt delivers ev to every subscriber without blocking.
func (b *Broker) PublishRebuilt(_ context.Context, ev RebuiltEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Event subscriber full, dropping event", slog.String("event_id", ev.ID))
		}
	}
	return nil
}

// Close ends all subscriptions.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
	return nil
}

// multi publishes to several publishers.
type multi []Publisher

// Multi returns a Publisher delivering to every publisher in ps. Delivery
// continues past failures; the joined error reports them all.
func Multi(ps ...Publisher) Publisher {
	var out multi
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multi) PublishRebuilt(ctx context.Context, ev RebuiltEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishRebuilt(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			slog.Warn("Failed to close publisher", logfields.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
