package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroker()
	a, unsubA := b.Subscribe()
	c, unsubC := b.Subscribe()
	defer unsubA()
	defer unsubC()
	assert.Equal(t, 2, b.Subscribers())

	require.NoError(t, b.PublishRebuilt(context.Background(), RebuiltEvent{ID: "e1"}))
	assert.Equal(t, "e1", (<-a).ID)
	assert.Equal(t, "e1", (<-c).ID)
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe()
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())
	require.NoError(t, b.PublishRebuilt(context.Background(), RebuiltEvent{ID: "e2"}))
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	for i := 0; i < subscriberBuffer+3; i++ {
		require.NoError(t, b.PublishRebuilt(context.Background(), RebuiltEvent{}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe()
	require.NoError(t, b.Close())
	unsub()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

type failingPublisher struct {
	calls int
	err   error
}

func (f *failingPublisher) PublishRebuilt(context.Context, RebuiltEvent) error {
	f.calls++
	return f.err
}

func (f *failingPublisher) Close() error { return f.err }

func TestMulti_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	first := &failingPublisher{err: boom}
	second := &failingPublisher{}

	p := Multi(first, nil, second)
	err := p.PublishRebuilt(context.Background(), RebuiltEvent{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.ErrorIs(t, p.Close(), boom)
}
