package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLocalBusDeliversToMatchingSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewLocalBus(zerolog.Nop())
	received := make(chan EventRegistered, 1)
	otherCalls := 0
	var mu sync.Mutex

	require.NoError(t, bus.Subscribe(TopicEventRegistered, func(ctx context.Context, e Event) error {
		var p EventRegistered
		assert.NoError(t, e.Decode(&p))
		received <- p
		return nil
	}))
	require.NoError(t, bus.Subscribe(TopicPostLiked, func(ctx context.Context, e Event) error {
		mu.Lock()
		otherCalls++
		mu.Unlock()
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), TopicEventRegistered, EventRegistered{EventID: 7, UserID: 3}))

	select {
	case p := <-received:
		assert.Equal(t, int64(7), p.EventID)
		assert.Equal(t, int64(3), p.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, bus.Close())
	mu.Lock()
	assert.Equal(t, 0, otherCalls)
	mu.Unlock()
}

func TestLocalBusCloseDrainsQueue(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewLocalBus(zerolog.Nop())
	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(TopicMessageCreated, func(ctx context.Context, e Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return errors.New("handler errors are logged, not fatal")
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(context.Background(), TopicMessageCreated, MessageCreated{MessageID: int64(i)}))
	}
	require.NoError(t, bus.Close())

	mu.Lock()
	assert.Equal(t, 10, count)
	mu.Unlock()

	assert.ErrorIs(t, bus.Publish(context.Background(), TopicMessageCreated, MessageCreated{}), ErrClosed)
	assert.ErrorIs(t, bus.Subscribe(TopicMessageCreated, nil), ErrClosed)
	assert.NoError(t, bus.Close())
}

func TestEventDecodeError(t *testing.T) {
	ev := Event{Topic: "x", Payload: []byte("not json")}
	var p EventCancelled
	assert.Error(t, ev.Decode(&p))
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEvent("x", make(chan int))
	assert.Error(t, err)
}

func TestNATSSubject(t *testing.T) {
	assert.Equal(t, "unilink.event.registered", (&NATSBus{prefix: "unilink"}).Subject(TopicEventRegistered))
	assert.Equal(t, "event.registered", (&NATSBus{}).Subject(TopicEventRegistered))
}

func TestLocalBusBroadcastSubscriberReceives(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewLocalBus(zerolog.Nop())
	got := make(chan int64, 2)
	for i := 0; i < 2; i++ {
		require.NoError(t, bus.SubscribeBroadcast(TopicNotificationCreated, func(ctx context.Context, e Event) error {
			var p NotificationsCreated
			if err := e.Decode(&p); err != nil {
				return err
			}
			got <- p.UserIDs[0]
			return nil
		}))
	}

	require.NoError(t, bus.Publish(context.Background(), TopicNotificationCreated, NotificationsCreated{UserIDs: []int64{9}, NotificationIDs: []int64{1}}))
	for i := 0; i < 2; i++ {
		select {
		case id := <-got:
			assert.Equal(t, int64(9), id)
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
	require.NoError(t, bus.Close())
}
