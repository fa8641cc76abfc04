package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const localQueueSize = 1024

type localSub struct {
	topic   string
	handler Handler
	queue   chan Event
}

// LocalBus delivers events in process. Each subscriber has its own queue and
// goroutine, so a slow handler does not block publishers or other handlers.
type LocalBus struct {
	mu     sync.RWMutex
	subs   []*localSub
	closed bool
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewLocalBus creates an in-process bus
func NewLocalBus(logger zerolog.Logger) *LocalBus {
	return &LocalBus{logger: logger.With().Str("component", "eventbus").Str("transport", "local").Logger()}
}

// Publish enqueues the event for every subscriber of topic
func (b *LocalBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	ev, err := NewEvent(topic, payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	for _, s := range b.subs {
		if s.topic != topic {
			continue
		}
		select {
		case s.queue <- ev:
		case <-ctx.Done():
			return ctx.Err()
		default:
			b.logger.Warn().Str("topic", topic).Msg("Subscriber queue full, event dropped")
		}
	}
	return nil
}

// Subscribe registers h for topic
func (b *LocalBus) Subscribe(topic string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	s := &localSub{topic: topic, handler: h, queue: make(chan Event, localQueueSize)}
	b.subs = append(b.subs, s)

	b.wg.Add(1)
	go b.run(s)
	return nil
}

// SubscribeBroadcast is Subscribe; a process is its only replica
func (b *LocalBus) SubscribeBroadcast(topic string, h Handler) error {
	return b.Subscribe(topic, h)
}

func (b *LocalBus) run(s *localSub) {
	defer b.wg.Done()
	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.handler(ctx, ev); err != nil {
			b.logger.Error().Err(err).Str("topic", ev.Topic).Msg("Event handler failed")
		}
		cancel()
	}
}

// Close stops accepting events, drains the queues and waits for handlers to finish
func (b *LocalBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.queue)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
