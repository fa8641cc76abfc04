package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const queueGroup = "unilink-workers"

// NATSBus publishes events to NATS subjects "<prefix>.<topic>"
type NATSBus struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNATSBus connects to url and keeps reconnecting in the background
func NewNATSBus(url, prefix string, logger zerolog.Logger) (*NATSBus, error) {
	logger = logger.With().Str("component", "eventbus").Str("transport", "nats").Logger()

	conn, err := nats.Connect(url,
		nats.Name("unilink"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Info().Str("url", conn.ConnectedUrl()).Msg("Connected to NATS")
	return &NATSBus{conn: conn, prefix: prefix, logger: logger}, nil
}

// Subject maps a topic to its NATS subject
func (b *NATSBus) Subject(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + "." + topic
}

// Publish sends the event envelope as JSON
func (b *NATSBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.conn.IsClosed() {
		return ErrClosed
	}

	ev, err := NewEvent(topic, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", topic, err)
	}

	if err := b.conn.Publish(b.Subject(topic), data); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins a queue group so that, with several API replicas, each event
// is handled once.
func (b *NATSBus) Subscribe(topic string, h Handler) error {
	sub, err := b.conn.QueueSubscribe(b.Subject(topic), queueGroup, b.dispatch(h))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	b.track(sub)
	return nil
}

// SubscribeBroadcast subscribes without a queue group, so every replica sees the event
func (b *NATSBus) SubscribeBroadcast(topic string, h Handler) error {
	sub, err := b.conn.Subscribe(b.Subject(topic), b.dispatch(h))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	b.track(sub)
	return nil
}

func (b *NATSBus) dispatch(h Handler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.logger.Error().Err(err).Str("subject", msg.Subject).Msg("Dropping malformed event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h(ctx, ev); err != nil {
			b.logger.Error().Err(err).Str("topic", ev.Topic).Msg("Event handler failed")
		}
	}
}

func (b *NATSBus) track(sub *nats.Subscription) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
}

// Close drains subscriptions and pending publishes before closing the connection
func (b *NATSBus) Close() error {
	if b.conn.IsClosed() {
		return nil
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
