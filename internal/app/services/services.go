// Package services holds UniLink's business rules. Services receive the
// authenticated caller as an authz.Actor, enforce tenant scoping and ownership,
// talk to the repositories and publish domain events on the bus.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Publisher is the part of the event bus the services need
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// publish sends an event after the write it describes has been committed.
// A failed publish is logged; the request itself already succeeded.
func publish(ctx context.Context, bus Publisher, logger zerolog.Logger, topic string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, topic, payload); err != nil {
		logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish domain event")
	}
}

// clock returns now in UTC; services keep it as a field so tests can pin time
func clock() time.Time {
	return time.Now().UTC()
}
