// Package eventbus carries domain events between services and the
// notification dispatcher, either in process or over NATS.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Topics published by the services
const (
	TopicEventRegistered     = "event.registered"
	TopicEventCancelled      = "event.cancelled"
	TopicMessageCreated      = "message.created"
	TopicPostLiked           = "post.liked"
	TopicPostCommented       = "post.commented"
	TopicNewsletterSent      = "newsletter.sent"
	TopicExamResultVerified  = "exam_result.verified"
	TopicNotificationCreated = "notification.created"
)

// ErrClosed is returned when publishing on a closed bus
var ErrClosed = errors.New("event bus closed")

// Event is the envelope every message travels in
type Event struct {
	Topic      string          `json:"topic"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Decode unmarshals the payload into v
func (e Event) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Topic, err)
	}
	return nil
}

// Handler consumes one event
type Handler func(ctx context.Context, e Event) error

// Bus publishes events and fans them out to subscribers
type Bus interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	// Subscribe delivers each event to one replica of the service
	Subscribe(topic string, h Handler) error
	// SubscribeBroadcast delivers each event to every replica, for work
	// bound to local state such as websocket connections
	SubscribeBroadcast(topic string, h Handler) error
	Close() error
}

// NewEvent builds an envelope around payload
func NewEvent(topic string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return Event{Topic: topic, Payload: raw, OccurredAt: time.Now().UTC()}, nil
}

// Payloads

// EventRegistered is published after a successful event registration
type EventRegistered struct {
	EventID     int64  `json:"eventId"`
	EventTitle  string `json:"eventTitle"`
	OrganizerID int64  `json:"organizerId"`
	UserID      int64  `json:"userId"`
	UserName    string `json:"userName"`
}

// EventCancelled is published when an organizer cancels an event
type EventCancelled struct {
	EventID       int64   `json:"eventId"`
	EventTitle    string  `json:"eventTitle"`
	RegistrantIDs []int64 `json:"registrantIds"`
}

// MessageCreated is published for every new chat message
type MessageCreated struct {
	MessageID      int64     `json:"messageId"`
	ConversationID int64     `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	SenderName     string    `json:"senderName"`
	RecipientIDs   []int64   `json:"recipientIds"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PostInteraction is published when someone likes or comments on a post
type PostInteraction struct {
	PostID    int64  `json:"postId"`
	AuthorID  int64  `json:"authorId"`
	ActorID   int64  `json:"actorId"`
	ActorName string `json:"actorName"`
	CommentID int64  `json:"commentId,omitempty"`
}

// NewsletterSent is published once a newsletter went out
type NewsletterSent struct {
	NewsletterID int64   `json:"newsletterId"`
	Subject      string  `json:"subject"`
	RecipientIDs []int64 `json:"recipientIds"`
}

// ExamResultVerified is published when an admin verifies a credential
type ExamResultVerified struct {
	ExamResultID int64  `json:"examResultId"`
	UserID       int64  `json:"userId"`
	ExamName     string `json:"examName"`
	CredentialID string `json:"credentialId"`
}

// NotificationsCreated is published after a batch of notification rows is
// stored. All rows share Template; NotificationIDs[i] belongs to UserIDs[i].
type NotificationsCreated struct {
	UserIDs         []int64     `json:"userIds"`
	NotificationIDs []int64     `json:"notificationIds"`
	Template        interface{} `json:"template"`
}
