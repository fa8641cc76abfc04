package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"github.com/yigit/unilink/internal/pkg/websocket"
)

// RealtimePusher sends frames to the websocket connections of users
type RealtimePusher interface {
	SendToUsers(userIDs []int64, frameType string, data interface{}) error
}

// NotificationDispatcher turns domain events into stored notifications and
// pushes messages and notifications to connected clients.
//
// Notification rows are written by one replica per event (queue subscription);
// websocket pushes run on every replica (broadcast subscription), since each
// replica only holds its own connections.
type NotificationDispatcher struct {
	bus              eventbus.Bus
	notificationRepo repositories.INotificationRepository
	pusher           RealtimePusher
	logger           zerolog.Logger
}

// NewNotificationDispatcher creates a dispatcher. pusher may be nil.
func NewNotificationDispatcher(
	bus eventbus.Bus,
	notificationRepo repositories.INotificationRepository,
	pusher RealtimePusher,
	logger zerolog.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		bus:              bus,
		notificationRepo: notificationRepo,
		pusher:           pusher,
		logger:           logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Start subscribes to the bus
func (d *NotificationDispatcher) Start() error {
	handlers := map[string]eventbus.Handler{
		eventbus.TopicEventRegistered:    d.onEventRegistered,
		eventbus.TopicEventCancelled:     d.onEventCancelled,
		eventbus.TopicMessageCreated:     d.onMessageCreated,
		eventbus.TopicPostLiked:          d.onPostInteraction(models.NotificationPostLike),
		eventbus.TopicPostCommented:      d.onPostInteraction(models.NotificationPostComment),
		eventbus.TopicNewsletterSent:     d.onNewsletterSent,
		eventbus.TopicExamResultVerified: d.onExamResultVerified,
	}
	for topic, h := range handlers {
		if err := d.bus.Subscribe(topic, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	if d.pusher == nil {
		return nil
	}
	if err := d.bus.SubscribeBroadcast(eventbus.TopicMessageCreated, d.pushMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", eventbus.TopicMessageCreated, err)
	}
	if err := d.bus.SubscribeBroadcast(eventbus.TopicNotificationCreated, d.pushNotification); err != nil {
		return fmt.Errorf("subscribe %s: %w", eventbus.TopicNotificationCreated, err)
	}

	d.logger.Info().Int("topics", len(handlers)).Msg("Notification dispatcher started")
	return nil
}

// announceChunkSize bounds the recipients carried by one notification.created event
const announceChunkSize = 1000

// notify stores one notification per recipient and announces them in chunks
func (d *NotificationDispatcher) notify(ctx context.Context, recipients []int64, template models.Notification) error {
	if len(recipients) == 0 {
		return nil
	}

	batch := make([]*models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := template
		n.UserID = userID
		batch = append(batch, &n)
	}
	if err := d.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("error storing %s notifications: %w", template.Type, err)
	}

	template.UserID, template.ID = 0, 0
	for start := 0; start < len(batch); start += announceChunkSize {
		chunk := batch[start:min(start+announceChunkSize, len(batch))]
		event := eventbus.NotificationsCreated{
			UserIDs:         make([]int64, len(chunk)),
			NotificationIDs: make([]int64, len(chunk)),
			Template:        template,
		}
		for i, n := range chunk {
			event.UserIDs[i] = n.UserID
			event.NotificationIDs[i] = n.ID
		}
		if err := d.bus.Publish(ctx, eventbus.TopicNotificationCreated, event); err != nil {
			d.logger.Warn().Err(err).Int("recipients", len(chunk)).Msg("Failed to announce notifications")
		}
	}

	d.logger.Debug().Str("type", string(template.Type)).Int("recipients", len(batch)).Msg("Notifications created")
	return nil
}

func reference(kind string, id int64) (*string, *int64) {
	return &kind, &id
}

func (d *NotificationDispatcher) onEventRegistered(ctx context.Context, e eventbus.Event) error {
	var p eventbus.EventRegistered
	if err := e.Decode(&p); err != nil {
		return err
	}
	if p.OrganizerID == p.UserID {
		return nil
	}
	refType, refID := reference("event", p.EventID)
	return d.notify(ctx, []int64{p.OrganizerID}, models.Notification{
		Type:          models.NotificationEventRegistration,
		Title:         "New registration",
		Body:          fmt.Sprintf("%s registered for %s", nameOr(p.UserName, "Someone"), p.EventTitle),
		ReferenceType: refType,
		ReferenceID:   refID,
	})
}

func (d *NotificationDispatcher) onEventCancelled(ctx context.Context, e eventbus.Event) error {
	var p eventbus.EventCancelled
	if err := e.Decode(&p); err != nil {
		return err
	}
	refType, refID := reference("event", p.EventID)
	return d.notify(ctx, p.RegistrantIDs, models.Notification{
		Type:          models.NotificationEventCancelled,
		Title:         "Event cancelled",
		Body:          fmt.Sprintf("%s has been cancelled", p.EventTitle),
		ReferenceType: refType,
		ReferenceID:   refID,
	})
}

func (d *NotificationDispatcher) onMessageCreated(ctx context.Context, e eventbus.Event) error {
	var p eventbus.MessageCreated
	if err := e.Decode(&p); err != nil {
		return err
	}
	refType, refID := reference("conversation", p.ConversationID)
	return d.notify(ctx, p.RecipientIDs, models.Notification{
		Type:          models.NotificationNewMessage,
		Title:         "New message",
		Body:          fmt.Sprintf("%s: %s", nameOr(p.SenderName, "Someone"), preview(p.Content, 120)),
		ReferenceType: refType,
		ReferenceID:   refID,
	})
}

func (d *NotificationDispatcher) onPostInteraction(kind models.NotificationType) eventbus.Handler {
	return func(ctx context.Context, e eventbus.Event) error {
		var p eventbus.PostInteraction
		if err := e.Decode(&p); err != nil {
			return err
		}
		if p.AuthorID == p.ActorID {
			return nil
		}

		title, verb := "New like", "liked"
		if kind == models.NotificationPostComment {
			title, verb = "New comment", "commented on"
		}
		refType, refID := reference("post", p.PostID)
		return d.notify(ctx, []int64{p.AuthorID}, models.Notification{
			Type:          kind,
			Title:         title,
			Body:          fmt.Sprintf("%s %s your post", nameOr(p.ActorName, "Someone"), verb),
			ReferenceType: refType,
			ReferenceID:   refID,
		})
	}
}

func (d *NotificationDispatcher) onNewsletterSent(ctx context.Context, e eventbus.Event) error {
	var p eventbus.NewsletterSent
	if err := e.Decode(&p); err != nil {
		return err
	}
	refType, refID := reference("newsletter", p.NewsletterID)
	return d.notify(ctx, p.RecipientIDs, models.Notification{
		Type:          models.NotificationNewsletter,
		Title:         "New newsletter",
		Body:          p.Subject,
		ReferenceType: refType,
		ReferenceID:   refID,
	})
}

func (d *NotificationDispatcher) onExamResultVerified(ctx context.Context, e eventbus.Event) error {
	var p eventbus.ExamResultVerified
	if err := e.Decode(&p); err != nil {
		return err
	}
	refType, refID := reference("exam_result", p.ExamResultID)
	return d.notify(ctx, []int64{p.UserID}, models.Notification{
		Type:          models.NotificationExamVerified,
		Title:         "Exam result verified",
		Body:          fmt.Sprintf("Your %s result has been verified", p.ExamName),
		ReferenceType: refType,
		ReferenceID:   refID,
	})
}

func (d *NotificationDispatcher) pushMessage(ctx context.Context, e eventbus.Event) error {
	var p eventbus.MessageCreated
	if err := e.Decode(&p); err != nil {
		return err
	}
	return d.pusher.SendToUsers(p.RecipientIDs, websocket.FrameMessageCreated, p)
}

func (d *NotificationDispatcher) pushNotification(ctx context.Context, e eventbus.Event) error {
	var p struct {
		UserIDs         []int64             `json:"userIds"`
		NotificationIDs []int64             `json:"notificationIds"`
		Template        models.Notification `json:"template"`
	}
	if err := e.Decode(&p); err != nil {
		return err
	}
	if len(p.UserIDs) != len(p.NotificationIDs) {
		return fmt.Errorf("notification.created: %d users for %d notifications", len(p.UserIDs), len(p.NotificationIDs))
	}

	for i, userID := range p.UserIDs {
		n := p.Template
		n.ID, n.UserID = p.NotificationIDs[i], userID
		if err := d.pusher.SendToUsers([]int64{userID}, websocket.FrameNotificationCreated, n); err != nil {
			return err
		}
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// preview shortens s to at most n runes
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
