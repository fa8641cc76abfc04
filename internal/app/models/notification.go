package models

import "time"

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationEventRegistration NotificationType = "EVENT_REGISTRATION"
	NotificationEventCancelled    NotificationType = "EVENT_CANCELLED"
	NotificationNewMessage        NotificationType = "NEW_MESSAGE"
	NotificationPostComment       NotificationType = "POST_COMMENT"
	NotificationPostLike          NotificationType = "POST_LIKE"
	NotificationNewsletter        NotificationType = "NEWSLETTER"
	NotificationExamVerified      NotificationType = "EXAM_RESULT_VERIFIED"
)

// Notification is a message addressed to one user
type Notification struct {
	ID            int64            `json:"id" db:"id"`
	UserID        int64            `json:"userId" db:"user_id"`
	Type          NotificationType `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Body          string           `json:"body" db:"body"`
	ReferenceType *string          `json:"referenceType,omitempty" db:"reference_type"`
	ReferenceID   *int64           `json:"referenceId,omitempty" db:"reference_id"`
	IsRead        bool             `json:"isRead" db:"is_read"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}
