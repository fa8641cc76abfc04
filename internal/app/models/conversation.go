package models

import "time"

// Conversation is a direct (two people) or group thread
type Conversation struct {
	ID            int64      `json:"id" db:"id"`
	UniversityID  int64      `json:"universityId" db:"university_id"`
	Title         *string    `json:"title,omitempty" db:"title"`
	IsGroup       bool       `json:"isGroup" db:"is_group"`
	CreatedBy     int64      `json:"createdBy" db:"created_by"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// ConversationParticipant is a membership row
type ConversationParticipant struct {
	ConversationID int64      `json:"conversationId" db:"conversation_id"`
	UserID         int64      `json:"userId" db:"user_id"`
	FirstName      string     `json:"firstName" db:"first_name"`
	LastName       string     `json:"lastName" db:"last_name"`
	JoinedAt       time.Time  `json:"joinedAt" db:"joined_at"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty" db:"last_read_at"`
}

// ConversationSummary is a conversation as listed for one participant
type ConversationSummary struct {
	Conversation
	Participants []ConversationParticipant `json:"participants"`
	LastMessage  *Message                  `json:"lastMessage,omitempty"`
	UnreadCount  int                       `json:"unreadCount"`
}

// Message is a single chat message
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	ReceiverID     *int64    `json:"receiverId,omitempty" db:"receiver_id"`
	Content        string    `json:"content" db:"content"`
	IsRead         bool      `json:"isRead" db:"is_read"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
