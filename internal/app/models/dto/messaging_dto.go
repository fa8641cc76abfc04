package dto

// CreateConversationRequest is the body of POST /conversations
type CreateConversationRequest struct {
	ParticipantIDs []int64 `json:"participantIds" binding:"required,min=1,max=50,dive,gt=0"`
	Title          *string `json:"title,omitempty" binding:"omitempty,max=200"`
	IsGroup        bool    `json:"isGroup"`
}

// SendMessageRequest is the body of POST /conversations/:id/messages
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000" example:"Hi there!"`
}

// DirectMessageRequest is the body of POST /messages
type DirectMessageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0" example:"2"`
	Content    string `json:"content" binding:"required,min=1,max=5000" example:"Hi there!"`
}
