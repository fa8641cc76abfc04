package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// MessagingService manages conversations and chat messages
type MessagingService interface {
	ListConversations(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ConversationSummary, int64, error)
	// CreateConversation reports created=false when an existing direct conversation was reused
	CreateConversation(ctx context.Context, actor authz.Actor, req *dto.CreateConversationRequest) (*models.Conversation, bool, error)
	ListMessages(ctx context.Context, actor authz.Actor, conversationID int64, limit, offset int) ([]*models.Message, int64, error)
	SendMessage(ctx context.Context, actor authz.Actor, conversationID int64, req *dto.SendMessageRequest) (*models.Message, error)
	SendDirect(ctx context.Context, actor authz.Actor, req *dto.DirectMessageRequest) (*models.Message, error)
	MarkRead(ctx context.Context, actor authz.Actor, conversationID int64) (int64, error)
	UnreadCount(ctx context.Context, actor authz.Actor) (int, error)
}

type messagingServiceImpl struct {
	conversationRepo repositories.IConversationRepository
	userRepo         repositories.IUserRepository
	bus              Publisher
	logger           zerolog.Logger
	now              func() time.Time
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(
	conversationRepo repositories.IConversationRepository,
	userRepo repositories.IUserRepository,
	bus Publisher,
	logger zerolog.Logger,
) MessagingService {
	return &messagingServiceImpl{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		bus:              bus,
		logger:           logger,
		now:              clock,
	}
}

func (s *messagingServiceImpl) ListConversations(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ConversationSummary, int64, error) {
	return s.conversationRepo.ListForUser(ctx, actor.UserID, limit, offset)
}

// CreateConversation starts a conversation between the caller and participantIds.
// Everyone must be an active member of the caller's university.
func (s *messagingServiceImpl) CreateConversation(ctx context.Context, actor authz.Actor, req *dto.CreateConversationRequest) (*models.Conversation, bool, error) {
	others := uniqueOthers(req.ParticipantIDs, actor.UserID)
	switch {
	case len(others) == 0:
		return nil, false, apperrors.NewValidationError("participantIds", "a conversation needs at least one other participant")
	case !req.IsGroup && len(others) != 1:
		return nil, false, apperrors.NewValidationError("participantIds", "a direct conversation has exactly one other participant")
	}

	if err := s.requireColleagues(ctx, actor, others); err != nil {
		return nil, false, err
	}

	conversation := &models.Conversation{
		UniversityID: actor.UniversityID,
		IsGroup:      req.IsGroup,
		CreatedBy:    actor.UserID,
	}
	if req.IsGroup {
		conversation.Title = helpers.TrimmedOrNil(req.Title)
	}

	participants := append([]int64{actor.UserID}, others...)
	result, created, err := s.conversationRepo.Create(ctx, conversation, participants)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Debug().
			Int64("conversationID", result.ID).
			Bool("group", result.IsGroup).
			Int("participants", len(participants)).
			Msg("Conversation created")
	}
	return result, created, nil
}

// ListMessages returns messages newest first; participants only
func (s *messagingServiceImpl) ListMessages(ctx context.Context, actor authz.Actor, conversationID int64, limit, offset int) ([]*models.Message, int64, error) {
	if err := s.requireParticipant(ctx, actor, conversationID); err != nil {
		return nil, 0, err
	}
	return s.conversationRepo.ListMessages(ctx, conversationID, limit, offset)
}

// SendMessage stores a message and announces it to the other participants
func (s *messagingServiceImpl) SendMessage(ctx context.Context, actor authz.Actor, conversationID int64, req *dto.SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content must not be blank")
	}

	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	participants, err := s.conversationRepo.ParticipantIDs(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error loading participants: %w", err)
	}
	recipients := uniqueOthers(participants, actor.UserID)
	if len(recipients) == len(participants) {
		return nil, apperrors.ErrConversationNotFound
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		Content:        content,
	}
	if !conversation.IsGroup && len(recipients) == 1 {
		message.ReceiverID = &recipients[0]
	}
	if err := s.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	senderName := ""
	if sender, err := s.userRepo.GetByID(ctx, actor.UserID); err == nil {
		senderName = sender.FullName()
	}
	publish(ctx, s.bus, s.logger, eventbus.TopicMessageCreated, eventbus.MessageCreated{
		MessageID:      message.ID,
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		SenderName:     senderName,
		RecipientIDs:   recipients,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	})
	return message, nil
}

// SendDirect finds or creates the direct conversation with the receiver and posts to it
func (s *messagingServiceImpl) SendDirect(ctx context.Context, actor authz.Actor, req *dto.DirectMessageRequest) (*models.Message, error) {
	if req.ReceiverID == actor.UserID {
		return nil, apperrors.NewValidationError("receiverId", "you cannot message yourself")
	}
	conversation, _, err := s.CreateConversation(ctx, actor, &dto.CreateConversationRequest{
		ParticipantIDs: []int64{req.ReceiverID},
	})
	if err != nil {
		return nil, err
	}
	return s.SendMessage(ctx, actor, conversation.ID, &dto.SendMessageRequest{Content: req.Content})
}

// MarkRead marks messages from others as read and returns how many changed
func (s *messagingServiceImpl) MarkRead(ctx context.Context, actor authz.Actor, conversationID int64) (int64, error) {
	if err := s.requireParticipant(ctx, actor, conversationID); err != nil {
		return 0, err
	}
	return s.conversationRepo.MarkRead(ctx, conversationID, actor.UserID, s.now())
}

func (s *messagingServiceImpl) UnreadCount(ctx context.Context, actor authz.Actor) (int, error) {
	return s.conversationRepo.UnreadCount(ctx, actor.UserID)
}

// requireParticipant hides conversations the caller is not part of
func (s *messagingServiceImpl) requireParticipant(ctx context.Context, actor authz.Actor, conversationID int64) error {
	ok, err := s.conversationRepo.IsParticipant(ctx, conversationID, actor.UserID)
	if err != nil {
		return fmt.Errorf("error checking participant: %w", err)
	}
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

func (s *messagingServiceImpl) requireColleagues(ctx context.Context, actor authz.Actor, userIDs []int64) error {
	users, err := s.userRepo.ListByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("error loading participants: %w", err)
	}
	found := make(map[int64]bool, len(users))
	for _, u := range users {
		if u.IsActive && u.UniversityID == actor.UniversityID {
			found[u.ID] = true
		}
	}
	for _, id := range userIDs {
		if !found[id] {
			return apperrors.NewValidationError("participantIds",
				fmt.Sprintf("user %d is not an active member of your university", id))
		}
	}
	return nil
}

// uniqueOthers returns ids without duplicates and without self, in input order
func uniqueOthers(ids []int64, self int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
