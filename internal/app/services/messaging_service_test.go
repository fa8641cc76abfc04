package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
)

func newTestMessagingService() (*messagingServiceImpl, *mockConversationRepo, *mockUserRepo, *recordingBus) {
	repo := &mockConversationRepo{}
	users := &mockUserRepo{}
	bus := &recordingBus{}
	svc := NewMessagingService(repo, users, bus, zerolog.Nop()).(*messagingServiceImpl)
	return svc, repo, users, bus
}

func TestUniqueOthers(t *testing.T) {
	assert.Equal(t, []int64{3, 2}, uniqueOthers([]int64{3, 1, 2, 3, 1}, 1))
	assert.Empty(t, uniqueOthers([]int64{1, 1}, 1))
}

func TestCreateConversationValidation(t *testing.T) {
	svc, repo, _, _ := newTestMessagingService()

	tests := []struct {
		name string
		req  dto.CreateConversationRequest
	}{
		{"only self", dto.CreateConversationRequest{ParticipantIDs: []int64{student.UserID}}},
		{"direct with two others", dto.CreateConversationRequest{ParticipantIDs: []int64{21, 22}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateConversation(context.Background(), student, &tt.req)
			require.Error(t, err)

			var custom *apperrors.CustomError
			require.ErrorAs(t, err, &custom)
			assert.Equal(t, "participantIds", custom.Field)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateConversationRejectsOtherUniversities(t *testing.T) {
	svc, repo, users, _ := newTestMessagingService()
	users.On("ListByIDs", mock.Anything, []int64{41}).Return([]*models.User{
		{ID: 41, UniversityID: 2, IsActive: true},
	}, nil)

	_, _, err := svc.CreateConversation(context.Background(), student, &dto.CreateConversationRequest{ParticipantIDs: []int64{41}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupConversation(t *testing.T) {
	svc, repo, users, _ := newTestMessagingService()
	users.On("ListByIDs", mock.Anything, []int64{21, 22}).Return([]*models.User{
		{ID: 21, UniversityID: 1, IsActive: true},
		{ID: 22, UniversityID: 1, IsActive: true},
	}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Conversation) bool {
		return c.IsGroup && c.Title != nil && *c.Title == "Study group" && c.CreatedBy == student.UserID
	}), []int64{student.UserID, 21, 22}).Return(&models.Conversation{ID: 4, IsGroup: true}, true, nil)

	title := " Study group "
	conversation, created, err := svc.CreateConversation(context.Background(), student, &dto.CreateConversationRequest{
		ParticipantIDs: []int64{21, 22, 21},
		Title:          &title,
		IsGroup:        true,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(4), conversation.ID)
	repo.AssertExpectations(t)
}

func TestSendMessageToDirectConversation(t *testing.T) {
	svc, repo, users, bus := newTestMessagingService()
	repo.On("GetByID", mock.Anything, int64(4)).Return(&models.Conversation{ID: 4, UniversityID: 1}, nil)
	repo.On("ParticipantIDs", mock.Anything, int64(4)).Return([]int64{student.UserID, 21}, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m *models.Message) bool {
		return m.ReceiverID != nil && *m.ReceiverID == 21 && m.Content == "hello"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Message).ID = 77
	}).Return(nil)
	users.On("GetByID", mock.Anything, student.UserID).Return(&models.User{ID: student.UserID, FirstName: "Ada", LastName: "Lovelace"}, nil)

	message, err := svc.SendMessage(context.Background(), student, 4, &dto.SendMessageRequest{Content: "  hello "})
	require.NoError(t, err)
	assert.Equal(t, int64(77), message.ID)

	events := bus.Published()
	require.Len(t, events, 1)
	assert.Equal(t, eventbus.TopicMessageCreated, events[0].topic)
	payload := events[0].payload.(eventbus.MessageCreated)
	assert.Equal(t, []int64{21}, payload.RecipientIDs)
	assert.Equal(t, "Ada Lovelace", payload.SenderName)
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	svc, repo, _, bus := newTestMessagingService()
	repo.On("GetByID", mock.Anything, int64(4)).Return(&models.Conversation{ID: 4, UniversityID: 1}, nil)
	repo.On("ParticipantIDs", mock.Anything, int64(4)).Return([]int64{21, 22}, nil)

	_, err := svc.SendMessage(context.Background(), student, 4, &dto.SendMessageRequest{Content: "hello"})
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	assert.Empty(t, bus.Published())
}

func TestSendMessageStillSucceedsWithoutSenderName(t *testing.T) {
	svc, repo, users, bus := newTestMessagingService()
	repo.On("GetByID", mock.Anything, int64(4)).Return(&models.Conversation{ID: 4, IsGroup: true}, nil)
	repo.On("ParticipantIDs", mock.Anything, int64(4)).Return([]int64{student.UserID, 21, 22}, nil)
	repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(m *models.Message) bool {
		return m.ReceiverID == nil
	})).Return(nil)
	users.On("GetByID", mock.Anything, student.UserID).Return(nil, errors.New("db down"))

	_, err := svc.SendMessage(context.Background(), student, 4, &dto.SendMessageRequest{Content: "hi all"})
	require.NoError(t, err)
	require.Len(t, bus.Published(), 1)
	assert.Equal(t, []int64{21, 22}, bus.Published()[0].payload.(eventbus.MessageCreated).RecipientIDs)
}

func TestSendDirectRejectsSelf(t *testing.T) {
	svc, _, _, _ := newTestMessagingService()
	_, err := svc.SendDirect(context.Background(), student, &dto.DirectMessageRequest{ReceiverID: student.UserID, Content: "me"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestMarkReadHidesForeignConversations(t *testing.T) {
	svc, repo, _, _ := newTestMessagingService()
	repo.On("IsParticipant", mock.Anything, int64(4), student.UserID).Return(false, nil)

	_, err := svc.MarkRead(context.Background(), student, 4)
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}
