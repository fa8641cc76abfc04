package services

import (
	"context"
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

type mockPostRepo struct{ mock.Mock }

func (m *mockPostRepo) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	v, _ := args.Get(0).(*models.Post)
	return v, args.Error(1)
}

func (m *mockPostRepo) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, int64, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*models.Post)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	return m.Called(ctx, id, content).Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostRepo) Like(ctx context.Context, postID, userID int64) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) AddComment(ctx context.Context, comment *models.PostComment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockPostRepo) ListComments(ctx context.Context, postID int64) ([]*models.PostComment, error) {
	args := m.Called(ctx, postID)
	v, _ := args.Get(0).([]*models.PostComment)
	return v, args.Error(1)
}

func newTestPostService() (PostService, *mockPostRepo, *mockUserRepo, *recordingBus) {
	posts := &mockPostRepo{}
	users := &mockUserRepo{}
	bus := &recordingBus{}
	return NewPostService(posts, users, bus, zerolog.Nop()), posts, users, bus
}

func alumnusPost() *models.Post {
	return &models.Post{ID: 8, UniversityID: 1, AuthorID: alumnus.UserID, Content: "Hiring!"}
}

func TestLikePublishesOnlyOnChange(t *testing.T) {
	svc, posts, users, bus := newTestPostService()
	posts.On("GetByID", mock.Anything, int64(8), student.UserID).Return(alumnusPost(), nil)
	posts.On("Like", mock.Anything, int64(8), student.UserID).Return(true, nil).Once()
	posts.On("Like", mock.Anything, int64(8), student.UserID).Return(false, nil).Once()
	users.On("GetByID", mock.Anything, student.UserID).Return(&models.User{FirstName: "Bob", LastName: "Smith"}, nil)

	_, err := svc.Like(context.Background(), student, 8)
	require.NoError(t, err)
	_, err = svc.Like(context.Background(), student, 8)
	require.NoError(t, err)

	events := bus.Published()
	require.Len(t, events, 1)
	assert.Equal(t, eventbus.TopicPostLiked, events[0].topic)
	payload := events[0].payload.(eventbus.PostInteraction)
	assert.Equal(t, alumnus.UserID, payload.AuthorID)
	assert.Equal(t, "Bob Smith", payload.ActorName)
}

func TestLikeOwnPostIsSilent(t *testing.T) {
	svc, posts, _, bus := newTestPostService()
	posts.On("GetByID", mock.Anything, int64(8), alumnus.UserID).Return(alumnusPost(), nil)
	posts.On("Like", mock.Anything, int64(8), alumnus.UserID).Return(true, nil)

	_, err := svc.Like(context.Background(), alumnus, 8)
	require.NoError(t, err)
	assert.Empty(t, bus.Published())
}

func TestPostTenantIsolation(t *testing.T) {
	svc, posts, _, _ := newTestPostService()
	posts.On("GetByID", mock.Anything, int64(8), outside.UserID).Return(alumnusPost(), nil)

	_, err := svc.Get(context.Background(), outside, 8)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	_, err = svc.Like(context.Background(), outside, 8)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	posts.AssertNotCalled(t, "Like", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	svc, posts, _, _ := newTestPostService()
	posts.On("GetByID", mock.Anything, int64(8), admin.UserID).Return(alumnusPost(), nil)

	_, err := svc.Update(context.Background(), admin, 8, &dto.PostRequest{Content: "edited"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	posts.On("Delete", mock.Anything, int64(8)).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), admin, 8))
}

func TestCommentNotifiesAuthor(t *testing.T) {
	svc, posts, users, bus := newTestPostService()
	posts.On("GetByID", mock.Anything, int64(8), student.UserID).Return(alumnusPost(), nil)
	posts.On("AddComment", mock.Anything, mock.MatchedBy(func(c *models.PostComment) bool {
		return c.Content == "Congrats!" && c.AuthorID == student.UserID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.PostComment).ID = 12
	}).Return(nil)
	users.On("GetByID", mock.Anything, student.UserID).Return(&models.User{FirstName: "Bob", LastName: "Smith"}, nil)

	comment, err := svc.Comment(context.Background(), student, 8, &dto.CommentRequest{Content: " Congrats! "})
	require.NoError(t, err)
	assert.Equal(t, "Bob", comment.AuthorFirstName)

	events := bus.Published()
	require.Len(t, events, 1)
	assert.Equal(t, eventbus.TopicPostCommented, events[0].topic)
	assert.Equal(t, int64(12), events[0].payload.(eventbus.PostInteraction).CommentID)
}
