package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
)

// PostService manages the university feed
type PostService interface {
	List(ctx context.Context, actor authz.Actor, filter models.PostFilter) ([]*models.Post, int64, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*dto.PostDetailResponse, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.PostRequest) (*models.Post, error)
	Update(ctx context.Context, actor authz.Actor, id int64, req *dto.PostRequest) (*models.Post, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	Like(ctx context.Context, actor authz.Actor, id int64) (*models.Post, error)
	Unlike(ctx context.Context, actor authz.Actor, id int64) (*models.Post, error)
	Comment(ctx context.Context, actor authz.Actor, id int64, req *dto.CommentRequest) (*models.PostComment, error)
}

type postServiceImpl struct {
	postRepo repositories.IPostRepository
	userRepo repositories.IUserRepository
	bus      Publisher
	logger   zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.IPostRepository,
	userRepo repositories.IUserRepository,
	bus Publisher,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{postRepo: postRepo, userRepo: userRepo, bus: bus, logger: logger}
}

// List returns the caller's university feed, newest first
func (s *postServiceImpl) List(ctx context.Context, actor authz.Actor, filter models.PostFilter) ([]*models.Post, int64, error) {
	filter.UniversityID = actor.UniversityID
	filter.ViewerID = actor.UserID
	return s.postRepo.List(ctx, filter)
}

func (s *postServiceImpl) load(ctx context.Context, actor authz.Actor, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, post.UniversityID, apperrors.ErrPostNotFound); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns a post with its comments
func (s *postServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*dto.PostDetailResponse, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.postRepo.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PostDetailResponse{Post: post, Comments: comments}, nil
}

func (s *postServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.PostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content must not be blank")
	}

	post := &models.Post{
		UniversityID: actor.UniversityID,
		AuthorID:     actor.UserID,
		Content:      content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, actor.UserID)
}

// Update edits the content; only the author may do so
func (s *postServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, req *dto.PostRequest) (*models.Post, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.UserID {
		return nil, apperrors.NewForbiddenError("only the author can edit a post")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content must not be blank")
	}
	if err := s.postRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id, actor.UserID)
}

// Delete removes a post; the author or an admin may do so
func (s *postServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := authz.RequireManager(actor, post.AuthorID, post.UniversityID, apperrors.ErrPostNotFound); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, id)
}

// Like is idempotent; the author is notified on the first like only
func (s *postServiceImpl) Like(ctx context.Context, actor authz.Actor, id int64) (*models.Post, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	changed, err := s.postRepo.Like(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if changed && post.AuthorID != actor.UserID {
		publish(ctx, s.bus, s.logger, eventbus.TopicPostLiked, eventbus.PostInteraction{
			PostID:    id,
			AuthorID:  post.AuthorID,
			ActorID:   actor.UserID,
			ActorName: s.nameOf(ctx, actor.UserID),
		})
	}
	return s.postRepo.GetByID(ctx, id, actor.UserID)
}

// Unlike is idempotent
func (s *postServiceImpl) Unlike(ctx context.Context, actor authz.Actor, id int64) (*models.Post, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.Unlike(ctx, id, actor.UserID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id, actor.UserID)
}

// Comment adds a reply and notifies the author
func (s *postServiceImpl) Comment(ctx context.Context, actor authz.Actor, id int64, req *dto.CommentRequest) (*models.PostComment, error) {
	post, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content must not be blank")
	}

	comment := &models.PostComment{PostID: id, AuthorID: actor.UserID, Content: content}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	if author, err := s.userRepo.GetByID(ctx, actor.UserID); err == nil {
		comment.AuthorFirstName = author.FirstName
		comment.AuthorLastName = author.LastName
	}

	if post.AuthorID != actor.UserID {
		publish(ctx, s.bus, s.logger, eventbus.TopicPostCommented, eventbus.PostInteraction{
			PostID:    id,
			AuthorID:  post.AuthorID,
			ActorID:   actor.UserID,
			ActorName: strings.TrimSpace(comment.AuthorFirstName + " " + comment.AuthorLastName),
			CommentID: comment.ID,
		})
	}
	return comment, nil
}

func (s *postServiceImpl) nameOf(ctx context.Context, userID int64) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to load user name")
		return ""
	}
	return user.FullName()
}
