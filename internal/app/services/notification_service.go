package services

import (
	"context"

	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/repositories"
)

// NotificationService exposes the caller's notifications. Rows of other users
// are reported as not found by the repository.
type NotificationService interface {
	List(ctx context.Context, actor authz.Actor, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, actor authz.Actor) (int, error)
	MarkRead(ctx context.Context, actor authz.Actor, id int64) error
	MarkAllRead(ctx context.Context, actor authz.Actor) (int64, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repositories.INotificationRepository) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo}
}

func (s *notificationServiceImpl) List(ctx context.Context, actor authz.Actor, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	return s.notificationRepo.List(ctx, actor.UserID, unreadOnly, limit, offset)
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor authz.Actor) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, actor.UserID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor authz.Actor, id int64) error {
	return s.notificationRepo.MarkRead(ctx, id, actor.UserID)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, actor authz.Actor) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, actor.UserID)
}

func (s *notificationServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	return s.notificationRepo.Delete(ctx, id, actor.UserID)
}
