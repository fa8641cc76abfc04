package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

var notificationColumns = []string{
	"id", "user_id", "type", "title", "body", "reference_type", "reference_id", "is_read", "created_at",
}

// INotificationRepository defines notification persistence
type INotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error
}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db, sb: newBuilder()}
}

// CreateBatch inserts notifications in one round trip and fills their IDs
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, n := range notifications {
		sql, args, err := r.sb.Insert("notifications").
			Columns("user_id", "type", "title", "body", "reference_type", "reference_id").
			Values(n.UserID, n.Type, n.Title, n.Body, n.ReferenceType, n.ReferenceID).
			Suffix("RETURNING id, is_read, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build notification insert: %w", err)
		}
		batch.Queue(sql, args...)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, n := range notifications {
		if err := results.QueryRow().Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
			return fmt.Errorf("error creating notification for user %d: %w", n.UserID, err)
		}
	}
	return results.Close()
}

func notificationScope(userID int64, unreadOnly bool) squirrel.Eq {
	where := squirrel.Eq{"user_id": userID}
	if unreadOnly {
		where["is_read"] = false
	}
	return where
}

// List returns a page of a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	where := notificationScope(userID, unreadOnly)

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("notifications").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	query := r.sb.Select(notificationColumns...).
		From("notifications").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	items, err := queryAll[models.Notification](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	return items, total, nil
}

// UnreadCount counts unread notifications of a user
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("notifications").Where(notificationScope(userID, true)))
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return int(total), nil
}

// MarkRead marks one notification read; other users' notifications are not found
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	n, err := exec(ctx, r.db, r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := exec(ctx, r.db, r.sb.Update("notifications").
		Set("is_read", true).
		Where(notificationScope(userID, true)))
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return n, nil
}

// Delete removes one of a user's notifications
func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("notifications").Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}
