package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

var newsletterColumns = []string{
	"id", "university_id", "author_id", "subject", "content", "audience", "status",
	"recipient_count", "sent_at", "created_at", "updated_at",
}

// INewsletterRepository defines newsletter persistence
type INewsletterRepository interface {
	Create(ctx context.Context, newsletter *models.Newsletter) error
	GetByID(ctx context.Context, id int64) (*models.Newsletter, error)
	List(ctx context.Context, universityID int64, includeDrafts bool, limit, offset int) ([]*models.Newsletter, int64, error)
	UpdateDraft(ctx context.Context, newsletter *models.Newsletter) error
	DeleteDraft(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, recipientCount int, sentAt time.Time) error
}

// NewsletterRepository handles newsletter database operations
type NewsletterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNewsletterRepository creates a new NewsletterRepository
func NewNewsletterRepository(db *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{db: db, sb: newBuilder()}
}

// Create inserts a draft newsletter
func (r *NewsletterRepository) Create(ctx context.Context, newsletter *models.Newsletter) error {
	query := r.sb.Insert("newsletters").
		Columns("university_id", "author_id", "subject", "content", "audience", "status").
		Values(newsletter.UniversityID, newsletter.AuthorID, newsletter.Subject, newsletter.Content,
			newsletter.Audience, models.NewsletterDraft).
		Suffix("RETURNING id, status, recipient_count, created_at, updated_at")

	err := scanInto(ctx, r.db, query, nil, &newsletter.ID, &newsletter.Status, &newsletter.RecipientCount,
		&newsletter.CreatedAt, &newsletter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating newsletter: %w", err)
	}
	return nil
}

// GetByID retrieves a newsletter by ID
func (r *NewsletterRepository) GetByID(ctx context.Context, id int64) (*models.Newsletter, error) {
	query := r.sb.Select(newsletterColumns...).From("newsletters").Where(squirrel.Eq{"id": id})
	return queryOne[models.Newsletter](ctx, r.db, query, apperrors.ErrNewsletterNotFound)
}

// List returns a page of newsletters of a university, newest first
func (r *NewsletterRepository) List(ctx context.Context, universityID int64, includeDrafts bool, limit, offset int) ([]*models.Newsletter, int64, error) {
	where := squirrel.Eq{"university_id": universityID}
	if !includeDrafts {
		where["status"] = models.NewsletterSent
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("newsletters").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting newsletters: %w", err)
	}

	query := r.sb.Select(newsletterColumns...).
		From("newsletters").
		Where(where).
		OrderBy("COALESCE(sent_at, created_at) DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	items, err := queryAll[models.Newsletter](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing newsletters: %w", err)
	}
	return items, total, nil
}

// UpdateDraft rewrites a newsletter that has not been sent
func (r *NewsletterRepository) UpdateDraft(ctx context.Context, newsletter *models.Newsletter) error {
	query := r.sb.Update("newsletters").
		Set("subject", newsletter.Subject).
		Set("content", newsletter.Content).
		Set("audience", newsletter.Audience).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": newsletter.ID, "status": models.NewsletterDraft}).
		Suffix("RETURNING updated_at")

	if err := scanInto(ctx, r.db, query, apperrors.ErrNewsletterAlreadySent, &newsletter.UpdatedAt); err != nil {
		return err
	}
	return nil
}

// DeleteDraft removes a newsletter that has not been sent
func (r *NewsletterRepository) DeleteDraft(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("newsletters").Where(squirrel.Eq{"id": id, "status": models.NewsletterDraft}))
	if err != nil {
		return fmt.Errorf("error deleting newsletter: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNewsletterAlreadySent
	}
	return nil
}

// MarkSent moves a draft to SENT. Only one caller can win for a given draft.
func (r *NewsletterRepository) MarkSent(ctx context.Context, id int64, recipientCount int, sentAt time.Time) error {
	n, err := exec(ctx, r.db, r.sb.Update("newsletters").
		Set("status", models.NewsletterSent).
		Set("recipient_count", recipientCount).
		Set("sent_at", sentAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.NewsletterDraft}))
	if err != nil {
		return fmt.Errorf("error marking newsletter sent: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNewsletterAlreadySent
	}
	return nil
}
