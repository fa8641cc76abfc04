package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

var universityColumns = []string{"id", "name", "slug", "email_domain", "created_at", "updated_at"}

// IUniversityRepository defines university persistence
type IUniversityRepository interface {
	Create(ctx context.Context, university *models.University) error
	GetByID(ctx context.Context, id int64) (*models.University, error)
	GetBySlug(ctx context.Context, slug string) (*models.University, error)
	List(ctx context.Context, limit, offset int) ([]*models.University, int64, error)
}

// UniversityRepository handles university database operations
type UniversityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUniversityRepository creates a new UniversityRepository
func NewUniversityRepository(db *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{db: db, sb: newBuilder()}
}

// Create inserts a university and fills its generated fields
func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	query := r.sb.Insert("universities").
		Columns("name", "slug", "email_domain").
		Values(university.Name, university.Slug, university.EmailDomain).
		Suffix("RETURNING id, created_at, updated_at")

	err := scanInto(ctx, r.db, query, nil, &university.ID, &university.CreatedAt, &university.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "universities_slug_key") {
			return apperrors.ErrUniversityExists
		}
		logger.Error().Err(err).Str("slug", university.Slug).Msg("Error creating university")
		return fmt.Errorf("error creating university: %w", err)
	}
	return nil
}

// GetByID retrieves a university by ID
func (r *UniversityRepository) GetByID(ctx context.Context, id int64) (*models.University, error) {
	query := r.sb.Select(universityColumns...).From("universities").Where(squirrel.Eq{"id": id})
	return queryOne[models.University](ctx, r.db, query, apperrors.ErrUniversityNotFound)
}

// GetBySlug retrieves a university by slug
func (r *UniversityRepository) GetBySlug(ctx context.Context, slug string) (*models.University, error) {
	query := r.sb.Select(universityColumns...).From("universities").Where(squirrel.Eq{"slug": slug})
	return queryOne[models.University](ctx, r.db, query, apperrors.ErrUniversityNotFound)
}

// List returns a page of universities ordered by name
func (r *UniversityRepository) List(ctx context.Context, limit, offset int) ([]*models.University, int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("universities"))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting universities: %w", err)
	}

	query := r.sb.Select(universityColumns...).
		From("universities").
		OrderBy("name ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	items, err := queryAll[models.University](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing universities: %w", err)
	}
	return items, total, nil
}
