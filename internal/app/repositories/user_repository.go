package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

var userColumns = []string{
	"id", "university_id", "email", "password", "first_name", "last_name",
	"role_type", "is_active", "last_login_at", "created_at", "updated_at",
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Create inserts the user together with an empty profile
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	UpdateName(ctx context.Context, userID int64, firstName, lastName string) error
	ListByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	ListActiveByUniversity(ctx context.Context, universityID int64, role models.RoleType) ([]*models.User, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

// Create inserts the user and its empty profile in one transaction
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := r.sb.Insert("users").
			Columns("university_id", "email", "password", "first_name", "last_name", "role_type", "is_active").
			Values(user.UniversityID, user.Email, user.Password, user.FirstName, user.LastName, user.RoleType, user.IsActive).
			Suffix("RETURNING id, created_at, updated_at")

		if err := scanInto(ctx, tx, query, nil, &user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
				return apperrors.ErrEmailAlreadyExists
			case dberrors.IsForeignKeyViolation(err):
				return apperrors.ErrUniversityNotFound
			}
			logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
			return fmt.Errorf("error creating user: %w", err)
		}

		if _, err := exec(ctx, tx, r.sb.Insert("profiles").Columns("user_id").Values(user.ID)); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id})
	return queryOne[models.User](ctx, r.db, query, apperrors.ErrUserNotFound)
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
	return queryOne[models.User](ctx, r.db, query, apperrors.ErrUserNotFound)
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	n, err := exec(ctx, r.db, r.sb.Update("users").Set("last_login_at", at).Where(squirrel.Eq{"id": userID}))
	if err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateName changes the user's display name
func (r *UserRepository) UpdateName(ctx context.Context, userID int64, firstName, lastName string) error {
	query := r.sb.Update("users").
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID})
	n, err := exec(ctx, r.db, query)
	if err != nil {
		return fmt.Errorf("failed to update user name: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListByIDs loads the users with the given IDs; unknown IDs are skipped
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	query := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": ids}).OrderBy("id")
	return queryAll[models.User](ctx, r.db, query)
}

// ListActiveByUniversity returns active users of a university, optionally of one role
func (r *UserRepository) ListActiveByUniversity(ctx context.Context, universityID int64, role models.RoleType) ([]*models.User, error) {
	query := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"university_id": universityID, "is_active": true}).
		OrderBy("id")
	if role != "" {
		query = query.Where(squirrel.Eq{"role_type": role})
	}
	return queryAll[models.User](ctx, r.db, query)
}
