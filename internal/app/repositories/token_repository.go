package repositories

import (
	"context"
	"fmt"
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

// ITokenRepository defines refresh token persistence
type ITokenRepository interface {
	Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error
	Revoke(ctx context.Context, token string) error
}

// TokenRepository handles token database operations
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db, sb: newBuilder()}
}

// Create creates a new refresh token
func (r *TokenRepository) Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	return r.insert(ctx, r.db, token, userID, expiryDate)
}

func (r *TokenRepository) insert(ctx context.Context, q db.DBTX, token string, userID int64, expiryDate time.Time) error {
	_, err := exec(ctx, q, r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked").
		Values(token, userID, expiryDate, false))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// Get retrieves a refresh token row by value
func (r *TokenRepository) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := r.sb.Select("id", "token", "user_id", "expiry_date", "is_revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token})
	return queryOne[models.RefreshToken](ctx, r.db, query, apperrors.ErrTokenNotFound)
}

// Rotate revokes oldToken and stores newToken atomically. A token that was
// already revoked, by a concurrent refresh for example, cannot be rotated.
func (r *TokenRepository) Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := exec(ctx, tx, r.sb.Update("refresh_tokens").
			Set("is_revoked", true).
			Where(squirrel.Eq{"token": oldToken, "user_id": userID, "is_revoked": false}))
		if err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}
		if n == 0 {
			return apperrors.ErrTokenRevoked
		}
		return r.insert(ctx, tx, newToken, userID, expiryDate)
	})
}

// Revoke revokes a token
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	n, err := exec(ctx, r.db, r.sb.Update("refresh_tokens").Set("is_revoked", true).Where(squirrel.Eq{"token": token}))
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	if n == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}
