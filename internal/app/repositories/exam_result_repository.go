package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
)

var examResultColumns = []string{
	"id", "user_id", "university_id", "exam_name", "exam_code", "score", "max_score", "grade",
	"taken_at", "credential_id::text AS credential_id", "is_verified", "verified_by", "verified_at", "created_at",
}

// IExamResultRepository defines exam result persistence
type IExamResultRepository interface {
	Create(ctx context.Context, result *models.ExamResult) error
	GetByID(ctx context.Context, id int64) (*models.ExamResult, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ExamResult, int64, error)
	ListByUniversity(ctx context.Context, universityID, userID int64, limit, offset int) ([]*models.ExamResult, int64, error)
	DeleteUnverified(ctx context.Context, id int64) error
	Verify(ctx context.Context, id, verifierID int64, at time.Time) error
	GetCredential(ctx context.Context, credentialID string) (*models.Credential, error)
}

// ExamResultRepository handles exam result database operations
type ExamResultRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamResultRepository creates a new ExamResultRepository
func NewExamResultRepository(db *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{db: db, sb: newBuilder()}
}

// Create inserts an exam result
func (r *ExamResultRepository) Create(ctx context.Context, result *models.ExamResult) error {
	query := r.sb.Insert("exam_results").
		Columns("user_id", "university_id", "exam_name", "exam_code", "score", "max_score", "grade", "taken_at", "credential_id").
		Values(result.UserID, result.UniversityID, result.ExamName, result.ExamCode, result.Score, result.MaxScore,
			result.Grade, result.TakenAt, result.CredentialID).
		Suffix("RETURNING id, is_verified, created_at")

	if err := scanInto(ctx, r.db, query, nil, &result.ID, &result.IsVerified, &result.CreatedAt); err != nil {
		switch {
		case dberrors.IsCheckViolation(err, "exam_results_score_check"):
			return apperrors.NewValidationError("score", "score must be between 0 and maxScore")
		case dberrors.IsDuplicateConstraintError(err, "exam_results_credential_id_key"):
			return apperrors.NewConflictError("credential id collision")
		}
		return fmt.Errorf("error creating exam result: %w", err)
	}
	return nil
}

// GetByID retrieves an exam result by ID
func (r *ExamResultRepository) GetByID(ctx context.Context, id int64) (*models.ExamResult, error) {
	query := r.sb.Select(examResultColumns...).From("exam_results").Where(squirrel.Eq{"id": id})
	return queryOne[models.ExamResult](ctx, r.db, query, apperrors.ErrExamResultNotFound)
}

func (r *ExamResultRepository) list(ctx context.Context, where squirrel.Eq, limit, offset int) ([]*models.ExamResult, int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("exam_results").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting exam results: %w", err)
	}

	query := r.sb.Select(examResultColumns...).
		From("exam_results").
		Where(where).
		OrderBy("taken_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	items, err := queryAll[models.ExamResult](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing exam results: %w", err)
	}
	return items, total, nil
}

// ListByUser returns a page of one user's exam results
func (r *ExamResultRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID}, limit, offset)
}

// ListByUniversity returns a page of a university's exam results, optionally of one user
func (r *ExamResultRepository) ListByUniversity(ctx context.Context, universityID, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	where := squirrel.Eq{"university_id": universityID}
	if userID > 0 {
		where["user_id"] = userID
	}
	return r.list(ctx, where, limit, offset)
}

// DeleteUnverified removes an exam result that has not been verified
func (r *ExamResultRepository) DeleteUnverified(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("exam_results").Where(squirrel.Eq{"id": id, "is_verified": false}))
	if err != nil {
		return fmt.Errorf("error deleting exam result: %w", err)
	}
	if n == 0 {
		return apperrors.ErrExamResultVerified
	}
	return nil
}

// Verify marks an exam result verified by verifierID
func (r *ExamResultRepository) Verify(ctx context.Context, id, verifierID int64, at time.Time) error {
	n, err := exec(ctx, r.db, r.sb.Update("exam_results").
		Set("is_verified", true).
		Set("verified_by", verifierID).
		Set("verified_at", at).
		Where(squirrel.Eq{"id": id, "is_verified": false}))
	if err != nil {
		return fmt.Errorf("error verifying exam result: %w", err)
	}
	if n == 0 {
		return apperrors.ErrExamResultVerified
	}
	return nil
}

// GetCredential returns the public view of an exam result
func (r *ExamResultRepository) GetCredential(ctx context.Context, credentialID string) (*models.Credential, error) {
	query := r.sb.Select(
		"e.credential_id::text AS credential_id", "e.exam_name", "e.exam_code",
		"(u.first_name || ' ' || u.last_name) AS holder_name", "un.name AS university_name",
		"e.score", "e.max_score", "e.grade", "e.taken_at", "e.is_verified", "e.verified_at",
	).
		From("exam_results e").
		Join("users u ON u.id = e.user_id").
		Join("universities un ON un.id = e.university_id").
		Where(squirrel.Eq{"e.credential_id": credentialID})
	return queryOne[models.Credential](ctx, r.db, query, apperrors.ErrExamResultNotFound)
}
