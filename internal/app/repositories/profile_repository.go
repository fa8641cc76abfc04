package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// Both tables carry updated_at, so the joined columns are listed explicitly.
var userProfileColumns = []string{
	"u.id", "u.university_id", "u.email", "u.first_name", "u.last_name", "u.role_type",
	"u.is_active", "u.last_login_at", "u.created_at", "u.updated_at",
	"p.headline", "p.bio", "p.graduation_year", "p.degree", "p.major", "p.current_company",
	"p.current_position", "p.location", "p.skills", "p.interests", "p.preferred_job_types",
	"p.is_mentor", "p.linkedin_url", "p.updated_at",
}

// IProfileRepository defines profile persistence
type IProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, int64, error)
	Find(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db, sb: newBuilder()}
}

func scanUserProfile(row pgx.Row) (*models.UserProfile, error) {
	up := &models.UserProfile{}
	err := row.Scan(
		&up.ID, &up.UniversityID, &up.Email, &up.FirstName, &up.LastName, &up.RoleType,
		&up.IsActive, &up.LastLoginAt, &up.CreatedAt, &up.UpdatedAt,
		&up.Profile.Headline, &up.Profile.Bio, &up.Profile.GraduationYear, &up.Profile.Degree,
		&up.Profile.Major, &up.Profile.CurrentCompany, &up.Profile.CurrentPosition, &up.Profile.Location,
		&up.Profile.Skills, &up.Profile.Interests, &up.Profile.PreferredJobTypes,
		&up.Profile.IsMentor, &up.Profile.LinkedInURL, &up.Profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	up.Profile.UserID = up.ID
	return up, nil
}

func (r *ProfileRepository) baseQuery() squirrel.SelectBuilder {
	return r.sb.Select(userProfileColumns...).
		From("users u").
		Join("profiles p ON p.user_id = u.id")
}

// applyFilter adds the WHERE clauses of filter to q
func applyProfileFilter(q squirrel.SelectBuilder, filter models.ProfileFilter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"u.is_active": true})
	if filter.UniversityID > 0 {
		q = q.Where(squirrel.Eq{"u.university_id": filter.UniversityID})
	}
	if filter.Role != "" {
		q = q.Where(squirrel.Eq{"u.role_type": filter.Role})
	}
	if filter.MentorsOnly {
		q = q.Where(squirrel.Eq{"p.is_mentor": true})
	}
	if filter.ExcludeUser > 0 {
		q = q.Where(squirrel.NotEq{"u.id": filter.ExcludeUser})
	}
	if filter.Skill != "" {
		q = q.Where("EXISTS (SELECT 1 FROM unnest(p.skills) s WHERE lower(s) = lower(?))", filter.Skill)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where(squirrel.Or{
			squirrel.Expr("(u.first_name || ' ' || u.last_name) ILIKE ?", pattern),
			squirrel.ILike{"p.headline": pattern},
			squirrel.ILike{"p.current_company": pattern},
		})
	}
	return q
}

// GetByUserID retrieves a user together with its profile
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	sql, args, err := r.baseQuery().Where(squirrel.Eq{"u.id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	up, err := scanUserProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return up, nil
}

// Find returns the profiles matching filter without counting them
func (r *ProfileRepository) Find(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, error) {
	query := applyProfileFilter(r.baseQuery(), filter).OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list profiles query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*models.UserProfile{}
	for rows.Next() {
		up, err := scanUserProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, up)
	}
	return profiles, rows.Err()
}

// List returns a page of profiles and the total matching filter
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, int64, error) {
	countQuery := applyProfileFilter(
		r.sb.Select("COUNT(*)").From("users u").Join("profiles p ON p.user_id = u.id"),
		filter,
	)
	total, err := queryCount(ctx, r.db, countQuery)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting profiles: %w", err)
	}

	profiles, err := r.Find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// Update writes every profile column
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	n, err := exec(ctx, r.db, r.sb.Update("profiles").
		SetMap(map[string]interface{}{
			"headline":            profile.Headline,
			"bio":                 profile.Bio,
			"graduation_year":     profile.GraduationYear,
			"degree":              profile.Degree,
			"major":               profile.Major,
			"current_company":     profile.CurrentCompany,
			"current_position":    profile.CurrentPosition,
			"location":            profile.Location,
			"skills":              helpers.NonNil(profile.Skills),
			"interests":           helpers.NonNil(profile.Interests),
			"preferred_job_types": helpers.NonNil(profile.PreferredJobTypes),
			"is_mentor":           profile.IsMentor,
			"linkedin_url":        profile.LinkedInURL,
			"updated_at":          profile.UpdatedAt,
		}).
		Where(squirrel.Eq{"user_id": profile.UserID}))
	if err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
