package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

var jobColumns = []string{
	"id", "university_id", "posted_by", "title", "company", "location", "job_type",
	"required_skills", "description", "is_active", "created_at", "updated_at",
}

// IJobRepository defines job posting persistence
type IJobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]*models.Job, int64, error)
	ListActive(ctx context.Context, universityID int64, limit int) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
}

// JobRepository handles job database operations
type JobRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db, sb: newBuilder()}
}

// Create inserts a job posting
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := r.sb.Insert("jobs").
		Columns("university_id", "posted_by", "title", "company", "location", "job_type",
			"required_skills", "description", "is_active").
		Values(job.UniversityID, job.PostedBy, job.Title, job.Company, job.Location, job.JobType,
			helpers.NonNil(job.RequiredSkills), job.Description, job.IsActive).
		Suffix("RETURNING id, created_at, updated_at")

	if err := scanInto(ctx, r.db, query, nil, &job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("error creating job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	query := r.sb.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id})
	return queryOne[models.Job](ctx, r.db, query, apperrors.ErrJobNotFound)
}

func applyJobFilter(q squirrel.SelectBuilder, filter models.JobFilter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"university_id": filter.UniversityID})
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.JobType != "" {
		q = q.Where(squirrel.Eq{"job_type": filter.JobType})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"company": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return q
}

// List returns a page of jobs of a university, newest first
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, int64, error) {
	total, err := queryCount(ctx, r.db, applyJobFilter(r.sb.Select("COUNT(*)").From("jobs"), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting jobs: %w", err)
	}

	query := applyJobFilter(r.sb.Select(jobColumns...).From("jobs"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	jobs, err := queryAll[models.Job](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing jobs: %w", err)
	}
	return jobs, total, nil
}

// ListActive returns the newest active jobs of a university
func (r *JobRepository) ListActive(ctx context.Context, universityID int64, limit int) ([]*models.Job, error) {
	query := r.sb.Select(jobColumns...).
		From("jobs").
		Where(squirrel.Eq{"university_id": universityID, "is_active": true}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	return queryAll[models.Job](ctx, r.db, query)
}

// Update writes the editable columns of a job
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	query := r.sb.Update("jobs").
		SetMap(map[string]interface{}{
			"title":           job.Title,
			"company":         job.Company,
			"location":        job.Location,
			"job_type":        job.JobType,
			"required_skills": helpers.NonNil(job.RequiredSkills),
			"description":     job.Description,
			"is_active":       job.IsActive,
			"updated_at":      squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": job.ID}).
		Suffix("RETURNING updated_at")

	return scanInto(ctx, r.db, query, apperrors.ErrJobNotFound, &job.UpdatedAt)
}

// Delete removes a job
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("jobs").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting job: %w", err)
	}
	if n == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}
