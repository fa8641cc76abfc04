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
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// JobService manages job postings
type JobService interface {
	List(ctx context.Context, actor authz.Actor, filter models.JobFilter) ([]*models.Job, int64, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*models.Job, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateJobRequest) (*models.Job, error)
	Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
}

type jobServiceImpl struct {
	jobRepo repositories.IJobRepository
	logger  zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(jobRepo repositories.IJobRepository, logger zerolog.Logger) JobService {
	return &jobServiceImpl{jobRepo: jobRepo, logger: logger}
}

// List returns active jobs of the caller's university
func (s *jobServiceImpl) List(ctx context.Context, actor authz.Actor, filter models.JobFilter) ([]*models.Job, int64, error) {
	filter.UniversityID = actor.UniversityID
	filter.ActiveOnly = true
	filter.Search = strings.TrimSpace(filter.Search)
	return s.jobRepo.List(ctx, filter)
}

// Get returns a job of the caller's university. Inactive ones only show to their managers.
func (s *jobServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, job.UniversityID, apperrors.ErrJobNotFound); err != nil {
		return nil, err
	}
	if !job.IsActive && !actor.CanManage(job.PostedBy, job.UniversityID) {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// Create posts a job on behalf of an alumnus or admin
func (s *jobServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.CreateJobRequest) (*models.Job, error) {
	if err := authz.RequireRole(actor, models.RoleAlumni, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}

	jobType := models.JobType(strings.ToUpper(req.JobType))
	if !jobType.IsValid() {
		return nil, apperrors.NewValidationError("jobType", "jobType must be one of FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE")
	}

	job := &models.Job{
		UniversityID:   actor.UniversityID,
		PostedBy:       actor.UserID,
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Location:       helpers.TrimmedOrNil(req.Location),
		JobType:        jobType,
		RequiredSkills: helpers.NormalizeTags(req.RequiredSkills),
		Description:    helpers.TrimmedOrNil(req.Description),
		IsActive:       true,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("jobID", job.ID).Int64("postedBy", actor.UserID).Msg("Job posted")
	return job, nil
}

// Update applies a partial update; poster or admin only
func (s *jobServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateJobRequest) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireManager(actor, job.PostedBy, job.UniversityID, apperrors.ErrJobNotFound); err != nil {
		return nil, err
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Company != nil {
		job.Company = strings.TrimSpace(*req.Company)
	}
	mergeString(&job.Location, req.Location)
	mergeString(&job.Description, req.Description)
	if req.JobType != nil {
		jobType := models.JobType(strings.ToUpper(*req.JobType))
		if !jobType.IsValid() {
			return nil, apperrors.NewValidationError("jobType", "jobType must be one of FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE")
		}
		job.JobType = jobType
	}
	if req.RequiredSkills != nil {
		job.RequiredSkills = helpers.NormalizeTags(*req.RequiredSkills)
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}
	if job.Title == "" || job.Company == "" {
		return nil, apperrors.NewValidationError("title", "title and company must not be blank")
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a job; poster or admin only
func (s *jobServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireManager(actor, job.PostedBy, job.UniversityID, apperrors.ErrJobNotFound); err != nil {
		return err
	}
	return s.jobRepo.Delete(ctx, id)
}
