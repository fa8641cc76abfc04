package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// UniversityService manages tenants
type UniversityService interface {
	List(ctx context.Context, limit, offset int) ([]*models.University, int64, error)
	GetByID(ctx context.Context, id int64) (*models.University, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateUniversityRequest) (*models.University, error)
}

type universityServiceImpl struct {
	universityRepo repositories.IUniversityRepository
	logger         zerolog.Logger
}

// NewUniversityService creates a new UniversityService
func NewUniversityService(universityRepo repositories.IUniversityRepository, logger zerolog.Logger) UniversityService {
	return &universityServiceImpl{universityRepo: universityRepo, logger: logger}
}

func (s *universityServiceImpl) List(ctx context.Context, limit, offset int) ([]*models.University, int64, error) {
	return s.universityRepo.List(ctx, limit, offset)
}

func (s *universityServiceImpl) GetByID(ctx context.Context, id int64) (*models.University, error) {
	return s.universityRepo.GetByID(ctx, id)
}

// Create registers a new university; only university admins may do so
func (s *universityServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.CreateUniversityRequest) (*models.University, error) {
	if err := authz.RequireRole(actor, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}

	university := &models.University{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		EmailDomain: helpers.TrimmedOrNil(req.EmailDomain),
	}
	if university.EmailDomain != nil {
		domain := strings.ToLower(*university.EmailDomain)
		university.EmailDomain = &domain
	}

	if err := s.universityRepo.Create(ctx, university); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("universityID", university.ID).
		Str("slug", university.Slug).
		Int64("createdBy", actor.UserID).
		Msg("University created")
	return university, nil
}
