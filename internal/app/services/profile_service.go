package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/validation"
)

// RecommendationInvalidator drops cached recommendations of a user
type RecommendationInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// ProfileService reads and edits user profiles
type ProfileService interface {
	List(ctx context.Context, actor authz.Actor, filter models.ProfileFilter) ([]*models.UserProfile, int64, error)
	Get(ctx context.Context, actor authz.Actor, userID int64) (*models.UserProfile, error)
	Update(ctx context.Context, actor authz.Actor, req *dto.UpdateProfileRequest) (*models.UserProfile, error)
}

type profileServiceImpl struct {
	profileRepo repositories.IProfileRepository
	userRepo    repositories.IUserRepository
	invalidator RecommendationInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProfileService creates a new ProfileService. invalidator may be nil.
func NewProfileService(
	profileRepo repositories.IProfileRepository,
	userRepo repositories.IUserRepository,
	invalidator RecommendationInvalidator,
	logger zerolog.Logger,
) ProfileService {
	return &profileServiceImpl{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		invalidator: invalidator,
		logger:      logger,
		now:         clock,
	}
}

// List returns profiles of the caller's university
func (s *profileServiceImpl) List(ctx context.Context, actor authz.Actor, filter models.ProfileFilter) ([]*models.UserProfile, int64, error) {
	filter.UniversityID = actor.UniversityID
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Skill = strings.TrimSpace(filter.Skill)
	return s.profileRepo.List(ctx, filter)
}

// Get returns one profile; profiles of other universities are not found
func (s *profileServiceImpl) Get(ctx context.Context, actor authz.Actor, userID int64) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, profile.UniversityID, apperrors.ErrUserNotFound); err != nil {
		return nil, err
	}
	return profile, nil
}

// Update applies a partial update to the caller's own profile
func (s *profileServiceImpl) Update(ctx context.Context, actor authz.Actor, req *dto.UpdateProfileRequest) (*models.UserProfile, error) {
	current, err := s.profileRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.GraduationYear != nil && !validation.IsValidGraduationYear(*req.GraduationYear, s.now().Year()) {
		return nil, apperrors.NewValidationError("graduationYear",
			fmt.Sprintf("graduationYear must be between %d and %d",
				validation.MinGraduationYear, s.now().Year()+validation.GraduationYearLookahead))
	}

	firstName, lastName := current.FirstName, current.LastName
	if req.FirstName != nil {
		firstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		lastName = strings.TrimSpace(*req.LastName)
	}
	if firstName == "" {
		return nil, apperrors.NewValidationError("firstName", "firstName must not be blank")
	}

	p := current.Profile
	mergeString(&p.Headline, req.Headline)
	mergeString(&p.Bio, req.Bio)
	mergeString(&p.Degree, req.Degree)
	mergeString(&p.Major, req.Major)
	mergeString(&p.CurrentCompany, req.CurrentCompany)
	mergeString(&p.CurrentPosition, req.CurrentPosition)
	mergeString(&p.Location, req.Location)
	mergeString(&p.LinkedInURL, req.LinkedInURL)
	if req.GraduationYear != nil {
		p.GraduationYear = req.GraduationYear
	}
	if req.Skills != nil {
		p.Skills = helpers.NormalizeTags(*req.Skills)
	}
	if req.Interests != nil {
		p.Interests = helpers.NormalizeTags(*req.Interests)
	}
	if req.PreferredJobTypes != nil {
		types := helpers.NormalizeTags(*req.PreferredJobTypes)
		for i, t := range types {
			types[i] = strings.ToUpper(t)
		}
		p.PreferredJobTypes = types
	}
	if req.IsMentor != nil {
		p.IsMentor = *req.IsMentor
	}

	if firstName != current.FirstName || lastName != current.LastName {
		if err := s.userRepo.UpdateName(ctx, actor.UserID, firstName, lastName); err != nil {
			return nil, err
		}
	}
	if err := s.profileRepo.Update(ctx, &p); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, actor.UserID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Failed to invalidate cached recommendations")
		}
	}

	s.logger.Debug().Int64("userID", actor.UserID).Msg("Profile updated")
	return s.profileRepo.GetByUserID(ctx, actor.UserID)
}

// mergeString copies src into *dst when src is set; a blank src clears the field
func mergeString(dst **string, src *string) {
	if src == nil {
		return
	}
	*dst = helpers.TrimmedOrNil(src)
}
