package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// ExamResultService manages exam credential records
type ExamResultService interface {
	ListMine(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ExamResult, int64, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateExamResultRequest) (*models.ExamResult, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	ListForUniversity(ctx context.Context, actor authz.Actor, userID int64, limit, offset int) ([]*models.ExamResult, int64, error)
	Verify(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error)
	// Credential is the public verification lookup
	Credential(ctx context.Context, credentialID string) (*models.Credential, error)
}

type examResultServiceImpl struct {
	examResultRepo repositories.IExamResultRepository
	bus            Publisher
	logger         zerolog.Logger
	now            func() time.Time
	newID          func() string
}

// NewExamResultService creates a new ExamResultService
func NewExamResultService(examResultRepo repositories.IExamResultRepository, bus Publisher, logger zerolog.Logger) ExamResultService {
	return &examResultServiceImpl{
		examResultRepo: examResultRepo,
		bus:            bus,
		logger:         logger,
		now:            clock,
		newID:          uuid.NewString,
	}
}

func (s *examResultServiceImpl) ListMine(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ExamResult, int64, error) {
	return s.examResultRepo.ListByUser(ctx, actor.UserID, limit, offset)
}

// Create records an exam result for the caller with a fresh credential id
func (s *examResultServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.CreateExamResultRequest) (*models.ExamResult, error) {
	if req.Score == nil {
		return nil, apperrors.NewValidationError("score", "score is required")
	}
	if req.MaxScore <= 0 {
		return nil, apperrors.NewValidationError("maxScore", "maxScore must be greater than 0")
	}
	if *req.Score < 0 || *req.Score > req.MaxScore {
		return nil, apperrors.NewValidationError("score", "score must be between 0 and maxScore")
	}
	if req.TakenAt.After(s.now()) {
		return nil, apperrors.NewValidationError("takenAt", "takenAt must not be in the future")
	}

	result := &models.ExamResult{
		UserID:       actor.UserID,
		UniversityID: actor.UniversityID,
		ExamName:     strings.TrimSpace(req.ExamName),
		ExamCode:     helpers.TrimmedOrNil(req.ExamCode),
		Score:        *req.Score,
		MaxScore:     req.MaxScore,
		Grade:        helpers.TrimmedOrNil(req.Grade),
		TakenAt:      req.TakenAt.UTC(),
		CredentialID: s.newID(),
	}
	if err := s.examResultRepo.Create(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a result to its owner or an admin of the same university
func (s *examResultServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error) {
	result, err := s.examResultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireManager(actor, result.UserID, result.UniversityID, apperrors.ErrExamResultNotFound); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an unverified result of the caller
func (s *examResultServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	result, err := s.examResultRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireTenant(actor, result.UniversityID, apperrors.ErrExamResultNotFound); err != nil {
		return err
	}
	if result.UserID != actor.UserID {
		return apperrors.NewForbiddenError("only the owner can delete an exam result")
	}
	if result.IsVerified {
		return apperrors.ErrExamResultVerified
	}
	return s.examResultRepo.DeleteUnverified(ctx, id)
}

// ListForUniversity lists results of the admin's university, optionally of one user
func (s *examResultServiceImpl) ListForUniversity(ctx context.Context, actor authz.Actor, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	if err := authz.RequireRole(actor, models.RoleUniversityAdmin); err != nil {
		return nil, 0, err
	}
	return s.examResultRepo.ListByUniversity(ctx, actor.UniversityID, userID, limit, offset)
}

// Verify marks a result as verified by the calling admin
func (s *examResultServiceImpl) Verify(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error) {
	if err := authz.RequireRole(actor, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}
	result, err := s.examResultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, result.UniversityID, apperrors.ErrExamResultNotFound); err != nil {
		return nil, err
	}
	if result.IsVerified {
		return nil, apperrors.ErrExamResultVerified
	}

	at := s.now()
	if err := s.examResultRepo.Verify(ctx, id, actor.UserID, at); err != nil {
		return nil, err
	}
	result.IsVerified = true
	result.VerifiedBy = &actor.UserID
	result.VerifiedAt = &at

	publish(ctx, s.bus, s.logger, eventbus.TopicExamResultVerified, eventbus.ExamResultVerified{
		ExamResultID: result.ID,
		UserID:       result.UserID,
		ExamName:     result.ExamName,
		CredentialID: result.CredentialID,
	})
	s.logger.Info().Int64("examResultID", id).Int64("verifiedBy", actor.UserID).Msg("Exam result verified")
	return result, nil
}

// Credential looks a credential up by its public id; malformed ids are not found
func (s *examResultServiceImpl) Credential(ctx context.Context, credentialID string) (*models.Credential, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(credentialID))
	if err != nil {
		return nil, apperrors.ErrExamResultNotFound
	}
	return s.examResultRepo.GetCredential(ctx, parsed.String())
}
