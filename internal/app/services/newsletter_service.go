package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/email"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"golang.org/x/sync/semaphore"
)

// NewsletterService manages and sends university newsletters
type NewsletterService interface {
	List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Newsletter, int64, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*models.Newsletter, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateNewsletterRequest) (*models.Newsletter, error)
	Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateNewsletterRequest) (*models.Newsletter, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	Send(ctx context.Context, actor authz.Actor, id int64) (*models.Newsletter, error)
}

type newsletterServiceImpl struct {
	newsletterRepo repositories.INewsletterRepository
	userRepo       repositories.IUserRepository
	mailer         email.EmailService
	bus            Publisher
	concurrency    int64
	logger         zerolog.Logger
	now            func() time.Time
}

// NewNewsletterService creates a new NewsletterService. concurrency bounds the
// number of emails in flight during a send.
func NewNewsletterService(
	newsletterRepo repositories.INewsletterRepository,
	userRepo repositories.IUserRepository,
	mailer email.EmailService,
	bus Publisher,
	concurrency int,
	logger zerolog.Logger,
) NewsletterService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &newsletterServiceImpl{
		newsletterRepo: newsletterRepo,
		userRepo:       userRepo,
		mailer:         mailer,
		bus:            bus,
		concurrency:    int64(concurrency),
		logger:         logger,
		now:            clock,
	}
}

// List returns sent newsletters of the caller's university; admins also see drafts
func (s *newsletterServiceImpl) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Newsletter, int64, error) {
	return s.newsletterRepo.List(ctx, actor.UniversityID, actor.IsAdmin(), limit, offset)
}

func (s *newsletterServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*models.Newsletter, error) {
	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, newsletter.UniversityID, apperrors.ErrNewsletterNotFound); err != nil {
		return nil, err
	}
	if newsletter.Status == models.NewsletterDraft && !actor.IsAdmin() {
		return nil, apperrors.ErrNewsletterNotFound
	}
	return newsletter, nil
}

// loadForAdmin loads a newsletter the caller administers
func (s *newsletterServiceImpl) loadForAdmin(ctx context.Context, actor authz.Actor, id int64) (*models.Newsletter, error) {
	if err := authz.RequireRole(actor, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}
	newsletter, err := s.newsletterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, newsletter.UniversityID, apperrors.ErrNewsletterNotFound); err != nil {
		return nil, err
	}
	if newsletter.Status == models.NewsletterSent {
		return nil, apperrors.ErrNewsletterAlreadySent
	}
	return newsletter, nil
}

// Create stores a draft
func (s *newsletterServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.CreateNewsletterRequest) (*models.Newsletter, error) {
	if err := authz.RequireRole(actor, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}

	audience := models.AudienceAll
	if req.Audience != "" {
		audience = models.NewsletterAudience(strings.ToUpper(req.Audience))
	}
	if !audience.IsValid() {
		return nil, apperrors.NewValidationError("audience", "audience must be one of ALL STUDENT ALUMNI")
	}

	newsletter := &models.Newsletter{
		UniversityID: actor.UniversityID,
		AuthorID:     actor.UserID,
		Subject:      strings.TrimSpace(req.Subject),
		Content:      req.Content,
		Audience:     audience,
	}
	if err := s.newsletterRepo.Create(ctx, newsletter); err != nil {
		return nil, err
	}
	return newsletter, nil
}

// Update edits a draft
func (s *newsletterServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateNewsletterRequest) (*models.Newsletter, error) {
	newsletter, err := s.loadForAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		newsletter.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Content != nil {
		newsletter.Content = *req.Content
	}
	if req.Audience != nil {
		audience := models.NewsletterAudience(strings.ToUpper(*req.Audience))
		if !audience.IsValid() {
			return nil, apperrors.NewValidationError("audience", "audience must be one of ALL STUDENT ALUMNI")
		}
		newsletter.Audience = audience
	}

	if err := s.newsletterRepo.UpdateDraft(ctx, newsletter); err != nil {
		return nil, err
	}
	return newsletter, nil
}

// Delete removes a draft
func (s *newsletterServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	if _, err := s.loadForAdmin(ctx, actor, id); err != nil {
		return err
	}
	return s.newsletterRepo.DeleteDraft(ctx, id)
}

// Send mails the newsletter to its audience. Marking it SENT happens before the
// fan-out, so two concurrent sends cannot both mail the audience.
func (s *newsletterServiceImpl) Send(ctx context.Context, actor authz.Actor, id int64) (*models.Newsletter, error) {
	newsletter, err := s.loadForAdmin(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	recipients, err := s.userRepo.ListActiveByUniversity(ctx, newsletter.UniversityID, newsletter.Audience.Role())
	if err != nil {
		return nil, fmt.Errorf("error loading recipients: %w", err)
	}

	sentAt := s.now()
	if err := s.newsletterRepo.MarkSent(ctx, id, len(recipients), sentAt); err != nil {
		return nil, err
	}
	newsletter.Status = models.NewsletterSent
	newsletter.RecipientCount = len(recipients)
	newsletter.SentAt = &sentAt

	// the newsletter is claimed; finish the fan-out even if the client goes away
	sendCtx := context.WithoutCancel(ctx)
	failed := s.deliver(sendCtx, newsletter, recipients)

	ids := make([]int64, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
	}
	publish(sendCtx, s.bus, s.logger, eventbus.TopicNewsletterSent, eventbus.NewsletterSent{
		NewsletterID: newsletter.ID,
		Subject:      newsletter.Subject,
		RecipientIDs: ids,
	})

	s.logger.Info().
		Int64("newsletterID", id).
		Int("recipients", len(recipients)).
		Int64("failed", failed).
		Msg("Newsletter sent")
	return newsletter, nil
}

// deliver mails every recipient with at most s.concurrency sends in flight and
// returns the number of failed deliveries
func (s *newsletterServiceImpl) deliver(ctx context.Context, newsletter *models.Newsletter, recipients []*models.User) int64 {
	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, u := range recipients {
		if err := sem.Acquire(ctx, 1); err != nil {
			failed.Add(1)
			continue
		}
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			defer sem.Release(1)

			err := s.mailer.Send(ctx, email.Message{
				ToEmail:     u.Email,
				ToName:      u.FullName(),
				Subject:     newsletter.Subject,
				HTMLContent: newsletter.Content,
			})
			if err != nil {
				failed.Add(1)
				s.logger.Warn().Err(err).
					Int64("newsletterID", newsletter.ID).
					Int64("userID", u.ID).
					Msg("Failed to deliver newsletter")
			}
		}(u)
	}
	wg.Wait()
	return failed.Load()
}
