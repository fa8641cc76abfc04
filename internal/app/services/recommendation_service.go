package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/cache"
	"github.com/yigit/unilink/internal/pkg/matching"
	"golang.org/x/sync/errgroup"
)

// RecommendationKind selects what is recommended
type RecommendationKind string

const (
	RecommendJobs        RecommendationKind = "jobs"
	RecommendMentors     RecommendationKind = "mentors"
	RecommendConnections RecommendationKind = "connections"
)

var recommendationKinds = []RecommendationKind{RecommendJobs, RecommendMentors, RecommendConnections}

// RecommendationService ranks jobs, mentors and connections for the caller
type RecommendationService interface {
	Recommend(ctx context.Context, actor authz.Actor, kind RecommendationKind, limit int) ([]matching.Result, error)
	Invalidate(ctx context.Context, userID int64) error
}

// RecommendationConfig tunes candidate loading and caching
type RecommendationConfig struct {
	CandidateCap int
	CacheTTL     time.Duration
}

type recommendationServiceImpl struct {
	profileRepo repositories.IProfileRepository
	jobRepo     repositories.IJobRepository
	engine      *matching.Engine
	cache       cache.Cache
	cfg         RecommendationConfig
	logger      zerolog.Logger
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(
	profileRepo repositories.IProfileRepository,
	jobRepo repositories.IJobRepository,
	engine *matching.Engine,
	c cache.Cache,
	cfg RecommendationConfig,
	logger zerolog.Logger,
) RecommendationService {
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = 500
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &recommendationServiceImpl{
		profileRepo: profileRepo,
		jobRepo:     jobRepo,
		engine:      engine,
		cache:       c,
		cfg:         cfg,
		logger:      logger,
	}
}

func recommendationKey(userID int64, kind RecommendationKind) string {
	return fmt.Sprintf("recommendations:%d:%s", userID, kind)
}

// Recommend returns at most limit results. The full ranking is cached per
// user and kind; limit only truncates it.
func (s *recommendationServiceImpl) Recommend(ctx context.Context, actor authz.Actor, kind RecommendationKind, limit int) ([]matching.Result, error) {
	limit = s.engine.ClampLimit(limit)
	key := recommendationKey(actor.UserID, kind)

	var cached []matching.Result
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Recommendation cache read failed")
	} else if hit {
		return truncate(cached, limit), nil
	}

	subject, candidates, err := s.load(ctx, actor, kind)
	if err != nil {
		return nil, err
	}

	ranked := s.engine.Rank(subject, candidates, s.engine.MaxLimit())
	if err := s.cache.Set(ctx, key, ranked, s.cfg.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Recommendation cache write failed")
	}

	s.logger.Debug().
		Int64("userID", actor.UserID).
		Str("kind", string(kind)).
		Int("candidates", len(candidates)).
		Int("results", len(ranked)).
		Msg("Recommendations computed")
	return truncate(ranked, limit), nil
}

// Invalidate drops every cached ranking of userID
func (s *recommendationServiceImpl) Invalidate(ctx context.Context, userID int64) error {
	keys := make([]string, 0, len(recommendationKinds))
	for _, kind := range recommendationKinds {
		keys = append(keys, recommendationKey(userID, kind))
	}
	return s.cache.Delete(ctx, keys...)
}

// load fetches the caller's profile and the candidate set concurrently
func (s *recommendationServiceImpl) load(ctx context.Context, actor authz.Actor, kind RecommendationKind) (matching.Subject, []matching.Candidate, error) {
	var (
		subject    matching.Subject
		candidates []matching.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.profileRepo.GetByUserID(gctx, actor.UserID)
		if err != nil {
			return err
		}
		subject = subjectFromProfile(profile)
		return nil
	})
	g.Go(func() error {
		var err error
		candidates, err = s.candidates(gctx, actor, kind)
		return err
	})
	if err := g.Wait(); err != nil {
		return matching.Subject{}, nil, err
	}
	return subject, candidates, nil
}

func (s *recommendationServiceImpl) candidates(ctx context.Context, actor authz.Actor, kind RecommendationKind) ([]matching.Candidate, error) {
	switch kind {
	case RecommendJobs:
		jobs, err := s.jobRepo.ListActive(ctx, actor.UniversityID, s.cfg.CandidateCap)
		if err != nil {
			return nil, fmt.Errorf("error loading job candidates: %w", err)
		}
		out := make([]matching.Candidate, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, matching.Candidate{
				ID:           j.ID,
				UniversityID: j.UniversityID,
				Skills:       j.RequiredSkills,
				Location:     deref(j.Location),
				JobTypes:     []string{string(j.JobType)},
				Payload:      j,
			})
		}
		return out, nil

	case RecommendMentors, RecommendConnections:
		filter := models.ProfileFilter{
			UniversityID: actor.UniversityID,
			ExcludeUser:  actor.UserID,
			Limit:        s.cfg.CandidateCap,
		}
		if kind == RecommendMentors {
			filter.Role = models.RoleAlumni
			filter.MentorsOnly = true
		}
		profiles, err := s.profileRepo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("error loading %s candidates: %w", kind, err)
		}
		out := make([]matching.Candidate, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, matching.Candidate{
				ID:           p.ID,
				UniversityID: p.UniversityID,
				Skills:       p.Profile.Skills,
				Location:     deref(p.Profile.Location),
				JobTypes:     p.Profile.PreferredJobTypes,
				Payload:      p.Card(),
			})
		}
		return out, nil
	}
	return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown recommendation kind %q", kind))
}

func subjectFromProfile(p *models.UserProfile) matching.Subject {
	return matching.Subject{
		UserID:            p.ID,
		UniversityID:      p.UniversityID,
		Skills:            p.Profile.Skills,
		Interests:         p.Profile.Interests,
		Location:          deref(p.Profile.Location),
		PreferredJobTypes: p.Profile.PreferredJobTypes,
	}
}

func truncate(results []matching.Result, limit int) []matching.Result {
	if results == nil {
		return []matching.Result{}
	}
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
