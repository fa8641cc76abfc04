package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/unilink/internal/app/controllers"
	appMigrations "github.com/yigit/unilink/internal/app/migrations"
	appRepos "github.com/yigit/unilink/internal/app/repositories"
	appRoutes "github.com/yigit/unilink/internal/app/routes"
	appServices "github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/config"
	"github.com/yigit/unilink/internal/db"
	appMiddleware "github.com/yigit/unilink/internal/middleware"
	pkgAuth "github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/cache"
	"github.com/yigit/unilink/internal/pkg/email"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/logger"
	"github.com/yigit/unilink/internal/pkg/matching"
	"github.com/yigit/unilink/internal/pkg/validation"
	"github.com/yigit/unilink/internal/pkg/websocket"
	"github.com/yigit/unilink/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Cache       *cache.RedisCache
	Bus         eventbus.Bus
	Hub         *websocket.Hub
	Mailer      email.EmailService
	Engine      *matching.Engine
	Dispatcher  *appServices.NotificationDispatcher
	Controllers appRoutes.Controllers

	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	WSHandler      *websocket.Handler
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase establishes the database connection pool.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database.Pool, nil
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(pool, lgr).Up(ctx, appMigrations.Files())
	if err != nil {
		lgr.Error().Err(err).Int("applied", applied).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and seeds the default tenant.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool, lgr); err != nil {
		pool.Close()
		return nil, err
	}

	if err := SeedDefaults(ctx, cfg, appRepos.NewRepositories(pool), lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return pool, nil
}

// SeedDefaults creates the configured default university and admin.
func SeedDefaults(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return seed.CreateDefaultData(ctx, repos.UniversityRepository, repos.UserRepository, seed.Options{
		UniversityName:   cfg.Seed.UniversityName,
		UniversitySlug:   cfg.Seed.UniversitySlug,
		UniversityDomain: cfg.Seed.UniversityDomain,
		AdminEmail:       cfg.Seed.AdminEmail,
		AdminPassword:    cfg.Seed.AdminPassword,
	}, lgr)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	if cfg.Redis.Enabled {
		deps.Cache = cache.NewRedisCache(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "unilink:",
		}, lgr)
	} else {
		lgr.Info().Msg("Redis disabled, recommendations are computed on every request")
		deps.Cache = cache.NewDisabled()
	}

	if cfg.NATS.Enabled {
		bus, err := eventbus.NewNATSBus(cfg.NATS.URL, cfg.NATS.SubjectPrefix, lgr)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Bus = bus
	} else {
		lgr.Info().Msg("NATS disabled, using in-process event bus")
		deps.Bus = eventbus.NewLocalBus(lgr)
	}

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()
	deps.WSHandler = websocket.NewHandler(deps.Hub, func(c *gin.Context) (int64, error) {
		actor, err := appMiddleware.CurrentActor(c)
		return actor.UserID, err
	}, lgr)

	deps.Mailer = email.NewEmailService(email.Config{
		Provider:       cfg.Mail.Provider,
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
		FromEmail:      cfg.Mail.FromEmail,
		FromName:       cfg.Mail.FromName,
	}, lgr)

	deps.Engine = matching.NewEngine(matching.Options{
		MinScore:     cfg.Matching.MinScore,
		DefaultLimit: cfg.Matching.DefaultLimit,
		MaxLimit:     cfg.Matching.MaxLimit,
	})

	// Initialize services
	repos := deps.Repos
	recommendationService := appServices.NewRecommendationService(
		repos.ProfileRepository,
		repos.JobRepository,
		deps.Engine,
		deps.Cache,
		appServices.RecommendationConfig{
			CandidateCap: cfg.Matching.CandidateCap,
			CacheTTL:     helpers.ParseDuration(cfg.Matching.CacheTTL, 10*time.Minute),
		},
		logger.Component("recommendations"),
	)
	authService := appServices.NewAuthService(
		repos.UserRepository,
		repos.UniversityRepository,
		repos.ProfileRepository,
		repos.TokenRepository,
		deps.JWTService,
		logger.Component("auth"),
	)
	universityService := appServices.NewUniversityService(repos.UniversityRepository, logger.Component("universities"))
	profileService := appServices.NewProfileService(repos.ProfileRepository, repos.UserRepository, recommendationService, logger.Component("profiles"))
	eventService := appServices.NewEventService(repos.EventRepository, deps.Bus, logger.Component("events"))
	messagingService := appServices.NewMessagingService(repos.ConversationRepository, repos.UserRepository, deps.Bus, logger.Component("messaging"))
	postService := appServices.NewPostService(repos.PostRepository, repos.UserRepository, deps.Bus, logger.Component("posts"))
	notificationService := appServices.NewNotificationService(repos.NotificationRepository)
	newsletterService := appServices.NewNewsletterService(
		repos.NewsletterRepository,
		repos.UserRepository,
		deps.Mailer,
		deps.Bus,
		cfg.Mail.Concurrency,
		logger.Component("newsletters"),
	)
	examResultService := appServices.NewExamResultService(repos.ExamResultRepository, deps.Bus, logger.Component("exam_results"))
	jobService := appServices.NewJobService(repos.JobRepository, logger.Component("jobs"))

	deps.Dispatcher = appServices.NewNotificationDispatcher(deps.Bus, repos.NotificationRepository, deps.Hub, logger.Component("dispatcher"))
	if err := deps.Dispatcher.Start(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to start notification dispatcher: %w", err)
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:           appControllers.NewAuthController(authService, lgr),
		University:     appControllers.NewUniversityController(universityService, lgr),
		Profile:        appControllers.NewProfileController(profileService, lgr),
		Event:          appControllers.NewEventController(eventService, lgr),
		Messaging:      appControllers.NewMessagingController(messagingService, lgr),
		Post:           appControllers.NewPostController(postService, lgr),
		Notification:   appControllers.NewNotificationController(notificationService, lgr),
		Newsletter:     appControllers.NewNewsletterController(newsletterService, lgr),
		ExamResult:     appControllers.NewExamResultController(examResultService, lgr),
		Job:            appControllers.NewJobController(jobService, lgr),
		Recommendation: appControllers.NewRecommendationController(recommendationService, lgr),
		Health: appControllers.NewHealthController(map[string]appControllers.HealthCheck{
			"database": func(ctx context.Context) error { return dbPool.Ping(ctx) },
		}, lgr),
	}

	return deps, nil
}

// Close releases everything BuildDependencies started. The database pool is owned by the caller.
func (d *Dependencies) Close() {
	if d.RateLimiter != nil {
		d.RateLimiter.Close()
	}
	if d.Hub != nil {
		d.Hub.Stop()
	}
	if d.Bus != nil {
		if err := d.Bus.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Event bus close error")
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Cache close error")
		}
	}
}

// RegisterValidators installs the custom validation tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return validation.Register(v)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(),
	)
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}
	router.NoRoute(appMiddleware.NotFound())

	// Setup Swagger
	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler)

	return router, nil
}
