package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/mobility/internal/app/auth"
	appControllers "github.com/yigit/mobility/internal/app/controllers"
	appMigrations "github.com/yigit/mobility/internal/app/migrations"
	appRepos "github.com/yigit/mobility/internal/app/repositories"
	appRoutes "github.com/yigit/mobility/internal/app/routes"
	appServices "github.com/yigit/mobility/internal/app/services"
	"github.com/yigit/mobility/internal/app/workflow"
	"github.com/yigit/mobility/internal/config"
	"github.com/yigit/mobility/internal/db"
	appMiddleware "github.com/yigit/mobility/internal/middleware"
	pkgAuth "github.com/yigit/mobility/internal/pkg/auth"
	"github.com/yigit/mobility/internal/pkg/cache"
	"github.com/yigit/mobility/internal/pkg/filestorage"
	"github.com/yigit/mobility/internal/pkg/logger"
	"github.com/yigit/mobility/internal/pkg/validation"
	"github.com/yigit/mobility/internal/pkg/webhook"
	"github.com/yigit/mobility/internal/seed"
)

// blobRoutePrefix is the path the local storage driver signs links for
const blobRoutePrefix = "/api/v1/blobs"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Storage      filestorage.BlobStorage
	LocalStorage *filestorage.LocalStorage
	Cache        cache.Cache
	redis        *cache.RedisCache

	AuthService         *appServices.AuthService
	ReferenceService    appServices.ReferenceService
	ApplicationService  appServices.ApplicationService
	CourseService       appServices.CourseService
	FileService         appServices.FileService
	MessageService      appServices.MessageService
	NotificationService appServices.NotificationService
	StatsService        appServices.StatsService
	Events              appServices.EventDispatcher

	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// Close releases the optional external clients
func (d *Dependencies) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Database.Seed {
		if err := seed.CreateDefaultData(ctx, dbPool, cfg.Database.SeedPassword, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// SetupStorage picks the blob store of the configured driver
func SetupStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.BlobStorage, *filestorage.LocalStorage, error) {
	storageLogger := lgr.With().Str("component", "storage").Str("driver", cfg.Storage.Driver).Logger()

	if cfg.Storage.Driver == "s3" {
		s3, err := filestorage.NewS3Storage(filestorage.S3Config{
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			PathStyle: cfg.Storage.PathStyle,
		}, storageLogger)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	}

	baseURL := strings.TrimRight(cfg.Server.PublicBaseURL, "/") + blobRoutePrefix
	local, err := filestorage.NewLocalStorage(cfg.Storage.Path, baseURL, cfg.StorageSigningKey(), storageLogger)
	if err != nil {
		return nil, nil, err
	}
	return local, local, nil
}

// SetupCache connects to redis when a URL is configured. A failed connection
// only disables caching.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (cache.Cache, *cache.RedisCache) {
	if cfg.Redis.URL == "" {
		lgr.Info().Msg("Redis not configured, statistics are computed on every request")
		return cache.Noop{}, nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, statistics cache disabled")
		return cache.Noop{}, nil
	}
	lgr.Info().Msg("Redis statistics cache enabled")
	return rc, rc
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	repos := deps.Repos

	var err error
	deps.Storage, deps.LocalStorage, err = SetupStorage(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.Cache, deps.redis = SetupCache(ctx, cfg, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(repos.ApplicationRepository, logger.Component("authz"))

	badges := workflow.FrenchBadges
	if len(cfg.Workflow.Labels) > 0 {
		overrides := make(map[string]workflow.Badge, len(cfg.Workflow.Labels))
		for status, b := range cfg.Workflow.Labels {
			overrides[status] = workflow.Badge{Label: b.Label, Color: b.Color}
		}
		badges = badges.Merge(overrides)
	}

	hook := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout, lgr)
	deps.Events = appServices.NewEventDispatcher(
		repos.ProfileRepository,
		repos.ApplicationRepository,
		repos.NotificationRepository,
		hook,
		cfg.Notifications.AllEvents,
		logger.Component("events"),
	)
	deps.StatsService = appServices.NewStatsService(repos.ApplicationRepository, deps.Cache, cfg.Redis.StatsTTL, logger.Component("stats"))

	deps.AuthService = appServices.NewAuthService(
		repos.ProfileRepository,
		repos.ReferenceRepository,
		deps.JWTService,
		validation.NewEmailPolicy(cfg.Workflow.EmailDomains),
		logger.Component("auth"),
	)
	deps.ReferenceService = appServices.NewReferenceService(repos.ReferenceRepository, repos.ProfileRepository)
	deps.ApplicationService = appServices.NewApplicationService(appServices.ApplicationDeps{
		Applications: repos.ApplicationRepository,
		Profiles:     repos.ProfileRepository,
		Reference:    repos.ReferenceRepository,
		Courses:      repos.CourseRepository,
		Files:        repos.FileRepository,
		Messages:     repos.MessageRepository,
		Authz:        deps.AuthzService,
		Events:       deps.Events,
		Stats:        deps.StatsService,
		Badges:       badges,
		RequiredECTS: cfg.Workflow.RequiredECTS,
	}, logger.Component("applications"))
	deps.CourseService = appServices.NewCourseService(repos.CourseRepository, deps.AuthzService, logger.Component("courses"))
	deps.FileService = appServices.NewFileService(
		repos.FileRepository,
		deps.Storage,
		deps.AuthzService,
		validation.NewFilePolicy(cfg.Workflow.MaxUploadBytes),
		cfg.Storage.SignedURLTTL,
		logger.Component("files"),
	)
	deps.MessageService = appServices.NewMessageService(
		repos.MessageRepository,
		repos.ProfileRepository,
		deps.AuthzService,
		deps.Events,
		logger.Component("messages"),
	)
	deps.NotificationService = appServices.NewNotificationService(repos.NotificationRepository, logger.Component("notifications"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, lgr)

	deps.Controllers = &appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Reference:    appControllers.NewReferenceController(deps.ReferenceService),
		Application:  appControllers.NewApplicationController(deps.ApplicationService, lgr),
		Course:       appControllers.NewCourseController(deps.CourseService),
		File:         appControllers.NewFileController(deps.FileService, lgr),
		Message:      appControllers.NewMessageController(deps.MessageService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Stats:        appControllers.NewStatsController(deps.StatsService),
		Webhook:      appControllers.NewWebhookController(deps.Events),
	}
	if deps.LocalStorage != nil {
		deps.Controllers.Blob = appControllers.NewBlobController(deps.LocalStorage, lgr)
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery(lgr), appMiddleware.RequestLogger(logger.Component("http")))
	router.MaxMultipartMemory = cfg.Workflow.MaxUploadBytes + 1<<20

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, healthHandler(dbPool))

	return router, nil
}

func healthHandler(dbPool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := appRepos.Ping(ctx, dbPool); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
