package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/handler"
	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/router"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/migrations"
	"github.com/noah-isme/course-planner-api/pkg/cache"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/database"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

// App holds the wired services and the HTTP handler of the planner API.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sqlx.DB
	redis   *redis.Client
	metrics *service.MetricsService
	catalog *service.CatalogService
	handler http.Handler
}

// New connects the configured backends and wires services, handlers and routes.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger, metrics: service.NewMetricsService()}

	source, err := a.catalogSource(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cacheRepo service.CacheRepository
	if cfg.Planner.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, planner cache disabled", zap.Error(err))
		} else {
			a.redis = client
			cacheRepo = repository.NewCacheRepository(client, "planner:", logger)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, a.metrics, cfg.Planner.CacheTTL, logger, cacheRepo != nil)

	validate := validator.New()
	a.catalog = service.NewCatalogService(source, cacheSvc, a.metrics, logger)
	planner := service.NewPlannerService(a.catalog, cacheSvc, a.metrics, validate, logger, service.PlannerConfig{
		SearchCap:   cfg.Planner.SearchCap,
		ResponseCap: cfg.Planner.ResponseCap,
		DirectCap:   cfg.Planner.DirectCap,
		MaxItems:    cfg.Planner.MaxItems,
		CacheTTL:    cfg.Planner.CacheTTL,
	})
	exporter := service.NewExportService(a.catalog, validate, logger, nil, nil)
	auth := service.NewAuthService(validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})

	a.handler = router.New(router.Handlers{
		Planner: handler.NewPlannerHandler(planner),
		Catalog: handler.NewCatalogHandler(a.catalog),
		Export:  handler.NewExportHandler(exporter),
		Metrics: handler.NewMetricsHandler(a.metrics, a.catalog),
	}, router.Options{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AdminEnabled:   cfg.Admin.Enabled,
		Logger:         logger,
		Observer:       a.metrics,
		Auth:           auth,
	})

	return a, nil
}

func (a *App) catalogSource(ctx context.Context) (service.CatalogSource, error) {
	switch a.cfg.Catalog.Source {
	case "", config.CatalogSourceFile:
		return repository.NewCatalogFileRepository(a.cfg.Catalog.Path), nil
	case config.CatalogSourcePostgres:
		db, err := database.NewPostgres(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect catalog database: %w", err)
		}
		a.db = db
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		if len(applied) > 0 {
			a.logger.Info("migrations applied", zap.Strings("names", applied))
		}
		return repository.NewCatalogRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", a.cfg.Catalog.Source)
	}
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Start loads the initial catalog and starts the background reloader. A
// failed initial load leaves the API up but not ready.
func (a *App) Start(ctx context.Context) {
	if _, err := a.catalog.Load(ctx); err != nil {
		a.logger.Error("initial catalog load failed, readiness will report 503", zap.Error(err))
	}
	a.catalog.StartReloader(ctx, jobs.QueueConfig{
		Workers:    a.cfg.Catalog.ReloadWorkers,
		MaxRetries: a.cfg.Catalog.ReloadRetries,
		Logger:     a.logger,
	})
}

// Close stops background work and releases backend connections.
func (a *App) Close() {
	if a.catalog != nil {
		a.catalog.StopReloader()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("database close failed", zap.Error(err))
		}
	}
}
