package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-planner-api/api/swagger"
	"github.com/noah-isme/course-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Planner *handler.PlannerHandler
	Catalog *handler.CatalogHandler
	Export  *handler.ExportHandler
	Metrics *handler.MetricsHandler
}

// Options configures the router.
type Options struct {
	Env            string
	APIPrefix      string
	AllowedOrigins []string
	AdminEnabled   bool
	Logger         *zap.Logger
	Observer       internalmiddleware.HTTPObserver
	Auth           internalmiddleware.TokenValidator
}

// New builds the gin engine serving the planner API.
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(opts.Observer))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.GET("/courses", h.Catalog.Courses)
	api.GET("/courses/:code", h.Catalog.Course)
	api.POST("/schedule", h.Planner.Schedule)
	api.POST("/schedule/raw", h.Planner.Raw)
	api.POST("/schedule/export", h.Export.Export)
	api.POST("/submit", h.Planner.Submit)

	if opts.AdminEnabled && opts.Auth != nil {
		admin := api.Group("/admin")
		admin.Use(internalmiddleware.JWT(opts.Auth), internalmiddleware.RequireRoles(models.RoleAdmin))
		admin.POST("/catalog/reload", h.Catalog.Reload)
		admin.GET("/catalog/reload/:id", h.Catalog.ReloadStatus)
	}

	return r
}
