package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/app"
	"github.com/pressfold/pressfold/internal/cache"
	"github.com/pressfold/pressfold/internal/handlers"
	"github.com/pressfold/pressfold/internal/middleware"
	"github.com/pressfold/pressfold/internal/monitoring"
	"github.com/pressfold/pressfold/internal/monitoring/checks"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// cacheClient may be nil; every cached path degrades to the database.
func NewRouter(db *gorm.DB, cacheClient *cache.Client, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	st, err := store.New(db, store.Config{
		TenantScopedModels: cfg.Store.TenantScopedModels,
		SlowQueryThreshold: cfg.Store.SlowQueryThreshold,
	})
	if err != nil {
		return nil, err
	}

	// Application errors are deterministic; only infrastructure failures are
	// worth a retry.
	runner, err := store.NewTxRunner(db,
		store.WithMaxAttempts(cfg.Store.TxMaxAttempts),
		store.WithTimeout(cfg.Store.TxTimeout),
		store.WithRetryClassifier(func(err error) bool {
			var appErr *apperrors.AppError
			return !errors.As(err, &appErr)
		}),
	)
	if err != nil {
		return nil, err
	}

	tenantSvc, err := services.NewTenantService(st, runner, cacheClient)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(st, runner, cacheClient)
	if err != nil {
		return nil, err
	}
	contentSvc, err := services.NewContentService(st, cacheClient)
	if err != nil {
		return nil, err
	}
	newsSvc, err := services.NewNewsService(st, cacheClient)
	if err != nil {
		return nil, err
	}
	merchSvc, err := services.NewMerchService(st, runner)
	if err != nil {
		return nil, err
	}
	auditSvc, err := services.NewAuditService(st)
	if err != nil {
		return nil, err
	}

	resolver := middleware.NewTenantResolver(tenantSvc, cfg.Auth.JWT.Secret)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.NoRoute(middleware.NotFoundHandler)

	registerHealthRoutes(r, db, cacheClient, cfg)

	// Tenant administration sits outside the tenant-scoped group.
	tenantHandler, err := handlers.NewTenantHandler(tenantSvc)
	if err != nil {
		return nil, err
	}
	tenants := r.Group("/api/tenants")
	{
		tenants.POST("", tenantHandler.Create)
		tenants.GET("", tenantHandler.List)
		tenants.GET("/:id", tenantHandler.Get)
		tenants.PATCH("/:id/status", tenantHandler.SetStatus)
		tenants.DELETE("/:id", tenantHandler.Delete)
	}

	api := r.Group("/api")
	api.Use(resolver.Middleware())

	userHandler, err := handlers.NewUserHandler(userSvc, resolver, cfg.Auth.JWT.TTL)
	if err != nil {
		return nil, err
	}
	users := api.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.POST("/login", userHandler.Login)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.POST("/:id/roles", userHandler.AssignRole)
		users.DELETE("/:id", userHandler.Deactivate)
	}

	contentHandler, err := handlers.NewContentHandler(contentSvc, auditSvc)
	if err != nil {
		return nil, err
	}
	content := api.Group("/content")
	{
		content.POST("", contentHandler.Create)
		content.GET("", contentHandler.List)
		content.GET("/:slug", contentHandler.Get)
		content.PATCH("/:slug", contentHandler.Update)
		content.POST("/:slug/publish", contentHandler.Publish)
		content.DELETE("/:slug", contentHandler.Delete)
	}

	newsHandler, err := handlers.NewNewsHandler(newsSvc)
	if err != nil {
		return nil, err
	}
	news := api.Group("/news")
	{
		news.POST("", newsHandler.Create)
		news.GET("/latest", newsHandler.Latest)
		news.GET("/:slug", newsHandler.Get)
		news.POST("/:slug/publish", newsHandler.Publish)
		news.DELETE("/:slug", newsHandler.Delete)
	}

	merchHandler, err := handlers.NewMerchHandler(merchSvc)
	if err != nil {
		return nil, err
	}
	merch := api.Group("/merch")
	{
		merch.POST("/categories", merchHandler.CreateCategory)
		merch.POST("/products", merchHandler.CreateProduct)
		merch.GET("/products", merchHandler.ListProducts)
		merch.GET("/products/:slug", merchHandler.GetProduct)
		merch.DELETE("/products/:slug", merchHandler.DeleteProduct)
		merch.POST("/stock", merchHandler.AdjustStock)
	}

	auditHandler, err := handlers.NewAuditHandler(auditSvc)
	if err != nil {
		return nil, err
	}
	api.GET("/audit", auditHandler.List)

	return r, nil
}

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, cacheClient *cache.Client, cfg *app.Config) {
	if !cfg.Monitoring.Health.Enabled {
		return
	}

	manager := monitoring.NewHealthManager()
	manager.RegisterReadiness(checks.Database(db, 2*time.Second))
	if cacheClient != nil {
		manager.RegisterReadiness(checks.Cache(cacheClient, 2*time.Second))
	}

	r.GET("/health", handlers.Health())
	r.GET("/ready", handlers.Readiness(manager))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}
