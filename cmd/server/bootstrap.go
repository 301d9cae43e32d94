package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/api"
	"github.com/pressfold/pressfold/internal/app"
	"github.com/pressfold/pressfold/internal/app/maintenance"
	"github.com/pressfold/pressfold/internal/cache"
	"github.com/pressfold/pressfold/internal/database"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Cache   *cache.Client
	Sweeper *maintenance.Sweeper
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, cache, maintenance jobs, and the
// HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = database.Open(databaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(stack.DB); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if cfg.Cache.Redis.Enabled {
		client := cache.New(cache.Config{
			Address:       cfg.Cache.Redis.Address,
			Username:      cfg.Cache.Redis.Username,
			Password:      cfg.Cache.Redis.Password,
			DB:            cfg.Cache.Redis.DB,
			TLS:           cfg.Cache.Redis.TLS,
			DialTimeout:   cfg.Cache.Redis.Timeout,
			ReconnectWait: cfg.Cache.Redis.ReconnectWait,
		})
		if client.Connect(ctx) {
			stack.Cache = client
			log.Info("cache connected", zap.String("addr", cfg.Cache.Redis.Address))
		} else {
			// The client is kept; every operation degrades to a safe no-op.
			stack.Cache = client
			log.Warn("cache unavailable, continuing without it",
				zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	if cfg.Retention.Enabled {
		stack.Sweeper, err = maintenance.NewSweeper(stack.DB,
			maintenance.WithPurgeAfterDays(cfg.Retention.PurgeAfterDays),
			maintenance.WithAuditRetentionDays(cfg.Retention.AuditRetentionDays),
			maintenance.WithPurgeSchedule(cfg.Retention.PurgeSchedule),
			maintenance.WithAuditSchedule(cfg.Retention.AuditSchedule),
		)
		if err != nil {
			return nil, fmt.Errorf("initialise maintenance: %w", err)
		}
		if err := stack.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, stack.Cache, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown releases the stack's resources in reverse initialisation order.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s.Sweeper != nil {
		stopCtx := s.Sweeper.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}

	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			log.Warn("cache close failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("database close failed", zap.Error(err))
			}
		}
	}
}

func databaseConfig(cfg *app.Config) database.Config {
	out := database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}

	var auth app.DBAuthConfig
	switch cfg.Database.Driver {
	case "postgres":
		auth = cfg.Database.Postgres
	case "mysql":
		auth = cfg.Database.MySQL
	default:
		return out
	}

	out.Host = auth.Host
	out.Port = auth.Port
	out.User = auth.Username
	out.Password = auth.Password
	out.Name = auth.Database
	out.Options = auth.Options
	return out
}
