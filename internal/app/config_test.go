package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, time.Second, cfg.Store.SlowQueryThreshold)
	require.Equal(t, 3, cfg.Store.TxMaxAttempts)
	require.Empty(t, cfg.Store.TenantScopedModels)
	require.True(t, cfg.Retention.Enabled)
	require.Equal(t, 30, cfg.Retention.PurgeAfterDays)
	require.Equal(t, 90, cfg.Retention.AuditRetentionDays)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9090
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.example.com
    port: 5433
    database: pressfold
    username: press
    password: fold
cache:
  redis:
    enabled: true
    address: redis.example.com:6380
    timeout: 2s
store:
  slow_query_threshold: 250ms
  tx_max_attempts: 5
  tenant_scoped_models: User,Content
auth:
  jwt:
    secret: config-secret
retention:
  purge_after_days: 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, 250*time.Millisecond, cfg.Store.SlowQueryThreshold)
	require.Equal(t, 5, cfg.Store.TxMaxAttempts)
	require.Equal(t, []string{"User", "Content"}, cfg.Store.TenantScopedModels)
	require.Equal(t, "config-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 7, cfg.Retention.PurgeAfterDays)
	// Unset keys keep their defaults.
	require.Equal(t, 90, cfg.Retention.AuditRetentionDays)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PRESSFOLD_SERVER_PORT", "7001")
	t.Setenv("PRESSFOLD_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7001, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(""))
	require.NoError(t, ConfigureLogging("debug"))
	// Unknown levels fall back to info rather than failing startup.
	require.NoError(t, ConfigureLogging("not-a-level"))
}
