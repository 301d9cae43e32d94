package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pressfold/pressfold/internal/models"
)

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	require.NotNil(t, db)
	require.True(t, IsHealthy(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeedCreatesDefaultTenant(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))

	var tenant models.Tenant
	require.NoError(t, db.Where("slug = ?", "default").First(&tenant).Error)
	require.Equal(t, models.TenantStatusActive, tenant.Status)

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Where("tenant_id = ?", tenant.ID).Count(&roleCount).Error)
	require.Equal(t, int64(3), roleCount)

	// Seeding twice must not duplicate anything.
	require.NoError(t, SeedData(db))
	var tenantCount int64
	require.NoError(t, db.Model(&models.Tenant{}).Count(&tenantCount).Error)
	require.Equal(t, int64(1), tenantCount)
}

func TestAutoMigrateAndSeedRejectsNilHandle(t *testing.T) {
	require.Error(t, AutoMigrateAndSeed(nil))
}
