package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/pressfold/pressfold/internal/database/testutil"
	"github.com/pressfold/pressfold/internal/models"
)

func seedSweepFixture(t *testing.T, db *gorm.DB, now time.Time) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{Slug: "acme", Name: "Acme", Status: models.TenantStatusActive}
	require.NoError(t, db.Create(tenant).Error)

	oldMark := now.AddDate(0, 0, -60)
	freshMark := now.AddDate(0, 0, -5)

	rows := []models.Content{
		{TenantID: tenant.ID, Slug: "expired", Title: "Expired", Status: models.ContentStatusArchived, DeletedAt: &oldMark},
		{TenantID: tenant.ID, Slug: "recent", Title: "Recent", Status: models.ContentStatusArchived, DeletedAt: &freshMark},
		{TenantID: tenant.ID, Slug: "live", Title: "Live", Status: models.ContentStatusPublished},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
	return tenant
}

func TestSweeperPurgeExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedSweepFixture(t, db, now)

	sweeper, err := NewSweeper(db,
		WithNow(func() time.Time { return now }),
		WithPurgeAfterDays(30),
	)
	require.NoError(t, err)

	removed, err := sweeper.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	// Only the expired mark is gone; the recent mark and the live row stay.
	var count int64
	require.NoError(t, db.Model(&models.Content{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	require.NoError(t, db.Model(&models.Content{}).Where("slug = ?", "expired").Count(&count).Error)
	require.Zero(t, count)
}

func TestSweeperTrimAuditLogs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tenant := seedSweepFixture(t, db, now)

	stale := models.AuditLog{
		TenantID:  tenant.ID,
		Action:    "content.delete",
		Result:    "success",
		CreatedAt: now.AddDate(0, 0, -120),
	}
	fresh := models.AuditLog{
		TenantID:  tenant.ID,
		Action:    "content.publish",
		Result:    "success",
		CreatedAt: now.AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	sweeper, err := NewSweeper(db,
		WithNow(func() time.Time { return now }),
		WithAuditRetentionDays(90),
	)
	require.NoError(t, err)

	removed, err := sweeper.TrimAuditLogs(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining []models.AuditLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "content.publish", remaining[0].Action)
}

func TestSweeperRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedSweepFixture(t, db, now)

	sweeper, err := NewSweeper(db, WithNow(func() time.Time { return now }))
	require.NoError(t, err)
	require.NoError(t, sweeper.RunOnce(context.Background()))
}

func TestSweeperStartStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	sweeper, err := NewSweeper(db, WithPurgeSchedule("@hourly"), WithAuditSchedule("@hourly"))
	require.NoError(t, err)
	require.NoError(t, sweeper.Start())

	stopCtx := sweeper.Stop()
	<-stopCtx.Done()
}
