package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/database/testutil"
	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/store"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
)

func newTestStore(t *testing.T) (*store.Store, *store.TxRunner, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	st, err := store.New(db, store.Config{})
	require.NoError(t, err)

	// Mirror production wiring: application errors are deterministic and not
	// worth retrying.
	runner, err := store.NewTxRunner(db, store.WithRetryClassifier(func(err error) bool {
		var appErr *apperrors.AppError
		return !errors.As(err, &appErr)
	}))
	require.NoError(t, err)

	return st, runner, db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		Slug:   slug,
		Name:   slug,
		Status: models.TenantStatusActive,
		Plan:   models.TenantPlanFree,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}
