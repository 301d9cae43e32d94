package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pressfold/pressfold/internal/database/testutil"
	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	"github.com/pressfold/pressfold/pkg/logger"
)

func newTenantRouter(t *testing.T, secret string) (*gin.Engine, *services.TenantService, *TenantResolver) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(t, logger.Init("debug"))

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	st, err := store.New(db, store.Config{})
	require.NoError(t, err)
	runner, err := store.NewTxRunner(db)
	require.NoError(t, err)
	tenants, err := services.NewTenantService(st, runner, nil)
	require.NoError(t, err)

	resolver := NewTenantResolver(tenants, secret)

	r := gin.New()
	r.Use(resolver.Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		tenant, ok := TenantFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, tenant.Slug)
	})
	return r, tenants, resolver
}

func activeTenant(t *testing.T, tenants *services.TenantService, slug string) *models.Tenant {
	t.Helper()

	tenant, err := tenants.Create(context.Background(), services.CreateTenantInput{Slug: slug, Name: "Tenant " + slug})
	require.NoError(t, err)
	require.NoError(t, tenants.SetStatus(context.Background(), tenant.ID, models.TenantStatusActive))
	return tenant
}

func TestTenantMiddlewareHeader(t *testing.T) {
	r, tenants, _ := newTenantRouter(t, "")
	tenant := activeTenant(t, tenants, "acme")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(TenantHeader, tenant.ID)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "acme", w.Body.String())
}

func TestTenantMiddlewareBearerToken(t *testing.T) {
	r, tenants, resolver := newTenantRouter(t, "test-secret")
	tenant := activeTenant(t, tenants, "acme")

	token, err := resolver.IssueToken(tenant.ID, "", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "acme", w.Body.String())
}

func TestTenantMiddlewareMissingTenant(t *testing.T) {
	r, _, _ := newTenantRouter(t, "test-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "TENANT_REQUIRED")
}

func TestTenantMiddlewareSuspendedTenant(t *testing.T) {
	r, tenants, _ := newTenantRouter(t, "")
	tenant := activeTenant(t, tenants, "acme")
	require.NoError(t, tenants.SetStatus(context.Background(), tenant.ID, models.TenantStatusSuspended))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(TenantHeader, tenant.ID)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "TENANT_SUSPENDED")
}

func TestTenantMiddlewareRejectsBadToken(t *testing.T) {
	r, tenants, _ := newTenantRouter(t, "test-secret")
	activeTenant(t, tenants, "acme")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	// A bad token does not fall back to any implicit tenant.
	require.Equal(t, http.StatusBadRequest, w.Code)
}
