package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTenantScopeBuildsCanonicalFilter(t *testing.T) {
	filter := TenantScope("t1")
	require.Equal(t, map[string]any{"tenant_id": "t1", "deleted_at": nil}, filter)
}

func TestTenantScopeMergesExtras(t *testing.T) {
	filter := TenantScope("t1", map[string]any{"status": "published"})
	require.Equal(t, map[string]any{
		"tenant_id":  "t1",
		"deleted_at": nil,
		"status":     "published",
	}, filter)
}

func TestTenantScopeAllowsArchiveOverride(t *testing.T) {
	deleted := "not-null-sentinel"
	filter := TenantScope("t1", map[string]any{"deleted_at": deleted})
	require.Equal(t, deleted, filter["deleted_at"])
}

func TestTenantScopeDistinguishesTenants(t *testing.T) {
	require.NotEqual(t, TenantScope("t1"), TenantScope("t2"))
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, defaultPageSize, p.PageSize)

	p = Pagination{Page: -4, PageSize: 10_000}.Normalize()
	require.Equal(t, 1, p.Page)
	require.Equal(t, defaultPageSize, p.PageSize)

	p = Pagination{Page: 3, PageSize: 25}.Normalize()
	require.Equal(t, 50, p.Offset())
	require.Equal(t, 25, p.Limit())
}

func TestPaginationTotalPages(t *testing.T) {
	p := Pagination{PageSize: 25}
	require.Equal(t, 0, p.TotalPages(0))
	require.Equal(t, 1, p.TotalPages(25))
	require.Equal(t, 2, p.TotalPages(26))
}

func TestOrderByWhitelist(t *testing.T) {
	allowed := []string{"created_at", "title"}

	expr, err := OrderBy("created_at", "desc", allowed)
	require.NoError(t, err)
	require.Equal(t, "created_at DESC", expr)

	expr, err = OrderBy("Title", "", allowed)
	require.NoError(t, err)
	require.Equal(t, "title ASC", expr)

	_, err = OrderBy("password", "asc", allowed)
	require.Error(t, err)

	_, err = OrderBy("title", "sideways", allowed)
	require.Error(t, err)
}
