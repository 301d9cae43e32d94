package store

import (
	"fmt"
	"strings"
)

// TenantScope builds the canonical filter for reads against a tenant-scoped
// model: rows belonging to the tenant and not soft-deleted. Extra conditions
// are merged on top; an explicit deleted_at key in extras overrides the
// default exclusion (querying the archive).
func TenantScope(tenantID string, extras ...map[string]any) map[string]any {
	filter := map[string]any{
		tenantIDColumn:  tenantID,
		deletedAtColumn: nil,
	}
	for _, extra := range extras {
		for k, v := range extra {
			filter[k] = v
		}
	}
	return filter
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Pagination describes a page request. Zero values mean "first page, default
// size".
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the pagination into valid bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > maxPageSize {
		p.PageSize = defaultPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size for the normalized page.
func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}

// TotalPages derives the page count for a result set of the given size.
func (p Pagination) TotalPages(total int64) int {
	size := int64(p.Normalize().PageSize)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return int(pages)
}

// OrderBy validates an ordering request against a column whitelist and
// returns the SQL order expression. Unlisted columns are rejected so caller
// input never reaches the query verbatim.
func OrderBy(column, direction string, allowed []string) (string, error) {
	column = strings.TrimSpace(column)
	permitted := false
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, column) {
			column = candidate
			permitted = true
			break
		}
	}
	if !permitted {
		return "", fmt.Errorf("ordering by %q is not permitted", column)
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return column + " ASC", nil
	case "desc":
		return column + " DESC", nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", direction)
	}
}
