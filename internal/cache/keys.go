package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TenantKey namespaces a cache entry under a tenant. Tenant-prefixed keys are
// the unit of group invalidation.
func TenantKey(tenantID, suffix string) string {
	return "tenant:" + tenantID + ":" + suffix
}

// UserKey namespaces a cache entry under a user.
func UserKey(userID, suffix string) string {
	return "user:" + userID + ":" + suffix
}

// InvalidateTenant removes every cache entry belonging to the tenant. Pattern
// deletion is the only supported group invalidation; there is no tag index.
func (c *Client) InvalidateTenant(ctx context.Context, tenantID string) int64 {
	return c.DeletePattern(ctx, TenantKey(tenantID, "*"))
}

// InvalidateUser removes every cache entry belonging to the user.
func (c *Client) InvalidateUser(ctx context.Context, userID string) int64 {
	return c.DeletePattern(ctx, UserKey(userID, "*"))
}

// GetJSON loads and unmarshals a cached value. Any failure, including a
// corrupt payload, reads as a miss.
func GetJSON[T any](ctx context.Context, c *Client, key string) (T, bool) {
	var out T

	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON marshals and stores a value. Returns true on success.
func SetJSON[T any](ctx context.Context, c *Client, key string, value T, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return c.Set(ctx, key, string(raw), ttl)
}
