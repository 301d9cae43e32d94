package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pressfold/pressfold/pkg/logger"
	"github.com/pressfold/pressfold/pkg/metrics"
)

const (
	// maxConnectAttempts caps connection attempts; after that the client is
	// permanently degraded for the process lifetime.
	maxConnectAttempts = 5

	defaultDialTimeout   = 5 * time.Second
	defaultReconnectWait = 500 * time.Millisecond
)

// Config captures the connection parameters for the cache provider.
type Config struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	// DialTimeout bounds each connection attempt.
	DialTimeout time.Duration
	// ReconnectWait is the base delay between connection attempts; it doubles
	// after each failure.
	ReconnectWait time.Duration
}

// commander is the slice of the Redis command surface the client needs.
// Narrowed for test seams; *redis.Client satisfies it.
type commander interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Close() error
}

// Client wraps the key-value store with strict graceful degradation: every
// failure is caught at this boundary, logged, and turned into a safe default
// (miss, false, or zero). Cache unavailability must never abort a caller's
// request.
type Client struct {
	conn     commander
	cfg      Config
	log      *zap.Logger
	degraded atomic.Bool
}

// New constructs a client for the configured provider. The connection is
// established lazily; call Connect during startup to fail over early.
func New(cfg Config) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaultReconnectWait
	}

	opts := &redis.Options{
		Addr:        cfg.Address,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &Client{
		conn: redis.NewClient(opts),
		cfg:  cfg,
		log:  logger.WithComponent("cache"),
	}
}

// newWithConn wires an explicit command surface; used by tests.
func newWithConn(conn commander, cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaultReconnectWait
	}
	return &Client{conn: conn, cfg: cfg, log: log}
}

// Connect verifies connectivity with bounded attempts. After the attempt cap
// the client marks itself permanently degraded and all operations become
// no-ops. The return value reports whether the provider answered.
func (c *Client) Connect(ctx context.Context) bool {
	if c.conn == nil {
		c.degraded.Store(true)
		return false
	}

	wait := c.cfg.ReconnectWait
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		err := c.conn.Ping(ctx).Err()
		if err == nil {
			c.log.Info("cache connected", zap.String("addr", c.cfg.Address))
			return true
		}

		c.log.Warn("cache connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxConnectAttempts),
			zap.Error(err),
		)

		if attempt == maxConnectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			c.degraded.Store(true)
			return false
		case <-time.After(wait):
		}
		wait *= 2
	}

	c.degraded.Store(true)
	c.log.Error("cache permanently degraded after repeated connection failures",
		zap.String("addr", c.cfg.Address))
	return false
}

// Degraded reports whether the client has given up on the provider.
func (c *Client) Degraded() bool {
	return c == nil || c.degraded.Load()
}

// Get returns the stored value. Misses, disconnection, and provider errors
// all come back as ("", false); no error ever escapes.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if c.unavailable() {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return "", false
	}

	val, err := c.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return "", false
	}
	if err != nil {
		c.fail("get", key, err)
		return "", false
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return val, true
}

// Set stores a value, with auto-expiry when ttl is positive. Returns true on
// success.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if c.unavailable() {
		return false
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := c.conn.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail("set", key, err)
		return false
	}
	return true
}

// Delete removes the given keys and returns how many existed.
func (c *Client) Delete(ctx context.Context, keys ...string) int64 {
	if c.unavailable() || len(keys) == 0 {
		return 0
	}

	removed, err := c.conn.Del(ctx, keys...).Result()
	if err != nil {
		c.fail("delete", keys[0], err)
		return 0
	}
	return removed
}

// DeletePattern removes every key matching the glob pattern, enumerating
// matches first. An empty match set is not an error.
func (c *Client) DeletePattern(ctx context.Context, pattern string) int64 {
	if c.unavailable() {
		return 0
	}

	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := c.conn.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.fail("delete-pattern", pattern, err)
			return removed
		}

		if len(keys) > 0 {
			n, err := c.conn.Del(ctx, keys...).Result()
			if err != nil {
				c.fail("delete-pattern", pattern, err)
				return removed
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			return removed
		}
	}
}

// Exists reports whether the key is present; false on any failure.
func (c *Client) Exists(ctx context.Context, key string) bool {
	if c.unavailable() {
		return false
	}

	n, err := c.conn.Exists(ctx, key).Result()
	if err != nil {
		c.fail("exists", key, err)
		return false
	}
	return n > 0
}

// Expire sets a TTL on an existing key; false on any failure.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if c.unavailable() {
		return false
	}

	ok, err := c.conn.Expire(ctx, key, ttl).Result()
	if err != nil {
		c.fail("expire", key, err)
		return false
	}
	return ok
}

// Increment atomically increments the key, returning the new value, or zero
// on any failure.
func (c *Client) Increment(ctx context.Context, key string) int64 {
	if c.unavailable() {
		return 0
	}

	val, err := c.conn.Incr(ctx, key).Result()
	if err != nil {
		c.fail("increment", key, err)
		return 0
	}
	return val
}

// Ping is the liveness probe used by the health surface. Never panics or
// errors.
func (c *Client) Ping(ctx context.Context) bool {
	if c.unavailable() {
		return false
	}
	return c.conn.Ping(ctx).Err() == nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) unavailable() bool {
	return c == nil || c.conn == nil || c.degraded.Load()
}

func (c *Client) fail(op, key string, err error) {
	metrics.CacheOperations.WithLabelValues(op, "error").Inc()
	c.log.Error("cache operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
