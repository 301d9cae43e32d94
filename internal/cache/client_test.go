package cache

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the provider. When failing is set,
// every command errors, simulating an unreachable or misbehaving server.
type fakeRedis struct {
	data    map[string]string
	failing bool
	pings   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

var errFakeDown = errors.New("connection refused")

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	f.pings++
	if f.failing {
		return redis.NewStatusResult("", errFakeDown)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failing {
		return redis.NewStringResult("", errFakeDown)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.failing {
		return redis.NewStatusResult("", errFakeDown)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failing {
		return redis.NewIntResult(0, errFakeDown)
	}
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, _ int64) *redis.ScanCmd {
	if f.failing {
		return redis.NewScanCmdResult(nil, 0, errFakeDown)
	}
	var keys []string
	for key := range f.data {
		if ok, _ := path.Match(match, key); ok {
			keys = append(keys, key)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failing {
		return redis.NewIntResult(0, errFakeDown)
	}
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, _ time.Duration) *redis.BoolCmd {
	if f.failing {
		return redis.NewBoolResult(false, errFakeDown)
	}
	_, ok := f.data[key]
	return redis.NewBoolResult(ok, nil)
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.failing {
		return redis.NewIntResult(0, errFakeDown)
	}
	f.data[key] = "1"
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) Close() error { return nil }

func newFakeClient(t *testing.T, fake *fakeRedis) *Client {
	t.Helper()
	return newWithConn(fake, Config{Address: "fake:6379", ReconnectWait: time.Millisecond}, nil)
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newFakeClient(t, newFakeRedis())
	ctx := context.Background()

	require.True(t, c.Set(ctx, "greeting", "hello", time.Minute))

	val, ok := c.Get(ctx, "greeting")
	require.True(t, ok)
	require.Equal(t, "hello", val)

	_, ok = c.Get(ctx, "absent")
	require.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	c := newFakeClient(t, newFakeRedis())
	ctx := context.Background()

	type page struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	}

	require.True(t, SetJSON(ctx, c, "page", page{Slug: "home", Title: "Home"}, 0))

	got, ok := GetJSON[page](ctx, c, "page")
	require.True(t, ok)
	require.Equal(t, "home", got.Slug)

	// A corrupt payload reads as a miss, never a parse error.
	require.True(t, c.Set(ctx, "broken", "{not json", 0))
	_, ok = GetJSON[page](ctx, c, "broken")
	require.False(t, ok)
}

func TestTenantKeyIsolation(t *testing.T) {
	fake := newFakeRedis()
	c := newFakeClient(t, fake)
	ctx := context.Background()

	require.NotEqual(t, TenantKey("t1", "x"), TenantKey("t2", "x"))

	require.True(t, c.Set(ctx, TenantKey("t1", "pages"), "a", 0))
	require.True(t, c.Set(ctx, TenantKey("t1", "nav"), "b", 0))
	require.True(t, c.Set(ctx, TenantKey("t2", "pages"), "c", 0))

	removed := c.InvalidateTenant(ctx, "t1")
	require.Equal(t, int64(2), removed)

	_, ok := c.Get(ctx, TenantKey("t1", "pages"))
	require.False(t, ok)
	val, ok := c.Get(ctx, TenantKey("t2", "pages"))
	require.True(t, ok)
	require.Equal(t, "c", val)
}

func TestUserKeyInvalidation(t *testing.T) {
	c := newFakeClient(t, newFakeRedis())
	ctx := context.Background()

	require.True(t, c.Set(ctx, UserKey("u1", "profile"), "p", 0))
	require.Equal(t, int64(1), c.InvalidateUser(ctx, "u1"))
	require.Zero(t, c.InvalidateUser(ctx, "u1")) // empty match set is fine
}

func TestEveryOperationDegradesToSafeDefaults(t *testing.T) {
	fake := newFakeRedis()
	fake.failing = true
	c := newFakeClient(t, fake)
	ctx := context.Background()

	val, ok := c.Get(ctx, "k")
	require.False(t, ok)
	require.Empty(t, val)

	require.False(t, c.Set(ctx, "k", "v", 0))
	require.Zero(t, c.Delete(ctx, "k"))
	require.Zero(t, c.DeletePattern(ctx, "tenant:*"))
	require.False(t, c.Exists(ctx, "k"))
	require.False(t, c.Expire(ctx, "k", time.Minute))
	require.Zero(t, c.Increment(ctx, "k"))
	require.False(t, c.Ping(ctx))
}

func TestConnectGivesUpAfterBoundedAttempts(t *testing.T) {
	fake := newFakeRedis()
	fake.failing = true
	c := newFakeClient(t, fake)

	require.False(t, c.Connect(context.Background()))
	require.True(t, c.Degraded())
	require.Equal(t, maxConnectAttempts, fake.pings)

	// Once degraded, operations no-op even if the provider recovers.
	fake.failing = false
	require.False(t, c.Set(context.Background(), "k", "v", 0))
	_, ok := c.Get(context.Background(), "k")
	require.False(t, ok)
	require.False(t, c.Ping(context.Background()))
}

func TestConnectSucceedsOnHealthyProvider(t *testing.T) {
	fake := newFakeRedis()
	c := newFakeClient(t, fake)

	require.True(t, c.Connect(context.Background()))
	require.False(t, c.Degraded())
	require.Equal(t, 1, fake.pings)
}

func TestExistsExpireIncrement(t *testing.T) {
	c := newFakeClient(t, newFakeRedis())
	ctx := context.Background()

	require.False(t, c.Exists(ctx, "counter"))
	require.Equal(t, int64(1), c.Increment(ctx, "counter"))
	require.True(t, c.Exists(ctx, "counter"))
	require.True(t, c.Expire(ctx, "counter", time.Minute))
	require.False(t, c.Expire(ctx, "missing", time.Minute))
}

func TestNilSafety(t *testing.T) {
	var c *Client
	val, ok := c.Get(context.Background(), "k")
	require.False(t, ok)
	require.Empty(t, val)
}
