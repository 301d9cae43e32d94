package checks

import (
	"context"
	"time"

	"github.com/pressfold/pressfold/internal/monitoring"
)

const defaultCacheTimeout = 2 * time.Second

// CachePinger is the slice of the cache client the probe needs. Ping reports
// false both when the server is unreachable and when the client has entered
// permanent degraded mode.
type CachePinger interface {
	Ping(ctx context.Context) bool
	Degraded() bool
}

// Cache returns a readiness probe for the cache. The cache degrading is never
// fatal: the service keeps running without it, so the probe reports degraded
// rather than down.
func Cache(client CachePinger, timeout time.Duration) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultCacheTimeout
	}

	return monitoring.Check{Name: "cache", Run: func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if client == nil {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusUp,
				Details: "cache disabled",
			}
		}
		if client.Degraded() {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: "cache degraded, serving without cache",
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if !client.Ping(probeCtx) {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "cache unreachable",
				Duration: time.Since(start),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Duration: time.Since(start)}
	}}
}
