package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/pkg/metrics"
)

// Label used for requests that matched no registered route. Recording the raw
// URL of unmatched requests would let path probing grow the series set without
// bound.
const unmatchedRoute = "unmatched"

// Metrics observes per-route request latency. Matched requests are labelled
// with the route template, not the concrete URL, so per-tenant and per-id
// paths share a series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		metrics.APILatency.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
