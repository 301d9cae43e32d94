package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/monitoring"
	"github.com/pressfold/pressfold/pkg/response"
)

// Health returns a simple status payload useful for liveness checks.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

// Readiness evaluates registered dependency probes. A down dependency yields
// 503 so load balancers stop routing; degraded stays 200.
func Readiness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := manager.EvaluateReadiness(requestContext(c))

		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
