package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/logger"
	"github.com/pressfold/pressfold/pkg/response"
)

// Recovery converts panics into the standard error envelope. The panic value
// is logged, never echoed to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []zap.Field{
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
				}
				if tenantID := c.GetString(CtxTenantIDKey); tenantID != "" {
					fields = append(fields, zap.String("tenant_id", tenantID))
				}
				logger.WithComponent("http").Error("request panicked", fields...)

				c.Abort()
				response.Error(c, apperrors.ErrInternalServer)
			}
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with the standard error envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, apperrors.New(
		"ROUTE_NOT_FOUND",
		fmt.Sprintf("route %s not found", c.Request.URL.Path),
		http.StatusNotFound,
	))
}
