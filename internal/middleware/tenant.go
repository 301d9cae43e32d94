package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/services"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/response"
)

const (
	// CtxTenantIDKey holds the resolved tenant ID in the gin context.
	CtxTenantIDKey = "tenantID"
	// CtxTenantKey holds the resolved *models.Tenant in the gin context.
	CtxTenantKey = "tenant"
	// TenantHeader carries the tenant ID when no bearer token is present.
	TenantHeader = "X-Tenant-ID"
)

// TenantClaims are the JWT claims Pressfold issues and accepts.
type TenantClaims struct {
	jwt.RegisteredClaims

	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id,omitempty"`
}

// TenantResolver resolves the acting tenant for each request and refuses
// suspended or archived tenants.
type TenantResolver struct {
	tenants   *services.TenantService
	jwtSecret []byte
}

// NewTenantResolver constructs a TenantResolver. secret signs and verifies
// bearer tokens; an empty secret disables token resolution.
func NewTenantResolver(tenants *services.TenantService, secret string) *TenantResolver {
	return &TenantResolver{tenants: tenants, jwtSecret: []byte(secret)}
}

// Middleware resolves the tenant from the bearer token's tenant_id claim,
// falling back to the X-Tenant-ID header, and aborts when the tenant is
// missing or not active.
func (r *TenantResolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := r.tenantIDFromToken(c)
		if tenantID == "" {
			tenantID = strings.TrimSpace(c.GetHeader(TenantHeader))
		}
		if tenantID == "" {
			response.Error(c, apperrors.ErrTenantRequired)
			c.Abort()
			return
		}

		tenant, err := r.tenants.GetByID(c.Request.Context(), tenantID)
		if err != nil {
			response.Error(c, apperrors.ErrTenantRequired)
			c.Abort()
			return
		}
		if tenant.Status != models.TenantStatusActive {
			response.Error(c, apperrors.ErrTenantSuspended)
			c.Abort()
			return
		}

		c.Set(CtxTenantIDKey, tenant.ID)
		c.Set(CtxTenantKey, tenant)
		c.Next()
	}
}

func (r *TenantResolver) tenantIDFromToken(c *gin.Context) string {
	if len(r.jwtSecret) == 0 {
		return ""
	}

	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}

	claims := &TenantClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(authz[7:]), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	return claims.TenantID
}

// IssueToken signs a bearer token carrying the tenant (and optionally user)
// identity.
func (r *TenantResolver) IssueToken(tenantID, userID string, ttl time.Duration) (string, error) {
	if len(r.jwtSecret) == 0 {
		return "", errors.New("middleware: jwt secret not configured")
	}

	now := time.Now()
	claims := TenantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID,
		UserID:   userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.jwtSecret)
}

// TenantFromContext returns the tenant resolved by the middleware.
func TenantFromContext(c *gin.Context) (*models.Tenant, bool) {
	v, ok := c.Get(CtxTenantKey)
	if !ok {
		return nil, false
	}
	tenant, ok := v.(*models.Tenant)
	return tenant, ok
}

// TenantIDFromContext returns the resolved tenant ID, empty when unresolved.
func TenantIDFromContext(c *gin.Context) string {
	return c.GetString(CtxTenantIDKey)
}
