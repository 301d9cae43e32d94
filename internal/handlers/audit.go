package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/middleware"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	appErrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/response"
)

// AuditHandler exposes the tenant audit trail.
type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) (*AuditHandler, error) {
	if svc == nil {
		return nil, errors.New("audit handler: service is required")
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	opts := services.AuditListOptions{
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		UserID:   c.Query("user_id"),
		Page: store.Pagination{
			Page:     parseIntQuery(c, "page", 1),
			PageSize: parseIntQuery(c, "per_page", 0),
		},
	}

	entries, total, err := h.svc.List(requestContext(c), middleware.TenantIDFromContext(c), opts)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	page := opts.Page.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}
