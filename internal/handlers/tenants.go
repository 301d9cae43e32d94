package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	appErrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/response"
)

// TenantHandler exposes tenant lifecycle endpoints. These sit outside the
// tenant-scoped API group; they administer tenants rather than act within one.
type TenantHandler struct {
	svc *services.TenantService
}

func NewTenantHandler(svc *services.TenantService) (*TenantHandler, error) {
	if svc == nil {
		return nil, errors.New("tenant handler: service is required")
	}
	return &TenantHandler{svc: svc}, nil
}

type setTenantStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE SUSPENDED PENDING ARCHIVED"`
}

// POST /api/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var body services.CreateTenantInput
	if !bindAndValidate(c, &body) {
		return
	}

	tenant, err := h.svc.Create(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tenant)
}

// GET /api/tenants
func (h *TenantHandler) List(c *gin.Context) {
	page := store.Pagination{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", 0),
	}

	tenants, total, err := h.svc.List(requestContext(c), page)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	page = page.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, tenants, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// GET /api/tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tenant)
}

// PATCH /api/tenants/:id/status
func (h *TenantHandler) SetStatus(c *gin.Context) {
	var body setTenantStatusRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.SetStatus(requestContext(c), c.Param("id"), models.TenantStatus(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": body.Status})
}

// DELETE /api/tenants/:id
func (h *TenantHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
