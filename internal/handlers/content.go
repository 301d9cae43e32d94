package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/middleware"
	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	appErrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/response"
)

// ContentHandler exposes tenant-scoped content endpoints.
type ContentHandler struct {
	svc   *services.ContentService
	audit *services.AuditService
}

func NewContentHandler(svc *services.ContentService, audit *services.AuditService) (*ContentHandler, error) {
	if svc == nil {
		return nil, errors.New("content handler: service is required")
	}
	return &ContentHandler{svc: svc, audit: audit}, nil
}

type updateContentRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=300"`
	Body  *string `json:"body"`
}

// POST /api/content
func (h *ContentHandler) Create(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)

	var body services.CreateContentInput
	if !bindAndValidate(c, &body) {
		return
	}

	content, err := h.svc.Create(requestContext(c), tenantID, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, tenantID, "content.create", "content/"+content.Slug)
	response.Success(c, http.StatusCreated, content)
}

// GET /api/content
func (h *ContentHandler) List(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)

	opts := services.ContentListOptions{
		Status:          models.ContentStatus(c.Query("status")),
		IncludeArchived: c.Query("archived") == "true",
		Page: store.Pagination{
			Page:     parseIntQuery(c, "page", 1),
			PageSize: parseIntQuery(c, "per_page", 0),
		},
	}

	contents, total, err := h.svc.List(requestContext(c), tenantID, opts)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	page := opts.Page.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, contents, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// GET /api/content/:slug
func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.svc.Get(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, content)
}

// PATCH /api/content/:slug
func (h *ContentHandler) Update(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	slug := c.Param("slug")

	var body updateContentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	data := map[string]any{}
	if body.Title != nil {
		data["title"] = *body.Title
	}
	if body.Body != nil {
		data["body"] = *body.Body
	}

	if err := h.svc.Update(requestContext(c), tenantID, slug, data); err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, tenantID, "content.update", "content/"+slug)
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// POST /api/content/:slug/publish
func (h *ContentHandler) Publish(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	slug := c.Param("slug")

	if err := h.svc.Publish(requestContext(c), tenantID, slug); err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, tenantID, "content.publish", "content/"+slug)
	response.Success(c, http.StatusOK, gin.H{"published": true})
}

// DELETE /api/content/:slug
func (h *ContentHandler) Delete(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	slug := c.Param("slug")

	if err := h.svc.Delete(requestContext(c), tenantID, slug); err != nil {
		response.Error(c, err)
		return
	}

	h.record(c, tenantID, "content.delete", "content/"+slug)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ContentHandler) record(c *gin.Context, tenantID, action, resource string) {
	if h.audit == nil {
		return
	}
	h.audit.Record(requestContext(c), services.AuditEntry{
		TenantID:  tenantID,
		Action:    action,
		Resource:  resource,
		IPAddress: c.ClientIP(),
	})
}
