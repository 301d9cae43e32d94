package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/middleware"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/pkg/response"
)

// NewsHandler exposes tenant-scoped news endpoints.
type NewsHandler struct {
	svc *services.NewsService
}

func NewNewsHandler(svc *services.NewsService) (*NewsHandler, error) {
	if svc == nil {
		return nil, errors.New("news handler: service is required")
	}
	return &NewsHandler{svc: svc}, nil
}

// POST /api/news
func (h *NewsHandler) Create(c *gin.Context) {
	var body services.CreateArticleInput
	if !bindAndValidate(c, &body) {
		return
	}

	article, err := h.svc.Create(requestContext(c), middleware.TenantIDFromContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, article)
}

// GET /api/news/latest
func (h *NewsHandler) Latest(c *gin.Context) {
	articles, err := h.svc.Latest(requestContext(c), middleware.TenantIDFromContext(c), parseIntQuery(c, "limit", 10))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, articles)
}

// GET /api/news/:slug
func (h *NewsHandler) Get(c *gin.Context) {
	article, err := h.svc.Get(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, article)
}

// POST /api/news/:slug/publish
func (h *NewsHandler) Publish(c *gin.Context) {
	if err := h.svc.Publish(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"published": true})
}

// DELETE /api/news/:slug
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
