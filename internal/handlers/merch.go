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

// MerchHandler exposes tenant-scoped merchandise endpoints.
type MerchHandler struct {
	svc *services.MerchService
}

func NewMerchHandler(svc *services.MerchService) (*MerchHandler, error) {
	if svc == nil {
		return nil, errors.New("merch handler: service is required")
	}
	return &MerchHandler{svc: svc}, nil
}

type adjustStockRequest struct {
	SKU   string `json:"sku" validate:"required"`
	Delta int    `json:"delta" validate:"required"`
}

type createCategoryRequest struct {
	Slug     string  `json:"slug" validate:"required,min=1,max=200"`
	Name     string  `json:"name" validate:"required,min=1,max=300"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// POST /api/merch/categories
func (h *MerchHandler) CreateCategory(c *gin.Context) {
	var body createCategoryRequest
	if !bindAndValidate(c, &body) {
		return
	}

	category, err := h.svc.CreateCategory(requestContext(c), middleware.TenantIDFromContext(c), body.Slug, body.Name, body.ParentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// POST /api/merch/products
func (h *MerchHandler) CreateProduct(c *gin.Context) {
	var body services.CreateProductInput
	if !bindAndValidate(c, &body) {
		return
	}

	product, err := h.svc.CreateProduct(requestContext(c), middleware.TenantIDFromContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// GET /api/merch/products
func (h *MerchHandler) ListProducts(c *gin.Context) {
	page := store.Pagination{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", 0),
	}

	products, total, err := h.svc.ListProducts(requestContext(c), middleware.TenantIDFromContext(c), page)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	page = page.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// GET /api/merch/products/:slug
func (h *MerchHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// POST /api/merch/stock
func (h *MerchHandler) AdjustStock(c *gin.Context) {
	var body adjustStockRequest
	if !bindAndValidate(c, &body) {
		return
	}

	stock, err := h.svc.AdjustStock(requestContext(c), middleware.TenantIDFromContext(c), body.SKU, body.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sku": body.SKU, "stock": stock})
}

// DELETE /api/merch/products/:slug
func (h *MerchHandler) DeleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(requestContext(c), middleware.TenantIDFromContext(c), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
