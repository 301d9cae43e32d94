package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pressfold/pressfold/internal/middleware"
	"github.com/pressfold/pressfold/internal/services"
	"github.com/pressfold/pressfold/internal/store"
	appErrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/response"
)

const defaultTokenTTL = 15 * time.Minute

// UserHandler exposes tenant-scoped member endpoints, including login.
type UserHandler struct {
	svc      *services.UserService
	resolver *middleware.TenantResolver
	tokenTTL time.Duration
}

func NewUserHandler(svc *services.UserService, resolver *middleware.TenantResolver, tokenTTL time.Duration) (*UserHandler, error) {
	if svc == nil {
		return nil, errors.New("user handler: service is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserHandler{svc: svc, resolver: resolver, tokenTTL: tokenTTL}, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid4"`
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body services.CreateUserInput
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.svc.Create(requestContext(c), middleware.TenantIDFromContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)

	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.svc.Authenticate(requestContext(c), tenantID, body.Email, body.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"user": user}
	if h.resolver != nil {
		token, tokenErr := h.resolver.IssueToken(tenantID, user.ID, h.tokenTTL)
		if tokenErr == nil {
			payload["token"] = token
		}
	}
	response.Success(c, http.StatusOK, payload)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page := store.Pagination{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", 0),
	}

	users, total, err := h.svc.List(requestContext(c), middleware.TenantIDFromContext(c), page)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	page = page.Normalize()
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PageSize,
		Total:      total,
		TotalPages: page.TotalPages(total),
	})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetByID(requestContext(c), middleware.TenantIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/users/:id/roles
func (h *UserHandler) AssignRole(c *gin.Context) {
	var body assignRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.AssignRole(requestContext(c), middleware.TenantIDFromContext(c), c.Param("id"), body.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assigned": true})
}

// DELETE /api/users/:id
func (h *UserHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(requestContext(c), middleware.TenantIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
