package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/cache"
	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/store"
	"github.com/pressfold/pressfold/pkg/crypto"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/validator"
)

// CreateUserInput carries the fields for registering a tenant member.
type CreateUserInput struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// UserService manages tenant members and their role assignments.
type UserService struct {
	store  *store.Store
	runner *store.TxRunner
	cache  *cache.Client
}

// NewUserService constructs a UserService. cache may be nil.
func NewUserService(st *store.Store, runner *store.TxRunner, cc *cache.Client) (*UserService, error) {
	if st == nil {
		return nil, errors.New("user service: store is required")
	}
	if runner == nil {
		return nil, errors.New("user service: tx runner is required")
	}
	return &UserService{store: st, runner: runner, cache: cc}, nil
}

// Create registers a user under a tenant. The password is bcrypt-hashed
// before it touches the database.
func (s *UserService) Create(ctx context.Context, tenantID string, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if tenantID == "" {
		return nil, apperrors.ErrTenantRequired
	}

	var existing models.User
	err := s.store.FindOne(ctx, "User", store.TenantScope(tenantID, map[string]any{"email": input.Email}), &existing)
	if err == nil {
		return nil, apperrors.New("EMAIL_TAKEN", "email is already registered", 409)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user service: check email: %w", err)
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		TenantID:  tenantID,
		Email:     input.Email,
		Username:  strings.TrimSpace(input.Username),
		Password:  hashed,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  true,
	}
	if err := s.store.Create(ctx, "User", &user); err != nil {
		return nil, fmt.Errorf("user service: create: %w", err)
	}
	return &user, nil
}

// Authenticate verifies a user's credentials and stamps last_login_at.
func (s *UserService) Authenticate(ctx context.Context, tenantID, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	err := s.store.FindOne(ctx, "User", store.TenantScope(tenantID, map[string]any{"email": email}), &user)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("user service: lookup: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrForbidden
	}
	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrForbidden
	}

	now := time.Now().UTC()
	if _, err := s.store.Update(ctx, "User",
		map[string]any{"id": user.ID},
		map[string]any{"last_login_at": now},
	); err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

// GetByID loads a live user within a tenant.
func (s *UserService) GetByID(ctx context.Context, tenantID, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.store.FindOne(ctx, "User", store.TenantScope(tenantID, map[string]any{"id": id}), &user)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get: %w", err)
	}
	return &user, nil
}

// List returns live users for a tenant.
func (s *UserService) List(ctx context.Context, tenantID string, page store.Pagination) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)
	if tenantID == "" {
		return nil, 0, apperrors.ErrTenantRequired
	}
	page = page.Normalize()

	filter := store.TenantScope(tenantID)

	var total int64
	if err := s.store.DB().WithContext(ctx).Model(&models.User{}).Where(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count: %w", err)
	}

	var users []models.User
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "User",
		Action: store.ActionFindMany,
		Filter: filter,
		Dest:   &users,
		Order:  "created_at DESC",
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("user service: list: %w", err)
	}
	return users, total, nil
}

// AssignRole attaches a role to a user. Both must belong to the same tenant.
func (s *UserService) AssignRole(ctx context.Context, tenantID, userID, roleID string) error {
	ctx = ensureContext(ctx)

	return s.runner.Run(ctx, func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		var user models.User
		err := txStore.FindOne(ctx, "User", store.TenantScope(tenantID, map[string]any{"id": userID}), &user)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		var role models.Role
		err = txStore.FindOne(ctx, "Role", store.TenantScope(tenantID, map[string]any{"id": roleID}), &role)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		return tx.WithContext(ctx).Model(&user).Association("Roles").Append(&role)
	})
}

// Deactivate soft-deletes a user and drops any cached state for them.
func (s *UserService) Deactivate(ctx context.Context, tenantID, id string) error {
	ctx = ensureContext(ctx)

	affected, err := s.store.Delete(ctx, "User", store.TenantScope(tenantID, map[string]any{"id": id}))
	if err != nil {
		return fmt.Errorf("user service: deactivate: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	s.cache.InvalidateUser(ctx, id)
	return nil
}
