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
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/validator"
)

const tenantCacheTTL = 5 * time.Minute

// CreateTenantInput captures the fields required to provision a tenant.
type CreateTenantInput struct {
	Slug string `json:"slug" validate:"required,min=2,max=63,lowercase,excludesall=:* "`
	Name string `json:"name" validate:"required,min=2,max=120"`
	Plan string `json:"plan" validate:"omitempty,oneof=FREE BASIC PRO ENTERPRISE"`
}

// TenantService manages the tenant lifecycle. Tenant deletion is a soft
// marker and only permitted once the tenant owns no active records.
type TenantService struct {
	store  *store.Store
	runner *store.TxRunner
	cache  *cache.Client
}

// NewTenantService constructs a TenantService.
func NewTenantService(st *store.Store, runner *store.TxRunner, cacheClient *cache.Client) (*TenantService, error) {
	if st == nil {
		return nil, errors.New("tenant service: store is required")
	}
	if runner == nil {
		return nil, errors.New("tenant service: tx runner is required")
	}
	return &TenantService{store: st, runner: runner, cache: cacheClient}, nil
}

// Create provisions a tenant in PENDING state.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	var existing models.Tenant
	err := s.store.FindOne(ctx, "Tenant", map[string]any{"slug": input.Slug}, &existing)
	switch {
	case err == nil:
		return nil, apperrors.ErrSlugTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("tenant service: check slug: %w", err)
	}

	plan := models.TenantPlan(input.Plan)
	if plan == "" {
		plan = models.TenantPlanFree
	}

	tenant := models.Tenant{
		Slug:   input.Slug,
		Name:   input.Name,
		Status: models.TenantStatusPending,
		Plan:   plan,
	}
	if err := s.store.Create(ctx, "Tenant", &tenant); err != nil {
		return nil, fmt.Errorf("tenant service: create: %w", err)
	}
	return &tenant, nil
}

// GetByID loads a tenant, serving repeat lookups from cache.
func (s *TenantService) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	key := cache.TenantKey(id, "meta")
	if cached, ok := cache.GetJSON[models.Tenant](ctx, s.cache, key); ok {
		return &cached, nil
	}

	var tenant models.Tenant
	err := s.store.FindOne(ctx, "Tenant", map[string]any{"id": id, "deleted_at": nil}, &tenant)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tenant service: get: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, tenant, tenantCacheTTL)
	return &tenant, nil
}

// GetBySlug loads a live tenant by its slug.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	err := s.store.FindOne(ctx, "Tenant", map[string]any{"slug": strings.ToLower(slug), "deleted_at": nil}, &tenant)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tenant service: get by slug: %w", err)
	}
	return &tenant, nil
}

// List returns live tenants, newest first.
func (s *TenantService) List(ctx context.Context, page store.Pagination) ([]models.Tenant, int64, error) {
	ctx = ensureContext(ctx)
	page = page.Normalize()

	var total int64
	if err := s.store.DB().WithContext(ctx).Model(&models.Tenant{}).Where("deleted_at IS NULL").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("tenant service: count: %w", err)
	}

	var tenants []models.Tenant
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "Tenant",
		Action: store.ActionFindMany,
		Filter: map[string]any{"deleted_at": nil},
		Dest:   &tenants,
		Order:  "created_at DESC",
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("tenant service: list: %w", err)
	}
	return tenants, total, nil
}

// SetStatus transitions a tenant between lifecycle states and drops its
// cached entries.
func (s *TenantService) SetStatus(ctx context.Context, id string, status models.TenantStatus) error {
	ctx = ensureContext(ctx)

	switch status {
	case models.TenantStatusActive, models.TenantStatusSuspended, models.TenantStatusPending, models.TenantStatusArchived:
	default:
		return apperrors.NewBadRequest(fmt.Sprintf("unknown tenant status %q", status))
	}

	affected, err := s.store.Update(ctx, "Tenant",
		map[string]any{"id": id, "deleted_at": nil},
		map[string]any{"status": string(status)},
	)
	if err != nil {
		return fmt.Errorf("tenant service: set status: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	s.cache.InvalidateTenant(ctx, id)
	return nil
}

// activeDependentModels are checked before a tenant may be soft-deleted.
var activeDependentModels = []any{
	&models.User{},
	&models.Content{},
	&models.NewsArticle{},
	&models.MerchProduct{},
}

// Delete soft-deletes a tenant. The dependent-count guard and the delete run
// in one retried transaction so a concurrent insert cannot slip between them.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		for _, model := range activeDependentModels {
			var count int64
			if err := tx.Model(model).
				Where("tenant_id = ? AND deleted_at IS NULL", id).
				Count(&count).Error; err != nil {
				return fmt.Errorf("tenant service: count dependents: %w", err)
			}
			if count > 0 {
				return apperrors.ErrTenantNotEmpty
			}
		}

		affected, err := s.store.WithTx(tx).Delete(ctx, "Tenant", map[string]any{"id": id, "deleted_at": nil})
		if err != nil {
			return fmt.Errorf("tenant service: delete: %w", err)
		}
		if affected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateTenant(ctx, id)
	return nil
}
