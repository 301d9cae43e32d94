package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/store"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/validator"
)

// CreateVariantInput describes one purchasable variant of a product.
type CreateVariantInput struct {
	SKU        string          `json:"sku" validate:"required,min=1,max=64"`
	Options    json.RawMessage `json:"options"`
	PriceCents int64           `json:"price_cents" validate:"min=0"`
	Stock      int             `json:"stock" validate:"min=0"`
}

// CreateProductInput describes a product and its variants.
type CreateProductInput struct {
	Slug        string               `json:"slug" validate:"required,min=1,max=200"`
	Name        string               `json:"name" validate:"required,min=1,max=300"`
	Description string               `json:"description"`
	CategoryID  *string              `json:"category_id"`
	PriceCents  int64                `json:"price_cents" validate:"min=0"`
	Currency    string               `json:"currency" validate:"omitempty,len=3"`
	Variants    []CreateVariantInput `json:"variants" validate:"dive"`
}

// MerchService manages the merchandise catalog. Product writes that span
// multiple rows run through the transaction runner so partial failures roll
// back and transient errors retry.
type MerchService struct {
	store  *store.Store
	runner *store.TxRunner
}

// NewMerchService constructs a MerchService.
func NewMerchService(st *store.Store, runner *store.TxRunner) (*MerchService, error) {
	if st == nil {
		return nil, errors.New("merch service: store is required")
	}
	if runner == nil {
		return nil, errors.New("merch service: tx runner is required")
	}
	return &MerchService{store: st, runner: runner}, nil
}

// CreateCategory stores a catalog category.
func (s *MerchService) CreateCategory(ctx context.Context, tenantID, slug, name string, parentID *string) (*models.MerchCategory, error) {
	ctx = ensureContext(ctx)
	if tenantID == "" {
		return nil, apperrors.ErrTenantRequired
	}

	category := models.MerchCategory{
		TenantID: tenantID,
		Slug:     strings.TrimSpace(strings.ToLower(slug)),
		Name:     strings.TrimSpace(name),
		ParentID: parentID,
	}
	if category.Slug == "" || category.Name == "" {
		return nil, apperrors.NewBadRequest("category slug and name are required")
	}
	if err := s.store.Create(ctx, "MerchCategory", &category); err != nil {
		return nil, fmt.Errorf("merch service: create category: %w", err)
	}
	return &category, nil
}

// CreateProduct stores a product together with its variants in a single
// transaction.
func (s *MerchService) CreateProduct(ctx context.Context, tenantID string, input CreateProductInput) (*models.MerchProduct, error) {
	ctx = ensureContext(ctx)

	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if tenantID == "" {
		return nil, apperrors.ErrTenantRequired
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	product := models.MerchProduct{
		TenantID:    tenantID,
		Slug:        input.Slug,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		PriceCents:  input.PriceCents,
		Currency:    currency,
	}

	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		if err := txStore.Create(ctx, "MerchProduct", &product); err != nil {
			return err
		}

		for _, v := range input.Variants {
			variant := models.MerchVariant{
				TenantID:   tenantID,
				ProductID:  product.ID,
				SKU:        v.SKU,
				Options:    datatypes.JSON(v.Options),
				PriceCents: v.PriceCents,
				Stock:      v.Stock,
			}
			if variant.PriceCents == 0 {
				variant.PriceCents = product.PriceCents
			}
			if err := txStore.Create(ctx, "MerchVariant", &variant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merch service: create product: %w", err)
	}
	return &product, nil
}

// GetProduct loads a live product and its live variants.
func (s *MerchService) GetProduct(ctx context.Context, tenantID, slug string) (*models.MerchProduct, error) {
	ctx = ensureContext(ctx)

	var product models.MerchProduct
	err := s.store.FindOne(ctx, "MerchProduct", store.TenantScope(tenantID, map[string]any{"slug": slug}), &product)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("merch service: get product: %w", err)
	}

	if err := s.store.FindMany(ctx, "MerchVariant",
		store.TenantScope(tenantID, map[string]any{"product_id": product.ID}),
		&product.Variants,
	); err != nil {
		return nil, fmt.Errorf("merch service: load variants: %w", err)
	}
	return &product, nil
}

// ListProducts returns live products for a tenant.
func (s *MerchService) ListProducts(ctx context.Context, tenantID string, page store.Pagination) ([]models.MerchProduct, int64, error) {
	ctx = ensureContext(ctx)
	if tenantID == "" {
		return nil, 0, apperrors.ErrTenantRequired
	}
	page = page.Normalize()

	filter := store.TenantScope(tenantID)

	var total int64
	if err := s.store.DB().WithContext(ctx).Model(&models.MerchProduct{}).Where(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("merch service: count products: %w", err)
	}

	var products []models.MerchProduct
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "MerchProduct",
		Action: store.ActionFindMany,
		Filter: filter,
		Dest:   &products,
		Order:  "created_at DESC",
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("merch service: list products: %w", err)
	}
	return products, total, nil
}

// AdjustStock changes a variant's stock level transactionally, refusing to go
// negative.
func (s *MerchService) AdjustStock(ctx context.Context, tenantID, sku string, delta int) (int, error) {
	ctx = ensureContext(ctx)

	var newStock int
	err := s.runner.Run(ctx, func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		var variant models.MerchVariant
		err := txStore.FindOne(ctx, "MerchVariant", store.TenantScope(tenantID, map[string]any{"sku": sku}), &variant)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		newStock = variant.Stock + delta
		if newStock < 0 {
			return apperrors.NewBadRequest("insufficient stock")
		}

		_, err = txStore.Update(ctx, "MerchVariant",
			map[string]any{"id": variant.ID},
			map[string]any{"stock": newStock},
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

// DeleteProduct soft-deletes a product and all of its variants in one
// transaction.
func (s *MerchService) DeleteProduct(ctx context.Context, tenantID, slug string) error {
	ctx = ensureContext(ctx)

	return s.runner.Run(ctx, func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		var product models.MerchProduct
		err := txStore.FindOne(ctx, "MerchProduct", store.TenantScope(tenantID, map[string]any{"slug": slug}), &product)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := txStore.Delete(ctx, "MerchProduct", map[string]any{"id": product.ID}); err != nil {
			return err
		}

		_, err = txStore.DeleteMany(ctx, "MerchVariant",
			map[string]any{"product_id": product.ID, "deleted_at": nil},
			nil,
		)
		return err
	})
}
