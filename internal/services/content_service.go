package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/cache"
	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/internal/store"
	apperrors "github.com/pressfold/pressfold/pkg/errors"
	"github.com/pressfold/pressfold/pkg/validator"
)

const contentCacheTTL = 5 * time.Minute

func contentCacheKey(tenantID, slug string) string {
	return cache.TenantKey(tenantID, "content:"+slug)
}

// CreateContentInput captures the fields for a new content page.
type CreateContentInput struct {
	Slug     string          `json:"slug" validate:"required,min=1,max=200"`
	Title    string          `json:"title" validate:"required,min=1,max=300"`
	Body     json.RawMessage `json:"body"`
	AuthorID *string         `json:"author_id"`
}

// ContentListOptions filters and paginates content listings.
type ContentListOptions struct {
	Status          models.ContentStatus
	IncludeArchived bool // include soft-deleted rows
	Page            store.Pagination
}

// ContentService manages generic content pages for a tenant. Published pages
// are served from cache; all reads are tenant-scoped and exclude soft-deleted
// rows unless the archive is requested explicitly.
type ContentService struct {
	store *store.Store
	cache *cache.Client
}

// NewContentService constructs a ContentService.
func NewContentService(st *store.Store, cacheClient *cache.Client) (*ContentService, error) {
	if st == nil {
		return nil, errors.New("content service: store is required")
	}
	return &ContentService{store: st, cache: cacheClient}, nil
}

// Create stores a new draft page.
func (s *ContentService) Create(ctx context.Context, tenantID string, input CreateContentInput) (*models.Content, error) {
	ctx = ensureContext(ctx)

	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	input.Title = strings.TrimSpace(input.Title)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if tenantID == "" {
		return nil, apperrors.ErrTenantRequired
	}

	content := models.Content{
		TenantID: tenantID,
		Slug:     input.Slug,
		Title:    input.Title,
		Body:     datatypes.JSON(input.Body),
		Status:   models.ContentStatusDraft,
		AuthorID: input.AuthorID,
	}
	if err := s.store.Create(ctx, "Content", &content); err != nil {
		return nil, fmt.Errorf("content service: create: %w", err)
	}
	return &content, nil
}

// Get loads a live page by slug, consulting the cache first.
func (s *ContentService) Get(ctx context.Context, tenantID, slug string) (*models.Content, error) {
	ctx = ensureContext(ctx)

	key := contentCacheKey(tenantID, slug)
	if cached, ok := cache.GetJSON[models.Content](ctx, s.cache, key); ok {
		return &cached, nil
	}

	var content models.Content
	err := s.store.FindOne(ctx, "Content", store.TenantScope(tenantID, map[string]any{"slug": slug}), &content)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("content service: get: %w", err)
	}

	if content.Status == models.ContentStatusPublished {
		cache.SetJSON(ctx, s.cache, key, content, contentCacheTTL)
	}
	return &content, nil
}

// List returns pages for a tenant ordered by creation time descending.
func (s *ContentService) List(ctx context.Context, tenantID string, opts ContentListOptions) ([]models.Content, int64, error) {
	ctx = ensureContext(ctx)
	if tenantID == "" {
		return nil, 0, apperrors.ErrTenantRequired
	}
	page := opts.Page.Normalize()

	filter := store.TenantScope(tenantID)
	if opts.IncludeArchived {
		delete(filter, "deleted_at")
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	countQ := s.store.DB().WithContext(ctx).Model(&models.Content{}).Where(filter)
	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("content service: count: %w", err)
	}

	var contents []models.Content
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "Content",
		Action: store.ActionFindMany,
		Filter: filter,
		Dest:   &contents,
		Order:  "created_at DESC",
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("content service: list: %w", err)
	}
	return contents, total, nil
}

// Update applies field changes to a live page and drops its cache entry.
func (s *ContentService) Update(ctx context.Context, tenantID, slug string, data map[string]any) error {
	ctx = ensureContext(ctx)
	if len(data) == 0 {
		return apperrors.NewBadRequest("no fields to update")
	}

	affected, err := s.store.Update(ctx, "Content", store.TenantScope(tenantID, map[string]any{"slug": slug}), data)
	if err != nil {
		return fmt.Errorf("content service: update: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	s.cache.Delete(ctx, contentCacheKey(tenantID, slug))
	return nil
}

// Publish marks a page published and stamps the publication time.
func (s *ContentService) Publish(ctx context.Context, tenantID, slug string) error {
	return s.Update(ctx, tenantID, slug, map[string]any{
		"status":       string(models.ContentStatusPublished),
		"published_at": time.Now().UTC(),
	})
}

// Delete soft-deletes a page. The store pipeline rewrites this into a
// deleted_at update; the row stays queryable through the archive.
func (s *ContentService) Delete(ctx context.Context, tenantID, slug string) error {
	ctx = ensureContext(ctx)

	affected, err := s.store.Delete(ctx, "Content", map[string]any{"tenant_id": tenantID, "slug": slug})
	if err != nil {
		return fmt.Errorf("content service: delete: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	s.cache.Delete(ctx, contentCacheKey(tenantID, slug))
	return nil
}

// ArchiveAll soft-deletes every page of a tenant in one statement, marking
// them archived as it goes.
func (s *ContentService) ArchiveAll(ctx context.Context, tenantID string) (int64, error) {
	ctx = ensureContext(ctx)

	affected, err := s.store.DeleteMany(ctx, "Content",
		map[string]any{"tenant_id": tenantID, "deleted_at": nil},
		map[string]any{"status": string(models.ContentStatusArchived)},
	)
	if err != nil {
		return 0, fmt.Errorf("content service: archive all: %w", err)
	}

	s.cache.InvalidateTenant(ctx, tenantID)
	return affected, nil
}
