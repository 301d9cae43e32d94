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

const newsCacheTTL = time.Minute

func latestNewsCacheKey(tenantID string) string {
	return cache.TenantKey(tenantID, "news:latest")
}

// CreateArticleInput captures the fields for a news article.
type CreateArticleInput struct {
	Slug     string  `json:"slug" validate:"required,min=1,max=200"`
	Title    string  `json:"title" validate:"required,min=1,max=300"`
	Summary  string  `json:"summary" validate:"max=500"`
	Body     string  `json:"body"`
	AuthorID *string `json:"author_id"`
}

// NewsService manages dated editorial articles for a tenant.
type NewsService struct {
	store *store.Store
	cache *cache.Client
}

// NewNewsService constructs a NewsService.
func NewNewsService(st *store.Store, cacheClient *cache.Client) (*NewsService, error) {
	if st == nil {
		return nil, errors.New("news service: store is required")
	}
	return &NewsService{store: st, cache: cacheClient}, nil
}

// Create stores an unpublished article.
func (s *NewsService) Create(ctx context.Context, tenantID string, input CreateArticleInput) (*models.NewsArticle, error) {
	ctx = ensureContext(ctx)

	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if tenantID == "" {
		return nil, apperrors.ErrTenantRequired
	}

	article := models.NewsArticle{
		TenantID: tenantID,
		Slug:     input.Slug,
		Title:    strings.TrimSpace(input.Title),
		Summary:  input.Summary,
		Body:     input.Body,
		AuthorID: input.AuthorID,
	}
	if err := s.store.Create(ctx, "NewsArticle", &article); err != nil {
		return nil, fmt.Errorf("news service: create: %w", err)
	}
	return &article, nil
}

// Publish stamps an article's publication time and drops the latest-news
// cache for the tenant.
func (s *NewsService) Publish(ctx context.Context, tenantID, slug string) error {
	ctx = ensureContext(ctx)

	affected, err := s.store.Update(ctx, "NewsArticle",
		store.TenantScope(tenantID, map[string]any{"slug": slug}),
		map[string]any{"published_at": time.Now().UTC()},
	)
	if err != nil {
		return fmt.Errorf("news service: publish: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	s.cache.Delete(ctx, latestNewsCacheKey(tenantID))
	return nil
}

// Get loads a live article by slug.
func (s *NewsService) Get(ctx context.Context, tenantID, slug string) (*models.NewsArticle, error) {
	ctx = ensureContext(ctx)

	var article models.NewsArticle
	err := s.store.FindOne(ctx, "NewsArticle", store.TenantScope(tenantID, map[string]any{"slug": slug}), &article)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("news service: get: %w", err)
	}
	return &article, nil
}

// Latest returns the most recently published articles, cached briefly since
// it backs every tenant's front page.
func (s *NewsService) Latest(ctx context.Context, tenantID string, limit int) ([]models.NewsArticle, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := latestNewsCacheKey(tenantID)
	if cached, ok := cache.GetJSON[[]models.NewsArticle](ctx, s.cache, key); ok && len(cached) >= limit {
		return cached[:limit], nil
	}

	var articles []models.NewsArticle
	_, err := s.store.Execute(ctx, &store.Operation{
		Model:  "NewsArticle",
		Action: store.ActionFindMany,
		Filter: store.TenantScope(tenantID),
		Dest:   &articles,
		Order:  "published_at DESC",
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("news service: latest: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, articles, newsCacheTTL)
	return articles, nil
}

// Delete soft-deletes an article.
func (s *NewsService) Delete(ctx context.Context, tenantID, slug string) error {
	ctx = ensureContext(ctx)

	affected, err := s.store.Delete(ctx, "NewsArticle", map[string]any{"tenant_id": tenantID, "slug": slug})
	if err != nil {
		return fmt.Errorf("news service: delete: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	s.cache.Delete(ctx, latestNewsCacheKey(tenantID))
	return nil
}
