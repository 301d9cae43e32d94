package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/pkg/logger"
)

// DefaultTenantScopedModels lists the models audited for tenant filters.
// The set is configuration the caller keeps in sync with the data model; new
// tenant-scoped models are not picked up automatically.
var DefaultTenantScopedModels = []string{
	"User",
	"Role",
	"Permission",
	"Content",
	"MediaAsset",
	"AuditLog",
	"NewsArticle",
	"MerchCategory",
	"MerchProduct",
	"MerchVariant",
}

// Config customises the pipeline assembled by New.
type Config struct {
	// TenantScopedModels overrides DefaultTenantScopedModels when non-nil.
	TenantScopedModels []string
	SlowQueryThreshold time.Duration
	// Clock overrides the timestamp source for soft-delete markers.
	Clock func() time.Time
	Logger *zap.Logger
}

// Store dispatches operations through the stage pipeline
// (soft-delete rewrite, tenant audit, timing) into a GORM-backed executor.
// The store is stateless per request and safe for concurrent use.
type Store struct {
	db      *gorm.DB
	cfg     Config
	handler Handler
}

// New assembles the pipeline around the provided database handle.
func New(db *gorm.DB, cfg Config) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}

	if cfg.TenantScopedModels == nil {
		cfg.TenantScopedModels = DefaultTenantScopedModels
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.WithComponent("store")
	}

	return &Store{
		db:      db,
		cfg:     cfg,
		handler: buildPipeline(db, cfg),
	}, nil
}

// Timing sits outermost so its measurement covers the whole round trip,
// rewrite and audit stages included.
func buildPipeline(db *gorm.DB, cfg Config) Handler {
	return Chain(
		NewExecutor(db).Execute,
		Timing(cfg.Logger, cfg.SlowQueryThreshold),
		SoftDeleteRewrite(cfg.Clock),
		TenantAudit(cfg.TenantScopedModels, cfg.Logger),
	)
}

// DB exposes the underlying handle for callers that need raw access, such as
// the maintenance sweeper's physical purges.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx returns a store whose pipeline executes against the provided
// transaction handle. Policies keep applying inside transactions.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	if tx == nil {
		return s
	}
	return &Store{
		db:      tx,
		cfg:     s.cfg,
		handler: buildPipeline(tx, s.cfg),
	}
}

// Execute dispatches an arbitrary operation through the pipeline.
func (s *Store) Execute(ctx context.Context, op *Operation) (*Result, error) {
	return s.handler(ctx, op)
}

// Create persists dest, which must be a model struct pointer so creation
// hooks run.
func (s *Store) Create(ctx context.Context, model string, dest any) error {
	_, err := s.handler(ctx, &Operation{Model: model, Action: ActionCreate, Dest: dest})
	return err
}

// FindOne loads a single row matching the filter into dest. A missing row
// surfaces as gorm.ErrRecordNotFound.
func (s *Store) FindOne(ctx context.Context, model string, filter map[string]any, dest any) error {
	_, err := s.handler(ctx, &Operation{Model: model, Action: ActionFindOne, Filter: filter, Dest: dest})
	return err
}

// FindMany loads all rows matching the filter into dest.
func (s *Store) FindMany(ctx context.Context, model string, filter map[string]any, dest any) error {
	_, err := s.handler(ctx, &Operation{Model: model, Action: ActionFindMany, Filter: filter, Dest: dest})
	return err
}

// Update applies data to the row(s) matching the filter.
func (s *Store) Update(ctx context.Context, model string, filter, data map[string]any) (int64, error) {
	res, err := s.handler(ctx, &Operation{Model: model, Action: ActionUpdate, Filter: filter, Data: data})
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// UpdateMany applies data to all rows matching the filter.
func (s *Store) UpdateMany(ctx context.Context, model string, filter, data map[string]any) (int64, error) {
	res, err := s.handler(ctx, &Operation{Model: model, Action: ActionUpdateMany, Filter: filter, Data: data})
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Delete soft-deletes the row matching the filter. The rewrite stage replaces
// the physical delete with a deleted_at update.
func (s *Store) Delete(ctx context.Context, model string, filter map[string]any) (int64, error) {
	res, err := s.handler(ctx, &Operation{Model: model, Action: ActionDelete, Filter: filter})
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// DeleteMany soft-deletes all rows matching the filter. Extra data fields are
// merged alongside the deleted_at marker.
func (s *Store) DeleteMany(ctx context.Context, model string, filter, data map[string]any) (int64, error) {
	res, err := s.handler(ctx, &Operation{Model: model, Action: ActionDeleteMany, Filter: filter, Data: data})
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
