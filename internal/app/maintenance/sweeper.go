package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/models"
	"github.com/pressfold/pressfold/pkg/logger"
)

const (
	defaultPurgeAfterDays     = 30
	defaultAuditRetentionDays = 90
	defaultPurgeSpec          = "@daily"
	defaultAuditSpec          = "@daily"
)

// purgeTargets are the soft-deletable tables swept for expired rows. Variants
// go before products and products before tenants so foreign keys never dangle
// mid-sweep.
var purgeTargets = []any{
	&models.MerchVariant{},
	&models.MerchProduct{},
	&models.MerchCategory{},
	&models.NewsArticle{},
	&models.MediaAsset{},
	&models.Content{},
	&models.User{},
	&models.Role{},
	&models.Permission{},
	&models.Tenant{},
}

// Sweeper physically removes soft-deleted rows once their retention window
// has passed and trims old audit entries. It is the only component that
// bypasses the soft-delete pipeline; everything else sees deletions as
// deleted_at markers.
type Sweeper struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	purgeAfterDays     int
	auditRetentionDays int
	purgeSchedule      string
	auditSchedule      string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPurgeAfterDays adjusts how long soft-deleted rows linger before the
// physical purge.
func WithPurgeAfterDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.purgeAfterDays = days
		}
	}
}

// WithAuditRetentionDays adjusts how long audit entries are kept.
func WithAuditRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.auditRetentionDays = days
		}
	}
}

// WithPurgeSchedule overrides the cron specification for the purge job.
func WithPurgeSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.purgeSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit trimming.
func WithAuditSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.auditSchedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(db *gorm.DB, opts ...Option) (*Sweeper, error) {
	if db == nil {
		return nil, errors.New("maintenance: db is required")
	}

	s := &Sweeper{
		db:                 db,
		now:                time.Now,
		log:                logger.WithComponent("maintenance"),
		purgeAfterDays:     defaultPurgeAfterDays,
		auditRetentionDays: defaultAuditRetentionDays,
		purgeSchedule:      defaultPurgeSpec,
		auditSchedule:      defaultAuditSpec,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s, nil
}

// Start registers the sweep jobs and launches the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.purgeSchedule, func() {
		if _, err := s.PurgeExpired(context.Background()); err != nil {
			s.log.Warn("purge sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.auditSchedule, func() {
		if _, err := s.TrimAuditLogs(context.Background()); err != nil {
			s.log.Warn("audit trim failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes both sweeps sequentially. Used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	var errs error
	if _, err := s.PurgeExpired(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := s.TrimAuditLogs(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// PurgeExpired physically deletes rows whose soft-delete marker is older than
// the retention window. Returns the total rows removed.
func (s *Sweeper) PurgeExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cutoff := s.now().AddDate(0, 0, -s.purgeAfterDays)

	var (
		total int64
		errs  error
	)
	for _, model := range purgeTargets {
		result := s.db.WithContext(ctx).
			Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(model)
		if result.Error != nil {
			errs = multierr.Append(errs, result.Error)
			continue
		}
		total += result.RowsAffected
	}

	if total > 0 {
		s.log.Info("purged expired soft-deleted rows",
			zap.Int64("rows", total),
			zap.Time("cutoff", cutoff),
		)
	}
	return total, errs
}

// TrimAuditLogs removes audit entries older than the audit retention window.
func (s *Sweeper) TrimAuditLogs(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cutoff := s.now().AddDate(0, 0, -s.auditRetentionDays)

	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		s.log.Info("trimmed audit entries",
			zap.Int64("rows", result.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
	}
	return result.RowsAffected, nil
}
