package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pressfold/pressfold/pkg/metrics"
)

// deletedAtColumn is the soft-delete marker column shared by all
// soft-deletable models.
const deletedAtColumn = "deleted_at"

// tenantIDColumn is the tenant foreign-key column shared by all tenant-scoped
// models.
const tenantIDColumn = "tenant_id"

// defaultSlowQueryThreshold flags operations slower than this as slow queries.
const defaultSlowQueryThreshold = time.Second

// SoftDeleteRewrite returns the stage that turns physical deletes into
// soft-delete updates.
//
// A delete becomes an update whose data is exactly {deleted_at: now}; any
// payload the caller supplied on the delete path is discarded. A delete-many
// becomes an update-many with deleted_at merged into the existing data,
// preserving other fields. Repeating a delete overwrites deleted_at with a
// fresh timestamp; that is deliberate, the operation stays idempotent.
func SoftDeleteRewrite(now func() time.Time) Stage {
	if now == nil {
		now = time.Now
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, op *Operation) (*Result, error) {
			switch op.Action {
			case ActionDelete:
				op.Action = ActionUpdate
				op.Data = map[string]any{deletedAtColumn: now()}
			case ActionDeleteMany:
				op.Action = ActionUpdateMany
				data := make(map[string]any, len(op.Data)+1)
				for k, v := range op.Data {
					data[k] = v
				}
				data[deletedAtColumn] = now()
				op.Data = data
			}
			return next(ctx, op)
		}
	}
}

// TenantAudit returns the stage that warns when a read against a tenant-scoped
// model carries no tenant filter. The operation always proceeds; this is an
// observability control, not an authorization boundary. Model names are
// matched case-insensitively.
func TenantAudit(scopedModels []string, log *zap.Logger) Stage {
	scoped := make(map[string]struct{}, len(scopedModels))
	for _, name := range scopedModels {
		scoped[strings.ToLower(name)] = struct{}{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, op *Operation) (*Result, error) {
			if op.Action == ActionFindOne || op.Action == ActionFindMany {
				if _, ok := scoped[strings.ToLower(op.Model)]; ok {
					if _, ok := op.Filter[tenantIDColumn]; !ok {
						log.Warn("tenant-scoped read without tenant filter",
							zap.String("model", op.Model),
							zap.String("action", string(op.Action)),
						)
						metrics.TenantAuditWarnings.WithLabelValues(op.Model, string(op.Action)).Inc()
					}
				}
			}
			return next(ctx, op)
		}
	}
}

// Timing returns the stage that measures operation latency, feeds the query
// duration histogram, and warns when an operation exceeds the slow-query
// threshold.
func Timing(log *zap.Logger, slowThreshold time.Duration) Stage {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, op *Operation) (*Result, error) {
			start := time.Now()
			res, err := next(ctx, op)
			elapsed := time.Since(start)

			metrics.QueryDuration.WithLabelValues(op.Model, string(op.Action)).Observe(elapsed.Seconds())

			if elapsed > slowThreshold {
				metrics.SlowQueries.WithLabelValues(op.Model, string(op.Action)).Inc()
				log.Warn("slow query",
					zap.String("model", op.Model),
					zap.String("action", string(op.Action)),
					zap.Duration("duration", elapsed),
				)
			}
			return res, err
		}
	}
}
