package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/pkg/logger"
	"github.com/pressfold/pressfold/pkg/metrics"
)

const (
	defaultTxMaxAttempts = 3
	backoffUnit          = 100 * time.Millisecond
)

// TxRunner executes units of work transactionally with bounded retries and
// exponential backoff. Every transaction runs at read-committed isolation;
// per-attempt atomicity is the database's responsibility.
type TxRunner struct {
	db          *gorm.DB
	maxAttempts int
	timeout     time.Duration
	retryable   func(error) bool
	log         *zap.Logger
}

// TxRunnerOption customises a TxRunner.
type TxRunnerOption func(*TxRunner)

// WithMaxAttempts bounds the total number of attempts. One means fail-fast.
func WithMaxAttempts(n int) TxRunnerOption {
	return func(r *TxRunner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithTimeout bounds each attempt's wall time.
func WithTimeout(d time.Duration) TxRunnerOption {
	return func(r *TxRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetryClassifier installs a predicate deciding whether a failed attempt
// is retried. The default retries every error, including permanent ones such
// as uniqueness violations; the classifier exists so callers can tighten that
// behaviour without changing the runner.
func WithRetryClassifier(fn func(error) bool) TxRunnerOption {
	return func(r *TxRunner) {
		if fn != nil {
			r.retryable = fn
		}
	}
}

// WithTxLogger overrides the logger used for retry reporting.
func WithTxLogger(log *zap.Logger) TxRunnerOption {
	return func(r *TxRunner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewTxRunner constructs a runner bound to the provided database handle.
func NewTxRunner(db *gorm.DB, opts ...TxRunnerOption) (*TxRunner, error) {
	if db == nil {
		return nil, errors.New("tx runner: db is required")
	}

	runner := &TxRunner{
		db:          db,
		maxAttempts: defaultTxMaxAttempts,
		retryable:   func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(runner)
	}
	if runner.log == nil {
		runner.log = logger.WithComponent("txrunner")
	}
	return runner, nil
}

// Run executes fn inside a transaction, retrying failed attempts with
// exponential backoff (2^attempt * 100ms, no jitter). After the final attempt
// the last observed error is returned unwrapped.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return errors.New("tx runner: unit of work is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = r.attempt(ctx, fn)
		if lastErr == nil {
			return nil
		}

		r.log.Warn("transaction attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(lastErr),
		)

		if attempt == r.maxAttempts || !r.retryable(lastErr) {
			break
		}

		metrics.TxRetries.Inc()
		if !r.backoff(ctx, attempt) {
			break
		}
	}
	return lastErr
}

func (r *TxRunner) attempt(ctx context.Context, fn func(tx *gorm.DB) error) error {
	attemptCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return r.db.WithContext(attemptCtx).Transaction(fn, r.txOptions())
}

func (r *TxRunner) txOptions() *sql.TxOptions {
	// SQLite only supports its default isolation; forcing read committed
	// there makes BeginTx fail outright.
	if r.db.Dialector.Name() == "sqlite" {
		return &sql.TxOptions{}
	}
	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

// backoff waits 2^attempt * 100ms. Returns false when the context ended
// before the wait completed, in which case retrying stops and the last error
// stands.
func (r *TxRunner) backoff(ctx context.Context, attempt int) bool {
	wait := time.Duration(1<<attempt) * backoffUnit

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
