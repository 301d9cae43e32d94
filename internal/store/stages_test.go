package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func captureHandler(captured **Operation, result *Result, err error) Handler {
	return func(_ context.Context, op *Operation) (*Result, error) {
		*captured = op
		return result, err
	}
}

func TestSoftDeleteRewriteTurnsDeleteIntoUpdate(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), SoftDeleteRewrite(func() time.Time { return now }))

	_, err := h(context.Background(), &Operation{
		Model:  "Content",
		Action: ActionDelete,
		Filter: map[string]any{"id": "c1"},
		Data:   map[string]any{"reason": "spam"}, // must be discarded
	})
	require.NoError(t, err)

	require.Equal(t, ActionUpdate, seen.Action)
	require.Equal(t, map[string]any{"deleted_at": now}, seen.Data)
	require.Equal(t, map[string]any{"id": "c1"}, seen.Filter)
}

func TestSoftDeleteRewriteMergesIntoDeleteMany(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), SoftDeleteRewrite(func() time.Time { return now }))

	_, err := h(context.Background(), &Operation{
		Model:  "Content",
		Action: ActionDeleteMany,
		Filter: map[string]any{"tenant_id": "t1"},
		Data:   map[string]any{"status": "archived"},
	})
	require.NoError(t, err)

	require.Equal(t, ActionUpdateMany, seen.Action)
	require.Equal(t, map[string]any{"status": "archived", "deleted_at": now}, seen.Data)
}

func TestSoftDeleteRewriteCreatesDataWhenAbsent(t *testing.T) {
	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), SoftDeleteRewrite(nil))

	_, err := h(context.Background(), &Operation{Model: "Content", Action: ActionDeleteMany})
	require.NoError(t, err)

	require.Equal(t, ActionUpdateMany, seen.Action)
	require.Contains(t, seen.Data, "deleted_at")
}

func TestSoftDeleteRewriteLeavesOtherActionsUntouched(t *testing.T) {
	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), SoftDeleteRewrite(nil))

	op := &Operation{Model: "Content", Action: ActionUpdate, Data: map[string]any{"title": "x"}}
	_, err := h(context.Background(), op)
	require.NoError(t, err)
	require.Equal(t, ActionUpdate, seen.Action)
	require.Equal(t, map[string]any{"title": "x"}, seen.Data)
}

func TestTenantAuditWarnsOnceForUnscopedReads(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{RowsAffected: 2}, nil), TenantAudit([]string{"Content"}, log))

	res, err := h(context.Background(), &Operation{Model: "content", Action: ActionFindMany})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.RowsAffected) // operation proceeds

	entries := logs.FilterMessage("tenant-scoped read without tenant filter").All()
	require.Len(t, entries, 1)
	require.Equal(t, "content", entries[0].ContextMap()["model"])
	require.Equal(t, "find-many", entries[0].ContextMap()["action"])
}

func TestTenantAuditMatchesModelNamesCaseInsensitively(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), TenantAudit([]string{"MerchProduct"}, log))

	_, err := h(context.Background(), &Operation{Model: "merchproduct", Action: ActionFindOne, Dest: &struct{}{}})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
}

func TestTenantAuditStaysQuietWhenTenantFilterPresent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), TenantAudit([]string{"Content"}, log))

	_, err := h(context.Background(), &Operation{
		Model:  "Content",
		Action: ActionFindMany,
		Filter: map[string]any{"tenant_id": "t1"},
	})
	require.NoError(t, err)
	require.Zero(t, logs.Len())
}

func TestTenantAuditIgnoresWrites(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	var seen *Operation
	h := Chain(captureHandler(&seen, &Result{}, nil), TenantAudit([]string{"Content"}, log))

	_, err := h(context.Background(), &Operation{Model: "Content", Action: ActionUpdateMany, Data: map[string]any{"status": "draft"}})
	require.NoError(t, err)
	require.Zero(t, logs.Len())
}

func TestTimingFlagsSlowOperations(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	slow := func(_ context.Context, op *Operation) (*Result, error) {
		time.Sleep(5 * time.Millisecond)
		return &Result{}, nil
	}

	h := Chain(slow, Timing(log, time.Millisecond))
	_, err := h(context.Background(), &Operation{Model: "Content", Action: ActionFindMany})
	require.NoError(t, err)

	entries := logs.FilterMessage("slow query").All()
	require.Len(t, entries, 1)
	require.Equal(t, "Content", entries[0].ContextMap()["model"])
}

func TestTimingStaysQuietForFastOperations(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	fast := func(_ context.Context, op *Operation) (*Result, error) { return &Result{}, nil }

	h := Chain(fast, Timing(log, time.Second))
	_, err := h(context.Background(), &Operation{Model: "Content", Action: ActionFindMany})
	require.NoError(t, err)
	require.Zero(t, logs.Len())
}

func TestTimingCoversDownstreamStages(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	// A stage that is slow on its own; the terminal handler returns instantly.
	slowStage := func(next Handler) Handler {
		return func(ctx context.Context, op *Operation) (*Result, error) {
			time.Sleep(5 * time.Millisecond)
			return next(ctx, op)
		}
	}
	terminal := func(_ context.Context, op *Operation) (*Result, error) { return &Result{}, nil }

	h := Chain(terminal, Timing(log, time.Millisecond), slowStage)
	_, err := h(context.Background(), &Operation{Model: "Content", Action: ActionFindMany})
	require.NoError(t, err)

	entries := logs.FilterMessage("slow query").All()
	require.Len(t, entries, 1)
}
