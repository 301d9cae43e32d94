package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHealthManagerEmptyReportsUp(t *testing.T) {
	m := NewHealthManager()

	report := m.EvaluateReadiness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, StatusUp, report.Status)
	require.Empty(t, report.Checks)
}

func TestHealthManagerDownWins(t *testing.T) {
	m := NewHealthManager()
	m.RegisterReadiness(Check{Name: "ok", Run: func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusUp}
	}})
	m.RegisterReadiness(Check{Name: "broken", Run: func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusDown, Details: "connection refused"}
	}})

	report := m.EvaluateReadiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "broken", report.Checks[1].Component)
}

func TestHealthManagerDegradedStaysReady(t *testing.T) {
	m := NewHealthManager()
	m.RegisterReadiness(Check{Name: "cache", Run: func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusDegraded}
	}})

	report := m.EvaluateReadiness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, StatusDegraded, report.Status)
}

func TestHealthManagerIgnoresInvalidChecks(t *testing.T) {
	m := NewHealthManager()
	m.RegisterReadiness(Check{Name: "", Run: func(context.Context) ProbeResult { return ProbeResult{} }})
	m.RegisterReadiness(Check{Name: "no-run"})

	report := m.EvaluateReadiness(context.Background())
	require.Empty(t, report.Checks)
}

func TestResultFromError(t *testing.T) {
	up := ResultFromError("db", nil, time.Millisecond)
	require.Equal(t, StatusUp, up.Status)

	down := ResultFromError("db", errors.New("refused"), time.Millisecond)
	require.Equal(t, StatusDown, down.Status)
	require.Equal(t, "refused", down.Details)

	slow := ResultFromError("db", context.DeadlineExceeded, time.Second)
	require.Equal(t, StatusDegraded, slow.Status)
}
