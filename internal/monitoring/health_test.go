package monitoring_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/database/testutil"
	"github.com/sitecms/sitecms/internal/monitoring"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadinessAggregatesStatuses(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	dir := t.TempDir()

	health := monitoring.NewHealth(time.Second).
		Ready(monitoring.Database(db)).
		Ready(monitoring.Directory("storage", dir))

	report := health.Readiness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusUp, report.Status)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "database", report.Checks[0].Component)

	health.Ready(monitoring.Cache(pingFunc(func(context.Context) error { return errors.New("connection refused") })))
	report = health.Readiness(context.Background())
	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusDegraded, report.Status)
	require.Equal(t, "connection refused", report.Checks[2].Details)

	health.Ready(monitoring.Directory("missing", filepath.Join(dir, "nope")))
	report = health.Readiness(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
}

func TestProbeTimeoutDegrades(t *testing.T) {
	health := monitoring.NewHealth(10 * time.Millisecond).Ready(monitoring.Check{
		Name: "slow",
		Probe: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	report := health.Readiness(context.Background())
	require.Equal(t, monitoring.StatusDegraded, report.Checks[0].Status)
}

func TestPanickingProbeIsDown(t *testing.T) {
	health := monitoring.NewHealth(0).Live(monitoring.Check{
		Name:  "boom",
		Probe: func(context.Context) error { panic("kaput") },
	})

	report := health.Liveness(context.Background())
	require.False(t, report.Success)
	require.Contains(t, report.Checks[0].Details, "kaput")
}

func TestClosedDatabaseIsDown(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	report := monitoring.NewHealth(time.Second).Ready(monitoring.Database(db)).Readiness(context.Background())
	require.False(t, report.Success)
}
