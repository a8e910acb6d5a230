package engine_test

import (
	"testing"
	"time"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalentry/slot-alerter/internal/engine"
	"github.com/globalentry/slot-alerter/internal/metrics"
	"github.com/globalentry/slot-alerter/internal/store"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

func newSchedulerTestEngine() *engine.Engine {
	return engine.NewEngine(
		store.NewMemoryStore(),
		&mockChecker{},
		&mockNotifier{},
		[]domain.Location{charlotte},
		engine.WithLogger(quietLogger()),
	)
}

func TestNewScheduler_RegistersCronEntries(t *testing.T) {
	t.Parallel()

	sched, err := engine.NewScheduler(
		newSchedulerTestEngine(),
		15*time.Minute,
		6*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	entries := sched.Entries()
	assert.Len(t, entries, 2)
}

func TestNewScheduler_PruneDisabled(t *testing.T) {
	t.Parallel()

	sched, err := engine.NewScheduler(
		newSchedulerTestEngine(),
		15*time.Minute,
		0,
		quietLogger(),
	)
	require.NoError(t, err)

	entries := sched.Entries()
	assert.Len(t, entries, 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	sched, err := engine.NewScheduler(
		newSchedulerTestEngine(),
		1*time.Hour,
		24*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()
	<-ctx.Done()
}

func TestScheduler_CheckIntervalSchedule(t *testing.T) {
	t.Parallel()

	sched, err := engine.NewScheduler(
		newSchedulerTestEngine(),
		900*time.Second,
		0,
		quietLogger(),
	)
	require.NoError(t, err)

	entries := sched.Entries()
	require.Len(t, entries, 1)

	// One tick exactly every 900 seconds.
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := entries[0].Schedule.Next(from)
	second := entries[0].Schedule.Next(first)
	assert.Equal(t, 900*time.Second, second.Sub(first))
}

func TestScheduler_SyncNextRunTimestamp(t *testing.T) {
	t.Parallel()

	sched, err := engine.NewScheduler(
		newSchedulerTestEngine(),
		15*time.Minute,
		6*time.Hour,
		quietLogger(),
	)
	require.NoError(t, err)

	// Start so that cron populates Next times.
	sched.Start()
	defer sched.Stop()

	sched.SyncNextRunTimestamp()

	next := ptestutil.ToFloat64(metrics.SchedulerNextCheckTimestamp)
	assert.Greater(t, next, float64(0), "next check timestamp should be set")
}
