package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/analytics"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
)

// TestReportCacheAgainstRedis pins the cache-aside contract over a real
// cache: a second read serves the stored report, and ClearCaches forces a
// recompute.
func TestReportCacheAgainstRedis(t *testing.T) {
	SkipIfNoIntegration(t)
	store := newTestStore(t)
	log := logging.NewNopLogger()
	cache := redis.NewRedisCache(startRedis(t), log)
	engine := analytics.NewEngine(store.members, store.payments, store.visits,
		analytics.WithLogger(log),
		analytics.WithCache(redis.NewReportCache(cache)),
		analytics.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	now := fixedNow

	m := store.newMember(t, "Dana", "Cruz")
	plan := store.newPlan(t, "Monthly", 1500, 30)
	ms := store.newMembership(t, m.ID, plan.ID, now.AddDate(0, 0, -5), now.AddDate(0, 0, 25))
	store.confirmedPayment(t, m.ID, ms.ID, 1500, now.Add(-time.Hour))

	first, err := engine.Revenue(ctx, extract.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, first.TotalRevenue)

	// New revenue lands in the database but the cached report still serves.
	store.confirmedPayment(t, m.ID, ms.ID, 500, now.Add(-30*time.Minute))

	cached, err := engine.Revenue(ctx, extract.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, cached.TotalRevenue)

	engine.ClearCaches(ctx)

	fresh, err := engine.Revenue(ctx, extract.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, fresh.TotalRevenue)
}

func TestAttendanceReportAgainstPostgres(t *testing.T) {
	SkipIfNoIntegration(t)
	store := newTestStore(t)
	engine := analytics.NewEngine(store.members, store.payments, store.visits,
		analytics.WithLogger(logging.NewNopLogger()),
		analytics.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	now := fixedNow

	a := store.newMember(t, "Dana", "Cruz")
	b := store.newMember(t, "Mia", "Santos")
	store.checkin(t, a.ID, now.Add(-3*time.Hour))
	store.checkin(t, a.ID, now.Add(-2*time.Hour))
	store.checkin(t, b.ID, now.Add(-time.Hour))

	report, err := engine.AttendanceTrends(ctx, extract.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalCheckins)
	assert.Equal(t, 2, report.UniqueVisitors)
}
