package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
	"github.com/turtacn/MemberPulse-Intelligence/internal/testutil"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ============================================================================
// Fixture
// ============================================================================

// fixedNow is a Wednesday mid-morning; weekday-sensitive periods depend on it.
var fixedNow = time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)

type fixture struct {
	members  *testutil.MemoryMemberRepo
	payments *testutil.MemoryPaymentRepo
	visits   *testutil.MemoryAttendanceRepo
	engine   *Engine

	seq int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		members:  testutil.NewMemoryMemberRepo(),
		payments: testutil.NewMemoryPaymentRepo(),
		visits:   testutil.NewMemoryAttendanceRepo(),
	}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logging.NewNopLogger()),
	}
	f.engine = NewEngine(f.members, f.payments, f.visits, append(base, opts...)...)
	return f
}

func (f *fixture) newMember(t *testing.T) *member.Member {
	t.Helper()
	f.seq++
	m, err := member.NewMember("Ana", fmt.Sprintf("Reyes%d", f.seq),
		fmt.Sprintf("ana%d@example.com", f.seq), fmt.Sprintf("ana%d", f.seq), common.RoleMember)
	require.NoError(t, err)
	require.NoError(t, f.members.Create(context.Background(), m))
	return m
}

func (f *fixture) newPlan(t *testing.T, name string, price float64, days int) *member.Plan {
	t.Helper()
	p, err := member.NewPlan(name, "", price, days)
	require.NoError(t, err)
	require.NoError(t, f.members.CreatePlan(context.Background(), p))
	return p
}

// membership seeds a membership in an arbitrary historical state. Status and
// timestamps are set directly because reports read them as data; the factory
// guards only matter on the live mutation paths.
func (f *fixture) membership(t *testing.T, memberID, planID common.ID, created, end time.Time, status member.MembershipStatus) *member.Membership {
	t.Helper()
	ms, err := member.NewMembership(memberID, planID, created, end)
	require.NoError(t, err)
	ms.CreatedAt = created
	ms.StartDate = created
	ms.Status = status
	require.NoError(t, f.members.CreateMembership(context.Background(), ms))
	return ms
}

func (f *fixture) cancelledMembership(t *testing.T, memberID, planID common.ID, created, end, cancelled time.Time) *member.Membership {
	t.Helper()
	ms := f.membership(t, memberID, planID, created, end, member.MembershipCancelled)
	ms.CancelledAt = &cancelled
	return ms
}

func (f *fixture) payment(t *testing.T, amount float64, method payment.Method, at time.Time, status payment.Status, decidedAt time.Time) *payment.Payment {
	t.Helper()
	m := f.newMember(t)
	ms := f.membership(t, m.ID, common.NewID(), at.AddDate(0, 0, -1), at.AddDate(0, 0, 30), member.MembershipPending)
	p, err := payment.NewPayment(m.ID, ms.ID, amount, method, at)
	require.NoError(t, err)
	staff := common.NewID()
	switch status {
	case payment.StatusConfirmed:
		require.NoError(t, p.Confirm(staff, decidedAt))
	case payment.StatusRejected:
		require.NoError(t, p.Reject(staff, decidedAt))
	}
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

func (f *fixture) walkin(t *testing.T, pass *member.WalkinPass, amount float64, method payment.Method, at time.Time) {
	t.Helper()
	w, err := payment.NewWalkinSale(pass.ID, pass.Name, "", amount, method, at)
	require.NoError(t, err)
	require.NoError(t, f.payments.CreateWalkin(context.Background(), w))
}

func (f *fixture) newPass(t *testing.T, name string, price float64) *member.WalkinPass {
	t.Helper()
	p, err := member.NewWalkinPass(name, price)
	require.NoError(t, err)
	require.NoError(t, f.members.CreatePass(context.Background(), p))
	return p
}

// checkin seeds a visit; minutes < 0 leaves it open.
func (f *fixture) checkin(t *testing.T, memberID common.ID, in time.Time, minutes int) {
	t.Helper()
	c, err := attendance.NewCheckin(memberID, in)
	require.NoError(t, err)
	if minutes >= 0 {
		require.NoError(t, c.Complete(in.Add(time.Duration(minutes)*time.Minute)))
	}
	require.NoError(t, f.visits.Create(context.Background(), c))
}

// ============================================================================
// Revenue
// ============================================================================

func TestRevenueReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	today := fixedNow
	yesterday := fixedNow.AddDate(0, 0, -1)

	f.payment(t, 1500, payment.MethodCash, today.Add(-2*time.Hour), payment.StatusConfirmed, today)
	f.payment(t, 2000, payment.MethodGCash, today.Add(-time.Hour), payment.StatusConfirmed, today)
	f.payment(t, 999, payment.MethodCash, today, payment.StatusPending, time.Time{})
	f.payment(t, 700, payment.MethodCash, yesterday, payment.StatusConfirmed, yesterday)

	pass := f.newPass(t, "Day Pass", 50)
	f.walkin(t, pass, 150, payment.MethodCash, today.Add(-3*time.Hour))
	f.walkin(t, pass, 100, payment.MethodGCash, today.Add(-30*time.Minute))
	f.walkin(t, pass, 80, payment.MethodCash, today.AddDate(0, 0, -2))

	got, err := f.engine.Revenue(ctx, extract.PeriodToday)
	require.NoError(t, err)

	assert.Equal(t, "today", got.Period)
	assert.Equal(t, "2026-08-19", got.StartDate)
	assert.Equal(t, "2026-08-19", got.EndDate)
	assert.Equal(t, 3750.0, got.TotalRevenue)
	assert.Equal(t, 3500.0, got.MembershipRevenue)
	assert.Equal(t, 250.0, got.WalkinRevenue)
	assert.Equal(t, 1650.0, got.PaymentMethods.Cash)
	assert.Equal(t, 2100.0, got.PaymentMethods.GCash)
	assert.Equal(t, "PHP", got.Currency)
}

func TestRevenueReportDefaultsToToday(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.engine.Revenue(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "today", got.Period)
	assert.Zero(t, got.TotalRevenue)
}

func TestReportRejectsUnknownPeriod(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Revenue(ctx, extract.Period("fortnight"))
	assert.True(t, errors.IsCode(err, errors.ErrCodePeriodInvalid))

	_, err = f.engine.MembershipGrowth(ctx, extract.Period("fortnight"))
	assert.True(t, errors.IsCode(err, errors.ErrCodePeriodInvalid))

	_, err = f.engine.Comprehensive(ctx, extract.Period("fortnight"))
	assert.True(t, errors.IsCode(err, errors.ErrCodePeriodInvalid))
}

// ============================================================================
// Membership Growth
// ============================================================================

func TestMembershipGrowthReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	plan := f.newPlan(t, "Monthly", 1000, 30)
	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC)
	}

	m1 := f.newMember(t)
	m2 := f.newMember(t)
	m3 := f.newMember(t)

	// Created this month: two active, one still pending.
	f.membership(t, m1.ID, plan.ID, day(8, 5), day(9, 30), member.MembershipActive)
	f.membership(t, m2.ID, plan.ID, day(8, 10), day(9, 15), member.MembershipActive)
	f.membership(t, m3.ID, plan.ID, day(8, 15), day(9, 15), member.MembershipPending)

	// Created in the previous 19-day window, expired this month.
	f.membership(t, f.newMember(t).ID, plan.ID, day(7, 20), day(8, 10), member.MembershipExpired)

	// Cancelled this month, created long before.
	f.cancelledMembership(t, f.newMember(t).ID, plan.ID, day(6, 1), day(9, 1), day(8, 12))

	got, err := f.engine.MembershipGrowth(ctx, extract.PeriodThisMonth)
	require.NoError(t, err)

	assert.Equal(t, "this_month", got.Period)
	assert.Equal(t, int64(3), got.NewMemberships)
	assert.Equal(t, int64(2), got.ActiveMemberships)
	assert.Equal(t, int64(1), got.ExpiredMemberships)
	assert.Equal(t, int64(1), got.CancelledMemberships)
	assert.Equal(t, 200.0, got.GrowthRate)
	assert.Equal(t, int64(3), got.Comparison.CurrentPeriod)
	assert.Equal(t, int64(1), got.Comparison.PreviousPeriod)
	assert.Equal(t, int64(2), got.Comparison.Change)
}

func TestMembershipGrowthRateZeroWithoutPriorData(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	plan := f.newPlan(t, "Monthly", 1000, 30)
	created := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)
	f.membership(t, f.newMember(t).ID, plan.ID, created, created.AddDate(0, 0, 30), member.MembershipActive)

	got, err := f.engine.MembershipGrowth(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "this_month", got.Period)
	assert.Equal(t, int64(1), got.NewMemberships)
	assert.Zero(t, got.GrowthRate)
	assert.Equal(t, int64(0), got.Comparison.PreviousPeriod)
}

// ============================================================================
// Attendance Trends
// ============================================================================

func TestAttendanceTrendsReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a := f.newMember(t)
	b := f.newMember(t)
	c := f.newMember(t)

	at := func(d, h, min int) time.Time {
		return time.Date(2026, 8, d, h, min, 0, 0, time.UTC)
	}
	f.checkin(t, a.ID, at(17, 8, 30), 60)
	f.checkin(t, b.ID, at(17, 18, 15), 30)
	f.checkin(t, a.ID, at(18, 8, 45), -1) // still inside
	f.checkin(t, c.ID, at(16, 10, 0), 45) // sunday, out of this week

	got, err := f.engine.AttendanceTrends(ctx, extract.PeriodThisWeek)
	require.NoError(t, err)

	assert.Equal(t, "this_week", got.Period)
	assert.Equal(t, 3, got.TotalCheckins)
	assert.Equal(t, 2, got.UniqueVisitors)
	assert.Equal(t, 45.0, got.AvgDurationMinutes)
	assert.Equal(t, PeakHour{Hour: 8, Checkins: 2}, got.PeakHour)
	assert.Equal(t, map[int]int{8: 2, 18: 1}, got.HourlyDistribution)
	assert.Equal(t, []DailyCount{
		{Day: "2026-08-17", Count: 2},
		{Day: "2026-08-18", Count: 1},
	}, got.DailyBreakdown)
}

func TestAttendancePeakHourTieBreaksEarlier(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	m := f.newMember(t)
	at := func(h int) time.Time { return time.Date(2026, 8, 19, h, 0, 0, 0, time.UTC) }
	f.checkin(t, m.ID, at(7), 30)
	f.checkin(t, m.ID, at(7).Add(10*time.Minute), 30)
	f.checkin(t, m.ID, at(9), 30)
	f.checkin(t, m.ID, at(9).Add(10*time.Minute), 30)

	got, err := f.engine.AttendanceTrends(context.Background(), extract.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, PeakHour{Hour: 7, Checkins: 2}, got.PeakHour)
}

func TestAttendanceBucketsHoursInClubTimezone(t *testing.T) {
	t.Parallel()
	manila := time.FixedZone("MNL", 8*3600)
	f := newFixture(t, WithLocation(manila))

	m := f.newMember(t)
	// 23:30 UTC on the 18th is 07:30 on the 19th in Manila.
	f.checkin(t, m.ID, time.Date(2026, 8, 18, 23, 30, 0, 0, time.UTC), 45)

	got, err := f.engine.AttendanceTrends(context.Background(), extract.PeriodToday)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalCheckins)
	assert.Equal(t, map[int]int{7: 1}, got.HourlyDistribution)
	assert.Equal(t, []DailyCount{{Day: "2026-08-19", Count: 1}}, got.DailyBreakdown)
}

func TestAttendanceEmptyWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.engine.AttendanceTrends(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "this_week", got.Period)
	assert.Zero(t, got.TotalCheckins)
	assert.Zero(t, got.AvgDurationMinutes)
	assert.Equal(t, PeakHour{}, got.PeakHour)
	assert.Empty(t, got.DailyBreakdown)
	assert.NotNil(t, got.DailyBreakdown)
}

// ============================================================================
// Retention
// ============================================================================

func TestRetentionReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	plan := f.newPlan(t, "Monthly", 1000, 30)
	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC)
	}

	// Active base with staggered end dates: 3, 11, and 22 days out plus one
	// far in the future.
	f.membership(t, f.newMember(t).ID, plan.ID, day(7, 22), day(8, 22), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, plan.ID, day(7, 30), day(8, 30), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, plan.ID, day(8, 10), day(9, 10), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, plan.ID, day(8, 1), day(12, 31), member.MembershipActive)

	// Churn in the trailing 30 days: one expiry that renewed, one that did
	// not, and one cancellation.
	renewer := f.newMember(t)
	f.membership(t, renewer.ID, plan.ID, day(7, 1), day(8, 1), member.MembershipExpired)
	f.membership(t, renewer.ID, plan.ID, day(8, 3), day(9, 3), member.MembershipActive)

	f.membership(t, f.newMember(t).ID, plan.ID, day(6, 25), day(7, 25), member.MembershipExpired)
	f.cancelledMembership(t, f.newMember(t).ID, plan.ID, day(7, 1), day(10, 1), day(8, 5))

	got, err := f.engine.Retention(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), got.ActiveMembers)
	assert.Equal(t, int64(1), got.ExpiringSoon.Next7Days)
	assert.Equal(t, int64(2), got.ExpiringSoon.Next14Days)
	assert.Equal(t, int64(4), got.ExpiringSoon.Next30Days)

	assert.Equal(t, int64(2), got.ChurnAnalysis.ExpiredLastMonth)
	assert.Equal(t, int64(1), got.ChurnAnalysis.CancelledLastMonth)
	assert.Equal(t, int64(3), got.ChurnAnalysis.TotalChurn)
	assert.Equal(t, 60.0, got.ChurnAnalysis.ChurnRate30Days)
	assert.Equal(t, 50.0, got.RenewalRate)
	assert.Equal(t, 40.0, got.RetentionRate)
}

func TestRetentionReportEmptyClub(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.engine.Retention(context.Background())
	require.NoError(t, err)

	assert.Zero(t, got.ActiveMembers)
	assert.Zero(t, got.ChurnAnalysis.ChurnRate30Days)
	assert.Zero(t, got.RenewalRate)
	assert.Equal(t, 100.0, got.RetentionRate)
}

// ============================================================================
// Plan Popularity
// ============================================================================

func TestPlanPopularityReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	monthly := f.newPlan(t, "Monthly", 1000, 30)
	quarterly := f.newPlan(t, "Quarterly", 2700, 90)
	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC)
	}

	f.membership(t, f.newMember(t).ID, monthly.ID, day(8, 3), day(9, 3), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, monthly.ID, day(8, 10), day(9, 10), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, quarterly.ID, day(8, 5), day(11, 5), member.MembershipActive)
	f.membership(t, f.newMember(t).ID, monthly.ID, day(7, 15), day(8, 15), member.MembershipActive)

	pass := f.newPass(t, "Day Pass", 50)
	f.walkin(t, pass, 50, payment.MethodCash, day(8, 4))
	f.walkin(t, pass, 60, payment.MethodGCash, day(8, 6))
	f.walkin(t, pass, 50, payment.MethodCash, day(7, 30))

	got, err := f.engine.PlanPopularity(ctx, extract.PeriodThisMonth)
	require.NoError(t, err)

	assert.Equal(t, "this_month", got.Period)
	require.Len(t, got.MembershipPlans, 2)
	assert.Equal(t, PlanSales{Name: "Monthly", Price: 1000, DurationDays: 30, Purchases: 2, Revenue: 2000}, got.MembershipPlans[0])
	assert.Equal(t, PlanSales{Name: "Quarterly", Price: 2700, DurationDays: 90, Purchases: 1, Revenue: 2700}, got.MembershipPlans[1])

	require.Len(t, got.WalkinPasses, 1)
	assert.Equal(t, PlanSales{Name: "Day Pass", Price: 50, DurationDays: 1, Purchases: 2, Revenue: 110}, got.WalkinPasses[0])
}

func TestPlanPopularityEmptyPeriod(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.engine.PlanPopularity(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "this_month", got.Period)
	assert.Empty(t, got.MembershipPlans)
	assert.NotNil(t, got.MembershipPlans)
	assert.Empty(t, got.WalkinPasses)
	assert.NotNil(t, got.WalkinPasses)
}

// ============================================================================
// Payment Collection
// ============================================================================

func TestPaymentCollectionReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC)
	}

	// Pending counts all-time; decisions count only this month.
	f.payment(t, 500, payment.MethodCash, day(8, 10), payment.StatusPending, time.Time{})
	f.payment(t, 250, payment.MethodGCash, day(7, 1), payment.StatusPending, time.Time{})
	f.payment(t, 1000, payment.MethodCash, day(8, 2), payment.StatusConfirmed, day(8, 5))
	f.payment(t, 800, payment.MethodCash, day(7, 25), payment.StatusConfirmed, day(7, 28))
	f.payment(t, 300, payment.MethodGCash, day(8, 11), payment.StatusRejected, day(8, 12))
	f.payment(t, 400, payment.MethodCash, day(7, 18), payment.StatusRejected, day(7, 20))

	got, err := f.engine.PaymentCollection(ctx)
	require.NoError(t, err)

	assert.Equal(t, PaymentBucket{Count: 2, TotalAmount: 750}, got.Pending)
	assert.Equal(t, PaymentBucket{Count: 1, TotalAmount: 1000}, got.ConfirmedThisMonth)
	assert.Equal(t, int64(1), got.RejectedThisMonth)
	assert.Equal(t, 25.0, got.CollectionRate)
}

func TestPaymentCollectionEmptyQueue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.engine.PaymentCollection(context.Background())
	require.NoError(t, err)

	assert.Zero(t, got.Pending.Count)
	assert.Zero(t, got.ConfirmedThisMonth.Count)
	assert.Zero(t, got.CollectionRate)
}

// ============================================================================
// Comprehensive
// ============================================================================

func TestComprehensiveReport(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.payment(t, 1200, payment.MethodCash, fixedNow.Add(-time.Hour), payment.StatusConfirmed, fixedNow)
	f.checkin(t, f.newMember(t).ID, fixedNow.Add(-2*time.Hour), 50)

	got, err := f.engine.Comprehensive(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "today", got.Period)
	assert.Equal(t, fixedNow.Format(time.RFC3339), got.GeneratedAt)
	require.NotNil(t, got.Revenue)
	assert.Equal(t, 1200.0, got.Revenue.TotalRevenue)
	require.NotNil(t, got.Attendance)
	assert.Equal(t, 1, got.Attendance.TotalCheckins)
	require.NotNil(t, got.MembershipGrowth)
	require.NotNil(t, got.Retention)
	require.NotNil(t, got.PlanPopularity)
	require.NotNil(t, got.PaymentStatus)
}

type fakeArchiver struct {
	last *minio.Report
	err  error
}

func (a *fakeArchiver) Archive(_ context.Context, report minio.Report) (*minio.StoredReport, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.last = &report
	return &minio.StoredReport{
		Key:    minio.ReportKey(report.GeneratedAt, report.ID),
		Title:  report.Title,
		Period: report.Period,
		Size:   int64(len(report.Content)),
	}, nil
}

func TestComprehensiveReportArchived(t *testing.T) {
	t.Parallel()
	archiver := &fakeArchiver{}
	f := newFixture(t, WithArchiver(archiver))
	ctx := context.Background()

	f.payment(t, 800, payment.MethodCash, fixedNow.Add(-time.Hour), payment.StatusConfirmed, fixedNow)

	got, err := f.engine.Comprehensive(ctx, "")
	require.NoError(t, err)

	require.NotNil(t, archiver.last)
	assert.Equal(t, "today", archiver.last.Period)
	assert.Contains(t, string(archiver.last.Content), "Revenue")
	assert.Equal(t, minio.ReportKey(fixedNow, archiver.last.ID), got.ArchiveKey)
}

func TestComprehensiveReportArchiveFailureIsSoft(t *testing.T) {
	t.Parallel()
	archiver := &fakeArchiver{err: errors.New(errors.ErrCodeExternalService, "bucket gone")}
	f := newFixture(t, WithArchiver(archiver))

	got, err := f.engine.Comprehensive(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got.ArchiveKey)
}
