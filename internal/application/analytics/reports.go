package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

const dateLayout = "2006-01-02"

// ============================================================================
// Report Types
// ============================================================================

// RevenueReport breaks revenue for a period down by source and method.
// Amounts are Philippine pesos.
type RevenueReport struct {
	Period            string          `json:"period"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	TotalRevenue      float64         `json:"total_revenue"`
	MembershipRevenue float64         `json:"membership_revenue"`
	WalkinRevenue     float64         `json:"walkin_revenue"`
	PaymentMethods    MethodBreakdown `json:"payment_methods"`
	Currency          string          `json:"currency"`
}

// MethodBreakdown splits an amount across the accepted payment methods.
type MethodBreakdown struct {
	Cash  float64 `json:"cash"`
	GCash float64 `json:"gcash"`
}

// GrowthReport tracks membership creation against the previous period of
// equal length.
type GrowthReport struct {
	Period               string           `json:"period"`
	NewMemberships       int64            `json:"new_memberships"`
	ActiveMemberships    int64            `json:"active_memberships"`
	ExpiredMemberships   int64            `json:"expired_memberships"`
	CancelledMemberships int64            `json:"cancelled_memberships"`
	GrowthRate           float64          `json:"growth_rate"`
	Comparison           GrowthComparison `json:"comparison"`
}

// GrowthComparison holds the raw new-membership counts behind GrowthRate.
type GrowthComparison struct {
	CurrentPeriod  int64 `json:"current_period"`
	PreviousPeriod int64 `json:"previous_period"`
	Change         int64 `json:"change"`
}

// AttendanceReport summarizes visit volume and timing for a period.
type AttendanceReport struct {
	Period             string       `json:"period"`
	TotalCheckins      int          `json:"total_checkins"`
	UniqueVisitors     int          `json:"unique_visitors"`
	AvgDurationMinutes float64      `json:"average_duration_minutes"`
	PeakHour           PeakHour     `json:"peak_hour"`
	DailyBreakdown     []DailyCount `json:"daily_breakdown"`
	HourlyDistribution map[int]int  `json:"hourly_distribution"`
}

// PeakHour is the busiest check-in hour of the report window. Ties resolve
// to the earliest hour; an empty window reports hour 0 with 0 check-ins.
type PeakHour struct {
	Hour     int `json:"hour"`
	Checkins int `json:"checkins"`
}

// DailyCount is one day's check-in total.
type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RetentionReport measures the active base, upcoming expirations, and
// 30-day churn and renewal behavior.
type RetentionReport struct {
	ActiveMembers int64         `json:"active_members"`
	ExpiringSoon  ExpiringSoon  `json:"expiring_soon"`
	ChurnAnalysis ChurnAnalysis `json:"churn_analysis"`
	RenewalRate   float64       `json:"renewal_rate"`
	RetentionRate float64       `json:"retention_rate"`
}

// ExpiringSoon counts active memberships ending within the named windows.
type ExpiringSoon struct {
	Next7Days  int64 `json:"next_7_days"`
	Next14Days int64 `json:"next_14_days"`
	Next30Days int64 `json:"next_30_days"`
}

// ChurnAnalysis breaks down the memberships lost in the last 30 days.
type ChurnAnalysis struct {
	ChurnRate30Days    float64 `json:"churn_rate_30days"`
	ExpiredLastMonth   int64   `json:"expired_last_month"`
	CancelledLastMonth int64   `json:"cancelled_last_month"`
	TotalChurn         int64   `json:"total_churn"`
}

// PlanPopularityReport ranks plans and walk-in passes by purchases in a
// period, most popular first.
type PlanPopularityReport struct {
	Period          string      `json:"period"`
	MembershipPlans []PlanSales `json:"membership_plans"`
	WalkinPasses    []PlanSales `json:"walk_in_passes"`
}

// PlanSales is the sales line for one plan or pass. Plan revenue is
// purchases times list price; pass revenue sums the amounts actually paid.
type PlanSales struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	Purchases    int     `json:"purchases"`
	Revenue      float64 `json:"revenue"`
}

// PaymentStatusReport tracks the approval queue and this month's
// collection rate.
type PaymentStatusReport struct {
	Pending            PaymentBucket `json:"pending"`
	ConfirmedThisMonth PaymentBucket `json:"confirmed_this_month"`
	RejectedThisMonth  int64         `json:"rejected_this_month"`
	CollectionRate     float64       `json:"collection_rate"`
}

// PaymentBucket is a count and peso total for one payment status.
type PaymentBucket struct {
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// ComprehensiveReport bundles every report into one dashboard payload.
type ComprehensiveReport struct {
	Period           string                `json:"period"`
	GeneratedAt      string                `json:"generated_at"`
	Revenue          *RevenueReport        `json:"revenue"`
	MembershipGrowth *GrowthReport         `json:"membership_growth"`
	Attendance       *AttendanceReport     `json:"attendance"`
	Retention        *RetentionReport      `json:"retention"`
	PlanPopularity   *PlanPopularityReport `json:"plan_popularity"`
	PaymentStatus    *PaymentStatusReport  `json:"payment_status"`
	ArchiveKey       string                `json:"archive_key,omitempty"`
}

// ============================================================================
// Report Methods
// ============================================================================

// normalizePeriod applies the per-report default and rejects unknown values.
func normalizePeriod(p, fallback extract.Period) (extract.Period, error) {
	if p == "" {
		return fallback, nil
	}
	if !p.IsValid() {
		return "", errors.Newf(errors.ErrCodePeriodInvalid, "unknown report period %q", string(p))
	}
	return p, nil
}

// Revenue reports revenue for the period (default today).
func (e *Engine) Revenue(ctx context.Context, period extract.Period) (*RevenueReport, error) {
	period, err := normalizePeriod(period, extract.PeriodToday)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, e, cacheKeyRevenue+period.String(), ttlShort, func() (*RevenueReport, error) {
		return e.computeRevenue(ctx, period)
	})
}

func (e *Engine) computeRevenue(ctx context.Context, period extract.Period) (*RevenueReport, error) {
	start, end := DateRangeFor(period, e.now())
	from, to := windowOf(start, end)

	confirmed, _, err := e.payments.List(ctx, payment.ListFilter{
		Status: payment.StatusConfirmed,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading confirmed payments")
	}
	walkins, err := e.payments.ListWalkinByRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading walk-in payments")
	}

	var memberRevenue, cash, gcash float64
	for _, p := range confirmed {
		memberRevenue += p.Amount
		switch p.Method {
		case payment.MethodCash:
			cash += p.Amount
		case payment.MethodGCash:
			gcash += p.Amount
		}
	}
	var walkinRevenue float64
	for _, w := range walkins {
		walkinRevenue += w.Amount
		switch w.Method {
		case payment.MethodCash:
			cash += w.Amount
		case payment.MethodGCash:
			gcash += w.Amount
		}
	}

	return &RevenueReport{
		Period:            period.String(),
		StartDate:         start.Format(dateLayout),
		EndDate:           end.Format(dateLayout),
		TotalRevenue:      round2(memberRevenue + walkinRevenue),
		MembershipRevenue: round2(memberRevenue),
		WalkinRevenue:     round2(walkinRevenue),
		PaymentMethods:    MethodBreakdown{Cash: round2(cash), GCash: round2(gcash)},
		Currency:          "PHP",
	}, nil
}

// MembershipGrowth reports membership creation for the period (default this
// month) against the previous period of equal length.
func (e *Engine) MembershipGrowth(ctx context.Context, period extract.Period) (*GrowthReport, error) {
	period, err := normalizePeriod(period, extract.PeriodThisMonth)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, e, cacheKeyGrowth+period.String(), ttlShort, func() (*GrowthReport, error) {
		return e.computeGrowth(ctx, period)
	})
}

func (e *Engine) computeGrowth(ctx context.Context, period extract.Period) (*GrowthReport, error) {
	now := e.now()
	start, end := DateRangeFor(period, now)
	from, to := windowOf(start, end)
	today := dayStart(now)

	newCount, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting new memberships")
	}
	active, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipActive,
		EndFrom: today,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting active memberships")
	}
	expired, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipExpired,
		EndFrom: from,
		EndTo:   to,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting expired memberships")
	}
	cancelled, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		Status:        member.MembershipCancelled,
		CancelledFrom: from,
		CancelledTo:   to,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting cancelled memberships")
	}

	// Previous window of the same calendar length, ending the day before
	// this one starts.
	periodDays := daysInclusive(start, end)
	prevFrom := start.AddDate(0, 0, -periodDays)
	prevNew, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		CreatedFrom: prevFrom,
		CreatedTo:   start,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting previous-period memberships")
	}

	growthRate := 0.0
	if prevNew > 0 {
		growthRate = round2(float64(newCount-prevNew) / float64(prevNew) * 100)
	}

	return &GrowthReport{
		Period:               period.String(),
		NewMemberships:       newCount,
		ActiveMemberships:    active,
		ExpiredMemberships:   expired,
		CancelledMemberships: cancelled,
		GrowthRate:           growthRate,
		Comparison: GrowthComparison{
			CurrentPeriod:  newCount,
			PreviousPeriod: prevNew,
			Change:         newCount - prevNew,
		},
	}, nil
}

// AttendanceTrends reports visit patterns for the period (default this week).
func (e *Engine) AttendanceTrends(ctx context.Context, period extract.Period) (*AttendanceReport, error) {
	period, err := normalizePeriod(period, extract.PeriodThisWeek)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, e, cacheKeyAttendance+period.String(), ttlShort, func() (*AttendanceReport, error) {
		return e.computeAttendance(ctx, period)
	})
}

func (e *Engine) computeAttendance(ctx context.Context, period extract.Period) (*AttendanceReport, error) {
	start, end := DateRangeFor(period, e.now())
	from, to := windowOf(start, end)

	visits, err := e.visits.ListByRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading check-ins")
	}

	unique := make(map[common.ID]struct{})
	hourly := make(map[int]int)
	daily := make(map[string]int)
	var durationTotal float64
	var closed int
	for _, v := range visits {
		unique[v.MemberID] = struct{}{}
		local := v.CheckIn.In(e.loc)
		hourly[local.Hour()]++
		daily[local.Format(dateLayout)]++
		if v.CheckOut != nil {
			durationTotal += v.CheckOut.Sub(v.CheckIn).Minutes()
			closed++
		}
	}

	avg := 0.0
	if closed > 0 {
		avg = round2(durationTotal / float64(closed))
	}

	// Earliest hour wins ties, matching the ascending scan.
	peak := PeakHour{}
	for h := 0; h < 24; h++ {
		if c := hourly[h]; c > peak.Checkins {
			peak = PeakHour{Hour: h, Checkins: c}
		}
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	breakdown := make([]DailyCount, 0, len(days))
	for _, d := range days {
		breakdown = append(breakdown, DailyCount{Day: d, Count: daily[d]})
	}

	return &AttendanceReport{
		Period:             period.String(),
		TotalCheckins:      len(visits),
		UniqueVisitors:     len(unique),
		AvgDurationMinutes: avg,
		PeakHour:           peak,
		DailyBreakdown:     breakdown,
		HourlyDistribution: hourly,
	}, nil
}

// Retention reports the active base, expiring-soon windows, and 30-day
// churn and renewal rates.
func (e *Engine) Retention(ctx context.Context) (*RetentionReport, error) {
	return cachedReport(ctx, e, cacheKeyRetention, ttlMedium, func() (*RetentionReport, error) {
		return e.computeRetention(ctx)
	})
}

func (e *Engine) computeRetention(ctx context.Context) (*RetentionReport, error) {
	today := dayStart(e.now())

	active, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipActive,
		EndFrom: today,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting active memberships")
	}

	expiring := func(days int) (int64, error) {
		return e.members.CountMemberships(ctx, member.MembershipFilter{
			Status:  member.MembershipActive,
			EndFrom: today,
			EndTo:   today.AddDate(0, 0, days+1),
		})
	}
	exp7, err := expiring(7)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting expiring memberships")
	}
	exp14, err := expiring(14)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting expiring memberships")
	}
	exp30, err := expiring(30)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting expiring memberships")
	}

	thirtyAgo := today.AddDate(0, 0, -30)
	expiredRecent, err := e.members.ListMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipExpired,
		EndFrom: thirtyAgo,
		EndTo:   today,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading recently expired memberships")
	}
	cancelledRecent, err := e.members.CountMemberships(ctx, member.MembershipFilter{
		Status:        member.MembershipCancelled,
		CancelledFrom: thirtyAgo,
		CancelledTo:   today,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting recently cancelled memberships")
	}

	// A churned membership counts as renewed when the same member bought
	// another membership within a week of the old end date.
	renewed := int64(0)
	for _, m := range expiredRecent {
		endDay := dayStart(m.EndDate.In(e.loc))
		n, err := e.members.CountMemberships(ctx, member.MembershipFilter{
			MemberID:    m.MemberID,
			CreatedFrom: endDay,
			CreatedTo:   endDay.AddDate(0, 0, 7),
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "checking membership renewal")
		}
		if n > 0 {
			renewed++
		}
	}

	expiredCount := int64(len(expiredRecent))
	churn := expiredCount + cancelledRecent
	churnRate := 0.0
	if active > 0 {
		churnRate = float64(churn) / float64(active) * 100
	}
	renewalRate := 0.0
	if expiredCount > 0 {
		renewalRate = round2(float64(renewed) / float64(expiredCount) * 100)
	}

	return &RetentionReport{
		ActiveMembers: active,
		ExpiringSoon: ExpiringSoon{
			Next7Days:  exp7,
			Next14Days: exp14,
			Next30Days: exp30,
		},
		ChurnAnalysis: ChurnAnalysis{
			ChurnRate30Days:    round2(churnRate),
			ExpiredLastMonth:   expiredCount,
			CancelledLastMonth: cancelledRecent,
			TotalChurn:         churn,
		},
		RenewalRate:   renewalRate,
		RetentionRate: round2(100 - churnRate),
	}, nil
}

// PlanPopularity ranks plans and passes by purchases for the period
// (default this month).
func (e *Engine) PlanPopularity(ctx context.Context, period extract.Period) (*PlanPopularityReport, error) {
	period, err := normalizePeriod(period, extract.PeriodThisMonth)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, e, cacheKeyPlans+period.String(), ttlMedium, func() (*PlanPopularityReport, error) {
		return e.computePlanPopularity(ctx, period)
	})
}

func (e *Engine) computePlanPopularity(ctx context.Context, period extract.Period) (*PlanPopularityReport, error) {
	start, end := DateRangeFor(period, e.now())
	from, to := windowOf(start, end)

	memberships, err := e.members.ListMemberships(ctx, member.MembershipFilter{
		CreatedFrom: from,
		CreatedTo:   to,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading memberships")
	}
	plans, err := e.members.ListPlans(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading plans")
	}
	planByID := make(map[common.ID]*member.Plan, len(plans))
	for _, p := range plans {
		planByID[p.ID] = p
	}

	planAgg := make(map[common.ID]*PlanSales)
	for _, m := range memberships {
		line, ok := planAgg[m.PlanID]
		if !ok {
			line = &PlanSales{Name: m.PlanName}
			if p, found := planByID[m.PlanID]; found {
				line.Name = p.Name
				line.Price = p.Price
				line.DurationDays = p.DurationDays
			}
			planAgg[m.PlanID] = line
		}
		line.Purchases++
	}
	planSales := make([]PlanSales, 0, len(planAgg))
	for _, line := range planAgg {
		line.Revenue = round2(line.Price * float64(line.Purchases))
		planSales = append(planSales, *line)
	}
	rankSales(planSales)

	walkins, err := e.payments.ListWalkinByRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading walk-in payments")
	}
	passes, err := e.members.ListPasses(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading walk-in passes")
	}
	passByID := make(map[common.ID]*member.WalkinPass, len(passes))
	for _, p := range passes {
		passByID[p.ID] = p
	}

	passAgg := make(map[common.ID]*PlanSales)
	for _, w := range walkins {
		line, ok := passAgg[w.PassID]
		if !ok {
			line = &PlanSales{Name: w.PassName}
			if p, found := passByID[w.PassID]; found {
				line.Name = p.Name
				line.Price = p.Price
				line.DurationDays = p.DurationDays
			}
			passAgg[w.PassID] = line
		}
		line.Purchases++
		line.Revenue += w.Amount
	}
	passSales := make([]PlanSales, 0, len(passAgg))
	for _, line := range passAgg {
		line.Revenue = round2(line.Revenue)
		passSales = append(passSales, *line)
	}
	rankSales(passSales)

	return &PlanPopularityReport{
		Period:          period.String(),
		MembershipPlans: planSales,
		WalkinPasses:    passSales,
	}, nil
}

// rankSales orders sales lines by purchases descending, name ascending on
// ties, so report output is deterministic.
func rankSales(lines []PlanSales) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Purchases != lines[j].Purchases {
			return lines[i].Purchases > lines[j].Purchases
		}
		return lines[i].Name < lines[j].Name
	})
}

// PaymentCollection reports the pending queue and this month's collection
// rate.
func (e *Engine) PaymentCollection(ctx context.Context) (*PaymentStatusReport, error) {
	return cachedReport(ctx, e, cacheKeyPayments, ttlShort, func() (*PaymentStatusReport, error) {
		return e.computePaymentStatus(ctx)
	})
}

func (e *Engine) computePaymentStatus(ctx context.Context) (*PaymentStatusReport, error) {
	pending, err := e.payments.ListPending(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading pending payments")
	}
	var pendingAmount float64
	for _, p := range pending {
		pendingAmount += p.Amount
	}

	monthFrom := monthStart(dayStart(e.now()))
	confirmed, confirmedCount, err := e.payments.List(ctx, payment.ListFilter{
		Status:        payment.StatusConfirmed,
		ConfirmedFrom: monthFrom,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading confirmed payments")
	}
	var confirmedAmount float64
	for _, p := range confirmed {
		confirmedAmount += p.Amount
	}

	_, rejectedCount, err := e.payments.List(ctx, payment.ListFilter{
		Status:        payment.StatusRejected,
		ConfirmedFrom: monthFrom,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "counting rejected payments")
	}

	pendingCount := int64(len(pending))
	total := confirmedCount + pendingCount + rejectedCount
	rate := 0.0
	if total > 0 {
		rate = round2(float64(confirmedCount) / float64(total) * 100)
	}

	return &PaymentStatusReport{
		Pending:            PaymentBucket{Count: pendingCount, TotalAmount: round2(pendingAmount)},
		ConfirmedThisMonth: PaymentBucket{Count: confirmedCount, TotalAmount: round2(confirmedAmount)},
		RejectedThisMonth:  rejectedCount,
		CollectionRate:     rate,
	}, nil
}

// Comprehensive bundles every report for the period (default today) into
// one payload. The sub-reports hit their own caches; the bundle itself is
// never cached.
func (e *Engine) Comprehensive(ctx context.Context, period extract.Period) (*ComprehensiveReport, error) {
	period, err := normalizePeriod(period, extract.PeriodToday)
	if err != nil {
		return nil, err
	}

	revenue, err := e.Revenue(ctx, period)
	if err != nil {
		return nil, err
	}
	growth, err := e.MembershipGrowth(ctx, period)
	if err != nil {
		return nil, err
	}
	visits, err := e.AttendanceTrends(ctx, period)
	if err != nil {
		return nil, err
	}
	retention, err := e.Retention(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := e.PlanPopularity(ctx, period)
	if err != nil {
		return nil, err
	}
	payments, err := e.PaymentCollection(ctx)
	if err != nil {
		return nil, err
	}

	report := &ComprehensiveReport{
		Period:           period.String(),
		GeneratedAt:      e.now().Format(time.RFC3339),
		Revenue:          revenue,
		MembershipGrowth: growth,
		Attendance:       visits,
		Retention:        retention,
		PlanPopularity:   plans,
		PaymentStatus:    payments,
	}

	if e.archive != nil {
		stored, err := e.archive.Archive(ctx, minio.Report{
			ID:          string(common.NewID()),
			Title:       "Comprehensive business report",
			Period:      report.Period,
			GeneratedAt: e.now(),
			Content:     []byte(report.FormatChat()),
		})
		if err != nil {
			e.logger.Warn("report archive failed", logging.Err(err))
		} else {
			report.ArchiveKey = stored.Key
		}
	}

	return report, nil
}

// ============================================================================
// Helpers
// ============================================================================

// daysInclusive counts calendar days in the inclusive [start, end] pair.
// Both arguments must be midnights in the same location.
func daysInclusive(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours()/24)) + 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
