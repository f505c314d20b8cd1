package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Chat Formatting
// ============================================================================

func TestRevenueReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &RevenueReport{
		Period:            "today",
		TotalRevenue:      12345.5,
		MembershipRevenue: 12000,
		WalkinRevenue:     345.5,
		PaymentMethods:    MethodBreakdown{Cash: 10345.5, GCash: 2000},
		Currency:          "PHP",
	}

	want := "💰 **Revenue Report - Today**\n\n" +
		"📊 Total Revenue: ₱12,345.50\n" +
		"   • Membership Sales: ₱12,000.00\n" +
		"   • Walk-in Sales: ₱345.50\n\n" +
		"💳 Payment Methods:\n" +
		"   • Cash: ₱10,345.50\n" +
		"   • GCash: ₱2,000.00\n"
	assert.Equal(t, want, r.FormatChat())
}

func TestGrowthReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &GrowthReport{
		Period:               "this_month",
		NewMemberships:       12,
		ActiveMemberships:    48,
		ExpiredMemberships:   3,
		CancelledMemberships: 1,
		GrowthRate:           20,
		Comparison:           GrowthComparison{CurrentPeriod: 12, PreviousPeriod: 10, Change: 2},
	}

	want := "📈 **Membership Growth - This Month**\n\n" +
		"✅ New Memberships: 12\n" +
		"🔥 Active Memberships: 48\n" +
		"⏰ Expired: 3\n" +
		"❌ Cancelled: 1\n\n" +
		"📈 Growth Rate: +20.0% vs previous period\n" +
		"   (Current: 12, Previous: 10)"
	assert.Equal(t, want, r.FormatChat())
}

func TestGrowthReportFormatChatDirectionEmoji(t *testing.T) {
	t.Parallel()

	shrinking := &GrowthReport{Period: "this_week", GrowthRate: -12.5}
	assert.Contains(t, shrinking.FormatChat(), "📉 Growth Rate: -12.5% vs previous period")

	flat := &GrowthReport{Period: "this_week", GrowthRate: 0}
	assert.Contains(t, flat.FormatChat(), "➡️ Growth Rate: +0.0% vs previous period")
}

func TestAttendanceReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &AttendanceReport{
		Period:             "this_week",
		TotalCheckins:      42,
		UniqueVisitors:     18,
		AvgDurationMinutes: 45.4,
		PeakHour:           PeakHour{Hour: 18, Checkins: 9},
	}

	want := "🏋️ **Attendance Report - This Week**\n\n" +
		"👥 Total Check-ins: 42\n" +
		"🧑 Unique Visitors: 18\n" +
		"⏱️ Average Session: 45 minutes\n\n" +
		"🔥 Peak Hour: 18:00 - 19:00 (9 check-ins)"
	assert.Equal(t, want, r.FormatChat())
}

func TestAttendanceReportFormatChatOmitsEmptyPeakHour(t *testing.T) {
	t.Parallel()
	r := &AttendanceReport{Period: "today"}

	got := r.FormatChat()
	assert.NotContains(t, got, "Peak Hour")
	assert.True(t, strings.HasSuffix(got, "minutes\n\n"))
}

func TestRetentionReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &RetentionReport{
		ActiveMembers: 50,
		ExpiringSoon:  ExpiringSoon{Next7Days: 2, Next14Days: 5, Next30Days: 9},
		ChurnAnalysis: ChurnAnalysis{ChurnRate30Days: 6, ExpiredLastMonth: 2, CancelledLastMonth: 1, TotalChurn: 3},
		RenewalRate:   50,
		RetentionRate: 94,
	}

	want := "📊 **Member Retention Analysis**\n\n" +
		"👤 Active Members: 50\n\n" +
		"⚠️ Expiring Soon:\n" +
		"   • Next 7 days: 2\n" +
		"   • Next 14 days: 5\n" +
		"   • Next 30 days: 9\n\n" +
		"📉 Churn Rate (30 days): 6%\n" +
		"♻️ Renewal Rate: 50%\n" +
		"✅ Retention Rate: 94%"
	assert.Equal(t, want, r.FormatChat())
}

func TestRetentionReportFormatChatKeepsDecimals(t *testing.T) {
	t.Parallel()
	r := &RetentionReport{ChurnAnalysis: ChurnAnalysis{ChurnRate30Days: 6.25}, RetentionRate: 93.75}

	got := r.FormatChat()
	assert.Contains(t, got, "📉 Churn Rate (30 days): 6.25%")
	assert.Contains(t, got, "✅ Retention Rate: 93.75%")
}

func TestPlanPopularityReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &PlanPopularityReport{
		Period: "this_month",
		MembershipPlans: []PlanSales{
			{Name: "Monthly", Price: 1000, DurationDays: 30, Purchases: 12, Revenue: 12000},
			{Name: "Quarterly", Price: 2700, DurationDays: 90, Purchases: 4, Revenue: 10800},
		},
		WalkinPasses: []PlanSales{
			{Name: "Day Pass", Price: 50, DurationDays: 1, Purchases: 30, Revenue: 1500},
		},
	}

	want := "🎯 **Plan Popularity - This Month**\n\n" +
		"**Membership Plans:**\n" +
		"1. Monthly - 12 sales (₱12,000)\n" +
		"2. Quarterly - 4 sales (₱10,800)\n" +
		"\n**Walk-in Passes:**\n" +
		"1. Day Pass - 30 sales (₱1,500)\n"
	assert.Equal(t, want, r.FormatChat())
}

func TestPlanPopularityReportFormatChatCapsAtFive(t *testing.T) {
	t.Parallel()
	r := &PlanPopularityReport{Period: "this_year"}
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		r.MembershipPlans = append(r.MembershipPlans, PlanSales{Name: name, Purchases: 1})
	}

	got := r.FormatChat()
	assert.Contains(t, got, "5. E - 1 sales")
	assert.NotContains(t, got, "F - 1 sales")
}

func TestPaymentStatusReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &PaymentStatusReport{
		Pending:            PaymentBucket{Count: 3, TotalAmount: 2500},
		ConfirmedThisMonth: PaymentBucket{Count: 10, TotalAmount: 15000},
		RejectedThisMonth:  2,
		CollectionRate:     66.67,
	}

	want := "💳 **Payment Collection Status**\n\n" +
		"⏳ Pending Approvals: 3 (₱2,500.00)\n" +
		"✅ Confirmed (This Month): 10 (₱15,000.00)\n" +
		"❌ Rejected (This Month): 2\n\n" +
		"📊 Collection Rate: 66.67%"
	assert.Equal(t, want, r.FormatChat())
}

func TestComprehensiveReportFormatChat(t *testing.T) {
	t.Parallel()
	r := &ComprehensiveReport{
		Period:           "today",
		Revenue:          &RevenueReport{TotalRevenue: 8500},
		MembershipGrowth: &GrowthReport{NewMemberships: 4, ActiveMemberships: 52},
		Attendance:       &AttendanceReport{TotalCheckins: 31},
		Retention:        &RetentionReport{RetentionRate: 94.5},
	}

	want := "📊 **Comprehensive Performance Summary**\n\n" +
		"💰 Revenue: ₱8,500.00\n" +
		"📈 New Members: 4\n" +
		"🔥 Active Members: 52\n" +
		"🏋️ Check-ins: 31\n" +
		"✅ Retention Rate: 94.5%\n"
	assert.Equal(t, want, r.FormatChat())
}

func TestComprehensiveReportFormatChatToleratesMissingSections(t *testing.T) {
	t.Parallel()
	r := &ComprehensiveReport{Period: "today"}

	got := r.FormatChat()
	assert.Contains(t, got, "💰 Revenue: ₱0.00")
	assert.Contains(t, got, "✅ Retention Rate: 0%")
}

// ============================================================================
// Formatting Helpers
// ============================================================================

func TestPesos(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{345.5, "345.50"},
		{999.999, "1,000.00"},
		{12345.5, "12,345.50"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pesos(tt.in), "pesos(%v)", tt.in)
	}
}

func TestPesosWhole(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", pesosWhole(0))
	assert.Equal(t, "1,500", pesosWhole(1500))
	assert.Equal(t, "12,346", pesosWhole(12345.6))
}

func TestPercent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", percent(0))
	assert.Equal(t, "12.5", percent(12.5))
	assert.Equal(t, "66.67", percent(66.67))
	assert.Equal(t, "100", percent(100))
}

func TestPeriodTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Today", periodTitle("today"))
	assert.Equal(t, "This Month", periodTitle("this_month"))
	assert.Equal(t, "Last Week", periodTitle("last_week"))
}

func TestGroupThousands(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "999", groupThousands("999"))
	assert.Equal(t, "1,000", groupThousands("1000"))
	assert.Equal(t, "1,234,567.89", groupThousands("1234567.89"))
	assert.Equal(t, "-12,345.67", groupThousands("-12345.67"))
}
