package analytics

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// Chat Formatting
// ============================================================================
//
// FormatChat renders a report as the markdown message the chatbot sends.
// Layout and emoji are part of the product surface; change them only
// together with the frontend that displays them.

const topSales = 5

// FormatChat renders the revenue report.
func (r *RevenueReport) FormatChat() string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 **Revenue Report - %s**\n\n", periodTitle(r.Period))
	fmt.Fprintf(&b, "📊 Total Revenue: ₱%s\n", pesos(r.TotalRevenue))
	fmt.Fprintf(&b, "   • Membership Sales: ₱%s\n", pesos(r.MembershipRevenue))
	fmt.Fprintf(&b, "   • Walk-in Sales: ₱%s\n\n", pesos(r.WalkinRevenue))
	b.WriteString("💳 Payment Methods:\n")
	fmt.Fprintf(&b, "   • Cash: ₱%s\n", pesos(r.PaymentMethods.Cash))
	fmt.Fprintf(&b, "   • GCash: ₱%s\n", pesos(r.PaymentMethods.GCash))
	return b.String()
}

// FormatChat renders the growth report.
func (r *GrowthReport) FormatChat() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 **Membership Growth - %s**\n\n", periodTitle(r.Period))
	fmt.Fprintf(&b, "✅ New Memberships: %d\n", r.NewMemberships)
	fmt.Fprintf(&b, "🔥 Active Memberships: %d\n", r.ActiveMemberships)
	fmt.Fprintf(&b, "⏰ Expired: %d\n", r.ExpiredMemberships)
	fmt.Fprintf(&b, "❌ Cancelled: %d\n\n", r.CancelledMemberships)

	emoji := "➡️"
	switch {
	case r.GrowthRate > 0:
		emoji = "📈"
	case r.GrowthRate < 0:
		emoji = "📉"
	}
	fmt.Fprintf(&b, "%s Growth Rate: %+.1f%% vs previous period\n", emoji, r.GrowthRate)
	fmt.Fprintf(&b, "   (Current: %d, Previous: %d)", r.Comparison.CurrentPeriod, r.Comparison.PreviousPeriod)
	return b.String()
}

// FormatChat renders the attendance report.
func (r *AttendanceReport) FormatChat() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏋️ **Attendance Report - %s**\n\n", periodTitle(r.Period))
	fmt.Fprintf(&b, "👥 Total Check-ins: %d\n", r.TotalCheckins)
	fmt.Fprintf(&b, "🧑 Unique Visitors: %d\n", r.UniqueVisitors)
	fmt.Fprintf(&b, "⏱️ Average Session: %.0f minutes\n\n", r.AvgDurationMinutes)

	if r.PeakHour.Checkins > 0 {
		fmt.Fprintf(&b, "🔥 Peak Hour: %02d:00 - %02d:00 (%d check-ins)",
			r.PeakHour.Hour, r.PeakHour.Hour+1, r.PeakHour.Checkins)
	}
	return b.String()
}

// FormatChat renders the retention report.
func (r *RetentionReport) FormatChat() string {
	var b strings.Builder
	b.WriteString("📊 **Member Retention Analysis**\n\n")
	fmt.Fprintf(&b, "👤 Active Members: %d\n\n", r.ActiveMembers)
	b.WriteString("⚠️ Expiring Soon:\n")
	fmt.Fprintf(&b, "   • Next 7 days: %d\n", r.ExpiringSoon.Next7Days)
	fmt.Fprintf(&b, "   • Next 14 days: %d\n", r.ExpiringSoon.Next14Days)
	fmt.Fprintf(&b, "   • Next 30 days: %d\n\n", r.ExpiringSoon.Next30Days)
	fmt.Fprintf(&b, "📉 Churn Rate (30 days): %s%%\n", percent(r.ChurnAnalysis.ChurnRate30Days))
	fmt.Fprintf(&b, "♻️ Renewal Rate: %s%%\n", percent(r.RenewalRate))
	fmt.Fprintf(&b, "✅ Retention Rate: %s%%", percent(r.RetentionRate))
	return b.String()
}

// FormatChat renders the plan popularity report, top five plans and passes.
func (r *PlanPopularityReport) FormatChat() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Plan Popularity - %s**\n\n", periodTitle(r.Period))

	if len(r.MembershipPlans) > 0 {
		b.WriteString("**Membership Plans:**\n")
		for i, plan := range capSales(r.MembershipPlans) {
			fmt.Fprintf(&b, "%d. %s - %d sales (₱%s)\n", i+1, plan.Name, plan.Purchases, pesosWhole(plan.Revenue))
		}
	}
	if len(r.WalkinPasses) > 0 {
		b.WriteString("\n**Walk-in Passes:**\n")
		for i, pass := range capSales(r.WalkinPasses) {
			fmt.Fprintf(&b, "%d. %s - %d sales (₱%s)\n", i+1, pass.Name, pass.Purchases, pesosWhole(pass.Revenue))
		}
	}
	return b.String()
}

func capSales(lines []PlanSales) []PlanSales {
	if len(lines) > topSales {
		return lines[:topSales]
	}
	return lines
}

// FormatChat renders the payment collection report.
func (r *PaymentStatusReport) FormatChat() string {
	var b strings.Builder
	b.WriteString("💳 **Payment Collection Status**\n\n")
	fmt.Fprintf(&b, "⏳ Pending Approvals: %d (₱%s)\n", r.Pending.Count, pesos(r.Pending.TotalAmount))
	fmt.Fprintf(&b, "✅ Confirmed (This Month): %d (₱%s)\n", r.ConfirmedThisMonth.Count, pesos(r.ConfirmedThisMonth.TotalAmount))
	fmt.Fprintf(&b, "❌ Rejected (This Month): %d\n\n", r.RejectedThisMonth)
	fmt.Fprintf(&b, "📊 Collection Rate: %s%%", percent(r.CollectionRate))
	return b.String()
}

// FormatChat renders the one-screen summary of the comprehensive report.
// Missing sub-reports render as zeros rather than panicking.
func (r *ComprehensiveReport) FormatChat() string {
	var totalRevenue float64
	if r.Revenue != nil {
		totalRevenue = r.Revenue.TotalRevenue
	}
	var newMembers, activeMembers int64
	if r.MembershipGrowth != nil {
		newMembers = r.MembershipGrowth.NewMemberships
		activeMembers = r.MembershipGrowth.ActiveMemberships
	}
	var checkins int
	if r.Attendance != nil {
		checkins = r.Attendance.TotalCheckins
	}
	var retentionRate float64
	if r.Retention != nil {
		retentionRate = r.Retention.RetentionRate
	}

	var b strings.Builder
	b.WriteString("📊 **Comprehensive Performance Summary**\n\n")
	fmt.Fprintf(&b, "💰 Revenue: ₱%s\n", pesos(totalRevenue))
	fmt.Fprintf(&b, "📈 New Members: %d\n", newMembers)
	fmt.Fprintf(&b, "🔥 Active Members: %d\n", activeMembers)
	fmt.Fprintf(&b, "🏋️ Check-ins: %d\n", checkins)
	fmt.Fprintf(&b, "✅ Retention Rate: %s%%\n", percent(retentionRate))
	return b.String()
}

// ============================================================================
// Formatting Helpers
// ============================================================================

// periodTitle renders a period slug as a heading: "this_month" → "This Month".
func periodTitle(period string) string {
	words := strings.Split(strings.ReplaceAll(period, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// pesos renders an amount with comma grouping and centavos: 12345.5 →
// "12,345.50".
func pesos(v float64) string {
	return groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

// pesosWhole renders an amount with comma grouping and no centavos.
func pesosWhole(v float64) string {
	return groupThousands(strconv.FormatFloat(v, 'f', 0, 64))
}

// percent renders an already-rounded rate in its shortest decimal form:
// 16.67 → "16.67", 20 → "20".
func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// groupThousands inserts comma separators into the integer part of a
// formatted decimal number.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	out := intPart + frac
	if neg {
		out = "-" + out
	}
	return out
}
