package operations

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// The chat formatters render operation results as the markdown the web
// widget displays. Lists cap at ten rows with an overflow line.

const (
	listDisplayCap    = 10
	detailVisitsShown = 3
	checkinsShown     = 15

	fullDateLayout  = "January 02, 2006"
	shortDateLayout = "Jan 02, 2006"
)

// ============================================================================
// Member lists
// ============================================================================

// memberLine is the common row shape every member-shaped list renders to.
// Empty fields are omitted from output.
type memberLine struct {
	name       string
	email      string
	mobile     string
	status     string
	expiry     string
	expiryDays int
	lastVisit  string
}

func formatMemberLines(lines []memberLine, title string) string {
	if len(lines) == 0 {
		return fmt.Sprintf("No %s found.", strings.ToLower(title))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%d total)\n\n", title, len(lines))
	for i, ln := range lines {
		if i == listDisplayCap {
			break
		}
		name := ln.name
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, name)
		if ln.email != "" {
			fmt.Fprintf(&b, "   📧 %s\n", ln.email)
		}
		if ln.mobile != "" {
			fmt.Fprintf(&b, "   📱 %s\n", ln.mobile)
		}
		if ln.status != "" {
			fmt.Fprintf(&b, "   Status: %s\n", ln.status)
		}
		if ln.expiry != "" {
			fmt.Fprintf(&b, "   Expires: %s (%d days)\n", ln.expiry, ln.expiryDays)
		}
		if ln.lastVisit != "" {
			fmt.Fprintf(&b, "   Last Visit: %s\n", ln.lastVisit)
		}
		b.WriteString("\n")
	}
	if len(lines) > listDisplayCap {
		fmt.Fprintf(&b, "... and %d more\n", len(lines)-listDisplayCap)
	}
	return b.String()
}

// FormatMemberList renders search results. Rows show membership status and,
// when active, the expiry; contact details stay off the compact view.
func FormatMemberList(items []MemberSummary, title string) string {
	lines := make([]memberLine, len(items))
	for i, m := range items {
		lines[i] = memberLine{
			name:       m.Name,
			status:     m.MembershipStatus,
			expiry:     m.ExpiryDate,
			expiryDays: m.DaysRemaining,
		}
	}
	return formatMemberLines(lines, title)
}

// FormatExpiringList renders the expiring-memberships report with contact
// details so staff can reach out.
func FormatExpiringList(items []ExpiringMembership, title string) string {
	lines := make([]memberLine, len(items))
	for i, m := range items {
		lines[i] = memberLine{
			name:       m.MemberName,
			email:      m.MemberEmail,
			mobile:     m.MemberMobile,
			expiry:     m.ExpiryDate,
			expiryDays: m.DaysRemaining,
		}
	}
	return formatMemberLines(lines, title)
}

// FormatInactiveList renders the inactive-members report.
func FormatInactiveList(items []InactiveMember, title string) string {
	lines := make([]memberLine, len(items))
	for i, m := range items {
		lines[i] = memberLine{
			name:      m.MemberName,
			email:     m.MemberEmail,
			mobile:    m.MemberMobile,
			lastVisit: m.LastVisit,
		}
	}
	return formatMemberLines(lines, title)
}

// ============================================================================
// Member details
// ============================================================================

// FormatMemberDetails renders the complete staff-facing member profile.
func FormatMemberDetails(d *MemberDetails) string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 **Member Profile: %s**\n\n", d.PersonalInfo.Name)

	b.WriteString("**Personal Information:**\n")
	fmt.Fprintf(&b, "📧 Email: %s\n", d.PersonalInfo.Email)
	fmt.Fprintf(&b, "📱 Mobile: %s\n", d.PersonalInfo.Mobile)
	if d.PersonalInfo.Age > 0 {
		fmt.Fprintf(&b, "🎂 Age: %d years\n", d.PersonalInfo.Age)
	}
	fmt.Fprintf(&b, "📅 Joined: %s\n\n", d.PersonalInfo.JoinedDate)

	b.WriteString("**Membership Status:**\n")
	if d.Membership.IsActive {
		fmt.Fprintf(&b, "✅ **Active** - %s\n", d.Membership.Plan)
		fmt.Fprintf(&b, "📅 Valid until: %s (%d days left)\n", d.Membership.EndDate, d.Membership.DaysRemaining)
		fmt.Fprintf(&b, "🔑 Kiosk PIN: %s\n", d.Membership.KioskPIN)
	} else {
		b.WriteString("❌ **No Active Membership**\n")
	}

	b.WriteString("\n**Attendance (Last 30 Days):**\n")
	fmt.Fprintf(&b, "🏋️ Total Visits: %d\n", d.Attendance.TotalVisits30Days)
	if len(d.Attendance.RecentVisits) > 0 {
		b.WriteString("\nRecent Visits:\n")
		for i, v := range d.Attendance.RecentVisits {
			if i == detailVisitsShown {
				break
			}
			fmt.Fprintf(&b, "• %s - %s\n", v.CheckIn, v.Duration)
		}
	}
	return b.String()
}

// ============================================================================
// Payment queue
// ============================================================================

// FormatPaymentList renders the pending payment queue. An empty title
// defaults to "Pending Payments".
func FormatPaymentList(items []PendingPayment, title string) string {
	if title == "" {
		title = "Pending Payments"
	}
	if len(items) == 0 {
		return "No pending payments."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💳 **%s** (%d total)\n\n", title, len(items))
	for i, p := range items {
		if i == listDisplayCap {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, p.MemberName)
		fmt.Fprintf(&b, "   Amount: ₱%s\n", pesos(p.Amount))
		fmt.Fprintf(&b, "   Method: %s\n", strings.ToUpper(p.Method))
		fmt.Fprintf(&b, "   Reference: %s\n", p.Reference)
		if p.Plan != "" {
			fmt.Fprintf(&b, "   Plan: %s\n", p.Plan)
		}
		fmt.Fprintf(&b, "   Pending: %d days\n", p.DaysPending)
		b.WriteString("\n")
	}
	if len(items) > listDisplayCap {
		fmt.Fprintf(&b, "... and %d more\n", len(items)-listDisplayCap)
	}
	return b.String()
}

// ============================================================================
// Today's check-ins
// ============================================================================

// FormatCheckinsToday renders the front-desk view of today's traffic, the
// fifteen most recent check-ins shown.
func FormatCheckinsToday(c *CheckinsToday) string {
	if c == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("🏋️ **Today's Check-ins**\n\n")
	fmt.Fprintf(&b, "📅 Date: %s\n", c.Date)
	fmt.Fprintf(&b, "✅ Total Check-ins: %d\n", c.TotalCheckins)
	fmt.Fprintf(&b, "🔥 Currently in Gym: %d\n\n", c.CurrentlyInGym)

	if len(c.Checkins) > 0 {
		b.WriteString("**Recent Check-ins:**\n")
		for i, line := range c.Checkins {
			if i == checkinsShown {
				break
			}
			emoji := "⚪"
			if line.Status == "In gym" {
				emoji = "🟢"
			}
			fmt.Fprintf(&b, "%s %s - %s\n", emoji, line.MemberName, line.CheckInTime)
		}
	}
	return b.String()
}

// ============================================================================
// Operation outcomes
// ============================================================================

// FormatResult renders an operation outcome: the success message when the
// operation went through, or the error in display form.
func FormatResult(message string, err error) string {
	if err != nil {
		return "❌ **Error:** " + capitalizeFirst(errors.GetMessage(err))
	}
	if message != "" {
		return message
	}
	return "✅ Operation completed successfully"
}

// ============================================================================
// Self-service and staff profile views
// ============================================================================

// FormatSelfInfo renders a member's own account view with quick-action
// links.
func (s *Service) FormatSelfInfo(p *MemberProfile) string {
	if p == nil || p.Member == nil {
		return ""
	}
	now := s.now()
	m := p.Member

	var b strings.Builder
	b.WriteString("👤 **Your Information**\n\n")

	b.WriteString("📋 **Personal Details**\n")
	fmt.Fprintf(&b, "• **Name**: %s\n", m.FullName())
	fmt.Fprintf(&b, "• **Email**: %s\n", m.Email)
	if m.Phone != "" {
		fmt.Fprintf(&b, "• **Phone**: %s\n", m.Phone)
	}
	if m.Address != "" {
		fmt.Fprintf(&b, "• **Address**: %s\n", m.Address)
	}
	if m.Birthdate != nil {
		fmt.Fprintf(&b, "• **Birthday**: %s\n", m.Birthdate.In(s.loc).Format(fullDateLayout))
	}
	if age := m.Age(now); age > 0 {
		fmt.Fprintf(&b, "• **Age**: %d\n", age)
	}
	b.WriteString("\n")

	b.WriteString("💳 **Membership Status**\n")
	if p.Membership != nil {
		b.WriteString("✅ **Status**: Active\n")
		fmt.Fprintf(&b, "📅 **Plan**: %s\n", p.Membership.PlanName)
		fmt.Fprintf(&b, "⏳ **Days Remaining**: %d days\n", p.Membership.DaysRemaining(now))
		fmt.Fprintf(&b, "🔄 **Expires**: %s\n", p.Membership.EndDate.In(s.loc).Format(fullDateLayout))
		fmt.Fprintf(&b, "📍 **Started**: %s\n", p.Membership.StartDate.In(s.loc).Format(fullDateLayout))
	} else {
		b.WriteString("❌ **Status**: No Active Membership\n")
	}
	b.WriteString("\n")

	b.WriteString("⚙️ **Account Information**\n")
	fmt.Fprintf(&b, "• **Role**: %s\n", roleDisplay(m.Role))
	fmt.Fprintf(&b, "• **Member Since**: %s\n", m.CreatedAt.In(s.loc).Format(fullDateLayout))
	if m.HasKioskPIN() {
		fmt.Fprintf(&b, "• **Kiosk PIN**: `%s`\n", m.KioskPIN)
	}
	b.WriteString("\n")

	b.WriteString("🔗 **Quick Actions**\n")
	b.WriteString("• View [Membership Plans](/plans/) - Browse available plans\n")
	b.WriteString("• Go to [Dashboard](/dashboard/) - Your full account\n")
	b.WriteString("• Check [Attendance History](/attendance/) - Your gym visits\n")
	return b.String()
}

// FormatStaffMemberProfile renders the staff lookup view of a member:
// contact details, membership, recent payments, and action links.
func (s *Service) FormatStaffMemberProfile(p *MemberProfile) string {
	if p == nil || p.Member == nil {
		return ""
	}
	now := s.now()
	m := p.Member

	var b strings.Builder
	fmt.Fprintf(&b, "👤 **Member Profile: %s**\n\n", m.FullName())

	b.WriteString("📋 **Personal Details**\n")
	fmt.Fprintf(&b, "• **Name**: %s\n", m.FullName())
	fmt.Fprintf(&b, "• **Email**: %s\n", m.Email)
	fmt.Fprintf(&b, "• **Username**: %s\n", m.Username)
	if m.Phone != "" {
		fmt.Fprintf(&b, "• **Phone**: %s\n", m.Phone)
	}
	if m.Address != "" {
		fmt.Fprintf(&b, "• **Address**: %s\n", m.Address)
	}
	if m.Birthdate != nil {
		fmt.Fprintf(&b, "• **Birthday**: %s\n", m.Birthdate.In(s.loc).Format(fullDateLayout))
		fmt.Fprintf(&b, "• **Age**: %d\n", m.Age(now))
	}
	b.WriteString("\n")

	b.WriteString("💳 **Membership Status**\n")
	if p.Membership != nil {
		b.WriteString("✅ **Status**: Active\n")
		fmt.Fprintf(&b, "📅 **Plan**: %s\n", p.Membership.PlanName)
		fmt.Fprintf(&b, "⏳ **Days Remaining**: %d days\n", p.Membership.DaysRemaining(now))
		fmt.Fprintf(&b, "🔄 **Expires**: %s\n", p.Membership.EndDate.In(s.loc).Format(fullDateLayout))
		fmt.Fprintf(&b, "📍 **Started**: %s\n", p.Membership.StartDate.In(s.loc).Format(fullDateLayout))
	} else {
		b.WriteString("❌ **Status**: No Active Membership\n")
	}
	b.WriteString("\n")

	b.WriteString("💰 **Recent Payments**\n")
	if len(p.Payments) > 0 {
		for _, pay := range p.Payments {
			fmt.Fprintf(&b, "%s %s - ₱%.2f (%s) - %s\n",
				paymentStatusEmoji(pay.Status),
				pay.PaymentDate.In(s.loc).Format(shortDateLayout),
				pay.Amount,
				methodDisplay(pay.Method),
				statusDisplay(pay.Status))
		}
	} else {
		b.WriteString("No payment records found.\n")
	}
	b.WriteString("\n")

	b.WriteString("⚙️ **Account Information**\n")
	fmt.Fprintf(&b, "• **Member Since**: %s\n", m.CreatedAt.In(s.loc).Format(fullDateLayout))
	accountStatus := "Inactive"
	if m.Active {
		accountStatus = "Active"
	}
	fmt.Fprintf(&b, "• **Account Status**: %s\n", accountStatus)
	if m.HasKioskPIN() {
		fmt.Fprintf(&b, "• **Kiosk PIN**: `%s`\n", m.KioskPIN)
	} else {
		fmt.Fprintf(&b, "• **Kiosk PIN**: Not assigned (Generate with 'generate pin for %s')\n", m.FirstName)
	}
	b.WriteString("\n")

	b.WriteString("🔗 **Staff Actions**\n")
	fmt.Fprintf(&b, "• View [Member Profile](/admin/members/%s/) - Full profile edit\n", m.ID)
	b.WriteString("• Check [Pending Payments](/pending-payments/) - Process any payments\n")
	fmt.Fprintf(&b, "• View [Attendance](/attendance/?member=%s) - Check-in/out history\n", m.ID)
	return b.String()
}

// FormatMembershipDuration renders the member's own "how long do I have
// left" view.
func (s *Service) FormatMembershipDuration(p *MemberProfile) string {
	if p == nil || p.Membership == nil {
		return "📅 You don't have an active membership currently.\n\nVisit the Membership Plans page to subscribe."
	}
	days := p.Membership.DaysRemaining(s.now())

	var b strings.Builder
	b.WriteString("✅ **Your Membership Status**\n\n")
	fmt.Fprintf(&b, "📅 **Days Remaining**: %d days\n", days)
	fmt.Fprintf(&b, "🔄 **Expires On**: %s\n", p.Membership.EndDate.In(s.loc).Format(fullDateLayout))
	fmt.Fprintf(&b, "💳 **Plan**: %s\n\n", p.Membership.PlanName)
	if days <= 7 {
		b.WriteString("⚠️ Your membership is expiring soon! Consider renewing now.\n")
	} else {
		b.WriteString("✨ Your membership is in good standing.\n")
	}
	return b.String()
}

// ============================================================================
// Helpers
// ============================================================================

// durationDisplay renders a visit length as "1h 25m" or "45m".
func durationDisplay(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d.Minutes())
	if h := mins / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

// capitalizeFirst upper-cases the first rune for display. Error messages are
// lowercase by convention; chat output is not.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func roleDisplay(r common.Role) string {
	switch r {
	case common.RoleMember:
		return "Member"
	case common.RoleStaff:
		return "Staff"
	case common.RoleAdmin:
		return "Admin"
	}
	return capitalizeFirst(string(r))
}

func methodDisplay(m payment.Method) string {
	switch m {
	case payment.MethodCash:
		return "Cash"
	case payment.MethodGCash:
		return "GCash"
	}
	return capitalizeFirst(string(m))
}

func statusDisplay(st payment.Status) string {
	return capitalizeFirst(string(st))
}

func paymentStatusEmoji(st payment.Status) string {
	switch st {
	case payment.StatusConfirmed:
		return "✅"
	case payment.StatusPending:
		return "⏳"
	}
	return "❌"
}

// pesos renders an amount with comma grouping and centavos: 12345.5 →
// "12,345.50".
func pesos(v float64) string {
	return groupThousands(strconv.FormatFloat(v, 'f', 2, 64))
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
