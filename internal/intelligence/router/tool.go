package router

import (
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Tool identifies a dispatchable operation. The router only decides which
// tool a query maps to; executing it, including the permission check, is the
// dispatcher's job.
type Tool string

const (
	ToolRevenueReport          Tool = "revenue_report"
	ToolGrowthReport           Tool = "growth_report"
	ToolAttendanceReport       Tool = "attendance_report"
	ToolTodaysCheckins         Tool = "todays_checkins"
	ToolRetentionReport        Tool = "retention_report"
	ToolPlanPopularityReport   Tool = "plan_popularity_report"
	ToolPendingPayments        Tool = "pending_payments"
	ToolConfirmPayment         Tool = "confirm_payment"
	ToolExpiringMemberships    Tool = "expiring_memberships"
	ToolInactiveMembers        Tool = "inactive_members"
	ToolMemberDetailsByEmail   Tool = "member_details_by_email"
	ToolMemberDetailsByName    Tool = "member_details_by_name"
	ToolSelfInformation        Tool = "self_information"
	ToolSelfMembershipDuration Tool = "self_membership_duration"
	ToolGeneratePIN            Tool = "generate_pin"
	ToolComprehensiveSummary   Tool = "comprehensive_summary"
)

// AllTools lists every dispatchable tool.
var AllTools = []Tool{
	ToolRevenueReport,
	ToolGrowthReport,
	ToolAttendanceReport,
	ToolTodaysCheckins,
	ToolRetentionReport,
	ToolPlanPopularityReport,
	ToolPendingPayments,
	ToolConfirmPayment,
	ToolExpiringMemberships,
	ToolInactiveMembers,
	ToolMemberDetailsByEmail,
	ToolMemberDetailsByName,
	ToolSelfInformation,
	ToolSelfMembershipDuration,
	ToolGeneratePIN,
	ToolComprehensiveSummary,
}

// String returns the wire value of the tool.
func (t Tool) String() string {
	return string(t)
}

// IsValid reports whether t is a defined tool.
func (t Tool) IsValid() bool {
	switch t {
	case ToolRevenueReport, ToolGrowthReport, ToolAttendanceReport,
		ToolTodaysCheckins, ToolRetentionReport, ToolPlanPopularityReport,
		ToolPendingPayments, ToolConfirmPayment, ToolExpiringMemberships,
		ToolInactiveMembers, ToolMemberDetailsByEmail, ToolMemberDetailsByName,
		ToolSelfInformation, ToolSelfMembershipDuration, ToolGeneratePIN,
		ToolComprehensiveSummary:
		return true
	}
	return false
}

// MinRole returns the lowest role allowed to execute the tool. Self-service
// tools are open to any authenticated member; the comprehensive summary is
// admin-only; everything else is staff territory.
func (t Tool) MinRole() common.Role {
	switch t {
	case ToolSelfInformation, ToolSelfMembershipDuration:
		return common.RoleMember
	case ToolComprehensiveSummary:
		return common.RoleAdmin
	default:
		return common.RoleStaff
	}
}
