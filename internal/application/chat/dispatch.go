package chat

import (
	"context"
	"fmt"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// dispatch executes one routed tool call and renders the result for the
// chat widget. The role gate already passed; the operations service still
// enforces its own, so a drifted mapping fails closed.
func (s *Service) dispatch(ctx context.Context, actor operations.Actor, d router.Decision) (string, error) {
	switch d.Tool {

	// Analytical reports.
	case router.ToolRevenueReport:
		rep, err := s.reports.Revenue(ctx, d.Args.Period)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	case router.ToolGrowthReport:
		rep, err := s.reports.MembershipGrowth(ctx, d.Args.Period)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	case router.ToolAttendanceReport:
		rep, err := s.reports.AttendanceTrends(ctx, d.Args.Period)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	case router.ToolRetentionReport:
		rep, err := s.reports.Retention(ctx)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	case router.ToolPlanPopularityReport:
		rep, err := s.reports.PlanPopularity(ctx, d.Args.Period)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	case router.ToolComprehensiveSummary:
		rep, err := s.reports.Comprehensive(ctx, d.Args.Period)
		if err != nil {
			return "", err
		}
		return rep.FormatChat(), nil

	// Operational actions and listings.
	case router.ToolTodaysCheckins:
		res, err := s.ops.TodaysCheckins(ctx, actor)
		if err != nil {
			return "", err
		}
		return operations.FormatCheckinsToday(res), nil

	case router.ToolPendingPayments:
		items, err := s.ops.PendingPayments(ctx, actor)
		if err != nil {
			return "", err
		}
		return operations.FormatPaymentList(items, "Pending Payments"), nil

	case router.ToolConfirmPayment:
		res, err := s.ops.ConfirmPayment(ctx, actor, d.Args.Reference)
		if err != nil {
			return "", err
		}
		return operations.FormatResult(res.Message, nil), nil

	case router.ToolExpiringMemberships:
		items, err := s.ops.FindExpiringMemberships(ctx, actor, d.Args.Days)
		if err != nil {
			return "", err
		}
		title := fmt.Sprintf("Memberships Expiring in %d Days", d.Args.Days)
		return operations.FormatExpiringList(items, title), nil

	case router.ToolInactiveMembers:
		items, err := s.ops.FindInactiveMembers(ctx, actor, d.Args.Days)
		if err != nil {
			return "", err
		}
		return operations.FormatInactiveList(items, "Inactive Members"), nil

	case router.ToolGeneratePIN:
		res, err := s.ops.GenerateKioskPIN(ctx, actor, d.Args.Identifier)
		if err != nil {
			return "", err
		}
		return operations.FormatResult(res.Message, nil), nil

	// Member lookups.
	case router.ToolMemberDetailsByEmail:
		p, err := s.ops.LookupMemberByEmail(ctx, actor, d.Args.Email)
		if err != nil {
			return "", err
		}
		return s.ops.FormatStaffMemberProfile(p), nil

	case router.ToolMemberDetailsByName:
		p, err := s.ops.LookupMemberByName(ctx, actor, d.Args.Name)
		if err != nil {
			return "", err
		}
		return s.ops.FormatStaffMemberProfile(p), nil

	case router.ToolSelfInformation:
		p, err := s.ops.SelfProfile(ctx, actor.ID)
		if err != nil {
			return "", err
		}
		return s.ops.FormatSelfInfo(p), nil

	case router.ToolSelfMembershipDuration:
		p, err := s.ops.SelfProfile(ctx, actor.ID)
		if err != nil {
			return "", err
		}
		return s.ops.FormatMembershipDuration(p), nil
	}

	return "", errors.Newf(errors.ErrCodeToolDispatchFailed,
		"no dispatcher for tool %s", d.Tool)
}
