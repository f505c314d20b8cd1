package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ============================================================================
// Result types
// ============================================================================

// ConfirmResult reports a payment confirmation.
type ConfirmResult struct {
	Message             string  `json:"message"`
	Member              string  `json:"member"`
	Amount              float64 `json:"amount"`
	MembershipActivated bool    `json:"membership_activated"`
}

// PINResult reports a kiosk PIN generation. Action is "generated" for a
// first PIN and "regenerated" when it replaced one.
type PINResult struct {
	Message string `json:"message"`
	Member  string `json:"member"`
	PIN     string `json:"pin"`
	Action  string `json:"action"`
}

// WalkinSaleRequest records a front-desk walk-in pass sale.
type WalkinSaleRequest struct {
	PassName     string
	Amount       float64
	CustomerName string
	Method       payment.Method
}

// WalkinSaleResult reports a recorded walk-in sale.
type WalkinSaleResult struct {
	Message   string  `json:"message"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	PassType  string  `json:"pass_type"`
	Customer  string  `json:"customer"`
}

// ReminderBatch is the prepared renewal reminder list. Delivery is handled
// by the mail system, not here.
type ReminderBatch struct {
	Message string               `json:"message"`
	Members []ExpiringMembership `json:"members"`
	Note    string               `json:"note"`
}

// ============================================================================
// Payment confirmation
// ============================================================================

// ConfirmPayment verifies a pending payment by reference and activates the
// membership it paid for. Requires staff.
func (s *Service) ConfirmPayment(ctx context.Context, actor Actor, reference string) (*ConfirmResult, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	p, err := s.payments.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodePaymentNotFound) {
			return nil, errors.Newf(errors.ErrCodePaymentNotFound, "payment not found: %s", reference)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading payment")
	}

	if err := p.Confirm(actor.ID, s.clock()); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "updating payment")
	}
	events := p.Events()

	// A confirmed payment activates the membership it paid for. The two
	// aggregates commit separately; if the second write fails the payment
	// stays confirmed and the error surfaces to the operator.
	activated := false
	ms, err := s.members.GetMembershipByID(ctx, p.MembershipID)
	switch {
	case err != nil && (errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMembershipNotFound)):
		s.logger.Warn("confirmed payment references missing membership",
			logging.String("reference", p.Reference),
			logging.String("membership_id", p.MembershipID.String()))
	case err != nil:
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading membership")
	case ms.Status == member.MembershipPending:
		if err := ms.Activate(); err != nil {
			return nil, err
		}
		if err := s.members.UpdateMembership(ctx, ms); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "activating membership")
		}
		events = append(events, ms.Events()...)
		activated = true
	}

	memberName := ""
	if m, err := s.memberOf(ctx, p.MemberID); err != nil {
		return nil, err
	} else if m != nil {
		memberName = m.FullName()
	}

	s.audit(ctx, actor, audit.ActionPaymentReceived,
		fmt.Sprintf("Payment confirmed: %s - ₱%.2f for %s", p.Reference, p.Amount, memberName),
		common.Metadata{"payment_id": p.ID.String(), "amount": p.Amount})
	s.publish(ctx, events...)
	s.clearReportCaches(ctx)

	return &ConfirmResult{
		Message:             fmt.Sprintf("✅ Payment %s confirmed successfully", reference),
		Member:              memberName,
		Amount:              p.Amount,
		MembershipActivated: activated,
	}, nil
}

// ============================================================================
// Kiosk PIN management
// ============================================================================

// GenerateKioskPIN assigns a fresh check-in PIN to a member found by name,
// email, or ID. Requires staff. The PIN is returned to the operator but
// never written to the audit trail.
func (s *Service) GenerateKioskPIN(ctx context.Context, actor Actor, identifier string) (*PINResult, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}
	m, err := s.resolveMember(ctx, identifier)
	if err != nil {
		return nil, err
	}

	action := "generated"
	if m.HasKioskPIN() {
		action = "regenerated"
	}

	pin, err := s.newKioskPIN(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.SetKioskPIN(pin); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "updating member")
	}

	s.audit(ctx, actor, audit.ActionUserUpdated,
		fmt.Sprintf("Kiosk PIN %s for %s", action, m.FullName()),
		common.Metadata{"member_id": m.ID.String()})
	s.publish(ctx, m.Events()...)

	return &PINResult{
		Message: fmt.Sprintf("✅ Kiosk PIN generated for %s", m.FullName()),
		Member:  m.FullName(),
		PIN:     pin,
		Action:  action,
	}, nil
}

// ============================================================================
// Walk-in sales
// ============================================================================

// CreateWalkinSale records a walk-in pass sale at the front desk. Requires
// staff. The method defaults to cash.
func (s *Service) CreateWalkinSale(ctx context.Context, actor Actor, req WalkinSaleRequest) (*WalkinSaleResult, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	notFound := errors.Newf(errors.ErrCodeNotFound, "walk-in pass not found: %s", req.PassName)
	pass, err := s.members.GetPassByName(ctx, req.PassName)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, notFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading walk-in pass")
	}
	if !pass.Active {
		return nil, notFound
	}

	method := req.Method
	if method == "" {
		method = payment.MethodCash
	}
	sale, err := payment.NewWalkinSale(pass.ID, pass.Name, req.CustomerName, req.Amount, method, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.payments.CreateWalkin(ctx, sale); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "recording walk-in sale")
	}

	s.audit(ctx, actor, audit.ActionWalkinSale,
		fmt.Sprintf("Walk-in sale recorded: %s - ₱%.2f", pass.Name, sale.Amount),
		common.Metadata{"reference": sale.Reference, "amount": sale.Amount})
	s.publish(ctx, sale.Events()...)
	s.clearReportCaches(ctx)

	return &WalkinSaleResult{
		Message:   fmt.Sprintf("✅ Walk-in sale recorded: %s", pass.Name),
		Reference: sale.Reference,
		Amount:    sale.Amount,
		PassType:  pass.Name,
		Customer:  sale.CustomerName,
	}, nil
}

// ============================================================================
// Renewal reminders
// ============================================================================

// SendRenewalReminders prepares the list of members whose memberships expire
// within the given number of days. Delivery goes through the mail system;
// this only assembles and records the batch. Requires staff.
func (s *Service) SendRenewalReminders(ctx context.Context, actor Actor, days int) (*ReminderBatch, error) {
	if days <= 0 {
		days = defaultExpiryHorizon
	}
	members, err := s.FindExpiringMemberships(ctx, actor, days)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actor, audit.ActionReportGenerated,
		fmt.Sprintf("Renewal reminder list generated: %d members", len(members)),
		common.Metadata{"reminder_count": len(members), "days_ahead": days})

	return &ReminderBatch{
		Message: fmt.Sprintf("📧 Prepared renewal reminders for %d members", len(members)),
		Members: members,
		Note:    "Please use the email system to send these reminders",
	}, nil
}
