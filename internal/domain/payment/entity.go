// Package payment implements the Payment bounded context: membership
// payments awaiting front-desk confirmation, walk-in sales, and the payment
// reference scheme used across chat, reports, and reconciliation.
package payment

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Status and method enums
// ─────────────────────────────────────────────────────────────────────────────

// Status is the confirmation state of a membership payment.
type Status string

const (
	// StatusPending means the payment was recorded but not yet verified by
	// staff.
	StatusPending Status = "pending"

	// StatusConfirmed means staff verified the payment; the linked
	// membership activates at this point.
	StatusConfirmed Status = "confirmed"

	// StatusRejected means staff declined the payment.
	StatusRejected Status = "rejected"
)

func (s Status) String() string { return string(s) }

// IsValid reports whether s is one of the defined states.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// Method is the tender type.
type Method string

const (
	MethodCash  Method = "cash"
	MethodGCash Method = "gcash"
)

func (m Method) String() string { return string(m) }

// IsValid reports whether m is a supported tender type.
func (m Method) IsValid() bool {
	return m == MethodCash || m == MethodGCash
}

// ─────────────────────────────────────────────────────────────────────────────
// Payment reference scheme
// ─────────────────────────────────────────────────────────────────────────────

// reReference matches the canonical reference shape: PAY-YYYYMMDD-NNNNNN.
var reReference = regexp.MustCompile(`^PAY-\d{8}-\d{6}$`)

// NewReference builds a payment reference from the given date plus a random
// 6-digit suffix. Uniqueness is enforced by the store, not here.
func NewReference(now time.Time) string {
	return fmt.Sprintf("PAY-%s-%06d", now.UTC().Format("20060102"), rand.N(1_000_000))
}

// ValidReference reports whether s has the canonical reference shape.
// Matching is case-sensitive; callers normalizing user input should
// upper-case it first.
func ValidReference(s string) bool {
	return reReference.MatchString(s)
}

// NewWalkinReference builds a walk-in sale reference: WLK-YYYYMMDD-NNNNNN.
// The WLK prefix keeps walk-in receipts out of the membership payment
// confirmation flow, which only accepts PAY references.
func NewWalkinReference(now time.Time) string {
	return fmt.Sprintf("WLK-%s-%06d", now.UTC().Format("20060102"), rand.N(1_000_000))
}

// ─────────────────────────────────────────────────────────────────────────────
// Payment aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Payment records money received for a membership. It starts pending and is
// confirmed or rejected exactly once by staff.
type Payment struct {
	common.BaseEntity

	MemberID     common.ID `json:"member_id"`
	MembershipID common.ID `json:"membership_id"`

	// PlanName is denormalized by the repository when loading payment
	// history so chat responses avoid a catalog join. Not authoritative.
	PlanName string `json:"plan_name,omitempty"`

	Reference   string    `json:"reference"`
	Amount      float64   `json:"amount"`
	Method      Method    `json:"method"`
	Status      Status    `json:"status"`
	PaymentDate time.Time `json:"payment_date"`

	ConfirmedBy *common.ID `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`

	events []common.DomainEvent
}

// NewPayment records a pending payment for a membership and assigns it a
// fresh reference.
func NewPayment(memberID, membershipID common.ID, amount float64, method Method, now time.Time) (*Payment, error) {
	if memberID == "" {
		return nil, errors.InvalidParam("payment member id must not be empty")
	}
	if membershipID == "" {
		return nil, errors.InvalidParam("payment membership id must not be empty")
	}
	if amount <= 0 {
		return nil, errors.InvalidParam(fmt.Sprintf("payment amount must be positive, got %.2f", amount))
	}
	if !method.IsValid() {
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported payment method %q", method))
	}

	now = now.UTC()
	p := &Payment{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MemberID:     memberID,
		MembershipID: membershipID,
		Reference:    NewReference(now),
		Amount:       amount,
		Method:       method,
		Status:       StatusPending,
		PaymentDate:  now,
	}
	p.recordEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// Confirm marks a pending payment as verified by the given staff account.
// Confirming a payment that is not pending fails with the payment's current
// state in the message.
func (p *Payment) Confirm(actor common.ID, now time.Time) error {
	if p.Status != StatusPending {
		return errors.New(errors.ErrCodePaymentNotPending,
			fmt.Sprintf("payment %s is already %s", p.Reference, p.Status))
	}
	now = now.UTC()
	p.Status = StatusConfirmed
	p.ConfirmedBy = &actor
	p.ConfirmedAt = &now
	p.touch()
	p.recordEvent(NewPaymentConfirmedEvent(p))
	return nil
}

// Reject declines a pending payment.
func (p *Payment) Reject(actor common.ID, now time.Time) error {
	if p.Status != StatusPending {
		return errors.New(errors.ErrCodePaymentNotPending,
			fmt.Sprintf("payment %s is already %s", p.Reference, p.Status))
	}
	now = now.UTC()
	p.Status = StatusRejected
	p.ConfirmedBy = &actor
	p.ConfirmedAt = &now
	p.touch()
	p.recordEvent(NewPaymentRejectedEvent(p))
	return nil
}

// DaysPending returns the whole days the payment has sat unconfirmed, at day
// granularity.
func (p *Payment) DaysPending(now time.Time) int {
	return int(dateOf(now).Sub(dateOf(p.PaymentDate)) / (24 * time.Hour))
}

// Events drains and returns the accumulated domain events.
func (p *Payment) Events() []common.DomainEvent {
	evts := p.events
	p.events = nil
	return evts
}

func (p *Payment) recordEvent(evt common.DomainEvent) {
	p.events = append(p.events, evt)
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// ─────────────────────────────────────────────────────────────────────────────
// Walk-in sales
// ─────────────────────────────────────────────────────────────────────────────

// defaultWalkinCustomer names anonymous front-desk buyers on receipts and
// revenue reports.
const defaultWalkinCustomer = "Walk-in Customer"

// WalkinPayment records a single-visit pass sold at the front desk. Walk-in
// sales are settled immediately and have no confirmation step.
type WalkinPayment struct {
	common.BaseEntity

	PassID       common.ID `json:"pass_id"`
	PassName     string    `json:"pass_name"`
	CustomerName string    `json:"customer_name"`
	Reference    string    `json:"reference"`
	Amount       float64   `json:"amount"`
	Method       Method    `json:"method"`
	PaymentDate  time.Time `json:"payment_date"`

	events []common.DomainEvent
}

// NewWalkinSale records a walk-in pass sale. An empty customer name falls
// back to the anonymous walk-in label.
func NewWalkinSale(passID common.ID, passName, customerName string, amount float64, method Method, now time.Time) (*WalkinPayment, error) {
	if passID == "" {
		return nil, errors.InvalidParam("walk-in pass id must not be empty")
	}
	if strings.TrimSpace(passName) == "" {
		return nil, errors.InvalidParam("walk-in pass name must not be empty")
	}
	if amount <= 0 {
		return nil, errors.InvalidParam(fmt.Sprintf("walk-in amount must be positive, got %.2f", amount))
	}
	if !method.IsValid() {
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported payment method %q", method))
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = defaultWalkinCustomer
	}

	now = now.UTC()
	w := &WalkinPayment{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PassID:       passID,
		PassName:     strings.TrimSpace(passName),
		CustomerName: customerName,
		Reference:    NewWalkinReference(now),
		Amount:       amount,
		Method:       method,
		PaymentDate:  now,
	}
	w.recordEvent(NewWalkinSaleRecordedEvent(w))
	return w, nil
}

// Events drains and returns the accumulated domain events.
func (w *WalkinPayment) Events() []common.DomainEvent {
	evts := w.events
	w.events = nil
	return evts
}

func (w *WalkinPayment) recordEvent(evt common.DomainEvent) {
	w.events = append(w.events, evt)
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
