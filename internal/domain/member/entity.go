// Package member implements the Member bounded context: member accounts,
// membership plans, walk-in passes, and the membership lifecycle for the
// MemberPulse-Intelligence platform. All business rules that concern members
// and their subscriptions live here; persistence and search are handled by
// the repository and adapter layers.
package member

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Validation patterns
// ─────────────────────────────────────────────────────────────────────────────

var (
	// reEmail is a deliberately loose email shape check. Deliverability is
	// not verified here; the registration flow owns that.
	reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// reKioskPIN matches the 6-digit PIN members punch in at the front-desk
	// kiosk.
	reKioskPIN = regexp.MustCompile(`^\d{6}$`)
)

// validRoles is the set of account roles a member record may carry.
// Role ordering and comparison semantics live in pkg/types/common.
var validRoles = map[common.Role]bool{
	common.RoleMember: true,
	common.RoleStaff:  true,
	common.RoleAdmin:  true,
}

// ─────────────────────────────────────────────────────────────────────────────
// Membership status state machine
// ─────────────────────────────────────────────────────────────────────────────

// MembershipStatus is the lifecycle state of a Membership.
type MembershipStatus string

const (
	// MembershipPending is the initial state: the membership exists but its
	// payment has not been confirmed yet.
	MembershipPending MembershipStatus = "pending"

	// MembershipActive means the membership is paid and within its term.
	MembershipActive MembershipStatus = "active"

	// MembershipExpired means the term has lapsed.
	MembershipExpired MembershipStatus = "expired"

	// MembershipCancelled means the membership was terminated before its
	// natural end date.
	MembershipCancelled MembershipStatus = "cancelled"
)

func (s MembershipStatus) String() string { return string(s) }

// IsValid reports whether s is one of the defined lifecycle states.
func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipPending, MembershipActive, MembershipExpired, MembershipCancelled:
		return true
	}
	return false
}

// membershipTransitions defines the valid next states reachable from each
// status. Transitions not listed are illegal.
//
//	Pending ──► Active ──► Expired
//	   │           │
//	   └───────────┴──► Cancelled
var membershipTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipPending: {MembershipActive, MembershipCancelled},
	MembershipActive:  {MembershipExpired, MembershipCancelled},
	// Terminal states: no outgoing transitions.
	MembershipExpired:   {},
	MembershipCancelled: {},
}

// ─────────────────────────────────────────────────────────────────────────────
// Member aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Member is the aggregate root for a club account: a regular member, a staff
// user, or an admin. Mutations must go through the exported methods so that
// invariants and domain events are maintained.
type Member struct {
	common.BaseEntity

	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Username  string      `json:"username"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	Birthdate *time.Time  `json:"birthdate,omitempty"`
	Role      common.Role `json:"role"`

	// KioskPIN is the 6-digit front-desk check-in code. Empty means the
	// member has not generated one. Never serialized.
	KioskPIN string `json:"-"`

	// Active mirrors whether the account may log in and check in. Inactive
	// accounts are retained for history but excluded from member search.
	Active bool `json:"active"`

	events []common.DomainEvent
}

// NewMember creates a member account, enforcing construction invariants:
// non-empty names and username, a well-formed email, and a known role.
// On success the account is active and a MemberRegistered event is recorded.
func NewMember(firstName, lastName, email, username string, role common.Role) (*Member, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if firstName == "" || lastName == "" {
		return nil, errors.InvalidParam("first and last name must not be empty")
	}
	if username == "" {
		return nil, errors.InvalidParam("username must not be empty")
	}
	if !reEmail.MatchString(email) {
		return nil, errors.InvalidParam(fmt.Sprintf("malformed email address %q", email))
	}
	if !validRoles[role] {
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported role %q", role))
	}

	now := time.Now().UTC()
	m := &Member{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Username:  username,
		Role:      role,
		Active:    true,
	}
	m.recordEvent(NewMemberRegisteredEvent(m))
	return m, nil
}

// FullName returns the display name used across chat responses and reports.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Age returns the member's age in whole years, or 0 when no birthdate is on
// file.
func (m *Member) Age(now time.Time) int {
	if m.Birthdate == nil {
		return 0
	}
	b := m.Birthdate.UTC()
	now = now.UTC()
	years := now.Year() - b.Year()
	anniversary := time.Date(now.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// HasKioskPIN reports whether a check-in PIN has been generated for this
// account.
func (m *Member) HasKioskPIN() bool { return m.KioskPIN != "" }

// SetKioskPIN assigns a new 6-digit check-in PIN. A KioskPINChanged event is
// recorded; the event notes whether this replaced an existing PIN but never
// carries the PIN itself.
func (m *Member) SetKioskPIN(pin string) error {
	if !reKioskPIN.MatchString(pin) {
		return errors.New(errors.ErrCodeMemberCodeInvalid,
			fmt.Sprintf("kiosk PIN must be exactly 6 digits, got %d characters", len(pin)))
	}
	regenerated := m.HasKioskPIN()
	m.KioskPIN = pin
	m.touch()
	m.recordEvent(NewKioskPINChangedEvent(m, regenerated))
	return nil
}

// Deactivate disables the account. Idempotent.
func (m *Member) Deactivate() {
	if !m.Active {
		return
	}
	m.Active = false
	m.touch()
}

// Reactivate re-enables a previously deactivated account. Idempotent.
func (m *Member) Reactivate() {
	if m.Active {
		return
	}
	m.Active = true
	m.touch()
}

// Events drains and returns the domain events accumulated since the last
// call. Callers are responsible for publishing them after the unit of work
// commits.
func (m *Member) Events() []common.DomainEvent {
	evts := m.events
	m.events = nil
	return evts
}

func (m *Member) recordEvent(evt common.DomainEvent) {
	m.events = append(m.events, evt)
}

func (m *Member) touch() {
	m.UpdatedAt = time.Now().UTC()
}

// ─────────────────────────────────────────────────────────────────────────────
// Plan and walk-in pass catalog
// ─────────────────────────────────────────────────────────────────────────────

// Plan is a recurring membership product: a name, a price in PHP, and a term
// in days.
type Plan struct {
	common.BaseEntity

	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	Active       bool    `json:"active"`
}

// NewPlan creates a membership plan, requiring a name, a positive price, and
// a positive term.
func NewPlan(name, description string, price float64, durationDays int) (*Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.InvalidParam("plan name must not be empty")
	}
	if price <= 0 {
		return nil, errors.InvalidParam(fmt.Sprintf("plan price must be positive, got %.2f", price))
	}
	if durationDays <= 0 {
		return nil, errors.InvalidParam(fmt.Sprintf("plan duration must be positive, got %d days", durationDays))
	}
	now := time.Now().UTC()
	return &Plan{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         name,
		Description:  strings.TrimSpace(description),
		Price:        price,
		DurationDays: durationDays,
		Active:       true,
	}, nil
}

// WalkinPass is a single-visit product sold at the front desk without an
// account.
type WalkinPass struct {
	common.BaseEntity

	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	Active       bool    `json:"active"`
}

// NewWalkinPass creates a walk-in pass product valid for a single day.
func NewWalkinPass(name string, price float64) (*WalkinPass, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.InvalidParam("pass name must not be empty")
	}
	if price <= 0 {
		return nil, errors.InvalidParam(fmt.Sprintf("pass price must be positive, got %.2f", price))
	}
	now := time.Now().UTC()
	return &WalkinPass{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         name,
		Price:        price,
		DurationDays: 1,
		Active:       true,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Membership aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Membership ties a member to a plan for a date interval. It starts in the
// pending state and is activated once its payment is confirmed.
type Membership struct {
	common.BaseEntity

	MemberID common.ID `json:"member_id"`
	PlanID   common.ID `json:"plan_id"`

	// PlanName is denormalized by the repository when loading so that chat
	// responses never need a second catalog lookup. Not authoritative.
	PlanName string `json:"plan_name,omitempty"`

	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Status    MembershipStatus `json:"status"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	events []common.DomainEvent
}

// NewMembership creates a pending membership covering [start, end].
func NewMembership(memberID, planID common.ID, start, end time.Time) (*Membership, error) {
	if memberID == "" {
		return nil, errors.InvalidParam("membership member id must not be empty")
	}
	if planID == "" {
		return nil, errors.InvalidParam("membership plan id must not be empty")
	}
	if !end.After(start) {
		return nil, errors.InvalidParam(fmt.Sprintf(
			"membership end date %s must be after start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly)))
	}
	now := time.Now().UTC()
	return &Membership{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MemberID:  memberID,
		PlanID:    planID,
		StartDate: start,
		EndDate:   end,
		Status:    MembershipPending,
	}, nil
}

// Activate transitions the membership from pending to active and records a
// MembershipActivated event.
func (m *Membership) Activate() error {
	if err := m.transition(MembershipActive); err != nil {
		return err
	}
	m.recordEvent(NewMembershipActivatedEvent(m))
	return nil
}

// MarkExpired transitions an active membership to expired. Called by the
// expiry sweep once the end date passes.
func (m *Membership) MarkExpired() error {
	if err := m.transition(MembershipExpired); err != nil {
		return err
	}
	m.recordEvent(NewMembershipExpiredEvent(m))
	return nil
}

// Cancel terminates the membership before its natural end date.
func (m *Membership) Cancel() error {
	if err := m.transition(MembershipCancelled); err != nil {
		return err
	}
	now := time.Now().UTC()
	m.CancelledAt = &now
	m.recordEvent(NewMembershipCancelledEvent(m))
	return nil
}

func (m *Membership) transition(next MembershipStatus) error {
	allowed, ok := membershipTransitions[m.Status]
	if !ok {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("unknown membership status %q", m.Status))
	}
	for _, s := range allowed {
		if s == next {
			m.Status = next
			m.touch()
			return nil
		}
	}
	return errors.New(errors.ErrCodeValidation,
		fmt.Sprintf("illegal membership transition %q to %q", m.Status, next))
}

// IsCurrent reports whether the membership is active and its end date has not
// passed as of now. Date comparison is at day granularity: a membership is
// still current on its end date.
func (m *Membership) IsCurrent(now time.Time) bool {
	return m.Status == MembershipActive && !dateOf(m.EndDate).Before(dateOf(now))
}

// DaysRemaining returns the whole days between now and the end date at day
// granularity. Negative once the end date has passed.
func (m *Membership) DaysRemaining(now time.Time) int {
	return int(dateOf(m.EndDate).Sub(dateOf(now)) / (24 * time.Hour))
}

// ExpiresWithin reports whether an active membership ends within the next
// given number of days (inclusive).
func (m *Membership) ExpiresWithin(now time.Time, days int) bool {
	if m.Status != MembershipActive {
		return false
	}
	remaining := m.DaysRemaining(now)
	return remaining >= 0 && remaining <= days
}

// Events drains and returns the accumulated domain events.
func (m *Membership) Events() []common.DomainEvent {
	evts := m.events
	m.events = nil
	return evts
}

func (m *Membership) recordEvent(evt common.DomainEvent) {
	m.events = append(m.events, evt)
}

func (m *Membership) touch() {
	m.UpdatedAt = time.Now().UTC()
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
