package member

import (
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// MemberRegisteredEvent is recorded when a new account is created.
type MemberRegisteredEvent struct {
	common.BaseEvent
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     common.Role `json:"role"`
}

func NewMemberRegisteredEvent(m *Member) *MemberRegisteredEvent {
	return &MemberRegisteredEvent{
		BaseEvent: common.NewBaseEvent(string(m.ID)),
		Email:     m.Email,
		FullName:  m.FullName(),
		Role:      m.Role,
	}
}

// KioskPINChangedEvent is recorded when a check-in PIN is generated or
// replaced. The PIN itself is never carried on the event.
type KioskPINChangedEvent struct {
	common.BaseEvent
	Regenerated bool `json:"regenerated"`
}

func NewKioskPINChangedEvent(m *Member, regenerated bool) *KioskPINChangedEvent {
	return &KioskPINChangedEvent{
		BaseEvent:   common.NewBaseEvent(string(m.ID)),
		Regenerated: regenerated,
	}
}

// MembershipActivatedEvent is recorded when a pending membership is paid for
// and becomes active.
type MembershipActivatedEvent struct {
	common.BaseEvent
	MemberID  common.ID `json:"member_id"`
	PlanID    common.ID `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func NewMembershipActivatedEvent(m *Membership) *MembershipActivatedEvent {
	return &MembershipActivatedEvent{
		BaseEvent: common.NewBaseEvent(string(m.ID)),
		MemberID:  m.MemberID,
		PlanID:    m.PlanID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}
}

// MembershipExpiredEvent is recorded when the expiry sweep lapses an active
// membership.
type MembershipExpiredEvent struct {
	common.BaseEvent
	MemberID common.ID `json:"member_id"`
	EndDate  time.Time `json:"end_date"`
}

func NewMembershipExpiredEvent(m *Membership) *MembershipExpiredEvent {
	return &MembershipExpiredEvent{
		BaseEvent: common.NewBaseEvent(string(m.ID)),
		MemberID:  m.MemberID,
		EndDate:   m.EndDate,
	}
}

// MembershipCancelledEvent is recorded when a membership is terminated early.
type MembershipCancelledEvent struct {
	common.BaseEvent
	MemberID common.ID `json:"member_id"`
}

func NewMembershipCancelledEvent(m *Membership) *MembershipCancelledEvent {
	return &MembershipCancelledEvent{
		BaseEvent: common.NewBaseEvent(string(m.ID)),
		MemberID:  m.MemberID,
	}
}
