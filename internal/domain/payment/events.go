package payment

import (
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// PaymentRecordedEvent is recorded when a pending payment is created.
type PaymentRecordedEvent struct {
	common.BaseEvent
	Reference string    `json:"reference"`
	MemberID  common.ID `json:"member_id"`
	Amount    float64   `json:"amount"`
	Method    Method    `json:"method"`
}

func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent: common.NewBaseEvent(string(p.ID)),
		Reference: p.Reference,
		MemberID:  p.MemberID,
		Amount:    p.Amount,
		Method:    p.Method,
	}
}

// PaymentConfirmedEvent is recorded when staff verifies a pending payment.
// Downstream consumers activate the membership and refresh revenue caches.
type PaymentConfirmedEvent struct {
	common.BaseEvent
	Reference    string     `json:"reference"`
	MemberID     common.ID  `json:"member_id"`
	MembershipID common.ID  `json:"membership_id"`
	Amount       float64    `json:"amount"`
	ConfirmedBy  *common.ID `json:"confirmed_by,omitempty"`
}

func NewPaymentConfirmedEvent(p *Payment) *PaymentConfirmedEvent {
	return &PaymentConfirmedEvent{
		BaseEvent:    common.NewBaseEvent(string(p.ID)),
		Reference:    p.Reference,
		MemberID:     p.MemberID,
		MembershipID: p.MembershipID,
		Amount:       p.Amount,
		ConfirmedBy:  p.ConfirmedBy,
	}
}

// PaymentRejectedEvent is recorded when staff declines a pending payment.
type PaymentRejectedEvent struct {
	common.BaseEvent
	Reference string    `json:"reference"`
	MemberID  common.ID `json:"member_id"`
}

func NewPaymentRejectedEvent(p *Payment) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseEvent: common.NewBaseEvent(string(p.ID)),
		Reference: p.Reference,
		MemberID:  p.MemberID,
	}
}

// WalkinSaleRecordedEvent is recorded when a walk-in pass is sold.
type WalkinSaleRecordedEvent struct {
	common.BaseEvent
	PassName string  `json:"pass_name"`
	Amount   float64 `json:"amount"`
	Method   Method  `json:"method"`
}

func NewWalkinSaleRecordedEvent(w *WalkinPayment) *WalkinSaleRecordedEvent {
	return &WalkinSaleRecordedEvent{
		BaseEvent: common.NewBaseEvent(string(w.ID)),
		PassName:  w.PassName,
		Amount:    w.Amount,
		Method:    w.Method,
	}
}
