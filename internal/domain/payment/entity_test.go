package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

func TestNewReference(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	ref := NewReference(now)
	if !ValidReference(ref) {
		t.Errorf("generated reference %q does not match canonical shape", ref)
	}
	if !strings.HasPrefix(ref, "PAY-20260824-") {
		t.Errorf("expected date-stamped prefix, got %q", ref)
	}
}

func TestNewWalkinReference(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	ref := NewWalkinReference(now)
	if !strings.HasPrefix(ref, "WLK-20260824-") {
		t.Errorf("expected date-stamped WLK prefix, got %q", ref)
	}
	if len(ref) != len("WLK-20260824-123456") {
		t.Errorf("unexpected reference length: %q", ref)
	}
}

func TestValidReference(t *testing.T) {
	if !ValidReference("PAY-20231201-123456") {
		t.Error("expected canonical reference to validate")
	}
	if ValidReference("pay-20231201-123456") {
		t.Error("validation is case-sensitive; lower-case must fail")
	}
	if ValidReference("PAY-2023-123456") {
		t.Error("short date segment must fail")
	}
	if ValidReference("PAY-20231201-12345") {
		t.Error("short suffix must fail")
	}
}

func TestNewPayment(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	p, err := NewPayment(common.NewID(), common.NewID(), 1500, MethodGCash, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPending {
		t.Errorf("expected pending, got %s", p.Status)
	}
	if !ValidReference(p.Reference) {
		t.Errorf("payment got malformed reference %q", p.Reference)
	}

	evts := p.Events()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	if _, ok := evts[0].(*PaymentRecordedEvent); !ok {
		t.Errorf("expected PaymentRecordedEvent, got %T", evts[0])
	}
}

func TestNewPaymentValidation(t *testing.T) {
	now := time.Now().UTC()
	if _, err := NewPayment("", common.NewID(), 1500, MethodCash, now); err == nil {
		t.Error("expected error for empty member id")
	}
	if _, err := NewPayment(common.NewID(), common.NewID(), 0, MethodCash, now); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := NewPayment(common.NewID(), common.NewID(), 1500, Method("check"), now); err == nil {
		t.Error("expected error for unsupported method")
	}
}

func TestPaymentConfirm(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	p, _ := NewPayment(common.NewID(), common.NewID(), 1500, MethodCash, now)
	p.Events()
	staff := common.NewID()

	if err := p.Confirm(staff, now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected confirm error: %v", err)
	}
	if p.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", p.Status)
	}
	if p.ConfirmedBy == nil || *p.ConfirmedBy != staff {
		t.Error("expected confirming staff to be recorded")
	}
	if p.ConfirmedAt == nil {
		t.Error("expected confirmation time to be recorded")
	}

	// Second confirm reports the current state.
	err := p.Confirm(staff, now.Add(2*time.Hour))
	if !errors.IsCode(err, errors.ErrCodePaymentNotPending) {
		t.Fatalf("expected payment-not-pending error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already confirmed") {
		t.Errorf("expected message to carry current state, got %q", err.Error())
	}

	evts := p.Events()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	if _, ok := evts[0].(*PaymentConfirmedEvent); !ok {
		t.Errorf("expected PaymentConfirmedEvent, got %T", evts[0])
	}
}

func TestPaymentReject(t *testing.T) {
	now := time.Now().UTC()
	p, _ := NewPayment(common.NewID(), common.NewID(), 600, MethodGCash, now)
	p.Events()
	staff := common.NewID()

	if err := p.Reject(staff, now); err != nil {
		t.Fatalf("unexpected reject error: %v", err)
	}
	if p.Status != StatusRejected {
		t.Errorf("expected rejected, got %s", p.Status)
	}
	if err := p.Confirm(staff, now); err == nil {
		t.Error("expected error confirming a rejected payment")
	}
}

func TestPaymentDaysPending(t *testing.T) {
	recorded := time.Date(2026, 8, 20, 22, 0, 0, 0, time.UTC)
	p, _ := NewPayment(common.NewID(), common.NewID(), 1500, MethodCash, recorded)

	now := time.Date(2026, 8, 24, 1, 0, 0, 0, time.UTC)
	if got := p.DaysPending(now); got != 4 {
		t.Errorf("expected 4 days pending, got %d", got)
	}
	if got := p.DaysPending(recorded); got != 0 {
		t.Errorf("expected 0 days pending on payment day, got %d", got)
	}
}

func TestNewWalkinSale(t *testing.T) {
	now := time.Now().UTC()
	w, err := NewWalkinSale(common.NewID(), "Day Pass", "", 150, MethodCash, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.CustomerName != "Walk-in Customer" {
		t.Errorf("expected anonymous walk-in label, got %q", w.CustomerName)
	}

	w, err = NewWalkinSale(common.NewID(), "Day Pass", "Pedro Cruz", 150, MethodGCash, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.CustomerName != "Pedro Cruz" {
		t.Errorf("expected explicit customer name, got %q", w.CustomerName)
	}
	if !strings.HasPrefix(w.Reference, "WLK-") || ValidReference(w.Reference) {
		t.Errorf("walk-in reference %q must carry the WLK prefix and never validate as a membership payment reference", w.Reference)
	}

	if _, err := NewWalkinSale(common.NewID(), "", "", 150, MethodCash, now); err == nil {
		t.Error("expected error for empty pass name")
	}
	if _, err := NewWalkinSale(common.NewID(), "Day Pass", "", -1, MethodCash, now); err == nil {
		t.Error("expected error for negative amount")
	}
}
