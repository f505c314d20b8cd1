package operations

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

type fakeClearer struct{ calls int }

func (c *fakeClearer) ClearCaches(context.Context) { c.calls++ }

type fakeBus struct {
	events []common.DomainEvent
	err    error
}

func (b *fakeBus) Publish(_ context.Context, events ...common.DomainEvent) error {
	b.events = append(b.events, events...)
	return b.err
}

type fakeAuditSink struct {
	entries []kafka.AuditLogPayload
	err     error
}

func (s *fakeAuditSink) PublishAuditEntry(_ context.Context, p kafka.AuditLogPayload) error {
	s.entries = append(s.entries, p)
	return s.err
}

// ============================================================================
// Payment confirmation
// ============================================================================

func TestConfirmPayment(t *testing.T) {
	t.Parallel()
	clearer := &fakeClearer{}
	bus := &fakeBus{}
	f := newFixture(t, WithCacheClearer(clearer), WithEvents(bus))
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1500, fixedNow.AddDate(0, 0, -1))

	got, err := f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.NoError(t, err)

	assert.Contains(t, got.Message, p.Reference)
	assert.Contains(t, got.Message, "confirmed")
	assert.Equal(t, "Dana Cruz", got.Member)
	assert.Equal(t, 1500.0, got.Amount)
	assert.True(t, got.MembershipActivated)

	stored, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, stored.Status)

	activated, err := f.members.GetMembershipByID(ctx, ms.ID)
	require.NoError(t, err)
	assert.Equal(t, member.MembershipActive, activated.Status)

	assert.Equal(t, []string{audit.ActionPaymentReceived}, f.auditActions())
	assert.Len(t, bus.events, 2)
	assert.Equal(t, 1, clearer.calls)
}

func TestConfirmPaymentMirrorsAuditEntry(t *testing.T) {
	t.Parallel()
	sink := &fakeAuditSink{}
	f := newFixture(t, WithAuditEvents(sink))
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1500, fixedNow.AddDate(0, 0, -1))

	actor := staffActor()
	_, err := f.svc.ConfirmPayment(ctx, actor, p.Reference)
	require.NoError(t, err)

	require.Len(t, sink.entries, 1)
	mirrored := sink.entries[0]
	assert.NotEmpty(t, mirrored.EntryID)
	assert.Equal(t, string(actor.ID), mirrored.ActorID)
	assert.Equal(t, string(common.RoleStaff), mirrored.ActorRole)
	assert.Equal(t, audit.ActionPaymentReceived, mirrored.Action)
	assert.Equal(t, string(audit.SeverityInfo), mirrored.Severity)
	assert.False(t, mirrored.CreatedAt.IsZero())
}

func TestConfirmPaymentAuditMirrorFailureIsSoft(t *testing.T) {
	t.Parallel()
	sink := &fakeAuditSink{err: errors.New(errors.ErrCodeServiceUnavailable, "broker down")}
	f := newFixture(t, WithAuditEvents(sink))
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1000, fixedNow.AddDate(0, 0, -1))

	got, err := f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.NoError(t, err)
	assert.True(t, got.MembershipActivated)

	// The trail row still lands even when the mirror does not.
	assert.Equal(t, []string{audit.ActionPaymentReceived}, f.auditActions())
}

func TestConfirmPaymentNormalizesReference(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1000, fixedNow.AddDate(0, 0, -1))

	_, err := f.svc.ConfirmPayment(ctx, staffActor(), "  "+strings.ToLower(p.Reference)+" ")
	require.NoError(t, err)

	stored, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, stored.Status)
}

func TestConfirmPaymentAlreadyDecided(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1000, fixedNow.AddDate(0, 0, -1))

	_, err := f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePaymentNotPending))
	assert.Contains(t, errors.GetMessage(err), "already confirmed")
}

func TestConfirmPaymentUnknownReference(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.ConfirmPayment(context.Background(), staffActor(), "PAY-20260819-000000")
	assert.True(t, errors.IsCode(err, errors.ErrCodePaymentNotFound))
}

func TestConfirmPaymentLeavesActiveMembershipAlone(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipActive)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1000, fixedNow.AddDate(0, 0, -1))

	got, err := f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.NoError(t, err)
	assert.False(t, got.MembershipActivated)
}

func TestConfirmPaymentRequiresStaff(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.ConfirmPayment(context.Background(), memberActor(), "PAY-20260819-000000")
	assert.True(t, errors.IsCode(err, errors.ErrCodePermissionDenied))
}

func TestConfirmPaymentSurvivesPublishFailure(t *testing.T) {
	t.Parallel()
	bus := &fakeBus{err: errors.New(errors.ErrCodeServiceUnavailable, "broker down")}
	f := newFixture(t, WithEvents(bus))
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	ms := f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 29), member.MembershipPending)
	p := f.pendingPayment(t, dana.ID, ms.ID, 1000, fixedNow.AddDate(0, 0, -1))

	_, err := f.svc.ConfirmPayment(ctx, staffActor(), p.Reference)
	require.NoError(t, err)
}

// ============================================================================
// Kiosk PINs
// ============================================================================

var rePIN = regexp.MustCompile(`^\d{6}$`)

func TestGenerateKioskPIN(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")

	got, err := f.svc.GenerateKioskPIN(ctx, staffActor(), "dana cruz")
	require.NoError(t, err)
	assert.Equal(t, "Dana Cruz", got.Member)
	assert.Equal(t, "generated", got.Action)
	assert.Regexp(t, rePIN, got.PIN)

	stored, err := f.members.GetByID(ctx, dana.ID)
	require.NoError(t, err)
	assert.Equal(t, got.PIN, stored.KioskPIN)

	again, err := f.svc.GenerateKioskPIN(ctx, staffActor(), dana.Email)
	require.NoError(t, err)
	assert.Equal(t, "regenerated", again.Action)
	assert.Regexp(t, rePIN, again.PIN)

	assert.Equal(t, []string{audit.ActionUserUpdated, audit.ActionUserUpdated}, f.auditActions())

	// The PIN itself never reaches the audit trail.
	for _, e := range f.auditLog.Entries() {
		assert.NotContains(t, e.Description, got.PIN)
		assert.NotContains(t, e.Description, again.PIN)
	}
}

func TestGenerateKioskPINUnknownMember(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.GenerateKioskPIN(context.Background(), staffActor(), "nobody")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMemberNotFound))
}

func TestGenerateKioskPINRequiresStaff(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.GenerateKioskPIN(context.Background(), memberActor(), "dana")
	assert.True(t, errors.IsCode(err, errors.ErrCodePermissionDenied))
}

// ============================================================================
// Walk-in sales
// ============================================================================

func TestCreateWalkinSale(t *testing.T) {
	t.Parallel()
	clearer := &fakeClearer{}
	f := newFixture(t, WithCacheClearer(clearer))
	ctx := context.Background()

	pass, err := member.NewWalkinPass("Day Pass", 150)
	require.NoError(t, err)
	require.NoError(t, f.members.CreatePass(ctx, pass))

	got, err := f.svc.CreateWalkinSale(ctx, staffActor(), WalkinSaleRequest{
		PassName:     "day pass",
		Amount:       150,
		CustomerName: "Jo Ramos",
	})
	require.NoError(t, err)

	assert.Equal(t, "Day Pass", got.PassType)
	assert.Equal(t, 150.0, got.Amount)
	assert.Equal(t, "Jo Ramos", got.Customer)
	assert.NotEmpty(t, got.Reference)

	sales, err := f.payments.ListWalkinByRange(ctx, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, payment.MethodCash, sales[0].Method)

	assert.Equal(t, []string{audit.ActionWalkinSale}, f.auditActions())
	assert.Equal(t, 1, clearer.calls)
}

func TestCreateWalkinSaleUnknownPass(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWalkinSale(ctx, staffActor(), WalkinSaleRequest{PassName: "Night Pass", Amount: 100})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	// A retired pass is indistinguishable from a missing one.
	pass, err := member.NewWalkinPass("Old Pass", 80)
	require.NoError(t, err)
	pass.Active = false
	require.NoError(t, f.members.CreatePass(ctx, pass))

	_, err = f.svc.CreateWalkinSale(ctx, staffActor(), WalkinSaleRequest{PassName: "Old Pass", Amount: 80})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestCreateWalkinSaleRequiresStaff(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateWalkinSale(context.Background(), memberActor(), WalkinSaleRequest{PassName: "Day Pass", Amount: 150})
	assert.True(t, errors.IsCode(err, errors.ErrCodePermissionDenied))
}

// ============================================================================
// Renewal reminders
// ============================================================================

func TestSendRenewalReminders(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	dana := f.member(t, "Dana", "Cruz")
	liza := f.member(t, "Liza", "Santos")
	f.membership(t, dana.ID, "Monthly", fixedNow.AddDate(0, 0, -28), fixedNow.AddDate(0, 0, 2), member.MembershipActive)
	f.membership(t, liza.ID, "Monthly", fixedNow.AddDate(0, 0, -25), fixedNow.AddDate(0, 0, 5), member.MembershipActive)

	got, err := f.svc.SendRenewalReminders(ctx, staffActor(), 0)
	require.NoError(t, err)

	assert.Len(t, got.Members, 2)
	assert.Contains(t, got.Message, "2 members")
	assert.Contains(t, got.Note, "email system")

	assert.Equal(t, []string{audit.ActionReportGenerated, audit.ActionReportGenerated}, f.auditActions())
}

func TestSendRenewalRemindersRequiresStaff(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.SendRenewalReminders(context.Background(), memberActor(), 7)
	assert.True(t, errors.IsCode(err, errors.ErrCodePermissionDenied))
}
