// Package operations implements the staff operations behind the chatbot's
// action tools: member search and profiles, expiring and inactive member
// reports, the pending payment queue, payment confirmation, kiosk PIN
// management, today's check-in list, and walk-in sales. Every privileged
// operation is role-gated and leaves an audit trail entry.
package operations

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ============================================================================
// Actor
// ============================================================================

// Actor identifies who performs an operation. Handlers build it from the
// authenticated session; the chat layer builds it from the conversation
// owner.
type Actor struct {
	ID   common.ID
	Name string
	Role common.Role
}

// ============================================================================
// Dependencies
// ============================================================================

// CacheClearer invalidates derived report caches after a mutation that
// changes revenue or membership state.
type CacheClearer interface {
	ClearCaches(ctx context.Context)
}

// EventPublisher carries domain events to the message bus after a state
// change is persisted. Publishing is best-effort: operations never fail on a
// publish error.
type EventPublisher interface {
	Publish(ctx context.Context, events ...common.DomainEvent) error
}

// AuditEventSink mirrors persisted audit entries onto the bus for external
// collection. Same best-effort contract as EventPublisher.
type AuditEventSink interface {
	PublishAuditEntry(ctx context.Context, p kafka.AuditLogPayload) error
}

// ============================================================================
// Service
// ============================================================================

// Service executes staff operations over the domain repositories.
type Service struct {
	members  member.MemberRepository
	payments payment.PaymentRepository
	visits   attendance.AttendanceRepository
	auditLog audit.AuditRepository

	reports     CacheClearer
	events      EventPublisher
	auditEvents AuditEventSink
	logger      logging.Logger
	loc         *time.Location
	clock       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCacheClearer wires report cache invalidation after revenue-changing
// operations.
func WithCacheClearer(c CacheClearer) Option {
	return func(s *Service) { s.reports = c }
}

// WithEvents wires domain event publishing.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithAuditEvents wires the audit trail mirror.
func WithAuditEvents(sink AuditEventSink) Option {
	return func(s *Service) { s.auditEvents = sink }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the club's timezone for day boundaries. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires the operations service over the domain repositories.
func NewService(members member.MemberRepository, payments payment.PaymentRepository, visits attendance.AttendanceRepository, auditLog audit.AuditRepository, opts ...Option) *Service {
	s := &Service{
		members:  members,
		payments: payments,
		visits:   visits,
		auditLog: auditLog,
		logger:   logging.Default().Named("operations"),
		loc:      time.UTC,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().In(s.loc)
}

// dayStart truncates t to midnight in the club's timezone.
func (s *Service) dayStart(t time.Time) time.Time {
	y, mo, d := t.In(s.loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, s.loc)
}

// ============================================================================
// Permission checks
// ============================================================================

// requireRole gates an operation on a minimum role.
func (s *Service) requireRole(actor Actor, min common.Role) error {
	if actor.Role.AtLeast(min) {
		return nil
	}
	if min == common.RoleAdmin {
		return errors.New(errors.ErrCodePermissionDenied,
			"this operation requires admin privileges")
	}
	return errors.New(errors.ErrCodePermissionDenied,
		"this operation requires staff or admin privileges")
}

// ============================================================================
// Member resolution
// ============================================================================

// resolveMember finds a member account by flexible identifier: an email
// address, a member ID, or a free-text name fragment. Staff and admin
// accounts are never returned.
func (s *Service) resolveMember(ctx context.Context, identifier string) (*member.Member, error) {
	ident := strings.TrimSpace(identifier)
	notFound := errors.Newf(errors.ErrCodeMemberNotFound, "member not found: %s", identifier)
	if ident == "" {
		return nil, notFound
	}

	var (
		m   *member.Member
		err error
	)
	switch {
	case strings.Contains(ident, "@"):
		m, err = s.members.GetByEmail(ctx, strings.ToLower(ident))
	case common.ID(ident).Validate() == nil:
		m, err = s.members.GetByID(ctx, common.ID(ident))
	default:
		var hits []*member.Member
		hits, err = s.members.Search(ctx, ident, 1)
		if err == nil && len(hits) > 0 {
			m = hits[0]
		}
	}
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMemberNotFound) {
			return nil, notFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "resolving member")
	}
	if m == nil || m.Role != common.RoleMember {
		return nil, notFound
	}
	return m, nil
}

// currentMembership returns the member's active membership whose end date has
// not passed, or nil when none exists.
func (s *Service) currentMembership(ctx context.Context, memberID common.ID, now time.Time) (*member.Membership, error) {
	ms, err := s.activeMembership(ctx, memberID)
	if err != nil || ms == nil {
		return nil, err
	}
	if ms.DaysRemaining(now) < 0 {
		return nil, nil
	}
	return ms, nil
}

// activeMembership returns the member's active-status membership regardless
// of its end date, or nil when none exists. Used by the self-service views,
// which report on a lapsed-but-not-yet-swept membership rather than hiding
// it.
func (s *Service) activeMembership(ctx context.Context, memberID common.ID) (*member.Membership, error) {
	ms, err := s.members.ActiveMembership(ctx, memberID)
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMembershipNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading active membership")
	}
	return ms, nil
}

// ============================================================================
// Audit, events, cache invalidation
// ============================================================================

// audit appends an audit trail entry and mirrors it onto the bus. Failures
// are logged, never surfaced: the business outcome of an operation does not
// depend on the trail write.
func (s *Service) audit(ctx context.Context, actor Actor, action, description string, meta common.Metadata) {
	entry, err := audit.NewEntry(actor.ID, actor.Name, actor.Role, action, description, audit.SeverityInfo, meta)
	if err == nil {
		err = s.auditLog.Append(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("audit append failed",
			logging.String("action", action),
			logging.Err(err))
		return
	}

	if s.auditEvents == nil {
		return
	}
	if err := s.auditEvents.PublishAuditEntry(ctx, kafka.AuditLogPayload{
		EntryID:     string(entry.ID),
		ActorID:     string(entry.ActorID),
		ActorRole:   string(entry.ActorRole),
		Action:      entry.Action,
		Description: entry.Description,
		Severity:    string(entry.Severity),
		CreatedAt:   entry.CreatedAt,
	}); err != nil {
		s.logger.Warn("audit event publish failed",
			logging.String("action", action),
			logging.Err(err))
	}
}

// publish sends domain events to the bus, when one is wired.
func (s *Service) publish(ctx context.Context, events ...common.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed",
			logging.Int("events", len(events)),
			logging.Err(err))
	}
}

// clearReportCaches drops derived analytics caches after a mutation.
func (s *Service) clearReportCaches(ctx context.Context) {
	if s.reports != nil {
		s.reports.ClearCaches(ctx)
	}
}

// ============================================================================
// Kiosk PIN generation
// ============================================================================

const pinAttempts = 5

// newKioskPIN draws a random 6-digit PIN that no other member currently
// holds. Collisions are retried a bounded number of times.
func (s *Service) newKioskPIN(ctx context.Context) (string, error) {
	for i := 0; i < pinAttempts; i++ {
		n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(1_000_000))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodePinGenerationFailed, "drawing random PIN")
		}
		pin := fmt.Sprintf("%06d", n.Int64())
		_, err = s.members.GetByKioskPIN(ctx, pin)
		if err == nil {
			continue // taken
		}
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMemberNotFound) {
			return pin, nil
		}
		return "", errors.Wrap(err, errors.ErrCodePinGenerationFailed, "checking PIN uniqueness")
	}
	return "", errors.New(errors.ErrCodePinGenerationFailed,
		"could not allocate a unique kiosk PIN")
}
