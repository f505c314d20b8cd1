package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/conversation"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Memory-backed fakes for the domain repository ports. They return live
// pointers rather than copies, and WithTx runs against the same store with
// no rollback; tests that need isolation should build a fresh repo.

// ─────────────────────────────────────────────────────────────────────────────
// Member repository
// ─────────────────────────────────────────────────────────────────────────────

type MemoryMemberRepo struct {
	mu          sync.RWMutex
	members     map[common.ID]*member.Member
	plans       map[common.ID]*member.Plan
	passes      map[common.ID]*member.WalkinPass
	memberships map[common.ID]*member.Membership
}

var _ member.MemberRepository = (*MemoryMemberRepo)(nil)

func NewMemoryMemberRepo() *MemoryMemberRepo {
	return &MemoryMemberRepo{
		members:     make(map[common.ID]*member.Member),
		plans:       make(map[common.ID]*member.Plan),
		passes:      make(map[common.ID]*member.WalkinPass),
		memberships: make(map[common.ID]*member.Membership),
	}
}

func (r *MemoryMemberRepo) Create(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if strings.EqualFold(existing.Email, m.Email) {
			return errors.New(errors.ErrCodeMemberDuplicateEmail,
				"email "+m.Email+" already registered")
		}
	}
	r.members[m.ID] = m
	return nil
}

func (r *MemoryMemberRepo) GetByID(ctx context.Context, id common.ID) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMemberNotFound, "member "+string(id)+" not found")
	}
	return m, nil
}

func (r *MemoryMemberRepo) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with email "+email)
}

func (r *MemoryMemberRepo) GetByUsername(ctx context.Context, username string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Username, username) {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with username "+username)
}

func (r *MemoryMemberRepo) GetByKioskPIN(ctx context.Context, pin string) (*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.KioskPIN != "" && m.KioskPIN == pin {
			return m, nil
		}
	}
	return nil, errors.New(errors.ErrCodeMemberNotFound, "no member with that PIN")
}

func (r *MemoryMemberRepo) Search(ctx context.Context, query string, limit int) ([]*member.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*member.Member, 0, limit)
	for _, m := range sortedMembers(r.members) {
		if m.Role != common.RoleMember || !m.Active {
			continue
		}
		hay := strings.ToLower(m.FullName() + " " + m.Email + " " + m.Username)
		if q == "" || strings.Contains(hay, q) {
			out = append(out, m)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryMemberRepo) List(ctx context.Context, filter member.ListFilter) ([]*member.Member, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*member.Member, 0, len(r.members))
	q := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, m := range sortedMembers(r.members) {
		if filter.Role != "" && m.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !m.Active {
			continue
		}
		if q != "" {
			hay := strings.ToLower(m.FullName() + " " + m.Email + " " + m.Username)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		matched = append(matched, m)
	}
	total := int64(len(matched))
	return paginate(matched, filter.Pagination), total, nil
}

func (r *MemoryMemberRepo) Update(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.ID]; !ok {
		return errors.New(errors.ErrCodeMemberNotFound, "member "+string(m.ID)+" not found")
	}
	r.members[m.ID] = m
	return nil
}

func (r *MemoryMemberRepo) CreatePlan(ctx context.Context, p *member.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.ID] = p
	return nil
}

func (r *MemoryMemberRepo) GetPlanByID(ctx context.Context, id common.ID) (*member.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, errors.NotFound("plan " + string(id) + " not found")
	}
	return p, nil
}

func (r *MemoryMemberRepo) GetPlanByName(ctx context.Context, name string) (*member.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plans {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, errors.NotFound("no plan named " + name)
}

func (r *MemoryMemberRepo) ListPlans(ctx context.Context, activeOnly bool) ([]*member.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *MemoryMemberRepo) CreatePass(ctx context.Context, p *member.WalkinPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes[p.ID] = p
	return nil
}

func (r *MemoryMemberRepo) GetPassByName(ctx context.Context, name string) (*member.WalkinPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.passes {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, errors.NotFound("no walk-in pass named " + name)
}

func (r *MemoryMemberRepo) ListPasses(ctx context.Context, activeOnly bool) ([]*member.WalkinPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member.WalkinPass, 0, len(r.passes))
	for _, p := range r.passes {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *MemoryMemberRepo) CreateMembership(ctx context.Context, m *member.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[m.PlanID]; ok && m.PlanName == "" {
		m.PlanName = p.Name
	}
	r.memberships[m.ID] = m
	return nil
}

func (r *MemoryMemberRepo) GetMembershipByID(ctx context.Context, id common.ID) (*member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.memberships[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMembershipNotFound, "membership "+string(id)+" not found")
	}
	return m, nil
}

func (r *MemoryMemberRepo) ActiveMembership(ctx context.Context, memberID common.ID) (*member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *member.Membership
	for _, m := range r.memberships {
		if m.MemberID != memberID || m.Status != member.MembershipActive {
			continue
		}
		if best == nil || m.EndDate.After(best.EndDate) {
			best = m
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeMembershipNotFound,
			"member "+string(memberID)+" has no active membership")
	}
	return best, nil
}

func (r *MemoryMemberRepo) ListMembershipsByMember(ctx context.Context, memberID common.ID) ([]*member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member.Membership, 0)
	for _, m := range r.memberships {
		if m.MemberID == memberID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *MemoryMemberRepo) ListMemberships(ctx context.Context, filter member.MembershipFilter) ([]*member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*member.Membership, 0)
	for _, m := range r.memberships {
		if matchMembership(m, filter) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (r *MemoryMemberRepo) CountMemberships(ctx context.Context, filter member.MembershipFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.memberships {
		if matchMembership(m, filter) {
			n++
		}
	}
	return n, nil
}

func matchMembership(m *member.Membership, f member.MembershipFilter) bool {
	if f.MemberID != "" && m.MemberID != f.MemberID {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if !inWindow(m.CreatedAt, f.CreatedFrom, f.CreatedTo) {
		return false
	}
	if !inWindow(m.EndDate, f.EndFrom, f.EndTo) {
		return false
	}
	if !f.CancelledFrom.IsZero() || !f.CancelledTo.IsZero() {
		if m.CancelledAt == nil || !inWindow(*m.CancelledAt, f.CancelledFrom, f.CancelledTo) {
			return false
		}
	}
	return true
}

// inWindow checks the half-open window [from, to); zero bounds are open.
func inWindow(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func (r *MemoryMemberRepo) UpdateMembership(ctx context.Context, m *member.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.memberships[m.ID]; !ok {
		return errors.New(errors.ErrCodeMembershipNotFound, "membership "+string(m.ID)+" not found")
	}
	r.memberships[m.ID] = m
	return nil
}

func (r *MemoryMemberRepo) WithTx(ctx context.Context, fn func(member.MemberRepository) error) error {
	return fn(r)
}

func sortedMembers(in map[common.ID]*member.Member) []*member.Member {
	out := make([]*member.Member, 0, len(in))
	for _, m := range in {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func paginate[T any](in []T, p common.Pagination) []T {
	if p.Page < 1 || p.PageSize < 1 {
		return in
	}
	start := p.Offset()
	if start >= len(in) {
		return nil
	}
	end := start + p.PageSize
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}

// ─────────────────────────────────────────────────────────────────────────────
// Payment repository
// ─────────────────────────────────────────────────────────────────────────────

type MemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[common.ID]*payment.Payment
	walkins  map[common.ID]*payment.WalkinPayment
}

var _ payment.PaymentRepository = (*MemoryPaymentRepo)(nil)

func NewMemoryPaymentRepo() *MemoryPaymentRepo {
	return &MemoryPaymentRepo{
		payments: make(map[common.ID]*payment.Payment),
		walkins:  make(map[common.ID]*payment.WalkinPayment),
	}
}

func (r *MemoryPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = p
	return nil
}

func (r *MemoryPaymentRepo) GetByID(ctx context.Context, id common.ID) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePaymentNotFound, "payment "+string(id)+" not found")
	}
	return p, nil
}

func (r *MemoryPaymentRepo) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.Reference == reference {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodePaymentNotFound, "no payment with reference "+reference)
}

func (r *MemoryPaymentRepo) ListPending(ctx context.Context) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*payment.Payment, 0)
	for _, p := range r.payments {
		if p.Status == payment.StatusPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

func (r *MemoryPaymentRepo) ListByMember(ctx context.Context, memberID common.ID, limit int) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*payment.Payment, 0)
	for _, p := range r.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryPaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*payment.Payment, 0)
	for _, p := range r.payments {
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Method != "" && p.Method != filter.Method {
			continue
		}
		if !inWindow(p.PaymentDate, filter.From, filter.To) {
			continue
		}
		if !filter.ConfirmedFrom.IsZero() || !filter.ConfirmedTo.IsZero() {
			if p.ConfirmedAt == nil || !inWindow(*p.ConfirmedAt, filter.ConfirmedFrom, filter.ConfirmedTo) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].PaymentDate.After(matched[j].PaymentDate) })
	total := int64(len(matched))
	return paginate(matched, filter.Pagination), total, nil
}

func (r *MemoryPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return errors.New(errors.ErrCodePaymentNotFound, "payment "+string(p.ID)+" not found")
	}
	r.payments[p.ID] = p
	return nil
}

func (r *MemoryPaymentRepo) CreateWalkin(ctx context.Context, w *payment.WalkinPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.walkins[w.ID] = w
	return nil
}

func (r *MemoryPaymentRepo) ListWalkinByRange(ctx context.Context, from, to time.Time) ([]*payment.WalkinPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*payment.WalkinPayment, 0)
	for _, w := range r.walkins {
		if w.PaymentDate.Before(from) || !w.PaymentDate.Before(to) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

func (r *MemoryPaymentRepo) WithTx(ctx context.Context, fn func(payment.PaymentRepository) error) error {
	return fn(r)
}

// ─────────────────────────────────────────────────────────────────────────────
// Attendance repository
// ─────────────────────────────────────────────────────────────────────────────

type MemoryAttendanceRepo struct {
	mu       sync.RWMutex
	checkins map[common.ID]*attendance.Checkin
}

var _ attendance.AttendanceRepository = (*MemoryAttendanceRepo)(nil)

func NewMemoryAttendanceRepo() *MemoryAttendanceRepo {
	return &MemoryAttendanceRepo{checkins: make(map[common.ID]*attendance.Checkin)}
}

func (r *MemoryAttendanceRepo) Create(ctx context.Context, c *attendance.Checkin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkins[c.ID] = c
	return nil
}

func (r *MemoryAttendanceRepo) OpenByMember(ctx context.Context, memberID common.ID) (*attendance.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.checkins {
		if c.MemberID == memberID && c.IsOpen() {
			return c, nil
		}
	}
	return nil, errors.NotFound("member " + string(memberID) + " is not checked in")
}

func (r *MemoryAttendanceRepo) Update(ctx context.Context, c *attendance.Checkin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checkins[c.ID]; !ok {
		return errors.NotFound("checkin " + string(c.ID) + " not found")
	}
	r.checkins[c.ID] = c
	return nil
}

func (r *MemoryAttendanceRepo) ListByRange(ctx context.Context, from, to time.Time) ([]*attendance.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*attendance.Checkin, 0)
	for _, c := range r.checkins {
		if c.CheckIn.Before(from) || !c.CheckIn.Before(to) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (r *MemoryAttendanceRepo) ListByMemberSince(ctx context.Context, memberID common.ID, since time.Time) ([]*attendance.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*attendance.Checkin, 0)
	for _, c := range r.checkins {
		if c.MemberID == memberID && !c.CheckIn.Before(since) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.After(out[j].CheckIn) })
	return out, nil
}

func (r *MemoryAttendanceRepo) CountByMemberSince(ctx context.Context, memberID common.ID, since time.Time) (int64, error) {
	list, err := r.ListByMemberSince(ctx, memberID, since)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *MemoryAttendanceRepo) LastByMember(ctx context.Context, memberID common.ID) (*attendance.Checkin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last *attendance.Checkin
	for _, c := range r.checkins {
		if c.MemberID != memberID {
			continue
		}
		if last == nil || c.CheckIn.After(last.CheckIn) {
			last = c
		}
	}
	if last == nil {
		return nil, errors.NotFound("member " + string(memberID) + " has never checked in")
	}
	return last, nil
}

func (r *MemoryAttendanceRepo) CountOpen(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.checkins {
		if c.IsOpen() {
			n++
		}
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversation repository
// ─────────────────────────────────────────────────────────────────────────────

type MemoryConversationRepo struct {
	mu            sync.RWMutex
	conversations map[common.ID]*conversation.Conversation
}

var _ conversation.ConversationRepository = (*MemoryConversationRepo)(nil)

func NewMemoryConversationRepo() *MemoryConversationRepo {
	return &MemoryConversationRepo{conversations: make(map[common.ID]*conversation.Conversation)}
}

func (r *MemoryConversationRepo) Create(ctx context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[c.ID] = c
	return nil
}

func (r *MemoryConversationRepo) GetForMember(ctx context.Context, id common.ID, memberID common.ID) (*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok || c.MemberID == nil || *c.MemberID != memberID {
		return nil, errors.New(errors.ErrCodeConversationNotFound,
			"conversation "+string(id)+" not found for member")
	}
	return c, nil
}

func (r *MemoryConversationRepo) GetForSession(ctx context.Context, id common.ID, sessionKey string) (*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok || c.MemberID != nil || c.SessionKey != sessionKey {
		return nil, errors.New(errors.ErrCodeConversationNotFound,
			"conversation "+string(id)+" not found for session")
	}
	return c, nil
}

func (r *MemoryConversationRepo) AppendMessage(ctx context.Context, id common.ID, msg conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.CreatedAt
	return nil
}

func (r *MemoryConversationRepo) SetTitle(ctx context.Context, id common.ID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	c.Title = title
	return nil
}

func (r *MemoryConversationRepo) ListByMember(ctx context.Context, memberID common.ID, p common.Pagination) ([]*conversation.Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*conversation.Conversation, 0)
	for _, c := range r.conversations {
		if c.MemberID != nil && *c.MemberID == memberID {
			matched = append(matched, summaryOf(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })
	total := int64(len(matched))
	return paginate(matched, p), total, nil
}

func (r *MemoryConversationRepo) ListBySession(ctx context.Context, sessionKey string, p common.Pagination) ([]*conversation.Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*conversation.Conversation, 0)
	for _, c := range r.conversations {
		if c.MemberID == nil && c.SessionKey == sessionKey {
			matched = append(matched, summaryOf(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })
	total := int64(len(matched))
	return paginate(matched, p), total, nil
}

func (r *MemoryConversationRepo) Delete(ctx context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[id]; !ok {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	delete(r.conversations, id)
	return nil
}

func (r *MemoryConversationRepo) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.conversations {
		if c.UpdatedAt.Before(cutoff) {
			delete(r.conversations, id)
			n++
		}
	}
	return n, nil
}

// summaryOf strips messages, matching the list contract.
func summaryOf(c *conversation.Conversation) *conversation.Conversation {
	cp := *c
	cp.Messages = nil
	return &cp
}

// ─────────────────────────────────────────────────────────────────────────────
// Audit repository
// ─────────────────────────────────────────────────────────────────────────────

type MemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []*audit.Entry
}

var _ audit.AuditRepository = (*MemoryAuditRepo)(nil)

func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{}
}

func (r *MemoryAuditRepo) Append(ctx context.Context, e *audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryAuditRepo) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*audit.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Severity != "" && e.Severity != filter.Severity {
			continue
		}
		if !inWindow(e.CreatedAt, filter.From, filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	return paginate(matched, filter.Pagination), total, nil
}

// Entries returns everything appended so far, oldest first. Test helper.
func (r *MemoryAuditRepo) Entries() []*audit.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*audit.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
