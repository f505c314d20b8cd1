package operations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/audit"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

const (
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
	timestampLayout = "2006-01-02 15:04"

	searchLimit          = 10
	recentPaymentsLimit  = 10
	profilePaymentsLimit = 5
	recentVisitsShown    = 5
	recentVisitsWindow   = 30 // days

	defaultExpiryHorizon  = 7  // days
	defaultInactiveWindow = 30 // days

	stillInGym = "Still in gym"
)

// ============================================================================
// Result types
// ============================================================================

// MemberSummary is one row of a member search result.
type MemberSummary struct {
	ID               common.ID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Mobile           string    `json:"mobile,omitempty"`
	MembershipStatus string    `json:"membership_status"`
	MembershipPlan   string    `json:"membership_plan,omitempty"`
	ExpiryDate       string    `json:"expiry_date,omitempty"`
	DaysRemaining    int       `json:"days_remaining"`
}

// MemberDetails is the complete staff-facing profile of one member.
type MemberDetails struct {
	ID           common.ID          `json:"id"`
	PersonalInfo PersonalInfo       `json:"personal_info"`
	Membership   MembershipStanding `json:"membership_status"`
	History      []MembershipRecord `json:"membership_history"`
	Payments     []PaymentRecord    `json:"payment_history"`
	Attendance   AttendanceSummary  `json:"attendance_summary"`
}

// PersonalInfo carries identity fields. Mobile and Address fall back to
// "Not provided" so chat output never shows blanks.
type PersonalInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Address    string `json:"address"`
	Age        int    `json:"age"`
	Birthdate  string `json:"birthdate,omitempty"`
	JoinedDate string `json:"joined_date"`
}

// MembershipStanding summarizes the member's current membership. The kiosk
// PIN rides along because the front desk reads it off this view.
type MembershipStanding struct {
	IsActive      bool   `json:"is_active"`
	Plan          string `json:"plan,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	DaysRemaining int    `json:"days_remaining"`
	KioskPIN      string `json:"kiosk_pin"`
}

// MembershipRecord is one row of a member's membership history.
type MembershipRecord struct {
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CreatedAt string `json:"created_at"`
}

// PaymentRecord is one row of a member's payment history.
type PaymentRecord struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	Date      string  `json:"date"`
	Reference string  `json:"reference"`
}

// AttendanceSummary covers the member's last 30 days of visits.
type AttendanceSummary struct {
	TotalVisits30Days int64         `json:"total_visits_30days"`
	RecentVisits      []VisitRecord `json:"recent_visits"`
}

// VisitRecord is one rendered gym visit.
type VisitRecord struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Duration string `json:"duration"`
}

// ExpiringMembership is one row of the expiring-memberships report.
type ExpiringMembership struct {
	MemberName    string `json:"member_name"`
	MemberEmail   string `json:"member_email"`
	MemberMobile  string `json:"member_mobile,omitempty"`
	Plan          string `json:"plan"`
	ExpiryDate    string `json:"expiry_date"`
	DaysRemaining int    `json:"days_remaining"`
}

// InactiveMember is one row of the inactive-members report: a member with a
// current membership who has not visited recently.
type InactiveMember struct {
	MemberName     string `json:"member_name"`
	MemberEmail    string `json:"member_email"`
	MemberMobile   string `json:"member_mobile,omitempty"`
	LastVisit      string `json:"last_visit"`
	DaysSinceVisit int    `json:"days_since_visit"`
	MembershipPlan string `json:"membership_plan,omitempty"`
}

// PendingPayment is one row of the payment approval queue.
type PendingPayment struct {
	PaymentID   common.ID `json:"payment_id"`
	Reference   string    `json:"reference"`
	MemberName  string    `json:"member_name"`
	MemberEmail string    `json:"member_email"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Plan        string    `json:"plan,omitempty"`
	PaymentDate string    `json:"payment_date"`
	DaysPending int       `json:"days_pending"`
}

// CheckinsToday is the front-desk view of today's gym traffic.
type CheckinsToday struct {
	Date           string        `json:"date"`
	TotalCheckins  int           `json:"total_checkins"`
	CurrentlyInGym int           `json:"currently_in_gym"`
	Checkins       []CheckinLine `json:"checkins"`
}

// CheckinLine is one rendered check-in of the day.
type CheckinLine struct {
	MemberName   string `json:"member_name"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	Duration     string `json:"duration"`
	Status       string `json:"status"`
}

// MemberProfile bundles what the self-service and staff lookup views render:
// the account, its active membership if any, and recent payments when loaded
// for staff.
type MemberProfile struct {
	Member     *member.Member
	Membership *member.Membership
	Payments   []*payment.Payment
}

// ============================================================================
// Member search and profiles
// ============================================================================

// SearchMembers finds up to ten member accounts matching the query by name,
// email, or username. Requires staff.
func (s *Service) SearchMembers(ctx context.Context, actor Actor, query string) ([]MemberSummary, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	hits, err := s.members.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "searching members")
	}

	now := s.now()
	out := make([]MemberSummary, 0, len(hits))
	for _, m := range hits {
		row := MemberSummary{
			ID:               m.ID,
			Name:             m.FullName(),
			Email:            m.Email,
			Mobile:           m.Phone,
			MembershipStatus: "Inactive",
		}
		ms, err := s.currentMembership(ctx, m.ID, now)
		if err != nil {
			return nil, err
		}
		if ms != nil {
			row.MembershipStatus = "Active"
			row.MembershipPlan = ms.PlanName
			row.ExpiryDate = ms.EndDate.In(s.loc).Format(dateLayout)
			row.DaysRemaining = ms.DaysRemaining(now)
		}
		out = append(out, row)
	}

	s.audit(ctx, actor, audit.ActionDataExport,
		fmt.Sprintf("Member search performed for query: %s", query),
		common.Metadata{"member_count": len(out)})
	return out, nil
}

// MemberDetails loads the complete profile for one member, found by name,
// email, or ID. Requires staff.
func (s *Service) MemberDetails(ctx context.Context, actor Actor, identifier string) (*MemberDetails, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}
	m, err := s.resolveMember(ctx, identifier)
	if err != nil {
		return nil, err
	}
	now := s.now()

	det := &MemberDetails{
		ID: m.ID,
		PersonalInfo: PersonalInfo{
			Name:       m.FullName(),
			Email:      m.Email,
			Mobile:     orNotProvided(m.Phone),
			Address:    orNotProvided(m.Address),
			Age:        m.Age(now),
			JoinedDate: m.CreatedAt.In(s.loc).Format(dateLayout),
		},
		Membership: MembershipStanding{KioskPIN: "Not set"},
	}
	if m.Birthdate != nil {
		det.PersonalInfo.Birthdate = m.Birthdate.In(s.loc).Format(dateLayout)
	}
	if m.HasKioskPIN() {
		det.Membership.KioskPIN = m.KioskPIN
	}

	active, err := s.currentMembership(ctx, m.ID, now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		det.Membership.IsActive = true
		det.Membership.Plan = active.PlanName
		det.Membership.StartDate = active.StartDate.In(s.loc).Format(dateLayout)
		det.Membership.EndDate = active.EndDate.In(s.loc).Format(dateLayout)
		det.Membership.DaysRemaining = active.DaysRemaining(now)
	}

	history, err := s.members.ListMembershipsByMember(ctx, m.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading membership history")
	}
	det.History = make([]MembershipRecord, 0, len(history))
	for _, ms := range history {
		det.History = append(det.History, MembershipRecord{
			Plan:      ms.PlanName,
			Status:    ms.Status.String(),
			StartDate: ms.StartDate.In(s.loc).Format(dateLayout),
			EndDate:   ms.EndDate.In(s.loc).Format(dateLayout),
			CreatedAt: ms.CreatedAt.In(s.loc).Format(dateLayout),
		})
	}

	pays, err := s.payments.ListByMember(ctx, m.ID, recentPaymentsLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading payment history")
	}
	det.Payments = make([]PaymentRecord, 0, len(pays))
	for _, p := range pays {
		det.Payments = append(det.Payments, PaymentRecord{
			Amount:    p.Amount,
			Method:    p.Method.String(),
			Status:    p.Status.String(),
			Date:      p.PaymentDate.In(s.loc).Format(dateLayout),
			Reference: p.Reference,
		})
	}

	since := now.AddDate(0, 0, -recentVisitsWindow)
	total, err := s.visits.CountByMemberSince(ctx, m.ID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "counting visits")
	}
	visits, err := s.visits.ListByMemberSince(ctx, m.ID, since)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading visits")
	}
	det.Attendance.TotalVisits30Days = total
	det.Attendance.RecentVisits = make([]VisitRecord, 0, recentVisitsShown)
	for _, v := range visits {
		if len(det.Attendance.RecentVisits) == recentVisitsShown {
			break
		}
		rec := VisitRecord{
			CheckIn:  v.CheckIn.In(s.loc).Format(timestampLayout),
			CheckOut: stillInGym,
			Duration: durationDisplay(v.Duration(now)),
		}
		if v.CheckOut != nil {
			rec.CheckOut = v.CheckOut.In(s.loc).Format(timestampLayout)
		}
		det.Attendance.RecentVisits = append(det.Attendance.RecentVisits, rec)
	}

	s.audit(ctx, actor, audit.ActionDataExport,
		fmt.Sprintf("Member details accessed: %s (ID: %s)", m.FullName(), m.ID),
		common.Metadata{"member_id": m.ID.String()})
	return det, nil
}

// ============================================================================
// Expiring and inactive member reports
// ============================================================================

// FindExpiringMemberships lists active memberships ending within the given
// number of days, soonest first. Requires staff.
func (s *Service) FindExpiringMemberships(ctx context.Context, actor Actor, days int) ([]ExpiringMembership, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultExpiryHorizon
	}

	now := s.now()
	today := s.dayStart(now)
	expiring, err := s.members.ListMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipActive,
		EndFrom: today,
		EndTo:   today.AddDate(0, 0, days+1),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading expiring memberships")
	}
	sort.Slice(expiring, func(i, j int) bool {
		if expiring[i].EndDate.Equal(expiring[j].EndDate) {
			return expiring[i].MemberID < expiring[j].MemberID
		}
		return expiring[i].EndDate.Before(expiring[j].EndDate)
	})

	out := make([]ExpiringMembership, 0, len(expiring))
	for _, ms := range expiring {
		m, err := s.memberOf(ctx, ms.MemberID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		out = append(out, ExpiringMembership{
			MemberName:    m.FullName(),
			MemberEmail:   m.Email,
			MemberMobile:  m.Phone,
			Plan:          ms.PlanName,
			ExpiryDate:    ms.EndDate.In(s.loc).Format(dateLayout),
			DaysRemaining: ms.DaysRemaining(now),
		})
	}

	s.audit(ctx, actor, audit.ActionReportGenerated,
		fmt.Sprintf("Expiring memberships report: %d members expiring in %d days", len(out), days),
		nil)
	return out, nil
}

// FindInactiveMembers lists members holding a current membership who have
// not checked in within the given number of days, longest absence first.
// Requires staff.
func (s *Service) FindInactiveMembers(ctx context.Context, actor Actor, days int) ([]InactiveMember, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultInactiveWindow
	}

	now := s.now()
	actives, err := s.members.ListMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipActive,
		EndFrom: s.dayStart(now),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading active memberships")
	}

	// One row per member; with overlapping memberships the later end wins.
	byMember := make(map[common.ID]*member.Membership, len(actives))
	for _, ms := range actives {
		if cur, ok := byMember[ms.MemberID]; !ok || ms.EndDate.After(cur.EndDate) {
			byMember[ms.MemberID] = ms
		}
	}

	cutoff := now.AddDate(0, 0, -days)
	out := make([]InactiveMember, 0)
	for memberID, ms := range byMember {
		m, err := s.memberOf(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}

		last, err := s.visits.LastByMember(ctx, memberID)
		if err != nil && !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.ErrCodeReportFailed, "loading last visit")
		}
		row := InactiveMember{
			MemberName:     m.FullName(),
			MemberEmail:    m.Email,
			MemberMobile:   m.Phone,
			LastVisit:      "Never",
			DaysSinceVisit: days + 1,
			MembershipPlan: ms.PlanName,
		}
		if last != nil {
			if !last.CheckIn.Before(cutoff) {
				continue // visited recently
			}
			row.LastVisit = last.CheckIn.In(s.loc).Format(dateLayout)
			row.DaysSinceVisit = int(now.Sub(last.CheckIn) / (24 * time.Hour))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysSinceVisit == out[j].DaysSinceVisit {
			return out[i].MemberName < out[j].MemberName
		}
		return out[i].DaysSinceVisit > out[j].DaysSinceVisit
	})

	s.audit(ctx, actor, audit.ActionReportGenerated,
		fmt.Sprintf("Inactive members report: %d members inactive for %d+ days", len(out), days),
		nil)
	return out, nil
}

// ============================================================================
// Pending payment queue
// ============================================================================

// PendingPayments lists payments awaiting confirmation, oldest first so the
// queue is worked in arrival order. Requires staff.
func (s *Service) PendingPayments(ctx context.Context, actor Actor) ([]PendingPayment, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	pending, err := s.payments.ListPending(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading pending payments")
	}

	now := s.now()
	out := make([]PendingPayment, 0, len(pending))
	for _, p := range pending {
		row := PendingPayment{
			PaymentID:   p.ID,
			Reference:   p.Reference,
			Amount:      p.Amount,
			Method:      p.Method.String(),
			Plan:        p.PlanName,
			PaymentDate: p.PaymentDate.In(s.loc).Format(dateLayout),
			DaysPending: p.DaysPending(now),
		}
		if m, err := s.memberOf(ctx, p.MemberID); err != nil {
			return nil, err
		} else if m != nil {
			row.MemberName = m.FullName()
			row.MemberEmail = m.Email
		}
		if row.Plan == "" {
			if ms, err := s.members.GetMembershipByID(ctx, p.MembershipID); err == nil {
				row.Plan = ms.PlanName
			}
		}
		out = append(out, row)
	}

	s.audit(ctx, actor, audit.ActionReportGenerated,
		fmt.Sprintf("Pending payments report: %d payments awaiting approval", len(out)),
		nil)
	return out, nil
}

// ============================================================================
// Today's check-ins
// ============================================================================

// TodaysCheckins lists today's gym visits, newest first, with a count of
// members still inside. Requires staff.
func (s *Service) TodaysCheckins(ctx context.Context, actor Actor) (*CheckinsToday, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	now := s.now()
	from := s.dayStart(now)
	visits, err := s.visits.ListByRange(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading today's check-ins")
	}

	res := &CheckinsToday{
		Date:     from.Format(dateLayout),
		Checkins: make([]CheckinLine, 0, len(visits)),
	}
	// Newest first for the front desk.
	for i := len(visits) - 1; i >= 0; i-- {
		v := visits[i]
		line := CheckinLine{
			MemberName:   v.MemberName,
			CheckInTime:  v.CheckIn.In(s.loc).Format(clockLayout),
			CheckOutTime: stillInGym,
			Duration:     durationDisplay(v.Duration(now)),
			Status:       "Checked out",
		}
		if v.IsOpen() {
			line.Status = "In gym"
			res.CurrentlyInGym++
		} else {
			line.CheckOutTime = v.CheckOut.In(s.loc).Format(clockLayout)
		}
		res.Checkins = append(res.Checkins, line)
	}
	res.TotalCheckins = len(res.Checkins)
	return res, nil
}

// ============================================================================
// Self-service and staff lookups
// ============================================================================

// SelfProfile loads the caller's own account and membership. Any
// authenticated account may read its own profile, so there is no role gate.
func (s *Service) SelfProfile(ctx context.Context, memberID common.ID) (*MemberProfile, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMemberNotFound) {
			return nil, errors.Newf(errors.ErrCodeMemberNotFound, "member not found: %s", memberID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading member")
	}
	ms, err := s.activeMembership(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &MemberProfile{Member: m, Membership: ms}, nil
}

// LookupMemberByName finds one active member by name or username fragment
// and loads the staff profile view. Requires staff.
func (s *Service) LookupMemberByName(ctx context.Context, actor Actor, name string) (*MemberProfile, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	hits, err := s.members.Search(ctx, name, 1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "searching members")
	}
	if len(hits) == 0 {
		return nil, errors.Newf(errors.ErrCodeMemberNotFound,
			"no active member found with name %q", name)
	}
	m := hits[0]

	profile, err := s.staffProfile(ctx, m)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, audit.ActionDataExport,
		fmt.Sprintf("Looked up member information for %s via chatbot", m.FullName()),
		common.Metadata{"member_id": m.ID.String()})
	return profile, nil
}

// LookupMemberByEmail finds one active member by exact email and loads the
// staff profile view. Requires staff.
func (s *Service) LookupMemberByEmail(ctx context.Context, actor Actor, email string) (*MemberProfile, error) {
	if err := s.requireRole(actor, common.RoleStaff); err != nil {
		return nil, err
	}

	notFound := errors.Newf(errors.ErrCodeMemberNotFound,
		"no active member found with email %q", email)
	m, err := s.members.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMemberNotFound) {
			return nil, notFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading member")
	}
	if m.Role != common.RoleMember || !m.Active {
		return nil, notFound
	}

	profile, err := s.staffProfile(ctx, m)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor, audit.ActionDataExport,
		fmt.Sprintf("Looked up member information by email for %s via chatbot", m.FullName()),
		common.Metadata{"member_id": m.ID.String()})
	return profile, nil
}

// staffProfile assembles the staff lookup view: account, membership, and the
// five most recent payments.
func (s *Service) staffProfile(ctx context.Context, m *member.Member) (*MemberProfile, error) {
	ms, err := s.activeMembership(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	pays, err := s.payments.ListByMember(ctx, m.ID, profilePaymentsLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading payment history")
	}
	return &MemberProfile{Member: m, Membership: ms, Payments: pays}, nil
}

// memberOf loads a member account, returning nil for a dangling reference so
// report loops can skip rather than fail.
func (s *Service) memberOf(ctx context.Context, id common.ID) (*member.Member, error) {
	m, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) || errors.IsCode(err, errors.ErrCodeMemberNotFound) {
			s.logger.Warn("membership references missing member", logging.String("member_id", id.String()))
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading member")
	}
	if m.Role != common.RoleMember {
		return nil, nil
	}
	return m, nil
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
