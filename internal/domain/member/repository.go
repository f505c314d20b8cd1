package member

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ListFilter narrows member listings. Zero values mean "no constraint".
type ListFilter struct {
	Role       common.Role
	ActiveOnly bool
	Search     string
	Pagination common.Pagination
}

// MembershipFilter narrows membership queries. Every From/To pair is a
// half-open instant window [From, To); zero times mean unbounded.
type MembershipFilter struct {
	MemberID common.ID
	Status   MembershipStatus

	CreatedFrom time.Time
	CreatedTo   time.Time

	EndFrom time.Time
	EndTo   time.Time

	CancelledFrom time.Time
	CancelledTo   time.Time
}

// MemberRepository is the persistence port for the Member bounded context.
// Implementations live in the infrastructure layer.
type MemberRepository interface {
	// Member
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id common.ID) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	GetByKioskPIN(ctx context.Context, pin string) (*Member, error)
	// Search matches name, email, or username case-insensitively against
	// query, restricted to active accounts with the member role, capped at
	// limit rows.
	Search(ctx context.Context, query string, limit int) ([]*Member, error)
	List(ctx context.Context, filter ListFilter) ([]*Member, int64, error)
	Update(ctx context.Context, m *Member) error

	// Plan
	CreatePlan(ctx context.Context, p *Plan) error
	GetPlanByID(ctx context.Context, id common.ID) (*Plan, error)
	GetPlanByName(ctx context.Context, name string) (*Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*Plan, error)

	// Walk-in pass
	CreatePass(ctx context.Context, p *WalkinPass) error
	GetPassByName(ctx context.Context, name string) (*WalkinPass, error)
	ListPasses(ctx context.Context, activeOnly bool) ([]*WalkinPass, error)

	// Membership
	CreateMembership(ctx context.Context, m *Membership) error
	GetMembershipByID(ctx context.Context, id common.ID) (*Membership, error)
	// ActiveMembership returns the member's current active membership, or a
	// not-found error when none exists.
	ActiveMembership(ctx context.Context, memberID common.ID) (*Membership, error)
	// ListMembershipsByMember returns the member's full membership history,
	// newest first.
	ListMembershipsByMember(ctx context.Context, memberID common.ID) ([]*Membership, error)
	// ListMemberships and CountMemberships drive the analytics and
	// operations queries: expiring windows, the expiry sweep, growth and
	// churn counting, renewal detection.
	ListMemberships(ctx context.Context, filter MembershipFilter) ([]*Membership, error)
	CountMemberships(ctx context.Context, filter MembershipFilter) (int64, error)
	UpdateMembership(ctx context.Context, m *Membership) error

	// Transaction
	WithTx(ctx context.Context, fn func(MemberRepository) error) error
}
