package attendance

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// AttendanceRepository is the persistence port for the Attendance bounded
// context.
type AttendanceRepository interface {
	// Checkin
	Create(ctx context.Context, c *Checkin) error
	// OpenByMember returns the member's open visit, or a not-found error
	// when the member is not currently inside.
	OpenByMember(ctx context.Context, memberID common.ID) (*Checkin, error)
	Update(ctx context.Context, c *Checkin) error

	// Queries
	// ListByRange returns visits whose check-in falls inside [from, to),
	// oldest first, with member names populated.
	ListByRange(ctx context.Context, from, to time.Time) ([]*Checkin, error)
	// ListByMemberSince returns the member's visits since the cutoff,
	// newest first.
	ListByMemberSince(ctx context.Context, memberID common.ID, since time.Time) ([]*Checkin, error)
	CountByMemberSince(ctx context.Context, memberID common.ID, since time.Time) (int64, error)
	// LastByMember returns the member's most recent visit, or a not-found
	// error when the member has never checked in.
	LastByMember(ctx context.Context, memberID common.ID) (*Checkin, error)
	CountOpen(ctx context.Context) (int64, error)
}
