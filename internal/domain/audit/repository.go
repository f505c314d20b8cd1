package audit

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ListFilter narrows audit listings. Zero values mean "no constraint".
type ListFilter struct {
	ActorID    common.ID
	Action     string
	Severity   Severity
	From       time.Time
	To         time.Time
	Pagination common.Pagination
}

// AuditRepository is the persistence port for the audit trail.
type AuditRepository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter ListFilter) ([]*Entry, int64, error)
}
