// Package attendance implements the Attendance bounded context: kiosk
// check-ins and check-outs, the single source for visit counts, peak-hour
// reports, and the "who is in the gym right now" view.
package attendance

import (
	"fmt"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Checkin is a single gym visit. CheckOut stays nil while the member is
// still inside.
type Checkin struct {
	common.BaseEntity

	MemberID common.ID `json:"member_id"`

	// MemberName is denormalized by the repository for staff-facing lists.
	// Not authoritative.
	MemberName string `json:"member_name,omitempty"`

	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// NewCheckin opens a visit for the member at the given time.
func NewCheckin(memberID common.ID, at time.Time) (*Checkin, error) {
	if memberID == "" {
		return nil, errors.InvalidParam("checkin member id must not be empty")
	}
	if at.IsZero() {
		return nil, errors.InvalidParam("checkin time must not be zero")
	}
	at = at.UTC()
	return &Checkin{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: at,
			UpdatedAt: at,
		},
		MemberID: memberID,
		CheckIn:  at,
	}, nil
}

// Complete closes the visit at the given time. Closing an already closed
// visit or checking out before check-in fails.
func (c *Checkin) Complete(at time.Time) error {
	if c.CheckOut != nil {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("visit for member %s already checked out", c.MemberID))
	}
	at = at.UTC()
	if at.Before(c.CheckIn) {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("check-out %s precedes check-in %s",
				at.Format(time.RFC3339), c.CheckIn.Format(time.RFC3339)))
	}
	c.CheckOut = &at
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// IsOpen reports whether the member is still inside.
func (c *Checkin) IsOpen() bool { return c.CheckOut == nil }

// Duration returns the visit length. Open visits are measured against now.
func (c *Checkin) Duration(now time.Time) time.Duration {
	end := now.UTC()
	if c.CheckOut != nil {
		end = *c.CheckOut
	}
	if end.Before(c.CheckIn) {
		return 0
	}
	return end.Sub(c.CheckIn)
}
