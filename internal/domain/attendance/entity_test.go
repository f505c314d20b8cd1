package attendance

import (
	"testing"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

func TestCheckinLifecycle(t *testing.T) {
	in := time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)
	c, err := NewCheckin(common.NewID(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsOpen() {
		t.Error("expected fresh visit to be open")
	}

	// Open visits measure against now.
	now := in.Add(45 * time.Minute)
	if got := c.Duration(now); got != 45*time.Minute {
		t.Errorf("expected 45m open duration, got %s", got)
	}

	if err := c.Complete(in.Add(-time.Minute)); err == nil {
		t.Error("expected error checking out before check-in")
	}

	out := in.Add(90 * time.Minute)
	if err := c.Complete(out); err != nil {
		t.Fatalf("unexpected complete error: %v", err)
	}
	if c.IsOpen() {
		t.Error("expected visit to be closed")
	}
	if got := c.Duration(now.Add(10 * time.Hour)); got != 90*time.Minute {
		t.Errorf("expected closed duration to ignore now, got %s", got)
	}

	if err := c.Complete(out.Add(time.Hour)); err == nil {
		t.Error("expected error on double check-out")
	}
}

func TestNewCheckinValidation(t *testing.T) {
	if _, err := NewCheckin("", time.Now()); err == nil {
		t.Error("expected error for empty member id")
	}
	if _, err := NewCheckin(common.NewID(), time.Time{}); err == nil {
		t.Error("expected error for zero time")
	}
}
