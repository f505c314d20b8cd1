// Package analytics computes the business reports behind the chatbot's
// analytical tools: revenue, membership growth, attendance trends,
// retention, plan popularity, and payment collection. Reports are cached
// aggressively; mutations in the operations layer clear the caches.
package analytics

import (
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
)

// DateRangeFor resolves a reporting period to an inclusive [start, end] day
// pair relative to the given reference time. Weeks start on Monday. Unknown
// periods collapse to today. The returned times are midnights in the
// reference time's location.
func DateRangeFor(p extract.Period, ref time.Time) (time.Time, time.Time) {
	d := dayStart(ref)

	switch p {
	case extract.PeriodToday:
		return d, d
	case extract.PeriodYesterday:
		y := d.AddDate(0, 0, -1)
		return y, y
	case extract.PeriodThisWeek:
		return d.AddDate(0, 0, -mondayOffset(d)), d
	case extract.PeriodLastWeek:
		start := d.AddDate(0, 0, -(mondayOffset(d) + 7))
		return start, start.AddDate(0, 0, 6)
	case extract.PeriodThisMonth:
		return monthStart(d), d
	case extract.PeriodLastMonth:
		lastOfPrev := monthStart(d).AddDate(0, 0, -1)
		return monthStart(lastOfPrev), lastOfPrev
	case extract.PeriodThisYear:
		return time.Date(d.Year(), 1, 1, 0, 0, 0, 0, d.Location()), d
	default:
		return d, d
	}
}

// windowOf converts an inclusive [start, end] day pair into the half-open
// instant window [start, end+1d) used by the repository filters.
func windowOf(start, end time.Time) (time.Time, time.Time) {
	return start, end.AddDate(0, 0, 1)
}

// mondayOffset returns how many days d sits after the most recent Monday.
func mondayOffset(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
