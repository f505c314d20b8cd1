package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/extract"
)

// ============================================================================
// Cache TTLs and key layout
// ============================================================================

const (
	// ttlShort covers frequently changing data: revenue, growth,
	// attendance, payment collection.
	ttlShort = 2 * time.Minute

	// ttlMedium covers semi-static data: retention, plan popularity.
	ttlMedium = 10 * time.Minute

	// ttlLong covers mostly static context cached by the chat layer.
	ttlLong = time.Hour
)

const (
	cacheKeyRevenue    = "analytics_revenue_"
	cacheKeyGrowth     = "analytics_growth_"
	cacheKeyAttendance = "analytics_attendance_"
	cacheKeyPlans      = "analytics_plan_popularity_"
	cacheKeyRetention  = "analytics_retention"
	cacheKeyPayments   = "analytics_payment_status"
)

// cachedPeriods enumerates every period a keyed report may be cached under,
// for ClearCaches.
var cachedPeriods = []extract.Period{
	extract.PeriodToday,
	extract.PeriodYesterday,
	extract.PeriodThisWeek,
	extract.PeriodLastWeek,
	extract.PeriodThisMonth,
	extract.PeriodLastMonth,
	extract.PeriodThisYear,
}

// ============================================================================
// Dependencies
// ============================================================================

// Cache is the byte-level cache the engine stores serialized reports in.
// Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Archiver persists rendered comprehensive reports to the object archive.
// Archiving is best-effort: a storage failure is logged, never surfaced.
type Archiver interface {
	Archive(ctx context.Context, report minio.Report) (*minio.StoredReport, error)
}

// ============================================================================
// Engine
// ============================================================================

// Engine computes the reports. It folds over the domain repositories rather
// than owning SQL of its own, so the same code runs against Postgres and the
// in-memory fakes.
type Engine struct {
	members  member.MemberRepository
	payments payment.PaymentRepository
	visits   attendance.AttendanceRepository

	cache   Cache
	archive Archiver
	logger  logging.Logger
	loc     *time.Location
	clock   func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCache enables report caching. Without it every call recomputes.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithArchiver enables archiving of rendered comprehensive reports.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archive = a }
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLocation sets the club's timezone. Day boundaries, week starts, and
// peak-hour buckets are computed in this location. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine wires an analytics engine over the domain repositories.
func NewEngine(members member.MemberRepository, payments payment.PaymentRepository, visits attendance.AttendanceRepository, opts ...Option) *Engine {
	e := &Engine{
		members:  members,
		payments: payments,
		visits:   visits,
		logger:   logging.Default().Named("analytics"),
		loc:      time.UTC,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// now returns the reference time in the club's timezone.
func (e *Engine) now() time.Time {
	return e.clock().In(e.loc)
}

// ClearCaches drops every cached report. The operations layer calls this
// after any mutation that would stale the numbers.
func (e *Engine) ClearCaches(ctx context.Context) {
	if e.cache == nil {
		return
	}
	keys := make([]string, 0, 4*len(cachedPeriods)+2)
	for _, p := range cachedPeriods {
		keys = append(keys,
			cacheKeyRevenue+p.String(),
			cacheKeyGrowth+p.String(),
			cacheKeyAttendance+p.String(),
			cacheKeyPlans+p.String(),
		)
	}
	keys = append(keys, cacheKeyRetention, cacheKeyPayments)
	if err := e.cache.Delete(ctx, keys...); err != nil {
		e.logger.Warn("analytics cache clear failed", logging.Err(err))
	}
}

// cachedReport is the cache-aside wrapper around a report computation.
// Cache trouble never fails a report: read and write errors are logged and
// the computation proceeds.
func cachedReport[T any](ctx context.Context, e *Engine, key string, ttl time.Duration, compute func() (*T, error)) (*T, error) {
	if e.cache != nil {
		raw, err := e.cache.Get(ctx, key)
		switch {
		case err != nil:
			e.logger.Warn("analytics cache read failed",
				logging.String("key", key), logging.Err(err))
		case raw != nil:
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return &out, nil
			}
			e.logger.Warn("analytics cache entry unreadable, recomputing",
				logging.String("key", key))
		}
	}

	out, err := compute()
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			if err := e.cache.Set(ctx, key, raw, ttl); err != nil {
				e.logger.Warn("analytics cache write failed",
					logging.String("key", key), logging.Err(err))
			}
		}
	}
	return out, nil
}
