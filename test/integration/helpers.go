// Package integration holds tests that run the application services over
// real backends. Containers are started through testcontainers, so Docker
// must be reachable; the suite is gated behind MPULSE_INTEGRATION_TEST.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/attendance"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// EnvIntegrationEnabled gates the whole package: unset means skip.
const EnvIntegrationEnabled = "MPULSE_INTEGRATION_TEST"

const startupTimeout = 90 * time.Second

// fixedNow is a Wednesday midday; period windows computed against it never
// cross a day boundary in either direction during a test run.
var fixedNow = time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

// SkipIfNoIntegration skips the calling test when the gate is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// migrationsDir resolves the repository's migrations directory relative to
// this source file, so the tests run from any working directory.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// startPostgres launches a PostgreSQL container, applies the full migration
// set and returns a connected pool wrapper.
func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "mpulse",
			"POSTGRES_PASSWORD": "mpulse",
			"POSTGRES_DB":       "mpulse_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://mpulse:mpulse@%s:%s/mpulse_test?sslmode=disable", host, port.Port())
	require.NoError(t, postgres.RunMigrations(dsn, "file://"+migrationsDir(t)))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	conn := postgres.NewConnectionWithPool(pool, logging.NewNopLogger())
	t.Cleanup(conn.Close)
	return conn
}

// startRedis launches a Redis container and returns a connected client.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redis.NewClient(&redis.RedisConfig{
		Mode: "standalone",
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// testStore bundles the repositories over one database plus seed helpers.
type testStore struct {
	conn     *postgres.Connection
	members  member.MemberRepository
	payments payment.PaymentRepository
	visits   attendance.AttendanceRepository

	seq int
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	conn := startPostgres(t)
	log := logging.NewNopLogger()
	return &testStore{
		conn:     conn,
		members:  pgrepos.NewPostgresMemberRepo(conn, log),
		payments: pgrepos.NewPostgresPaymentRepo(conn, log),
		visits:   pgrepos.NewPostgresAttendanceRepo(conn, log),
	}
}

func (s *testStore) newMember(t *testing.T, first, last string) *member.Member {
	t.Helper()
	s.seq++
	m, err := member.NewMember(first, last,
		fmt.Sprintf("%s%d@example.com", first, s.seq),
		fmt.Sprintf("%s%d", first, s.seq), common.RoleMember)
	require.NoError(t, err)
	require.NoError(t, s.members.Create(context.Background(), m))
	return m
}

func (s *testStore) newPlan(t *testing.T, name string, price float64, days int) *member.Plan {
	t.Helper()
	p, err := member.NewPlan(name, "", price, days)
	require.NoError(t, err)
	require.NoError(t, s.members.CreatePlan(context.Background(), p))
	return p
}

func (s *testStore) newMembership(t *testing.T, memberID, planID common.ID, start, end time.Time) *member.Membership {
	t.Helper()
	ms, err := member.NewMembership(memberID, planID, start, end)
	require.NoError(t, err)
	require.NoError(t, s.members.CreateMembership(context.Background(), ms))
	return ms
}

// confirmedPayment seeds a payment already in the confirmed state so the
// analytics reports see revenue.
func (s *testStore) confirmedPayment(t *testing.T, memberID, membershipID common.ID, amount float64, at time.Time) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(memberID, membershipID, amount, payment.MethodCash, at)
	require.NoError(t, err)
	require.NoError(t, p.Confirm("seed", at))
	require.NoError(t, s.payments.Create(context.Background(), p))
	return p
}

func (s *testStore) pendingPayment(t *testing.T, memberID, membershipID common.ID, amount float64, at time.Time) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(memberID, membershipID, amount, payment.MethodGCash, at)
	require.NoError(t, err)
	require.NoError(t, s.payments.Create(context.Background(), p))
	return p
}

func (s *testStore) checkin(t *testing.T, memberID common.ID, at time.Time) *attendance.Checkin {
	t.Helper()
	c, err := attendance.NewCheckin(memberID, at)
	require.NoError(t, err)
	require.NoError(t, s.visits.Create(context.Background(), c))
	return c
}
