// Package e2e exercises the full HTTP surface in process: real router,
// middleware, auth and application services over in-memory stores, driven
// through the public Go SDK exactly the way an external caller would.
package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/analytics"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/chat"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/auth/statictoken"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/intent"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/lexicon"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	httpserver "github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MemberPulse-Intelligence/internal/testutil"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/client"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

const (
	kioskToken  = "e2e-kiosk-token"
	memberToken = "e2e-member-token"
	staffToken  = "e2e-staff-token"
	adminToken  = "e2e-admin-token"
)

// fixedNow anchors the analytics clock so period windows are stable.
var fixedNow = time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

const corpusYAML = `entries:
  - key: opening_hours
    keywords: [open, hours, close]
    answer: We are open 6am to 10pm daily.
  - key: day_pass
    keywords: [walk-in, day pass, walkin]
    answer: A walk-in day pass is 150 pesos.
`

// env is one running in-process deployment.
type env struct {
	server     *httptest.Server
	corpusPath string

	members  *testutil.MemoryMemberRepo
	payments *testutil.MemoryPaymentRepo
	visits   *testutil.MemoryAttendanceRepo

	member *member.Member
}

// newEnv assembles the stack the way cmd/apiserver does, minus the
// network backends, and serves it from an httptest listener.
func newEnv(t *testing.T) *env {
	t.Helper()
	log := logging.NewNopLogger()

	e := &env{
		members:  testutil.NewMemoryMemberRepo(),
		payments: testutil.NewMemoryPaymentRepo(),
		visits:   testutil.NewMemoryAttendanceRepo(),
	}
	conversations := testutil.NewMemoryConversationRepo()
	auditLog := testutil.NewMemoryAuditRepo()

	m, err := member.NewMember("Dana", "Cruz", "dana@example.com", "dana", common.RoleMember)
	require.NoError(t, err)
	require.NoError(t, e.members.Create(context.Background(), m))
	e.member = m

	e.corpusPath = filepath.Join(t.TempDir(), "faq.yaml")
	require.NoError(t, os.WriteFile(e.corpusPath, []byte(corpusYAML), 0o644))
	corpus, err := faq.NewProviderFromFile(e.corpusPath, faq.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { _ = corpus.Close() })

	engine := analytics.NewEngine(e.members, e.payments, e.visits,
		analytics.WithLogger(log),
		analytics.WithClock(func() time.Time { return fixedNow }))
	ops := operations.NewService(e.members, e.payments, e.visits, auditLog,
		operations.WithLogger(log),
		operations.WithCacheClearer(engine),
		operations.WithClock(func() time.Time { return fixedNow }))

	lex := lexicon.New()
	svc := chat.NewService(corpus,
		intent.NewClassifier(intent.WithLexicon(lex)),
		router.New(router.WithLexicon(lex)),
		conversations, ops, engine,
		chat.WithLogger(log))

	authCfg := config.AuthConfig{
		Enabled: true,
		Tokens: []config.StaticToken{
			{Token: kioskToken, UserID: "", Role: "none"},
			{Token: memberToken, UserID: string(m.ID), Role: "member"},
			{Token: staffToken, UserID: "staff-1", Role: "staff"},
			{Token: adminToken, UserID: "admin-1", Role: "admin"},
		},
	}
	authMW := statictoken.NewMiddleware(statictoken.NewVerifier(authCfg, log), "", log)

	engineRouter := httpserver.NewRouter(config.ServerConfig{Mode: "test"}, httpserver.RouterConfig{
		ChatHandler:   handlers.NewChatHandler(svc, log),
		AdminHandler:  handlers.NewAdminHandler(nil, nil, corpus, log),
		HealthHandler: handlers.NewHealthHandler("e2e"),
		Auth:          authMW,
		Logger:        log,
	})

	e.server = httptest.NewServer(engineRouter)
	t.Cleanup(e.server.Close)
	return e
}

// clientFor returns an SDK client authenticated with the given token.
func (e *env) clientFor(t *testing.T, token string) *client.Client {
	t.Helper()
	opts := []client.Option{client.WithRetry(1, 10*time.Millisecond, 50*time.Millisecond)}
	if token != "" {
		opts = append(opts, client.WithAPIKey(token))
	}
	c, err := client.NewClient(e.server.URL, opts...)
	require.NoError(t, err)
	return c
}
