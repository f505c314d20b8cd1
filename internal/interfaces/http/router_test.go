package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/chat"
	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/auth/statictoken"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/intent"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MemberPulse-Intelligence/internal/testutil"
)

type stubTopics struct{}

func (stubTopics) RecordAsk(context.Context, repositories.Ask) error    { return nil }
func (stubTopics) RecordAsks(context.Context, []repositories.Ask) error { return nil }
func (stubTopics) TopTopics(context.Context, time.Time, time.Time, int) ([]repositories.TopicCount, error) {
	return []repositories.TopicCount{{Topic: "opening_hours", Kind: repositories.TopicFAQ, Asks: 3, Askers: 2}}, nil
}
func (stubTopics) TopicsForMember(context.Context, string, int) ([]repositories.TopicCount, error) {
	return nil, nil
}
func (stubTopics) PruneBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	corpus, err := faq.NewCorpus([]faq.Entry{{
		Key:      "opening_hours",
		Keywords: []string{"hours", "open"},
		Answer:   "We are open 6am to 10pm daily.",
	}})
	require.NoError(t, err)
	provider := faq.NewProvider(corpus)

	chatSvc := chat.NewService(
		provider,
		intent.NewClassifier(),
		router.New(),
		testutil.NewMemoryConversationRepo(),
		nil,
		nil,
		chat.WithLogger(logging.NewNopLogger()),
	)

	nop := logging.NewNopLogger()
	verifier := statictoken.NewVerifier(config.AuthConfig{
		Enabled: true,
		Tokens: []config.StaticToken{
			{Token: "member-token", UserID: "mem-1", Role: "member"},
			{Token: "admin-token", UserID: "adm-1", Role: "admin"},
		},
	}, nop)

	return NewRouter(config.ServerConfig{Mode: "test"}, RouterConfig{
		ChatHandler:   handlers.NewChatHandler(chatSvc, nop),
		AdminHandler:  handlers.NewAdminHandler(nil, stubTopics{}, provider, nop),
		HealthHandler: handlers.NewHealthHandler("test"),
		Auth:          statictoken.NewMiddleware(verifier, "", nop),
		Logger:        nop,
	})
}

func doRequest(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthEndpointsArePublic(t *testing.T) {
	h := newTestRouter(t)

	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, http.MethodGet, "/readyz", "", "").Code)
}

func TestRouterChatRequiresToken(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodPost, "/api/v1/chat", "", `{"query":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterChatAnswersWithToken(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodPost, "/api/v1/chat", "member-token",
		`{"query":"What are your opening hours?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Answer string `json:"answer"`
			Source string `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "We are open 6am to 10pm daily.", env.Data.Answer)
	assert.Equal(t, "faq", env.Data.Source)
}

func TestRouterAdminRoutesNeedAdminRole(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodGet, "/api/v1/admin/insights/topics", "member-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(h, http.MethodGet, "/api/v1/admin/insights/topics", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownToken(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodGet, "/api/v1/chat/suggestions", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRequestIDHeader(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodGet, "/healthz", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterNoMetricsWithoutCollector(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
