package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/analytics"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/chat"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/conversation"
	pgrepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/intent"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/lexicon"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// newChatService assembles the full query pipeline over a real database and
// cache, mirroring the API server's wiring minus the optional event and
// retrieval backends.
func newChatService(t *testing.T, store *testStore, cache redis.Cache) (*chat.Service, conversation.ConversationRepository) {
	t.Helper()
	log := logging.NewNopLogger()

	auditLog := pgrepos.NewPostgresAuditRepo(store.conn, log)
	conversations := pgrepos.NewPostgresConversationRepo(store.conn, log)

	engineOpts := []analytics.Option{
		analytics.WithLogger(log),
		analytics.WithClock(func() time.Time { return fixedNow }),
	}
	if cache != nil {
		engineOpts = append(engineOpts, analytics.WithCache(redis.NewReportCache(cache)))
	}
	engine := analytics.NewEngine(store.members, store.payments, store.visits, engineOpts...)
	ops := operations.NewService(store.members, store.payments, store.visits, auditLog,
		operations.WithLogger(log), operations.WithCacheClearer(engine))

	lex := lexicon.New()
	corpus := faq.NewProvider(faq.DefaultCorpus(), faq.WithLogger(log))

	chatOpts := []chat.Option{chat.WithLogger(log)}
	if cache != nil {
		chatOpts = append(chatOpts, chat.WithContextStore(cache))
	}
	svc := chat.NewService(corpus,
		intent.NewClassifier(intent.WithLexicon(lex)),
		router.New(router.WithLexicon(lex)),
		conversations, ops, engine, chatOpts...)
	return svc, conversations
}

func staffActor() operations.Actor {
	return operations.Actor{ID: "staff-1", Name: "Alex Reyes", Role: common.RoleStaff}
}

func TestChatPipelineAgainstPostgres(t *testing.T) {
	SkipIfNoIntegration(t)
	store := newTestStore(t)
	cache := redis.NewRedisCache(startRedis(t), logging.NewNopLogger())
	svc, conversations := newChatService(t, store, cache)
	ctx := context.Background()

	t.Run("faq fast path", func(t *testing.T) {
		ans, err := svc.Handle(ctx, chat.Request{
			Query:      "What are your opening hours?",
			SessionKey: "kiosk-1",
		})
		require.NoError(t, err)
		assert.Equal(t, chat.SourceFAQ, ans.Source)
		assert.NotEmpty(t, ans.Text)
		assert.NotEmpty(t, ans.ConversationID)
	})

	t.Run("turn persisted to transcript store", func(t *testing.T) {
		ans, err := svc.Handle(ctx, chat.Request{
			Query:      "How much is a walk-in day pass?",
			SessionKey: "kiosk-2",
		})
		require.NoError(t, err)

		conv, err := conversations.GetForSession(ctx, ans.ConversationID, "kiosk-2")
		require.NoError(t, err)
		require.Len(t, conv.Messages, 2)
		assert.Equal(t, "How much is a walk-in day pass?", conv.Messages[0].Content)
		assert.Equal(t, ans.Text, conv.Messages[1].Content)
	})

	t.Run("follow-up reuses the conversation", func(t *testing.T) {
		first, err := svc.Handle(ctx, chat.Request{
			Query:      "What are your opening hours?",
			SessionKey: "kiosk-3",
		})
		require.NoError(t, err)

		second, err := svc.Handle(ctx, chat.Request{
			Query:          "And the walk-in day pass price?",
			ConversationID: first.ConversationID,
			SessionKey:     "kiosk-3",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ConversationID, second.ConversationID)

		conv, err := conversations.GetForSession(ctx, first.ConversationID, "kiosk-3")
		require.NoError(t, err)
		assert.Len(t, conv.Messages, 4)
	})

	t.Run("analytical tool over seeded data", func(t *testing.T) {
		now := fixedNow
		m := store.newMember(t, "Dana", "Cruz")
		plan := store.newPlan(t, "Monthly", 1500, 30)
		ms := store.newMembership(t, m.ID, plan.ID, now.AddDate(0, 0, -5), now.AddDate(0, 0, 25))
		store.confirmedPayment(t, m.ID, ms.ID, 1500, now.Add(-time.Hour))

		ans, err := svc.Handle(ctx, chat.Request{
			Query: "Show me today's revenue summary",
			Actor: staffActor(),
		})
		require.NoError(t, err)
		assert.Equal(t, chat.SourceTool, ans.Source)
		assert.Equal(t, router.ToolRevenueReport, ans.Tool)
		assert.Contains(t, ans.Text, "1,500")
	})

	t.Run("member conversations stay member scoped", func(t *testing.T) {
		m := store.newMember(t, "Mia", "Santos")
		ans, err := svc.Handle(ctx, chat.Request{
			Query: "What are your opening hours?",
			Actor: operations.Actor{ID: m.ID, Name: m.FullName(), Role: common.RoleMember},
		})
		require.NoError(t, err)

		_, err = conversations.GetForSession(ctx, ans.ConversationID, "kiosk-1")
		assert.Error(t, err)

		conv, err := conversations.GetForMember(ctx, ans.ConversationID, m.ID)
		require.NoError(t, err)
		require.NotNil(t, conv.MemberID)
		assert.Equal(t, m.ID, *conv.MemberID)
	})
}
