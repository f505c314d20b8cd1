package main

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/conversation"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	neodb "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j"
	neorepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/opensearch"
)

// projector fans one consumed event out to the derived views.
type projector struct {
	indexer  *opensearch.Indexer
	topics   neorepos.TopicGraph
	producer *kafka.Producer
	logger   logging.Logger
}

func newProjector(indexer *opensearch.Indexer, topics neorepos.TopicGraph, producer *kafka.Producer, logger logging.Logger) *projector {
	return &projector{
		indexer:  indexer,
		topics:   topics,
		producer: producer,
		logger:   logger.Named("projector"),
	}
}

// HandleChatHandled projects one chat turn: both message texts go into the
// search index, and a matched FAQ or tool answer becomes an ASKED edge in
// the insights graph.
func (p *projector) HandleChatHandled(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	var payload kafka.ChatQueryHandledPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	if p.indexer != nil {
		if err := p.indexMessages(ctx, env.EventID, payload); err != nil {
			return err
		}
	}

	if p.topics != nil && payload.Topic != "" {
		ask := neorepos.Ask{
			AskerID:   askerID(payload),
			AskerKind: askerKind(payload),
			Topic:     payload.Topic,
			TopicKind: topicKind(payload.Outcome),
			At:        payload.HandledAt,
		}
		if ask.TopicKind != "" {
			if err := p.topics.RecordAsk(ctx, ask); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *projector) indexMessages(ctx context.Context, eventID string, payload kafka.ChatQueryHandledPayload) error {
	docs := []opensearch.MessageDocument{
		{
			ID:             eventID + ":user",
			ConversationID: payload.ConversationID,
			MemberID:       payload.MemberID,
			SessionKey:     payload.SessionKey,
			Role:           "user",
			Intent:         payload.Intent,
			Tool:           payload.Tool,
			Text:           payload.Query,
			CreatedAt:      payload.HandledAt,
		},
		{
			ID:             eventID + ":assistant",
			ConversationID: payload.ConversationID,
			MemberID:       payload.MemberID,
			SessionKey:     payload.SessionKey,
			Role:           "assistant",
			Intent:         payload.Intent,
			Tool:           payload.Tool,
			Text:           payload.Answer,
			CreatedAt:      payload.HandledAt,
		},
	}
	_, err := p.indexer.BulkIndexMessages(ctx, docs)
	return err
}

// HandleMemberExpiring turns an expiring-membership detection into a
// renewal-reminder notification on the notification topic.
func (p *projector) HandleMemberExpiring(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	var payload kafka.MemberExpiringPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}

	notification := kafka.NotificationPayload{
		RecipientID: payload.MemberID,
		Channel:     "email",
		Subject:     "Your membership is expiring soon",
		Body: fmt.Sprintf("Hi %s, your %s membership ends on %s (%d days left). Renew at the front desk or online to keep your access.",
			payload.FullName, payload.PlanName, payload.EndDate.Format("January 2, 2006"), payload.DaysLeft),
		Priority: "normal",
	}

	out, err := kafka.NewEventEnvelope("notification.requested", "worker", notification)
	if err != nil {
		return err
	}
	outMsg, err := out.ToMessage(kafka.TopicNotification)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, outMsg)
}

func askerID(p kafka.ChatQueryHandledPayload) string {
	if p.MemberID != "" {
		return p.MemberID
	}
	return p.SessionKey
}

func askerKind(p kafka.ChatQueryHandledPayload) string {
	if p.MemberID == "" {
		return "anonymous"
	}
	if p.Role != "" {
		return p.Role
	}
	return "member"
}

// topicKind maps a turn outcome to the graph's topic kind. Generated and
// clarification answers carry no topic and are not projected.
func topicKind(outcome string) string {
	switch outcome {
	case "faq":
		return neorepos.TopicFAQ
	case "tool":
		return neorepos.TopicTool
	default:
		return ""
	}
}

// sweeper runs the periodic maintenance passes: retention pruning and the
// expiring-membership detection that feeds renewal reminders. Each pass
// takes a distributed mutex so overlapping worker replicas run it once.
type sweeper struct {
	conversations conversation.ConversationRepository
	members       member.MemberRepository
	topics        neorepos.TopicGraph
	bus           *kafka.EventBus
	locks         redis.LockFactory
	logger        logging.Logger

	// clock overrides the time source. Test hook.
	clock func() time.Time
}

func (s *sweeper) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

// run executes both passes once at startup and then once per interval.
func (s *sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	pass := func() {
		s.withLock(ctx, "retention-sweep", s.sweepRetention)
		s.withLock(ctx, "expiry-sweep", s.sweepExpiring)
	}

	pass()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass()
		}
	}
}

// withLock runs fn under the named mutex. A held lock means another worker
// is already on it, so this replica skips the pass. Without redis the pass
// runs unguarded, which is correct for a single-replica deployment.
func (s *sweeper) withLock(ctx context.Context, name string, fn func(context.Context)) {
	if s.locks == nil {
		fn(ctx)
		return
	}

	mu := s.locks.NewMutex(name, redis.WithLockTTL(sweepLockTTL))
	held, err := mu.TryLock(ctx)
	if err != nil {
		s.logger.Warn("sweep lock error", logging.String("lock", name), logging.Err(err))
		return
	}
	if !held {
		s.logger.Info("sweep skipped, another worker holds the lock", logging.String("lock", name))
		return
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mu.Unlock(unlockCtx); err != nil {
			s.logger.Warn("sweep unlock failed", logging.String("lock", name), logging.Err(err))
		}
	}()

	fn(ctx)
}

// sweepRetention drops idle conversations and their graph traces.
func (s *sweeper) sweepRetention(ctx context.Context) {
	cutoff := s.now().Add(-conversationRetention)
	dropped, err := s.conversations.DeleteUpdatedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn("conversation sweep failed", logging.Err(err))
	} else if dropped > 0 {
		s.logger.Info("idle conversations dropped", logging.Int64("count", dropped))
	}
	if s.topics != nil {
		pruned, err := s.topics.PruneBefore(ctx, cutoff)
		if err != nil {
			s.logger.Warn("graph prune failed", logging.Err(err))
		} else if pruned > 0 {
			s.logger.Info("stale asks pruned", logging.Int64("count", pruned))
		}
	}
}

// sweepExpiring publishes one member.expiring event per active membership
// ending within the reminder horizon. HandleMemberExpiring turns each one
// into a renewal-reminder notification.
func (s *sweeper) sweepExpiring(ctx context.Context) {
	if s.members == nil || s.bus == nil {
		return
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiring, err := s.members.ListMemberships(ctx, member.MembershipFilter{
		Status:  member.MembershipActive,
		EndFrom: today,
		EndTo:   today.AddDate(0, 0, reminderHorizonDays+1),
	})
	if err != nil {
		s.logger.Warn("expiry scan failed", logging.Err(err))
		return
	}

	published := 0
	for _, ms := range expiring {
		m, err := s.members.GetByID(ctx, ms.MemberID)
		if err != nil || m == nil {
			s.logger.Warn("expiring member lookup failed",
				logging.String("member_id", string(ms.MemberID)), logging.Err(err))
			continue
		}
		if err := s.bus.PublishMemberExpiring(ctx, kafka.MemberExpiringPayload{
			MemberID: string(m.ID),
			FullName: m.FullName(),
			Email:    m.Email,
			PlanName: ms.PlanName,
			EndDate:  ms.EndDate,
			DaysLeft: ms.DaysRemaining(now),
		}); err != nil {
			s.logger.Warn("expiring event publish failed",
				logging.String("member_id", string(m.ID)), logging.Err(err))
			continue
		}
		published++
	}
	if published > 0 {
		s.logger.Info("expiring memberships detected", logging.Int("count", published))
	}
}

// Config adapters mirroring the API server's assembly.

func postgresConfig(cfg config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxConns:        int32(cfg.MaxConns),
		MinConns:        int32(cfg.MinConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func redisConfig(cfg config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Mode:         "standalone",
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func neo4jConfig(cfg config.Neo4jConfig) neodb.DriverConfig {
	return neodb.DriverConfig{
		URI:                   cfg.URI,
		Username:              cfg.User,
		Password:              cfg.Password,
		Database:              cfg.Database,
		MaxConnectionPoolSize: cfg.MaxConnectionPoolSize,
		ConnectTimeout:        cfg.ConnectionTimeout,
	}
}

func opensearchConfig(cfg config.OpenSearchConfig) opensearch.ClientConfig {
	return opensearch.ClientConfig{
		Addresses:          cfg.Addresses,
		Username:           cfg.User,
		Password:           cfg.Password,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
}
