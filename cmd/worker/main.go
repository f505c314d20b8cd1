// worker consumes the platform's event topics and keeps the derived views
// current: the conversation search index, the topic insights graph, and
// renewal-reminder notifications. It also runs the periodic sweeps that
// prune idle conversations and detect expiring memberships.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	neodb "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j"
	neorepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/opensearch"
)

const (
	// conversationRetention is how long idle conversations are kept before
	// the sweep drops them and their graph traces.
	conversationRetention = 180 * 24 * time.Hour
	sweepInterval         = 24 * time.Hour

	// reminderHorizonDays is how far ahead the expiry sweep looks when
	// publishing member.expiring events.
	reminderHorizonDays = 7

	// sweepLockTTL must outlive a full pass, or a second replica starts the
	// same pass while the first is still in it.
	sweepLockTTL = 10 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment-only when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	// Projection targets degrade independently: a worker with only the
	// graph reachable still projects asks while indexing is skipped.
	var indexer *opensearch.Indexer
	if client, err := opensearch.NewClient(opensearchConfig(cfg.OpenSearch), logger); err != nil {
		logger.Warn("opensearch unavailable, search indexing disabled", logging.Err(err))
	} else {
		indexer = opensearch.NewIndexer(client, opensearch.IndexerConfig{
			Index: opensearch.MessageIndexName(cfg.OpenSearch.IndexPrefix),
		}, logger)
		if err := indexer.EnsureMessageIndex(ctx); err != nil {
			logger.Warn("message index bootstrap failed", logging.Err(err))
		}
	}

	var topics neorepos.TopicGraph
	var neo *neodb.Driver
	if driver, err := neodb.NewDriver(neo4jConfig(cfg.Neo4j), logger); err != nil {
		logger.Warn("neo4j unavailable, insights projection disabled", logging.Err(err))
	} else {
		neo = driver
		topics = neorepos.NewTopicGraphRepo(driver, logger)
		defer neo.Close()
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		Acks:       "all",
		MaxRetries: cfg.Kafka.ProducerRetries,
	}, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	proj := newProjector(indexer, topics, producer, logger)

	consumer, err := kafka.NewConsumer(consumerConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	consumer.Subscribe(kafka.TopicChatQueryHandled, proj.HandleChatHandled)
	consumer.Subscribe(kafka.TopicMemberExpiring, proj.HandleMemberExpiring)

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("worker consuming",
		logging.Strings("brokers", cfg.Kafka.Brokers),
		logging.String("group", cfg.Kafka.GroupID))

	// The sweeps need the primary store; without it the worker still
	// projects events. The redis mutex only matters with multiple
	// replicas, so a missing redis degrades to unguarded sweeps.
	if pg, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger); err != nil {
		logger.Warn("postgres unavailable, sweeps disabled", logging.Err(err))
	} else {
		defer pg.Close()

		var locks redis.LockFactory
		if rc, err := redis.NewClient(redisConfig(cfg.Redis), logger); err != nil {
			logger.Warn("redis unavailable, sweeps run unguarded", logging.Err(err))
		} else {
			defer rc.Close()
			locks = redis.NewLockFactory(rc, logger)
		}

		sw := &sweeper{
			conversations: pgrepos.NewPostgresConversationRepo(pg, logger),
			members:       pgrepos.NewPostgresMemberRepo(pg, logger),
			topics:        topics,
			bus:           kafka.NewEventBus(producer, "worker", logger),
			locks:         locks,
			logger:        logger.Named("sweeper"),
		}
		go sw.run(ctx)
	}

	<-ctx.Done()
	return nil
}

func consumerConfig(cfg *config.Config) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topics:          []string{kafka.TopicChatQueryHandled, kafka.TopicMemberExpiring},
		AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoffMS,
			DeadLetterTopic: kafka.TopicDeadLetterDefault,
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
