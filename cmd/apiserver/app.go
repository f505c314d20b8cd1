package main

import (
	"context"

	"github.com/turtacn/MemberPulse-Intelligence/internal/application/analytics"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/chat"
	"github.com/turtacn/MemberPulse-Intelligence/internal/application/operations"
	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/auth/statictoken"
	neodb "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j"
	neorepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/genai"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/faq"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/intent"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/lexicon"
	"github.com/turtacn/MemberPulse-Intelligence/internal/intelligence/router"
	grpcserver "github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/grpc"
	httpserver "github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// application holds every assembled component so shutdown can walk them in
// reverse order.
type application struct {
	logger logging.Logger

	pg          *postgres.Connection
	redisClient *redis.Client
	producer    *kafka.Producer
	neo         *neodb.Driver
	milvus      *milvus.Client
	corpus      *faq.Provider

	httpServer *httpserver.Server
	grpcServer *grpcserver.Server
}

// assemble builds the full chat engine and both servers. PostgreSQL and the
// FAQ corpus are load-bearing; every other backend degrades to a reduced
// feature set when unreachable, so a broken Redis or Kafka never keeps the
// FAQ fast-path down.
func assemble(ctx context.Context, cfg *config.Config, logger logging.Logger) (*application, error) {
	app := &application{logger: logger}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "memberpulse",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "metrics collector init failed")
	}
	metrics := prometheus.NewAppMetrics(collector)

	// PostgreSQL is mandatory: conversations, members and payments live
	// there and migrations run before anything serves traffic.
	pg, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database), logger)
	if err != nil {
		return nil, err
	}
	app.pg = pg
	if err := pg.RunMigrations(cfg.Database.MigrationPath); err != nil {
		pg.Close()
		return nil, err
	}

	members := pgrepos.NewPostgresMemberRepo(pg, logger)
	payments := pgrepos.NewPostgresPaymentRepo(pg, logger)
	visits := pgrepos.NewPostgresAttendanceRepo(pg, logger)
	auditLog := pgrepos.NewPostgresAuditRepo(pg, logger)
	conversations := pgrepos.NewPostgresConversationRepo(pg, logger)

	// Optional backends from here on.
	var cache redis.Cache
	if client, err := redis.NewClient(redisConfig(cfg.Redis), logger); err != nil {
		logger.Warn("redis unavailable, caching disabled", logging.Err(err))
	} else {
		app.redisClient = client
		cache = redis.NewRedisCache(client, logger)
	}

	var events *kafka.EventBus
	if producer, err := kafka.NewProducer(producerConfig(cfg.Kafka), logger); err != nil {
		logger.Warn("kafka unavailable, event publishing disabled", logging.Err(err))
	} else {
		app.producer = producer
		events = kafka.NewEventBus(producer, "apiserver", logger)
	}

	var topics neorepos.TopicGraph
	if driver, err := neodb.NewDriver(neo4jConfig(cfg.Neo4j), logger); err != nil {
		logger.Warn("neo4j unavailable, topic insights disabled", logging.Err(err))
	} else {
		app.neo = driver
		topics = neorepos.NewTopicGraphRepo(driver, logger)
	}

	var searcher handlers.ConversationSearcher
	var osClient *opensearch.Client
	if client, err := opensearch.NewClient(opensearchConfig(cfg.OpenSearch), logger); err != nil {
		logger.Warn("opensearch unavailable, conversation search disabled", logging.Err(err))
	} else {
		osClient = client
		searcher = opensearch.NewSearcher(client, opensearch.SearcherConfig{
			Index: opensearch.MessageIndexName(cfg.OpenSearch.IndexPrefix),
		}, logger)
	}

	var retriever chat.Retriever
	if client, err := milvus.NewClient(milvusConfig(cfg.Milvus), logger); err != nil {
		logger.Warn("milvus unavailable, retrieval augmentation disabled", logging.Err(err))
	} else {
		app.milvus = client
		retriever = milvus.NewVectorStore(client, milvus.SearcherConfig{
			DefaultTopK: cfg.Milvus.DefaultTopK,
		}, logger)
	}

	generator := genai.NewDisabledProvider()
	if cfg.GenAI.Enabled {
		generator = genai.NewOpenAIProvider(cfg.GenAI, logger)
	}

	// FAQ corpus: a broken file falls back to the embedded corpus so the
	// fast-path always answers.
	corpus, err := faq.NewProviderFromFile(cfg.Chatbot.CorpusPath, faq.WithLogger(logger))
	if err != nil {
		logger.Warn("corpus file unusable, using embedded corpus",
			logging.String("path", cfg.Chatbot.CorpusPath), logging.Err(err))
		corpus = faq.NewProvider(faq.DefaultCorpus(), faq.WithLogger(logger))
	} else if cfg.Chatbot.HotReload {
		if err := corpus.Watch(ctx); err != nil {
			logger.Warn("corpus hot reload unavailable", logging.Err(err))
		}
	}
	app.corpus = corpus

	// Application services.
	engineOpts := []analytics.Option{analytics.WithLogger(logger)}
	if cache != nil {
		engineOpts = append(engineOpts, analytics.WithCache(redis.NewReportCache(cache)))
	}
	if cfg.MinIO.Endpoint != "" {
		if store, err := minio.NewClient(minioClientConfig(cfg.MinIO), logger); err != nil {
			logger.Warn("object storage unavailable, report archiving disabled", logging.Err(err))
		} else {
			engineOpts = append(engineOpts, analytics.WithArchiver(minio.NewReportArchive(store, logger)))
		}
	}
	engine := analytics.NewEngine(members, payments, visits, engineOpts...)

	opsOpts := []operations.Option{
		operations.WithLogger(logger),
		operations.WithCacheClearer(engine),
	}
	if events != nil {
		opsOpts = append(opsOpts,
			operations.WithEvents(events),
			operations.WithAuditEvents(events))
	}
	ops := operations.NewService(members, payments, visits, auditLog, opsOpts...)

	lex := lexicon.New()
	classifier := intent.NewClassifier(intent.WithLexicon(lex))
	routes := router.New(router.WithLexicon(lex))

	chatOpts := []chat.Option{
		chat.WithLogger(logger),
		chat.WithMetrics(metrics),
		chat.WithGenerator(generator),
		chat.WithConfig(chat.Config{MaxQueryLength: cfg.Chatbot.MaxQueryLength}),
	}
	if cache != nil {
		chatOpts = append(chatOpts, chat.WithContextStore(cache))
	}
	if events != nil {
		chatOpts = append(chatOpts, chat.WithEvents(events))
	}
	if retriever != nil {
		chatOpts = append(chatOpts, chat.WithRetriever(retriever))
	}
	chatSvc := chat.NewService(corpus, classifier, routes, conversations, ops, engine, chatOpts...)

	// Interfaces.
	verifier := statictoken.NewVerifier(cfg.Auth, logger)
	authMW := statictoken.NewMiddleware(verifier, cfg.Auth.TokenHeader, logger)

	checkers := healthCheckers(pg, app.redisClient, app.neo, osClient)
	corsCfg := middlewareCORS()

	engineRouter := httpserver.NewRouter(cfg.Server, httpserver.RouterConfig{
		ChatHandler:      handlers.NewChatHandler(chatSvc, logger),
		AdminHandler:     handlers.NewAdminHandler(searcher, topics, corpus, logger),
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		Auth:             authMW,
		CORS:             corsCfg,
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
	})
	app.httpServer = httpserver.NewServer(cfg.Server, engineRouter, logger)

	grpcSrv, err := grpcserver.NewServer(cfg.GRPC,
		grpcserver.WithLogger(logger),
		grpcserver.WithMetrics(metrics),
	)
	if err != nil {
		app.shutdown(ctx)
		return nil, err
	}
	app.grpcServer = grpcSrv

	return app, nil
}

// shutdown stops the servers first, then closes the backends.
func (a *application) shutdown(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Warn("http server shutdown failed", logging.Err(err))
		}
	}
	if a.grpcServer != nil {
		if err := a.grpcServer.Stop(ctx); err != nil {
			a.logger.Warn("grpc server shutdown failed", logging.Err(err))
		}
	}
	if a.corpus != nil {
		_ = a.corpus.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.milvus != nil {
		_ = a.milvus.Close()
	}
	if a.neo != nil {
		_ = a.neo.Close()
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
}
