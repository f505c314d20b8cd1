package main

import (
	"context"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	neodb "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/middleware"
)

// Configuration mapping: the root config carries flat sub-structs; each
// infrastructure package takes its own config type.

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

func producerConfig(cfg config.KafkaConfig) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:    cfg.Brokers,
		Acks:       "all",
		MaxRetries: cfg.ProducerRetries,
		BatchSize:  cfg.BatchSize,
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

func milvusConfig(cfg config.MilvusConfig) milvus.ClientConfig {
	return milvus.ClientConfig{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	}
}

func minioClientConfig(cfg config.MinIOConfig) minio.ClientConfig {
	return minio.ClientConfig{
		Endpoint:      cfg.Endpoint,
		AccessKey:     cfg.AccessKey,
		SecretKey:     cfg.SecretKey,
		UseSSL:        cfg.UseSSL,
		Bucket:        cfg.Bucket,
		PresignExpiry: cfg.PresignExpiry,
	}
}

func middlewareCORS() *middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	return &cors
}

// Readiness adapters. Each backend that made it through assembly reports
// into /readyz; the ones that degraded at startup are simply absent.

type postgresHealth struct{ conn *postgres.Connection }

func (a postgresHealth) Name() string                    { return "postgres" }
func (a postgresHealth) Check(ctx context.Context) error { return a.conn.HealthCheck(ctx) }

type redisHealth struct{ client *redis.Client }

func (a redisHealth) Name() string                    { return "redis" }
func (a redisHealth) Check(ctx context.Context) error { return a.client.Ping(ctx) }

type neo4jHealth struct{ driver *neodb.Driver }

func (a neo4jHealth) Name() string                    { return "neo4j" }
func (a neo4jHealth) Check(ctx context.Context) error { return a.driver.HealthCheck(ctx) }

type opensearchHealth struct{ client *opensearch.Client }

func (a opensearchHealth) Name() string                    { return "opensearch" }
func (a opensearchHealth) Check(ctx context.Context) error { return a.client.Ping(ctx) }

func healthCheckers(pg *postgres.Connection, rc *redis.Client, neo *neodb.Driver, osc *opensearch.Client) []handlers.HealthChecker {
	checkers := []handlers.HealthChecker{postgresHealth{conn: pg}}
	if rc != nil {
		checkers = append(checkers, redisHealth{client: rc})
	}
	if neo != nil {
		checkers = append(checkers, neo4jHealth{driver: neo})
	}
	if osc != nil {
		checkers = append(checkers, opensearchHealth{client: osc})
	}
	return checkers
}
