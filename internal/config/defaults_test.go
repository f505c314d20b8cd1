package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultGRPCPort, cfg.GRPC.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultMilvusAddr, cfg.Milvus.Addr)
	assert.Equal(t, DefaultMilvusEmbeddingDim, cfg.Milvus.EmbeddingDim)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultGenAIChatModel, cfg.GenAI.ChatModel)
	assert.Equal(t, DefaultCorpusPath, cfg.Chatbot.CorpusPath)
	assert.Equal(t, DefaultMaxQueryLength, cfg.Chatbot.MaxQueryLength)
	assert.Equal(t, DefaultCurrency, cfg.Analytics.Currency)
	assert.Equal(t, 2*time.Minute, cfg.Analytics.TodayTTL)
	assert.Equal(t, 10*time.Minute, cfg.Analytics.WeekTTL)
	assert.Equal(t, time.Hour, cfg.Analytics.MonthTTL)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultAuthTokenHeader, cfg.Auth.TokenHeader)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Chatbot.CorpusPath = "/etc/mpulse/faq.yaml"
	cfg.Analytics.TodayTTL = time.Minute
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/etc/mpulse/faq.yaml", cfg.Chatbot.CorpusPath)
	assert.Equal(t, time.Minute, cfg.Analytics.TodayTTL)
}

func TestApplyDefaults_NilConfigIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
