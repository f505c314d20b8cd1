package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	deleteFunc func(topics ...string) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
	closeFunc  func() error
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) DeleteTopics(topics ...string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newMockLogger() logging.Logger {
	return logging.NewNopLogger()
}

func newTestTopicManager(mock ConnInterface) *TopicManager {
	return &TopicManager{
		conn:   mock,
		logger: newMockLogger(),
	}
}

func TestTopicConstants(t *testing.T) {
	assert.Equal(t, "chat.query.handled", TopicChatQueryHandled)
	assert.Equal(t, "payment.confirmed", TopicPaymentConfirmed)
	assert.Equal(t, "member.expiring", TopicMemberExpiring)
	assert.Equal(t, "audit.log", TopicAuditLog)
	assert.Equal(t, "notification.send", TopicNotification)
	assert.Equal(t, "dead_letter.default", TopicDeadLetterDefault)
}

func TestDefaultTopics(t *testing.T) {
	defaults := DefaultTopics()
	assert.Len(t, defaults, 8)
	for _, d := range defaults {
		assert.NotEmpty(t, d.Name)
		assert.Greater(t, d.NumPartitions, 0)
		assert.Greater(t, d.ReplicationFactor, 0)
	}
}

func TestNewEventEnvelope(t *testing.T) {
	payload := ChatQueryHandledPayload{
		ConversationID: "conv-1",
		Intent:         "analytical",
		Tool:           "revenue_report",
		Outcome:        "tool",
		ResponseTimeMS: 42,
		HandledAt:      time.Now().UTC(),
	}

	env, err := NewEventEnvelope("chat.query.handled", "apiserver", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "chat.query.handled", env.EventType)
	assert.Equal(t, "apiserver", env.Source)
	assert.Equal(t, "v1", env.SchemaVersion)
	assert.False(t, env.Timestamp.IsZero())

	var decoded ChatQueryHandledPayload
	require.NoError(t, env.DecodePayload(&decoded))
	assert.Equal(t, payload.ConversationID, decoded.ConversationID)
	assert.Equal(t, payload.Tool, decoded.Tool)
	assert.Equal(t, payload.ResponseTimeMS, decoded.ResponseTimeMS)
}

func TestEventEnvelope_ToMessage_RoundTrip(t *testing.T) {
	env, err := NewEventEnvelope("payment.confirmed", "apiserver", PaymentConfirmedPayload{
		PaymentID: "pay-1",
		Reference: "PAY-20240101-123456",
		Amount:    1500,
	})
	require.NoError(t, err)
	env.TraceID = "trace-7"

	msg, err := env.ToMessage(TopicPaymentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, TopicPaymentConfirmed, msg.Topic)
	assert.Equal(t, "payment.confirmed", msg.Headers["event_type"])
	assert.Equal(t, "trace-7", msg.Headers["trace_id"])

	decoded, err := MessageToEventEnvelope(&Message{Topic: msg.Topic, Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.Equal(t, env.EventType, decoded.EventType)
}

func TestMessageToEventEnvelope_Empty(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
}

func TestTopicManager_CreateTopic_Validation(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{})

	err := m.CreateTopic(context.Background(), TopicConfig{})
	assert.Error(t, err)

	err = m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 0, ReplicationFactor: 1})
	assert.Error(t, err)
}

func TestTopicManager_CreateTopic_Success(t *testing.T) {
	var created []kafka.TopicConfig
	m := newTestTopicManager(&mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			created = append(created, topics...)
			return nil
		},
	})

	err := m.CreateTopic(context.Background(), TopicConfig{
		Name:              TopicChatQueryHandled,
		NumPartitions:     6,
		ReplicationFactor: 3,
		RetentionMs:       1000,
	})
	assert.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Equal(t, TopicChatQueryHandled, created[0].Topic)
}

func TestTopicManager_CreateTopic_AlreadyExists(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			return assert.AnError
		},
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: topics[0]}}, nil
		},
	})

	err := m.CreateTopic(context.Background(), TopicConfig{
		Name:              TopicAuditLog,
		NumPartitions:     3,
		ReplicationFactor: 3,
	})
	assert.NoError(t, err)
}

func TestTopicManager_ListTopics_Dedupes(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{
				{Topic: "a"}, {Topic: "a"}, {Topic: "b"},
			}, nil
		},
	})

	topics, err := m.ListTopics(context.Background())
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, topics)
}

func TestTopicManager_EnsureDefaultTopics(t *testing.T) {
	var created []kafka.TopicConfig
	m := newTestTopicManager(&mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			created = append(created, topics...)
			return nil
		},
	})

	require.NoError(t, m.EnsureDefaultTopics(context.Background()))
	assert.Len(t, created, len(DefaultTopics()))
}
