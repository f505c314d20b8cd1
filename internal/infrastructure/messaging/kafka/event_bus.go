package kafka

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/member"
	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/payment"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// publisher is the slice of Producer the bus needs; narrowed for testing.
type publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// EventBus maps domain events onto topics and envelopes. It satisfies the
// EventPublisher port of the application services.
//
// Publishing is best-effort: a broker failure is logged and swallowed so a
// confirmed payment is never rolled back because the event bus was down.
type EventBus struct {
	producer publisher
	source   string
	logger   logging.Logger
}

// NewEventBus creates a bus that stamps source as the envelope origin.
func NewEventBus(producer publisher, source string, logger logging.Logger) *EventBus {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventBus{producer: producer, source: source, logger: logger}
}

// Publish routes each event to its topic. Events with no topic mapping are
// skipped silently; not every domain event leaves the process.
func (b *EventBus) Publish(ctx context.Context, events ...common.DomainEvent) error {
	for _, evt := range events {
		topic, eventType, payload := b.convert(evt)
		if topic == "" {
			continue
		}
		env, err := NewEventEnvelope(eventType, b.source, payload)
		if err != nil {
			b.logger.Error("event envelope failed", logging.String("event_type", eventType), logging.Err(err))
			continue
		}
		msg, err := env.ToMessage(topic)
		if err != nil {
			b.logger.Error("event serialization failed", logging.String("event_type", eventType), logging.Err(err))
			continue
		}
		msg.Key = []byte(evt.AggregateID())
		if err := b.producer.Publish(ctx, msg); err != nil {
			b.logger.Error("event publish failed",
				logging.String("topic", topic),
				logging.String("event_type", eventType),
				logging.Err(err))
		}
	}
	return nil
}

func (b *EventBus) convert(evt common.DomainEvent) (topic, eventType string, payload interface{}) {
	switch e := evt.(type) {
	case *member.MemberRegisteredEvent:
		return TopicMemberRegistered, "member.registered", MemberRegisteredPayload{
			MemberID:     e.AggregateID(),
			FullName:     e.FullName,
			Email:        e.Email,
			RegisteredAt: e.OccurredAt(),
		}
	case *payment.PaymentRecordedEvent:
		return TopicPaymentRecorded, "payment.recorded", PaymentRecordedPayload{
			PaymentID:  e.AggregateID(),
			MemberID:   string(e.MemberID),
			Reference:  e.Reference,
			Amount:     e.Amount,
			Method:     string(e.Method),
			RecordedAt: e.OccurredAt(),
		}
	case *payment.PaymentConfirmedEvent:
		confirmedBy := ""
		if e.ConfirmedBy != nil {
			confirmedBy = string(*e.ConfirmedBy)
		}
		return TopicPaymentConfirmed, "payment.confirmed", PaymentConfirmedPayload{
			PaymentID:   e.AggregateID(),
			MemberID:    string(e.MemberID),
			Reference:   e.Reference,
			Amount:      e.Amount,
			ConfirmedBy: confirmedBy,
			ConfirmedAt: e.OccurredAt(),
		}
	default:
		return "", "", nil
	}
}

// PublishChatHandled emits the per-query telemetry event consumed by the
// search indexer and the insights projector.
func (b *EventBus) PublishChatHandled(ctx context.Context, p ChatQueryHandledPayload) error {
	if p.HandledAt.IsZero() {
		p.HandledAt = time.Now().UTC()
	}
	env, err := NewEventEnvelope("chat.query.handled", b.source, p)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicChatQueryHandled)
	if err != nil {
		return err
	}
	msg.Key = []byte(p.ConversationID)
	return b.producer.Publish(ctx, msg)
}

// PublishMemberExpiring emits one renewal-reminder trigger.
func (b *EventBus) PublishMemberExpiring(ctx context.Context, p MemberExpiringPayload) error {
	if p.DetectedAt.IsZero() {
		p.DetectedAt = time.Now().UTC()
	}
	env, err := NewEventEnvelope("member.expiring", b.source, p)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicMemberExpiring)
	if err != nil {
		return err
	}
	msg.Key = []byte(p.MemberID)
	return b.producer.Publish(ctx, msg)
}

// PublishAuditEntry mirrors an audit row onto the bus for external SIEM
// collection.
func (b *EventBus) PublishAuditEntry(ctx context.Context, p AuditLogPayload) error {
	env, err := NewEventEnvelope("audit.log", b.source, p)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicAuditLog)
	if err != nil {
		return err
	}
	msg.Key = []byte(p.ActorID)
	return b.producer.Publish(ctx, msg)
}
