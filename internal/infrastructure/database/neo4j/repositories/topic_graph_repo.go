// Package repositories projects chat activity into the topic graph and
// answers the admin insights queries.
package repositories

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	driver "github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// Asker kinds. Anonymous kiosk sessions are tracked by session key.
const (
	AskerMember  = "member"
	AskerSession = "session"
)

// Topic kinds: an FAQ key or a routed tool name.
const (
	TopicFAQ  = "faq"
	TopicTool = "tool"
)

// Ask is one projected chat query.
type Ask struct {
	AskerID   string
	AskerKind string
	AskerName string
	Topic     string
	TopicKind string
	At        time.Time
}

// TopicCount is one row of the "most asked topics" answer.
type TopicCount struct {
	Topic  string
	Kind   string
	Asks   int64
	Askers int64
}

// TopicGraph records asks and serves insight queries.
type TopicGraph interface {
	RecordAsk(ctx context.Context, ask Ask) error
	RecordAsks(ctx context.Context, asks []Ask) error
	TopTopics(ctx context.Context, from, to time.Time, limit int) ([]TopicCount, error)
	TopicsForMember(ctx context.Context, memberID string, limit int) ([]TopicCount, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type topicGraphRepo struct {
	exec driver.Executor
	log  logging.Logger
}

func NewTopicGraphRepo(exec driver.Executor, log logging.Logger) TopicGraph {
	return &topicGraphRepo{
		exec: exec,
		log:  log,
	}
}

// RecordAsk merges the member and topic nodes and adds one ASKED
// relationship per query, timestamped so insights can be bounded by
// period.
func (r *topicGraphRepo) RecordAsk(ctx context.Context, ask Ask) error {
	return r.RecordAsks(ctx, []Ask{ask})
}

func (r *topicGraphRepo) RecordAsks(ctx context.Context, asks []Ask) error {
	if len(asks) == 0 {
		return nil
	}

	query := `
		UNWIND $batch AS row
		MERGE (m:Member {id: row.asker_id})
		ON CREATE SET m.kind = row.asker_kind, m.name = row.asker_name, m.created_at = datetime()
		ON MATCH SET m.name = coalesce(row.asker_name, m.name)
		MERGE (t:Topic {name: row.topic})
		ON CREATE SET t.kind = row.topic_kind, t.created_at = datetime()
		CREATE (m)-[:ASKED {at: row.at}]->(t)
	`

	batch := make([]map[string]any, 0, len(asks))
	for _, ask := range asks {
		if ask.AskerID == "" || ask.Topic == "" {
			return errors.New(errors.ErrCodeValidation, "ask requires asker id and topic")
		}
		kind := ask.AskerKind
		if kind == "" {
			kind = AskerMember
		}
		var name any
		if ask.AskerName != "" {
			name = ask.AskerName
		}
		batch = append(batch, map[string]any{
			"asker_id":   ask.AskerID,
			"asker_kind": kind,
			"asker_name": name,
			"topic":      ask.Topic,
			"topic_kind": ask.TopicKind,
			"at":         ask.At.UTC(),
		})
	}

	_, err := r.exec.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{"batch": batch})
		return nil, err
	})
	if err != nil {
		return err
	}

	r.log.Debug("Asks projected into topic graph", logging.Int("count", len(asks)))
	return nil
}

// TopTopics returns the most asked topics in [from, to), with distinct
// asker counts.
func (r *topicGraphRepo) TopTopics(ctx context.Context, from, to time.Time, limit int) ([]TopicCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		MATCH (m:Member)-[a:ASKED]->(t:Topic)
		WHERE a.at >= $from AND a.at < $to
		RETURN t.name AS topic, t.kind AS kind, count(a) AS asks, count(DISTINCT m) AS askers
		ORDER BY asks DESC, topic ASC
		LIMIT $limit
	`
	params := map[string]any{
		"from":  from.UTC(),
		"to":    to.UTC(),
		"limit": limit,
	}

	result, err := r.exec.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, mapTopicCount)
	})
	if err != nil {
		return nil, err
	}
	return result.([]TopicCount), nil
}

// TopicsForMember returns what one member asks about most, all time.
func (r *topicGraphRepo) TopicsForMember(ctx context.Context, memberID string, limit int) ([]TopicCount, error) {
	if memberID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "member id is required")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		MATCH (m:Member {id: $member_id})-[a:ASKED]->(t:Topic)
		RETURN t.name AS topic, t.kind AS kind, count(a) AS asks, 1 AS askers
		ORDER BY asks DESC, topic ASC
		LIMIT $limit
	`
	params := map[string]any{
		"member_id": memberID,
		"limit":     limit,
	}

	result, err := r.exec.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, mapTopicCount)
	})
	if err != nil {
		return nil, err
	}
	return result.([]TopicCount), nil
}

// PruneBefore deletes asks older than the cutoff and any topics left
// without relationships. Returns the number of deleted asks.
func (r *topicGraphRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		MATCH (:Member)-[a:ASKED]->(:Topic)
		WHERE a.at < $cutoff
		DELETE a
		WITH count(a) AS deleted
		OPTIONAL MATCH (t:Topic)
		WHERE NOT (t)<-[:ASKED]-()
		DELETE t
		RETURN deleted
	`

	result, err := r.exec.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"cutoff": cutoff.UTC()})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			deleted, _ := res.Record().Get("deleted")
			if n, ok := deleted.(int64); ok {
				return n, nil
			}
		}
		return int64(0), res.Err()
	})
	if err != nil {
		return 0, err
	}

	deleted := result.(int64)
	if deleted > 0 {
		r.log.Info("Topic graph pruned", logging.Int64("asks_deleted", deleted))
	}
	return deleted, nil
}

func mapTopicCount(record *neo4j.Record) (TopicCount, error) {
	var tc TopicCount
	if v, ok := record.Get("topic"); ok {
		tc.Topic, _ = v.(string)
	}
	if v, ok := record.Get("kind"); ok {
		tc.Kind, _ = v.(string)
	}
	if v, ok := record.Get("asks"); ok {
		tc.Asks, _ = v.(int64)
	}
	if v, ok := record.Get("askers"); ok {
		tc.Askers, _ = v.(int64)
	}
	return tc, nil
}
