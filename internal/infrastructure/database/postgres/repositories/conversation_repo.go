package repositories

import (
	"context"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/internal/domain/conversation"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

const conversationColumns = `id, member_id, session_key, title, model, created_at, updated_at`

type postgresConversationRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewPostgresConversationRepo(conn *postgres.Connection, log logging.Logger) conversation.ConversationRepository {
	return &postgresConversationRepo{
		conn:     conn,
		log:      log,
		executor: conn.Pool(),
	}
}

func (r *postgresConversationRepo) Create(ctx context.Context, c *conversation.Conversation) error {
	query := `
		INSERT INTO conversations (id, member_id, session_key, title, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.executor.Exec(ctx, query,
		c.ID, idOrNil(c.MemberID), c.SessionKey, c.Title, c.Model, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create conversation")
	}
	for _, msg := range c.Messages {
		if err := r.insertMessage(ctx, c.ID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresConversationRepo) GetForMember(ctx context.Context, id common.ID, memberID common.ID) (*conversation.Conversation, error) {
	row := r.executor.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE id = $1 AND member_id = $2
	`, id, memberID)
	c, err := scanConversation(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeConversationNotFound,
			"conversation "+string(id)+" not found for member")
	}
	if err != nil {
		return nil, err
	}
	if c.Messages, err = r.loadMessages(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresConversationRepo) GetForSession(ctx context.Context, id common.ID, sessionKey string) (*conversation.Conversation, error) {
	row := r.executor.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE id = $1 AND member_id IS NULL AND session_key = $2
	`, id, sessionKey)
	c, err := scanConversation(row)
	if isNoRows(err) {
		return nil, errors.New(errors.ErrCodeConversationNotFound,
			"conversation "+string(id)+" not found for session")
	}
	if err != nil {
		return nil, err
	}
	if c.Messages, err = r.loadMessages(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresConversationRepo) AppendMessage(ctx context.Context, id common.ID, msg conversation.Message) error {
	// Bumping updated_at first doubles as the existence check.
	tag, err := r.executor.Exec(ctx,
		`UPDATE conversations SET updated_at = $2 WHERE id = $1`, id, msg.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to touch conversation")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	return r.insertMessage(ctx, id, msg)
}

func (r *postgresConversationRepo) SetTitle(ctx context.Context, id common.ID, title string) error {
	tag, err := r.executor.Exec(ctx,
		`UPDATE conversations SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to set conversation title")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	return nil
}

func (r *postgresConversationRepo) ListByMember(ctx context.Context, memberID common.ID, p common.Pagination) ([]*conversation.Conversation, int64, error) {
	return r.list(ctx, `member_id = $1`, memberID, p)
}

func (r *postgresConversationRepo) ListBySession(ctx context.Context, sessionKey string, p common.Pagination) ([]*conversation.Conversation, int64, error) {
	return r.list(ctx, `member_id IS NULL AND session_key = $1`, sessionKey, p)
}

func (r *postgresConversationRepo) list(ctx context.Context, cond string, owner any, p common.Pagination) ([]*conversation.Conversation, int64, error) {
	var total int64
	if err := r.executor.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE `+cond, owner).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count conversations")
	}

	limit, offset := pageWindow(p)
	rows, err := r.executor.Query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE `+cond+`
		ORDER BY updated_at DESC, id
		LIMIT $2 OFFSET $3
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list conversations")
	}
	defer rows.Close()

	var out []*conversation.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *postgresConversationRepo) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.executor.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete conversation")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeConversationNotFound, "conversation "+string(id)+" not found")
	}
	return nil
}

func (r *postgresConversationRepo) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.executor.Exec(ctx,
		`DELETE FROM conversations WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to prune conversations")
	}
	return tag.RowsAffected(), nil
}

func (r *postgresConversationRepo) insertMessage(ctx context.Context, conversationID common.ID, msg conversation.Message) error {
	_, err := r.executor.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, conversationID, msg.Role, msg.Content, msg.ResponseTimeMS, msg.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert message")
	}
	return nil
}

func (r *postgresConversationRepo) loadMessages(ctx context.Context, conversationID common.ID) ([]conversation.Message, error) {
	rows, err := r.executor.Query(ctx, `
		SELECT id, role, content, response_time_ms, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load messages")
	}
	defer rows.Close()

	var out []conversation.Message
	for rows.Next() {
		var msg conversation.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.ResponseTimeMS, &msg.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan message")
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func scanConversation(row rowScanner) (*conversation.Conversation, error) {
	c := &conversation.Conversation{}
	var memberID *string
	err := row.Scan(&c.ID, &memberID, &c.SessionKey, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan conversation")
	}
	if memberID != nil {
		id := common.ID(*memberID)
		c.MemberID = &id
	}
	return c, nil
}
