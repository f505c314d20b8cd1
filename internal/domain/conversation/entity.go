// Package conversation implements the Conversation bounded context: chat
// transcripts for both authenticated members and anonymous kiosk sessions.
package conversation

import (
	"strings"
	"time"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// MessageRole identifies who produced a transcript message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

func (r MessageRole) String() string { return string(r) }

// IsValid reports whether r is one of the defined roles.
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// titleRuneLimit caps conversation titles derived from the first user
// message.
const titleRuneLimit = 50

// Message is one transcript entry. ResponseTimeMS is set on assistant
// messages only.
type Message struct {
	ID             common.ID   `json:"id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	ResponseTimeMS *int64      `json:"response_time_ms,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Conversation is a chat transcript. It belongs to a member or, for
// anonymous kiosk chats, to a browser session key; never both.
type Conversation struct {
	ID         common.ID  `json:"id"`
	MemberID   *common.ID `json:"member_id,omitempty"`
	SessionKey string     `json:"session_key,omitempty"`

	// Title is derived from the first user message.
	Title string `json:"title,omitempty"`

	// Model records which generation model served this conversation.
	Model string `json:"model,omitempty"`

	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty conversation. Exactly one owner must be provided: a
// member ID for authenticated chats or a session key for anonymous ones.
func New(memberID *common.ID, sessionKey, model string) (*Conversation, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if memberID != nil && *memberID == "" {
		memberID = nil
	}
	if memberID == nil && sessionKey == "" {
		return nil, errors.InvalidParam("conversation needs a member id or a session key")
	}
	// Authenticated chats never carry a session key.
	if memberID != nil {
		sessionKey = ""
	}

	now := time.Now().UTC()
	return &Conversation{
		ID:         common.NewID(),
		MemberID:   memberID,
		SessionKey: sessionKey,
		Model:      model,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Append adds a message to the transcript. The first user message also
// becomes the conversation title. The created message is returned so callers
// can persist it.
func (c *Conversation) Append(role MessageRole, content string, responseTimeMS *int64) (Message, error) {
	if !role.IsValid() {
		return Message{}, errors.InvalidParam("unknown message role " + string(role))
	}
	if content == "" {
		return Message{}, errors.InvalidParam("message content must not be empty")
	}

	msg := Message{
		ID:             common.NewID(),
		Role:           role,
		Content:        content,
		ResponseTimeMS: responseTimeMS,
		CreatedAt:      time.Now().UTC(),
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.CreatedAt

	if role == RoleUser && c.Title == "" {
		c.Title = TitleFrom(content)
	}
	return msg, nil
}

// History returns the transcript without system messages, which are runtime
// scaffolding and never replayed to the model. A positive limit keeps only
// the most recent limit messages.
func (c *Conversation) History(limit int) []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// TitleFrom derives a conversation title from message content: trimmed and
// capped at 50 runes.
func TitleFrom(content string) string {
	title := strings.TrimSpace(content)
	runes := []rune(title)
	if len(runes) > titleRuneLimit {
		title = string(runes[:titleRuneLimit])
	}
	return title
}
