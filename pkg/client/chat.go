package client

import (
	"context"
	"net/url"
)

// ChatRequest is one query to POST /api/v1/chat.
type ChatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
	SessionKey     string `json:"session_key,omitempty"`
}

// ChatAnswer is the server's answer.
type ChatAnswer struct {
	Answer         string `json:"answer"`
	Intent         string `json:"intent"`
	Tool           string `json:"tool,omitempty"`
	Source         string `json:"source"`
	ConversationID string `json:"conversation_id"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}

// Chat sends one query and returns the answer. Pass the previous answer's
// ConversationID to continue a conversation.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatAnswer, error) {
	var ans ChatAnswer
	if err := c.post(ctx, "/api/v1/chat", req, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}

// Suggestions returns the quick-reply prompts for the caller's role.
func (c *Client) Suggestions(ctx context.Context) ([]string, error) {
	var data struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.get(ctx, "/api/v1/chat/suggestions", &data); err != nil {
		return nil, err
	}
	return data.Suggestions, nil
}

func queryString(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}
