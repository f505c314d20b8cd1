package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// SearchParams filter the archived-message search. Zero values are
// omitted from the request.
type SearchParams struct {
	Text     string
	MemberID string
	Role     string
	Intent   string
	Tool     string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
	Facets   bool
}

// MessageHit is one archived message matching a search.
type MessageHit struct {
	ID             string    `json:"id"`
	Score          float64   `json:"score"`
	ConversationID string    `json:"conversation_id"`
	MemberID       string    `json:"member_id,omitempty"`
	Role           string    `json:"role"`
	Intent         string    `json:"intent,omitempty"`
	Tool           string    `json:"tool,omitempty"`
	Text           string    `json:"text"`
	Highlights     []string  `json:"highlights,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SearchResult is a page of message hits.
type SearchResult struct {
	Total        int64            `json:"total"`
	Hits         []MessageHit     `json:"hits"`
	IntentCounts map[string]int64 `json:"intent_counts,omitempty"`
	TookMS       int64            `json:"took_ms"`
}

// SearchConversations queries the admin message archive. Requires an
// admin API key.
func (c *Client) SearchConversations(ctx context.Context, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	setIfPresent(q, "q", params.Text)
	setIfPresent(q, "member_id", params.MemberID)
	setIfPresent(q, "role", params.Role)
	setIfPresent(q, "intent", params.Intent)
	setIfPresent(q, "tool", params.Tool)
	if !params.From.IsZero() {
		q.Set("from", params.From.Format(time.RFC3339))
	}
	if !params.To.IsZero() {
		q.Set("to", params.To.Format(time.RFC3339))
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.Facets {
		q.Set("facets", "true")
	}

	var result SearchResult
	if err := c.get(ctx, "/api/v1/admin/conversations/search"+queryString(q), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TopicInsight is one ranked conversation topic.
type TopicInsight struct {
	Topic  string `json:"topic"`
	Kind   string `json:"kind"`
	Asks   int64  `json:"asks"`
	Askers int64  `json:"askers"`
}

// TopicsResult ranks what members have been asking about.
type TopicsResult struct {
	From   time.Time      `json:"from"`
	To     time.Time      `json:"to"`
	Topics []TopicInsight `json:"topics"`
}

// TopTopics returns the most asked topics over the trailing window.
// days and limit fall back to server defaults when zero.
func (c *Client) TopTopics(ctx context.Context, days, limit int) (*TopicsResult, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var result TopicsResult
	if err := c.get(ctx, "/api/v1/admin/insights/topics"+queryString(q), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReloadCorpus asks the server to reload its FAQ corpus from disk.
func (c *Client) ReloadCorpus(ctx context.Context) error {
	return c.post(ctx, "/api/v1/admin/corpus/reload", nil, nil)
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
