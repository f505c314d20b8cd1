package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ConversationSearcher runs full-text queries over archived messages.
type ConversationSearcher interface {
	Search(ctx context.Context, q opensearch.MessageQuery) (*opensearch.MessageSearchResult, error)
}

// CorpusReloader swaps the FAQ corpus in from its backing file.
type CorpusReloader interface {
	Reload() error
	Path() string
}

// AdminHandler serves the insight and corpus management endpoints.
type AdminHandler struct {
	searcher ConversationSearcher
	topics   repositories.TopicGraph
	corpus   CorpusReloader
	logger   logging.Logger
	clock    func() time.Time
}

func NewAdminHandler(searcher ConversationSearcher, topics repositories.TopicGraph, corpus CorpusReloader, logger logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default().Named("http.admin")
	}
	return &AdminHandler{
		searcher: searcher,
		topics:   topics,
		corpus:   corpus,
		logger:   logger,
		clock:    time.Now,
	}
}

const (
	defaultTopicWindowDays = 30
	defaultTopicLimit      = 10
	maxTopicLimit          = 100
)

// MessageHit is one search result row.
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

// SearchResponse is a page of message hits.
type SearchResponse struct {
	Total        int64            `json:"total"`
	Hits         []MessageHit     `json:"hits"`
	IntentCounts map[string]int64 `json:"intent_counts,omitempty"`
	TookMS       int64            `json:"took_ms"`
}

// SearchConversations handles GET /api/v1/admin/conversations/search.
func (h *AdminHandler) SearchConversations(c *gin.Context) {
	if h.searcher == nil {
		respondError(c, errors.New(errors.ErrCodeServiceUnavailable, "message search is not configured"))
		return
	}

	q := opensearch.MessageQuery{
		Text:         c.Query("q"),
		MemberID:     c.Query("member_id"),
		Role:         c.Query("role"),
		Intent:       c.Query("intent"),
		Tool:         c.Query("tool"),
		IntentFacets: c.Query("facets") == "true",
	}

	var err error
	if q.From, err = parseTimeParam(c.Query("from")); err != nil {
		respondBadRequest(c, "invalid 'from' timestamp")
		return
	}
	if q.To, err = parseTimeParam(c.Query("to")); err != nil {
		respondBadRequest(c, "invalid 'to' timestamp")
		return
	}
	q.Page = intParam(c, "page", 0)
	q.PageSize = intParam(c, "page_size", 0)

	result, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("conversation search failed", logging.Err(err))
		respondError(c, err)
		return
	}

	hits := make([]MessageHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, MessageHit{
			ID:             hit.ID,
			Score:          hit.Score,
			ConversationID: hit.Document.ConversationID,
			MemberID:       hit.Document.MemberID,
			Role:           hit.Document.Role,
			Intent:         hit.Document.Intent,
			Tool:           hit.Document.Tool,
			Text:           hit.Document.Text,
			Highlights:     hit.Highlights,
			CreatedAt:      hit.Document.CreatedAt,
		})
	}

	respondOK(c, SearchResponse{
		Total:        result.Total,
		Hits:         hits,
		IntentCounts: result.IntentCounts,
		TookMS:       result.TookMs,
	})
}

// TopicInsight is one ranked topic.
type TopicInsight struct {
	Topic  string `json:"topic"`
	Kind   string `json:"kind"`
	Asks   int64  `json:"asks"`
	Askers int64  `json:"askers"`
}

// TopicsResponse ranks what members have been asking about.
type TopicsResponse struct {
	From   time.Time      `json:"from"`
	To     time.Time      `json:"to"`
	Topics []TopicInsight `json:"topics"`
}

// TopTopics handles GET /api/v1/admin/insights/topics.
func (h *AdminHandler) TopTopics(c *gin.Context) {
	if h.topics == nil {
		respondError(c, errors.New(errors.ErrCodeServiceUnavailable, "topic insights are not configured"))
		return
	}

	days := intParam(c, "days", defaultTopicWindowDays)
	if days <= 0 {
		days = defaultTopicWindowDays
	}
	limit := intParam(c, "limit", defaultTopicLimit)
	if limit <= 0 {
		limit = defaultTopicLimit
	}
	if limit > maxTopicLimit {
		limit = maxTopicLimit
	}

	to := h.clock()
	from := to.AddDate(0, 0, -days)

	counts, err := h.topics.TopTopics(c.Request.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("topic insight query failed", logging.Err(err))
		respondError(c, err)
		return
	}

	topics := make([]TopicInsight, 0, len(counts))
	for _, tc := range counts {
		topics = append(topics, TopicInsight{
			Topic:  tc.Topic,
			Kind:   tc.Kind,
			Asks:   tc.Asks,
			Askers: tc.Askers,
		})
	}

	respondOK(c, TopicsResponse{From: from, To: to, Topics: topics})
}

// ReloadCorpus handles POST /api/v1/admin/corpus/reload. The swap is atomic;
// a corpus that fails validation leaves the serving one untouched.
func (h *AdminHandler) ReloadCorpus(c *gin.Context) {
	if h.corpus == nil {
		respondError(c, errors.New(errors.ErrCodeServiceUnavailable, "corpus reload is not configured"))
		return
	}

	if err := h.corpus.Reload(); err != nil {
		h.logger.Error("corpus reload failed",
			logging.String("path", h.corpus.Path()),
			logging.Err(err),
		)
		respondError(c, err)
		return
	}

	h.logger.Info("corpus reloaded", logging.String("path", h.corpus.Path()))
	respondOK(c, gin.H{"status": "reloaded", "path": h.corpus.Path()})
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func intParam(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
