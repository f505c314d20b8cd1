package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// SearcherConfig holds search parameters.
type SearcherConfig struct {
	Index            string
	DefaultPageSize  int
	MaxPageSize      int
	HighlightPreTag  string
	HighlightPostTag string
}

// MessageQuery is a staff search over indexed chat messages. Text matches
// the message body; the rest are exact filters. From/To bound created_at
// as a half-open interval.
type MessageQuery struct {
	Text     string
	MemberID string
	Role     string
	Intent   string
	Tool     string
	From     time.Time
	To       time.Time

	Page     int
	PageSize int

	// IntentFacets adds per-intent hit counts to the result.
	IntentFacets bool
}

// MessageHit is one search hit with optional text highlights.
type MessageHit struct {
	ID         string
	Score      float64
	Document   MessageDocument
	Highlights []string
}

// MessageSearchResult is a page of hits.
type MessageSearchResult struct {
	Total        int64
	Hits         []MessageHit
	IntentCounts map[string]int64
	TookMs       int64
}

// Searcher runs queries against the message index.
type Searcher struct {
	client *Client
	config SearcherConfig
	logger logging.Logger
}

func NewSearcher(client *Client, cfg SearcherConfig, logger logging.Logger) *Searcher {
	if cfg.Index == "" {
		cfg.Index = DefaultMessageIndex
	}
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize == 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.HighlightPreTag == "" {
		cfg.HighlightPreTag = "<em>"
	}
	if cfg.HighlightPostTag == "" {
		cfg.HighlightPostTag = "</em>"
	}

	return &Searcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Search runs the query and returns one page of hits, newest first when no
// text is given and by relevance otherwise.
func (s *Searcher) Search(ctx context.Context, q MessageQuery) (*MessageSearchResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size <= 0 {
		size = s.config.DefaultPageSize
	}
	if size > s.config.MaxPageSize {
		size = s.config.MaxPageSize
	}

	dsl := s.buildQueryDSL(q)
	dsl["from"] = (page - 1) * size
	dsl["size"] = size
	dsl["track_total_hits"] = true

	if q.Text == "" {
		dsl["sort"] = []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		}
	} else {
		dsl["sort"] = []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		}
		dsl["highlight"] = map[string]interface{}{
			"fields":    map[string]interface{}{"text": map[string]interface{}{}},
			"pre_tags":  []string{s.config.HighlightPreTag},
			"post_tags": []string{s.config.HighlightPostTag},
		}
	}

	if q.IntentFacets {
		dsl["aggs"] = map[string]interface{}{
			"intents": map[string]interface{}{
				"terms": map[string]interface{}{"field": "intent", "size": 20},
			},
		}
	}

	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal search query")
	}

	var searchResp struct {
		Took int64 `json:"took"`
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID        string              `json:"_id"`
				Score     float64             `json:"_score"`
				Source    MessageDocument     `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations struct {
			Intents struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int64  `json:"doc_count"`
				} `json:"buckets"`
			} `json:"intents"`
		} `json:"aggregations"`
	}

	start := time.Now()
	resp, err := s.client.exec(ctx, opensearchapi.SearchReq{
		Indices: []string{s.config.Index},
		Body:    bytes.NewReader(body),
	}, &searchResp)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "search request timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "search request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, s.handleErrorResponse(resp)
	}

	result := &MessageSearchResult{
		Total:  searchResp.Hits.Total.Value,
		TookMs: searchResp.Took,
	}
	for _, h := range searchResp.Hits.Hits {
		hit := MessageHit{
			ID:       h.ID,
			Score:    h.Score,
			Document: h.Source,
		}
		hit.Document.ID = h.ID
		hit.Highlights = h.Highlight["text"]
		result.Hits = append(result.Hits, hit)
	}
	if q.IntentFacets && len(searchResp.Aggregations.Intents.Buckets) > 0 {
		result.IntentCounts = make(map[string]int64, len(searchResp.Aggregations.Intents.Buckets))
		for _, b := range searchResp.Aggregations.Intents.Buckets {
			result.IntentCounts[b.Key] = b.DocCount
		}
	}

	s.logger.Debug("Search executed",
		logging.String("index", s.config.Index),
		logging.Int64("took_ms", time.Since(start).Milliseconds()),
		logging.Int64("hits", result.Total))

	return result, nil
}

// Count returns the number of messages matching the query, ignoring
// pagination.
func (s *Searcher) Count(ctx context.Context, q MessageQuery) (int64, error) {
	dsl := s.buildQueryDSL(q)
	dsl["size"] = 0
	dsl["track_total_hits"] = true

	body, err := json.Marshal(dsl)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal count query")
	}

	var countResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
	}
	resp, err := s.client.exec(ctx, opensearchapi.SearchReq{
		Indices: []string{s.config.Index},
		Body:    bytes.NewReader(body),
	}, &countResp)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "count request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, s.handleErrorResponse(resp)
	}
	return countResp.Hits.Total.Value, nil
}

func (s *Searcher) buildQueryDSL(q MessageQuery) map[string]interface{} {
	var filters []map[string]interface{}
	addTerm := func(field, value string) {
		if value != "" {
			filters = append(filters, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}
	addTerm("member_id", q.MemberID)
	addTerm("role", q.Role)
	addTerm("intent", q.Intent)
	addTerm("tool", q.Tool)

	if !q.From.IsZero() || !q.To.IsZero() {
		rangeMap := map[string]interface{}{}
		if !q.From.IsZero() {
			rangeMap["gte"] = q.From.Format(time.RFC3339)
		}
		if !q.To.IsZero() {
			rangeMap["lt"] = q.To.Format(time.RFC3339)
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"created_at": rangeMap},
		})
	}

	var must map[string]interface{}
	if q.Text != "" {
		must = map[string]interface{}{
			"match": map[string]interface{}{
				"text": map[string]interface{}{
					"query":    q.Text,
					"operator": "and",
				},
			},
		}
	} else {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	query := must
	if len(filters) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filters,
			},
		}
	}

	return map[string]interface{}{"query": query}
}

func (s *Searcher) handleErrorResponse(resp *opensearch.Response) error {
	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.Newf(errors.ErrCodeInternal,
			"opensearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Newf(errors.ErrCodeInternal, "opensearch error status: %d", resp.StatusCode)
}
