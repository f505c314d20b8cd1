package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

const sampleSearchResponse = `{
	"took": 12,
	"hits": {
		"total": {"value": 2},
		"hits": [
			{
				"_id": "msg-1",
				"_score": 3.2,
				"_source": {
					"conversation_id": "conv-1",
					"member_id": "mem-1",
					"role": "user",
					"intent": "membership_status",
					"text": "when does my membership expire",
					"created_at": "2026-03-10T09:30:00Z"
				},
				"highlight": {"text": ["when does my <em>membership</em> expire"]}
			},
			{
				"_id": "msg-2",
				"_score": 1.1,
				"_source": {
					"conversation_id": "conv-2",
					"role": "assistant",
					"tool": "membership_lookup",
					"text": "your membership expires on April 2",
					"created_at": "2026-03-09T14:00:00Z"
				}
			}
		]
	},
	"aggregations": {
		"intents": {
			"buckets": [
				{"key": "membership_status", "doc_count": 14},
				{"key": "opening_hours", "doc_count": 9}
			]
		}
	}
}`

func newTestSearcher(t *testing.T, capture *map[string]interface{}, response string) *Searcher {
	t.Helper()
	server := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			return
		}
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			var dsl map[string]interface{}
			if err := json.Unmarshal(body, &dsl); err == nil {
				*capture = dsl
			}
		}
		w.Write([]byte(response))
	})
	client := newTestClient(t, server.URL)
	return NewSearcher(client, SearcherConfig{}, logging.NewNopLogger())
}

func TestSearchMapsHitsAndFacets(t *testing.T) {
	var dsl map[string]interface{}
	searcher := newTestSearcher(t, &dsl, sampleSearchResponse)

	result, err := searcher.Search(context.Background(), MessageQuery{
		Text:         "membership",
		IntentFacets: true,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, int64(12), result.TookMs)
	require.Len(t, result.Hits, 2)

	first := result.Hits[0]
	assert.Equal(t, "msg-1", first.ID)
	assert.Equal(t, "msg-1", first.Document.ID)
	assert.Equal(t, "conv-1", first.Document.ConversationID)
	assert.Equal(t, "membership_status", first.Document.Intent)
	assert.Equal(t, []string{"when does my <em>membership</em> expire"}, first.Highlights)

	second := result.Hits[1]
	assert.Equal(t, "membership_lookup", second.Document.Tool)
	assert.Empty(t, second.Highlights)

	assert.Equal(t, int64(14), result.IntentCounts["membership_status"])
	assert.Equal(t, int64(9), result.IntentCounts["opening_hours"])
}

func TestSearchTextQueryDSL(t *testing.T) {
	var dsl map[string]interface{}
	searcher := newTestSearcher(t, &dsl, sampleSearchResponse)

	_, err := searcher.Search(context.Background(), MessageQuery{
		Text:     "freeze",
		MemberID: "mem-1",
		Intent:   "membership_freeze",
		From:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(10), dsl["from"])
	assert.Equal(t, float64(10), dsl["size"])
	assert.Contains(t, dsl, "highlight")

	boolQuery := dsl["query"].(map[string]interface{})["bool"].(map[string]interface{})
	match := boolQuery["must"].(map[string]interface{})["match"].(map[string]interface{})["text"].(map[string]interface{})
	assert.Equal(t, "freeze", match["query"])
	assert.Equal(t, "and", match["operator"])

	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 3)

	rangeFilter := filters[2].(map[string]interface{})["range"].(map[string]interface{})["created_at"].(map[string]interface{})
	assert.Equal(t, "2026-03-01T00:00:00Z", rangeFilter["gte"])
	assert.Equal(t, "2026-04-01T00:00:00Z", rangeFilter["lt"])
}

func TestSearchWithoutTextSortsByRecency(t *testing.T) {
	var dsl map[string]interface{}
	searcher := newTestSearcher(t, &dsl, sampleSearchResponse)

	_, err := searcher.Search(context.Background(), MessageQuery{MemberID: "mem-1"})
	require.NoError(t, err)

	assert.NotContains(t, dsl, "highlight")

	sort := dsl["sort"].([]interface{})
	require.Len(t, sort, 1)
	createdAt := sort[0].(map[string]interface{})["created_at"].(map[string]interface{})
	assert.Equal(t, "desc", createdAt["order"])

	boolQuery := dsl["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery["must"].(map[string]interface{}), "match_all")
}

func TestSearchClampsPageSize(t *testing.T) {
	var dsl map[string]interface{}
	searcher := newTestSearcher(t, &dsl, sampleSearchResponse)

	_, err := searcher.Search(context.Background(), MessageQuery{PageSize: 5000})
	require.NoError(t, err)
	assert.Equal(t, float64(100), dsl["size"])
}

func TestCount(t *testing.T) {
	var dsl map[string]interface{}
	searcher := newTestSearcher(t, &dsl, `{"hits":{"total":{"value":42}}}`)

	count, err := searcher.Count(context.Background(), MessageQuery{Intent: "opening_hours"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, float64(0), dsl["size"])
}

func TestSearchErrorStatus(t *testing.T) {
	server := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"parsing_exception","reason":"unknown field"}}`))
	})
	client := newTestClient(t, server.URL)
	searcher := NewSearcher(client, SearcherConfig{}, logging.NewNopLogger())

	_, err := searcher.Search(context.Background(), MessageQuery{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing_exception")
}
