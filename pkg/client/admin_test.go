package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchConversationsQueryParams(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write(envelopeBody(SearchResult{Total: 1, Hits: []MessageHit{{ID: "m-1", Text: "show revenue"}}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("admin-token"))
	require.NoError(t, err)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	result, err := c.SearchConversations(context.Background(), SearchParams{
		Text:     "revenue",
		MemberID: "mem-1",
		From:     from,
		Page:     2,
		PageSize: 5,
		Facets:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "revenue", got.Get("q"))
	assert.Equal(t, "mem-1", got.Get("member_id"))
	assert.Equal(t, from.Format(time.RFC3339), got.Get("from"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "5", got.Get("page_size"))
	assert.Equal(t, "true", got.Get("facets"))
	assert.Empty(t, got.Get("role"))

	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "show revenue", result.Hits[0].Text)
}

func TestTopTopicsOmitsZeroParams(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write(envelopeBody(TopicsResult{Topics: []TopicInsight{{Topic: "opening_hours", Asks: 3}}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.TopTopics(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Empty(t, got.Get("days"))
	assert.Empty(t, got.Get("limit"))
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "opening_hours", result.Topics[0].Topic)
}

func TestReloadCorpus(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write(envelopeBody(map[string]string{"status": "reloaded"}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("admin-token"))
	require.NoError(t, err)

	require.NoError(t, c.ReloadCorpus(context.Background()))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/admin/corpus/reload", gotPath)
}
