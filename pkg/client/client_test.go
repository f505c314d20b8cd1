package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeBody(data interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    data,
	})
	return b
}

func errorBody(code, message string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
	return b
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	_, err = NewClient("ftp://example.com")
	require.Error(t, err)

	c, err := NewClient("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", c.baseURL)
}

func TestClientSendsAuthAndHeaders(t *testing.T) {
	var gotAuth, gotUA, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Write(envelopeBody(map[string]interface{}{"suggestions": []string{"hi"}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("secret-token"))
	require.NoError(t, err)

	_, err = c.Suggestions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Contains(t, gotUA, "memberpulse-go-sdk")
	assert.NotEmpty(t, gotReqID)
}

func TestClientOmitsAuthWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(envelopeBody(map[string]interface{}{"suggestions": []string{}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Suggestions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write(errorBody("COMMON_004", "insufficient role"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(0, 0, 0))
	require.NoError(t, err)

	_, err = c.TopTopics(context.Background(), 7, 5)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsForbidden())
	assert.Equal(t, "COMMON_004", apiErr.Code)
	assert.Equal(t, "insufficient role", apiErr.Message)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(envelopeBody(ChatAnswer{Answer: "ok", Source: "faq"}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	ans, err := c.Chat(context.Background(), ChatRequest{Query: "hours?"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ans.Answer)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write(errorBody("CHAT_002", "query must not be empty"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(3, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientHonorsRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write(errorBody("COMMON_007", "rate limit exceeded"))
			return
		}
		w.Write(envelopeBody(map[string]interface{}{"suggestions": []string{"hi"}}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(2, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	got, err := c.Suggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hi"}, got)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(envelopeBody(map[string]interface{}{}))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(0, 0, 0))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Chat(ctx, ChatRequest{Query: "hours?"})
	require.Error(t, err)
}

func TestAPIErrorString(t *testing.T) {
	err := &APIError{StatusCode: 404, Code: "MEM_001", Message: "member not found", RequestID: "r-1"}
	assert.Contains(t, err.Error(), "MEM_001")
	assert.Contains(t, err.Error(), "404")
	assert.True(t, err.IsNotFound())
	assert.False(t, err.IsServerError())
}
