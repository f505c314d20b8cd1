package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r *gin.Engine, target string, headers map[string]string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func okEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

// ----------------------------------------------------------------------------
// Request ID
// ----------------------------------------------------------------------------

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		seen = c.GetString(ContextKeyRequestID)
		c.Status(http.StatusOK)
	})

	rec := get(r, "/ping", nil)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDPassthrough(t *testing.T) {
	r := okEngine(RequestID())

	rec := get(r, "/ping", map[string]string{RequestIDHeader: "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

// ----------------------------------------------------------------------------
// Logging
// ----------------------------------------------------------------------------

func TestRequestLoggingPassesThrough(t *testing.T) {
	r := okEngine(RequestLogging(logging.NewNopLogger(), nil, DefaultLoggingConfig()))

	rec := get(r, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

// ----------------------------------------------------------------------------
// CORS
// ----------------------------------------------------------------------------

func corsEngine(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := corsEngine(cfg)

	rec := get(r, "/ping", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := corsEngine(cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSRejectsUnknownOriginPreflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := corsEngine(cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSSubdomainWildcard(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*.example.com"}
	r := corsEngine(cfg)

	rec := get(r, "/ping", map[string]string{"Origin": "https://staff.example.com"})
	assert.Equal(t, "https://staff.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSNoOriginHeader(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := corsEngine(cfg)

	rec := get(r, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// ----------------------------------------------------------------------------
// Rate limiting
// ----------------------------------------------------------------------------

func TestRateLimitBurst(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 2, 0)
	defer limiter.Stop()

	cfg := DefaultRateLimitConfig()
	cfg.KeyFunc = func(*gin.Context) string { return "client-1" }
	r := okEngine(RateLimit(limiter, cfg))

	for i := 0; i < 2; i++ {
		rec := get(r, "/ping", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := get(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitSkipsProbePaths(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 1, 0)
	defer limiter.Stop()

	cfg := DefaultRateLimitConfig()
	cfg.KeyFunc = func(*gin.Context) string { return "client-1" }
	r := okEngine(RateLimit(limiter, cfg))

	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, "/ping", nil).Code)

	// Probes never consume tokens.
	assert.Equal(t, http.StatusOK, get(r, "/healthz", nil).Code)
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 1, 0)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("a")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("a")
	require.False(t, allowed)

	allowed, _ = limiter.Allow("b")
	assert.True(t, allowed)
}

func TestTokenBucketRefills(t *testing.T) {
	limiter := NewTokenBucketLimiter(100, 1, 0)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("a")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("a")
	require.False(t, allowed)

	time.Sleep(20 * time.Millisecond)
	allowed, _ = limiter.Allow("a")
	assert.True(t, allowed)
}
