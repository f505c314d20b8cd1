package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/auth/statictoken"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MemberPulse-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// RouterConfig aggregates the handlers and middleware that make up the
// HTTP route tree. Nil handlers leave their routes unregistered, so a
// degraded deployment still serves what it can.
type RouterConfig struct {
	ChatHandler   *handlers.ChatHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler

	Auth *statictoken.Middleware

	CORS      *middleware.CORSConfig
	Logging   *middleware.LoggingConfig
	RateLimit *middleware.RateLimitConfig

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the gin engine with the full middleware chain and the
// chat, admin and operational route groups.
func NewRouter(server config.ServerConfig, cfg RouterConfig) *gin.Engine {
	switch server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default().Named("http")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	r.Use(middleware.RequestLogging(logger, cfg.Metrics, logCfg))

	if cfg.RateLimit != nil {
		limiter := middleware.NewTokenBucketLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
		r.Use(middleware.RateLimit(limiter, *cfg.RateLimit))
	}

	if server.MaxBodySize > 0 {
		r.Use(maxBodySize(server.MaxBodySize))
	}

	// Probes and metrics stay outside the authenticated tree.
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.Auth != nil {
		api.Use(cfg.Auth.Authenticate())
	}

	if cfg.ChatHandler != nil {
		api.POST("/chat", cfg.ChatHandler.Handle)
		api.GET("/chat/suggestions", cfg.ChatHandler.Suggestions)
	}

	if cfg.AdminHandler != nil {
		admin := api.Group("/admin")
		if cfg.Auth != nil {
			admin.Use(cfg.Auth.RequireRole(common.RoleAdmin))
		}
		admin.GET("/conversations/search", cfg.AdminHandler.SearchConversations)
		admin.GET("/insights/topics", cfg.AdminHandler.TopTopics)
		admin.POST("/corpus/reload", cfg.AdminHandler.ReloadCorpus)
	}

	return r
}

// maxBodySize caps request bodies so an oversized payload fails at read
// time instead of buffering unbounded.
func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
