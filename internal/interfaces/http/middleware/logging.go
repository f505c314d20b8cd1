package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// LoggingConfig tunes the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged. Probes and metrics scrapes stay out of
	// the log stream.
	SkipPaths []string

	// SlowThreshold promotes a request to Warn level.
	SlowThreshold time.Duration
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestLogging logs every request with its status and duration, and feeds
// the HTTP metric series. metrics may be nil.
func RequestLogging(logger logging.Logger, metrics *prometheus.AppMetrics, config LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}

		// Label metrics by route template so path parameters do not
		// explode cardinality.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(method, route).Inc()
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(method, route).Dec()
			prometheus.RecordHTTPRequest(metrics, method, route, status, duration)
		}

		fields := []logging.Field{
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("remote", c.ClientIP()),
			logging.String("request_id", c.GetString(ContextKeyRequestID)),
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		case config.SlowThreshold > 0 && duration > config.SlowThreshold:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request served", fields...)
		}
	}
}
