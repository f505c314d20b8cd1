package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every application series. Handlers and services take the
// struct and pick the series they need.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC ops plane
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec
	GRPCMessageBytes    HistogramVec

	// Auth layer
	AuthAttemptsTotal CounterVec

	// Chat pipeline
	ChatQueriesTotal    CounterVec
	ChatQueryDuration   HistogramVec
	FAQLookupsTotal     CounterVec
	IntentMatchesTotal  CounterVec
	RouteMatchesTotal   CounterVec
	SuggestionsServed   CounterVec
	ConversationsPruned CounterVec
	ContextWindowHits   CounterVec

	// Generation layer
	LLMRequestsTotal   CounterVec
	LLMRequestDuration HistogramVec
	LLMTokensUsed      CounterVec

	// Membership operations
	CheckinsTotal           CounterVec
	PaymentsRecordedTotal   CounterVec
	MembershipsExpiredTotal CounterVec
	MembersInGym            GaugeVec

	// Infrastructure
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	EventsPublishedTotal   CounterVec
	EventProcessDuration   HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultLLMDurationBuckets  = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultMessageSizeBuckets  = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576}
)

// NewAppMetrics registers every series and returns the populated struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "method")
	m.GRPCMessageBytes = collector.RegisterHistogram("grpc_message_bytes", "gRPC message sizes", DefaultMessageSizeBuckets, "method", "direction")

	// Auth
	m.AuthAttemptsTotal = collector.RegisterCounter("auth_attempts_total", "Authentication attempts", "result", "failure_reason")

	// Chat pipeline
	m.ChatQueriesTotal = collector.RegisterCounter("chat_queries_total", "Chat queries handled", "outcome", "intent")
	m.ChatQueryDuration = collector.RegisterHistogram("chat_query_duration_seconds", "Chat query end-to-end duration", DefaultHTTPDurationBuckets, "outcome")
	m.FAQLookupsTotal = collector.RegisterCounter("faq_lookups_total", "FAQ fast-path lookups", "result")
	m.IntentMatchesTotal = collector.RegisterCounter("intent_matches_total", "Intent classifications", "intent", "source")
	m.RouteMatchesTotal = collector.RegisterCounter("route_matches_total", "Query router dispatches", "tool")
	m.SuggestionsServed = collector.RegisterCounter("suggestions_served_total", "Follow-up suggestions served", "intent")
	m.ConversationsPruned = collector.RegisterCounter("conversations_pruned_total", "Conversations removed by the retention sweep")
	m.ContextWindowHits = collector.RegisterCounter("context_window_hits_total", "Conversation context window cache accesses", "result")

	// Generation
	m.LLMRequestsTotal = collector.RegisterCounter("llm_requests_total", "LLM requests total", "model", "operation", "status")
	m.LLMRequestDuration = collector.RegisterHistogram("llm_request_duration_seconds", "LLM request duration", DefaultLLMDurationBuckets, "model", "operation")
	m.LLMTokensUsed = collector.RegisterCounter("llm_tokens_total", "LLM tokens used", "model", "direction")

	// Membership operations
	m.CheckinsTotal = collector.RegisterCounter("checkins_total", "Kiosk check-in attempts", "result")
	m.PaymentsRecordedTotal = collector.RegisterCounter("payments_recorded_total", "Payments recorded", "method", "status")
	m.MembershipsExpiredTotal = collector.RegisterCounter("memberships_expired_total", "Memberships moved to expired by the sweep")
	m.MembersInGym = collector.RegisterGauge("members_in_gym", "Members currently checked in")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "topic", "status")
	m.EventProcessDuration = collector.RegisterHistogram("event_process_duration_seconds", "Event processing duration", DefaultHTTPDurationBuckets, "topic", "event_type")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// Helpers.

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGRPCRequest records one unary or stream call. Message sizes come
// from proto.Size and are skipped when negative.
func RecordGRPCRequest(metrics *AppMetrics, method, code string, duration time.Duration, reqBytes, respBytes int) {
	metrics.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	if reqBytes >= 0 {
		metrics.GRPCMessageBytes.WithLabelValues(method, "recv").Observe(float64(reqBytes))
	}
	if respBytes >= 0 {
		metrics.GRPCMessageBytes.WithLabelValues(method, "sent").Observe(float64(respBytes))
	}
}

func RecordAuthAttempt(metrics *AppMetrics, success bool, failureReason string) {
	result := "success"
	if !success {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(result, failureReason).Inc()
}

// RecordChatQuery records one handled query. outcome is faq, tool,
// generated or fallback.
func RecordChatQuery(metrics *AppMetrics, outcome, intent string, duration time.Duration) {
	metrics.ChatQueriesTotal.WithLabelValues(outcome, intent).Inc()
	metrics.ChatQueryDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordFAQLookup(metrics *AppMetrics, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.FAQLookupsTotal.WithLabelValues(result).Inc()
}

func RecordIntentMatch(metrics *AppMetrics, intent, source string) {
	metrics.IntentMatchesTotal.WithLabelValues(intent, source).Inc()
}

func RecordRouteMatch(metrics *AppMetrics, tool string) {
	metrics.RouteMatchesTotal.WithLabelValues(tool).Inc()
}

func RecordLLMCall(metrics *AppMetrics, model, operation string, success bool, duration time.Duration, inputTokens, outputTokens int) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.LLMRequestsTotal.WithLabelValues(model, operation, status).Inc()
	metrics.LLMRequestDuration.WithLabelValues(model, operation).Observe(duration.Seconds())
	metrics.LLMTokensUsed.WithLabelValues(model, "input").Add(float64(inputTokens))
	metrics.LLMTokensUsed.WithLabelValues(model, "output").Add(float64(outputTokens))
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
