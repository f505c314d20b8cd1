package prometheus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	collector := newTestCollector(t)
	return NewAppMetrics(collector), collector
}

func TestNewAppMetricsRegistersAllSeries(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.ChatQueriesTotal)
	assert.NotNil(t, m.FAQLookupsTotal)
	assert.NotNil(t, m.IntentMatchesTotal)
	assert.NotNil(t, m.RouteMatchesTotal)
	assert.NotNil(t, m.LLMRequestsTotal)
	assert.NotNil(t, m.CheckinsTotal)
	assert.NotNil(t, m.PaymentsRecordedTotal)
	assert.NotNil(t, m.MembersInGym)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.EventsPublishedTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/chat", 200, 42*time.Millisecond)
	RecordHTTPRequest(m, "POST", "/api/v1/chat", 200, 10*time.Millisecond)
	RecordHTTPRequest(m, "GET", "/api/v1/members", 404, time.Millisecond)

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/chat",status_code="200"} 2`)
	assert.Contains(t, out, `test_unit_http_requests_total{method="GET",path="/api/v1/members",status_code="404"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/chat"} 2`)
}

func TestRecordChatQuery(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordChatQuery(m, "faq", "hours", 3*time.Millisecond)
	RecordChatQuery(m, "tool", "membership_status", 20*time.Millisecond)
	RecordChatQuery(m, "tool", "payment_history", 25*time.Millisecond)

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_chat_queries_total{intent="hours",outcome="faq"} 1`)
	assert.Contains(t, out, `test_unit_chat_query_duration_seconds_count{outcome="tool"} 2`)
}

func TestRecordFAQLookup(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordFAQLookup(m, true)
	RecordFAQLookup(m, true)
	RecordFAQLookup(m, false)

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_faq_lookups_total{result="hit"} 2`)
	assert.Contains(t, out, `test_unit_faq_lookups_total{result="miss"} 1`)
}

func TestRecordLLMCall(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordLLMCall(m, "gpt-4o-mini", "chat", true, 800*time.Millisecond, 120, 45)
	RecordLLMCall(m, "gpt-4o-mini", "chat", false, 2*time.Second, 80, 0)

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_llm_requests_total{model="gpt-4o-mini",operation="chat",status="success"} 1`)
	assert.Contains(t, out, `test_unit_llm_requests_total{model="gpt-4o-mini",operation="chat",status="failure"} 1`)
	assert.Contains(t, out, `test_unit_llm_tokens_total{direction="input",model="gpt-4o-mini"} 200`)
	assert.Contains(t, out, `test_unit_llm_tokens_total{direction="output",model="gpt-4o-mini"} 45`)
}

func TestRecordDBQueryError(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "select", time.Millisecond, nil)
	RecordDBQuery(m, "postgres", "insert", time.Millisecond, fmt.Errorf("boom"))

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_db_query_duration_seconds_count{db="postgres",operation="select"} 1`)
	assert.Contains(t, out, `test_unit_errors_total{component="postgres",error_type="query_error",severity="error"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, collector := newTestAppMetrics(t)

	RecordCacheAccess(m, "faq", true)
	RecordCacheAccess(m, "faq", false)
	RecordCacheAccess(m, "reports", true)

	out := scrape(t, collector)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="faq"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="faq"} 1`)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="reports"} 1`)
}
