package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace: "test",
		Subsystem: "unit",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	require.Error(t, err)
}

func TestCounterIncrement(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("queries_total", "queries", "outcome")
	counter.WithLabelValues("faq").Inc()
	counter.WithLabelValues("faq").Add(2)
	counter.WithLabelValues("generated").Inc()

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_queries_total{outcome="faq"} 3`)
	assert.Contains(t, out, `test_unit_queries_total{outcome="generated"} 1`)
}

func TestGaugeSetAndDec(t *testing.T) {
	c := newTestCollector(t)

	gauge := c.RegisterGauge("in_gym", "members inside")
	gauge.WithLabelValues().Set(5)
	gauge.WithLabelValues().Dec()

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_in_gym 4")
}

func TestHistogramObserve(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("latency_seconds", "latency", []float64{0.1, 1, 10}, "op")
	hist.WithLabelValues("classify").Observe(0.05)
	hist.WithLabelValues("classify").Observe(2)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="classify"} 2`)
	assert.Contains(t, out, `test_unit_latency_seconds_bucket{op="classify",le="0.1"} 1`)
}

func TestDuplicateRegistrationReturnsExisting(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "dup")
	second := c.RegisterCounter("dup_total", "dup")

	first.WithLabelValues().Inc()
	second.WithLabelValues().Inc()

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_dup_total 2")
}

func TestMismatchedReRegistrationDegradesToNoop(t *testing.T) {
	c := newTestCollector(t)

	c.RegisterCounter("kind_total", "first registration wins")
	gauge := c.RegisterGauge("kind_total", "same name, different type")

	// The no-op gauge must not panic and must not leak a series.
	gauge.WithLabelValues().Set(42)
	out := scrape(t, c)
	assert.NotContains(t, out, "42")
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter := c.RegisterCounter("race_total", "concurrent registration")
			counter.WithLabelValues().Inc()
		}()
	}
	wg.Wait()

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_race_total 10")
}

func TestTimerObservesElapsed(t *testing.T) {
	c := newTestCollector(t)

	hist := c.RegisterHistogram("timed_seconds", "timer", []float64{0.001, 1})
	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	out := scrape(t, c)
	assert.Contains(t, out, "test_unit_timed_seconds_count 1")
}

func TestTimerNilHistogram(t *testing.T) {
	timer := NewTimer(nil)
	assert.NotPanics(t, timer.ObserveDuration)
}
