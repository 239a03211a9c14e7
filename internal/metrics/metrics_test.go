package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RoutingDecision("llm", "compare")
	m.RoutingDecision("llm", "compare")
	m.RoutingDecision("keyword_fallback", "single")
	m.ClassifierError()
	m.Retrieval(nil)
	m.Retrieval(errors.New("down"))
	m.Generation(nil)
	m.QueryDuration("single", 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.routingDecisions.WithLabelValues("llm", "compare")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routingDecisions.WithLabelValues("keyword_fallback", "single")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifierErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retrievalCalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationCalls.WithLabelValues("ok")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RoutingDecision("llm", "single")
		m.ClassifierError()
		m.Retrieval(nil)
		m.Generation(nil)
		m.QueryDuration("single", time.Second)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RoutingDecision("llm", "single")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `albumrag_router_decisions_total{method="llm",query_type="single"} 1`)
}
