// Package metrics exposes Prometheus counters for routing and query
// execution. All recorder methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "albumrag"

type Metrics struct {
	registry *prometheus.Registry

	routingDecisions *prometheus.CounterVec
	classifierErrors prometheus.Counter
	retrievalCalls   *prometheus.CounterVec
	generationCalls  *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
}

// New builds a Metrics set on its own registry, with Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		routingDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "decisions_total",
			Help:      "Routing plans produced, by classification method and query type.",
		}, []string{"method", "query_type"}),
		classifierErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "llm_classifier_errors_total",
			Help:      "LLM classifications that failed to invoke or parse.",
		}),
		retrievalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "retrieval_calls_total",
			Help:      "Document store searches, by outcome.",
		}, []string{"outcome"}),
		generationCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "generation_calls_total",
			Help:      "Answer generation calls, by outcome.",
		}, []string{"outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end answer latency, by query type.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"query_type"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.routingDecisions,
		m.classifierErrors,
		m.retrievalCalls,
		m.generationCalls,
		m.queryDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RoutingDecision(method, queryType string) {
	if m == nil {
		return
	}
	m.routingDecisions.WithLabelValues(method, queryType).Inc()
}

func (m *Metrics) ClassifierError() {
	if m == nil {
		return
	}
	m.classifierErrors.Inc()
}

func (m *Metrics) Retrieval(err error) {
	if m == nil {
		return
	}
	m.retrievalCalls.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) Generation(err error) {
	if m == nil {
		return
	}
	m.generationCalls.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) QueryDuration(queryType string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(queryType).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
