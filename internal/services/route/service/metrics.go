package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	decisions *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	llmCalls  *prometheus.CounterVec
	sqlBuilt  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsroute",
			Subsystem: "route",
			Name:      "decisions_total",
			Help:      "Routing decisions by task and source.",
		}, []string{"task", "source"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "opsroute",
			Subsystem: "route",
			Name:      "decision_seconds",
			Help:      "Time to decide, by source.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsroute",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Guarded model calls by operation and outcome code.",
		}, []string{"op", "code"}),
		sqlBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsroute",
			Subsystem: "route",
			Name:      "sql_total",
			Help:      "SQL statements attached to decisions, by origin.",
		}, []string{"origin"}),
	}
	if reg != nil {
		reg.MustRegister(m.decisions, m.latency, m.llmCalls, m.sqlBuilt)
	}
	return m
}
