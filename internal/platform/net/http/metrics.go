package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MountMetrics exposes g in the Prometheus text format at /metrics when enabled
func MountMetrics(r Router, g prometheus.Gatherer, enabled bool) {
	if !enabled || g == nil {
		return
	}
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
