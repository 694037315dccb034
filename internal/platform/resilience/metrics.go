package resilience

import "github.com/prometheus/client_golang/prometheus"

// NewStateGauge registers opsroute_breaker_state{breaker} (0 closed, 1 open, 2 half-open)
// and returns the hook that keeps it current
func NewStateGauge(reg prometheus.Registerer) StateHook {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "opsroute",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Circuit breaker state per dependency: 0 closed, 1 open, 2 half-open.",
	}, []string{"breaker"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsroute",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Circuit breaker transitions by target state.",
	}, []string{"breaker", "to"})
	if reg != nil {
		reg.MustRegister(g, transitions)
	}
	for _, name := range []string{LLM, DB} {
		g.WithLabelValues(name).Set(float64(StateClosed))
	}
	return func(name string, _, to State) {
		g.WithLabelValues(name).Set(float64(to))
		transitions.WithLabelValues(name, to.String()).Inc()
	}
}
