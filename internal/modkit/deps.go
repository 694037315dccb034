// Package modkit provides module wiring and core deps
package modkit

import (
	"opsroute/internal/modkit/repokit"
	"opsroute/internal/platform/config"
	"opsroute/internal/platform/logger"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/platform/store"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is disabled; modules must nil check
type Deps struct {
	Log      logger.Logger
	Cfg      config.Conf
	PG       repokit.TxRunner
	CH       store.Clickhouse
	Breakers *resilience.Registry
	Metrics  prometheus.Registerer
}

// Registerer returns Metrics or a throwaway registry so modules can always register collectors
func (d Deps) Registerer() prometheus.Registerer {
	if d.Metrics != nil {
		return d.Metrics
	}
	return prometheus.NewRegistry()
}
