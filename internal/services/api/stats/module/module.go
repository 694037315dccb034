// Package module wires decision stats into the API using modkit
package module

import (
	"net/http"

	modkit "opsroute/internal/modkit"
	"opsroute/internal/modkit/httpkit"
	statshttp "opsroute/internal/services/api/stats/http"
	statsrepo "opsroute/internal/services/api/stats/repo"
	statssvc "opsroute/internal/services/api/stats/service"
	routerepo "opsroute/internal/services/route/repo"
)

// Module implements the stats module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)

	svc statssvc.Service
}

// New constructs the stats module; without clickhouse every endpoint answers 503
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("stats"), modkit.WithPrefix("/stats")}, opts...)...)

	var repo statsrepo.Repo
	if deps.CH != nil {
		repo = statsrepo.NewCH(deps.CH, routerepo.AuditTable(deps.Cfg))
	}
	svc := statssvc.New(repo, deps.Breakers)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = adaptStatsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		statshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name returns the module name
func (m *Module) Name() string { return m.name }
