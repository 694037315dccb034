// Package module wires decision samples into the API using modkit
package module

import (
	"net/http"

	modkit "opsroute/internal/modkit"
	"opsroute/internal/modkit/httpkit"
	sampleshttp "opsroute/internal/services/api/samples/http"
	samplesrepo "opsroute/internal/services/api/samples/repo"
	samplessvc "opsroute/internal/services/api/samples/service"
	routerepo "opsroute/internal/services/route/repo"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)

	svc samplessvc.Service
}

// New constructs a samples module; without clickhouse the endpoint answers 503
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("samples"), modkit.WithPrefix("/samples")}, opts...)...)

	var repo samplesrepo.Repo
	if deps.CH != nil {
		repo = samplesrepo.NewCH(deps.CH, routerepo.AuditTable(deps.Cfg))
	}
	svc := samplessvc.New(repo, deps.Breakers)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = adaptSamplesPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		sampleshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }
