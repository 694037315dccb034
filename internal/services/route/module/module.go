// Package module wires the route service into the API using modkit
package module

import (
	"net/http"

	"opsroute/internal/adapters/llm"
	modkit "opsroute/internal/modkit"
	"opsroute/internal/modkit/httpkit"
	"opsroute/internal/platform/logger"
	routehttp "opsroute/internal/services/route/http"
	routerepo "opsroute/internal/services/route/repo"
	routesvc "opsroute/internal/services/route/service"
)

// Module implements the route module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)

	svc *routesvc.Svc
}

// New constructs the route module; options come from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith constructs the route module with explicit options
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("route"), modkit.WithPrefix("/route")}, opts...)...)
	log := logger.Named(b.Name)
	registerDocs()

	svcOpts := []routesvc.Option{
		routesvc.WithBreakers(deps.Breakers),
		routesvc.WithMetrics(deps.Registerer()),
	}

	pool := llm.NewPool(o.LLM)
	svcOpts = append(svcOpts, routesvc.WithModels(pool))
	if !pool.Configured() {
		log.Warn().Msg("no default llm key; router misses need settings.llm_api_key")
	}

	if deps.PG != nil {
		svcOpts = append(svcOpts, routesvc.WithExecutor(routerepo.NewPGExecutor(deps.PG, o.MaxRows, o.StmtTimeout)))
	} else if o.ExecuteSQL {
		log.Warn().Msg("CORE_ROUTE_EXECUTE_SQL set without postgres; /route/query stays disabled")
	}

	if deps.CH != nil && o.Audit {
		svcOpts = append(svcOpts, routesvc.WithAudit(routerepo.NewCHAudit(deps.CH, o.AuditTable)))
	}

	svc := routesvc.New(nil, routesvc.Config{ExecuteSQL: o.ExecuteSQL && deps.PG != nil, Budgets: o.Budgets}, svcOpts...)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Router: svc},
		svc:    svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		routehttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}

	log.Info().
		Bool("llm_default_key", pool.Configured()).
		Str("model", pool.Model()).
		Bool("execute_sql", o.ExecuteSQL && deps.PG != nil).
		Bool("audit", deps.CH != nil && o.Audit).
		Msg("route module ready")
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Service exposes the orchestrator to in-process callers such as the cli
func (m *Module) Service() *routesvc.Svc { return m.svc }
