// Package api provides the HTTP API for the application
package api

import (
	"time"

	"opsroute/internal/platform/config"
	"opsroute/internal/platform/logger"
	phttp "opsroute/internal/platform/net/http"
	"opsroute/internal/platform/net/middleware"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/platform/store"

	"opsroute/internal/modkit"
	"opsroute/internal/modkit/httpkit"
	"opsroute/internal/modkit/module"
	"opsroute/internal/modkit/swaggerkit"

	metamod "opsroute/internal/services/api/meta/module"
	samplesmod "opsroute/internal/services/api/samples/module"
	statsmod "opsroute/internal/services/api/stats/module"
	routemod "opsroute/internal/services/route/module"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Options are the API options
type Options struct {
	// Config is the root view; modules add their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router and returns the module list
func Mount(r phttp.Router, opt Options) []module.Module {
	log := opt.Logger
	if log == nil {
		log = logger.Named("api")
	}
	apiCfg := opt.Config.Prefix("CORE_API_")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	settings, retry := resilience.FromConfig(opt.Config)
	breakers := resilience.NewRegistry(settings,
		resilience.WithRetry(retry),
		resilience.WithStateHook(resilience.NewStateGauge(reg)),
	)

	// shared deps for modules
	deps := modkit.Deps{
		Log:      *log,
		Cfg:      opt.Config,
		Breakers: breakers,
		Metrics:  reg,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	mods := make([]module.Module, 0, 4)
	for _, build := range []modkit.Builder{metamod.New, routeModule, statsmod.New, samplesmod.New} {
		mods = append(mods, build(deps))
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Timeout:        apiCfg.MayDuration("REQUEST_TIMEOUT", 2*time.Minute),
		SlowRequest:    apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
		AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		Duration:       middleware.NewDurationHistogram(reg),
		MaxInFlight:    apiCfg.MayInt("MAX_INFLIGHT", 0),
	})

	// Swagger + profiler + metrics live outside the versioned stack
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	phttp.MountMetrics(r, reg, opt.EnableMetrics)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	log.Info().
		Bool("swagger", opt.EnableSwagger).
		Bool("metrics", opt.EnableMetrics).
		Bool("pg", deps.PG != nil).
		Bool("ch", deps.CH != nil).
		Msg("api mounted")
	return mods
}

func routeModule(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return routemod.New(deps, opts...)
}
