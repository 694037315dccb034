// @title         opsroute API
// @version       1.0
// @description   Query understanding and routing for mine operations questions

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsroute/internal/core/version"
	"opsroute/internal/modkit/repokit"
	"opsroute/internal/platform/config"
	"opsroute/internal/platform/logger"
	phttp "opsroute/internal/platform/net/http"
	"opsroute/internal/platform/store"

	"opsroute/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()
	l.Info().Str("build", version.Info("opsroute-api").String()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// postgres and clickhouse are optional; SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* turn them on
	st, err := store.Open(ctx, store.FromConfig(root, "opsroute", "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if apiCfg.MayBool("REQUIRE_BACKENDS", false) {
		repokit.MustGuard(ctx, st)
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	// run
	if err := srv.Run(ctx, apiCfg.MayDuration("SHUTDOWN_GRACE", 15*time.Second)); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
