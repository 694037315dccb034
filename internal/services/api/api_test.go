package api

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opsroute/internal/modkit/module"
	"opsroute/internal/platform/config"
	phttp "opsroute/internal/platform/net/http"
	kit "opsroute/internal/platform/testkit"
	routemod "opsroute/internal/services/route/module"
)

func TestMountWithoutBackends(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)
	t.Setenv("CORE_API_PORT", ":0")

	srv := phttp.NewServer(config.New().Prefix("CORE_API_"))
	mods := Mount(srv.Router(), Options{Config: config.New(), EnableMetrics: true})
	if len(mods) != 4 {
		t.Fatalf("mods = %d", len(mods))
	}
	if p, ok := module.PortsAs[routemod.Ports]("route"); !ok || p.Router == nil {
		t.Fatalf("route ports not registered")
	}

	get := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		return rr
	}

	if rr := get("/api/v1/meta/health"); rr.Code != stdhttp.StatusOK {
		t.Fatalf("health = %d", rr.Code)
	}
	rr := get("/api/v1/meta/breakers")
	kit.MustContain(t, rr.Body.String(), `"name":"db"`)
	kit.MustContain(t, rr.Body.String(), `"name":"llm"`)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(`{"question":"status of EX-12"}`)))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("route = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/stats/intents", strings.NewReader(`{"range":{"start":"2025-06-01","end":"2025-06-30"}}`)))
	if rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("stats without clickhouse = %d", rr.Code)
	}

	rr = get("/metrics")
	kit.MustContain(t, rr.Body.String(), "opsroute_route_decisions_total")
	kit.MustContain(t, rr.Body.String(), "opsroute_http_request_duration_seconds")
}
