package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "opsroute/internal/platform/net/http"
	"opsroute/internal/platform/resilience"
	kit "opsroute/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(d Deps, path string) *httptest.ResponseRecorder {
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func TestReady(t *testing.T) {
	rr := serve(Deps{PG: pinger{}}, "/ready")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"status":"ok"`)
	kit.MustContain(t, rr.Body.String(), `"skipped"`)

	rr = serve(Deps{PG: pinger{err: errors.New("connection refused")}}, "/ready")
	if rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("failed ping status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), "connection refused")
}

func TestBreakersAndReadyDegrade(t *testing.T) {
	reg := resilience.NewRegistry([]resilience.Settings{{Name: "llm", Threshold: 1, Window: time.Minute, Cooldown: time.Minute}})
	b := reg.Get("llm")
	trial, _ := b.Allow()
	b.Done(trial, errors.New("connection reset by peer"))

	d := Deps{Breakers: reg}
	rr := serve(d, "/breakers")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("breakers status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"name":"llm"`)
	kit.MustContain(t, rr.Body.String(), `"state":"open"`)

	rr = serve(d, "/ready")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("degraded is still serving, status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"status":"degraded"`)
}

func TestVersion(t *testing.T) {
	rr := serve(Deps{ServiceName: "opsroute-api", StartedAt: time.Now()}, "/version")
	kit.MustContain(t, rr.Body.String(), "opsroute-api")
}

func TestServiceListsModules(t *testing.T) {
	rr := serve(Deps{ServiceName: "opsroute-api", StartedAt: time.Now()}, "/service")
	kit.MustContain(t, rr.Body.String(), `"modules":[]`)

	rr = serve(Deps{ServiceName: "opsroute-api", StartedAt: time.Now(), Modules: func() []string { return []string{"meta", "route"} }}, "/service")
	kit.MustContain(t, rr.Body.String(), `"modules":["meta","route"]`)
}
