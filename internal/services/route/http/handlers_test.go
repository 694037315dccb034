package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opsroute/internal/core/router"
	perr "opsroute/internal/platform/errors"
	phttp "opsroute/internal/platform/net/http"
	kit "opsroute/internal/platform/testkit"
	"opsroute/internal/services/route/domain"

	"github.com/go-chi/chi/v5"
)

type fakeSvc struct {
	got domain.RouteInput
}

func (f *fakeSvc) Route(_ context.Context, in domain.RouteInput) (domain.RouteResult, error) {
	f.got = in
	if strings.Contains(in.Question, "outage") {
		return domain.RouteResult{}, perr.Newf(perr.ErrorCodeCircuitOpen, "llm circuit open")
	}
	return domain.RouteResult{DecisionID: "d-1", Decision: router.Decision{Task: router.TaskSQL}}, nil
}

func (f *fakeSvc) Explain(_ context.Context, in domain.RouteInput) (domain.ExplainResult, error) {
	return domain.ExplainResult{Question: in.Question, Fallback: true}, nil
}

func (f *fakeSvc) Intents(context.Context) ([]domain.IntentInfo, error) {
	return []domain.IntentInfo{{Name: "equipment_status", Tier: 1}}, nil
}

func (f *fakeSvc) Query(context.Context, domain.RouteInput) (domain.QueryResult, error) {
	return domain.QueryResult{}, perr.Unavailablef("sql execution is disabled")
}

func mount(s domain.ServicePort) stdhttp.Handler {
	m := chi.NewRouter()
	phttp.AdaptChi(m).Route("/route", func(r phttp.Router) { Register(r, s) })
	return m
}

func do(h stdhttp.Handler, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestRouteEndpoints(t *testing.T) {
	svc := &fakeSvc{}
	h := mount(svc)

	rr := do(h, "POST", "/route", `{"question":"status of EX-12","settings":{"llm_api_key":"sk-x"}}`)
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("route status = %d body=%s", rr.Code, rr.Body.String())
	}
	kit.MustContain(t, rr.Body.String(), `"decision_id":"d-1"`)
	if svc.got.Settings.LLMAPIKey != "sk-x" {
		t.Fatalf("settings not bound: %+v", svc.got)
	}

	rr = do(h, "POST", "/route/explain", `{"question":"why"}`)
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("explain status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"fallback":true`)

	rr = do(h, "GET", "/route/intents", "")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("intents status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), "equipment_status")
}

func TestRouteErrors(t *testing.T) {
	h := mount(&fakeSvc{})

	if rr := do(h, "POST", "/route", `{"question":"   "}`); rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("blank question status = %d", rr.Code)
	}
	if rr := do(h, "POST", "/route", `{"question":"q","history":[{"role":"system","content":"x"}]}`); rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad history role status = %d", rr.Code)
	}
	if rr := do(h, "POST", "/route", `{"question":"grid outage"}`); rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("open circuit status = %d", rr.Code)
	}
	if rr := do(h, "POST", "/route/query", `{"question":"q"}`); rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("query disabled status = %d", rr.Code)
	}
}
