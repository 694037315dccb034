package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "opsroute/internal/platform/errors"
	phttp "opsroute/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type echoReq struct {
	Query string `json:"query" validate:"required"`
}

func newRouter() (*chi.Mux, Router) {
	m := chi.NewRouter()
	return m, phttp.AdaptChi(m)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rr.Body.String())
	}
	return env
}

func TestMountAPIAndSugar(t *testing.T) {
	mux, r := newRouter()
	MountAPIV1(r, nil, func(api Router) {
		MountUnder(api, "/route", nil, func(sub Router) {
			PostJSON(sub, "/echo", func(_ *http.Request, in echoReq) (any, error) {
				return map[string]string{"query": in.Query}, nil
			})
			GetJSON(sub, "/created", func(*http.Request) (any, error) {
				return Response{Status: http.StatusCreated, Body: "made"}, nil
			})
			GetJSON(sub, "/boom", func(*http.Request) (any, error) {
				return nil, perr.Unavailablef("llm not configured")
			})
		})
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/route/echo", strings.NewReader(`{"query":"total tonnage"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("echo status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/route/echo", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing query status = %d", rr.Code)
	}
	if env := decode(t, rr); env.Field != "query" {
		t.Fatalf("field = %q", env.Field)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/route/created", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("Response passthrough status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/route/boom", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("error status = %d", rr.Code)
	}
}

func TestCommonStack(t *testing.T) {
	mux := chi.NewRouter()
	mux.Use(CommonStack(StackOptions{})...)
	mux.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	mux.Get("/ok", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d", rr.Code)
	}
	if env := decode(t, rr); env.RequestID == "" {
		t.Fatalf("request id missing from panic envelope")
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("NoCache headers missing")
	}
}

func TestCommonStackThrottle(t *testing.T) {
	if n := len(CommonStack(StackOptions{MaxInFlight: 4})); n != len(CommonStack(StackOptions{}))+1 {
		t.Fatalf("throttle not appended, stack len = %d", n)
	}
}
