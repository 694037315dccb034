package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "opsroute/internal/platform/net/http"
	kit "opsroute/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestDocJSONDecorated(t *testing.T) {
	kit.Swap(t, &mutators, nil)
	Register(func(spec map[string]any) { spec["x-test"] = true })
	Register(nil)

	rr := serve(t, "/api/docs/doc.json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.3" || spec["x-test"] != true {
		t.Fatalf("spec header = %v / %v", spec["openapi"], spec["x-test"])
	}
	servers, _ := spec["servers"].([]any)
	if len(servers) != 1 {
		t.Fatalf("servers = %v", spec["servers"])
	}
	paths := spec["paths"].(map[string]any)
	post := paths["/route"].(map[string]any)["post"].(map[string]any)
	resps := post["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "500", "503"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing %s response on /route", code)
		}
	}
}

func TestDocJSONParseError(t *testing.T) {
	kit.Swap(t, &docReader, func() string { return "{not json" })
	if rr := serve(t, "/api/docs/doc.json"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestEnsureServersDowngrades(t *testing.T) {
	spec := map[string]any{"openapi": "3.1.0"}
	ensureServers(spec, "/api/v1")
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	spec = map[string]any{"swagger": "2.0"}
	ensureServers(spec, "/x")
	if _, ok := spec["swagger"]; ok || spec["openapi"] != "3.0.3" {
		t.Fatalf("swagger 2 not lifted: %v", spec)
	}
}

func TestAddDefaultResponseFilters(t *testing.T) {
	op := func() map[string]any { return map[string]any{"responses": map[string]any{}} }
	spec := map[string]any{"paths": map[string]any{
		"/route":         map[string]any{"post": op()},
		"/route/intents": map[string]any{"get": op()},
		"/meta/health":   map[string]any{"get": op()},
	}}
	AddDefaultResponse(spec, "504", ErrorResponse("Gateway Timeout", nil), "post", "/route")
	AddDefaultResponse(spec, "418", ErrorResponse("Teapot", nil), "", "/meta")

	has := func(path, method, code string) bool {
		node := spec["paths"].(map[string]any)[path].(map[string]any)[method].(map[string]any)
		_, ok := node["responses"].(map[string]any)[code]
		return ok
	}
	if !has("/route", "post", "504") || has("/route/intents", "get", "504") || has("/meta/health", "get", "504") {
		t.Fatalf("504 filter mismatch: %v", spec["paths"])
	}
	if !has("/meta/health", "get", "418") || has("/route", "post", "418") {
		t.Fatalf("prefix filter mismatch: %v", spec["paths"])
	}
}

func TestMountDisabled(t *testing.T) {
	if rr := serve(t, "/api/docs"); rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect status = %d", rr.Code)
	}
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), false)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("disabled status = %d", rr.Code)
	}
}
