package modkit

import (
	"net/http"
	"testing"

	phttp "opsroute/internal/platform/net/http"
)

func TestBuildAppliesOptionsInOrder(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler { return next }
	b := Build(
		WithName("route"),
		WithPrefix("/route"),
		WithPrefix("/router"),
		WithMiddlewares(mw, mw),
		WithPorts(struct{ N int }{N: 3}),
		WithRegister(func(phttp.Router) { called = true }),
	)
	if b.Name != "route" || b.Prefix != "/router" {
		t.Fatalf("name/prefix = %q/%q", b.Name, b.Prefix)
	}
	if len(b.Mw) != 2 {
		t.Fatalf("mw = %d", len(b.Mw))
	}
	if p, ok := b.Ports.(struct{ N int }); !ok || p.N != 3 {
		t.Fatalf("ports = %#v", b.Ports)
	}
	b.Register(nil)
	if !called {
		t.Fatalf("register hook not kept")
	}
	if Build().Register != nil {
		t.Fatalf("no register option should leave nil")
	}
}

func TestDepsRegisterer(t *testing.T) {
	if (Deps{}).Registerer() == nil {
		t.Fatalf("zero deps must still yield a registerer")
	}
}
