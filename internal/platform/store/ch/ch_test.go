package ch

import (
	"context"
	"strings"
	"testing"
)

func TestBuildClientInfo(t *testing.T) {
	ci := BuildClientInfo("opsroute", " api ")
	if len(ci.Products) != 4 {
		t.Fatalf("products = %d", len(ci.Products))
	}
	if ci.Products[0].Name != "opsroute" || ci.Products[0].Version != "api" {
		t.Fatalf("first product = %+v", ci.Products[0])
	}
	if ci.Products[1].Name != "go" || !strings.HasPrefix(ci.Products[1].Version, "go") {
		t.Fatalf("go product = %+v", ci.Products[1])
	}
	if def := BuildClientInfo("", "cli"); def.Products[0].Name != "opsroute" {
		t.Fatalf("default app name = %q", def.Products[0].Name)
	}
}

func TestOpenRejectsBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestInsertValidatesTable(t *testing.T) {
	c := &CH{}
	if err := c.Insert(context.Background(), "x; DROP TABLE y", [][]any{{1}}); err == nil {
		t.Fatalf("expected table name rejection")
	}
	if err := c.Insert(context.Background(), "route_decisions", nil); err != nil {
		t.Fatalf("empty insert should be a no-op, got %v", err)
	}
}
