package repo

import (
	"context"
	"testing"
	"time"

	"opsroute/internal/platform/store"
	kit "opsroute/internal/platform/testkit"
)

type oneRow struct{ done bool }

func (r *oneRow) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *oneRow) Scan(dst ...any) error {
	*dst[0].(*string) = "d-1"
	*dst[1].(*time.Time) = time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	*dst[9].(*uint32) = 40
	return nil
}
func (r *oneRow) Values() ([]any, error) { return nil, nil }
func (r *oneRow) Err() error             { return nil }
func (r *oneRow) Close()                 {}
func (r *oneRow) Columns() []string      { return nil }

type fakeCH struct {
	sql  string
	args []any
}

func (f *fakeCH) Insert(context.Context, string, [][]any) error { return nil }
func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql, f.args = sql, args
	return &oneRow{}, nil
}
func (f *fakeCH) Close() error { return nil }

func TestRecentBindsFilter(t *testing.T) {
	ch := &fakeCH{}
	rows, err := NewCH(ch, "route_decisions").Recent(context.Background(), Filter{Task: "rag", ErrorsOnly: true, Limit: 7})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 || rows[0].DecisionID != "d-1" || rows[0].LatencyMS != 40 {
		t.Fatalf("rows = %+v", rows)
	}
	kit.MustContain(t, ch.sql, "from route_decisions")
	kit.MustContain(t, ch.sql, "order by at desc")
	if len(ch.args) != 8 || ch.args[0] != "rag" || ch.args[6] != 1 || ch.args[7] != 7 {
		t.Fatalf("args = %v", ch.args)
	}
}

func TestNewCHGuards(t *testing.T) {
	kit.MustPanic(t, func() { NewCH(&fakeCH{}, "x y") })
}
