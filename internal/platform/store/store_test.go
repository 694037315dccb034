package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opsroute/internal/platform/config"
	"opsroute/internal/platform/logger"
	"opsroute/internal/platform/store/pg"
	kit "opsroute/internal/platform/testkit"
)

type fakeRows struct {
	cols []string
	data [][]any
	i    int
	err  error
	shut bool
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.data) {
		return false
	}
	f.i++
	return true
}
func (f *fakeRows) Scan(dest ...any) error { return nil }
func (f *fakeRows) Values() ([]any, error) {
	row := f.data[f.i-1]
	out := make([]any, len(row))
	copy(out, row)
	return out, nil
}
func (f *fakeRows) Err() error        { return f.err }
func (f *fakeRows) Close()            { f.shut = true }
func (f *fakeRows) Columns() []string { return f.cols }

func TestCollectCapsAndConverts(t *testing.T) {
	day := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	fr := &fakeRows{
		cols: []string{"date", "equipment_id", "tonnage"},
		data: [][]any{
			{day, []byte("BB-001"), 812.5},
			{day.AddDate(0, 0, 1), "TIP-45", 640.0},
			{day.AddDate(0, 0, 2), "TIP-45", 700.0},
		},
	}
	rs, err := Collect(fr, 2)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !fr.shut {
		t.Fatalf("rows not closed")
	}
	if len(rs.Rows) != 2 || !rs.Truncated {
		t.Fatalf("rows=%d truncated=%v", len(rs.Rows), rs.Truncated)
	}
	if rs.Rows[0][0] != "2024-04-02" || rs.Rows[0][1] != "BB-001" {
		t.Fatalf("conversion mismatch: %#v", rs.Rows[0])
	}

	all, _ := Collect(&fakeRows{cols: fr.cols, data: fr.data}, 0)
	if len(all.Rows) != 3 || all.Truncated {
		t.Fatalf("uncapped collect = %d %v", len(all.Rows), all.Truncated)
	}

	empty, _ := Collect(&fakeRows{cols: []string{"x"}}, 5)
	if empty.Rows == nil || len(empty.Rows) != 0 {
		t.Fatalf("empty result should be a non-nil empty slice")
	}

	if _, err := Collect(&fakeRows{err: errors.New("conn reset")}, 5); err == nil {
		t.Fatalf("rows.Err must surface")
	}
}

type pingCH struct {
	pingErr  error
	closeErr error
	closed   bool
}

func (p *pingCH) Insert(context.Context, string, [][]any) error { return nil }
func (p *pingCH) Query(context.Context, string, ...any) (Rows, error) {
	return &fakeRows{}, nil
}
func (p *pingCH) Close() error                 { p.closed = true; return p.closeErr }
func (p *pingCH) Ping(_ context.Context) error { return p.pingErr }

func TestGuardAndClose(t *testing.T) {
	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store guard should fail")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("empty store guard: %v", err)
	}

	ch := &pingCH{pingErr: errors.New("dial tcp: refused"), closeErr: errors.New("close boom")}
	s := &Store{CH: ch}
	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "clickhouse: dial tcp") {
		t.Fatalf("guard err = %v", err)
	}
	if err := s.Close(context.Background()); err == nil || !ch.closed {
		t.Fatalf("close should propagate and close CH (err=%v)", err)
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://ro@warehouse/mine")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "6")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")
	cfg := FromConfig(config.New(), "opsroute", "api")

	if !cfg.PG.Enabled || cfg.PG.MaxConns != 6 || cfg.PG.URL != "postgres://ro@warehouse/mine" {
		t.Fatalf("pg cfg = %+v", cfg.PG)
	}
	if cfg.CH.Enabled {
		t.Fatalf("clickhouse must stay disabled without a DBURL")
	}
	if cfg.CH.ClientName != "opsroute" || cfg.CH.ClientTag != "api" {
		t.Fatalf("client info = %+v", cfg.CH)
	}

	t.Setenv("SERVICE_PGSQL_ENABLED", "false")
	if FromConfig(config.New(), "opsroute", "api").PG.Enabled {
		t.Fatalf("ENABLED=false must win over a present DBURL")
	}
}

func TestOpenPGGivesUpAfterAttempts(t *testing.T) {
	kit.Serial(t)
	calls := 0
	kit.Swap(t, &pingPool, func(context.Context, *pg.PG) error {
		calls++
		return errors.New("connection refused")
	})

	_, err := Open(context.Background(), Config{PG: PGConfig{
		Enabled:         true,
		URL:             "postgres://u:p@127.0.0.1:1/mine",
		ConnectAttempts: 3,
		PingTimeout:     10 * time.Millisecond,
	}}, WithLogger(*logger.Get()))
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("ping calls = %d, want 3", calls)
	}
}

func TestOpenPGPublishesAfterPing(t *testing.T) {
	kit.Serial(t)
	calls := 0
	kit.Swap(t, &pingPool, func(context.Context, *pg.PG) error {
		calls++
		if calls < 2 {
			return errors.New("the database system is starting up")
		}
		return nil
	})
	s, err := Open(context.Background(), Config{PG: PGConfig{
		Enabled:         true,
		URL:             "postgres://u:p@127.0.0.1:1/mine",
		ConnectAttempts: 4,
	}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close(context.Background()) }()
	if s.PG == nil || calls != 2 {
		t.Fatalf("pg published=%v calls=%d", s.PG != nil, calls)
	}
}
