package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsroute/internal/platform/store"
	kit "opsroute/internal/platform/testkit"
)

type tag struct{}

func (tag) String() string      { return "SET" }
func (tag) RowsAffected() int64 { return 0 }

type recQ struct{ execs []string }

func (r *recQ) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	r.execs = append(r.execs, sql)
	return tag{}, nil
}
func (r *recQ) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (r *recQ) QueryRow(context.Context, string, ...any) Row       { return nil }

type fakeTx struct {
	recQ
	opts    []store.TxOptions
	pingErr error
	closed  bool
}

func (f *fakeTx) Tx(_ context.Context, o store.TxOptions, fn func(Queryer) error) error {
	f.opts = append(f.opts, o)
	return fn(&f.recQ)
}
func (f *fakeTx) Ping(context.Context) error { return f.pingErr }
func (f *fakeTx) Close() error               { f.closed = true; return nil }

func TestWithTxAndReadOnly(t *testing.T) {
	tx := &fakeTx{}
	ctx := context.Background()
	if err := WithTx(ctx, tx, func(Queryer) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := ReadOnly(ctx, tx, func(Queryer) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if len(tx.opts) != 2 || tx.opts[0].ReadOnly || !tx.opts[1].ReadOnly {
		t.Fatalf("tx options = %+v", tx.opts)
	}
}

func TestBeginHooksRunBeforeFn(t *testing.T) {
	inner := &fakeTx{}
	hooked := WithBeginHooks(inner, StatementTimeout(1500*time.Millisecond), StatementTimeout(0))

	var sawHook bool
	err := ReadOnly(context.Background(), hooked, func(q Queryer) error {
		sawHook = len(inner.execs) == 1
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !sawHook {
		t.Fatalf("hook did not run before fn: %v", inner.execs)
	}
	if inner.execs[0] != "SET LOCAL statement_timeout = 1500" {
		t.Fatalf("exec = %q", inner.execs[0])
	}
	if !inner.opts[0].ReadOnly {
		t.Fatalf("options not forwarded")
	}
}

func TestBeginHookErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	hooked := WithBeginHooks(&fakeTx{}, func(context.Context, Queryer) error { return boom })
	called := false
	err := WithTx(context.Background(), hooked, func(Queryer) error { called = true; return nil })
	if !errors.Is(err, boom) || called {
		t.Fatalf("err=%v called=%v", err, called)
	}
}

func TestHookedForwardsPingAndClose(t *testing.T) {
	inner := &fakeTx{pingErr: errors.New("down")}
	hooked := WithBeginHooks(inner)
	if err := hooked.(store.Pinger).Ping(context.Background()); err == nil {
		t.Fatalf("ping error not forwarded")
	}
	_ = hooked.(interface{ Close() error }).Close()
	if !inner.closed {
		t.Fatalf("close not forwarded")
	}
}

func TestMustGuard(t *testing.T) {
	kit.MustPanic(t, func() { MustGuard(context.Background(), &store.Store{PG: &fakeTx{pingErr: errors.New("x")}}) })
	MustGuard(context.Background(), &store.Store{})
}
