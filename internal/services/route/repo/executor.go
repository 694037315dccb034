// Package repo holds the route service storage: the read-only warehouse executor and the decision audit
package repo

import (
	"context"
	"time"

	"opsroute/internal/modkit/repokit"
	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/store"
)

// PGExecutor runs vetted SELECTs inside read-only transactions with a server-side statement timeout
type PGExecutor struct {
	db      repokit.TxRunner
	maxRows int
}

// NewPGExecutor wraps db; maxRows <= 0 means 500
func NewPGExecutor(db repokit.TxRunner, maxRows int, stmtTimeout time.Duration) *PGExecutor {
	if db == nil {
		panic("route.PGExecutor requires a non nil TxRunner")
	}
	if maxRows <= 0 {
		maxRows = 500
	}
	return &PGExecutor{
		db:      repokit.WithBeginHooks(db, repokit.StatementTimeout(stmtTimeout)),
		maxRows: maxRows,
	}
}

// Query returns at most maxRows rows; Truncated reports the cut
func (e *PGExecutor) Query(ctx context.Context, sql string) (store.ResultSet, error) {
	var rs store.ResultSet
	err := repokit.ReadOnly(ctx, e.db, func(q repokit.Queryer) error {
		var err error
		rs, err = store.QueryCollect(ctx, q, e.maxRows, sql)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return store.ResultSet{}, ctx.Err()
		}
		return store.ResultSet{}, perr.FromPostgres(err, "warehouse query failed")
	}
	return rs, nil
}
