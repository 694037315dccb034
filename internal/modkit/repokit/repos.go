// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"

	"opsroute/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

// Clickhouse is the columnar seam used by audit writers
type Clickhouse = store.Clickhouse

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a read-write transaction
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, store.TxOptions{}, fn)
}

// ReadOnly runs fn inside a read-only transaction; postgres rejects any write with 25006
func ReadOnly(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, store.TxOptions{ReadOnly: true}, fn)
}
