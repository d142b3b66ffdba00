// Package repokit binds repositories to a store seam and runs them in transactions
package repokit

import (
	"context"

	"rategrid/internal/platform/store"
)

// Aliases so repo packages only import repokit
type (
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// WithTx runs fn in one transaction of db
func WithTx(ctx context.Context, db TxRunner, fn func(q Queryer) error) error {
	return db.Tx(ctx, fn)
}
