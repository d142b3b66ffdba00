package repokit

import (
	"context"
	"time"
)

// BeginHook runs at the start of a transaction with the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps a TxRunner and runs hooks before fn inside the same tx
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// SetLocal sets a postgres setting for the rest of the transaction
func SetLocal(name, value string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, `select set_config($1, $2, true)`, name, value)
		return err
	}
}

// LockTimeout bounds how long the tx waits on row or table locks
func LockTimeout(d time.Duration) BeginHook {
	return SetLocal("lock_timeout", d.String())
}

// AdvisoryLock serialises every tx that takes the same key until commit
func AdvisoryLock(key string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, `select pg_advisory_xact_lock(hashtext($1))`, key)
		return err
	}
}
