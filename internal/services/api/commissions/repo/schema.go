package repo

import (
	"context"
	"time"

	"rategrid/internal/modkit/repokit"
	perr "rategrid/internal/platform/errors"
)

// Schema creates the commission_rates table
// (premium_term, role, year) carries no unique constraint; legacy duplicates are kept as-is
const Schema = `
create table if not exists commission_rates (
	id           uuid primary key,
	product_id   text not null,
	premium_term text not null,
	role         smallint not null check (role between 3 and 6),
	year         smallint not null,
	rate         numeric(7,4) not null check (rate >= 0 and rate <= 100),
	created_at   timestamptz not null default now(),
	updated_at   timestamptz not null default now()
);
create index if not exists commission_rates_product_idx
	on commission_rates (product_id, premium_term, year, role);
`

// schemaLockKey serialises EnsureSchema across api replicas booting together
const schemaLockKey = "rategrid.commission_rates.schema"

// EnsureSchema applies Schema inside one transaction holding the schema advisory lock
func EnsureSchema(ctx context.Context, db repokit.TxRunner) error {
	tx := repokit.WithBeginHooks(db, repokit.LockTimeout(10*time.Second), repokit.AdvisoryLock(schemaLockKey))
	return repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
		if _, err := q.Exec(ctx, Schema); err != nil {
			return perr.FromPostgres(err, "ensure commission schema")
		}
		return nil
	})
}
