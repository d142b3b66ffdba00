// Package repo provides storage for commission rates: postgres, in-memory and the clickhouse audit sink
package repo

import (
	"context"

	"rategrid/internal/modkit/repokit"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/store"

	"github.com/google/uuid"
)

// Repo defines the repository contract for commission rows
type Repo interface {
	List(ctx context.Context, productID string) ([]RowCommission, error)
	Get(ctx context.Context, id string) (RowCommission, error)
	Insert(ctx context.Context, in RowCommission) (RowCommission, error)
	UpdateRate(ctx context.Context, id, rate string) (RowCommission, error)
	Delete(ctx context.Context, id string) error
}

// RowCommission is one commission_rates row
// Rate travels as numeric text so no precision is lost on the way
type RowCommission struct {
	ID          string
	ProductID   string
	PremiumTerm string
	Role        int
	Year        int
	Rate        string
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const cols = `id::text, product_id, premium_term, role, year, rate::text`

func scanRow(r store.Row) (RowCommission, error) {
	var rc RowCommission
	err := r.Scan(&rc.ID, &rc.ProductID, &rc.PremiumTerm, &rc.Role, &rc.Year, &rc.Rate)
	return rc, err
}

func (r *queries) List(ctx context.Context, productID string) ([]RowCommission, error) {
	const sql = `
select ` + cols + `
from commission_rates
where product_id = $1
order by premium_term, year, role, created_at, id
`
	out, err := store.Many(ctx, r.q, scanRow, sql, productID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list commission rates")
	}
	return out, nil
}

func (r *queries) Get(ctx context.Context, id string) (RowCommission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RowCommission{}, perr.NotFoundf("commission %q not found", id)
	}
	const sql = `select ` + cols + ` from commission_rates where id = $1::uuid`
	rc, err := store.One(ctx, r.q, scanRow, sql, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return RowCommission{}, perr.NotFoundf("commission %q not found", id)
		}
		return RowCommission{}, perr.FromPostgres(err, "get commission rate")
	}
	return rc, nil
}

func (r *queries) Insert(ctx context.Context, in RowCommission) (RowCommission, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	const sql = `
insert into commission_rates (id, product_id, premium_term, role, year, rate)
values ($1::uuid, $2, $3, $4, $5, $6::numeric)
returning ` + cols
	rc, err := scanRow(r.q.QueryRow(ctx, sql, in.ID, in.ProductID, in.PremiumTerm, in.Role, in.Year, in.Rate))
	if err != nil {
		return RowCommission{}, perr.FromPostgresWithField(err, "insert commission rate")
	}
	return rc, nil
}

func (r *queries) UpdateRate(ctx context.Context, id, rate string) (RowCommission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RowCommission{}, perr.NotFoundf("commission %q not found", id)
	}
	const sql = `
update commission_rates
set rate = $2::numeric, updated_at = now()
where id = $1::uuid
returning ` + cols
	rc, err := store.One(ctx, r.q, scanRow, sql, id, rate)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return RowCommission{}, perr.NotFoundf("commission %q not found", id)
		}
		return RowCommission{}, perr.FromPostgresWithField(err, "update commission rate")
	}
	return rc, nil
}

func (r *queries) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return perr.NotFoundf("commission %q not found", id)
	}
	n, err := store.Affected(ctx, r.q, `delete from commission_rates where id = $1::uuid`, id)
	if err != nil {
		return perr.FromPostgres(err, "delete commission rate")
	}
	if n == 0 {
		return perr.NotFoundf("commission %q not found", id)
	}
	return nil
}
