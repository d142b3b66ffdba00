package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rategrid/internal/core/matrix"
	"rategrid/internal/modkit/repokit"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/services/api/commissions/repo"

	"github.com/shopspring/decimal"
)

// PGStore adapts the postgres repo to the session store contract
type PGStore struct {
	q repo.Repo
}

// list reads retry transient contention a couple of times before giving up
const (
	listAttempts = 3
	listBackoff  = 100 * time.Millisecond
)

var sleepCtx = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewPGStore binds the postgres repo to db and exposes it as a session store
func NewPGStore(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *PGStore {
	return &PGStore{q: repokit.MustBind(binder, db)}
}

func toRecord(r repo.RowCommission) (matrix.Record, error) {
	rate, err := decimal.NewFromString(r.Rate)
	if err != nil {
		return matrix.Record{}, perr.Wrapf(err, perr.ErrorCodeDB, "commission %s has unreadable rate %q", r.ID, r.Rate)
	}
	return matrix.Record{
		ID:          r.ID,
		ProductID:   r.ProductID,
		PremiumTerm: r.PremiumTerm,
		Role:        matrix.Role(r.Role),
		Year:        r.Year,
		Rate:        rate,
	}, nil
}

func (p *PGStore) List(ctx context.Context, productID string) ([]matrix.Record, error) {
	var (
		rows    []repo.RowCommission
		err     error
		attempt = 1
	)
	for ; ; attempt++ {
		rows, err = p.q.List(ctx, productID)
		if err == nil || attempt == listAttempts || !perr.Retryable(err) {
			break
		}
		if serr := sleepCtx(ctx, time.Duration(attempt)*listBackoff); serr != nil {
			return nil, serr
		}
	}
	if err != nil {
		if attempt > 1 {
			err = perr.WithOp(err, fmt.Sprintf("list attempt %d", attempt))
		}
		return nil, err
	}
	out := make([]matrix.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := toRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *PGStore) Create(ctx context.Context, in matrix.NewRecord) (matrix.Record, error) {
	if err := checkNew(in); err != nil {
		return matrix.Record{}, err
	}
	row, err := p.q.Insert(ctx, repo.RowCommission{
		ProductID:   in.ProductID,
		PremiumTerm: in.PremiumTerm,
		Role:        int(in.Role),
		Year:        in.Year,
		Rate:        in.Rate.String(),
	})
	if err != nil {
		return matrix.Record{}, err
	}
	return toRecord(row)
}

func (p *PGStore) Update(ctx context.Context, id string, rate decimal.Decimal) (matrix.Record, error) {
	if err := matrix.CheckRate(rate); err != nil {
		return matrix.Record{}, err
	}
	row, err := p.q.UpdateRate(ctx, id, rate.String())
	if err != nil {
		return matrix.Record{}, err
	}
	return toRecord(row)
}

func (p *PGStore) Delete(ctx context.Context, id string) error {
	return p.q.Delete(ctx, id)
}

// checkNew validates a create payload before it reaches any store
func checkNew(in matrix.NewRecord) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return perr.WithField(perr.InvalidArgf("product id is required"), "product_id")
	}
	if strings.TrimSpace(in.PremiumTerm) == "" {
		return perr.WithField(perr.InvalidArgf("premium term is required"), "premium_term")
	}
	return matrix.CheckCell(in.Year, in.Role, in.Rate)
}
