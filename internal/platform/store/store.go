// Package store opens the postgres and clickhouse backends and hands out narrow seams over them
package store

import (
	"context"
	"errors"
	"fmt"

	"rategrid/internal/platform/logger"
)

// Store holds whichever backends were enabled; a nil seam means that backend is off
type Store struct {
	Log logger.Logger // subclient logger, no-op when unset
	PG  TxRunner      // commission_rates lives here
	CH  Clickhouse    // audit sink
}

// Row is one scanned result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set; callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what a repo gets bound to, inside or outside a transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn in one transaction, committing when fn returns nil
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam used by the audit sink
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by seams that can check their connection
type Pinger interface{ Ping(context.Context) error }

// Open applies opts then dials every backend cfg enables
// a failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	var err error
	if cfg.PG.Enabled {
		if s.PG, err = openPG(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.CH.Enabled {
		if s.CH, err = openCH(ctx, cfg, s); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

type backend struct {
	name string
	seam any
}

func (s *Store) backends() []backend {
	all := []backend{{"pg", s.PG}, {"ch", s.CH}}
	out := all[:0]
	for _, b := range all {
		if b.seam != nil {
			out = append(out, b)
		}
	}
	return out
}

// Guard pings each open backend and joins the failures, prefixed with the backend name
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store not opened")
	}
	var errs []error
	for _, b := range s.backends() {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s ping: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close shuts backends down newest first
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	bs := s.backends()
	var errs []error
	for i := len(bs) - 1; i >= 0; i-- {
		c, ok := bs[i].seam.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s close: %w", bs[i].name, err))
		}
	}
	return errors.Join(errs...)
}
