package store

import (
	"context"
	"errors"
	"testing"

	"rategrid/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxFakeRows implements pgx.Rows over string cells
type pgxFakeRows struct {
	cols   []string
	data   [][]string
	idx    int
	err    error
	closed bool
}

func newPgxRows(cols []string, data ...[]string) *pgxFakeRows {
	return &pgxFakeRows{cols: cols, data: data, idx: -1}
}

func (r *pgxFakeRows) Close()                        { r.closed = true }
func (r *pgxFakeRows) Err() error                    { return r.err }
func (r *pgxFakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *pgxFakeRows) Conn() *pgx.Conn               { return nil }
func (r *pgxFakeRows) RawValues() [][]byte           { return nil }
func (r *pgxFakeRows) Values() ([]any, error)        { return nil, nil }
func (r *pgxFakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}
func (r *pgxFakeRows) Next() bool {
	if r.idx+1 >= len(r.data) {
		return false
	}
	r.idx++
	return true
}
func (r *pgxFakeRows) Scan(dest ...any) error {
	if len(dest) != len(r.data[r.idx]) {
		return errors.New("dest len mismatch")
	}
	for i, d := range dest {
		p, ok := d.(*string)
		if !ok {
			return errors.New("dest must be *string")
		}
		*p = r.data[r.idx][i]
	}
	return nil
}

type pgxFakeRow struct{ err error }

func (r pgxFakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*string); ok {
		*p = "7.5000"
	}
	return nil
}

// fakeConn implements pgxConn
type fakeConn struct {
	execErr  error
	queryErr error
	rowErr   error
	rows     *pgxFakeRows
}

func (c *fakeConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	if c.execErr != nil {
		return pgconn.CommandTag{}, c.execErr
	}
	return pgconn.NewCommandTag("DELETE 3"), nil
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.rows, nil
}

func (c *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row { return pgxFakeRow{err: c.rowErr} }

type recTracer struct{ events []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, ev pg.QueryEvent) { r.events = append(r.events, ev) }

func TestQuerier_ExecReportsRowsAffected(t *testing.T) {
	tr := &recTracer{}
	q := querier{db: &fakeConn{}, tracer: tr, slowUS: -1}
	ct, err := q.Exec(context.Background(), "delete from commission_rates where product_id = $1", "p1")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if ct.RowsAffected() != 3 || ct.String() != "DELETE 3" {
		t.Fatalf("tag = %q %d", ct.String(), ct.RowsAffected())
	}
	if len(tr.events) != 1 || tr.events[0].Slow {
		t.Fatalf("events = %+v", tr.events)
	}
}

func TestQuerier_QueryWrapsRows(t *testing.T) {
	src := newPgxRows([]string{"id", "rate"}, []string{"r1", "5"}, []string{"r2", "6"})
	q := querier{db: &fakeConn{rows: src}}
	rs, err := q.Query(context.Background(), "select id, rate::text from commission_rates")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if cols := rs.Columns(); len(cols) != 2 || cols[1] != "rate" {
		t.Fatalf("columns = %v", cols)
	}
	var ids []string
	for rs.Next() {
		var id, rate string
		if err := rs.Scan(&id, &rate); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	rs.Close()
	if len(ids) != 2 || rs.Err() != nil || !src.closed {
		t.Fatalf("ids=%v err=%v closed=%v", ids, rs.Err(), src.closed)
	}
}

func TestQuerier_QueryRowTracesScanError(t *testing.T) {
	tr := &recTracer{}
	boom := errors.New("no rows")
	q := querier{db: &fakeConn{rowErr: boom}, tracer: tr}

	var rate string
	if err := q.QueryRow(context.Background(), "select rate::text from commission_rates where id = $1", "r1").Scan(&rate); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(tr.events) != 1 || !errors.Is(tr.events[0].Err, boom) {
		t.Fatalf("events = %+v", tr.events)
	}
	// slowUS 0 marks everything slow
	if !tr.events[0].Slow {
		t.Fatalf("expected slow with zero threshold")
	}
}

func TestQuerier_PropagatesErrors(t *testing.T) {
	tr := &recTracer{}
	q := querier{db: &fakeConn{execErr: errors.New("exec"), queryErr: errors.New("query")}, tracer: tr, slowUS: -1}
	if _, err := q.Exec(context.Background(), "x"); err == nil {
		t.Fatalf("expected exec error")
	}
	if _, err := q.Query(context.Background(), "x"); err == nil {
		t.Fatalf("expected query error")
	}
	if len(tr.events) != 2 || tr.events[0].Err == nil || tr.events[1].Err == nil {
		t.Fatalf("errors not traced: %+v", tr.events)
	}
}

func TestQuerier_NoTracerIsFine(t *testing.T) {
	q := querier{db: &fakeConn{}}
	var rate string
	if err := q.QueryRow(context.Background(), "select 1").Scan(&rate); err != nil || rate != "7.5000" {
		t.Fatalf("rate=%q err=%v", rate, err)
	}
}

func TestPGAdapter_NilPing(t *testing.T) {
	var a *pgAdapter
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("expected nil adapter error")
	}
}
