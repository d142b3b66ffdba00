package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rategrid/internal/core/matrix"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/store"
	"rategrid/internal/services/api/commissions/domain"

	"github.com/shopspring/decimal"
)

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(
		matrix.Record{ID: "a", ProductID: "p1", PremiumTerm: "10yr", Role: matrix.RoleAdvisor, Year: 1, Rate: decimal.NewFromInt(5)},
		matrix.Record{ProductID: "p2", PremiumTerm: "5yr", Role: matrix.RoleLeader1, Year: 1, Rate: decimal.NewFromInt(1)},
	)

	got, _ := m.List(ctx, "p1")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("list = %+v", got)
	}
	other, _ := m.List(ctx, "p2")
	if len(other) != 1 || other[0].ID == "" {
		t.Fatalf("seed without id did not get one: %+v", other)
	}

	r, err := m.Create(ctx, matrix.NewRecord{ProductID: "p1", PremiumTerm: "10yr", Role: matrix.RoleAdvisor, Year: 1, Rate: decimal.NewFromInt(6)})
	if err != nil || r.ID == "" {
		t.Fatalf("create = %+v, %v", r, err)
	}
	if got, _ := m.List(ctx, "p1"); len(got) != 2 || got[1].ID != r.ID {
		t.Fatalf("duplicate slot not kept in insertion order: %+v", got)
	}

	if _, err := m.Update(ctx, "a", decimal.NewFromInt(9)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := m.Update(ctx, "missing", decimal.Zero); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "a"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if snap := m.Snapshot(); len(snap) != 2 || snap[0].ProductID != "p1" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

// fakeCH records clickhouse calls
type fakeCH struct {
	table   string
	data    any
	execSQL string
	query   string
	args    []any
	rows    *fakeRows
	err     error
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	f.table, f.data = table, data
	return f.err
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execSQL = sql
	return f.err
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.query, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCH) Close() error { return nil }

type fakeRows struct {
	evs    []domain.AuditEvent
	i      int
	closed bool
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.evs) }

func (r *fakeRows) Scan(dest ...any) error {
	ev := r.evs[r.i-1]
	*dest[0].(*time.Time) = ev.At
	*dest[1].(*string) = ev.SessionID
	*dest[2].(*string) = ev.ProductID
	*dest[3].(*string) = ev.Action
	*dest[4].(*string) = ev.PremiumTerm
	*dest[5].(*uint8) = uint8(ev.Year)
	*dest[6].(*uint32) = uint32(ev.Succeeded)
	*dest[7].(*uint32) = uint32(ev.Failed)
	*dest[8].(*bool) = ev.Refreshed
	*dest[9].(*string) = ev.Actor
	return nil
}

func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            { r.closed = true }
func (r *fakeRows) Columns() []string { return nil }

func TestCHAudit_RecordShape(t *testing.T) {
	ch := &fakeCH{}
	a := NewCHAudit(ch)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	err := a.Record(context.Background(), domain.AuditEvent{
		At: at, SessionID: "s", ProductID: "p1", Action: domain.ActionRemoveYear,
		PremiumTerm: "10yr", Year: 3, Succeeded: 4, Failed: 1, Refreshed: true, Actor: "ops",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	rows, ok := ch.data.([][]any)
	if ch.table != AuditTable || !ok || len(rows) != 1 || len(rows[0]) != 10 {
		t.Fatalf("insert table=%q data=%#v", ch.table, ch.data)
	}
	if ts := rows[0][0].(time.Time); ts.Location() != time.UTC || !ts.Equal(at) {
		t.Fatalf("at = %v", ts)
	}
	if rows[0][5].(uint8) != 3 || rows[0][7].(uint32) != 1 || rows[0][9] != "ops" {
		t.Fatalf("row = %#v", rows[0])
	}
}

func TestCHAudit_SchemaAndRecent(t *testing.T) {
	now := time.Now().UTC()
	ch := &fakeCH{rows: &fakeRows{evs: []domain.AuditEvent{
		{At: now, SessionID: "s", ProductID: "p1", Action: domain.ActionSave, Succeeded: 2, Failed: 1, Refreshed: true},
	}}}
	a := NewCHAudit(ch)
	if err := a.EnsureSchema(context.Background()); err != nil || !strings.Contains(ch.execSQL, "commission_audit") {
		t.Fatalf("schema sql=%q err=%v", ch.execSQL, err)
	}
	evs, err := a.Recent(context.Background(), "p1", 0)
	if err != nil || len(evs) != 1 || evs[0].Succeeded != 2 || !evs[0].Refreshed {
		t.Fatalf("recent = %+v, %v", evs, err)
	}
	if ch.args[1] != 50 || !ch.rows.closed {
		t.Fatalf("limit=%v closed=%v", ch.args[1], ch.rows.closed)
	}
}

func TestCHAudit_QueryError(t *testing.T) {
	a := NewCHAudit(&fakeCH{err: errors.New("ch down")})
	if _, err := a.Recent(context.Background(), "p1", 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLogAudit(t *testing.T) {
	var a LogAudit
	if err := a.Record(context.Background(), domain.AuditEvent{Action: domain.ActionSave}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if evs, err := a.Recent(context.Background(), "p1", 10); evs != nil || err != nil {
		t.Fatalf("recent = %v, %v", evs, err)
	}
}
