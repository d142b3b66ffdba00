package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rategrid/internal/platform/store"
	kit "rategrid/internal/platform/testkit"
)

type call struct {
	sql  string
	args []any
}

type recQ struct {
	calls  []call
	failOn string
}

func (q *recQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	q.calls = append(q.calls, call{sql, args})
	if q.failOn != "" && strings.Contains(sql, q.failOn) {
		return nil, errors.New("exec failed")
	}
	return nil, nil
}
func (q *recQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (q *recQ) QueryRow(context.Context, string, ...any) store.Row       { return nil }

type recTx struct {
	q    *recQ
	runs int
}

func (r *recTx) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	return r.q.Exec(ctx, sql, args...)
}
func (r *recTx) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	return r.q.Query(ctx, sql, args...)
}
func (r *recTx) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return r.q.QueryRow(ctx, sql, args...)
}
func (r *recTx) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	r.runs++
	return fn(r.q)
}

func TestWithBeginHooks_Order(t *testing.T) {
	tx := &recTx{q: &recQ{}}
	hooked := WithBeginHooks(tx, LockTimeout(2*time.Second), AdvisoryLock("k"))
	err := WithTx(context.Background(), hooked, func(q Queryer) error {
		_, err := q.Exec(context.Background(), "create table t()")
		return err
	})
	if err != nil || tx.runs != 1 {
		t.Fatalf("err=%v runs=%d", err, tx.runs)
	}
	got := tx.q.calls
	if len(got) != 3 {
		t.Fatalf("calls = %+v", got)
	}
	if !strings.Contains(got[0].sql, "set_config") || got[0].args[0] != "lock_timeout" || got[0].args[1] != "2s" {
		t.Fatalf("lock timeout call = %+v", got[0])
	}
	if !strings.Contains(got[1].sql, "pg_advisory_xact_lock") || got[1].args[0] != "k" {
		t.Fatalf("advisory call = %+v", got[1])
	}
	if got[2].sql != "create table t()" {
		t.Fatalf("body call = %+v", got[2])
	}
}

func TestWithBeginHooks_HookErrorSkipsBody(t *testing.T) {
	tx := &recTx{q: &recQ{failOn: "pg_advisory"}}
	ran := false
	err := WithTx(context.Background(), WithBeginHooks(tx, AdvisoryLock("k")), func(Queryer) error {
		ran = true
		return nil
	})
	if err == nil || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestMustBind(t *testing.T) {
	q := &recQ{}
	b := BindFunc[*recQ](func(x Queryer) *recQ { return x.(*recQ) })
	if got := MustBind[*recQ](b, q); got != q {
		t.Fatalf("bound %p want %p", got, q)
	}
	kit.MustPanic(t, func() { MustBind[*recQ](b, nil) })
	kit.MustPanic(t, func() { MustBind[*recQ](nil, q) })
}

type guardFn func(context.Context) error

func (g guardFn) Guard(ctx context.Context) error { return g(ctx) }

func TestMustGuard(t *testing.T) {
	var hadDeadline bool
	MustGuard(context.Background(), guardFn(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))
	if !hadDeadline {
		t.Fatal("MustGuard should add a deadline")
	}
	kit.MustPanic(t, func() {
		MustGuard(context.Background(), guardFn(func(context.Context) error { return errors.New("pg down") }))
	})
}
