package ch

import (
	"context"
	"errors"
	"testing"

	"rategrid/internal/platform/testkit"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// TestOpen_BadDSN fails before dialing
func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("Open expected parse error")
	}
}

// TestOpen_DialError surfaces the driver open error
func TestOpen_DialError(t *testing.T) {
	testkit.Serial(t)

	boom := errors.New("boom")
	var got *clickhouse.Options
	testkit.Swap(t, &openConn, func(o *clickhouse.Options) (driver.Conn, error) {
		got = o
		return nil, boom
	})

	_, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/audit", ClientName: "rategrid", ClientTag: "api"})
	if !errors.Is(err, boom) {
		t.Fatalf("Open err = %v, want wrapped boom", err)
	}
	if got == nil || got.DialTimeout != dialTimeout {
		t.Fatalf("options not forwarded: %+v", got)
	}
	if len(got.ClientInfo.Products) == 0 || got.ClientInfo.Products[0].Name != "rategrid" {
		t.Fatalf("client info not set: %+v", got.ClientInfo)
	}
}

// TestInsert_Shape rejects anything but [][]any
func TestInsert_Shape(t *testing.T) {
	t.Parallel()

	cl := &CH{}
	if err := cl.Insert(context.Background(), "table", struct{}{}); err == nil {
		t.Fatalf("Insert expected shape error")
	}
	if err := cl.Insert(context.Background(), "table", [][]any{{1}}); !errors.Is(err, errNilConn) {
		t.Fatalf("Insert on nil conn = %v", err)
	}
}

// TestNilConn guards every call
func TestNilConn(t *testing.T) {
	t.Parallel()

	var cl *CH
	if _, err := cl.Query(context.Background(), "SELECT 1"); !errors.Is(err, errNilConn) {
		t.Fatalf("Query = %v", err)
	}
	if err := cl.Ping(context.Background()); !errors.Is(err, errNilConn) {
		t.Fatalf("Ping = %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}
}

func TestBuildClientInfo(t *testing.T) {
	t.Parallel()

	ci := BuildClientInfo(" ", "bulk")
	if len(ci.Products) != 3 {
		t.Fatalf("products = %+v", ci.Products)
	}
	if p := ci.Products[0]; p.Name != "unknown" || p.Version != "bulk" {
		t.Fatalf("first product = %+v", p)
	}
	if ci.Products[1].Name != "build" || ci.Products[1].Version == "" {
		t.Fatalf("build product = %+v", ci.Products[1])
	}
}
