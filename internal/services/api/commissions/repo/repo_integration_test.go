//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/store"

	"github.com/shopspring/decimal"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
}

func TestPG_Integration_CommissionRoundTrip(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2}})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	if err := EnsureSchema(ctx, st.PG); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := EnsureSchema(ctx, st.PG); err != nil {
		t.Fatalf("schema is not idempotent: %v", err)
	}

	r := NewPG().Bind(st.PG)
	a, err := r.Insert(ctx, RowCommission{ProductID: "p1", PremiumTerm: "10yr", Role: 3, Year: 1, Rate: "7.125"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	// duplicate slot is accepted
	if _, err := r.Insert(ctx, RowCommission{ProductID: "p1", PremiumTerm: "10yr", Role: 3, Year: 1, Rate: "1"}); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if _, err := r.Insert(ctx, RowCommission{ProductID: "p1", PremiumTerm: "10yr", Role: 3, Year: 1, Rate: "101"}); err == nil {
		t.Fatalf("rate above 100 accepted")
	}

	rows, err := r.List(ctx, "p1")
	if err != nil || len(rows) != 2 {
		t.Fatalf("list = %+v, %v", rows, err)
	}
	if !decimal.RequireFromString(rows[0].Rate).Equal(decimal.RequireFromString("7.125")) {
		t.Fatalf("rate = %s", rows[0].Rate)
	}

	up, err := r.UpdateRate(ctx, a.ID, "8.5")
	if err != nil || !decimal.RequireFromString(up.Rate).Equal(decimal.RequireFromString("8.5")) {
		t.Fatalf("update = %+v, %v", up, err)
	}
	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := r.Get(ctx, "not-a-uuid"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("get bad id err = %v", err)
	}
}
