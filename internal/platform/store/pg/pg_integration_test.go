//go:build integration_pg

package pg

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres boots a throwaway postgres and returns its DSN
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "mine",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/mine?sslmode=disable", host, port.Port())
}

func TestReadOnlyTransactionRejectsWrites(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	p, err := Open(ctx, Config{URL: dsn, AppName: "opsroute-test", MaxConns: 2}, nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(p.Close)

	if _, err := p.Pool.Exec(ctx, `CREATE TABLE production_data (date date, shift text, equipment_id text, tonnage numeric)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := p.Pool.Exec(ctx, `INSERT INTO production_data VALUES ('2024-04-02','A','BB-001',812.5)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM production_data WHERE shift = 'A'`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("read in ro tx: n=%d err=%v", n, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM production_data`); err == nil {
		t.Fatalf("write inside read-only tx should fail")
	}

	var app string
	if err := p.Pool.QueryRow(ctx, `SHOW application_name`).Scan(&app); err != nil || app != "opsroute-test" {
		t.Fatalf("application_name = %q err=%v", app, err)
	}
}
