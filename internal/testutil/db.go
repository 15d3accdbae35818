// Package testutil holds helpers shared by Postgres-backed tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-nexus/internal/database"
)

const testDBLockID int64 = 801234568

// TestDBConfig reads connection settings from TEST_DB_* variables, falling
// back to the local-development defaults.
func TestDBConfig() database.Config {
	cfg := database.DefaultConfig()
	cfg.DBName = "eventnexus_test"
	cfg.ConnectAttempts = 1
	if v := os.Getenv("TEST_DB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TEST_DB_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("TEST_DB_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TEST_DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("TEST_DB_NAME"); v != "" {
		cfg.DBName = v
	}
	return cfg
}

// NewTestPool connects to the test database, applies migrations and holds
// an advisory lock for the duration of the test. The test is skipped when
// Postgres is unreachable.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := TestDBConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	poolCfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping Postgres integration tests: %v", err)
	}
	t.Cleanup(pool.Close)

	lockTestDB(t, pool)

	if err := database.Migrate(cfg); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return pool
}

func lockTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire lock conn: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, testDBLockID); err != nil {
		conn.Release()
		t.Fatalf("acquire test lock: %v", err)
	}

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLockID)
		conn.Release()
	})
}
