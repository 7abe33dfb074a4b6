// Package testdb provides database helpers for postgres integration tests.
// Tests using it are gated on the DATABASE_URL environment variable and skip
// when it is unset, so the unit suite stays runnable without a database.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

// EnvVar names the environment variable holding the test database URL.
const EnvVar = "DATABASE_URL"

// New opens a connection to the test database and applies migrations,
// skipping the test when DATABASE_URL is unset. The connection closes with
// the test.
func New(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(EnvVar)
	if url == "" {
		t.Skipf("%s not set; skipping postgres integration test", EnvVar)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	if err := postgres.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// Reset truncates all application tables so each test starts from a clean
// slate. Order does not matter because of CASCADE.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE sub_tasks, user_tasks, task_members, tasks, users CASCADE`)
	if err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}
}
