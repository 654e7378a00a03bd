//go:build postgres

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDB holds a shared store for the suite, initialized once in TestMain.
var testDB struct {
	store     *Store
	container testcontainers.Container
}

// TestMain sets up a PostgreSQL database for tests. It supports two modes:
//  1. DATABASE_URL env var - uses an existing PostgreSQL instance (CI/custom)
//  2. testcontainers-go - automatically starts a PostgreSQL container
func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("learncoach_test"),
			tcpostgres.WithUsername("learncoach"),
			tcpostgres.WithPassword("learncoach"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}
		testDB.container = container

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
			_ = container.Terminate(ctx)
			os.Exit(1)
		}
	}

	store, err := New(connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create store: %v\n", err)
		if testDB.container != nil {
			_ = testDB.container.Terminate(ctx)
		}
		os.Exit(1)
	}
	testDB.store = store

	code := m.Run()

	_ = store.Close()
	if testDB.container != nil {
		_ = testDB.container.Terminate(ctx)
	}

	os.Exit(code)
}

// resetDB clears the blobs table between tests.
func resetDB(t *testing.T) {
	t.Helper()
	if _, err := testDB.store.pool.Exec(context.Background(), "DELETE FROM blobs"); err != nil {
		t.Fatalf("failed to reset blobs table: %v", err)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	st := testDB.store

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	if err := st.Set(ctx, "conversations", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := st.Get(ctx, "conversations")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if val != `[{"id":"1"}]` {
		t.Errorf("value = %q", val)
	}
}

func TestPostgresUpsert(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	st := testDB.store

	if err := st.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	val, _, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "second" {
		t.Errorf("value = %q, want second", val)
	}
}

func TestPostgresRemove(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	st := testDB.store

	if err := st.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "k"); ok {
		t.Fatal("key present after Remove")
	}
	if err := st.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
}

func TestPostgresLargeBlob(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	st := testDB.store

	big := make([]byte, 1<<20)
	for i := range big {
		big[i] = 'a'
	}
	if err := st.Set(ctx, "big", string(big)); err != nil {
		t.Fatalf("Set large blob: %v", err)
	}
	val, ok, err := st.Get(ctx, "big")
	if err != nil || !ok {
		t.Fatalf("Get large blob: ok=%v err=%v", ok, err)
	}
	if len(val) != len(big) {
		t.Errorf("length = %d, want %d", len(val), len(big))
	}
}
