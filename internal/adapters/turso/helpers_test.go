package turso_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/taskpulse/internal/migrate"
)

// testDB opens a file-backed libsql database with all migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// A single writer keeps SQLite from reporting "database is locked".
	db.SetMaxOpenConns(1)

	if err := migrate.RunAll(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testServerDB starts a libsql-server container. It is slow and needs a
// Docker daemon, so it only runs with TASKPULSE_INTEGRATION=1.
func testServerDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("TASKPULSE_INTEGRATION") != "1" {
		t.Skip("set TASKPULSE_INTEGRATION=1 to run against libsql-server")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/tursodatabase/libsql-server:latest",
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start libsql-server container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "8080")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}

	db, err := sql.Open("libsql", fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		t.Fatalf("Failed to connect to libsql-server: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping libsql-server: %v", err)
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}
