package migrate_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/taskpulse/internal/migrate"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSplitSQL(t *testing.T) {
	got := migrate.SplitSQL("CREATE TABLE a (x INT);\n\n  DROP TABLE b ;  ;\n")
	want := []string{"CREATE TABLE a (x INT)", "DROP TABLE b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	all, err := migrate.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if all[0].Version != 1 || all[0].Name != "counter_store" || all[0].DownSQL == "" {
		t.Errorf("unexpected first migration: %+v", all[0])
	}
}

func TestLoadFS_SortsAndPairsDown(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":   {Data: []byte("CREATE TABLE b (x INT)")},
		"001_first.up.sql":    {Data: []byte("CREATE TABLE a (x INT)")},
		"001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"README.md":           {Data: []byte("ignored")},
		"003_broken.down.sql": {Data: []byte("ignored without up")},
	}

	all, err := migrate.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(all))
	}
	if all[0].Version != 1 || all[0].DownSQL != "DROP TABLE a" {
		t.Errorf("unexpected first migration: %+v", all[0])
	}
	if all[1].Version != 2 || all[1].DownSQL != "" {
		t.Errorf("unexpected second migration: %+v", all[1])
	}
}

func TestTo_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	all := []migrate.Migration{
		{Version: 1, Name: "first", UpSQL: "CREATE TABLE a (x INT)", DownSQL: "DROP TABLE a"},
		{Version: 2, Name: "second", UpSQL: "CREATE TABLE b (x INT)", DownSQL: "DROP TABLE b"},
	}

	version, err := migrate.To(ctx, db, all, -1)
	if err != nil {
		t.Fatalf("To latest failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO b (x) VALUES (1)"); err != nil {
		t.Errorf("table b missing: %v", err)
	}

	version, err = migrate.To(ctx, db, all, 0)
	if err != nil {
		t.Fatalf("To 0 failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO a (x) VALUES (1)"); err == nil {
		t.Error("expected table a to be dropped")
	}

	current, dirty, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if current != 0 || dirty {
		t.Errorf("expected clean version 0, got %d dirty=%v", current, dirty)
	}
}

func TestTo_FailureLeavesDirty(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	all := []migrate.Migration{
		{Version: 1, Name: "broken", UpSQL: "CREATE TABLE"},
	}

	if _, err := migrate.To(ctx, db, all, -1); err == nil {
		t.Fatal("expected migration error")
	}

	current, dirty, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if current != 1 || !dirty {
		t.Errorf("expected dirty version 1, got %d dirty=%v", current, dirty)
	}

	if _, err := migrate.To(ctx, db, all, -1); err == nil {
		t.Error("expected dirty database to be refused")
	}
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	// Idempotent.
	if err := migrate.RunAll(ctx, db); err != nil {
		t.Fatalf("second RunAll failed: %v", err)
	}

	for _, table := range []string{"counters", "ranked_members", "hash_fields"} {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
