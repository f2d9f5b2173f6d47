package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`
	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite should keep placeholders, got %s", got)
	}
	want := `SELECT a FROM t WHERE x = $1 AND y = $2`
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestModeFromEnv(t *testing.T) {
	cases := map[string]string{
		"":         ModeLocal,
		"sqlite":   ModeLocal,
		"Postgres": ModeDB,
		"mem":      ModeMemory,
		"redis":    "redis",
	}
	for raw, want := range cases {
		t.Setenv("STORE_MODE", raw)
		if got := ModeFromEnv(); got != want {
			t.Fatalf("STORE_MODE=%q: got %s want %s", raw, got, want)
		}
	}
	if _, err := OpenFromEnv("redis"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestSQLiteStringListAndUnique(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "s.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, []string{
		`CREATE TABLE items (name TEXT PRIMARY KEY, tags TEXT NOT NULL)`,
	}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	in := []string{"decrease", "dynamic"}
	if _, err := db.ExecContext(ctx, `INSERT INTO items (name, tags) VALUES (?, ?)`, "a", db.Dialect.StringList(in)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO items (name, tags) VALUES (?, ?)`, "a", db.Dialect.StringList(nil))
	if !db.Dialect.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	var out []string
	if err := db.QueryRowContext(ctx, `SELECT tags FROM items WHERE name = ?`, "a").Scan(db.Dialect.ScanStringList(&out)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}
