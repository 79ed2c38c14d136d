package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		t.Errorf("projects table: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "onepage.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()
	if d.Dialect != SQLite {
		t.Errorf("Dialect = %q, want sqlite", d.Dialect)
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO projects (id, name) VALUES (?, ?)"
	lite := &DB{Dialect: SQLite}
	if got := lite.Rebind(q); got != q {
		t.Errorf("sqlite Rebind = %q", got)
	}
	pg := &DB{Dialect: Postgres}
	want := "INSERT INTO projects (id, name) VALUES ($1, $2)"
	if got := pg.Rebind(q); got != want {
		t.Errorf("postgres Rebind = %q, want %q", got, want)
	}
}
