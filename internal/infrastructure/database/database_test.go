package database

import (
	"context"
	"path/filepath"
	"testing"
)

func testOpen(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	db := testOpen(t)

	if db.Path() == "" {
		t.Error("Path() = empty, want database path")
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(context.Background(), Config{Path: path, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
}

func TestHealthCheck(t *testing.T) {
	db := testOpen(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	db := testOpen(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var nilDB DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on zero DB error = %v", err)
	}
}
