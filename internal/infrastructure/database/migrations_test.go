package database

import (
	"context"
	"embed"
	"testing"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// withTestMigrations points the package-level migration source at the testdata
// files for the duration of a test.
func withTestMigrations(t *testing.T) {
	t.Helper()
	savedFS, savedDir := MigrationsFS, MigrationsDir
	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata"
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = savedFS, savedDir
	})
}

func TestMigrate(t *testing.T) {
	withTestMigrations(t)
	db := testOpen(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Both migrations applied in version order: table exists with the column
	// added by the second migration.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO widgets (id, name, colour) VALUES (?, ?, ?)", "w1", "widget", "green",
	); err != nil {
		t.Fatalf("inserting into migrated table: %v", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("len(applied) = %d, want 2", len(applied))
	}
	if applied[0].Version != "20260101_000000" {
		t.Errorf("applied[0].Version = %q, want %q", applied[0].Version, "20260101_000000")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	withTestMigrations(t)
	db := testOpen(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("len(applied) = %d after re-run, want 2", len(applied))
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	// Package default state: no embedded FS registered.
	saved := MigrationsFS
	var empty embed.FS
	MigrationsFS = empty
	t.Cleanup(func() { MigrationsFS = saved })

	db := testOpen(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("Migrate() with no migrations error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantDesc    string
		wantUp      bool
		wantOK      bool
	}{
		{
			name:        "up migration",
			filename:    "20260815_120000_create_announced_entities.up.sql",
			wantVersion: "20260815_120000",
			wantDesc:    "create_announced_entities",
			wantUp:      true,
			wantOK:      true,
		},
		{
			name:        "down migration",
			filename:    "20260815_120000_create_announced_entities.down.sql",
			wantVersion: "20260815_120000",
			wantDesc:    "create_announced_entities",
			wantUp:      false,
			wantOK:      true,
		},
		{
			name:     "not sql",
			filename: "README.md",
			wantOK:   false,
		},
		{
			name:     "missing direction suffix",
			filename: "20260815_120000_create.sql",
			wantOK:   false,
		},
		{
			name:     "too few parts",
			filename: "20260815.up.sql",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, desc, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("parseMigrationFilename(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if desc != tt.wantDesc {
				t.Errorf("desc = %q, want %q", desc, tt.wantDesc)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}
