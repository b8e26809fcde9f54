package provision

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/verdantio/hadisco/migrations"

	"github.com/verdantio/hadisco/internal/infrastructure/database"
)

func testRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "provision-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func testEntity(objectID string) *Entity {
	now := time.Now().UTC().Truncate(time.Second)
	return &Entity{
		ObjectID:    objectID,
		UniqueID:    "uid-" + objectID,
		ConfigTopic: "homeassistant/sensor/plantsense-01/" + objectID + "/config",
		Payload:     `{"name":"Test"}`,
		AnnouncedAt: now,
		UpdatedAt:   now,
	}
}

func TestRepository_UpsertAndGet(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	want := testEntity("soil_moisture")
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.GetByObjectID(ctx, "soil_moisture")
	if err != nil {
		t.Fatalf("GetByObjectID() error = %v", err)
	}

	if got.UniqueID != want.UniqueID {
		t.Errorf("UniqueID = %q, want %q", got.UniqueID, want.UniqueID)
	}
	if got.ConfigTopic != want.ConfigTopic {
		t.Errorf("ConfigTopic = %q, want %q", got.ConfigTopic, want.ConfigTopic)
	}
	if got.Payload != want.Payload {
		t.Errorf("Payload = %q, want %q", got.Payload, want.Payload)
	}
	if !got.AnnouncedAt.Equal(want.AnnouncedAt) {
		t.Errorf("AnnouncedAt = %v, want %v", got.AnnouncedAt, want.AnnouncedAt)
	}
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := testRepository(t)

	_, err := repo.GetByObjectID(context.Background(), "missing")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("GetByObjectID() error = %v, want ErrEntityNotFound", err)
	}
}

func TestRepository_UpsertPreservesIdentity(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	original := testEntity("battery")
	if err := repo.Upsert(ctx, original); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// A later upsert carries a different unique_id and announced_at; both
	// must be ignored in favour of the stored identity.
	updated := testEntity("battery")
	updated.UniqueID = "uid-regenerated"
	updated.Payload = `{"name":"Changed"}`
	updated.AnnouncedAt = original.AnnouncedAt.Add(time.Hour)
	updated.UpdatedAt = original.UpdatedAt.Add(time.Hour)
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.GetByObjectID(ctx, "battery")
	if err != nil {
		t.Fatalf("GetByObjectID() error = %v", err)
	}
	if got.UniqueID != original.UniqueID {
		t.Errorf("UniqueID = %q after update, want original %q", got.UniqueID, original.UniqueID)
	}
	if !got.AnnouncedAt.Equal(original.AnnouncedAt) {
		t.Errorf("AnnouncedAt = %v after update, want original %v", got.AnnouncedAt, original.AnnouncedAt)
	}
	if got.Payload != `{"name":"Changed"}` {
		t.Errorf("Payload = %q, want updated payload", got.Payload)
	}
	if !got.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updated.UpdatedAt)
	}
}

func TestRepository_UpsertValidation(t *testing.T) {
	repo := testRepository(t)

	err := repo.Upsert(context.Background(), &Entity{ObjectID: "x"})
	if !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("Upsert() error = %v, want ErrInvalidEntity", err)
	}
}

func TestRepository_List(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	for _, id := range []string{"soil_moisture", "battery", "temperature"} {
		if err := repo.Upsert(ctx, testEntity(id)); err != nil {
			t.Fatalf("Upsert(%q) error = %v", id, err)
		}
	}

	entities, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(entities) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(entities))
	}
	// Ordered by object_id.
	if entities[0].ObjectID != "battery" || entities[2].ObjectID != "temperature" {
		t.Errorf("List() order = [%s %s %s], want battery/soil_moisture/temperature",
			entities[0].ObjectID, entities[1].ObjectID, entities[2].ObjectID)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, testEntity("soil_moisture")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.Delete(ctx, "soil_moisture"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.GetByObjectID(ctx, "soil_moisture")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("GetByObjectID() after delete error = %v, want ErrEntityNotFound", err)
	}

	if err := repo.Delete(ctx, "soil_moisture"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("second Delete() error = %v, want ErrEntityNotFound", err)
	}
}
