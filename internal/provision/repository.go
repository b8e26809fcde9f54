package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entity is one announced discovery entity.
type Entity struct {
	// ObjectID is the manifest's per-device entity identifier.
	ObjectID string

	// UniqueID is the identifier Home Assistant keys entity registry history
	// on. Minted once, never regenerated.
	UniqueID string

	// ConfigTopic is the discovery topic the config payload was published to.
	// Stored so cleanup works even if the discovery prefix changes between
	// runs.
	ConfigTopic string

	// Payload is the last published config payload.
	Payload string

	// AnnouncedAt is when the entity was first announced.
	AnnouncedAt time.Time

	// UpdatedAt is when the payload last changed.
	UpdatedAt time.Time
}

// Repository defines the interface for announced-entity persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByObjectID retrieves an announced entity by its object ID.
	// Returns ErrEntityNotFound if the entity does not exist.
	GetByObjectID(ctx context.Context, objectID string) (*Entity, error)

	// List retrieves all announced entities ordered by object ID.
	List(ctx context.Context) ([]Entity, error)

	// Upsert inserts an entity or, if the object ID already exists, updates
	// its config topic, payload and updated_at. UniqueID and AnnouncedAt are
	// never overwritten by an update.
	Upsert(ctx context.Context, entity *Entity) error

	// Delete removes an entity by object ID.
	// Returns ErrEntityNotFound if the entity does not exist.
	Delete(ctx context.Context, objectID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the
// announced_entities table migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByObjectID retrieves an announced entity by its object ID.
func (r *SQLiteRepository) GetByObjectID(ctx context.Context, objectID string) (*Entity, error) {
	query := `
		SELECT object_id, unique_id, config_topic, payload, announced_at, updated_at
		FROM announced_entities
		WHERE object_id = ?`

	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, objectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("querying entity by object_id: %w", err)
	}
	return entity, nil
}

// List retrieves all announced entities ordered by object ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entity, error) {
	query := `
		SELECT object_id, unique_id, config_topic, payload, announced_at, updated_at
		FROM announced_entities
		ORDER BY object_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		entities = append(entities, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

// Upsert inserts or updates an announced entity.
func (r *SQLiteRepository) Upsert(ctx context.Context, entity *Entity) error {
	if entity.ObjectID == "" || entity.UniqueID == "" {
		return fmt.Errorf("%w: object_id and unique_id are required", ErrInvalidEntity)
	}

	query := `
		INSERT INTO announced_entities (object_id, unique_id, config_topic, payload, announced_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(object_id) DO UPDATE SET
			config_topic = excluded.config_topic,
			payload      = excluded.payload,
			updated_at   = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		entity.ObjectID,
		entity.UniqueID,
		entity.ConfigTopic,
		entity.Payload,
		entity.AnnouncedAt.UTC().Format(time.RFC3339),
		entity.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting entity: %w", err)
	}
	return nil
}

// Delete removes an entity by object ID.
func (r *SQLiteRepository) Delete(ctx context.Context, objectID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM announced_entities WHERE object_id = ?", objectID)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanEntity.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntity scans one announced_entities row.
func scanEntity(row scanner) (*Entity, error) {
	var e Entity
	var announcedAt, updatedAt string

	if err := row.Scan(&e.ObjectID, &e.UniqueID, &e.ConfigTopic, &e.Payload, &announcedAt, &updatedAt); err != nil {
		return nil, err
	}

	// Timestamps are written by us in RFC3339; parse errors mean a corrupt
	// row, surface them.
	var err error
	if e.AnnouncedAt, err = time.Parse(time.RFC3339, announcedAt); err != nil {
		return nil, fmt.Errorf("parsing announced_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &e, nil
}
