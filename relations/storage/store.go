// Package storage persists serialized relation maps in SQLite so a model
// indexed in one process run can be reloaded without re-walking its records.
package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
)

// Query constants
const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS relation_maps (
			model_id   TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			indexed_at TIMESTAMP NOT NULL
		)`

	upsertQuery = `
		INSERT INTO relation_maps (model_id, payload, indexed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(model_id) DO UPDATE SET
			payload = excluded.payload,
			indexed_at = excluded.indexed_at`

	selectQuery = `
		SELECT payload, indexed_at FROM relation_maps WHERE model_id = ?`

	deleteQuery = `
		DELETE FROM relation_maps WHERE model_id = ?`

	listQuery = `
		SELECT model_id, indexed_at FROM relation_maps ORDER BY model_id`
)

// ErrNotFound is returned by Load when no map is stored for a model.
var ErrNotFound = errors.New("no stored relation map for model")

// Store reads and writes serialized relation maps.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewStore creates a store over db, creating the backing table if needed.
func NewStore(db *sql.DB, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = logger.Logger
	}
	if _, err := db.Exec(createTableQuery); err != nil {
		return nil, errors.Wrap(err, "creating relation_maps table")
	}
	return &Store{db: db, log: log.Named("relations.storage")}, nil
}

// Save persists a model's relation map, replacing any previous version.
func (s *Store) Save(ctx context.Context, modelID string, rel relations.ModelRelations) error {
	payload := relations.Serialize(rel)
	if _, err := s.db.ExecContext(ctx, upsertQuery, modelID, payload, time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "saving relation map for model %q", modelID)
	}
	s.log.Debugw("relation map saved",
		logger.FieldModelID, modelID,
		logger.FieldCount, len(rel),
	)
	return nil
}

// Load returns a model's stored relation map. Returns ErrNotFound when the
// model has never been saved.
func (s *Store) Load(ctx context.Context, modelID string) (relations.ModelRelations, error) {
	var payload string
	var indexedAt time.Time
	err := s.db.QueryRowContext(ctx, selectQuery, modelID).Scan(&payload, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "model %q", modelID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading relation map for model %q", modelID)
	}
	rel, err := relations.Deserialize(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "stored relation map for model %q is corrupt", modelID)
	}
	return rel, nil
}

// Delete drops a model's stored relation map. Deleting an absent model is
// not an error.
func (s *Store) Delete(ctx context.Context, modelID string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, modelID); err != nil {
		return errors.Wrapf(err, "deleting relation map for model %q", modelID)
	}
	return nil
}

// StoredModel describes one persisted relation map.
type StoredModel struct {
	ModelID   string
	IndexedAt time.Time
}

// List returns the persisted models in model-ID order.
func (s *Store) List(ctx context.Context) ([]StoredModel, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, errors.Wrap(err, "listing relation maps")
	}
	defer rows.Close()

	var out []StoredModel
	for rows.Next() {
		var sm StoredModel
		if err := rows.Scan(&sm.ModelID, &sm.IndexedAt); err != nil {
			return nil, errors.Wrap(err, "scanning relation map row")
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
