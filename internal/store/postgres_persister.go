package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresPersister keeps the snapshot as a single JSONB row, for
// deployments where the host filesystem is not durable. The table holds
// exactly one row; every save replaces it. This is still full-snapshot
// persistence, not row-per-entity storage, so the write-through and
// rollback discipline of the Store applies unchanged.
type PostgresPersister struct {
	db *sqlx.DB
}

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS entity_snapshots (
		id SMALLINT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// NewPostgresPersister opens a connection and ensures the snapshot table
// exists.
func NewPostgresPersister(databaseURL string) (*PostgresPersister, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	p := &PostgresPersister{db: db}
	if err := p.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresPersisterWithDB wraps an existing connection, used by tests.
func NewPostgresPersisterWithDB(db *sqlx.DB) *PostgresPersister {
	return &PostgresPersister{db: db}
}

func (p *PostgresPersister) ensureSchema() error {
	if _, err := p.db.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return nil
}

// Load reads the snapshot row, or returns (nil, nil) when none has been
// written yet.
func (p *PostgresPersister) Load() (*Snapshot, error) {
	var data []byte
	err := p.db.Get(&data, `SELECT data FROM entity_snapshots WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot row: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot row: %w", err)
	}
	return &snap, nil
}

// Save replaces the snapshot row.
func (p *PostgresPersister) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = p.db.Exec(`
		INSERT INTO entity_snapshots (id, data, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		data)
	if err != nil {
		return fmt.Errorf("failed to write snapshot row: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}
