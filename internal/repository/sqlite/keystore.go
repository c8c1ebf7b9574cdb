package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const slotAPIKey = "advisory_api_key"

// KeyStore keeps the advisory API key in a single row of a local SQLite file.
type KeyStore struct {
	db *sql.DB
}

// NewKeyStore opens (or creates) the database at dsn and prepares the slot table.
func NewKeyStore(ctx context.Context, dsn string) (*KeyStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}

	return &KeyStore{db: db}, nil
}

// Load returns the stored key, or "" when the slot is empty.
func (s *KeyStore) Load(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, slotAPIKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load api key: %w", err)
	}
	return value, nil
}

// Save overwrites the slot.
func (s *KeyStore) Save(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, slotAPIKey, key)
	if err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}

// Erase empties the slot.
func (s *KeyStore) Erase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, slotAPIKey); err != nil {
		return fmt.Errorf("erase api key: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *KeyStore) Close() error {
	return s.db.Close()
}
