package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"column/internal/domain"
)

// TableStore implements domain.KeyValue over one name/payload table.
type TableStore struct {
	db    *DB
	table string
}

// NewDocumentStore returns the store serialized columns are kept in.
// Closing it closes db.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{TableStore{db: db, table: tableDocuments}}
}

// NewSettingsStore returns the app_settings key/value table.
func NewSettingsStore(db *DB) *TableStore {
	return &TableStore{db: db, table: tableSettings}
}

func (s *TableStore) Load(ctx context.Context, key string) (string, bool, error) {
	var payload string
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.rebind(`SELECT payload FROM `+s.table+` WHERE name = ?`), key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s %q: %w", s.table, key, err)
	}
	return payload, true, nil
}

func (s *TableStore) Save(ctx context.Context, key, payload string) error {
	_, err := s.db.Conn().ExecContext(ctx, s.db.upsertQuery(s.table), key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s %q: %w", s.table, key, err)
	}
	return nil
}

// DocumentStore implements domain.DocumentStore on a SQL database.
type DocumentStore struct {
	TableStore
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

func (s *DocumentStore) Close() error {
	return s.db.Close()
}
