// Package sqlite provides a spec record store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/infrastructure/metrics"
	"github.com/scinode/nodegraph/pkg/serialization"
)

// SpecStore implements record.Store on a SQLite database.
type SpecStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewSpecStore wraps db. A nil serializer falls back to the default pipeline.
func NewSpecStore(db *sql.DB, serializer *serialization.Serializer) *SpecStore {
	if serializer == nil {
		serializer = serialization.New(serialization.Options{})
	}
	return &SpecStore{
		db:         db,
		serializer: serializer,
		tableName:  "spec_records",
	}
}

// Open opens (or creates) a SQLite database at path and returns a store on
// it with the schema applied. Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, path string, serializer *serialization.Serializer) (*SpecStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s := NewSpecStore(db, serializer)
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// WithTableName overrides the default table name. Only letters, digits and
// underscore are permitted, since table names cannot be bound as parameters.
func (s *SpecStore) WithTableName(name string) *SpecStore {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Save stores a record, replacing any revision with the same key.
func (s *SpecStore) Save(ctx context.Context, rec *record.SpecRecord) error {
	if rec == nil {
		return record.ErrInvalidIdentifier
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	payload, err := s.serializer.Serialize(rec.Spec)
	if err != nil {
		return fmt.Errorf("failed to serialize spec: %w", err)
	}
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (identifier, version, hash, spec, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		rec.Identifier, rec.Version, rec.Hash, payload, string(metadataJSON), createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save spec record: %w", err)
	}

	metrics.IncSpecsSaved("sqlite")
	return nil
}

// Load retrieves one revision.
func (s *SpecStore) Load(ctx context.Context, identifier, version string) (*record.SpecRecord, error) {
	if identifier == "" {
		return nil, record.ErrInvalidIdentifier
	}
	if version == "" {
		return nil, record.ErrInvalidVersion
	}

	query := fmt.Sprintf(`
		SELECT identifier, version, hash, spec, metadata, created_at
		FROM %s
		WHERE identifier = ? AND version = ?
	`, s.tableName)

	rec, err := s.scanRecord(s.db.QueryRowContext(ctx, query, identifier, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, record.ErrRecordNotFound
		}
		return nil, err
	}

	metrics.IncSpecsLoaded("sqlite")
	return rec, nil
}

// List returns records matching the filter, newest first.
func (s *SpecStore) List(ctx context.Context, filter record.Filter) ([]*record.SpecRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list spec records: %w", err)
	}
	defer rows.Close()

	var out []*record.SpecRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes one revision.
func (s *SpecStore) Delete(ctx context.Context, identifier, version string) error {
	if identifier == "" {
		return record.ErrInvalidIdentifier
	}
	if version == "" {
		return record.ErrInvalidVersion
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE identifier = ? AND version = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, identifier, version)
	if err != nil {
		return fmt.Errorf("failed to delete spec record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return record.ErrRecordNotFound
	}

	metrics.IncSpecsDeleted("sqlite")
	return nil
}

// CreateTables applies the store schema.
func (s *SpecStore) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			identifier TEXT NOT NULL,
			version TEXT NOT NULL,
			hash TEXT NOT NULL,
			spec BLOB NOT NULL,
			metadata TEXT,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (identifier, version)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_identifier ON %s (identifier);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SpecStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SpecStore) scanRecord(row rowScanner) (*record.SpecRecord, error) {
	var rec record.SpecRecord
	var payload []byte
	var metadataJSON string
	var createdAt int64

	if err := row.Scan(&rec.Identifier, &rec.Version, &rec.Hash, &payload, &metadataJSON, &createdAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdAt)

	rec.Spec = make(map[string]any)
	if err := s.serializer.Deserialize(payload, &rec.Spec); err != nil {
		return nil, fmt.Errorf("failed to deserialize spec: %w", err)
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
		}
	}
	return &rec, nil
}

func (s *SpecStore) buildListQuery(filter record.Filter) (string, []any) {
	query := fmt.Sprintf("SELECT identifier, version, hash, spec, metadata, created_at FROM %s WHERE 1=1", s.tableName)
	args := make([]any, 0)

	if filter.Identifier != "" {
		query += " AND identifier = ?"
		args = append(args, filter.Identifier)
	}
	if filter.Catalog != "" {
		query += " AND json_extract(metadata, '$.catalog') = ?"
		args = append(args, filter.Catalog)
	}
	if filter.Since != nil {
		query += " AND created_at > ?"
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Before != nil {
		query += " AND created_at < ?"
		args = append(args, filter.Before.UnixNano())
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}
