// Package postgres provides a spec record store backed by PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/infrastructure/metrics"
	"github.com/scinode/nodegraph/pkg/serialization"
)

// SpecStore implements record.Store on a PostgreSQL connection pool.
type SpecStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewSpecStore wraps pool. A nil serializer falls back to the default
// pipeline.
func NewSpecStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *SpecStore {
	if serializer == nil {
		serializer = serialization.New(serialization.Options{})
	}
	return &SpecStore{
		pool:       pool,
		serializer: serializer,
		tableName:  "spec_records",
	}
}

// Connect opens a pool for dsn and returns a store on it with the schema
// applied.
func Connect(ctx context.Context, dsn string, serializer *serialization.Serializer) (*SpecStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := NewSpecStore(pool, serializer)
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
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
		INSERT INTO %s (identifier, version, hash, spec, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identifier, version) DO UPDATE SET
			hash = EXCLUDED.hash,
			spec = EXCLUDED.spec,
			metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		rec.Identifier, rec.Version, rec.Hash, payload, metadataJSON, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save spec record: %w", err)
	}

	metrics.IncSpecsSaved("postgres")
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
		WHERE identifier = $1 AND version = $2
	`, s.tableName)

	rec, err := s.scanRecord(s.pool.QueryRow(ctx, query, identifier, version))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrRecordNotFound
		}
		return nil, err
	}

	metrics.IncSpecsLoaded("postgres")
	return rec, nil
}

// List returns records matching the filter, newest first.
func (s *SpecStore) List(ctx context.Context, filter record.Filter) ([]*record.SpecRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
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

	query := fmt.Sprintf("DELETE FROM %s WHERE identifier = $1 AND version = $2", s.tableName)
	result, err := s.pool.Exec(ctx, query, identifier, version)
	if err != nil {
		return fmt.Errorf("failed to delete spec record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return record.ErrRecordNotFound
	}

	metrics.IncSpecsDeleted("postgres")
	return nil
}

// CreateTables applies the store schema.
func (s *SpecStore) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			identifier VARCHAR(255) NOT NULL,
			version VARCHAR(50) NOT NULL,
			hash VARCHAR(64) NOT NULL,
			spec BYTEA NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (identifier, version)
		);

		CREATE INDEX IF NOT EXISTS idx_%s_identifier ON %s (identifier);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SpecStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SpecStore) scanRecord(row rowScanner) (*record.SpecRecord, error) {
	var rec record.SpecRecord
	var payload []byte
	var metadataJSON []byte

	if err := row.Scan(&rec.Identifier, &rec.Version, &rec.Hash, &payload, &metadataJSON, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.Spec = make(map[string]any)
	if err := s.serializer.Deserialize(payload, &rec.Spec); err != nil {
		return nil, fmt.Errorf("failed to deserialize spec: %w", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
		}
	}
	return &rec, nil
}

func (s *SpecStore) buildListQuery(filter record.Filter) (string, []any) {
	query := fmt.Sprintf("SELECT identifier, version, hash, spec, metadata, created_at FROM %s WHERE 1=1", s.tableName)
	args := make([]any, 0)
	argCount := 0

	if filter.Identifier != "" {
		argCount++
		query += fmt.Sprintf(" AND identifier = $%d", argCount)
		args = append(args, filter.Identifier)
	}
	if filter.Catalog != "" {
		argCount++
		query += fmt.Sprintf(" AND metadata->>'catalog' = $%d", argCount)
		args = append(args, filter.Catalog)
	}
	if filter.Since != nil {
		argCount++
		query += fmt.Sprintf(" AND created_at > $%d", argCount)
		args = append(args, *filter.Since)
	}
	if filter.Before != nil {
		argCount++
		query += fmt.Sprintf(" AND created_at < $%d", argCount)
		args = append(args, *filter.Before)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		argCount++
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	return query, args
}
