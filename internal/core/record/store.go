package record

import (
	"context"
	"time"
)

// Store persists spec records. Implementations must treat
// (identifier, version) as the unique key and overwrite on conflict.
type Store interface {
	// Save persists a record, replacing any existing revision with the
	// same identifier and version.
	Save(ctx context.Context, rec *SpecRecord) error

	// Load retrieves one revision.
	Load(ctx context.Context, identifier, version string) (*SpecRecord, error)

	// List returns records matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*SpecRecord, error)

	// Delete removes one revision.
	Delete(ctx context.Context, identifier, version string) error
}

// Filter narrows List queries.
type Filter struct {
	Identifier string     `json:"identifier,omitempty"`
	Catalog    string     `json:"catalog,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
	Since      *time.Time `json:"since,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
}

// Validate ensures filter parameters are usable.
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Latest returns the newest revision of identifier from s.
func Latest(ctx context.Context, s Store, identifier string) (*SpecRecord, error) {
	recs, err := s.List(ctx, Filter{Identifier: identifier, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRecordNotFound
	}
	return recs[0], nil
}
