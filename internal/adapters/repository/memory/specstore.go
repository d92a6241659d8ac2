// Package memory provides a thread-safe in-memory spec record store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/infrastructure/metrics"
	"github.com/scinode/nodegraph/pkg/serialization"
)

// SpecStore implements record.Store with an in-memory map. Records are held
// serialized so loads return independent copies and every stored payload is
// proven round-trippable at save time.
type SpecStore struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	serializer *serialization.Serializer
}

type entry struct {
	identifier string
	version    string
	hash       string
	payload    []byte
	metadata   record.Metadata
	createdAt  time.Time
}

// NewSpecStore creates an empty store. A nil serializer falls back to the
// default pipeline.
func NewSpecStore(serializer *serialization.Serializer) *SpecStore {
	if serializer == nil {
		serializer = serialization.New(serialization.Options{})
	}
	return &SpecStore{
		entries:    make(map[string]*entry),
		serializer: serializer,
	}
}

// Save stores a record, replacing any revision with the same key.
func (s *SpecStore) Save(_ context.Context, rec *record.SpecRecord) error {
	if rec == nil {
		return record.ErrInvalidIdentifier
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	payload, err := s.serializer.Serialize(rec.Spec)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	s.mu.Lock()
	s.entries[rec.Key()] = &entry{
		identifier: rec.Identifier,
		version:    rec.Version,
		hash:       rec.Hash,
		payload:    payload,
		metadata:   rec.Metadata,
		createdAt:  createdAt,
	}
	s.mu.Unlock()

	metrics.IncSpecsSaved("memory")
	return nil
}

// Load retrieves one revision.
func (s *SpecStore) Load(_ context.Context, identifier, version string) (*record.SpecRecord, error) {
	if identifier == "" {
		return nil, record.ErrInvalidIdentifier
	}
	if version == "" {
		return nil, record.ErrInvalidVersion
	}

	s.mu.RLock()
	e, ok := s.entries[identifier+"@"+version]
	s.mu.RUnlock()
	if !ok {
		return nil, record.ErrRecordNotFound
	}

	rec, err := s.decode(e)
	if err != nil {
		return nil, err
	}
	metrics.IncSpecsLoaded("memory")
	return rec, nil
}

// List returns records matching the filter, newest first.
func (s *SpecStore) List(_ context.Context, filter record.Filter) ([]*record.SpecRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Identifier != "" && e.identifier != filter.Identifier {
			continue
		}
		if filter.Catalog != "" && e.metadata.Catalog != filter.Catalog {
			continue
		}
		if filter.Since != nil && !e.createdAt.After(*filter.Since) {
			continue
		}
		if filter.Before != nil && !e.createdAt.Before(*filter.Before) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].identifier+"@"+matched[i].version > matched[j].identifier+"@"+matched[j].version
		}
		return matched[i].createdAt.After(matched[j].createdAt)
	})
	matched = paginate(matched, filter.Offset, filter.Limit)

	out := make([]*record.SpecRecord, 0, len(matched))
	for _, e := range matched {
		rec, err := s.decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes one revision.
func (s *SpecStore) Delete(_ context.Context, identifier, version string) error {
	if identifier == "" {
		return record.ErrInvalidIdentifier
	}
	if version == "" {
		return record.ErrInvalidVersion
	}

	key := identifier + "@" + version
	s.mu.Lock()
	_, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if !ok {
		return record.ErrRecordNotFound
	}
	metrics.IncSpecsDeleted("memory")
	return nil
}

// Len reports the number of stored revisions.
func (s *SpecStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *SpecStore) decode(e *entry) (*record.SpecRecord, error) {
	spec := make(map[string]any)
	if err := s.serializer.Deserialize(e.payload, &spec); err != nil {
		return nil, err
	}
	return &record.SpecRecord{
		Identifier: e.identifier,
		Version:    e.version,
		Hash:       e.hash,
		Spec:       spec,
		Metadata:   e.metadata,
		CreatedAt:  e.createdAt,
	}, nil
}

func paginate(entries []*entry, offset, limit int) []*entry {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
