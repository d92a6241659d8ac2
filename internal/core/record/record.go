// Package record provides the persisted spec-record entity and the storage
// interface the repository adapters implement.
package record

import (
	"time"
)

// SpecRecord is one persisted node-spec revision. Spec holds the wire shape
// produced by NodeSpec.ToDict; Hash is the structural hash of that shape so
// stores can detect identical revisions without decoding the payload.
type SpecRecord struct {
	Identifier string         `json:"identifier"`
	Version    string         `json:"version"`
	Hash       string         `json:"hash"`
	Spec       map[string]any `json:"spec"`
	Metadata   Metadata       `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Metadata carries bookkeeping fields stored alongside a record.
type Metadata struct {
	Catalog   string   `json:"catalog,omitempty"`
	Source    string   `json:"source,omitempty"`
	CreatedBy string   `json:"created_by,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Key returns the composite store key for the record.
func (r *SpecRecord) Key() string {
	return r.Identifier + "@" + r.Version
}

// Validate ensures record integrity before it reaches a store.
func (r *SpecRecord) Validate() error {
	if r.Identifier == "" {
		return ErrInvalidIdentifier
	}
	if r.Version == "" {
		return ErrInvalidVersion
	}
	if r.Spec == nil {
		return ErrNilSpec
	}
	return nil
}
