package record

import (
	"time"

	"github.com/scinode/nodegraph/internal/core/spec"
)

// DefaultVersion is assigned to specs that carry no explicit version.
const DefaultVersion = "1.0.0"

// FromSpec builds a record from a node spec, capturing its wire shape and
// structural hash.
func FromSpec(sp *spec.NodeSpec) (*SpecRecord, error) {
	hash, err := sp.Hash()
	if err != nil {
		return nil, err
	}
	version := sp.Version
	if version == "" {
		version = DefaultVersion
	}
	return &SpecRecord{
		Identifier: sp.Identifier,
		Version:    version,
		Hash:       hash,
		Spec:       sp.ToDict(),
		Metadata:   Metadata{Catalog: sp.Catalog},
		CreatedAt:  time.Now(),
	}, nil
}

// ToSpec rebuilds the node spec from the record's wire shape, dispatching
// through reg for non-embedded schema sources.
func (r *SpecRecord) ToSpec(reg spec.Registry) (*spec.NodeSpec, error) {
	return spec.FromDict(r.Spec, reg)
}
