package dto

// DiffResult is the outcome of comparing two graph snapshots that share a
// node-naming convention.
type DiffResult struct {
	// Intersection lists node names present in both snapshots.
	Intersection []string `json:"intersection"`
	// AddedNodes lists names only in the second snapshot.
	AddedNodes []string `json:"added_nodes"`
	// RemovedNodes lists names only in the first snapshot.
	RemovedNodes []string `json:"removed_nodes"`
	// ModifiedNodes lists intersection nodes whose identity, property
	// values or input-socket sources differ.
	ModifiedNodes []string `json:"modified_nodes"`
	// MetadataChanged lists intersection nodes whose cosmetic fields
	// (position, description) differ. Never folded into ModifiedNodes.
	MetadataChanged []string `json:"metadata_changed"`
}
