package validation

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/app/dto"
)

// SnapshotRecord wraps the tagged fields checked on every stored snapshot.
type SnapshotRecord struct {
	Name       string `json:"name" validate:"omitempty,node_name"`
	UUID       string `json:"uuid" validate:"required,uuid4"`
	Identifier string `json:"identifier" validate:"required,spec_identifier"`
}

// Snapshot checks a graph snapshot for structural consistency: every link
// endpoint and zone member must name a node present in the snapshot, and
// node identity fields must be well formed.
func Snapshot(s *dto.GraphSnapshot) error {
	var errs ValidationErrors

	for name, node := range s.Nodes {
		rec := SnapshotRecord{Name: name, UUID: node.UUID, Identifier: node.Identifier}
		if err := Struct(rec); err != nil {
			if ve, ok := err.(ValidationErrors); ok {
				errs = append(errs, ve...)
			}
		}
	}

	for _, lk := range s.Links {
		errs = append(errs, checkEndpoint(s, "link.from_node", lk.FromNode)...)
		errs = append(errs, checkEndpoint(s, "link.to_node", lk.ToNode)...)
	}
	for _, lk := range s.CtrlLinks {
		errs = append(errs, checkEndpoint(s, "ctrl_link.from_node", lk.FromNode)...)
		errs = append(errs, checkEndpoint(s, "ctrl_link.to_node", lk.ToNode)...)
	}

	for _, node := range s.Nodes {
		for _, m := range node.Children {
			errs = append(errs, checkEndpoint(s, "children.member", m)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkEndpoint(s *dto.GraphSnapshot, field, name string) ValidationErrors {
	if _, ok := s.Nodes[name]; !ok {
		return ValidationErrors{{
			Field:   field,
			Value:   name,
			Message: fmt.Sprintf("references unknown node %q", name),
		}}
	}
	return nil
}
