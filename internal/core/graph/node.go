// Package graph provides node definitions
package graph

import (
	"github.com/google/uuid"

	"github.com/scinode/nodegraph/internal/core/property"
	"github.com/scinode/nodegraph/internal/core/spec"
)

// State is the lifecycle state reported to the external execution engine.
// The core never transitions states itself.
type State string

const (
	StateCreated  State = "CREATED"
	StateRunning  State = "RUNNING"
	StateFinished State = "FINISHED"
	StateFailed   State = "FAILED"
	StateSkipped  State = "SKIPPED"
)

// Action is the pending user action carried in the snapshot short form.
type Action string

const (
	ActionNone  Action = ""
	ActionPause Action = "PAUSE"
	ActionReset Action = "RESET"
)

// Node is one computation unit instance, materialized from an immutable
// NodeSpec. The node exclusively owns its socket and property instances; the
// spec is shared by reference.
type Node struct {
	UUID       string
	Name       string
	Identifier string
	NodeType   spec.NodeType
	State      State
	Action     Action
	Spec       *spec.NodeSpec
	Properties map[string]*property.Property
	Inputs     *Socket
	Outputs    *Socket
	// Children lists the nodes grouped under this node when it acts as a
	// control zone.
	Children []string

	// Cosmetic fields: the difference analysis tracks these separately and
	// never counts them as modifications.
	Position    [2]float64
	Description string
}

// NewNode materializes a node from sp: socket instance trees mirror the
// spec's SocketSpecs and every input leaf gets an exclusively-owned property.
func NewNode(name string, sp *spec.NodeSpec) (*Node, error) {
	n := &Node{
		UUID:       uuid.NewString(),
		Name:       name,
		Identifier: sp.Identifier,
		NodeType:   sp.NodeType,
		State:      StateCreated,
		Spec:       sp,
		Properties: make(map[string]*property.Property),
	}
	if n.NodeType == "" {
		n.NodeType = spec.NodeTypeNormal
	}

	var err error
	if n.Inputs, err = materialize(sp.Inputs, "inputs"); err != nil {
		return nil, err
	}
	if n.Outputs, err = materialize(sp.Outputs, "outputs"); err != nil {
		return nil, err
	}
	n.collectProperties(n.Inputs, "")
	return n, nil
}

// collectProperties indexes input leaf properties by their dotted path
// relative to the inputs root.
func (n *Node) collectProperties(s *Socket, prefix string) {
	if s == nil {
		return
	}
	for _, name := range s.ChildNames() {
		c, _ := s.Child(name)
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if c.Property != nil {
			n.Properties[path] = c.Property
		}
		n.collectProperties(c, path)
	}
}

// Property returns the input property at the dotted path.
func (n *Node) Property(path string) (*property.Property, bool) {
	p, ok := n.Properties[path]
	return p, ok
}

// SetProperty assigns the input property at the dotted path, subject to the
// property's own validation.
func (n *Node) SetProperty(path string, v any) error {
	p, ok := n.Properties[path]
	if !ok {
		return ErrPropertyNotFound
	}
	return p.SetValue(v)
}

// resolveSocket walks a dotted socket path from the given root. Dynamic
// namespaces admit unseen keys by materializing the typed child on demand.
func (n *Node) resolveSocket(root *Socket, path string) (*Socket, error) {
	s, created, err := root.resolve(path)
	if err != nil {
		return nil, err
	}
	// A dynamically-created leaf carries a property that must be indexed.
	if created && s.Property != nil && root == n.Inputs {
		n.Properties[path] = s.Property
	}
	return s, nil
}
