// Package graph provides the mutable graph instance model: nodes materialized
// from specs, socket instance trees with bound properties, and the data and
// control links connecting them. A graph instance is exclusively owned by
// whichever component is mutating it; analyses operate on snapshots instead.
package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scinode/nodegraph/internal/core/spec"
)

// Graph is one graph instance. Node insertion order is significant: it
// defines the stable integer indices the analysis layer assigns.
type Graph struct {
	UUID      string
	Name      string
	Links     []*Link
	CtrlLinks []*Link
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time

	nodes map[string]*Node
	order []string
}

// New creates an empty graph with a fresh uuid.
func New(name string) *Graph {
	now := time.Now()
	return &Graph{
		UUID:      uuid.NewString(),
		Name:      name,
		nodes:     make(map[string]*Node),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode materializes a node from the given spec and inserts it under name.
// Names must be unique within the graph and contain only letters, digits and
// underscore.
func (g *Graph) AddNode(name string, sp *spec.NodeSpec) (*Node, error) {
	if sp == nil {
		return nil, ErrNilSpec
	}
	if !validNodeName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNodeName, name)
	}
	if _, exists := g.nodes[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	n, err := NewNode(name, sp)
	if err != nil {
		return nil, err
	}
	g.nodes[name] = n
	g.order = append(g.order, name)
	g.UpdatedAt = time.Now()
	return n, nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// NodeNames returns node names in insertion order.
func (g *Graph) NodeNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.order)
}

// AddLink connects an output socket to an input socket with a data edge. Both
// endpoints must exist; linking into a dynamic namespace creates the typed
// child socket on demand.
func (g *Graph) AddLink(fromNode, fromSocket, toNode, toSocket string) (*Link, error) {
	l := &Link{FromNode: fromNode, FromSocket: fromSocket, ToNode: toNode, ToSocket: toSocket}
	if err := g.checkLink(l, true); err != nil {
		return nil, err
	}
	g.Links = append(g.Links, l)
	g.UpdatedAt = time.Now()
	return l, nil
}

// AddControlLink connects a control-output branch to a control input. Control
// links carry ordering only, never data; their socket names are branch names
// ("exit", "true", "iter", "stop", ...) and are not part of the data socket
// trees.
func (g *Graph) AddControlLink(fromNode, fromSocket, toNode, toSocket string) (*Link, error) {
	l := &Link{FromNode: fromNode, FromSocket: fromSocket, ToNode: toNode, ToSocket: toSocket}
	if err := g.checkLink(l, false); err != nil {
		return nil, err
	}
	g.CtrlLinks = append(g.CtrlLinks, l)
	g.UpdatedAt = time.Now()
	return l, nil
}

func (g *Graph) checkLink(l *Link, data bool) error {
	if err := l.Validate(); err != nil {
		return err
	}
	from, ok := g.nodes[l.FromNode]
	if !ok {
		return fmt.Errorf("%w: link source %q", ErrNodeNotFound, l.FromNode)
	}
	to, ok := g.nodes[l.ToNode]
	if !ok {
		return fmt.Errorf("%w: link target %q", ErrNodeNotFound, l.ToNode)
	}
	if !data {
		return nil
	}
	if _, err := from.resolveSocket(from.Outputs, l.FromSocket); err != nil {
		return err
	}
	toSock, err := to.resolveSocket(to.Inputs, l.ToSocket)
	if err != nil {
		return err
	}
	if toSock.LinkLimit > 0 && g.countIncoming(l.ToNode, l.ToSocket) >= toSock.LinkLimit {
		return fmt.Errorf("%w: socket %s.%s", ErrLinkLimitExceeded, l.ToNode, l.ToSocket)
	}
	return nil
}

func (g *Graph) countIncoming(nodeName, socketName string) int {
	n := 0
	for _, l := range g.Links {
		if l.ToNode == nodeName && l.ToSocket == socketName {
			n++
		}
	}
	return n
}

// validNodeName accepts letters, digits and underscore only; anything else
// would break the dotted socket addressing used by links.
func validNodeName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
