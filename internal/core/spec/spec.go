// Package spec provides the serializable, versioned description of a node:
// its identifier, socket interface, executor and error-handler table. A spec
// is an immutable value object shared by reference across every node
// instantiated from it, so it must outlive those nodes.
package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/scinode/nodegraph/internal/core/executor"
	"github.com/scinode/nodegraph/internal/core/socket"
)

// SchemaSource selects how a spec's schema is persisted: embedded fully in
// the payload, or recovered by resolving a handle, callable or base class.
type SchemaSource string

const (
	SourceEmbedded SchemaSource = "embedded"
	SourceHandle   SchemaSource = "handle"
	SourceCallable SchemaSource = "callable"
	SourceClass    SchemaSource = "class"
)

// NodeType classifies the node a spec describes.
type NodeType string

const (
	NodeTypeNormal NodeType = "Normal"
	NodeTypeGroup  NodeType = "Group"
	NodeTypeGraph  NodeType = "Graph"
)

// ErrorHandlerSpec describes one error handler attached to a node. It is
// advisory data for the external execution engine; the core never retries.
type ErrorHandlerSpec struct {
	Executor   *executor.Executor
	ExitCodes  []int
	MaxRetries int
	Retry      int
	Kwargs     map[string]any
}

// NodeSpec describes a node's identity, interface and executor.
type NodeSpec struct {
	Identifier    string
	SchemaSource  SchemaSource
	NodeType      NodeType
	Catalog       string
	Inputs        *socket.Spec
	Outputs       *socket.Spec
	Executor      *executor.Executor
	ErrorHandlers map[string]ErrorHandlerSpec
	Metadata      map[string]any
	BaseClassPath string
	Version       string
}

// New creates an embedded-schema spec with the given identifier. Identifiers
// may contain only letters, digits and underscore.
func New(identifier string) (*NodeSpec, error) {
	if !ValidIdentifier(identifier) {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("invalid identifier %q: only letters, digits and underscore are allowed", identifier)}
	}
	return &NodeSpec{
		Identifier:   identifier,
		SchemaSource: SourceEmbedded,
		NodeType:     NodeTypeNormal,
	}, nil
}

// ValidIdentifier reports whether the identifier contains only letters,
// digits and underscore.
func ValidIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

// Class is the collaborator contract for spec base classes: each class
// declares a default spec and can rebuild a spec by introspecting a callable
// registered at the language boundary.
type Class interface {
	DefaultSpec() *NodeSpec
	SpecFromCallable(identifier string, c executor.Callable) (*NodeSpec, error)
}

// Registry is the dependency-injected collaborator specs resolve through. It
// extends the executor resolver with base-class lookup.
type Registry interface {
	executor.Resolver
	ResolveClass(path string) (Class, error)
}

// Handle wraps a spec around the callable it decorates, so the spec is
// recoverable from the callable across process boundaries. It satisfies
// executor.SpecHandle.
type Handle struct {
	spec *NodeSpec
	fn   executor.Callable
}

// NewHandle binds a spec to the callable it describes.
func NewHandle(s *NodeSpec, fn executor.Callable) *Handle {
	return &Handle{spec: s, fn: fn}
}

// Spec returns the wrapped spec itself, not a copy.
func (h *Handle) Spec() *NodeSpec {
	return h.spec
}

// WrappedCallable returns the decorated callable.
func (h *Handle) WrappedCallable() executor.Callable {
	return h.fn
}

// Equal reports structural equality of identity, interface, metadata and
// version. Executors and error handlers do not participate: two specs with
// the same declared interface compare equal regardless of how they execute.
func (s *NodeSpec) Equal(other *NodeSpec) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Identifier != other.Identifier || s.NodeType != other.NodeType ||
		s.Catalog != other.Catalog || s.Version != other.Version {
		return false
	}
	if !s.Inputs.Equal(other.Inputs) || !s.Outputs.Equal(other.Outputs) {
		return false
	}
	return metadataEqual(s.Metadata, other.Metadata)
}

// metadataEqual compares metadata through the canonical JSON rendering the
// structural hash uses, so map-key order and decoded numeric kinds do not
// matter. Nil and empty metadata compare equal.
func metadataEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ca, errA := json.Marshal(a)
	cb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}
