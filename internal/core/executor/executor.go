// Package executor provides the tagged reference to a node's unit of
// computation: a registry-addressable callable, an inline payload, a nested
// subgraph, or a handle wrapping another spec. Exactly one variant is
// populated at a time; resolution dispatches exhaustively with no fallback.
package executor

import (
	"context"
	"fmt"
)

// Mode tags the executor variant. The wire names mirror the serialized
// contract consumed by remote readers.
type Mode string

const (
	ModeModule Mode = "module"
	ModeInline Mode = "pickled"
	ModeGraph  Mode = "graph"
	ModeHandle Mode = "handle"
)

// Callable is the runnable form of an executor: it maps named inputs to named
// outputs.
type Callable func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// SpecHandle is implemented by decorated spec handles. Resolving a handle
// executor yields the handle itself; callers unwrap the callable or the inner
// spec through this interface.
type SpecHandle interface {
	WrappedCallable() Callable
}

// Resolver supplies the registered units an executor can reference. It is
// passed explicitly; there is no process-wide registry.
type Resolver interface {
	// ResolveCallable returns the callable registered under the dotted
	// module path and name.
	ResolveCallable(modulePath, callableName string) (Callable, error)
	// ResolveHandle returns the spec handle registered under the dotted
	// module path and name.
	ResolveHandle(modulePath, callableName string) (SpecHandle, error)
	// ResolveInline interprets an inline payload. Resolvers without a
	// registered interpreter must return an error; inline execution is
	// never a silent default.
	ResolveInline(payload []byte, sourceText string) (Callable, error)
}

// Executor is the tagged union. Construct through the New* functions; the
// zero value is invalid.
type Executor struct {
	mode Mode

	// module and handle variants
	ModulePath   string
	CallableName string

	// inline variant
	Payload    []byte
	SourceText string

	// graph variant
	GraphData map[string]any

	// handle variant, in-process only; recovered via the resolver after a
	// round-trip
	wrapped SpecHandle
}

// NewModuleRef references a callable reachable under a stable dotted path.
func NewModuleRef(modulePath, callableName string) (*Executor, error) {
	if modulePath == "" || callableName == "" {
		return nil, &ResolutionError{ModulePath: modulePath, CallableName: callableName,
			Message: "module executor requires module_path and callable_name"}
	}
	return &Executor{mode: ModeModule, ModulePath: modulePath, CallableName: callableName}, nil
}

// NewInlinePayload carries an opaque serialized callable, used when the
// target is not reliably re-importable. sourceText is optional readable
// source kept for diagnostics.
func NewInlinePayload(payload []byte, sourceText string) (*Executor, error) {
	if len(payload) == 0 {
		return nil, &ResolutionError{Message: "inline executor requires a payload"}
	}
	return &Executor{mode: ModeInline, Payload: payload, SourceText: sourceText}, nil
}

// NewNestedGraphRef references a subgraph expanded by the execution engine.
func NewNestedGraphRef(graphData map[string]any) (*Executor, error) {
	if graphData == nil {
		return nil, &ResolutionError{Message: "graph executor requires graph data"}
	}
	return &Executor{mode: ModeGraph, GraphData: graphData}, nil
}

// NewHandleRef references a spec handle registered under a stable dotted
// path. The wrapped handle may be attached for in-process use; after a
// round-trip it is recovered through the resolver.
func NewHandleRef(modulePath, callableName string, wrapped SpecHandle) (*Executor, error) {
	if modulePath == "" || callableName == "" {
		return nil, &ResolutionError{ModulePath: modulePath, CallableName: callableName,
			Message: "handle executor requires module_path and callable_name"}
	}
	return &Executor{mode: ModeHandle, ModulePath: modulePath, CallableName: callableName, wrapped: wrapped}, nil
}

// Mode returns the populated variant tag.
func (e *Executor) Mode() Mode {
	return e.mode
}

// Wrapped returns the in-process handle attached at construction, if any.
func (e *Executor) Wrapped() SpecHandle {
	return e.wrapped
}

// Resolve materializes the executor: a Callable for module and inline
// variants, the registered SpecHandle for handle variants, and the raw graph
// data for nested graph variants. A module path the resolver cannot satisfy
// fails fast with ResolutionError.
func (e *Executor) Resolve(r Resolver) (any, error) {
	switch e.mode {
	case ModeModule:
		c, err := r.ResolveCallable(e.ModulePath, e.CallableName)
		if err != nil {
			return nil, &ResolutionError{ModulePath: e.ModulePath, CallableName: e.CallableName,
				Message: fmt.Sprintf("module path cannot be resolved: %v", err)}
		}
		return c, nil
	case ModeInline:
		c, err := r.ResolveInline(e.Payload, e.SourceText)
		if err != nil {
			return nil, &ResolutionError{
				Message: fmt.Sprintf("inline payload cannot be interpreted: %v", err)}
		}
		return c, nil
	case ModeGraph:
		return e.GraphData, nil
	case ModeHandle:
		if e.wrapped != nil {
			return e.wrapped, nil
		}
		h, err := r.ResolveHandle(e.ModulePath, e.CallableName)
		if err != nil {
			return nil, &ResolutionError{ModulePath: e.ModulePath, CallableName: e.CallableName,
				Message: fmt.Sprintf("handle cannot be resolved: %v", err)}
		}
		return h, nil
	default:
		return nil, &ResolutionError{Message: fmt.Sprintf("unknown executor mode %q", e.mode)}
	}
}

// ResolveCallable resolves and, when the result is a spec handle, unwraps the
// callable it decorates.
func (e *Executor) ResolveCallable(r Resolver) (Callable, error) {
	v, err := e.Resolve(r)
	if err != nil {
		return nil, err
	}
	switch c := v.(type) {
	case Callable:
		return c, nil
	case SpecHandle:
		return c.WrappedCallable(), nil
	default:
		return nil, &ResolutionError{ModulePath: e.ModulePath, CallableName: e.CallableName,
			Message: fmt.Sprintf("executor mode %q does not resolve to a callable", e.mode)}
	}
}
