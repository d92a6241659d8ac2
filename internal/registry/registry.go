// Package registry provides the explicitly constructed lookup tables that
// make node identities and callables reproducible across process boundaries:
// identifier to spec constructor, dotted module path to callable or spec
// handle, base-class path to class, and native type to identifier. A registry
// is built by the embedding process and passed by dependency injection; there
// is no lazily-populated process-wide instance.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/scinode/nodegraph/internal/core/executor"
	"github.com/scinode/nodegraph/internal/core/spec"
)

// Constructor builds the spec registered under an identifier.
type Constructor func() (*spec.NodeSpec, error)

// InlineInterpreter evaluates an inline executor payload. Registering one is
// an explicit opt-in; without it inline executors fail to resolve.
type InlineInterpreter func(payload []byte, sourceText string) (executor.Callable, error)

// Registry is safe for concurrent readers once populated. It satisfies
// spec.Registry (and therefore executor.Resolver).
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	callables    map[string]executor.Callable
	handles      map[string]executor.SpecHandle
	classes      map[string]spec.Class
	types        map[reflect.Type]string
	interpreter  InlineInterpreter
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		constructors: map[string]Constructor{},
		callables:    map[string]executor.Callable{},
		handles:      map[string]executor.SpecHandle{},
		classes:      map[string]spec.Class{},
		types:        map[reflect.Type]string{},
	}
}

// Teardown clears every table. The registry is reusable afterwards.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors = map[string]Constructor{}
	r.callables = map[string]executor.Callable{}
	r.handles = map[string]executor.SpecHandle{}
	r.classes = map[string]spec.Class{}
	r.types = map[reflect.Type]string{}
	r.interpreter = nil
}

// RegisterIdentifier binds a node identifier to its spec constructor.
func (r *Registry) RegisterIdentifier(id string, c Constructor) error {
	if !spec.ValidIdentifier(id) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	if c == nil {
		return fmt.Errorf("%w: identifier %q", ErrNilEntry, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constructors[id]; exists {
		return fmt.Errorf("%w: identifier %q", ErrAlreadyRegistered, id)
	}
	r.constructors[id] = c
	return nil
}

// ResolveIdentifier returns the constructor registered under id.
func (r *Registry) ResolveIdentifier(id string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: identifier %q", ErrNotRegistered, id)
	}
	return c, nil
}

// RegisterType binds the dynamic type of sample to an identifier, so native
// values can be mapped back to the node type that produces them.
func (r *Registry) RegisterType(sample any, id string) error {
	if sample == nil {
		return fmt.Errorf("%w: type sample", ErrNilEntry)
	}
	t := reflect.TypeOf(sample)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t]; exists {
		return fmt.Errorf("%w: type %s", ErrAlreadyRegistered, t)
	}
	r.types[t] = id
	return nil
}

// ResolveType returns the identifier registered for the dynamic type of v.
func (r *Registry) ResolveType(v any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.types[reflect.TypeOf(v)]
	if !ok {
		return "", fmt.Errorf("%w: type %T", ErrNotRegistered, v)
	}
	return id, nil
}

// RegisterCallable binds a dotted module path and name to a callable.
func (r *Registry) RegisterCallable(modulePath, name string, c executor.Callable) error {
	if c == nil {
		return fmt.Errorf("%w: callable %s.%s", ErrNilEntry, modulePath, name)
	}
	key := modulePath + "." + name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callables[key]; exists {
		return fmt.Errorf("%w: callable %q", ErrAlreadyRegistered, key)
	}
	r.callables[key] = c
	return nil
}

// ResolveCallable implements executor.Resolver.
func (r *Registry) ResolveCallable(modulePath, name string) (executor.Callable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.callables[modulePath+"."+name]
	if !ok {
		return nil, fmt.Errorf("%w: callable %q", ErrNotRegistered, modulePath+"."+name)
	}
	return c, nil
}

// RegisterHandle binds a dotted module path and name to a spec handle.
func (r *Registry) RegisterHandle(modulePath, name string, h executor.SpecHandle) error {
	if h == nil {
		return fmt.Errorf("%w: handle %s.%s", ErrNilEntry, modulePath, name)
	}
	key := modulePath + "." + name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handles[key]; exists {
		return fmt.Errorf("%w: handle %q", ErrAlreadyRegistered, key)
	}
	r.handles[key] = h
	return nil
}

// ResolveHandle implements executor.Resolver.
func (r *Registry) ResolveHandle(modulePath, name string) (executor.SpecHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[modulePath+"."+name]
	if !ok {
		return nil, fmt.Errorf("%w: handle %q", ErrNotRegistered, modulePath+"."+name)
	}
	return h, nil
}

// RegisterClass binds a base-class path to its class.
func (r *Registry) RegisterClass(path string, cl spec.Class) error {
	if cl == nil {
		return fmt.Errorf("%w: class %q", ErrNilEntry, path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[path]; exists {
		return fmt.Errorf("%w: class %q", ErrAlreadyRegistered, path)
	}
	r.classes[path] = cl
	return nil
}

// ResolveClass implements spec.Registry.
func (r *Registry) ResolveClass(path string) (spec.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.classes[path]
	if !ok {
		return nil, fmt.Errorf("%w: class %q", ErrNotRegistered, path)
	}
	return cl, nil
}

// SetInlineInterpreter installs the explicit interpreter for inline
// executors.
func (r *Registry) SetInlineInterpreter(i InlineInterpreter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interpreter = i
}

// ResolveInline implements executor.Resolver. Without a registered
// interpreter, inline payloads never resolve.
func (r *Registry) ResolveInline(payload []byte, sourceText string) (executor.Callable, error) {
	r.mu.RLock()
	interp := r.interpreter
	r.mu.RUnlock()
	if interp == nil {
		return nil, ErrNoInterpreter
	}
	return interp(payload, sourceText)
}
