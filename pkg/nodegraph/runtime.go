package nodegraph

import (
	"context"

	memory "github.com/scinode/nodegraph/internal/adapters/repository/memory"
	"github.com/scinode/nodegraph/internal/app/dto"
	"github.com/scinode/nodegraph/internal/app/usecases"
	coregraph "github.com/scinode/nodegraph/internal/core/graph"
	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
	"github.com/scinode/nodegraph/internal/registry"
)

// Re-export core types for convenience.
type Graph = coregraph.Graph
type Node = coregraph.Node
type Link = coregraph.Link
type NodeSpec = spec.NodeSpec
type SocketSpec = socket.Spec
type SpecRecord = record.SpecRecord
type DiffResult = dto.DiffResult
type Connectivity = usecases.Connectivity
type Registry = registry.Registry

// Runtime bundles a registry and a spec store. The default runtime uses
// in-memory components and is suitable for local usage and tests.
type Runtime struct {
	registry *registry.Registry
	store    record.Store
}

// NewRuntime constructs a runtime with an empty registry and an in-memory
// spec store.
func NewRuntime() *Runtime {
	return &Runtime{
		registry: registry.New(),
		store:    memory.NewSpecStore(nil),
	}
}

// NewRuntimeWithStore constructs a runtime on an externally managed store.
func NewRuntimeWithStore(store record.Store) *Runtime {
	return &Runtime{
		registry: registry.New(),
		store:    store,
	}
}

// Registry exposes the runtime's spec registry for registrations.
func (rt *Runtime) Registry() *registry.Registry {
	return rt.registry
}

// NewGraph creates an empty graph instance.
func (rt *Runtime) NewGraph(name string) *coregraph.Graph {
	return coregraph.New(name)
}

// SaveSpec persists sp as a record in the runtime store.
func (rt *Runtime) SaveSpec(ctx context.Context, sp *spec.NodeSpec) (*record.SpecRecord, error) {
	rec, err := record.FromSpec(sp)
	if err != nil {
		return nil, err
	}
	if err := rt.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// LoadSpec rebuilds one stored spec revision, dispatching through the
// runtime registry for non-embedded schema sources.
func (rt *Runtime) LoadSpec(ctx context.Context, identifier, version string) (*spec.NodeSpec, error) {
	rec, err := rt.store.Load(ctx, identifier, version)
	if err != nil {
		return nil, err
	}
	return rec.ToSpec(rt.registry)
}

// LatestSpec rebuilds the newest stored revision of identifier.
func (rt *Runtime) LatestSpec(ctx context.Context, identifier string) (*spec.NodeSpec, error) {
	rec, err := record.Latest(ctx, rt.store, identifier)
	if err != nil {
		return nil, err
	}
	return rec.ToSpec(rt.registry)
}

// Connectivity builds the connectivity analysis for the current state of g.
func (rt *Runtime) Connectivity(g *coregraph.Graph) (*usecases.Connectivity, error) {
	return usecases.NewConnectivity(dto.ShortFormOf(g))
}

// Diff compares two graph instances.
func (rt *Runtime) Diff(a, b *coregraph.Graph) (*dto.DiffResult, error) {
	return usecases.Diff(dto.SnapshotOf(a), dto.SnapshotOf(b))
}
