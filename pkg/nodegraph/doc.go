// Package nodegraph provides a minimal public façade for building, storing
// and analysing task graphs without importing internal packages. It
// re-exports the core graph types for convenience and exposes a Runtime
// bundling a spec registry, a record store and the analysis entry points.
package nodegraph
