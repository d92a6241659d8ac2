// Package metrics exposes expvar-published counters used by the node-graph
// analysis and persistence layers. It intentionally avoids external
// dependencies and is consumed through /debug/vars by whatever process embeds
// the library.
package metrics
