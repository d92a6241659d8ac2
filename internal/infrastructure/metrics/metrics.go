package metrics

import (
	"expvar"
)

// Analysis metrics.
var (
	reachabilityQueries = new(expvar.Int)
	diffRuns            = new(expvar.Int)
)

// Spec store metrics (counters keyed by adapter kind).
var (
	specsSaved   = expvar.NewMap("nodegraph_specs_saved_total")
	specsLoaded  = expvar.NewMap("nodegraph_specs_loaded_total")
	specsDeleted = expvar.NewMap("nodegraph_specs_deleted_total")
)

func init() {
	expvar.Publish("nodegraph_reachability_queries_total", reachabilityQueries)
	expvar.Publish("nodegraph_diff_runs_total", diffRuns)
}

// Analysis helpers
func IncReachabilityQueries() { reachabilityQueries.Add(1) }
func IncDiffRuns()            { diffRuns.Add(1) }

// Spec store helpers
func IncSpecsSaved(kind string)   { specsSaved.Add(kind, 1) }
func IncSpecsLoaded(kind string)  { specsLoaded.Add(kind, 1) }
func IncSpecsDeleted(kind string) { specsDeleted.Add(kind, 1) }
