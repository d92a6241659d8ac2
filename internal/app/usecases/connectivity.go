// Package usecases provides the analysis algorithms over graph snapshots:
// reachability and zone construction (connectivity) and structural diffing.
// All analysis is synchronous and single-threaded over an immutable snapshot
// taken at call time; concurrent analyses need independently-owned snapshots.
package usecases

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/app/dto"
	"github.com/scinode/nodegraph/internal/infrastructure/metrics"
)

// Reserved control socket names with built-in meaning for traversal.
const (
	ctrlEntry = "entry"
	ctrlExit  = "exit"
	ctrlStop  = "stop"
)

// edge is one directed adjacency entry between node indices.
type edge struct {
	from, to int
}

// Connectivity analyzes reachability over one short-form snapshot. Nodes are
// assigned stable integer indices in insertion order at construction;
// adjacency construction is O(V+E) and each reachability query is O(V+E).
type Connectivity struct {
	short *dto.GraphShort
	names []string
	index map[string]int
	// data holds the link-edge adjacency list by source index.
	data [][]int
	// ctrlOut groups control links by source index and branch name.
	ctrlOut map[int]map[string][]int
	// ctrlIn lists control-link sources per target index.
	ctrlIn map[int][]ctrlSource
}

type ctrlSource struct {
	from   int
	branch string
	toSock string
}

// TraversalOptions tunes one reachability query.
type TraversalOptions struct {
	// CtrlBranches merges the control edges of the named branches of the
	// start node into the adjacency relation.
	CtrlBranches []string
	// ExcludeSources drops every edge originating from these nodes.
	ExcludeSources map[string]bool
	// ExcludeTargets drops every edge arriving at these nodes.
	ExcludeTargets map[string]bool
	// AllowCycles suppresses the self-reachability check for traversals
	// where loops are expected (control-flow overlays).
	AllowCycles bool
}

// NewConnectivity builds the index and adjacency relation for a snapshot.
// Links referencing unknown nodes are a structural defect of the snapshot.
func NewConnectivity(short *dto.GraphShort) (*Connectivity, error) {
	c := &Connectivity{
		short:   short,
		names:   append([]string(nil), short.Order...),
		index:   make(map[string]int, len(short.Order)),
		ctrlOut: map[int]map[string][]int{},
		ctrlIn:  map[int][]ctrlSource{},
	}
	for i, name := range c.names {
		if _, ok := short.Nodes[name]; !ok {
			return nil, fmt.Errorf("%w: node %q listed in order but missing from nodes", ErrBadSnapshot, name)
		}
		c.index[name] = i
	}
	c.data = make([][]int, len(c.names))
	for _, l := range short.Links {
		from, to, err := c.endpoints(l)
		if err != nil {
			return nil, err
		}
		c.data[from] = append(c.data[from], to)
	}
	for _, l := range short.CtrlLinks {
		from, to, err := c.endpoints(l)
		if err != nil {
			return nil, err
		}
		byBranch, ok := c.ctrlOut[from]
		if !ok {
			byBranch = map[string][]int{}
			c.ctrlOut[from] = byBranch
		}
		byBranch[l.FromSocket] = append(byBranch[l.FromSocket], to)
		c.ctrlIn[to] = append(c.ctrlIn[to], ctrlSource{from: from, branch: l.FromSocket, toSock: l.ToSocket})
	}
	return c, nil
}

func (c *Connectivity) endpoints(l dto.LinkShort) (int, int, error) {
	from, ok := c.index[l.FromNode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: link source %q", ErrBadSnapshot, l.FromNode)
	}
	to, ok := c.index[l.ToNode]
	if !ok {
		return 0, 0, fmt.Errorf("%w: link target %q", ErrBadSnapshot, l.ToNode)
	}
	return from, to, nil
}

// Reachable runs a breadth-first traversal from start over outgoing edges,
// returning the ordered set of reachable nodes excluding start itself. When
// cycles are not allowed, re-reaching the start raises a CycleError instead
// of silently looping.
func (c *Connectivity) Reachable(start string, opts TraversalOptions) ([]string, error) {
	s, ok := c.index[start]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, start)
	}
	metrics.IncReachabilityQueries()

	adj := c.data
	if len(opts.CtrlBranches) > 0 {
		adj = c.mergedAdjacency(s, opts.CtrlBranches)
	}

	visited := make([]bool, len(c.names))
	visited[s] = true
	queue := []int{s}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if opts.ExcludeSources[c.names[cur]] && cur != s {
			continue
		}
		for _, next := range adj[cur] {
			if opts.ExcludeTargets[c.names[next]] {
				continue
			}
			if next == s {
				if !opts.AllowCycles {
					return nil, &CycleError{Node: start}
				}
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, c.names[next])
			queue = append(queue, next)
		}
	}
	return out, nil
}

// mergedAdjacency copies the data adjacency and merges in the control edges
// of the selected branches of start.
func (c *Connectivity) mergedAdjacency(start int, branches []string) [][]int {
	adj := make([][]int, len(c.data))
	for i, outs := range c.data {
		adj[i] = append([]int(nil), outs...)
	}
	byBranch := c.ctrlOut[start]
	for _, b := range branches {
		adj[start] = append(adj[start], byBranch[b]...)
	}
	return adj
}

// DirectChildren returns the immediate successors of n via link edges only,
// deduplicated, in edge order.
func (c *Connectivity) DirectChildren(n string) ([]string, error) {
	i, ok := c.index[n]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, n)
	}
	seen := map[int]bool{}
	var out []string
	for _, next := range c.data[i] {
		if seen[next] || next == i {
			continue
		}
		seen[next] = true
		out = append(out, c.names[next])
	}
	return out, nil
}

// AllDescendants returns the full transitive closure of n via link edges
// only. A node reachable from itself through link edges is a cycle defect.
func (c *Connectivity) AllDescendants(n string) ([]string, error) {
	return c.Reachable(n, TraversalOptions{})
}

// ScatterChildren is AllDescendants with the loop-termination edges cut:
// edges originating from nodes that feed n's "stop" control input are
// excluded, so a loop is never re-entered through its own termination signal.
func (c *Connectivity) ScatterChildren(n string) ([]string, error) {
	i, ok := c.index[n]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, n)
	}
	exclude := map[string]bool{}
	for _, src := range c.ctrlIn[i] {
		if src.toSock == ctrlStop {
			exclude[c.names[src.from]] = true
		}
	}
	return c.Reachable(n, TraversalOptions{ExcludeSources: exclude, AllowCycles: true})
}

// ControlChildren returns, per control-output branch of n (excluding the
// reserved "exit" branch), the descendants reachable through that branch's
// control edges plus all data edges. Edges originating from n's own control
// predecessors are excluded so a branch never re-includes ancestor-gated
// nodes.
func (c *Connectivity) ControlChildren(n string) (map[string][]string, error) {
	i, ok := c.index[n]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, n)
	}
	exclude := map[string]bool{}
	for _, src := range c.ctrlIn[i] {
		exclude[c.names[src.from]] = true
	}
	out := map[string][]string{}
	for branch := range c.ctrlOut[i] {
		if branch == ctrlExit {
			continue
		}
		reach, err := c.Reachable(n, TraversalOptions{
			CtrlBranches:   []string{branch},
			ExcludeSources: exclude,
			AllowCycles:    true,
		})
		if err != nil {
			return nil, err
		}
		out[branch] = reach
	}
	return out, nil
}
