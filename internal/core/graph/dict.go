package graph

import (
	"fmt"
	"sort"

	"github.com/scinode/nodegraph/internal/core/spec"
)

// ToDict renders the graph into its wire shape: node dicts keyed by name with
// an explicit order list, plus data and control links. Node dicts embed the
// spec's own wire shape, so handle-backed specs round-trip through the same
// registry redirection as bare specs.
func (g *Graph) ToDict() map[string]any {
	nodes := make(map[string]any, len(g.order))
	for _, name := range g.order {
		nodes[name] = g.nodes[name].toDict()
	}
	d := map[string]any{
		"uuid":       g.UUID,
		"name":       g.Name,
		"nodes":      nodes,
		"order":      append([]string(nil), g.order...),
		"links":      linksToDict(g.Links),
		"ctrl_links": linksToDict(g.CtrlLinks),
	}
	if len(g.Metadata) > 0 {
		d["metadata"] = g.Metadata
	}
	return d
}

// FromDict rebuilds a graph instance from its wire shape. Specs are rebuilt
// through reg; the stored insertion order is preserved. Links are re-checked
// against the rebuilt socket trees, so a dict edited to reference missing
// sockets is rejected rather than loaded inconsistent.
func FromDict(d map[string]any, reg spec.Registry) (*Graph, error) {
	g := New(stringField(d, "name"))
	if u := stringField(d, "uuid"); u != "" {
		g.UUID = u
	}
	if md, ok := d["metadata"].(map[string]any); ok {
		g.Metadata = md
	}

	rawNodes, ok := d["nodes"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing nodes", ErrInvalidGraphDict)
	}
	for _, name := range nodeOrder(d, rawNodes) {
		nd, ok := rawNodes[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: node %q is not an object", ErrInvalidGraphDict, name)
		}
		if err := g.addNodeFromDict(name, nd, reg); err != nil {
			return nil, err
		}
	}

	if err := addLinksFromDict(g, d, "links", g.AddLink); err != nil {
		return nil, err
	}
	if err := addLinksFromDict(g, d, "ctrl_links", g.AddControlLink); err != nil {
		return nil, err
	}
	return g, nil
}

func (n *Node) toDict() map[string]any {
	props := make(map[string]any, len(n.Properties))
	for path, p := range n.Properties {
		props[path] = p.Value()
	}
	d := map[string]any{
		"uuid":        n.UUID,
		"name":        n.Name,
		"identifier":  n.Identifier,
		"node_type":   string(n.NodeType),
		"state":       string(n.State),
		"action":      string(n.Action),
		"spec":        n.Spec.ToDict(),
		"properties":  props,
		"position":    []float64{n.Position[0], n.Position[1]},
		"description": n.Description,
	}
	if len(n.Children) > 0 {
		d["children"] = append([]string(nil), n.Children...)
	}
	return d
}

func (g *Graph) addNodeFromDict(name string, nd map[string]any, reg spec.Registry) error {
	rawSpec, ok := nd["spec"].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: node %q has no spec", ErrInvalidGraphDict, name)
	}
	sp, err := spec.FromDict(rawSpec, reg)
	if err != nil {
		return err
	}
	n, err := g.AddNode(name, sp)
	if err != nil {
		return err
	}
	if u := stringField(nd, "uuid"); u != "" {
		n.UUID = u
	}
	n.State = State(stringField(nd, "state"))
	if n.State == "" {
		n.State = StateCreated
	}
	n.Action = Action(stringField(nd, "action"))
	n.Description = stringField(nd, "description")
	if pos, ok := nd["position"].([]any); ok && len(pos) == 2 {
		n.Position = [2]float64{asFloat(pos[0]), asFloat(pos[1])}
	} else if pos, ok := nd["position"].([]float64); ok && len(pos) == 2 {
		n.Position = [2]float64{pos[0], pos[1]}
	}
	n.Children = stringSlice(nd["children"])

	if props, ok := nd["properties"].(map[string]any); ok {
		paths := make([]string, 0, len(props))
		for p := range props {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, path := range paths {
			// Resolve before assigning: dynamic namespaces materialize
			// dumped sockets that only existed because links created them.
			sock, err := n.resolveSocket(n.Inputs, path)
			if err != nil {
				return fmt.Errorf("node %q: %w", name, err)
			}
			if sock.Property == nil {
				return fmt.Errorf("node %q: %w: %s", name, ErrPropertyNotFound, path)
			}
			if err := sock.Property.SetValue(props[path]); err != nil {
				return fmt.Errorf("node %q: %w", name, err)
			}
		}
	}
	return nil
}

func nodeOrder(d map[string]any, rawNodes map[string]any) []string {
	if order := stringSlice(d["order"]); len(order) == len(rawNodes) {
		return order
	}
	names := make([]string, 0, len(rawNodes))
	for name := range rawNodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func linksToDict(links []*Link) []any {
	out := make([]any, len(links))
	for i, l := range links {
		out[i] = map[string]any{
			"from_node":   l.FromNode,
			"from_socket": l.FromSocket,
			"to_node":     l.ToNode,
			"to_socket":   l.ToSocket,
		}
	}
	return out
}

func addLinksFromDict(g *Graph, d map[string]any, key string, add func(string, string, string, string) (*Link, error)) error {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	for _, item := range raw {
		ld, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: malformed entry in %s", ErrInvalidGraphDict, key)
		}
		_, err := add(
			stringField(ld, "from_node"), stringField(ld, "from_socket"),
			stringField(ld, "to_node"), stringField(ld, "to_socket"))
		if err != nil {
			return err
		}
	}
	return nil
}

func stringField(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return s
}

func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
