// Package dto provides the snapshot shapes exchanged between the graph
// instance model and the analysis layer. Snapshots are deep, independently
// owned copies: analyses never observe later mutations of the source graph
// and never mutate a snapshot themselves.
package dto

import (
	"github.com/scinode/nodegraph/internal/core/graph"
)

// NodeShort is the reduced per-node form consumed by connectivity analysis:
// identity and lifecycle only, no property values.
type NodeShort struct {
	Identifier string `json:"identifier"`
	NodeType   string `json:"node_type"`
	UUID       string `json:"uuid"`
	State      string `json:"state"`
	Action     string `json:"action"`
}

// LinkShort mirrors graph.Link for snapshots.
type LinkShort struct {
	FromNode   string `json:"from_node"`
	FromSocket string `json:"from_socket"`
	ToNode     string `json:"to_node"`
	ToSocket   string `json:"to_socket"`
}

// GraphShort is the reduced graph form. Order preserves node insertion order,
// which fixes the stable integer indices the analyses assign.
type GraphShort struct {
	Nodes     map[string]NodeShort `json:"nodes"`
	Order     []string             `json:"order"`
	Links     []LinkShort          `json:"links"`
	CtrlLinks []LinkShort          `json:"ctrl_links"`
	// Children maps zone nodes to the nodes they group. Only nodes acting
	// as control containers appear as keys.
	Children map[string][]string `json:"children,omitempty"`
}

// NodeSnapshot extends the short form with the data the difference analysis
// compares: property values, per-input-socket upstream sources, zone children
// and the cosmetic fields tracked separately from modifications.
type NodeSnapshot struct {
	NodeShort
	Properties   map[string]any      `json:"properties"`
	InputSources map[string][]string `json:"input_sources"`
	Children     []string            `json:"children,omitempty"`
	Position     [2]float64          `json:"position"`
	Description  string              `json:"description"`
}

// GraphSnapshot is the full analysis snapshot of one graph instance.
type GraphSnapshot struct {
	UUID      string                  `json:"uuid"`
	Name      string                  `json:"name"`
	Nodes     map[string]NodeSnapshot `json:"nodes"`
	Order     []string                `json:"order"`
	Links     []LinkShort             `json:"links"`
	CtrlLinks []LinkShort             `json:"ctrl_links"`
}

// ShortFormOf reduces a graph instance to the short form.
func ShortFormOf(g *graph.Graph) *GraphShort {
	s := &GraphShort{
		Nodes:     make(map[string]NodeShort, g.NumNodes()),
		Order:     g.NodeNames(),
		Links:     copyLinks(g.Links),
		CtrlLinks: copyLinks(g.CtrlLinks),
	}
	for _, name := range s.Order {
		n, _ := g.Node(name)
		s.Nodes[name] = shortOf(n)
		if len(n.Children) > 0 {
			if s.Children == nil {
				s.Children = map[string][]string{}
			}
			s.Children[name] = append([]string(nil), n.Children...)
		}
	}
	return s
}

// SnapshotOf takes a full snapshot of a graph instance.
func SnapshotOf(g *graph.Graph) *GraphSnapshot {
	s := &GraphSnapshot{
		UUID:      g.UUID,
		Name:      g.Name,
		Nodes:     make(map[string]NodeSnapshot, g.NumNodes()),
		Order:     g.NodeNames(),
		Links:     copyLinks(g.Links),
		CtrlLinks: copyLinks(g.CtrlLinks),
	}
	sources := inputSources(g.Links)
	for _, name := range s.Order {
		n, _ := g.Node(name)
		ns := NodeSnapshot{
			NodeShort:    shortOf(n),
			Properties:   make(map[string]any, len(n.Properties)),
			InputSources: sources[name],
			Position:     n.Position,
			Description:  n.Description,
		}
		if ns.InputSources == nil {
			ns.InputSources = map[string][]string{}
		}
		for path, p := range n.Properties {
			ns.Properties[path] = deepCopyValue(p.Value())
		}
		if len(n.Children) > 0 {
			ns.Children = append([]string(nil), n.Children...)
		}
		s.Nodes[name] = ns
	}
	return s
}

// Short reduces a full snapshot to the connectivity input form.
func (s *GraphSnapshot) Short() *GraphShort {
	out := &GraphShort{
		Nodes:     make(map[string]NodeShort, len(s.Nodes)),
		Order:     append([]string(nil), s.Order...),
		Links:     append([]LinkShort(nil), s.Links...),
		CtrlLinks: append([]LinkShort(nil), s.CtrlLinks...),
	}
	for name, n := range s.Nodes {
		out.Nodes[name] = n.NodeShort
		if len(n.Children) > 0 {
			if out.Children == nil {
				out.Children = map[string][]string{}
			}
			out.Children[name] = append([]string(nil), n.Children...)
		}
	}
	return out
}

func shortOf(n *graph.Node) NodeShort {
	return NodeShort{
		Identifier: n.Identifier,
		NodeType:   string(n.NodeType),
		UUID:       n.UUID,
		State:      string(n.State),
		Action:     string(n.Action),
	}
}

func copyLinks(links []*graph.Link) []LinkShort {
	out := make([]LinkShort, 0, len(links))
	for _, l := range links {
		out = append(out, LinkShort{
			FromNode:   l.FromNode,
			FromSocket: l.FromSocket,
			ToNode:     l.ToNode,
			ToSocket:   l.ToSocket,
		})
	}
	return out
}

// inputSources groups data links by target: node -> input socket -> ordered
// upstream node names.
func inputSources(links []*graph.Link) map[string]map[string][]string {
	out := map[string]map[string][]string{}
	for _, l := range links {
		bySocket, ok := out[l.ToNode]
		if !ok {
			bySocket = map[string][]string{}
			out[l.ToNode] = bySocket
		}
		bySocket[l.ToSocket] = append(bySocket[l.ToSocket], l.FromNode)
	}
	return out
}

// deepCopyValue copies the container kinds property values may hold, so a
// snapshot never aliases live graph state.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
