package usecases

import "fmt"

// Zone is one control container: a node grouping other nodes under a single
// control-flow gate.
type Zone struct {
	Name string
	// Parent names the enclosing zone, empty at top level.
	Parent string
	// Members are the nodes grouped directly under this zone.
	Members []string
	// InputTasks are the nodes whose control or data output feeds the
	// zone's entry. A task living inside a sibling zone is attributed to
	// that zone instead, nesting zones inside zones.
	InputTasks []string
}

// BuildZones computes the zone table of the snapshot from the grouping
// information carried in Children.
func (c *Connectivity) BuildZones() (map[string]*Zone, error) {
	zones := make(map[string]*Zone, len(c.short.Children))
	memberOf := map[string]string{}
	for name, members := range c.short.Children {
		if _, ok := c.index[name]; !ok {
			return nil, fmt.Errorf("%w: zone %q", ErrUnknownNode, name)
		}
		zones[name] = &Zone{Name: name, Members: append([]string(nil), members...)}
		for _, m := range members {
			if _, ok := c.index[m]; !ok {
				return nil, fmt.Errorf("%w: zone %q member %q", ErrUnknownNode, name, m)
			}
			if prev, dup := memberOf[m]; dup {
				return nil, fmt.Errorf("%w: node %q grouped under both %q and %q",
					ErrBadSnapshot, m, prev, name)
			}
			memberOf[m] = name
		}
	}
	for name, z := range zones {
		if parent, ok := memberOf[name]; ok {
			z.Parent = parent
		}
		z.InputTasks = c.zoneInputs(name, zones, memberOf)
	}
	return zones, nil
}

// zoneInputs collects the feeders of a zone's entry: control links into the
// zone's "entry" input and data links into the zone node itself. Feeders
// living inside another zone resolve recursively to their outermost zone
// that is not an ancestor of this one.
func (c *Connectivity) zoneInputs(name string, zones map[string]*Zone, memberOf map[string]string) []string {
	i := c.index[name]
	seen := map[string]bool{}
	var out []string
	add := func(feeder string) {
		resolved := c.resolveFeeder(feeder, name, memberOf)
		if resolved == "" || resolved == name || seen[resolved] {
			return
		}
		seen[resolved] = true
		out = append(out, resolved)
	}
	for _, src := range c.ctrlIn[i] {
		if src.toSock == ctrlEntry {
			add(c.names[src.from])
		}
	}
	for _, l := range c.short.Links {
		if l.ToNode == name {
			add(l.FromNode)
		}
	}
	return out
}

// resolveFeeder climbs the zone nesting from feeder until it leaves the
// ancestry of target, so a feeder buried in a sibling zone is reported as
// that zone.
func (c *Connectivity) resolveFeeder(feeder, target string, memberOf map[string]string) string {
	ancestors := map[string]bool{}
	for z := memberOf[target]; z != ""; z = memberOf[z] {
		ancestors[z] = true
	}
	cur := feeder
	for {
		parent, ok := memberOf[cur]
		if !ok || ancestors[parent] {
			return cur
		}
		cur = parent
	}
}
