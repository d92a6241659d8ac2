package usecases

import (
	"github.com/scinode/nodegraph/internal/app/dto"
	"github.com/scinode/nodegraph/internal/infrastructure/metrics"
)

// Diff structurally compares two graph snapshots sharing a node-naming
// convention. A node is modified when its uuid, a property value present in
// both snapshots, or the upstream sources of an input socket differ.
// Cosmetic fields (position, description) are reported separately and never
// folded into the modified set.
func Diff(a, b *dto.GraphSnapshot) (*dto.DiffResult, error) {
	metrics.IncDiffRuns()
	res := &dto.DiffResult{
		Intersection:    []string{},
		AddedNodes:      []string{},
		RemovedNodes:    []string{},
		ModifiedNodes:   []string{},
		MetadataChanged: []string{},
	}
	for _, name := range a.Order {
		if _, ok := b.Nodes[name]; ok {
			res.Intersection = append(res.Intersection, name)
		} else {
			res.RemovedNodes = append(res.RemovedNodes, name)
		}
	}
	for _, name := range b.Order {
		if _, ok := a.Nodes[name]; !ok {
			res.AddedNodes = append(res.AddedNodes, name)
		}
	}

	for _, name := range res.Intersection {
		na, nb := a.Nodes[name], b.Nodes[name]
		modified, err := nodeModified(name, na, nb)
		if err != nil {
			return nil, err
		}
		if modified {
			res.ModifiedNodes = append(res.ModifiedNodes, name)
		}
		if na.Position != nb.Position || na.Description != nb.Description {
			res.MetadataChanged = append(res.MetadataChanged, name)
		}
	}
	return res, nil
}

func nodeModified(name string, a, b dto.NodeSnapshot) (bool, error) {
	if a.UUID != b.UUID {
		return true, nil
	}
	// Property values, for every key present in both snapshots.
	for key, va := range a.Properties {
		vb, ok := b.Properties[key]
		if !ok {
			continue
		}
		eq, err := valuesEqual(va, vb)
		if err != nil {
			return false, &ComparisonError{Node: name, Property: key, A: va, B: vb}
		}
		if !eq {
			return true, nil
		}
	}
	// Upstream sources per input socket, including sockets present on one
	// side only.
	for sock, srcA := range a.InputSources {
		if !sameNameSet(srcA, b.InputSources[sock]) {
			return true, nil
		}
	}
	for sock, srcB := range b.InputSources {
		if _, ok := a.InputSources[sock]; !ok && len(srcB) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// valuesEqual applies explicit type-dispatched equality: scalar equality for
// numbers, strings and bools; element-wise for array-like values; key-wise
// for maps. Value kinds outside this set cannot be evaluated and are
// reported as an error rather than assumed equal or unequal.
func valuesEqual(a, b any) (bool, error) {
	if a == nil || b == nil {
		return a == nil && b == nil, nil
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb, nil
	}
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb, nil
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb, nil
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false, nil
		}
		for i := range va {
			eq, err := valuesEqual(va[i], vb[i])
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false, nil
		}
		for k, ea := range va {
			eb, present := vb[k]
			if !present {
				return false, nil
			}
			eq, err := valuesEqual(ea, eb)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case []byte:
		vb, ok := b.([]byte)
		if !ok || len(va) != len(vb) {
			return false, nil
		}
		for i := range va {
			if va[i] != vb[i] {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, &ComparisonError{A: a, B: b}
	}
}

// asFloat normalizes every numeric kind decoders produce, so 1, int64(1) and
// float64(1) compare equal across serialization boundaries.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// sameNameSet compares two upstream-name lists as sets.
func sameNameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, n := range a {
		set[n]++
	}
	for _, n := range b {
		set[n]--
		if set[n] < 0 {
			return false
		}
	}
	return true
}
