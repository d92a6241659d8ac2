// Package socket provides the socket specification tree that describes a
// node's input/output interface: fixed namespaces, dynamic namespaces and
// typed leaf sockets.
package socket

// TypeTag identifies the value type a socket carries. The reserved tag
// TypeNamespace marks a socket that nests child sockets instead of holding a
// value.
type TypeTag string

const (
	TypeNamespace TypeTag = "namespace"
	TypeInt       TypeTag = "int"
	TypeFloat     TypeTag = "float"
	TypeString    TypeTag = "string"
	TypeBool      TypeTag = "bool"
	TypeEnum      TypeTag = "enum"
	// TypeAny accepts arbitrary values; such sockets serialize through the
	// opaque binary codec rather than plain JSON.
	TypeAny TypeTag = "any"
)

// Spec describes one socket in a node interface tree. A Spec is an immutable
// value object: it is built once by the builders in this package and then
// shared by reference across every node materialized from it.
type Spec struct {
	Name     string
	TypeTag  TypeTag
	Required bool
	// Dynamic namespaces accept arbitrary extra keys, each typed by ItemType.
	Dynamic  bool
	ItemType *Spec
	Default  any
	// ChildLinkLimit is the default link limit applied to child sockets
	// materialized from this namespace (0 means unlimited).
	ChildLinkLimit int

	fields map[string]*Spec
	order  []string
}

// IsNamespace reports whether the spec nests child sockets.
func (s *Spec) IsNamespace() bool {
	return s.TypeTag == TypeNamespace
}

// FieldNames returns the fixed field names in declaration order.
func (s *Spec) FieldNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Field returns the fixed child spec with the given name.
func (s *Spec) Field(name string) (*Spec, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// NumFields returns the number of fixed fields.
func (s *Spec) NumFields() int {
	return len(s.order)
}

// Equal reports structural equality: same type tag, flags, defaults, item
// type and field set. Field declaration order does not participate, so two
// namespaces built in different orders still compare equal and hash alike.
func (s *Spec) Equal(other *Spec) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Name != other.Name || s.TypeTag != other.TypeTag ||
		s.Required != other.Required || s.Dynamic != other.Dynamic ||
		s.ChildLinkLimit != other.ChildLinkLimit {
		return false
	}
	if !valueEqual(s.Default, other.Default) {
		return false
	}
	if (s.ItemType == nil) != (other.ItemType == nil) {
		return false
	}
	if s.ItemType != nil && !s.ItemType.Equal(other.ItemType) {
		return false
	}
	if len(s.fields) != len(other.fields) {
		return false
	}
	for name, f := range s.fields {
		of, ok := other.fields[name]
		if !ok || !f.Equal(of) {
			return false
		}
	}
	return true
}

// valueEqual compares defaults without panicking on non-comparable kinds.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ov, ok := bv[k]
			if !ok || !valueEqual(v, ov) {
				return false
			}
		}
		return true
	default:
		if af, ok := toNumber(a); ok {
			bf, ok := toNumber(b)
			return ok && af == bf
		}
		return a == b
	}
}

// toNumber normalizes the numeric kinds JSON and msgpack decoders produce, so
// an int default compares equal to its decoded int8 or float64 form.
func toNumber(v any) (float64, bool) {
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
