package socket

import "fmt"

// FieldDef pairs a field name with the spec describing it. Fields are the
// declarative replacement for deriving sockets from function signatures: each
// one is an explicit (name, type, default) tuple.
type FieldDef struct {
	Name string
	Spec *Spec
}

// Field declares a required leaf field of the given type.
func Field(name string, tag TypeTag) FieldDef {
	return FieldDef{Name: name, Spec: &Spec{Name: name, TypeTag: tag, Required: true}}
}

// FieldWithDefault declares an optional leaf field carrying a default value.
func FieldWithDefault(name string, tag TypeTag, def any) FieldDef {
	return FieldDef{Name: name, Spec: &Spec{Name: name, TypeTag: tag, Default: def}}
}

// FieldSpec declares a field from an existing spec, typically a nested
// namespace. The spec is re-labeled with the field name.
func FieldSpec(name string, s *Spec) FieldDef {
	c := s.clone()
	c.Name = name
	return FieldDef{Name: name, Spec: c}
}

// Leaf builds a stand-alone leaf spec of the given type.
func Leaf(tag TypeTag) *Spec {
	return &Spec{TypeTag: tag, Required: true}
}

// Namespace builds a static namespace from fixed fields. Field names must be
// unique within the namespace and valid identifiers.
func Namespace(name string, fieldDefs ...FieldDef) (*Spec, error) {
	s := &Spec{Name: name, TypeTag: TypeNamespace, fields: map[string]*Spec{}}
	for _, fd := range fieldDefs {
		if err := s.addField(fd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dynamic builds a namespace that accepts arbitrary extra keys typed by
// itemType alongside the given fixed fields.
func Dynamic(name string, itemType *Spec, fixed ...FieldDef) (*Spec, error) {
	if itemType == nil {
		return nil, fmt.Errorf("%w: dynamic namespace %q", ErrMissingItemType, name)
	}
	s, err := Namespace(name, fixed...)
	if err != nil {
		return nil, err
	}
	s.Dynamic = true
	s.ItemType = itemType.clone()
	return s, nil
}

func (s *Spec) addField(fd FieldDef) error {
	if !validIdentifier(fd.Name) {
		return fmt.Errorf("%w: field name %q", ErrInvalidName, fd.Name)
	}
	if _, exists := s.fields[fd.Name]; exists {
		return fmt.Errorf("%w: %q in namespace %q", ErrDuplicateField, fd.Name, s.Name)
	}
	c := fd.Spec.clone()
	c.Name = fd.Name
	s.fields[fd.Name] = c
	s.order = append(s.order, fd.Name)
	return nil
}

// clone deep-copies the spec tree so builder inputs are never aliased.
func (s *Spec) clone() *Spec {
	if s == nil {
		return nil
	}
	c := &Spec{
		Name:           s.Name,
		TypeTag:        s.TypeTag,
		Required:       s.Required,
		Dynamic:        s.Dynamic,
		ItemType:       s.ItemType.clone(),
		Default:        s.Default,
		ChildLinkLimit: s.ChildLinkLimit,
	}
	if s.fields != nil {
		c.fields = make(map[string]*Spec, len(s.fields))
		c.order = make([]string, len(s.order))
		copy(c.order, s.order)
		for name, f := range s.fields {
			c.fields[name] = f.clone()
		}
	}
	return c
}

// validIdentifier accepts letters, digits and underscore, and rejects names
// starting with a digit. Matches the node-name rule in the graph package.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
