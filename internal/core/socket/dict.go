package socket

import (
	"fmt"
	"sort"
)

// ToDict renders the spec tree into the plain-map wire shape:
// {type_tag, required, dynamic, item_type?, fields, default?,
// child_default_link_limit?}. Socket names appear as the keys of the parent's
// fields map, so the shape is fully recursive.
func (s *Spec) ToDict() map[string]any {
	d := map[string]any{
		"type_tag": string(s.TypeTag),
		"required": s.Required,
		"dynamic":  s.Dynamic,
	}
	if s.ItemType != nil {
		d["item_type"] = s.ItemType.ToDict()
	}
	if s.Default != nil {
		d["default"] = s.Default
	}
	if s.ChildLinkLimit != 0 {
		d["child_default_link_limit"] = s.ChildLinkLimit
	}
	if s.IsNamespace() {
		fields := make(map[string]any, len(s.fields))
		for name, f := range s.fields {
			fields[name] = f.ToDict()
		}
		d["fields"] = fields
	}
	return d
}

// FromDict rebuilds a spec tree from its wire shape. The name is supplied by
// the caller (it is the parent's field key). Field order is not carried by
// the map shape, so decoded namespaces list their fields sorted by name;
// equality and hashing are order-insensitive, keeping round-trips lossless.
func FromDict(name string, d map[string]any) (*Spec, error) {
	tagStr, _ := d["type_tag"].(string)
	if tagStr == "" {
		return nil, fmt.Errorf("%w: missing type_tag for socket %q", ErrInvalidTypeTag, name)
	}
	s := &Spec{Name: name, TypeTag: TypeTag(tagStr)}
	if v, ok := d["required"].(bool); ok {
		s.Required = v
	}
	if v, ok := d["dynamic"].(bool); ok {
		s.Dynamic = v
	}
	if v, ok := d["default"]; ok {
		s.Default = v
	}
	if v, ok := d["child_default_link_limit"]; ok {
		s.ChildLinkLimit = toInt(v)
	}
	if raw, ok := d["item_type"].(map[string]any); ok {
		item, err := FromDict("", raw)
		if err != nil {
			return nil, err
		}
		s.ItemType = item
	}
	if s.Dynamic && s.ItemType == nil {
		return nil, fmt.Errorf("%w: socket %q", ErrMissingItemType, name)
	}

	rawFields, hasFields := d["fields"].(map[string]any)
	if !s.IsNamespace() {
		if hasFields && len(rawFields) > 0 {
			return nil, fmt.Errorf("%w: socket %q has type %q", ErrNotNamespace, name, tagStr)
		}
		return s, nil
	}

	s.fields = map[string]*Spec{}
	names := make([]string, 0, len(rawFields))
	for fname := range rawFields {
		names = append(names, fname)
	}
	sort.Strings(names)
	for _, fname := range names {
		sub, ok := rawFields[fname].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %q of %q is not a map", ErrInvalidTypeTag, fname, name)
		}
		f, err := FromDict(fname, sub)
		if err != nil {
			return nil, err
		}
		if err := s.addField(FieldDef{Name: fname, Spec: f}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// toInt normalizes the integer kinds JSON and msgpack decoders produce.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
