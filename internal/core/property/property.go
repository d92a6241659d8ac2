// Package property provides typed, validated, serializable value holders
// bound to node sockets. A property never holds a value that fails its type
// check: invalid assignments are rejected before any mutation.
package property

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/core/socket"
)

// ChangeCallback observes successful value assignments.
type ChangeCallback func(old, new any)

// Property holds one typed value for a socket. The stored value satisfies the
// type tag's check at every observable instant; SetValue validates before it
// stores, so a failed assignment leaves the previous value as the rollback
// point.
type Property struct {
	Name       string
	TypeTag    socket.TypeTag
	Identifier string
	Default    any
	Metadata   map[string]any
	// ListIndex orders properties when a node renders them as a list.
	ListIndex int

	value    any
	options  []EnumOption
	callback ChangeCallback
}

// New creates a property of the given type. A non-nil default is validated
// and becomes the initial value.
func New(name string, tag socket.TypeTag, def any) (*Property, error) {
	check, ok := checks[tag]
	if !ok {
		return nil, &ValidationError{Property: name, Value: def,
			Message: fmt.Sprintf("unknown type tag %q", tag)}
	}
	p := &Property{
		Name:       name,
		TypeTag:    tag,
		Identifier: "node_graph." + string(tag),
	}
	if def != nil {
		v, err := check(name, def)
		if err != nil {
			return nil, err
		}
		p.Default = v
		p.value = v
	}
	return p, nil
}

// Value returns the current value, falling back to the default when no value
// has been assigned.
func (p *Property) Value() any {
	if p.value == nil {
		return p.Default
	}
	return p.value
}

// SetValue validates v against the property's type and stores it. On failure
// the stored value is untouched and a ValidationError describes the violated
// contract. On success the change callback, if any, observes old and new.
func (p *Property) SetValue(v any) error {
	checked, err := p.validate(v)
	if err != nil {
		return err
	}
	old := p.value
	p.value = checked
	if p.callback != nil {
		p.callback(old, checked)
	}
	return nil
}

func (p *Property) validate(v any) (any, error) {
	if p.TypeTag == socket.TypeEnum {
		return p.validateEnum(v)
	}
	check, ok := checks[p.TypeTag]
	if !ok {
		return nil, &ValidationError{Property: p.Name, Value: v,
			Message: fmt.Sprintf("unknown type tag %q", p.TypeTag)}
	}
	return check(p.Name, v)
}

// OnChange registers the change callback, replacing any previous one.
func (p *Property) OnChange(cb ChangeCallback) {
	p.callback = cb
}

// Copy produces an independent property with the same value, default,
// options and callback. Mutating the copy never affects the original.
func (p *Property) Copy() *Property {
	c := &Property{
		Name:       p.Name,
		TypeTag:    p.TypeTag,
		Identifier: p.Identifier,
		Default:    p.Default,
		ListIndex:  p.ListIndex,
		value:      p.value,
		callback:   p.callback,
	}
	if p.Metadata != nil {
		c.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	if p.options != nil {
		c.options = make([]EnumOption, len(p.options))
		copy(c.options, p.options)
	}
	return c
}
