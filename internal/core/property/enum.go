package property

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/core/socket"
)

// EnumOption is one admissible enum value: the stored key, the content string
// it resolves to, and a human-readable description.
type EnumOption struct {
	Key         string
	Content     string
	Description string
}

// NewEnum creates an enum property over an ordered option set. defaultKey
// must name one of the options.
func NewEnum(name string, options []EnumOption, defaultKey string) (*Property, error) {
	if len(options) == 0 {
		return nil, &ValidationError{Property: name,
			Message: "enum property requires at least one option"}
	}
	p := &Property{
		Name:       name,
		TypeTag:    socket.TypeEnum,
		Identifier: "node_graph.enum",
		options:    make([]EnumOption, len(options)),
	}
	copy(p.options, options)
	if _, err := p.validateEnum(defaultKey); err != nil {
		return nil, err
	}
	p.Default = defaultKey
	p.value = defaultKey
	return p, nil
}

// Options returns the option set in declaration order.
func (p *Property) Options() []EnumOption {
	out := make([]EnumOption, len(p.options))
	copy(out, p.options)
	return out
}

// Content returns the content string of the currently selected option.
func (p *Property) Content() (string, error) {
	key, ok := p.Value().(string)
	if !ok {
		return "", &ValidationError{Property: p.Name, Value: p.Value(),
			Message: "enum value is not a string key"}
	}
	for _, opt := range p.options {
		if opt.Key == key {
			return opt.Content, nil
		}
	}
	return "", &ValidationError{Property: p.Name, Value: key,
		Message: fmt.Sprintf("key %q is not in the option set", key)}
}

func (p *Property) validateEnum(v any) (any, error) {
	key, ok := v.(string)
	if !ok {
		return nil, &ValidationError{Property: p.Name, Value: v,
			Message: fmt.Sprintf("expected enum key string, got %T", v)}
	}
	for _, opt := range p.options {
		if opt.Key == key {
			return key, nil
		}
	}
	return nil, &ValidationError{Property: p.Name, Value: key,
		Message: fmt.Sprintf("key %q is not in the option set", key)}
}
