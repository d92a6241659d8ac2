package spec

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/core/executor"
	"github.com/scinode/nodegraph/internal/core/socket"
)

// ToDict renders the spec into its wire shape. A handle executor forces
// schema_source=handle: the interface and error handlers are omitted because
// they are recoverable from the referenced handle. Only an embedded schema
// carries inputs/outputs in the payload.
func (s *NodeSpec) ToDict() map[string]any {
	source := s.SchemaSource
	if source == "" {
		source = SourceEmbedded
	}
	if s.Executor != nil && s.Executor.Mode() == executor.ModeHandle {
		source = SourceHandle
	}

	d := map[string]any{
		"schema_source":   string(source),
		"identifier":      s.Identifier,
		"node_type":       string(s.NodeType),
		"catalog":         s.Catalog,
		"metadata":        s.Metadata,
		"base_class_path": s.BaseClassPath,
	}
	if s.Version != "" {
		d["version"] = s.Version
	}
	if s.Executor != nil {
		d["executor"] = s.Executor.ToDict()
	}
	if source == SourceEmbedded {
		if s.Inputs != nil {
			d["inputs"] = s.Inputs.ToDict()
		}
		if s.Outputs != nil {
			d["outputs"] = s.Outputs.ToDict()
		}
		if len(s.ErrorHandlers) > 0 {
			d["error_handlers"] = errorHandlersToDict(s.ErrorHandlers)
		}
	}
	return d
}

// FromDict rebuilds a spec from its wire shape, dispatching on schema_source.
// The registry supplies handles, callables and base classes; it is required
// for every source except embedded.
func FromDict(d map[string]any, reg Registry) (*NodeSpec, error) {
	source, _ := d["schema_source"].(string)
	switch SchemaSource(source) {
	case SourceEmbedded, "":
		return fromEmbedded(d)
	case SourceClass:
		return fromClass(d, reg)
	case SourceHandle:
		return fromHandle(d, reg)
	case SourceCallable:
		return fromCallable(d, reg)
	default:
		return nil, &PersistenceError{Message: fmt.Sprintf("unrecognized schema_source %q", source)}
	}
}

func fromEmbedded(d map[string]any) (*NodeSpec, error) {
	s := specHeader(d)
	s.SchemaSource = SourceEmbedded

	if raw, ok := d["inputs"].(map[string]any); ok {
		in, err := socket.FromDict("inputs", raw)
		if err != nil {
			return nil, &PersistenceError{Message: fmt.Sprintf("spec %q inputs: %v", s.Identifier, err)}
		}
		s.Inputs = in
	}
	if raw, ok := d["outputs"].(map[string]any); ok {
		out, err := socket.FromDict("outputs", raw)
		if err != nil {
			return nil, &PersistenceError{Message: fmt.Sprintf("spec %q outputs: %v", s.Identifier, err)}
		}
		s.Outputs = out
	}
	if raw, ok := d["executor"].(map[string]any); ok {
		ex, err := executor.FromDict(raw)
		if err != nil {
			return nil, err
		}
		s.Executor = ex
	}
	if raw, ok := d["error_handlers"].(map[string]any); ok {
		handlers, err := errorHandlersFromDict(raw)
		if err != nil {
			return nil, err
		}
		s.ErrorHandlers = handlers
	}
	return s, nil
}

func fromClass(d map[string]any, reg Registry) (*NodeSpec, error) {
	s := specHeader(d)
	if s.BaseClassPath == "" {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: schema_source=class requires base_class_path", s.Identifier)}
	}
	if reg == nil {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: schema_source=class requires a registry", s.Identifier)}
	}
	class, err := reg.ResolveClass(s.BaseClassPath)
	if err != nil {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: base class %q cannot be resolved: %v", s.Identifier, s.BaseClassPath, err)}
	}
	return class.DefaultSpec(), nil
}

// fromHandle redirects to the inner spec wrapped by the referenced handle.
// It returns that spec itself, never a copy.
func fromHandle(d map[string]any, reg Registry) (*NodeSpec, error) {
	header := specHeader(d)
	ex, err := requireExecutor(d, header.Identifier, SourceHandle)
	if err != nil {
		return nil, err
	}
	resolved, err := ex.Resolve(reg)
	if err != nil {
		return nil, err
	}
	h, ok := resolved.(*Handle)
	if !ok {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: resolved executor is %T, not a spec handle", header.Identifier, resolved)}
	}
	return h.Spec(), nil
}

// fromCallable rebuilds the spec by introspecting the resolved callable
// through the base class's builder, unwrapping a handle when one is found.
func fromCallable(d map[string]any, reg Registry) (*NodeSpec, error) {
	header := specHeader(d)
	ex, err := requireExecutor(d, header.Identifier, SourceCallable)
	if err != nil {
		return nil, err
	}
	c, err := ex.ResolveCallable(reg)
	if err != nil {
		return nil, err
	}
	if header.BaseClassPath == "" {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: schema_source=callable requires base_class_path", header.Identifier)}
	}
	class, err := reg.ResolveClass(header.BaseClassPath)
	if err != nil {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: base class %q cannot be resolved: %v", header.Identifier, header.BaseClassPath, err)}
	}
	return class.SpecFromCallable(header.Identifier, c)
}

func requireExecutor(d map[string]any, identifier string, source SchemaSource) (*executor.Executor, error) {
	raw, ok := d["executor"].(map[string]any)
	if !ok {
		return nil, &PersistenceError{
			Message: fmt.Sprintf("spec %q: schema_source=%s requires an executor", identifier, source)}
	}
	return executor.FromDict(raw)
}

// specHeader decodes the fields shared by every schema source.
func specHeader(d map[string]any) *NodeSpec {
	s := &NodeSpec{
		SchemaSource: SchemaSource(stringField(d, "schema_source")),
		Identifier:   stringField(d, "identifier"),
		NodeType:     NodeType(stringField(d, "node_type")),
		Catalog:      stringField(d, "catalog"),
		Version:      stringField(d, "version"),
	}
	if s.NodeType == "" {
		s.NodeType = NodeTypeNormal
	}
	if md, ok := d["metadata"].(map[string]any); ok {
		s.Metadata = md
	}
	s.BaseClassPath = stringField(d, "base_class_path")
	return s
}

func errorHandlersToDict(handlers map[string]ErrorHandlerSpec) map[string]any {
	out := make(map[string]any, len(handlers))
	for name, h := range handlers {
		hd := map[string]any{
			"max_retries": h.MaxRetries,
			"retry":       h.Retry,
		}
		codes := make([]any, 0, len(h.ExitCodes))
		for _, c := range h.ExitCodes {
			codes = append(codes, c)
		}
		hd["exit_codes"] = codes
		if h.Executor != nil {
			hd["executor"] = h.Executor.ToDict()
		}
		if h.Kwargs != nil {
			hd["kwargs"] = h.Kwargs
		}
		out[name] = hd
	}
	return out
}

func errorHandlersFromDict(raw map[string]any) (map[string]ErrorHandlerSpec, error) {
	out := make(map[string]ErrorHandlerSpec, len(raw))
	for name, v := range raw {
		hd, ok := v.(map[string]any)
		if !ok {
			return nil, &PersistenceError{Message: fmt.Sprintf("error handler %q is not a map", name)}
		}
		h := ErrorHandlerSpec{
			MaxRetries: intField(hd, "max_retries"),
			Retry:      intField(hd, "retry"),
		}
		if codes, ok := hd["exit_codes"].([]any); ok {
			for _, c := range codes {
				h.ExitCodes = append(h.ExitCodes, anyToInt(c))
			}
		}
		if exd, ok := hd["executor"].(map[string]any); ok {
			ex, err := executor.FromDict(exd)
			if err != nil {
				return nil, err
			}
			h.Executor = ex
		}
		if kw, ok := hd["kwargs"].(map[string]any); ok {
			h.Kwargs = kw
		}
		out[name] = h
	}
	return out, nil
}

func stringField(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return s
}

func intField(d map[string]any, key string) int {
	return anyToInt(d[key])
}

func anyToInt(v any) int {
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
