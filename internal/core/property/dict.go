package property

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/scinode/nodegraph/internal/core/socket"
)

// Codec modes named in serialize/deserialize descriptors. A remote reader
// reconstructs the value from the descriptor alone, without importing this
// package: "json" values are stored as-is, "msgpack" values as a binary blob.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// ToDict renders the property into its wire shape:
// {value, name, identifier, type_tag, default, metadata, list_index,
// serialize, deserialize, options?}. Values of non-transparent tags are
// encoded through the opaque msgpack codec.
func (p *Property) ToDict() (map[string]any, error) {
	d := map[string]any{
		"name":       p.Name,
		"identifier": p.Identifier,
		"type_tag":   string(p.TypeTag),
		"list_index": p.ListIndex,
	}
	if p.Metadata != nil {
		d["metadata"] = p.Metadata
	}
	mode := CodecJSON
	if !Transparent(p.TypeTag) {
		mode = CodecMsgpack
	}
	d["serialize"] = map[string]any{"mode": mode}
	d["deserialize"] = map[string]any{"mode": mode}

	value, err := encodeValue(mode, p.Value())
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", p.Name, err)
	}
	d["value"] = value
	if p.Default != nil {
		dv, err := encodeValue(mode, p.Default)
		if err != nil {
			return nil, fmt.Errorf("property %q default: %w", p.Name, err)
		}
		d["default"] = dv
	}
	if p.TypeTag == socket.TypeEnum {
		opts := make([]any, 0, len(p.options))
		for _, o := range p.options {
			opts = append(opts, []any{o.Key, o.Content, o.Description})
		}
		d["options"] = opts
	}
	return d, nil
}

// FromDict rebuilds a property from its wire shape, decoding the value
// through the codec named by the deserialize descriptor.
func FromDict(d map[string]any) (*Property, error) {
	name, _ := d["name"].(string)
	tag := socket.TypeTag(stringOr(d["type_tag"], string(socket.TypeAny)))

	mode := CodecJSON
	if desc, ok := d["deserialize"].(map[string]any); ok {
		mode = stringOr(desc["mode"], CodecJSON)
	}

	var p *Property
	var err error
	if tag == socket.TypeEnum {
		opts, optErr := decodeOptions(name, d["options"])
		if optErr != nil {
			return nil, optErr
		}
		def := stringOr(d["default"], "")
		p, err = NewEnum(name, opts, def)
	} else {
		var def any
		if raw, ok := d["default"]; ok {
			if def, err = decodeValue(mode, raw); err != nil {
				return nil, fmt.Errorf("property %q default: %w", name, err)
			}
		}
		p, err = New(name, tag, def)
	}
	if err != nil {
		return nil, err
	}
	if id, ok := d["identifier"].(string); ok && id != "" {
		p.Identifier = id
	}
	if md, ok := d["metadata"].(map[string]any); ok {
		p.Metadata = md
	}
	if idx, ok := d["list_index"]; ok {
		p.ListIndex = intOr(idx)
	}
	if raw, ok := d["value"]; ok && raw != nil {
		v, err := decodeValue(mode, raw)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		if err := p.SetValue(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func encodeValue(mode string, v any) (any, error) {
	if v == nil || mode == CodecJSON {
		return v, nil
	}
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("opaque encode failed: %w", err)
	}
	return raw, nil
}

// decodeValue accepts both the binary blob produced by encodeValue and the
// base64 form a JSON transport renders that blob as.
func decodeValue(mode string, raw any) (any, error) {
	if raw == nil || mode == CodecJSON {
		return raw, nil
	}
	var blob []byte
	switch b := raw.(type) {
	case []byte:
		blob = b
	case string:
		decoded, err := base64.StdEncoding.DecodeString(b)
		if err != nil {
			return nil, fmt.Errorf("opaque value is not valid base64: %w", err)
		}
		blob = decoded
	default:
		return nil, fmt.Errorf("opaque value has unsupported type %T", raw)
	}
	var v any
	if err := msgpack.Unmarshal(blob, &v); err != nil {
		return nil, fmt.Errorf("opaque decode failed: %w", err)
	}
	return v, nil
}

func decodeOptions(name string, raw any) ([]EnumOption, error) {
	rows, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Property: name, Value: raw,
			Message: "enum property requires an options list"}
	}
	opts := make([]EnumOption, 0, len(rows))
	for _, r := range rows {
		row, ok := r.([]any)
		if !ok || len(row) < 2 {
			return nil, &ValidationError{Property: name, Value: r,
				Message: "enum option must be a [key, content, description] row"}
		}
		opt := EnumOption{Key: stringOr(row[0], ""), Content: stringOr(row[1], "")}
		if len(row) > 2 {
			opt.Description = stringOr(row[2], "")
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func intOr(v any) int {
	switch n := v.(type) {
	case int:
		return n
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
