package executor

import (
	"encoding/base64"
	"fmt"
)

// ToDict renders the executor into its wire shape, tagged by mode. Each
// variant round-trips losslessly; the in-process wrapped handle is not
// serialized and is recovered through the resolver instead.
func (e *Executor) ToDict() map[string]any {
	d := map[string]any{"mode": string(e.mode)}
	switch e.mode {
	case ModeModule, ModeHandle:
		d["module_path"] = e.ModulePath
		d["callable_name"] = e.CallableName
	case ModeInline:
		d["payload"] = base64.StdEncoding.EncodeToString(e.Payload)
		if e.SourceText != "" {
			d["source_text"] = e.SourceText
		}
	case ModeGraph:
		d["graph_data"] = e.GraphData
	}
	return d
}

// FromDict rebuilds an executor from its wire shape. An unknown mode tag is
// a resolution error, never a fallback to another variant.
func FromDict(d map[string]any) (*Executor, error) {
	mode, _ := d["mode"].(string)
	switch Mode(mode) {
	case ModeModule:
		mp, _ := d["module_path"].(string)
		cn, _ := d["callable_name"].(string)
		return NewModuleRef(mp, cn)
	case ModeHandle:
		mp, _ := d["module_path"].(string)
		cn, _ := d["callable_name"].(string)
		return NewHandleRef(mp, cn, nil)
	case ModeInline:
		payload, err := decodePayload(d["payload"])
		if err != nil {
			return nil, err
		}
		src, _ := d["source_text"].(string)
		return NewInlinePayload(payload, src)
	case ModeGraph:
		gd, ok := d["graph_data"].(map[string]any)
		if !ok {
			return nil, &ResolutionError{Message: "graph executor payload is not a map"}
		}
		return NewNestedGraphRef(gd)
	default:
		return nil, &ResolutionError{Message: fmt.Sprintf("unknown executor mode %q", mode)}
	}
}

// decodePayload accepts both the base64 form produced by ToDict and the raw
// binary form msgpack decoders hand back.
func decodePayload(v any) ([]byte, error) {
	switch p := v.(type) {
	case string:
		raw, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, &ResolutionError{Message: fmt.Sprintf("inline payload is not valid base64: %v", err)}
		}
		return raw, nil
	case []byte:
		return p, nil
	default:
		return nil, &ResolutionError{Message: fmt.Sprintf("inline payload has unsupported type %T", v)}
	}
}
