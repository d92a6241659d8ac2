package property

import (
	"fmt"

	"github.com/scinode/nodegraph/internal/core/socket"
)

// checkFunc validates a candidate value for one type tag, returning the
// normalized value to store. Numeric kinds produced by JSON and msgpack
// decoders (float64 for ints, int64, etc.) normalize to the canonical Go kind
// so stored values compare predictably.
type checkFunc func(name string, v any) (any, error)

var checks = map[socket.TypeTag]checkFunc{
	socket.TypeInt:    checkInt,
	socket.TypeFloat:  checkFloat,
	socket.TypeString: checkString,
	socket.TypeBool:   checkBool,
	socket.TypeAny:    checkAny,
}

func checkInt(name string, v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case float32:
		if n == float32(int(n)) {
			return int(n), nil
		}
	}
	return nil, &ValidationError{Property: name, Value: v,
		Message: fmt.Sprintf("expected int, got %T", v)}
}

func checkFloat(name string, v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return nil, &ValidationError{Property: name, Value: v,
		Message: fmt.Sprintf("expected float, got %T", v)}
}

func checkString(name string, v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, &ValidationError{Property: name, Value: v,
		Message: fmt.Sprintf("expected string, got %T", v)}
}

func checkBool(name string, v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, &ValidationError{Property: name, Value: v,
		Message: fmt.Sprintf("expected bool, got %T", v)}
}

func checkAny(_ string, v any) (any, error) {
	return v, nil
}

// Transparent reports whether values of the tag survive a plain JSON
// round-trip. Non-transparent tags must travel through the opaque binary
// codec instead.
func Transparent(tag socket.TypeTag) bool {
	switch tag {
	case socket.TypeInt, socket.TypeFloat, socket.TypeString, socket.TypeBool, socket.TypeEnum:
		return true
	default:
		return false
	}
}
