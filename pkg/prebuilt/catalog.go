package prebuilt

import (
	"context"
	"fmt"

	"github.com/scinode/nodegraph/internal/core/executor"
	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
	"github.com/scinode/nodegraph/internal/registry"
)

// ModulePath is the callable namespace the catalog registers under.
const ModulePath = "nodegraph.prebuilt"

// AddSpec returns the spec of a two-input float adder.
func AddSpec() (*spec.NodeSpec, error) {
	return binaryMathSpec("add")
}

// MultiplySpec returns the spec of a two-input float multiplier.
func MultiplySpec() (*spec.NodeSpec, error) {
	return binaryMathSpec("multiply")
}

// SumSpec returns the spec of a gather node summing a dynamic set of float
// inputs.
func SumSpec() (*spec.NodeSpec, error) {
	sp, err := spec.New("sum")
	if err != nil {
		return nil, err
	}
	sp.Catalog = "math"
	sp.Inputs, err = socket.Dynamic("inputs", socket.Leaf(socket.TypeFloat))
	if err != nil {
		return nil, err
	}
	sp.Outputs, err = socket.Namespace("outputs", socket.Field("result", socket.TypeFloat))
	if err != nil {
		return nil, err
	}
	sp.Executor, err = executor.NewModuleRef(ModulePath, "sum")
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// IfZoneSpec returns the spec of a conditional control zone. The zone reads
// one boolean condition and exposes true/false control branches; its grouped
// members run only when the matching branch fires.
func IfZoneSpec() (*spec.NodeSpec, error) {
	sp, err := spec.New("if_zone")
	if err != nil {
		return nil, err
	}
	sp.NodeType = spec.NodeTypeGroup
	sp.Catalog = "control"
	sp.Inputs, err = socket.Namespace("inputs",
		socket.FieldWithDefault("condition", socket.TypeBool, false))
	if err != nil {
		return nil, err
	}
	sp.Outputs, err = socket.Namespace("outputs")
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// WhileZoneSpec returns the spec of an iterating control zone with a
// condition input and an iteration cap.
func WhileZoneSpec() (*spec.NodeSpec, error) {
	sp, err := spec.New("while_zone")
	if err != nil {
		return nil, err
	}
	sp.NodeType = spec.NodeTypeGroup
	sp.Catalog = "control"
	sp.Inputs, err = socket.Namespace("inputs",
		socket.FieldWithDefault("condition", socket.TypeBool, true),
		socket.FieldWithDefault("max_iterations", socket.TypeInt, 10000),
	)
	if err != nil {
		return nil, err
	}
	sp.Outputs, err = socket.Namespace("outputs")
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func binaryMathSpec(identifier string) (*spec.NodeSpec, error) {
	sp, err := spec.New(identifier)
	if err != nil {
		return nil, err
	}
	sp.Catalog = "math"
	sp.Inputs, err = socket.Namespace("inputs",
		socket.FieldWithDefault("x", socket.TypeFloat, 0.0),
		socket.FieldWithDefault("y", socket.TypeFloat, 0.0),
	)
	if err != nil {
		return nil, err
	}
	sp.Outputs, err = socket.Namespace("outputs", socket.Field("result", socket.TypeFloat))
	if err != nil {
		return nil, err
	}
	sp.Executor, err = executor.NewModuleRef(ModulePath, identifier)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// RegisterAll wires the catalog into reg: spec constructors by identifier
// and the math callables under ModulePath.
func RegisterAll(reg *registry.Registry) error {
	constructors := map[string]registry.Constructor{
		"add":        AddSpec,
		"multiply":   MultiplySpec,
		"sum":        SumSpec,
		"if_zone":    IfZoneSpec,
		"while_zone": WhileZoneSpec,
	}
	for id, c := range constructors {
		if err := reg.RegisterIdentifier(id, c); err != nil {
			return err
		}
	}

	callables := map[string]executor.Callable{
		"add":      addCallable,
		"multiply": multiplyCallable,
		"sum":      sumCallable,
	}
	for name, fn := range callables {
		if err := reg.RegisterCallable(ModulePath, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func addCallable(_ context.Context, in map[string]any) (map[string]any, error) {
	x, y, err := binaryArgs(in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": x + y}, nil
}

func multiplyCallable(_ context.Context, in map[string]any) (map[string]any, error) {
	x, y, err := binaryArgs(in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": x * y}, nil
}

func sumCallable(_ context.Context, in map[string]any) (map[string]any, error) {
	total := 0.0
	for key, v := range in {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("input %q is not numeric", key)
		}
		total += f
	}
	return map[string]any{"result": total}, nil
}

func binaryArgs(in map[string]any) (float64, float64, error) {
	x, ok := toFloat(in["x"])
	if !ok {
		return 0, 0, fmt.Errorf("input \"x\" is not numeric")
	}
	y, ok := toFloat(in["y"])
	if !ok {
		return 0, 0, fmt.Errorf("input \"y\" is not numeric")
	}
	return x, y, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
