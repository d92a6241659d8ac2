package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scinode/nodegraph/internal/core/executor"
	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
)

func constructor(t *testing.T) Constructor {
	t.Helper()
	return func() (*spec.NodeSpec, error) {
		s, err := spec.New("test_add")
		if err != nil {
			return nil, err
		}
		s.Inputs, err = socket.Namespace("inputs", socket.Field("x", socket.TypeInt))
		return s, err
	}
}

func TestRegistry_Identifiers(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterIdentifier("test_add", constructor(t)))

	c, err := r.ResolveIdentifier("test_add")
	require.NoError(t, err)
	s, err := c()
	require.NoError(t, err)
	assert.Equal(t, "test_add", s.Identifier)

	t.Run("duplicate", func(t *testing.T) {
		err := r.RegisterIdentifier("test_add", constructor(t))
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("invalid identifier", func(t *testing.T) {
		err := r.RegisterIdentifier("has space", constructor(t))
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := r.ResolveIdentifier("missing")
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestRegistry_Types(t *testing.T) {
	type vector struct{ X, Y float64 }
	r := New()
	require.NoError(t, r.RegisterType(vector{}, "test_vector"))

	id, err := r.ResolveType(vector{X: 1})
	require.NoError(t, err)
	assert.Equal(t, "test_vector", id)

	_, err = r.ResolveType(42)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistry_CallablesAndHandles(t *testing.T) {
	r := New()
	fn := executor.Callable(func(context.Context, map[string]any) (map[string]any, error) {
		return nil, nil
	})
	require.NoError(t, r.RegisterCallable("math_ops", "add", fn))

	got, err := r.ResolveCallable("math_ops", "add")
	require.NoError(t, err)
	assert.NotNil(t, got)

	inner, err := spec.New("test_add")
	require.NoError(t, err)
	h := spec.NewHandle(inner, fn)
	require.NoError(t, r.RegisterHandle("math_ops", "add_handle", h))

	back, err := r.ResolveHandle("math_ops", "add_handle")
	require.NoError(t, err)
	assert.Same(t, h, back)

	// The registry satisfies the executor's resolver contract end to end.
	ex, err := executor.NewHandleRef("math_ops", "add_handle", nil)
	require.NoError(t, err)
	resolved, err := ex.Resolve(r)
	require.NoError(t, err)
	assert.Same(t, h, resolved)
}

func TestRegistry_Inline(t *testing.T) {
	r := New()
	_, err := r.ResolveInline([]byte{0x1}, "")
	assert.ErrorIs(t, err, ErrNoInterpreter)

	r.SetInlineInterpreter(func(payload []byte, _ string) (executor.Callable, error) {
		return func(context.Context, map[string]any) (map[string]any, error) {
			return map[string]any{"payload_len": len(payload)}, nil
		}, nil
	})
	fn, err := r.ResolveInline([]byte{0x1, 0x2}, "")
	require.NoError(t, err)
	out, err := fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out["payload_len"])
}

func TestRegistry_Teardown(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterIdentifier("test_add", constructor(t)))
	r.Teardown()
	_, err := r.ResolveIdentifier("test_add")
	assert.ErrorIs(t, err, ErrNotRegistered)
}
