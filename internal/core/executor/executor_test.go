package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver backs resolution tests with a fixed callable table.
type fakeResolver struct {
	callables map[string]Callable
	handles   map[string]SpecHandle
	inline    Callable
}

func (r *fakeResolver) ResolveCallable(mp, cn string) (Callable, error) {
	if c, ok := r.callables[mp+"."+cn]; ok {
		return c, nil
	}
	return nil, errors.New("not registered")
}

func (r *fakeResolver) ResolveHandle(mp, cn string) (SpecHandle, error) {
	if h, ok := r.handles[mp+"."+cn]; ok {
		return h, nil
	}
	return nil, errors.New("not registered")
}

func (r *fakeResolver) ResolveInline(payload []byte, _ string) (Callable, error) {
	if r.inline == nil {
		return nil, errors.New("no inline interpreter registered")
	}
	return r.inline, nil
}

type fakeHandle struct{ fn Callable }

func (h *fakeHandle) WrappedCallable() Callable { return h.fn }

func noop(context.Context, map[string]any) (map[string]any, error) { return nil, nil }

func TestExecutor_Constructors(t *testing.T) {
	t.Run("module requires path and name", func(t *testing.T) {
		_, err := NewModuleRef("", "run")
		var rerr *ResolutionError
		assert.ErrorAs(t, err, &rerr)
	})

	t.Run("inline requires payload", func(t *testing.T) {
		_, err := NewInlinePayload(nil, "")
		var rerr *ResolutionError
		assert.ErrorAs(t, err, &rerr)
	})

	t.Run("graph requires data", func(t *testing.T) {
		_, err := NewNestedGraphRef(nil)
		var rerr *ResolutionError
		assert.ErrorAs(t, err, &rerr)
	})
}

func TestExecutor_ResolveModule(t *testing.T) {
	r := &fakeResolver{callables: map[string]Callable{"math_ops.add": noop}}

	e, err := NewModuleRef("math_ops", "add")
	require.NoError(t, err)
	v, err := e.Resolve(r)
	require.NoError(t, err)
	assert.NotNil(t, v.(Callable))

	missing, err := NewModuleRef("math_ops", "vanished")
	require.NoError(t, err)
	_, err = missing.Resolve(r)
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "math_ops.vanished")
}

func TestExecutor_ResolveInline(t *testing.T) {
	e, err := NewInlinePayload([]byte{0x1}, "def f(): pass")
	require.NoError(t, err)

	// No interpreter registered: fail, never fall back.
	_, err = e.Resolve(&fakeResolver{})
	var rerr *ResolutionError
	assert.ErrorAs(t, err, &rerr)

	v, err := e.Resolve(&fakeResolver{inline: noop})
	require.NoError(t, err)
	assert.NotNil(t, v.(Callable))
}

func TestExecutor_ResolveGraph(t *testing.T) {
	data := map[string]any{"name": "sub"}
	e, err := NewNestedGraphRef(data)
	require.NoError(t, err)

	v, err := e.Resolve(&fakeResolver{})
	require.NoError(t, err)
	assert.Equal(t, data, v)
}

func TestExecutor_ResolveHandle(t *testing.T) {
	h := &fakeHandle{fn: noop}
	r := &fakeResolver{handles: map[string]SpecHandle{"specs.adder": h}}

	// Attached handle wins without touching the resolver.
	e, err := NewHandleRef("specs", "adder", h)
	require.NoError(t, err)
	v, err := e.Resolve(&fakeResolver{})
	require.NoError(t, err)
	assert.Same(t, h, v.(SpecHandle))

	// Detached handle (after a round-trip) goes through the resolver.
	detached, err := NewHandleRef("specs", "adder", nil)
	require.NoError(t, err)
	v, err = detached.Resolve(r)
	require.NoError(t, err)
	assert.Same(t, h, v.(SpecHandle))

	c, err := detached.ResolveCallable(r)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestExecutor_DictRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Executor
	}{
		{
			name: "module",
			build: func(t *testing.T) *Executor {
				e, err := NewModuleRef("math_ops", "add")
				require.NoError(t, err)
				return e
			},
		},
		{
			name: "inline",
			build: func(t *testing.T) *Executor {
				e, err := NewInlinePayload([]byte{0xde, 0xad}, "lambda x: x")
				require.NoError(t, err)
				return e
			},
		},
		{
			name: "graph",
			build: func(t *testing.T) *Executor {
				e, err := NewNestedGraphRef(map[string]any{"name": "sub", "nodes": map[string]any{}})
				require.NoError(t, err)
				return e
			},
		},
		{
			name: "handle",
			build: func(t *testing.T) *Executor {
				e, err := NewHandleRef("specs", "adder", &fakeHandle{})
				require.NoError(t, err)
				return e
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.build(t)
			back, err := FromDict(orig.ToDict())
			require.NoError(t, err)
			assert.Equal(t, orig.Mode(), back.Mode())
			assert.Equal(t, orig.ModulePath, back.ModulePath)
			assert.Equal(t, orig.CallableName, back.CallableName)
			assert.Equal(t, orig.Payload, back.Payload)
			assert.Equal(t, orig.SourceText, back.SourceText)
			assert.Equal(t, orig.GraphData, back.GraphData)
		})
	}
}

func TestExecutor_FromDictUnknownMode(t *testing.T) {
	_, err := FromDict(map[string]any{"mode": "telepathy"})
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "telepathy")
}
