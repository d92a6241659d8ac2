package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestNamespace_Build(t *testing.T) {
	ns, err := Namespace("inputs",
		Field("x", TypeInt),
		FieldWithDefault("y", TypeFloat, 0.5),
	)
	require.NoError(t, err)

	assert.True(t, ns.IsNamespace())
	assert.Equal(t, []string{"x", "y"}, ns.FieldNames())

	x, ok := ns.Field("x")
	require.True(t, ok)
	assert.Equal(t, TypeInt, x.TypeTag)
	assert.True(t, x.Required)

	y, ok := ns.Field("y")
	require.True(t, ok)
	assert.False(t, y.Required)
	assert.Equal(t, 0.5, y.Default)
}

func TestNamespace_DuplicateField(t *testing.T) {
	_, err := Namespace("inputs",
		Field("x", TypeInt),
		Field("x", TypeFloat),
	)
	assert.ErrorIs(t, err, ErrDuplicateField)
}

func TestNamespace_InvalidFieldName(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{"empty", ""},
		{"space", "a b"},
		{"dash", "a-b"},
		{"leading digit", "1x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Namespace("inputs", Field(tt.field, TypeInt))
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestDynamic_Build(t *testing.T) {
	ns, err := Dynamic("inputs", Leaf(TypeInt), Field("total", TypeInt))
	require.NoError(t, err)

	assert.True(t, ns.Dynamic)
	require.NotNil(t, ns.ItemType)
	assert.Equal(t, TypeInt, ns.ItemType.TypeTag)

	// Fixed fields survive alongside the dynamic catch-all.
	total, ok := ns.Field("total")
	require.True(t, ok)
	assert.Equal(t, TypeInt, total.TypeTag)
}

func TestDynamic_MissingItemType(t *testing.T) {
	_, err := Dynamic("inputs", nil)
	assert.ErrorIs(t, err, ErrMissingItemType)
}

func TestSpec_Equal_OrderIndependent(t *testing.T) {
	a, err := Namespace("inputs", Field("x", TypeInt), Field("y", TypeFloat))
	require.NoError(t, err)
	b, err := Namespace("inputs", Field("y", TypeFloat), Field("x", TypeInt))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
}

func TestSpec_Equal_Structural(t *testing.T) {
	base, err := Namespace("inputs", Field("x", TypeInt))
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func(t *testing.T) *Spec
		equal bool
	}{
		{
			name: "identical",
			build: func(t *testing.T) *Spec {
				s, err := Namespace("inputs", Field("x", TypeInt))
				require.NoError(t, err)
				return s
			},
			equal: true,
		},
		{
			name: "different field type",
			build: func(t *testing.T) *Spec {
				s, err := Namespace("inputs", Field("x", TypeFloat))
				require.NoError(t, err)
				return s
			},
			equal: false,
		},
		{
			name: "extra field",
			build: func(t *testing.T) *Spec {
				s, err := Namespace("inputs", Field("x", TypeInt), Field("z", TypeInt))
				require.NoError(t, err)
				return s
			},
			equal: false,
		},
		{
			name: "different default",
			build: func(t *testing.T) *Spec {
				s, err := Namespace("inputs", FieldWithDefault("x", TypeInt, 3))
				require.NoError(t, err)
				return s
			},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, base.Equal(tt.build(t)))
		})
	}
}

func TestSpec_DictRoundTrip_Static(t *testing.T) {
	nested, err := Namespace("point", Field("x", TypeFloat), Field("y", TypeFloat))
	require.NoError(t, err)
	ns, err := Namespace("inputs",
		Field("name", TypeString),
		FieldWithDefault("count", TypeInt, 1),
		FieldSpec("origin", nested),
	)
	require.NoError(t, err)

	back, err := FromDict("inputs", ns.ToDict())
	require.NoError(t, err)
	assert.True(t, ns.Equal(back))
}

func TestSpec_DictRoundTrip_IntDefaultThroughMsgpack(t *testing.T) {
	ns, err := Namespace("inputs", FieldWithDefault("x", TypeInt, 1))
	require.NoError(t, err)

	// Binary store codecs decode small integers into narrower kinds.
	raw, err := msgpack.Marshal(ns.ToDict())
	require.NoError(t, err)
	var d map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &d))

	back, err := FromDict("inputs", d)
	require.NoError(t, err)
	assert.True(t, ns.Equal(back))
	assert.True(t, back.Equal(ns))
}

func TestSpec_DictRoundTrip_Dynamic(t *testing.T) {
	ns, err := Dynamic("inputs", Leaf(TypeInt), Field("total", TypeInt))
	require.NoError(t, err)

	back, err := FromDict("inputs", ns.ToDict())
	require.NoError(t, err)
	assert.True(t, ns.Equal(back))
	assert.True(t, back.Dynamic)
	require.NotNil(t, back.ItemType)
	assert.Equal(t, TypeInt, back.ItemType.TypeTag)
}

func TestSpec_DictRoundTrip_DeepNesting(t *testing.T) {
	inner, err := Namespace("c", Field("v", TypeBool))
	require.NoError(t, err)
	mid, err := Dynamic("b", Leaf(TypeString), FieldSpec("c", inner))
	require.NoError(t, err)
	root, err := Namespace("a", FieldSpec("b", mid))
	require.NoError(t, err)

	back, err := FromDict("a", root.ToDict())
	require.NoError(t, err)
	assert.True(t, root.Equal(back))
}

func TestFromDict_LeafWithFields(t *testing.T) {
	d := map[string]any{
		"type_tag": "int",
		"fields":   map[string]any{"x": map[string]any{"type_tag": "int"}},
	}
	_, err := FromDict("bad", d)
	assert.ErrorIs(t, err, ErrNotNamespace)
}
