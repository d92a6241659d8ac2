package property

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scinode/nodegraph/internal/core/socket"
)

func TestProperty_SetValue(t *testing.T) {
	tests := []struct {
		name    string
		tag     socket.TypeTag
		value   any
		want    any
		wantErr bool
	}{
		{"int ok", socket.TypeInt, 5, 5, false},
		{"int from json float", socket.TypeInt, float64(7), 7, false},
		{"int rejects fraction", socket.TypeInt, 1.5, nil, true},
		{"int rejects string", socket.TypeInt, "5", nil, true},
		{"float ok", socket.TypeFloat, 2.5, 2.5, false},
		{"float from int", socket.TypeFloat, 3, 3.0, false},
		{"float rejects bool", socket.TypeFloat, true, nil, true},
		{"string ok", socket.TypeString, "hi", "hi", false},
		{"string rejects int", socket.TypeString, 1, nil, true},
		{"bool ok", socket.TypeBool, true, true, false},
		{"bool rejects string", socket.TypeBool, "true", nil, true},
		{"any accepts map", socket.TypeAny, map[string]any{"k": 1}, map[string]any{"k": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New("p", tt.tag, nil)
			require.NoError(t, err)
			err = p.SetValue(tt.value)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, p.Value())
			}
		})
	}
}

func TestProperty_InvalidAssignmentKeepsValue(t *testing.T) {
	p, err := New("count", socket.TypeInt, 10)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(42))

	err = p.SetValue("not an int")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Rollback point is the last valid value, not the default.
	assert.Equal(t, 42, p.Value())
}

func TestProperty_ChangeCallback(t *testing.T) {
	p, err := New("x", socket.TypeInt, 1)
	require.NoError(t, err)

	var gotOld, gotNew any
	p.OnChange(func(old, new any) { gotOld, gotNew = old, new })

	require.NoError(t, p.SetValue(2))
	assert.Equal(t, 1, gotOld)
	assert.Equal(t, 2, gotNew)

	// A rejected assignment must not fire the callback.
	gotOld, gotNew = nil, nil
	require.Error(t, p.SetValue("bad"))
	assert.Nil(t, gotOld)
	assert.Nil(t, gotNew)
}

func TestProperty_Copy(t *testing.T) {
	p, err := New("x", socket.TypeInt, 1)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(5))

	c := p.Copy()
	require.NoError(t, c.SetValue(9))

	assert.Equal(t, 5, p.Value())
	assert.Equal(t, 9, c.Value())
}

func TestProperty_UnknownTypeTag(t *testing.T) {
	_, err := New("x", socket.TypeTag("matrix"), nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEnumProperty(t *testing.T) {
	options := []EnumOption{
		{Key: "add", Content: "test_add", Description: "adds things"},
		{Key: "sqrt", Content: "test_sqrt", Description: "takes square roots"},
	}
	p, err := NewEnum("function", options, "add")
	require.NoError(t, err)

	content, err := p.Content()
	require.NoError(t, err)
	assert.Equal(t, "test_add", content)

	require.NoError(t, p.SetValue("sqrt"))
	content, err = p.Content()
	require.NoError(t, err)
	assert.Equal(t, "test_sqrt", content)

	// Unknown key is rejected and the selection is unchanged.
	err = p.SetValue("unknown")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	content, err = p.Content()
	require.NoError(t, err)
	assert.Equal(t, "test_sqrt", content)
}

func TestEnumProperty_BadDefault(t *testing.T) {
	_, err := NewEnum("function", []EnumOption{{Key: "a", Content: "x"}}, "b")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProperty_DictRoundTrip(t *testing.T) {
	p, err := New("count", socket.TypeInt, 1)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(42))
	p.Metadata = map[string]any{"unit": "items"}

	d, err := p.ToDict()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mode": "json"}, d["serialize"])

	back, err := FromDict(d)
	require.NoError(t, err)
	assert.Equal(t, 42, back.Value())
	assert.Equal(t, p.Name, back.Name)
	assert.Equal(t, p.Identifier, back.Identifier)
}

func TestProperty_DictRoundTrip_Opaque(t *testing.T) {
	p, err := New("payload", socket.TypeAny, nil)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(map[string]any{"nested": []any{int8(1), "two"}}))

	d, err := p.ToDict()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mode": "msgpack"}, d["serialize"])
	_, isBlob := d["value"].([]byte)
	assert.True(t, isBlob, "opaque value must travel as a binary blob")

	back, err := FromDict(d)
	require.NoError(t, err)
	got, ok := back.Value().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "two", got["nested"].([]any)[1])
}

func TestProperty_DictRoundTrip_OpaqueThroughJSON(t *testing.T) {
	p, err := New("payload", socket.TypeAny, nil)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(map[string]any{"nested": []any{"two"}}))

	d, err := p.ToDict()
	require.NoError(t, err)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	var transported map[string]any
	require.NoError(t, json.Unmarshal(raw, &transported))

	back, err := FromDict(transported)
	require.NoError(t, err)
	got, ok := back.Value().(map[string]any)
	require.True(t, ok, "opaque value must decode back to its original shape, got %T", back.Value())
	assert.Equal(t, "two", got["nested"].([]any)[0])

	t.Run("corrupt base64", func(t *testing.T) {
		transported["value"] = "not base64!"
		_, err := FromDict(transported)
		assert.ErrorContains(t, err, "base64")
	})
}

func TestProperty_DictRoundTrip_Enum(t *testing.T) {
	p, err := NewEnum("op", []EnumOption{
		{Key: "add", Content: "test_add"},
		{Key: "sqrt", Content: "test_sqrt"},
	}, "add")
	require.NoError(t, err)
	require.NoError(t, p.SetValue("sqrt"))

	d, err := p.ToDict()
	require.NoError(t, err)
	back, err := FromDict(d)
	require.NoError(t, err)

	content, err := back.Content()
	require.NoError(t, err)
	assert.Equal(t, "test_sqrt", content)
	assert.Len(t, back.Options(), 2)
}
