package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
)

func addSpec(t *testing.T) *spec.NodeSpec {
	t.Helper()
	inputs, err := socket.Namespace("inputs",
		socket.FieldWithDefault("a", socket.TypeInt, 0),
		socket.FieldWithDefault("b", socket.TypeInt, 0),
	)
	require.NoError(t, err)
	outputs, err := socket.Namespace("outputs", socket.Field("result", socket.TypeInt))
	require.NoError(t, err)

	s, err := spec.New("test_add")
	require.NoError(t, err)
	s.Inputs = inputs
	s.Outputs = outputs
	return s
}

func gatherSpec(t *testing.T) *spec.NodeSpec {
	t.Helper()
	inputs, err := socket.Dynamic("inputs", socket.Leaf(socket.TypeInt),
		socket.FieldWithDefault("total", socket.TypeInt, 0))
	require.NoError(t, err)
	outputs, err := socket.Namespace("outputs", socket.Field("result", socket.TypeInt))
	require.NoError(t, err)

	s, err := spec.New("test_gather")
	require.NoError(t, err)
	s.Inputs = inputs
	s.Outputs = outputs
	return s
}

func TestGraph_AddNode(t *testing.T) {
	g := New("wt")
	sp := addSpec(t)

	n, err := g.AddNode("n1", sp)
	require.NoError(t, err)
	assert.Equal(t, "test_add", n.Identifier)
	assert.Equal(t, StateCreated, n.State)
	assert.NotEmpty(t, n.UUID)

	t.Run("nil spec", func(t *testing.T) {
		_, err := g.AddNode("n2", nil)
		assert.ErrorIs(t, err, ErrNilSpec)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := g.AddNode("n1", sp)
		assert.ErrorIs(t, err, ErrDuplicateNode)
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, name := range []string{"", "has space", "dot.ted", "da-sh"} {
			_, err := g.AddNode(name, sp)
			assert.ErrorIs(t, err, ErrInvalidNodeName, "name %q", name)
		}
	})
}

func TestGraph_NodeOrder(t *testing.T) {
	g := New("wt")
	sp := addSpec(t)
	for _, name := range []string{"n3", "n1", "n2"} {
		_, err := g.AddNode(name, sp)
		require.NoError(t, err)
	}
	// Insertion order, not lexical order.
	assert.Equal(t, []string{"n3", "n1", "n2"}, g.NodeNames())
}

func TestNode_Materialization(t *testing.T) {
	g := New("wt")
	n, err := g.AddNode("n1", addSpec(t))
	require.NoError(t, err)

	a, ok := n.Inputs.Child("a")
	require.True(t, ok)
	assert.Equal(t, "inputs.a", a.FullName)
	require.NotNil(t, a.Property)
	assert.Equal(t, 0, a.Property.Value())

	// Properties are indexed by dotted path relative to the inputs root.
	p, ok := n.Property("a")
	require.True(t, ok)
	require.NoError(t, p.SetValue(5))
	assert.Equal(t, 5, a.Property.Value())

	// Each node owns its property instances exclusively.
	n2, err := g.AddNode("n2", addSpec(t))
	require.NoError(t, err)
	p2, ok := n2.Property("a")
	require.True(t, ok)
	assert.Equal(t, 0, p2.Value())
}

func TestNode_SetProperty(t *testing.T) {
	g := New("wt")
	n, err := g.AddNode("n1", addSpec(t))
	require.NoError(t, err)

	require.NoError(t, n.SetProperty("a", 7))
	p, _ := n.Property("a")
	assert.Equal(t, 7, p.Value())

	assert.ErrorIs(t, n.SetProperty("missing", 1), ErrPropertyNotFound)

	// A rejected value leaves the stored value untouched.
	require.Error(t, n.SetProperty("a", "bad"))
	assert.Equal(t, 7, p.Value())
}

func TestGraph_AddLink(t *testing.T) {
	g := New("wt")
	sp := addSpec(t)
	_, err := g.AddNode("n1", sp)
	require.NoError(t, err)
	_, err = g.AddNode("n2", sp)
	require.NoError(t, err)

	t.Run("valid link", func(t *testing.T) {
		l, err := g.AddLink("n1", "result", "n2", "a")
		require.NoError(t, err)
		assert.Equal(t, "n1.result -> n2.a", l.String())
		assert.Len(t, g.Links, 1)
	})

	t.Run("unknown source node", func(t *testing.T) {
		_, err := g.AddLink("ghost", "result", "n2", "a")
		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("unknown target socket", func(t *testing.T) {
		_, err := g.AddLink("n1", "result", "n2", "zzz")
		assert.ErrorIs(t, err, ErrSocketNotFound)
	})

	t.Run("unknown source socket", func(t *testing.T) {
		_, err := g.AddLink("n1", "zzz", "n2", "b")
		assert.ErrorIs(t, err, ErrSocketNotFound)
	})
}

func TestGraph_AddLink_DynamicSocket(t *testing.T) {
	g := New("wt")
	_, err := g.AddNode("src", addSpec(t))
	require.NoError(t, err)
	gather, err := g.AddNode("gather", gatherSpec(t))
	require.NoError(t, err)

	// Linking into an unseen key of a dynamic namespace creates the child.
	_, err = g.AddLink("src", "result", "gather", "item_0")
	require.NoError(t, err)

	c, ok := gather.Inputs.Child("item_0")
	require.True(t, ok)
	assert.Equal(t, socket.TypeInt, c.TypeTag)
	_, ok = gather.Property("item_0")
	assert.True(t, ok)

	// Fixed fields still resolve normally.
	_, err = g.AddLink("src", "result", "gather", "total")
	require.NoError(t, err)
}

func TestGraph_AddControlLink(t *testing.T) {
	g := New("wt")
	sp := addSpec(t)
	_, err := g.AddNode("zone", sp)
	require.NoError(t, err)
	_, err = g.AddNode("body", sp)
	require.NoError(t, err)

	_, err = g.AddControlLink("zone", "body", "body", "entry")
	require.NoError(t, err)
	assert.Len(t, g.CtrlLinks, 1)
	assert.Empty(t, g.Links, "control links never join the data edge list")

	_, err = g.AddControlLink("zone", "body", "ghost", "entry")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_LinkLimit(t *testing.T) {
	inputs, err := socket.Namespace("inputs", socket.Field("only", socket.TypeInt))
	require.NoError(t, err)
	inputs.ChildLinkLimit = 1
	outputs, err := socket.Namespace("outputs", socket.Field("result", socket.TypeInt))
	require.NoError(t, err)
	limited, err := spec.New("test_limited")
	require.NoError(t, err)
	limited.Inputs = inputs
	limited.Outputs = outputs

	g := New("wt")
	_, err = g.AddNode("a", addSpec(t))
	require.NoError(t, err)
	_, err = g.AddNode("b", addSpec(t))
	require.NoError(t, err)
	_, err = g.AddNode("sink", limited)
	require.NoError(t, err)

	_, err = g.AddLink("a", "result", "sink", "only")
	require.NoError(t, err)
	_, err = g.AddLink("b", "result", "sink", "only")
	assert.ErrorIs(t, err, ErrLinkLimitExceeded)
}
