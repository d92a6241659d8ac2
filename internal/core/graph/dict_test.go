package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dictFixture(t *testing.T) *Graph {
	t.Helper()
	g := New("dict_wt")
	_, err := g.AddNode("n1", addSpec(t))
	require.NoError(t, err)
	_, err = g.AddNode("n2", addSpec(t))
	require.NoError(t, err)
	_, err = g.AddLink("n1", "result", "n2", "a")
	require.NoError(t, err)
	_, err = g.AddControlLink("n1", "exit", "n2", "entry")
	require.NoError(t, err)

	n1, _ := g.Node("n1")
	require.NoError(t, n1.SetProperty("a", 7))
	n1.Position = [2]float64{1.5, -2}
	n1.Description = "first adder"
	return g
}

func TestGraph_DictRoundTrip(t *testing.T) {
	g := dictFixture(t)

	back, err := FromDict(g.ToDict(), nil)
	require.NoError(t, err)

	assert.Equal(t, g.UUID, back.UUID)
	assert.Equal(t, g.Name, back.Name)
	assert.Equal(t, g.NodeNames(), back.NodeNames())
	require.Len(t, back.Links, 1)
	require.Len(t, back.CtrlLinks, 1)
	assert.Equal(t, "n1", back.Links[0].FromNode)
	assert.Equal(t, "entry", back.CtrlLinks[0].ToSocket)

	n1, ok := back.Node("n1")
	require.True(t, ok)
	p, ok := n1.Property("a")
	require.True(t, ok)
	assert.Equal(t, 7, p.Value())
	assert.Equal(t, [2]float64{1.5, -2}, n1.Position)
	assert.Equal(t, "first adder", n1.Description)

	orig, _ := g.Node("n1")
	assert.Equal(t, orig.UUID, n1.UUID)
}

func TestGraph_DictRoundTripThroughJSON(t *testing.T) {
	g := dictFixture(t)

	raw, err := json.Marshal(g.ToDict())
	require.NoError(t, err)
	var d map[string]any
	require.NoError(t, json.Unmarshal(raw, &d))

	back, err := FromDict(d, nil)
	require.NoError(t, err)
	assert.Equal(t, g.NodeNames(), back.NodeNames())

	n1, ok := back.Node("n1")
	require.True(t, ok)
	p, _ := n1.Property("a")
	assert.Equal(t, 7, p.Value())
	assert.Equal(t, [2]float64{1.5, -2}, n1.Position)
}

func TestGraph_DictRoundTripDynamicSockets(t *testing.T) {
	g := New("dict_dyn")
	_, err := g.AddNode("src", addSpec(t))
	require.NoError(t, err)
	_, err = g.AddNode("gather", gatherSpec(t))
	require.NoError(t, err)
	_, err = g.AddLink("src", "result", "gather", "item_0")
	require.NoError(t, err)

	gather, _ := g.Node("gather")
	require.NoError(t, gather.SetProperty("item_0", 9))

	back, err := FromDict(g.ToDict(), nil)
	require.NoError(t, err)

	bg, ok := back.Node("gather")
	require.True(t, ok)
	p, ok := bg.Property("item_0")
	require.True(t, ok)
	assert.Equal(t, 9, p.Value())

	require.Len(t, back.Links, 1)
	assert.Equal(t, "item_0", back.Links[0].ToSocket)
}

func TestGraph_FromDict_RejectsDanglingLink(t *testing.T) {
	g := dictFixture(t)
	d := g.ToDict()
	d["links"] = append(d["links"].([]any), map[string]any{
		"from_node": "ghost", "from_socket": "result",
		"to_node": "n2", "to_socket": "b",
	})
	_, err := FromDict(d, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_FromDict_MissingNodes(t *testing.T) {
	_, err := FromDict(map[string]any{"name": "empty"}, nil)
	assert.ErrorIs(t, err, ErrInvalidGraphDict)
}
