package nodegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
)

func addSpec(t *testing.T) *spec.NodeSpec {
	t.Helper()
	sp, err := spec.New("demo_add")
	require.NoError(t, err)
	sp.Inputs, err = socket.Namespace("inputs",
		socket.FieldWithDefault("a", socket.TypeInt, 0),
		socket.FieldWithDefault("b", socket.TypeInt, 0),
	)
	require.NoError(t, err)
	sp.Outputs, err = socket.Namespace("outputs", socket.Field("result", socket.TypeInt))
	require.NoError(t, err)
	return sp
}

func TestRuntime_SpecRoundTrip(t *testing.T) {
	rt := NewRuntime()
	ctx := context.Background()
	sp := addSpec(t)

	rec, err := rt.SaveSpec(ctx, sp)
	require.NoError(t, err)
	assert.Equal(t, "demo_add", rec.Identifier)

	back, err := rt.LoadSpec(ctx, "demo_add", rec.Version)
	require.NoError(t, err)
	assert.True(t, sp.Equal(back))

	latest, err := rt.LatestSpec(ctx, "demo_add")
	require.NoError(t, err)
	assert.True(t, sp.Equal(latest))
}

func TestRuntime_ConnectivityAndDiff(t *testing.T) {
	rt := NewRuntime()
	sp := addSpec(t)

	g := rt.NewGraph("wt")
	_, err := g.AddNode("n1", sp)
	require.NoError(t, err)
	_, err = g.AddNode("n2", sp)
	require.NoError(t, err)
	_, err = g.AddLink("n1", "result", "n2", "a")
	require.NoError(t, err)

	conn, err := rt.Connectivity(g)
	require.NoError(t, err)
	desc, err := conn.AllDescendants("n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, desc)

	g2 := rt.NewGraph("wt")
	_, err = g2.AddNode("n1", sp)
	require.NoError(t, err)

	diff, err := rt.Diff(g, g2)
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, diff.RemovedNodes)
}
