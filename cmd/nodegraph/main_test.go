// Package main tests for the nodegraph CLI.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scinode/nodegraph/internal/adapters/repository/sqlite"
	"github.com/scinode/nodegraph/internal/core/graph"
	"github.com/scinode/nodegraph/internal/core/record"
	"github.com/scinode/nodegraph/internal/core/socket"
	"github.com/scinode/nodegraph/internal/core/spec"
)

func testSpec(t *testing.T, identifier string) *spec.NodeSpec {
	t.Helper()
	sp, err := spec.New(identifier)
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

func writeJSON(t *testing.T, name string, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestRun_Version(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run([]string{"version"}, &buf))
	assert.Equal(t, "nodegraph dev (commit: unknown, built: unknown)\n", buf.String())
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(nil, &buf))
	assert.Contains(t, buf.String(), "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{"frobnicate"}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestRun_Hash(t *testing.T) {
	sp := testSpec(t, "hash_me")
	path := writeJSON(t, "spec.json", sp.ToDict())

	var buf bytes.Buffer
	require.NoError(t, run([]string{"hash", path}, &buf))

	want, err := sp.Hash()
	require.NoError(t, err)
	assert.Equal(t, want+"  hash_me\n", buf.String())
}

func TestRun_Hash_BadFile(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run([]string{"hash", "/nonexistent.json"}, &buf))
}

func TestRun_Diff(t *testing.T) {
	sp := testSpec(t, "adder")

	g1 := graph.New("wt")
	_, err := g1.AddNode("n1", sp)
	require.NoError(t, err)
	_, err = g1.AddNode("n2", sp)
	require.NoError(t, err)

	g2, err := graph.FromDict(g1.ToDict(), nil)
	require.NoError(t, err)
	_, err = g2.AddNode("n3", sp)
	require.NoError(t, err)
	n1, _ := g2.Node("n1")
	require.NoError(t, n1.SetProperty("a", 42))

	pathA := writeJSON(t, "a.json", g1.ToDict())
	pathB := writeJSON(t, "b.json", g2.ToDict())

	var buf bytes.Buffer
	require.NoError(t, run([]string{"diff", pathA, pathB}, &buf))

	out := buf.String()
	assert.Contains(t, out, "added (1): n3")
	assert.Contains(t, out, "removed (0):")
	assert.Contains(t, out, "modified (1): n1")
}

func TestRun_Specs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "specs.db")
	ctx := context.Background()

	store, err := sqlite.Open(ctx, dbPath, nil)
	require.NoError(t, err)
	for _, id := range []string{"adder", "scaler"} {
		rec, err := record.FromSpec(testSpec(t, id))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, rec))
	}
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	require.NoError(t, run([]string{"specs", "--db", dbPath}, &buf))
	out := buf.String()
	assert.Contains(t, out, "adder")
	assert.Contains(t, out, "scaler")
	assert.Contains(t, out, "2 record(s)")

	buf.Reset()
	require.NoError(t, run([]string{"specs", "--db", dbPath, "--identifier", "adder"}, &buf))
	out = buf.String()
	assert.Contains(t, out, "adder")
	assert.False(t, strings.Contains(out, "scaler"))
}

func TestRun_Specs_RequiresDB(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run([]string{"specs"}, &buf))
}
