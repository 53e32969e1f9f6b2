package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge_RequiresEndpoints(t *testing.T) {
	g := New()
	g.AddNode("a", nil)

	err := g.AddEdge("a", "b", EdgeLineage)
	require.Error(t, err)

	g.AddNode("b", nil)
	require.NoError(t, g.AddEdge("a", "b", EdgeLineage))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestAddEdge_Dedup(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	require.NoError(t, g.AddEdge("a", "b", EdgeLineage))
	require.NoError(t, g.AddEdge("a", "b", EdgeLineage))
	assert.Equal(t, 1, g.EdgeCount())

	// Same endpoints, different type, is a distinct edge.
	require.NoError(t, g.AddEdge("a", "b", EdgeHasColumn))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestParentsChildren_FilterByType(t *testing.T) {
	g := New()
	for _, id := range []string{"t", "c1", "c2"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("t", "c1", EdgeHasColumn))
	require.NoError(t, g.AddEdge("t", "c2", EdgeHasColumn))
	require.NoError(t, g.AddEdge("c1", "c2", EdgeLineage))

	assert.Equal(t, []string{"c1", "c2"}, g.Children("t", EdgeHasColumn))
	assert.Empty(t, g.Children("t", EdgeLineage))
	assert.Equal(t, []string{"c1"}, g.Parents("c2", EdgeLineage))
	assert.True(t, g.HasParents("c2", EdgeLineage))
	assert.False(t, g.HasChildren("c2", EdgeLineage))
}

func TestPathsToRoots_Linear(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "b", EdgeLineage))
	require.NoError(t, g.AddEdge("b", "c", EdgeLineage))

	paths := g.PathsToRoots("c", EdgeLineage)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"a", "b", "c"}, paths[0])
}

func TestPathsToRoots_Branching(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "m", "z"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "m", EdgeLineage))
	require.NoError(t, g.AddEdge("b", "m", EdgeLineage))
	require.NoError(t, g.AddEdge("m", "z", EdgeLineage))

	paths := g.PathsToRoots("z", EdgeLineage)
	require.Len(t, paths, 2)
	assert.ElementsMatch(t, [][]string{
		{"a", "m", "z"},
		{"b", "m", "z"},
	}, paths)
}

func TestPathsToRoots_CycleTerminates(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	// a -> b -> a cycle feeding c.
	require.NoError(t, g.AddEdge("a", "b", EdgeLineage))
	require.NoError(t, g.AddEdge("b", "a", EdgeLineage))
	require.NoError(t, g.AddEdge("b", "c", EdgeLineage))

	// Every node on the cycle has parents, so no root path exists; the
	// traversal must still return instead of recursing forever.
	paths := g.PathsToRoots("c", EdgeLineage)
	assert.Empty(t, paths)
}

func TestNodesAndEdges_Sorted(t *testing.T) {
	g := New()
	g.AddNode("z", nil)
	g.AddNode("a", "data")
	g.AddNode("m", nil)
	require.NoError(t, g.AddEdge("z", "a", EdgeLineage))
	require.NoError(t, g.AddEdge("m", "a", EdgeLineage))

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "a", nodes[0].ID)
	assert.Equal(t, "data", nodes[0].Data)
	assert.Equal(t, "z", nodes[2].ID)

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "m", edges[0].Source)
	assert.Equal(t, "z", edges[1].Source)
}
