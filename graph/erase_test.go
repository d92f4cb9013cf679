package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEraseEdgesRemovesMatching(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "B", "C")

	where, err := CompileWhere([]byte(`{"==": [{"var": "edge.u"}, "A"]}`))
	require.NoError(t, err)

	removed := g.EraseEdges(where)
	require.EqualValues(t, 1, removed)

	var remaining []uint64
	g.ForAllEdges(func(id uint64) { remaining = append(remaining, id) }, nil)
	require.Len(t, remaining, 1)
}

func TestEraseEdgesInHaystack(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "C", "D")

	removed := g.EraseEdgesIn("edge.u", map[string]struct{}{"A": {}})
	require.EqualValues(t, 1, removed)

	var remaining []uint64
	g.ForAllEdges(func(id uint64) { remaining = append(remaining, id) }, nil)
	require.Len(t, remaining, 1)
}

func TestEraseNodesRemovesFromIndex(t *testing.T) {
	g := newTestGraph(t, true)
	g.addNode(t, "A")
	g.addNode(t, "B")

	where, err := CompileWhere([]byte(`{"==": [{"var": "node.id"}, "A"]}`))
	require.NoError(t, err)

	removed := g.EraseNodes(where)
	require.EqualValues(t, 1, removed)
	_, found := g.nodeIndex["A"]
	require.False(t, found)
	_, found = g.nodeIndex["B"]
	require.True(t, found)
}
