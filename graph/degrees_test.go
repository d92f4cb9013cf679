package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nodeI64(t *testing.T, g *Graph, series, id string) (int64, bool) {
	t.Helper()
	idx, ok := g.nodes.FindSeries(series)
	if !ok {
		return 0, false
	}
	recID, ok := g.nodeIndex[id]
	if !ok {
		return 0, false
	}
	v, ok := g.nodes.Get(idx, recID)
	if !ok || v.IsNull() {
		return 0, false
	}
	return v.I64()
}

func TestDegreesDirected(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "A", "C")
	g.addEdge(t, "B", "C")

	require.NoError(t, g.Degrees("node.in", "node.out", nil))

	in, ok := nodeI64(t, g, "in", "C")
	require.True(t, ok)
	require.Equal(t, int64(2), in)

	out, ok := nodeI64(t, g, "out", "A")
	require.True(t, ok)
	require.Equal(t, int64(2), out)

	outC, ok := nodeI64(t, g, "out", "C")
	require.True(t, ok)
	require.Equal(t, int64(0), outC)
}

func TestDegreesUndirectedCountsBothSides(t *testing.T) {
	g := newTestGraph(t, false)
	g.addEdge(t, "A", "B")

	require.NoError(t, g.Degrees("node.in", "node.out", nil))

	inA, ok := nodeI64(t, g, "in", "A")
	require.True(t, ok)
	require.Equal(t, int64(1), inA)

	outA, ok := nodeI64(t, g, "out", "A")
	require.True(t, ok)
	require.Equal(t, int64(1), outA)

	inB, ok := nodeI64(t, g, "in", "B")
	require.True(t, ok)
	require.Equal(t, int64(1), inB)
}

func TestInDegreeOutDegreeSeparately(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")

	require.NoError(t, g.InDegree("node.in", nil))
	require.NoError(t, g.OutDegree("node.out", nil))

	in, ok := nodeI64(t, g, "in", "B")
	require.True(t, ok)
	require.Equal(t, int64(1), in)

	out, ok := nodeI64(t, g, "out", "A")
	require.True(t, ok)
	require.Equal(t, int64(1), out)
}
