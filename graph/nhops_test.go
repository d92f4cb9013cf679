package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Directed graph, nodes {A,B,C,D,E}, edges {A->B, B->C, C->D, A->E}.
// nhops("node.reach", 2, ["A"]) assigns hop 0 to A, hop 1 to B and E,
// hop 2 to C. D remains absent.
func TestNHopsAssignsShortestHopCount(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "B", "C")
	g.addEdge(t, "C", "D")
	g.addEdge(t, "A", "E")

	require.NoError(t, g.NHops("node.reach", 2, []string{"A"}, nil))

	reach := func(id string) (int64, bool) {
		recID, ok := g.nodeIndex[id]
		if !ok {
			return 0, false
		}
		idx, ok := g.nodes.FindSeries("reach")
		if !ok {
			return 0, false
		}
		v, ok := g.nodes.Get(idx, recID)
		if !ok || v.IsNull() {
			return 0, false
		}
		hop, ok := v.I64()
		return hop, ok
	}

	hopA, okA := reach("A")
	require.True(t, okA)
	require.Equal(t, int64(0), hopA)

	hopB, okB := reach("B")
	require.True(t, okB)
	require.Equal(t, int64(1), hopB)

	hopE, okE := reach("E")
	require.True(t, okE)
	require.Equal(t, int64(1), hopE)

	hopC, okC := reach("C")
	require.True(t, okC)
	require.Equal(t, int64(2), hopC)

	_, okD := reach("D")
	require.False(t, okD)
}

func TestNHopsZeroHopsMarksOnlySeeds(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")

	require.NoError(t, g.NHops("node.reach0", 0, []string{"A"}, nil))

	idx, ok := g.nodes.FindSeries("reach0")
	require.True(t, ok)

	aID := g.nodeIndex["A"]
	v, ok := g.nodes.Get(idx, aID)
	require.True(t, ok)
	hop, ok := v.I64()
	require.True(t, ok)
	require.Equal(t, int64(0), hop)

	bID := g.nodeIndex["B"]
	_, ok = g.nodes.Get(idx, bID)
	require.False(t, ok)
}

func TestNHopsUnknownSeedIsIgnored(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")

	require.NoError(t, g.NHops("node.reach", 1, []string{"ZZZ"}, nil))

	idx, ok := g.nodes.FindSeries("reach")
	require.True(t, ok)
	aID := g.nodeIndex["A"]
	_, ok = g.nodes.Get(idx, aID)
	require.False(t, ok)
}
