package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/cluster"
	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/value"
)

func setNodeAttr(t *testing.T, g *Graph, id, series string, v value.Value) {
	t.Helper()
	idx, ok := g.nodes.FindSeries(series)
	if !ok {
		var err error
		idx, err = g.nodes.AddSeries(series, v.Tag(), column.Dense)
		require.NoError(t, err)
	}
	recID, ok := g.nodeIndex[id]
	require.True(t, ok)
	require.NoError(t, g.nodes.Set(idx, recID, v))
}

func setEdgeAttr(t *testing.T, g *Graph, edgeID uint64, series string, v value.Value) {
	t.Helper()
	idx, ok := g.edges.FindSeries(series)
	if !ok {
		var err error
		idx, err = g.edges.AddSeries(series, v.Tag(), column.Dense)
		require.NoError(t, err)
	}
	require.NoError(t, g.edges.Set(idx, edgeID, v))
}

func TestForAllNodesAppliesWhere(t *testing.T) {
	g := newTestGraph(t, true)
	g.addNode(t, "A")
	g.addNode(t, "B")
	g.addNode(t, "C")
	setNodeAttr(t, g, "A", "score", value.FromI64(10))
	setNodeAttr(t, g, "B", "score", value.FromI64(20))
	setNodeAttr(t, g, "C", "score", value.FromI64(30))

	where, err := CompileWhere([]byte(`{">": [{"var": "node.score"}, 15]}`))
	require.NoError(t, err)

	var seen []uint64
	g.ForAllNodes(func(id uint64) { seen = append(seen, id) }, where)
	require.Len(t, seen, 2)
}

func TestForAllNodesMissingColumnYieldsNothing(t *testing.T) {
	g := newTestGraph(t, true)
	g.addNode(t, "A")

	where, err := CompileWhere([]byte(`{"==": [{"var": "node.nope"}, 1]}`))
	require.NoError(t, err)

	var seen []uint64
	g.ForAllNodes(func(id uint64) { seen = append(seen, id) }, where)
	require.Empty(t, seen)
}

func TestForAllNodesWhereReferencingEdgeSeries(t *testing.T) {
	g := newTestGraph(t, true)
	e1 := g.addEdge(t, "A", "B")
	g.addEdge(t, "B", "C")
	setEdgeAttr(t, g, e1, "kind", value.FromStrLocator(func() uint64 {
		loc, err := g.strs.Intern([]byte("friend"))
		require.NoError(t, err)
		return uint64(loc)
	}()))

	where, err := CompileWhere([]byte(`{"==": [{"var": "edge.kind"}, "friend"]}`))
	require.NoError(t, err)

	matched := make(map[uint64]bool)
	g.ForAllNodes(func(id uint64) { matched[id] = true }, where)

	require.True(t, matched[g.nodeIndex["A"]])
	require.True(t, matched[g.nodeIndex["B"]])
	require.False(t, matched[g.nodeIndex["C"]])
}

func TestForAllEdgesAppliesWhere(t *testing.T) {
	g := newTestGraph(t, true)
	e1 := g.addEdge(t, "A", "B")
	e2 := g.addEdge(t, "B", "C")
	setEdgeAttr(t, g, e1, "weight", value.FromF64(1.5))
	setEdgeAttr(t, g, e2, "weight", value.FromF64(9.5))

	where, err := CompileWhere([]byte(`{"<": [{"var": "edge.weight"}, 5]}`))
	require.NoError(t, err)

	var seen []uint64
	g.ForAllEdges(func(id uint64) { seen = append(seen, id) }, where)
	require.Equal(t, []uint64{e1}, seen)
}

// twoShardGraphs opens two independent Graph handles sharing one 2-rank
// Local cluster, so a test can exercise a collective (Gather/Broadcast)
// across both without a real gRPC coordinator.
func twoShardGraphs(t *testing.T) (g0, g1 *Graph) {
	t.Helper()
	cls := cluster.NewLocalCluster(2)

	open := func(cl *cluster.Local) *Graph {
		alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
		require.NoError(t, err)
		t.Cleanup(func() { _ = alloc.Close() })
		g, err := Open(alloc, cl, "g", true, true)
		require.NoError(t, err)
		return g
	}
	return open(cls[0]), open(cls[1])
}

// runOnBoth runs fn concurrently against g0 and g1, required because every
// collective (Gather, Broadcast) blocks until both ranks have called in.
func runOnBoth(g0, g1 *Graph, fn func(g *Graph)) {
	var wg sync.WaitGroup
	wg.Add(2)
	for _, g := range []*Graph{g0, g1} {
		g := g
		go func() {
			defer wg.Done()
			fn(g)
		}()
	}
	wg.Wait()
}

// TestForAllNodesCrossStoreDistributesEndpointsAcrossShards reproduces
// spec.md §4.5.1's vertex-cut case: "v1" hashes to rank 0 and has no edge
// stored locally there, because ingest always routes an edge (u, v) to u's
// owning shard. "u1" hashes to rank 1, so the edge u1->v1 (and the series
// the where-clause matches on) lives only on rank 1. Without gathering
// endpoint strings across ranks before the node-membership filter, rank 0
// would never see "v1" as matching.
func TestForAllNodesCrossStoreDistributesEndpointsAcrossShards(t *testing.T) {
	g0, g1 := twoShardGraphs(t)

	require.Equal(t, 0, g0.ownerOf("v1"))
	require.Equal(t, 1, g0.ownerOf("u1"))

	g0.addNode(t, "v1")

	vLoc, err := g1.strs.Intern([]byte("v1"))
	require.NoError(t, err)
	uLoc, err := g1.strs.Intern([]byte("u1"))
	require.NoError(t, err)
	eid := g1.edges.AddRecord()
	require.NoError(t, g1.edges.Set(g1.uSeries, eid, value.FromStrLocator(uint64(uLoc))))
	require.NoError(t, g1.edges.Set(g1.vSeries, eid, value.FromStrLocator(uint64(vLoc))))
	setEdgeAttr(t, g1, eid, "active", value.FromBool(true))

	where, err := CompileWhere([]byte(`{"==": [{"var": "edge.active"}, true]}`))
	require.NoError(t, err)

	var matched0, matched1 []uint64
	runOnBoth(g0, g1, func(g *Graph) {
		var seen []uint64
		g.ForAllNodes(func(id uint64) { seen = append(seen, id) }, where)
		if g == g0 {
			matched0 = seen
		} else {
			matched1 = seen
		}
	})

	require.Len(t, matched0, 1, "v1 is local to rank 0 and must be visible even though its only edge lives on rank 1")
	require.Empty(t, matched1, "rank 1 owns no node matching the endpoint set")
}

func TestNumNodesAndNumEdges(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "B", "C")

	require.EqualValues(t, 3, g.NumNodes())
	require.EqualValues(t, 2, g.NumEdges())
}
