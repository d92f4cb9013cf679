package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/cluster"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/value"
)

// newTestGraph opens a single-shard graph for whitebox tests that need to
// build fixture nodes/edges directly, bypassing the Parquet ingest path.
func newTestGraph(t *testing.T, directed bool) *Graph {
	t.Helper()
	alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = alloc.Close() })

	cl := cluster.NewLocalCluster(1)[0]
	g, err := Open(alloc, cl, "g", directed, true)
	require.NoError(t, err)
	return g
}

// addNode inserts a node with the given id string, as ingest would.
func (g *Graph) addNode(t *testing.T, id string) uint64 {
	t.Helper()
	if existing, ok := g.nodeIndex[id]; ok {
		return existing
	}
	recID := g.nodes.AddRecord()
	loc, err := g.strs.Intern([]byte(id))
	require.NoError(t, err)
	require.NoError(t, g.nodes.Set(g.idSeries, recID, value.FromStrLocator(uint64(loc))))
	g.nodeIndex[id] = recID
	return recID
}

// addEdge inserts an edge (u, v), creating either endpoint's node record
// if it does not already exist.
func (g *Graph) addEdge(t *testing.T, u, v string) uint64 {
	t.Helper()
	g.addNode(t, u)
	g.addNode(t, v)

	id := g.edges.AddRecord()
	uLoc, err := g.strs.Intern([]byte(u))
	require.NoError(t, err)
	vLoc, err := g.strs.Intern([]byte(v))
	require.NoError(t, err)
	require.NoError(t, g.edges.Set(g.uSeries, id, value.FromStrLocator(uint64(uLoc))))
	require.NoError(t, g.edges.Set(g.vSeries, id, value.FromStrLocator(uint64(vLoc))))
	return id
}
