package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/value"
)

func TestReadNodesProjectsRequestedColumns(t *testing.T) {
	g := newTestGraph(t, true)
	g.addNode(t, "A")
	g.addNode(t, "B")
	setNodeAttr(t, g, "A", "score", value.FromI64(10))
	setNodeAttr(t, g, "B", "score", value.FromI64(20))

	rows, err := g.ReadNodes([]string{"node.id", "node.score"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Rows are gathered as JSON, so numeric cells decode as float64.
	byID := map[string]float64{}
	for _, row := range rows {
		id, _ := row["node.id"].(string)
		score, _ := row["node.score"].(float64)
		byID[id] = score
	}
	require.Equal(t, float64(10), byID["A"])
	require.Equal(t, float64(20), byID["B"])
}

func TestReadEdgesHonorsWhere(t *testing.T) {
	g := newTestGraph(t, true)
	g.addEdge(t, "A", "B")
	g.addEdge(t, "B", "C")

	where, err := CompileWhere([]byte(`{"==": [{"var": "edge.u"}, "A"]}`))
	require.NoError(t, err)

	rows, err := g.ReadEdges([]string{"edge.u", "edge.v"}, where)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "A", rows[0]["edge.u"])
	require.Equal(t, "B", rows[0]["edge.v"])
}

func TestReadNodesMissingColumnRendersNull(t *testing.T) {
	g := newTestGraph(t, true)
	g.addNode(t, "A")

	rows, err := g.ReadNodes([]string{"node.id", "node.never_set"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0]["node.never_set"])
}
