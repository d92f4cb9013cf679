package graph

import (
	"encoding/json"
	"hash/fnv"

	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/value"
)

const nhopsTag = "nhops"

type hopMsg struct {
	Node string `json:"node"`
	Hop  int    `json:"hop"`
}

// ownerOf returns the rank that owns a node-id string, per spec.md's
// "each node is owned by exactly one shard determined by a deterministic
// hash of its id string" rule. Ingest (IngestParquetEdges) routes both
// node creation and the edges sourced at a node to this same rank, so an
// edge (u,v) always lives on u's owning shard and a frontier check never
// needs to cross shards for its u side.
func (g *Graph) ownerOf(nodeID string) int {
	size := g.cl.Size()
	if size <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(nodeID))
	return int(h.Sum32() % uint32(size))
}

// NHops implements the frontier-expansion BFS of spec.md §4.5.2: starting
// from seeds, walk up to k hops over edges matching where, writing the hop
// at which each reached node was first visited into outputSeries (nodes
// never reached are left absent).
func (g *Graph) NHops(outputSeries string, k int, seeds []string, where *Where) error {
	_, local, err := splitQName(outputSeries)
	if err != nil {
		return err
	}
	outIdx, ok := g.nodes.FindSeries(local)
	if !ok {
		outIdx, err = g.nodes.AddSeries(local, value.I64, column.Dense)
		if err != nil {
			return err
		}
	}

	// visitedHop only ever holds entries for nodes this shard owns (and
	// therefore stores locally): seeds found in nodeIndex, plus whatever
	// this shard receives via AsyncSend from edges sourced elsewhere.
	visitedHop := make(map[string]int)
	frontier := make(map[string]struct{})
	for _, s := range seeds {
		if _, found := g.nodeIndex[s]; found {
			if _, already := visitedHop[s]; !already {
				visitedHop[s] = 0
				frontier[s] = struct{}{}
			}
		}
	}

	for hop := 1; hop <= k; hop++ {
		g.ForAllEdges(func(edgeID uint64) {
			u, okU := g.edgeEndpointStr(edgeID, g.uSeries)
			v, okV := g.edgeEndpointStr(edgeID, g.vSeries)
			if !okU || !okV {
				return
			}
			if _, inFrontier := frontier[u]; inFrontier {
				if raw, err := json.Marshal(hopMsg{Node: v, Hop: hop}); err == nil {
					g.cl.AsyncSend(g.ownerOf(v), nhopsTag, raw)
				}
			}
			if !g.directed {
				if _, inFrontier := frontier[v]; inFrontier {
					if raw, err := json.Marshal(hopMsg{Node: u, Hop: hop}); err == nil {
						g.cl.AsyncSend(g.ownerOf(u), nhopsTag, raw)
					}
				}
			}
		}, where)

		g.cl.Barrier()
		msgs := g.cl.Drain(nhopsTag)

		next := make(map[string]struct{})
		for _, raw := range msgs {
			var m hopMsg
			if err := json.Unmarshal(raw, &m); err != nil {
				continue
			}
			if _, already := visitedHop[m.Node]; already {
				continue
			}
			// Smaller hop count wins; since messages this round all carry
			// the same hop, first arrival for a node is the winner.
			visitedHop[m.Node] = hop
			next[m.Node] = struct{}{}
		}
		frontier = next
	}

	var setErr error
	for nodeID, hop := range visitedHop {
		if setErr != nil {
			break
		}
		id, found := g.nodeIndex[nodeID]
		if !found {
			continue
		}
		setErr = g.nodes.Set(outIdx, id, value.FromI64(int64(hop)))
	}
	return setErr
}
