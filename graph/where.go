package graph

import (
	"encoding/json"
	"strings"

	"github.com/cuemby/shardgraph/internal/predicate"
	"github.com/cuemby/shardgraph/internal/recordstore"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

// Where wraps a compiled predicate with the qualified (node./edge.) variable
// names it was compiled against, per spec.md §4.5.1.
type Where struct {
	pred *predicate.Predicate
}

// CompileWhere parses a JSONLogic rule whose var names are qualified with
// node. or edge. prefixes (e.g. {"==": [{"var": "node.active"}, true]}).
func CompileWhere(rule []byte) (*Where, error) {
	pred, err := predicate.Compile(rule)
	if err != nil {
		return nil, err
	}
	return &Where{pred: pred}, nil
}

// Vars returns the qualified variable names the where-clause references.
func (w *Where) Vars() []string {
	if w == nil {
		return nil
	}
	return w.pred.Vars()
}

// varsByStore splits a where-clause's qualified var names by which store
// (node/edge) they resolve against, stripping the prefix.
func varsByStore(vars []string) (nodeLocal, edgeLocal []string) {
	for _, v := range vars {
		switch {
		case strings.HasPrefix(v, nodePrefix):
			nodeLocal = append(nodeLocal, strings.TrimPrefix(v, nodePrefix))
		case strings.HasPrefix(v, edgePrefix):
			edgeLocal = append(edgeLocal, strings.TrimPrefix(v, edgePrefix))
		}
	}
	return
}

// applyOn runs the where-clause application algorithm of spec.md §4.5.1
// against store, whose rows are addressed with the given prefix (so that
// row buffer keys line up with the predicate's qualified var names). It
// visits every matching, non-tombstoned row.
func applyOn(store *recordstore.Store, strs *strtable.Store, prefix string, locals []string, w *Where, visit func(id uint64)) {
	type resolved struct {
		qname string
		idx   recordstore.SeriesIndex
	}
	cols := make([]resolved, 0, len(locals))
	for _, local := range locals {
		idx, ok := store.FindSeries(local)
		if !ok {
			// Required column absent on this shard: yields nothing here,
			// not an error (spec.md §4.5.1 step 1).
			return
		}
		cols = append(cols, resolved{qname: prefix + local, idx: idx})
	}

	store.ForAllRows(func(id uint64) {
		row := make(map[string]value.Value, len(cols))
		for _, c := range cols {
			v, ok := store.Get(c.idx, id)
			if !ok || v.IsNull() {
				return
			}
			row[c.qname] = v
		}
		if w != nil && w.pred != nil && !w.pred.Eval(row, strs) {
			return
		}
		visit(id)
	})
}

// ForAllNodes visits every node matching where, handling the cross-store
// case where a node where-clause references edge series (spec.md §4.5.1's
// last paragraph): enumerate matching edges, collect endpoint node-id
// strings, and visit local nodes whose id string is in that set.
func (g *Graph) ForAllNodes(visit func(id uint64), where *Where) {
	if where == nil {
		g.nodes.ForAllRows(visit)
		return
	}

	nodeLocal, edgeLocal := varsByStore(where.Vars())
	if len(edgeLocal) == 0 {
		applyOn(g.nodes, g.strs, nodePrefix, nodeLocal, where, visit)
		return
	}

	// Cross-store: the where-clause touches edge series, so resolve it
	// against the edge store and gather endpoint node-id strings. Edges are
	// vertex-cut to their u-endpoint's owning shard (nhops.go's ownerOf), so
	// a node local to this rank can have its only incident edge live on
	// another rank; the local set alone would miss it. distributeEndpoints
	// turns the per-rank sets into the one cluster-wide set spec.md §4.5.1
	// requires before the node-membership filter runs.
	local := make(map[string]struct{})
	g.forAllEdgeRows(where, func(edgeID uint64) {
		if s, ok := g.edgeEndpointStr(edgeID, g.uSeries); ok {
			local[s] = struct{}{}
		}
		if s, ok := g.edgeEndpointStr(edgeID, g.vSeries); ok {
			local[s] = struct{}{}
		}
	})
	endpoints := g.distributeEndpoints(local)

	g.nodes.ForAllRows(func(id uint64) {
		v, ok := g.nodes.Get(g.idSeries, id)
		if !ok {
			return
		}
		loc, _ := v.StrLocator()
		b, ok := g.strs.Get(strtable.Locator(loc))
		if !ok {
			return
		}
		if _, matched := endpoints[string(b)]; matched {
			visit(id)
		}
	})
}

// ForAllEdges visits every edge matching where. Edge where-clauses are not
// permitted to reference node series (spec.md only special-cases the
// reverse direction); a node-qualified var is never fetched, so it reads
// as absent inside the predicate and any comparison against it is false.
func (g *Graph) ForAllEdges(visit func(id uint64), where *Where) {
	if where == nil {
		g.edges.ForAllRows(visit)
		return
	}
	g.forAllEdgeRows(where, visit)
}

func (g *Graph) forAllEdgeRows(where *Where, visit func(id uint64)) {
	_, edgeLocal := varsByStore(where.Vars())
	applyOn(g.edges, g.strs, edgePrefix, edgeLocal, where, visit)
}

// distributeEndpoints turns this rank's local endpoint-string set into the
// cluster-wide union: gathered to rank 0, deduplicated, and broadcast back,
// the same gather/broadcast round-trip sample.go's globalRanges uses to
// turn per-rank counts into a globally agreed id space.
func (g *Graph) distributeEndpoints(local map[string]struct{}) map[string]struct{} {
	keys := make([]string, 0, len(local))
	for s := range local {
		keys = append(keys, s)
	}
	raw, _ := json.Marshal(keys)
	gathered := g.cl.Gather(0, raw)

	var union []string
	if g.cl.Rank() == 0 {
		seen := make(map[string]struct{})
		for _, part := range gathered {
			var chunk []string
			if err := json.Unmarshal(part, &chunk); err != nil {
				continue
			}
			for _, s := range chunk {
				seen[s] = struct{}{}
			}
		}
		union = make([]string, 0, len(seen))
		for s := range seen {
			union = append(union, s)
		}
	}
	broadcastRaw, _ := json.Marshal(union)
	broadcast := g.cl.Broadcast(0, broadcastRaw)

	var merged []string
	_ = json.Unmarshal(broadcast, &merged)
	out := make(map[string]struct{}, len(merged))
	for _, s := range merged {
		out[s] = struct{}{}
	}
	return out
}

func (g *Graph) edgeEndpointStr(edgeID uint64, series recordstore.SeriesIndex) (string, bool) {
	v, ok := g.edges.Get(series, edgeID)
	if !ok {
		return "", false
	}
	loc, ok := v.StrLocator()
	if !ok {
		return "", false
	}
	b, ok := g.strs.Get(strtable.Locator(loc))
	if !ok {
		return "", false
	}
	return string(b), true
}

// NumNodes sums local node counts via collective reduction (spec.md §4.5).
func (g *Graph) NumNodes() int64 {
	sums := g.cl.AllReduceSum(map[string]int64{"n": int64(g.nodes.NumRecords())})
	return sums["n"]
}

// NumEdges sums local edge counts via collective reduction.
func (g *Graph) NumEdges() int64 {
	sums := g.cl.AllReduceSum(map[string]int64{"n": int64(g.edges.NumRecords())})
	return sums["n"]
}
