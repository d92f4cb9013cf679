package graph

import (
	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/value"
)

// Assign sets qname to v on every row matching where, creating the series
// (dense, typed to v) if it does not already exist. An absent/null v is a
// no-op per row, matching assign's "monostate values are skipped" rule
// (spec.md §4.5).
func (g *Graph) Assign(qname string, v value.Value, where *Where) error {
	if v.IsNull() {
		return nil
	}
	which, local, err := splitQName(qname)
	if err != nil {
		return err
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		idx, err = store.AddSeries(local, v.Tag(), column.Dense)
		if err != nil {
			return err
		}
	}

	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}

	var setErr error
	visit(func(id uint64) {
		if setErr != nil {
			return
		}
		setErr = store.Set(idx, id, v)
	}, where)
	return setErr
}

// AddFakerSeries is like Assign, but draws a fresh value from generator for
// every matching row instead of writing one fixed value (spec.md §4.5).
func (g *Graph) AddFakerSeries(qname string, tag value.Tag, generator func() value.Value, where *Where) error {
	which, local, err := splitQName(qname)
	if err != nil {
		return err
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		idx, err = store.AddSeries(local, tag, column.Dense)
		if err != nil {
			return err
		}
	}

	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}

	var setErr error
	visit(func(id uint64) {
		if setErr != nil {
			return
		}
		v := generator()
		if v.IsNull() {
			return
		}
		setErr = store.Set(idx, id, v)
	}, where)
	return setErr
}

// degreeCounts walks edges matching where, accumulating in/out degree per
// local node record id.
func (g *Graph) degreeCounts(where *Where) (in, out map[uint64]int64) {
	in = make(map[uint64]int64)
	out = make(map[uint64]int64)
	g.ForAllEdges(func(edgeID uint64) {
		u, okU := g.edgeEndpointStr(edgeID, g.uSeries)
		v, okV := g.edgeEndpointStr(edgeID, g.vSeries)
		if okU {
			if id, found := g.nodeIndex[u]; found {
				out[id]++
			}
		}
		if okV {
			if id, found := g.nodeIndex[v]; found {
				in[id]++
			}
			if !g.directed && okU {
				if id, found := g.nodeIndex[v]; found {
					out[id]++
				}
				if id, found := g.nodeIndex[u]; found {
					in[id]++
				}
			}
		}
	}, where)
	return in, out
}
