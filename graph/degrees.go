package graph

import (
	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/value"
)

// InDegree writes each local node's in-degree (count of edges with that
// node as v, matching where) into outSeries.
func (g *Graph) InDegree(outSeries string, where *Where) error {
	_, local, err := splitQName(outSeries)
	if err != nil {
		return err
	}
	idx, ok := g.nodes.FindSeries(local)
	if !ok {
		idx, err = g.nodes.AddSeries(local, value.I64, column.Dense)
		if err != nil {
			return err
		}
	}
	in, _ := g.degreeCounts(where)
	var setErr error
	g.nodes.ForAllRows(func(id uint64) {
		if setErr != nil {
			return
		}
		setErr = g.nodes.Set(idx, id, value.FromI64(in[id]))
	})
	return setErr
}

// OutDegree writes each local node's out-degree into outSeries.
func (g *Graph) OutDegree(outSeries string, where *Where) error {
	_, local, err := splitQName(outSeries)
	if err != nil {
		return err
	}
	idx, ok := g.nodes.FindSeries(local)
	if !ok {
		idx, err = g.nodes.AddSeries(local, value.I64, column.Dense)
		if err != nil {
			return err
		}
	}
	_, out := g.degreeCounts(where)
	var setErr error
	g.nodes.ForAllRows(func(id uint64) {
		if setErr != nil {
			return
		}
		setErr = g.nodes.Set(idx, id, value.FromI64(out[id]))
	})
	return setErr
}

// Degrees writes both in- and out-degree series in a single edge pass.
func (g *Graph) Degrees(inSeries, outSeries string, where *Where) error {
	_, inLocal, err := splitQName(inSeries)
	if err != nil {
		return err
	}
	_, outLocal, err := splitQName(outSeries)
	if err != nil {
		return err
	}
	inIdx, ok := g.nodes.FindSeries(inLocal)
	if !ok {
		inIdx, err = g.nodes.AddSeries(inLocal, value.I64, column.Dense)
		if err != nil {
			return err
		}
	}
	outIdx, ok := g.nodes.FindSeries(outLocal)
	if !ok {
		outIdx, err = g.nodes.AddSeries(outLocal, value.I64, column.Dense)
		if err != nil {
			return err
		}
	}

	in, out := g.degreeCounts(where)
	var setErr error
	g.nodes.ForAllRows(func(id uint64) {
		if setErr != nil {
			return
		}
		if setErr = g.nodes.Set(inIdx, id, value.FromI64(in[id])); setErr != nil {
			return
		}
		setErr = g.nodes.Set(outIdx, id, value.FromI64(out[id]))
	})
	return setErr
}
