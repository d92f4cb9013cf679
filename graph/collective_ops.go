package graph

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/value"
)

// Count returns the all-reduced number of local-plus-remote nodes or edges
// matching where (spec.md §6.3's count command, expansion §4.7).
func (g *Graph) Count(which string, where *Where) (int64, error) {
	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}
	var n int64
	visit(func(uint64) { n++ }, where)
	sums := g.cl.AllReduceSum(map[string]int64{"n": n})
	return sums["n"], nil
}

// Hist builds a per-bucket histogram over a numeric or string series
// matching where, all-reduced key-wise across shards (expansion §4.7).
// bucketOf receives a cell's rendered value and returns its bucket label.
func (g *Graph) Hist(qname string, where *Where, bucketOf func(v any) string) (map[string]int64, error) {
	which, local, err := splitQName(qname)
	if err != nil {
		return nil, err
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		return nil, fmt.Errorf("hist: %s: %w", qname, errs.ErrSeriesNotFound)
	}

	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}

	local64 := make(map[string]int64)
	visit(func(id uint64) {
		v, ok := store.Get(idx, id)
		if !ok {
			return
		}
		bucket := bucketOf(g.renderCell(v))
		local64[bucket]++
	}, where)

	return g.cl.AllReduceSum(local64), nil
}

// KCore iteratively peels nodes whose (where-matching) degree falls below
// k, recomputing degrees and erasing dead nodes' edges each round until a
// barrier-synchronized fixed point, then marks survivors true in
// markedSeries (expansion §4.7, grounded on original_source's
// mg-kcore.cpp).
func (g *Graph) KCore(k int64, markedSeries string, where *Where) (int, error) {
	rounds := 0
	for {
		rounds++
		if err := g.Degrees("node.__kcore_in", "node.__kcore_out", where); err != nil {
			return rounds, err
		}

		var dead []string
		g.ForAllNodes(func(id uint64) {
			inV, _ := g.nodes.GetDynamic("__kcore_in", id)
			outV, _ := g.nodes.GetDynamic("__kcore_out", id)
			inD, _ := inV.I64()
			outD, _ := outV.I64()
			if inD+outD < k {
				idV, ok := g.nodes.Get(g.idSeries, id)
				if !ok {
					return
				}
				if s, ok := g.renderCell(idV).(string); ok {
					dead = append(dead, s)
				}
			}
		}, where)

		localDead := int64(len(dead))
		haystack := make(map[string]struct{}, len(dead))
		for _, s := range dead {
			haystack[s] = struct{}{}
		}
		g.EraseEdgesIn("edge.u", haystack)
		g.EraseEdgesIn("edge.v", haystack)
		for _, s := range dead {
			if id, ok := g.nodeIndex[s]; ok {
				g.nodes.RemoveRecord(id)
				delete(g.nodeIndex, s)
			}
		}

		sums := g.cl.AllReduceSum(map[string]int64{"dead": localDead})
		g.cl.Barrier()
		if sums["dead"] == 0 {
			break
		}
	}

	err := g.AddFakerSeries(markedSeries, value.Bool, func() value.Value { return value.FromBool(true) }, nil)
	return rounds, err
}

// topKRow is a (value, row node-id string) pair carried through Gather.
type topKRow struct {
	Value float64 `json:"value"`
	RowID string  `json:"row_id"`
	Seq   int     `json:"seq"`
}

// TopK returns the k rows (by qname's descending numeric value) matching
// where, merged across shards on rank 0; ties are broken by order of
// encounter, matching §4.6's stable-sort tie-break rule (expansion §4.7).
func (g *Graph) TopK(qname string, k int, where *Where) ([]topKRow, error) {
	which, local, err := splitQName(qname)
	if err != nil {
		return nil, err
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		return nil, fmt.Errorf("topk: %s: %w", qname, errs.ErrSeriesNotFound)
	}
	idSeries := g.idSeries
	if which == "edge" {
		idSeries = g.uSeries
	}

	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}

	var rows []topKRow
	seq := 0
	visit(func(id uint64) {
		v, ok := store.Get(idx, id)
		if !ok {
			return
		}
		f, ok := v.AsF64()
		if !ok {
			return
		}
		idV, ok := store.Get(idSeries, id)
		rowID := ""
		if ok {
			if s, ok := g.renderCell(idV).(string); ok {
				rowID = s
			}
		}
		rows = append(rows, topKRow{Value: f, RowID: rowID, Seq: seq})
		seq++
	}, where)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Seq < rows[j].Seq
	})
	if len(rows) > k {
		rows = rows[:k]
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	gathered := g.cl.Gather(0, raw)
	if g.cl.Rank() != 0 {
		return nil, nil
	}

	var merged []topKRow
	for rank, part := range gathered {
		var chunk []topKRow
		if err := json.Unmarshal(part, &chunk); err != nil {
			continue
		}
		for i := range chunk {
			chunk[i].Seq = rank*1_000_000 + chunk[i].Seq
		}
		merged = append(merged, chunk...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Value != merged[j].Value {
			return merged[i].Value > merged[j].Value
		}
		return merged[i].Seq < merged[j].Seq
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// Remove tombstones every node or edge matching where, an alias over
// EraseEdges/EraseNodes that returns the all-reduced removed count
// (expansion §4.7's remove command).
func (g *Graph) Remove(which string, where *Where) (int64, error) {
	var local int64
	if which == "edge" {
		local = g.EraseEdges(where)
	} else {
		local = g.EraseNodes(where)
	}
	sums := g.cl.AllReduceSum(map[string]int64{"removed": local})
	return sums["removed"], nil
}
