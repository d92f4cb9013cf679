package graph

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cuemby/shardgraph/internal/strtable"
)

// EraseEdges tombstones every local edge matching where, returning the
// number removed. RemoveRecord only affects this shard's own records
// (spec.md invariant 2), matching edge tombstoning being a per-shard
// operation with no cross-shard coordination required. The matched id set
// is a roaring bitmap rather than a plain slice: local record ids are
// dense small non-negative integers, exactly the domain roaring is built
// for, and Iterate walks it back out in ascending order.
func (g *Graph) EraseEdges(where *Where) int64 {
	bm := roaring.New()
	g.ForAllEdges(func(id uint64) { bm.Add(uint32(id)) }, where)
	bm.Iterate(func(id uint32) bool {
		g.edges.RemoveRecord(uint64(id))
		return true
	})
	return int64(bm.GetCardinality())
}

// EraseEdgesIn tombstones every local edge whose series value (resolved by
// its qualified name) is a member of haystack, the "erase_edges(series,
// haystack-set)" variant of spec.md §4.5.
func (g *Graph) EraseEdgesIn(qname string, haystack map[string]struct{}) int64 {
	_, local, err := splitQName(qname)
	if err != nil {
		return 0
	}
	idx, ok := g.edges.FindSeries(local)
	if !ok {
		return 0
	}

	bm := roaring.New()
	g.edges.ForAllRows(func(id uint64) {
		v, ok := g.edges.Get(idx, id)
		if !ok {
			return
		}
		loc, ok := v.StrLocator()
		if !ok {
			return
		}
		b, ok := g.strs.Get(strtable.Locator(loc))
		if !ok {
			return
		}
		if _, found := haystack[string(b)]; found {
			bm.Add(uint32(id))
		}
	})
	bm.Iterate(func(id uint32) bool {
		g.edges.RemoveRecord(uint64(id))
		return true
	})
	return int64(bm.GetCardinality())
}

// EraseNodes tombstones every local node matching where, returning the
// number removed.
func (g *Graph) EraseNodes(where *Where) int64 {
	bm := roaring.New()
	g.ForAllNodes(func(id uint64) { bm.Add(uint32(id)) }, where)
	bm.Iterate(func(id uint32) bool {
		recID := uint64(id)
		nodeID, ok := g.nodes.Get(g.idSeries, recID)
		if ok {
			if loc, ok := nodeID.StrLocator(); ok {
				if b, ok := g.strs.Get(strtable.Locator(loc)); ok {
					delete(g.nodeIndex, string(b))
				}
			}
		}
		g.nodes.RemoveRecord(recID)
		return true
	})
	return int64(bm.GetCardinality())
}
