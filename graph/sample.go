package graph

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cuemby/shardgraph/internal/bento"
	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

// filteredIDs enumerates which's ids matching where, in ascending id order
// (via a roaring bitmap over local record ids), which is what makes the
// global-index-to-local-id mapping of spec.md §4.5.3 deterministic run
// over run for a fixed store state and filter.
func (g *Graph) filteredIDs(which string, where *Where) []uint64 {
	bm := roaring.New()
	visit := g.ForAllNodes
	if which == "edge" {
		visit = g.ForAllEdges
	}
	visit(func(id uint64) { bm.Add(uint32(id)) }, where)

	ids := make([]uint64, 0, bm.GetCardinality())
	bm.Iterate(func(id uint32) bool {
		ids = append(ids, uint64(id))
		return true
	})
	return ids
}

// drawSeed returns seed if non-nil, else a fresh value pulled from the OS
// entropy source (spec.md §4.5.3's "seed defaulting to a random device").
func drawSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return int64(binary.BigEndian.Uint64(buf[:]))
}

// drawDistinct draws k distinct integers in [0, n) using a PRNG seeded
// deterministically by seed (spec.md §4.5.3 step 3), returning them sorted.
func drawDistinct(n, k int, seed int64) []int {
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	rng := mrand.New(mrand.NewSource(seed))
	chosen := make(map[int]struct{}, k)
	for len(chosen) < k {
		chosen[rng.Intn(n)] = struct{}{}
	}
	out := make([]int, 0, k)
	for idx := range chosen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// globalRanges computes each rank's [lo, lo+n) slice of the global id
// space via a gather-to-rank-0/broadcast round (spec.md §4.5.3 step 1/2):
// rank 0 assembles every rank's local count, computes prefix sums, and
// broadcasts the full count vector so every rank can derive its own lo.
func (g *Graph) globalRanges(localCount int) (lo int, total int) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(localCount))
	gathered := g.cl.Gather(0, buf)

	var counts []int
	if g.cl.Rank() == 0 {
		counts = make([]int, len(gathered))
		for i, b := range gathered {
			counts[i] = int(binary.BigEndian.Uint64(b))
		}
	}
	raw, _ := json.Marshal(counts)
	broadcast := g.cl.Broadcast(0, raw)
	_ = json.Unmarshal(broadcast, &counts)

	for i := 0; i < g.cl.Rank() && i < len(counts); i++ {
		lo += counts[i]
	}
	for _, c := range counts {
		total += c
	}
	return lo, total
}

// selectLocalIndices runs the full deterministic-sampling algorithm of
// spec.md §4.5.3 and returns the positions, within this shard's filtered
// id slice, that were drawn.
func (g *Graph) selectLocalIndices(localCount, k int, seed *int64) []int {
	lo, total := g.globalRanges(localCount)

	var drawn []int
	s := drawSeed(seed)
	if g.cl.Rank() == 0 {
		kEff := k
		if kEff > total {
			kEff = total
		}
		drawn = drawDistinct(total, kEff, s)
	}
	raw, _ := json.Marshal(drawn)
	broadcast := g.cl.Broadcast(0, raw)
	_ = json.Unmarshal(broadcast, &drawn)

	var local []int
	for _, gIdx := range drawn {
		if gIdx >= lo && gIdx < lo+localCount {
			local = append(local, gIdx-lo)
		}
	}
	return local
}

func (g *Graph) sample(which, outSeries string, k int, seed *int64, where *Where) error {
	storeWhich, local, err := splitQName(outSeries)
	if err != nil {
		return err
	}
	if storeWhich != which {
		return fmt.Errorf("%w: %s series must be qualified %s.", errs.ErrUnqualifiedName, which, which)
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		idx, err = store.AddSeries(local, value.Bool, column.Dense)
		if err != nil {
			return err
		}
	}

	ids := g.filteredIDs(which, where)
	picks := g.selectLocalIndices(len(ids), k, seed)

	var setErr error
	for _, i := range picks {
		if setErr != nil {
			break
		}
		setErr = store.Set(idx, ids[i], value.FromBool(true))
	}
	return setErr
}

// SampleEdges uniformly selects k edges globally out of those matching
// where, writing true into outSeries (qualified edge.*) for the sampled
// ones.
func (g *Graph) SampleEdges(outSeries string, k int, seed *int64, where *Where) error {
	return g.sample("edge", outSeries, k, seed, where)
}

// SampleNodes is SampleEdges' node-store counterpart.
func (g *Graph) SampleNodes(outSeries string, k int, seed *int64, where *Where) error {
	return g.sample("node", outSeries, k, seed, where)
}

// selectSample builds each sampled row as a document in g.docs rather than
// a bare map handed straight to encoding/json: the document store is this
// shard's durable record of what a sample pass returned (later selects or
// a future "dump docs" command can replay a sample by DocID without
// resampling), and materializing it back out via Object exercises the same
// encode/decode path select_sample would take if it were reading a
// document that had been Put on an earlier run rather than this one.
func (g *Graph) selectSample(which string, k int, metadata []string, seed *int64, where *Where) ([]map[string]any, error) {
	store := g.storeFor(which)
	ids := g.filteredIDs(which, where)
	picks := g.selectLocalIndices(len(ids), k, seed)

	docIDs := make([]bento.DocID, 0, len(picks))
	for _, i := range picks {
		id := ids[i]
		row := make(map[string]any, len(metadata))
		for _, qname := range metadata {
			_, localName, err := splitQName(qname)
			if err != nil {
				localName = qname
			}
			v, err := store.GetDynamic(localName, id)
			if err != nil || v.IsNull() {
				row[qname] = nil
				continue
			}
			row[qname] = g.renderCell(v)
		}
		docID, err := g.docs.Put(row)
		if err != nil {
			return nil, err
		}
		docIDs = append(docIDs, docID)
	}

	rows := make([]map[string]any, 0, len(docIDs))
	for _, id := range docIDs {
		obj, ok := g.docs.Object(id)
		if !ok {
			continue
		}
		rows = append(rows, obj)
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	gathered := g.cl.Gather(0, raw)
	if g.cl.Rank() != 0 {
		return nil, nil
	}

	var all []map[string]any
	for _, part := range gathered {
		var chunk []map[string]any
		if err := json.Unmarshal(part, &chunk); err != nil {
			continue
		}
		all = append(all, chunk...)
	}
	return all, nil
}

// SelectSampleEdges is SampleEdges but returns the sampled rows' requested
// metadata columns as a gathered JSON array visible only on rank 0.
func (g *Graph) SelectSampleEdges(k int, metadata []string, seed *int64, where *Where) ([]map[string]any, error) {
	return g.selectSample("edge", k, metadata, seed, where)
}

// SelectSampleNodes is SelectSampleEdges' node-store counterpart.
func (g *Graph) SelectSampleNodes(k int, metadata []string, seed *int64, where *Where) ([]map[string]any, error) {
	return g.selectSample("node", k, metadata, seed, where)
}

func (g *Graph) renderCell(v value.Value) any {
	switch v.Tag() {
	case value.Bool:
		b, _ := v.Bool()
		return b
	case value.I64:
		i, _ := v.I64()
		return i
	case value.U64:
		u, _ := v.U64()
		return u
	case value.F64:
		f, _ := v.F64()
		return f
	case value.Str:
		loc, _ := v.StrLocator()
		b, ok := g.strs.Get(strtable.Locator(loc))
		if !ok {
			return nil
		}
		return string(b)
	default:
		return nil
	}
}
