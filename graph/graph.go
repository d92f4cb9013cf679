/*
Package graph implements the graph overlay of spec.md §3.7/§4.5: two
record stores (nodes, edges) sharing one string store, bound together by
reserved series (node.id, edge.u, edge.v), a directedness flag, and a
local node-id-string → record-id lookup used to resolve edge endpoints
owned by this shard.

Not concurrency-safe, same single-goroutine-per-shard discipline as
internal/recordstore; cross-shard suspension happens only at the named
internal/cluster collective points.
*/
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/bento"
	"github.com/cuemby/shardgraph/internal/cluster"
	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/recordstore"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

const (
	nodePrefix = "node."
	edgePrefix = "edge."

	nodeIDLocal = "id"
	edgeULocal  = "u"
	edgeVLocal  = "v"
)

// Graph is one shard's view of the overlay.
type Graph struct {
	alloc *datastore.Allocator
	strs  *strtable.Store
	nodes *recordstore.Store
	edges *recordstore.Store
	docs  *bento.Store
	cl    cluster.Cluster

	key      string
	directed bool

	idSeries recordstore.SeriesIndex
	uSeries  recordstore.SeriesIndex
	vSeries  recordstore.SeriesIndex

	// nodeIndex maps a node-id string to its local record id, rebuilt on
	// Open by scanning the id series (spec.md §3.7's "local lookup").
	nodeIndex map[string]uint64
}

type graphMeta struct {
	Directed bool `json:"directed"`
}

func (g *Graph) metaBucket() string { return g.key + "#graph-meta" }

// Open opens (or, if createIfMissing, creates) the graph rooted at key
// inside alloc. Creating installs the reserved series; opening validates
// they exist (spec.md §4.5 construction).
func Open(alloc *datastore.Allocator, cl cluster.Cluster, key string, directed bool, createIfMissing bool) (*Graph, error) {
	strs, err := strtable.Open(alloc, key+"#strings")
	if err != nil {
		return nil, err
	}
	nodes, err := recordstore.Open(alloc, strs, key+"#nodes")
	if err != nil {
		return nil, err
	}
	edges, err := recordstore.Open(alloc, strs, key+"#edges")
	if err != nil {
		return nil, err
	}
	docs, err := bento.Open(alloc, strs, key+"#docs")
	if err != nil {
		return nil, err
	}

	g := &Graph{
		alloc: alloc, strs: strs, nodes: nodes, edges: edges, docs: docs, cl: cl,
		key: key, nodeIndex: make(map[string]uint64),
	}

	existingMeta, found, err := g.loadMeta()
	if err != nil {
		return nil, err
	}

	switch {
	case found:
		g.directed = existingMeta.Directed
		idIdx, ok := nodes.FindSeries(nodeIDLocal)
		if !ok {
			return nil, fmt.Errorf("%w: graph missing reserved series node.id", errs.ErrStructural)
		}
		uIdx, ok1 := edges.FindSeries(edgeULocal)
		vIdx, ok2 := edges.FindSeries(edgeVLocal)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: graph missing reserved series edge.u/edge.v", errs.ErrStructural)
		}
		g.idSeries, g.uSeries, g.vSeries = idIdx, uIdx, vIdx
	case createIfMissing:
		g.directed = directed
		idIdx, err := nodes.AddSeries(nodeIDLocal, value.Str, column.Dense)
		if err != nil {
			return nil, err
		}
		uIdx, err := edges.AddSeries(edgeULocal, value.Str, column.Dense)
		if err != nil {
			return nil, err
		}
		vIdx, err := edges.AddSeries(edgeVLocal, value.Str, column.Dense)
		if err != nil {
			return nil, err
		}
		g.idSeries, g.uSeries, g.vSeries = idIdx, uIdx, vIdx
		if err := g.saveMeta(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: graph %s does not exist", errs.ErrStoreNotFound, key)
	}

	g.rebuildNodeIndex()
	return g, nil
}

func (g *Graph) loadMeta() (graphMeta, bool, error) {
	var m graphMeta
	var raw []byte
	err := g.alloc.View(g.metaBucket(), func(b *bbolt.Bucket) error {
		v := b.Get([]byte("meta"))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errs.ErrSeriesNotFound) {
			return m, false, fmt.Errorf("%w: load graph metadata: %v", errs.ErrIO, err)
		}
		if err := g.alloc.Construct(g.metaBucket()); err != nil {
			return m, false, fmt.Errorf("%w: open graph metadata: %v", errs.ErrIO, err)
		}
		return m, false, nil
	}
	if raw == nil {
		return m, false, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, false, fmt.Errorf("%w: decode graph metadata: %v", errs.ErrIO, err)
	}
	return m, true, nil
}

func (g *Graph) saveMeta() error {
	raw, err := json.Marshal(graphMeta{Directed: g.directed})
	if err != nil {
		return err
	}
	return g.alloc.Update(g.metaBucket(), func(b *bbolt.Bucket) error {
		return b.Put([]byte("meta"), raw)
	})
}

func (g *Graph) rebuildNodeIndex() {
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
		g.nodeIndex[string(b)] = id
	})
}

// Directed reports the graph's directedness flag.
func (g *Graph) Directed() bool { return g.directed }

// Strings exposes the shared string store, used by callers resolving
// node-id strings returned from other operations.
func (g *Graph) Strings() *strtable.Store { return g.strs }

func splitQName(qname string) (store string, local string, err error) {
	switch {
	case strings.HasPrefix(qname, nodePrefix):
		return "node", strings.TrimPrefix(qname, nodePrefix), nil
	case strings.HasPrefix(qname, edgePrefix):
		return "edge", strings.TrimPrefix(qname, edgePrefix), nil
	case strings.Contains(qname, "."):
		return "", "", fmt.Errorf("%w: %q must be prefixed node. or edge.", errs.ErrUnknownPrefix, qname)
	default:
		return "", "", fmt.Errorf("%w: %q must be prefixed node. or edge.", errs.ErrUnqualifiedName, qname)
	}
}

func (g *Graph) storeFor(which string) *recordstore.Store {
	if which == "node" {
		return g.nodes
	}
	return g.edges
}

// AddSeries routes qname to the node or edge store based on its prefix
// (spec.md §4.5).
func (g *Graph) AddSeries(qname string, tag value.Tag, kind column.Kind) error {
	which, local, err := splitQName(qname)
	if err != nil {
		return err
	}
	_, err = g.storeFor(which).AddSeries(local, tag, kind)
	return err
}

// DropSeries releases qname's backing storage.
func (g *Graph) DropSeries(qname string) error {
	which, local, err := splitQName(qname)
	if err != nil {
		return err
	}
	if which == "node" && local == nodeIDLocal {
		return fmt.Errorf("%w: node.id is reserved", errs.ErrStructural)
	}
	if which == "edge" && (local == edgeULocal || local == edgeVLocal) {
		return fmt.Errorf("%w: edge.u/edge.v are reserved", errs.ErrStructural)
	}
	return g.storeFor(which).DropSeries(local)
}

// HasSeries reports whether qname currently exists.
func (g *Graph) HasSeries(qname string) bool {
	which, local, err := splitQName(qname)
	if err != nil {
		return false
	}
	_, ok := g.storeFor(which).FindSeries(local)
	return ok
}

// LocalNodeCount reports this shard's own node record count, with no
// cross-shard collective (unlike NumNodes), suitable for cheap periodic
// metrics collection.
func (g *Graph) LocalNodeCount() int { return g.nodes.NumRecords() }

// LocalEdgeCount is LocalNodeCount's edge-store counterpart.
func (g *Graph) LocalEdgeCount() int { return g.edges.NumRecords() }

// SeriesLoadFactor reports qname's present/total ratio, for metrics
// (spec.md §4.3's sparse/dense recommendation threshold applies the same
// load factor).
func (g *Graph) SeriesLoadFactor(qname string) (float64, error) {
	which, local, err := splitQName(qname)
	if err != nil {
		return 0, err
	}
	store := g.storeFor(which)
	idx, ok := store.FindSeries(local)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errs.ErrSeriesNotFound, qname)
	}
	return store.LoadFactor(idx), nil
}

// GetSeriesNames lists every live series under "nodes" or "edges",
// re-qualified with its prefix.
func (g *Graph) GetSeriesNames(which string) []string {
	store := g.storeFor(which)
	prefix := nodePrefix
	if which == "edge" {
		prefix = edgePrefix
	}
	names := store.SeriesNames()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}
