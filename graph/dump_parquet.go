package graph

import (
	"github.com/cuemby/shardgraph/internal/parquetio"
	"github.com/cuemby/shardgraph/internal/recordstore"
)

func (g *Graph) dumpParquet(which, pathPrefix string, meta map[string]parquetio.FieldType, overwrite bool) error {
	store := g.storeFor(which)
	fields := make([]parquetio.Field, 0, len(meta))
	idxs := make(map[string]recordstore.SeriesIndex, len(meta))
	for name, ft := range meta {
		idx, ok := store.FindSeries(name)
		if !ok {
			continue
		}
		idxs[name] = idx
		fields = append(fields, parquetio.Field{Name: name, Type: ft, Optional: true})
	}

	path := parquetio.ShardFileName(pathPrefix, which+"s", g.cl.Rank())
	return parquetio.WriteRows(path, fields, overwrite, func(yield func(row map[string]any) bool) {
		var stop bool
		store.ForAllRows(func(id uint64) {
			if stop {
				return
			}
			row := make(map[string]any, len(idxs))
			for name, idx := range idxs {
				v, ok := store.Get(idx, id)
				if !ok {
					row[name] = nil
					continue
				}
				row[name] = g.renderCell(v)
			}
			if !yield(row) {
				stop = true
			}
		})
	})
}

// DumpParquetNodes writes this shard's node rows (restricted to the
// columns named in meta) to <pathPrefix>_nodes_rank<N>.parquet (spec.md
// §4.5's "one file per shard" rule).
func (g *Graph) DumpParquetNodes(pathPrefix string, meta map[string]parquetio.FieldType, overwrite bool) error {
	return g.dumpParquet("node", pathPrefix, meta, overwrite)
}

// DumpParquetEdges is DumpParquetNodes' edge-store counterpart.
func (g *Graph) DumpParquetEdges(pathPrefix string, meta map[string]parquetio.FieldType, overwrite bool) error {
	return g.dumpParquet("edge", pathPrefix, meta, overwrite)
}
