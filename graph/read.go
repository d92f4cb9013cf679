package graph

import "encoding/json"

// readRows projects metadata columns for every id in which's store matching
// where, gathered to rank 0. The read-vertices/read-edges command surface
// of spec.md §6.3 has no dedicated [MODULE] operation of its own; this is a
// plain projection over the filtered id set, the same gather-to-rank-0
// shape selectSample uses minus the sampling step.
func (g *Graph) readRows(which string, metadata []string, where *Where) ([]map[string]any, error) {
	store := g.storeFor(which)
	ids := g.filteredIDs(which, where)

	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
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
		rows = append(rows, row)
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

// ReadNodes projects metadata columns for every node matching where.
func (g *Graph) ReadNodes(metadata []string, where *Where) ([]map[string]any, error) {
	return g.readRows("node", metadata, where)
}

// ReadEdges is ReadNodes' edge-store counterpart.
func (g *Graph) ReadEdges(metadata []string, where *Where) ([]map[string]any, error) {
	return g.readRows("edge", metadata, where)
}
