// Package column implements the two physical layouts of a series described
// in spec.md §3.2/§4.3: dense (random access, one type-sized slot plus an
// occupancy bit per record id) and sparse (present cells only), with an
// explicit, observably-atomic conversion path between them.
package column

import (
	"fmt"

	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/value"
)

// Kind selects a column's physical representation.
type Kind int

const (
	Dense Kind = iota
	Sparse
)

func (k Kind) String() string {
	if k == Dense {
		return "dense"
	}
	return "sparse"
}

// DefaultSparseRecommendationThreshold is the load factor below which
// converting a dense series to sparse is recommended (never automatic),
// resolving Open Question 3 of spec.md §9.
const DefaultSparseRecommendationThreshold = 0.1

// Column is a named-by-caller, typed, sparse-or-dense mapping from record
// id to an optional typed cell (spec.md §3.2).
//
// Not concurrency-safe; call from the shard's owning goroutine only.
type Column struct {
	tag  value.Tag
	kind Kind
	size uint64 // == owning recordstore.Store.next_id, kept in sync via Grow

	vals []value.Value // dense backing array, len == size when Dense
	occ  []bool         // dense occupancy, len == size when Dense

	sparse map[uint64]value.Value
}

// New creates an empty column of the given type tag and initial kind.
func New(tag value.Tag, kind Kind) *Column {
	c := &Column{tag: tag, kind: kind}
	if kind == Sparse {
		c.sparse = make(map[uint64]value.Value)
	}
	return c
}

// Tag reports the column's fixed value type.
func (c *Column) Tag() value.Tag { return c.tag }

// Kind reports the column's current physical representation.
func (c *Column) Kind() Kind { return c.kind }

// Grow extends the column's addressable record-id space to newSize,
// called by recordstore.Store whenever a new record is allocated. Growing
// a dense column appends absent slots; growing a sparse column is a no-op
// beyond bookkeeping since absent cells cost nothing there.
func (c *Column) Grow(newSize uint64) {
	if newSize <= c.size {
		return
	}
	if c.kind == Dense {
		for uint64(len(c.vals)) < newSize {
			c.vals = append(c.vals, value.Value{})
			c.occ = append(c.occ, false)
		}
	}
	c.size = newSize
}

// Get returns the cell at id, or (zero, false) if absent.
func (c *Column) Get(id uint64) (value.Value, bool) {
	if id >= c.size {
		return value.Value{}, false
	}
	if c.kind == Dense {
		if !c.occ[id] {
			return value.Value{}, false
		}
		return c.vals[id], true
	}
	v, ok := c.sparse[id]
	return v, ok
}

// Set stores v at id. v's tag must match the column's tag.
func (c *Column) Set(id uint64, v value.Value) error {
	if id >= c.size {
		return errs.ErrUnallocatedRecord
	}
	if v.Tag() != c.tag {
		return fmt.Errorf("%w: column is %s, got %s", errs.ErrTypeMismatch, c.tag, v.Tag())
	}
	if c.kind == Dense {
		c.vals[id] = v
		c.occ[id] = true
		return nil
	}
	c.sparse[id] = v
	return nil
}

// Remove marks id absent, freeing its slot in sparse kind.
func (c *Column) Remove(id uint64) {
	if id >= c.size {
		return
	}
	if c.kind == Dense {
		c.occ[id] = false
		c.vals[id] = value.Value{}
		return
	}
	delete(c.sparse, id)
}

// LoadFactor is present-cells / total-records.
func (c *Column) LoadFactor() float64 {
	if c.size == 0 {
		return 0
	}
	return float64(c.present()) / float64(c.size)
}

func (c *Column) present() int {
	if c.kind == Dense {
		n := 0
		for _, o := range c.occ {
			if o {
				n++
			}
		}
		return n
	}
	return len(c.sparse)
}

// Convert switches the column's physical kind, preserving every present
// (id, value) pair (spec.md invariant 1). The conversion builds the new
// representation off to the side and swaps it in, so any reader on this
// shard observes either entirely the old or entirely the new
// representation — there is no partially-converted state visible between
// calls.
func (c *Column) Convert(kind Kind) {
	if kind == c.kind {
		return
	}

	switch kind {
	case Sparse:
		next := make(map[uint64]value.Value, c.present())
		for id, ok := range c.occ {
			if ok {
				next[uint64(id)] = c.vals[id]
			}
		}
		c.sparse = next
		c.vals = nil
		c.occ = nil
		c.kind = Sparse
	case Dense:
		vals := make([]value.Value, c.size)
		occ := make([]bool, c.size)
		for id, v := range c.sparse {
			vals[id] = v
			occ[id] = true
		}
		c.vals = vals
		c.occ = occ
		c.sparse = nil
		c.kind = Dense
	}
}

// ForAllDynamic invokes visit for every present cell (in id order for a
// dense column, in unspecified order for a sparse one), carrying
// the cell's runtime type tag via value.Value.Tag — the mechanism the
// predicate engine uses to handle heterogeneous columns (spec.md §4.3).
func (c *Column) ForAllDynamic(visit func(id uint64, v value.Value)) {
	if c.kind == Dense {
		for id, ok := range c.occ {
			if ok {
				visit(uint64(id), c.vals[id])
			}
		}
		return
	}
	for id, v := range c.sparse {
		visit(id, v)
	}
}
