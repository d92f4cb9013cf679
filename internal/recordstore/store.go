/*
Package recordstore implements the schema-flexible columnar record store of
spec.md §3.3/§4.4: a collection of named, typed series plus a monotone
record-id allocator, with typed and dynamic read/write and filtered
iteration.

Not concurrency-safe; every exported method assumes single-goroutine,
program-order use by the shard that owns the Store (spec.md §5).
*/
package recordstore

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

// SeriesIndex is a stable handle for a series, valid for the life of the
// series (spec.md §4.4 find_series).
type SeriesIndex int

// Store is a record store: a set of uniquely named columns plus a next_id
// counter and a tombstone set (spec.md §3.3).
type Store struct {
	alloc   *datastore.Allocator
	strings *strtable.Store
	rootKey string

	nextID      uint64
	tombstones  map[uint64]struct{}
	seriesIdx   map[string]SeriesIndex
	seriesOrder []string
	columns     []*column.Column
}

// Open creates (if absent) or loads (if present) the record store rooted
// at rootKey inside alloc, sharing strings with the rest of the graph.
func Open(alloc *datastore.Allocator, strings *strtable.Store, rootKey string) (*Store, error) {
	s := &Store{
		alloc:      alloc,
		strings:    strings,
		rootKey:    rootKey,
		tombstones: make(map[uint64]struct{}),
		seriesIdx:  make(map[string]SeriesIndex),
	}

	meta, found, err := s.loadMeta()
	if err != nil {
		return nil, fmt.Errorf("%w: load record store metadata: %v", errs.ErrIO, err)
	}
	if !found {
		if err := s.saveMeta(); err != nil {
			return nil, fmt.Errorf("%w: init record store metadata: %v", errs.ErrIO, err)
		}
		return s, nil
	}

	s.nextID = meta.NextID
	for _, id := range meta.Tombstones {
		s.tombstones[id] = struct{}{}
	}
	for _, sm := range meta.Series {
		col := column.New(sm.Tag, sm.Kind)
		col.Grow(s.nextID)
		if err := s.replayCells(sm.Name, col); err != nil {
			return nil, err
		}
		s.seriesIdx[sm.Name] = SeriesIndex(len(s.columns))
		s.seriesOrder = append(s.seriesOrder, sm.Name)
		s.columns = append(s.columns, col)
	}
	return s, nil
}

func (s *Store) cellsBucket(series string) string {
	return s.rootKey + "#cells#" + series
}

func (s *Store) replayCells(series string, col *column.Column) error {
	return s.alloc.View(s.cellsBucket(series), func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			return col.Set(decodeID(k), decodeCell(v))
		})
	})
}

// AddRecord allocates and returns a new record id; all series are
// implicitly absent at the new id.
func (s *Store) AddRecord() uint64 {
	id := s.nextID
	s.nextID++
	for _, col := range s.columns {
		if col == nil {
			continue
		}
		col.Grow(s.nextID)
	}
	_ = s.saveMeta()
	return id
}

// RemoveRecord tombstones id and drops any present cells across all
// series. Other ids are unaffected (spec.md invariant 2).
func (s *Store) RemoveRecord(id uint64) {
	if id >= s.nextID {
		return
	}
	s.tombstones[id] = struct{}{}
	for i, col := range s.columns {
		if col == nil {
			continue
		}
		col.Remove(id)
		_ = s.alloc.Update(s.cellsBucket(s.seriesOrder[i]), func(b *bbolt.Bucket) error {
			return b.Delete(encodeID(id))
		})
	}
	_ = s.saveMeta()
}

// NumRecords counts non-tombstoned ids < next_id (spec.md invariant 10).
func (s *Store) NumRecords() int {
	return int(s.nextID) - len(s.tombstones)
}

// NextID exposes the allocator's current high-water mark, used by callers
// that need to size auxiliary structures (e.g. graph bitmaps).
func (s *Store) NextID() uint64 { return s.nextID }

// Tombstoned reports whether id has been removed.
func (s *Store) Tombstoned(id uint64) bool {
	_, ok := s.tombstones[id]
	return ok
}

// AddSeries creates a new series, failing with errs.ErrSeriesExists if the
// name is already used.
func (s *Store) AddSeries(name string, tag value.Tag, kind column.Kind) (SeriesIndex, error) {
	if _, ok := s.seriesIdx[name]; ok {
		return 0, errs.ErrSeriesExists
	}
	col := column.New(tag, kind)
	col.Grow(s.nextID)
	idx := SeriesIndex(len(s.columns))
	s.seriesIdx[name] = idx
	s.seriesOrder = append(s.seriesOrder, name)
	s.columns = append(s.columns, col)
	if err := s.alloc.Construct(s.cellsBucket(name)); err != nil {
		return 0, fmt.Errorf("%w: add series %s: %v", errs.ErrCapacity, name, err)
	}
	if err := s.saveMeta(); err != nil {
		return 0, fmt.Errorf("%w: persist series %s: %v", errs.ErrIO, name, err)
	}
	return idx, nil
}

// DropSeries releases a series' backing memory. Subsequent references to
// name fail with errs.ErrSeriesNotFound.
func (s *Store) DropSeries(name string) error {
	idx, ok := s.seriesIdx[name]
	if !ok {
		return errs.ErrSeriesNotFound
	}
	delete(s.seriesIdx, name)
	s.columns[idx] = nil
	return s.saveMeta()
}

// FindSeries resolves name to its stable SeriesIndex.
func (s *Store) FindSeries(name string) (SeriesIndex, bool) {
	idx, ok := s.seriesIdx[name]
	if !ok || s.columns[idx] == nil {
		return 0, false
	}
	return idx, true
}

// SeriesNames lists every live series name, in creation order.
func (s *Store) SeriesNames() []string {
	names := make([]string, 0, len(s.seriesIdx))
	for _, name := range s.seriesOrder {
		if _, ok := s.seriesIdx[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Get returns the typed cell at (series, id).
func (s *Store) Get(series SeriesIndex, id uint64) (value.Value, bool) {
	col := s.columns[series]
	if col == nil {
		return value.Value{}, false
	}
	return col.Get(id)
}

// Set stores v at (series, id), write-through to the backing datastore.
func (s *Store) Set(series SeriesIndex, id uint64, v value.Value) error {
	col := s.columns[series]
	if col == nil {
		return errs.ErrSeriesNotFound
	}
	if err := col.Set(id, v); err != nil {
		return err
	}
	name := s.seriesOrder[series]
	return s.alloc.Update(s.cellsBucket(name), func(b *bbolt.Bucket) error {
		return b.Put(encodeID(id), encodeCell(v))
	})
}

// GetDynamic resolves name to a series and returns its typed-variant value
// at id, or errs.ErrSeriesNotFound if name does not exist.
func (s *Store) GetDynamic(name string, id uint64) (value.Value, error) {
	idx, ok := s.FindSeries(name)
	if !ok {
		return value.Value{}, errs.ErrSeriesNotFound
	}
	v, _ := s.Get(idx, id)
	return v, nil
}

// ForAllRows visits every non-tombstoned id exactly once, in an
// unspecified order (spec.md §3.3).
func (s *Store) ForAllRows(visit func(id uint64)) {
	for id := uint64(0); id < s.nextID; id++ {
		if _, dead := s.tombstones[id]; !dead {
			visit(id)
		}
	}
}

// LoadFactor reports a series' present/total ratio.
func (s *Store) LoadFactor(series SeriesIndex) float64 {
	col := s.columns[series]
	if col == nil {
		return 0
	}
	return col.LoadFactor()
}

// Convert switches a series' physical kind in place.
func (s *Store) Convert(series SeriesIndex, kind column.Kind) error {
	col := s.columns[series]
	if col == nil {
		return errs.ErrSeriesNotFound
	}
	col.Convert(kind)
	return nil
}

// Column exposes the raw column.Column for a series, for packages (graph,
// predicate) that need ForAllDynamic-style dynamic iteration.
func (s *Store) Column(series SeriesIndex) *column.Column { return s.columns[series] }

// Strings returns the interned-string store shared by every series of
// type value.Str in this record store.
func (s *Store) Strings() *strtable.Store { return s.strings }
