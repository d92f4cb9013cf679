package recordstore

import (
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/value"
)

// seriesMeta is the persisted description of one series: everything needed
// to recreate its column.Column on reopen, before cell replay.
type seriesMeta struct {
	Name string      `json:"name"`
	Tag  value.Tag   `json:"tag"`
	Kind column.Kind  `json:"kind"`
}

type storeMeta struct {
	NextID     uint64       `json:"next_id"`
	Tombstones []uint64     `json:"tombstones"`
	Series     []seriesMeta `json:"series"`
}

const metaKey = "__meta__"

func (s *Store) metaBucket() string { return s.rootKey + "#meta" }

func (s *Store) loadMeta() (storeMeta, bool, error) {
	var m storeMeta
	found := false
	err := s.alloc.View(s.metaBucket(), func(b *bbolt.Bucket) error {
		raw := b.Get([]byte(metaKey))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &m)
	})
	if errors.Is(err, errs.ErrSeriesNotFound) {
		// The meta bucket is only created by the first saveMeta.
		return m, false, nil
	}
	return m, found, err
}

func (s *Store) saveMeta() error {
	m := storeMeta{NextID: s.nextID}
	for id := range s.tombstones {
		m.Tombstones = append(m.Tombstones, id)
	}
	for i, name := range s.seriesOrder {
		col := s.columns[i]
		if col == nil {
			continue
		}
		m.Series = append(m.Series, seriesMeta{Name: name, Tag: col.Tag(), Kind: col.Kind()})
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.alloc.Update(s.metaBucket(), func(b *bbolt.Bucket) error {
		return b.Put([]byte(metaKey), raw)
	})
}
