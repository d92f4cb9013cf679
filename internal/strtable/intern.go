package strtable

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/errs"
)

// Locator is a stable, opaque handle for an interned string (spec.md §3.4).
// Zero is reserved as NilLocator and is never returned by Intern.
type Locator uint64

// NilLocator is the sentinel meaning "not found"; it is never a real locator.
const NilLocator Locator = 0

type slot struct {
	occupied bool
	hash     uint64
	loc      Locator
}

// Store is the append-only, deduplicated string pool of spec.md §4.1: a
// dense pool of byte ranges plus a hash index from content to locator. The
// index is a hand-rolled open-addressed table (linear probing) rather than
// Go's builtin map, so the probing-distance diagnostic named in spec.md
// §4.1 has something real to measure.
//
// Not concurrency-safe; call from the shard's owning goroutine only
// (spec.md §5).
type Store struct {
	alloc  *datastore.Allocator
	bucket string
	seed   maphash.Seed

	arena [][]byte // index i holds the bytes for Locator(i+1)

	table        []slot
	count        int
	maxProbeSeen int
}

const arenaBucketSuffix = "#arena"

// Open loads (or initializes) a string store rooted at the given bucket
// key inside alloc.
func Open(alloc *datastore.Allocator, key string) (*Store, error) {
	if err := alloc.Construct(key); err != nil {
		return nil, err
	}
	if err := alloc.Construct(key + arenaBucketSuffix); err != nil {
		return nil, err
	}

	s := &Store{
		alloc:  alloc,
		bucket: key,
		seed:   maphash.MakeSeed(),
		table:  make([]slot, 16),
	}

	// Rebuild the arena and hash index from persisted state.
	err := alloc.View(key+arenaBucketSuffix, func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			loc := Locator(binary.BigEndian.Uint64(k))
			for int(loc) > len(s.arena) {
				s.arena = append(s.arena, nil)
			}
			cp := make([]byte, len(v))
			copy(cp, v)
			s.arena[loc-1] = cp
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rebuild string arena: %v", errs.ErrIO, err)
	}
	for i, b := range s.arena {
		s.insert(s.hashOf(b), Locator(i+1))
	}
	s.count = len(s.arena)

	return s, nil
}

func (s *Store) hashOf(b []byte) uint64 {
	var h maphash.Hash
	h.SetSeed(s.seed)
	h.Write(b)
	return h.Sum64()
}

// Intern deduplicates b against the pool, returning the existing locator
// if present or appending and returning a new one.
func (s *Store) Intern(b []byte) (Locator, error) {
	h := s.hashOf(b)
	if loc, ok := s.find(h, b); ok {
		return loc, nil
	}

	loc := Locator(len(s.arena) + 1)
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(loc))

	if err := s.alloc.Update(s.bucket+arenaBucketSuffix, func(bk *bbolt.Bucket) error {
		return bk.Put(key, b)
	}); err != nil {
		return NilLocator, fmt.Errorf("%w: intern: %v", errs.ErrCapacity, err)
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	s.arena = append(s.arena, cp)
	s.count++
	s.maybeGrow()
	s.insert(h, loc)

	return loc, nil
}

// Get returns an immutable view of the bytes behind loc. The returned slice
// must not be mutated by the caller.
func (s *Store) Get(loc Locator) ([]byte, bool) {
	if loc == NilLocator || int(loc) > len(s.arena) {
		return nil, false
	}
	return s.arena[loc-1], true
}

// Len reports the number of distinct interned strings.
func (s *Store) Len() int { return len(s.arena) }

// MaxProbeDistance reports the longest linear-probe chain walked since the
// table was built, a diagnostic named in spec.md §4.1.
func (s *Store) MaxProbeDistance() int { return s.maxProbeSeen }

func (s *Store) find(h uint64, b []byte) (Locator, bool) {
	n := len(s.table)
	start := int(h % uint64(n))
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		sl := s.table[idx]
		if !sl.occupied {
			return NilLocator, false
		}
		if sl.hash == h {
			if existing, ok := s.Get(sl.loc); ok && string(existing) == string(b) {
				return sl.loc, true
			}
		}
	}
	return NilLocator, false
}

func (s *Store) insert(h uint64, loc Locator) {
	n := len(s.table)
	start := int(h % uint64(n))
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if !s.table[idx].occupied {
			s.table[idx] = slot{occupied: true, hash: h, loc: loc}
			if i > s.maxProbeSeen {
				s.maxProbeSeen = i
			}
			return
		}
	}
	// Table is full despite maybeGrow; grow and retry once.
	s.grow()
	s.insert(h, loc)
}

func (s *Store) maybeGrow() {
	if float64(s.count)/float64(len(s.table)) > 0.7 {
		s.grow()
	}
}

func (s *Store) grow() {
	old := s.table
	s.table = make([]slot, len(old)*2)
	s.maxProbeSeen = 0
	for _, sl := range old {
		if sl.occupied {
			s.insert(sl.hash, sl.loc)
		}
	}
}
