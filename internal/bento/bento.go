/*
Package bento implements the secondary JSON-document store of SPEC_FULL.md
§3.9: a dense DocID-addressed container for whole JSON trees, grounded on
original_source/include/json_bento/box.hpp's "box" and
details/compact_adjacency_list.hpp's slot-pool discipline.

Rather than one C++ boost::json::value per slot, a document tree is
flattened into three shared pools (nodes, array-of-child-indices,
object-of-key/child-pairs) so that objects and arrays are compact index
ranges into pool storage, the same discipline internal/column uses for
cells. Strings route through the same internal/strtable.Store used by
record-store series, so a string appearing in both a column and a
sampled document is interned once.
*/
package bento

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/strtable"
)

// DocID addresses one root document, disjoint from record-store ids.
type DocID uint64

// nodeKind tags one pool slot. Scalars carry their payload inline;
// container kinds carry an index into arrPool/objPool.
type nodeKind uint8

const (
	kindNull nodeKind = iota
	kindBool
	kindNum
	kindStr
	kindArr
	kindObj
)

type node struct {
	kind nodeKind
	b    bool
	num  float64
	loc  strtable.Locator
	pool int // index into arrPool or objPool, for kindArr/kindObj
}

type objEntry struct {
	Key  string
	Node int // index into nodes
}

// Store is a JSON-document store sharing its string pool with the rest of
// the shard's record stores.
type Store struct {
	alloc *datastore.Allocator
	strs  *strtable.Store
	key   string

	nodes   []node
	arrPool [][]int
	objPool [][]objEntry
	docs    []int // DocID -> index into nodes
}

type persisted struct {
	Nodes []struct {
		Kind nodeKind `json:"k"`
		Bool bool     `json:"b,omitempty"`
		Num  float64  `json:"n,omitempty"`
		Loc  uint64   `json:"s,omitempty"`
		Pool int      `json:"p,omitempty"`
	} `json:"nodes"`
	ArrPool [][]int      `json:"arrays"`
	ObjPool [][]objEntry `json:"objects"`
	Docs    []int        `json:"docs"`
}

// Open creates (if absent) or loads (if present) the document store rooted
// at key, reusing strs for string interning.
func Open(alloc *datastore.Allocator, strs *strtable.Store, key string) (*Store, error) {
	s := &Store{alloc: alloc, strs: strs, key: key}
	if err := alloc.Construct(key); err != nil {
		return nil, fmt.Errorf("%w: open document store: %v", errs.ErrIO, err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) metaKey() []byte { return []byte("__meta__") }

func (s *Store) load() error {
	var raw []byte
	err := s.alloc.View(s.key, func(b *bbolt.Bucket) error {
		v := b.Get(s.metaKey())
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: load document store: %v", errs.ErrIO, err)
	}
	if raw == nil {
		return nil
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: decode document store: %v", errs.ErrIO, err)
	}
	s.nodes = make([]node, len(p.Nodes))
	for i, n := range p.Nodes {
		s.nodes[i] = node{kind: n.Kind, b: n.Bool, num: n.Num, loc: strtable.Locator(n.Loc), pool: n.Pool}
	}
	s.arrPool = p.ArrPool
	s.objPool = p.ObjPool
	s.docs = p.Docs
	return nil
}

func (s *Store) save() error {
	p := persisted{ArrPool: s.arrPool, ObjPool: s.objPool, Docs: s.docs}
	p.Nodes = make([]struct {
		Kind nodeKind `json:"k"`
		Bool bool     `json:"b,omitempty"`
		Num  float64  `json:"n,omitempty"`
		Loc  uint64   `json:"s,omitempty"`
		Pool int      `json:"p,omitempty"`
	}, len(s.nodes))
	for i, n := range s.nodes {
		p.Nodes[i].Kind = n.kind
		p.Nodes[i].Bool = n.b
		p.Nodes[i].Num = n.num
		p.Nodes[i].Loc = uint64(n.loc)
		p.Nodes[i].Pool = n.pool
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode document store: %v", errs.ErrIO, err)
	}
	return s.alloc.Update(s.key, func(b *bbolt.Bucket) error {
		return b.Put(s.metaKey(), raw)
	})
}

// NumDocs returns the number of documents stored.
func (s *Store) NumDocs() int { return len(s.docs) }

// Put flattens tree into the pool and returns a fresh DocID for it. tree
// is either the generic shape produced by encoding/json (map[string]any,
// []any, string, float64, bool, nil) or a row built straight from
// value.Value cells (int64/uint64 in place of float64), since both are
// what graph.selectSample hands it.
func (s *Store) Put(tree any) (DocID, error) {
	idx, err := s.putNode(tree)
	if err != nil {
		return 0, err
	}
	id := DocID(len(s.docs))
	s.docs = append(s.docs, idx)
	if err := s.save(); err != nil {
		return 0, err
	}
	return id, nil
}

// PutJSON decodes raw as a JSON document and stores it, equivalent to
// json.Unmarshal followed by Put.
func (s *Store) PutJSON(raw []byte) (DocID, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: decode json document: %v", errs.ErrIO, err)
	}
	return s.Put(v)
}

func (s *Store) putNode(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return s.addNode(node{kind: kindNull}), nil
	case bool:
		return s.addNode(node{kind: kindBool, b: t}), nil
	case float64:
		return s.addNode(node{kind: kindNum, num: t}), nil
	case int:
		return s.addNode(node{kind: kindNum, num: float64(t)}), nil
	case int64:
		return s.addNode(node{kind: kindNum, num: float64(t)}), nil
	case uint64:
		return s.addNode(node{kind: kindNum, num: float64(t)}), nil
	case string:
		loc, err := s.strs.Intern([]byte(t))
		if err != nil {
			return 0, err
		}
		return s.addNode(node{kind: kindStr, loc: loc}), nil
	case []any:
		children := make([]int, len(t))
		for i, el := range t {
			idx, err := s.putNode(el)
			if err != nil {
				return 0, err
			}
			children[i] = idx
		}
		pool := len(s.arrPool)
		s.arrPool = append(s.arrPool, children)
		return s.addNode(node{kind: kindArr, pool: pool}), nil
	case map[string]any:
		entries := make([]objEntry, 0, len(t))
		for k, el := range t {
			idx, err := s.putNode(el)
			if err != nil {
				return 0, err
			}
			entries = append(entries, objEntry{Key: k, Node: idx})
		}
		pool := len(s.objPool)
		s.objPool = append(s.objPool, entries)
		return s.addNode(node{kind: kindObj, pool: pool}), nil
	default:
		return 0, fmt.Errorf("%w: unsupported document value %T", errs.ErrTypeMismatch, v)
	}
}

func (s *Store) addNode(n node) int {
	s.nodes = append(s.nodes, n)
	return len(s.nodes) - 1
}
