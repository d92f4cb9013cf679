package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/cuemby/shardgraph/internal/errs"
)

// Mode selects how Open treats an existing datastore file.
type Mode int

const (
	// CreateOnly fails if the datastore file already exists.
	CreateOnly Mode = iota
	// OpenOnly fails if the datastore file does not exist.
	OpenOnly
	// OpenReadOnly opens an existing datastore for read-only access, safe
	// against any number of concurrent readers.
	OpenReadOnly
)

const fileName = "shardgraph.db"

// Allocator is the external persistent-memory allocator of spec.md §6.1: a
// directory managed by bbolt providing named bucket lookup
// (construct<T>(key) / find<T>(key)) and a reserved root bucket.
type Allocator struct {
	db       *bbolt.DB
	readOnly bool
}

// Open opens or creates the datastore rooted at dir, per mode.
func Open(dir string, mode Mode) (*Allocator, error) {
	path := filepath.Join(dir, fileName)

	switch mode {
	case CreateOnly:
		if _, err := os.Stat(path); err == nil {
			return nil, errs.ErrStoreExists
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create datastore dir: %v", errs.ErrIO, err)
		}
	case OpenOnly, OpenReadOnly:
		if _, err := os.Stat(path); err != nil {
			return nil, errs.ErrStoreNotFound
		}
	default:
		return nil, fmt.Errorf("datastore: unknown mode %d", mode)
	}

	opts := &bbolt.Options{ReadOnly: mode == OpenReadOnly}
	db, err := bbolt.Open(path, 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrIO, path, err)
	}

	return &Allocator{db: db, readOnly: mode == OpenReadOnly}, nil
}

// Close closes the backing file.
func (a *Allocator) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("%w: close datastore: %v", errs.ErrIO, err)
	}
	return nil
}

// ReadOnly reports whether this handle was opened OpenReadOnly.
func (a *Allocator) ReadOnly() bool { return a.readOnly }

// Construct reserves (creating if necessary) the named top-level bucket
// that a component treats as its root, the Go stand-in for the allocator's
// construct<T>(key) operation.
func (a *Allocator) Construct(key string) error {
	if a.readOnly {
		return fmt.Errorf("%w: construct on read-only datastore", errs.ErrIO)
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return fmt.Errorf("%w: construct %s: %v", errs.ErrCapacity, key, err)
		}
		return nil
	})
}

// Find reports whether the named root bucket exists without creating it,
// the stand-in for find<T>(key).
func (a *Allocator) Find(key string) (bool, error) {
	found := false
	err := a.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket([]byte(key)) != nil
		return nil
	})
	return found, err
}

// View runs fn against the named bucket inside a read-only transaction.
func (a *Allocator) View(key string, fn func(b *bbolt.Bucket) error) error {
	return a.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(key))
		if b == nil {
			return errs.ErrSeriesNotFound
		}
		return fn(b)
	})
}

// Update runs fn against the named bucket (created if absent) inside a
// read-write transaction.
func (a *Allocator) Update(key string, fn func(b *bbolt.Bucket) error) error {
	if a.readOnly {
		return fmt.Errorf("%w: update on read-only datastore", errs.ErrIO)
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrCapacity, err)
		}
		return fn(b)
	})
}

// RankDir returns the per-shard subdirectory for the given cluster rank
// under a logical datastore root, per spec.md §6.1's "per-rank subdirectory"
// requirement.
func RankDir(root string, rank int) string {
	return filepath.Join(root, fmt.Sprintf("rank-%d", rank))
}
