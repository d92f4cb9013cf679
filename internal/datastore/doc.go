/*
Package datastore is the persistent-memory allocator that backs every
shard's on-disk state (spec.md §6.1). It wraps go.etcd.io/bbolt, the same
embedded, mmap-backed, copy-on-write B+tree pkg/storage/boltdb.go uses for
cluster state, generalized here from a fixed bucket
list into an arbitrary named construct/find surface: any of
internal/strtable, internal/recordstore, or internal/bento
can reserve a bucket under its own key and treat it as its root.

# Modes

Open accepts one of three modes mirroring spec.md §6.1:

  - CreateOnly: fails if the directory already contains a datastore file.
  - OpenOnly: fails if it does not.
  - OpenReadOnly: opens an existing datastore for concurrent read-only use;
    bbolt's mmap makes this safe against any number of concurrent readers.

# Per-rank layout

A distributed datastore is a directory of per-rank subdirectories,
<dir>/rank-<N>/, one bbolt file per shard. internal/cluster assigns rank
numbers; datastore itself is rank-agnostic and only ever opens one file at
a time.
*/
package datastore
