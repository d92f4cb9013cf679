// Package errs defines the sentinel error taxonomy shared by every core
// package: name errors, type errors, structural errors, I/O errors,
// predicate errors, and capacity errors.
package errs

import "errors"

var (
	// ErrSeriesExists is returned by AddSeries when the name is already in use.
	ErrSeriesExists = errors.New("series exists")
	// ErrSeriesNotFound is returned when a series name does not resolve.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrUnqualifiedName is returned when a graph series name lacks a node./edge. prefix.
	ErrUnqualifiedName = errors.New("unqualified series name")
	// ErrUnknownPrefix is returned when a graph series name's prefix is not node or edge.
	ErrUnknownPrefix = errors.New("unknown series prefix")

	// ErrTypeMismatch is returned by a typed read/write against a series of a different type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedFileType is returned when an ingest column's file type has no store mapping.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrStructural is returned for graph shape violations: a graph missing
	// one of its reserved series, or an attempt to drop a reserved series.
	ErrStructural = errors.New("structural error")

	// ErrUnallocatedRecord is returned when a cell operation targets a record id >= next_id.
	ErrUnallocatedRecord = errors.New("record id not allocated")
	// ErrStoreExists is returned by Open(CreateOnly) when the path already exists.
	ErrStoreExists = errors.New("datastore already exists")
	// ErrStoreNotFound is returned by Open(OpenOnly) when the path does not exist.
	ErrStoreNotFound = errors.New("datastore not found")

	// ErrIO wraps a failure opening, writing, or closing the backing file.
	ErrIO = errors.New("i/o error")

	// ErrUnknownVariable classifies a predicate that references a column
	// that does not exist anywhere in the graph. No graph operation returns
	// it: a where-clause naming a column absent from a shard matches no rows
	// on that shard.
	ErrUnknownVariable = errors.New("predicate references unknown variable")

	// ErrCapacity is returned when the backing allocator cannot satisfy a request.
	ErrCapacity = errors.New("allocator capacity exceeded")

	// ErrRecordTombstoned is returned when an operation targets a removed record.
	ErrRecordTombstoned = errors.New("record is tombstoned")
)
