package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/shardgraph/internal/errs"
)

// Envelope is the return-code shape of spec.md §6.4: every mutating core
// operation reports it as the process' sole stdout JSON object. Error
// empty means success; warnings accumulate across shards keyed by name.
type Envelope struct {
	Error      string           `json:"error,omitempty"`
	Warnings   map[string]int64 `json:"warnings,omitempty"`
	ReturnInfo map[string]any   `json:"return_info,omitempty"`
}

// emit prints env as JSON to stdout and sets the process exit code: 0 on
// success, non-zero when Error is non-empty (spec.md §6.3).
func emit(env Envelope) {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "shardgraph: encode envelope: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(raw))
	if env.Error != "" {
		os.Exit(1)
	}
}

// fail prints a failure envelope, classifying err against the shared
// sentinel taxonomy (internal/errs) so distinct failure kinds are
// distinguishable by callers scripting against the envelope's error text.
func fail(err error) {
	emit(Envelope{Error: classify(err)})
}

// classify renders err as "<kind>: <message>", matching the Name/Type/
// Structural/I-O/Predicate/Capacity taxonomy of spec.md §7.
func classify(err error) string {
	kinds := []struct {
		sentinel error
		label    string
	}{
		{errs.ErrSeriesExists, "name"},
		{errs.ErrSeriesNotFound, "name"},
		{errs.ErrUnqualifiedName, "name"},
		{errs.ErrUnknownPrefix, "name"},
		{errs.ErrTypeMismatch, "type"},
		{errs.ErrUnsupportedFileType, "type"},
		{errs.ErrStructural, "structural"},
		{errs.ErrUnallocatedRecord, "structural"},
		{errs.ErrStoreExists, "structural"},
		{errs.ErrStoreNotFound, "structural"},
		{errs.ErrIO, "io"},
		{errs.ErrUnknownVariable, "predicate"},
		{errs.ErrCapacity, "capacity"},
		{errs.ErrRecordTombstoned, "structural"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return fmt.Sprintf("%s: %v", k.label, err)
		}
	}
	return err.Error()
}
