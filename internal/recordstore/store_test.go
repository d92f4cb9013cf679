package recordstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/recordstore"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

func openFixture(t *testing.T) (*recordstore.Store, *strtable.Store) {
	t.Helper()
	alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = alloc.Close() })

	strs, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)

	store, err := recordstore.Open(alloc, strs, "records")
	require.NoError(t, err)
	return store, strs
}

// S1. Series round trip (spec.md §8 scenario S1).
func TestSeriesRoundTrip(t *testing.T) {
	store, _ := openFixture(t)

	ageIdx, err := store.AddSeries("age", value.I64, column.Dense)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		id := store.AddRecord()
		require.NoError(t, store.Set(ageIdx, id, value.FromI64(int64(10*i))))
	}

	require.Equal(t, 5, store.NumRecords())
	v, ok := store.Get(ageIdx, 3)
	require.True(t, ok)
	got, _ := v.I64()
	require.Equal(t, int64(30), got)

	require.NoError(t, store.Convert(ageIdx, column.Sparse))
	v, ok = store.Get(ageIdx, 3)
	require.True(t, ok)
	got, _ = v.I64()
	require.Equal(t, int64(30), got)

	store.RemoveRecord(2)
	var seen []uint64
	store.ForAllRows(func(id uint64) { seen = append(seen, id) })
	require.ElementsMatch(t, []uint64{0, 1, 3, 4}, seen)

	_, ok = store.Get(ageIdx, 2)
	require.False(t, ok)
}

// Invariant 3: name uniqueness.
func TestAddSeriesDuplicateName(t *testing.T) {
	store, _ := openFixture(t)
	_, err := store.AddSeries("dup", value.Bool, column.Dense)
	require.NoError(t, err)

	_, err = store.AddSeries("dup", value.Bool, column.Dense)
	require.Error(t, err)

	require.NoError(t, store.DropSeries("dup"))
	_, err = store.AddSeries("dup", value.I64, column.Dense)
	require.NoError(t, err)
}

func TestFindSeriesNotFound(t *testing.T) {
	store, _ := openFixture(t)
	_, ok := store.FindSeries("missing")
	require.False(t, ok)
}

// Invariant 2: record-id monotonicity.
func TestRecordIDMonotonic(t *testing.T) {
	store, _ := openFixture(t)
	ids := make([]uint64, 5)
	for i := range ids {
		ids[i] = store.AddRecord()
	}
	for i := 1; i < len(ids); i++ {
		require.Greater(t, ids[i], ids[i-1])
	}
	store.RemoveRecord(ids[1])
	require.False(t, store.Tombstoned(ids[0]))
	require.True(t, store.Tombstoned(ids[1]))
	require.False(t, store.Tombstoned(ids[2]))
}

func TestDynamicReadUnknownSeries(t *testing.T) {
	store, _ := openFixture(t)
	id := store.AddRecord()
	_, err := store.GetDynamic("nope", id)
	require.Error(t, err)
}

func TestStringSeriesThroughStrtable(t *testing.T) {
	store, strs := openFixture(t)
	idx, err := store.AddSeries("name", value.Str, column.Dense)
	require.NoError(t, err)

	id := store.AddRecord()
	loc, err := strs.Intern([]byte("alice"))
	require.NoError(t, err)
	require.NoError(t, store.Set(idx, id, value.FromStrLocator(uint64(loc))))

	v, ok := store.Get(idx, id)
	require.True(t, ok)
	gotLoc, _ := v.StrLocator()
	b, ok := strs.Get(strtable.Locator(gotLoc))
	require.True(t, ok)
	require.Equal(t, "alice", string(b))
}

func TestReopenRebuildsSeries(t *testing.T) {
	dir := t.TempDir()
	alloc, err := datastore.Open(dir, datastore.CreateOnly)
	require.NoError(t, err)
	strs, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	store, err := recordstore.Open(alloc, strs, "records")
	require.NoError(t, err)

	idx, err := store.AddSeries("score", value.F64, column.Dense)
	require.NoError(t, err)
	id := store.AddRecord()
	require.NoError(t, store.Set(idx, id, value.FromF64(3.5)))
	require.NoError(t, alloc.Close())

	alloc2, err := datastore.Open(dir, datastore.OpenOnly)
	require.NoError(t, err)
	defer alloc2.Close()
	strs2, err := strtable.Open(alloc2, "strings")
	require.NoError(t, err)
	store2, err := recordstore.Open(alloc2, strs2, "records")
	require.NoError(t, err)

	idx2, ok := store2.FindSeries("score")
	require.True(t, ok)
	v, ok := store2.Get(idx2, id)
	require.True(t, ok)
	got, _ := v.F64()
	require.InDelta(t, 3.5, got, 1e-9)
	require.Equal(t, 1, store2.NumRecords())
}
