package strtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/strtable"
)

func openStore(t *testing.T) *strtable.Store {
	t.Helper()
	alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = alloc.Close() })
	s, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	return s
}

// S2. String interning (spec.md §8 scenario S2).
func TestInternDeduplicates(t *testing.T) {
	s := openStore(t)

	l1, err := s.Intern([]byte("hello"))
	require.NoError(t, err)
	l2, err := s.Intern([]byte("world"))
	require.NoError(t, err)
	l3, err := s.Intern([]byte("hello"))
	require.NoError(t, err)

	require.Equal(t, l1, l3)
	require.NotEqual(t, l1, l2)

	got, ok := s.Get(l1)
	require.True(t, ok)
	require.Equal(t, "hello", string(got))
	require.Equal(t, 2, s.Len())
}

func TestNilLocatorNeverReturned(t *testing.T) {
	s := openStore(t)
	for _, str := range []string{"a", "bb", "ccc", ""} {
		loc, err := s.Intern([]byte(str))
		require.NoError(t, err)
		require.NotEqual(t, strtable.NilLocator, loc)
	}
}

func TestGetUnknownLocator(t *testing.T) {
	s := openStore(t)
	_, ok := s.Get(strtable.NilLocator)
	require.False(t, ok)
	_, ok = s.Get(strtable.Locator(999))
	require.False(t, ok)
}

// Invariant 4: intern(b) == intern(b); get(intern(b)) == b, across growth.
func TestInternStressGrowth(t *testing.T) {
	s := openStore(t)
	locs := make(map[string]strtable.Locator)
	for i := 0; i < 500; i++ {
		str := randishString(i)
		loc, err := s.Intern([]byte(str))
		require.NoError(t, err)
		if prev, ok := locs[str]; ok {
			require.Equal(t, prev, loc)
		} else {
			locs[str] = loc
		}
	}
	for str, loc := range locs {
		got, ok := s.Get(loc)
		require.True(t, ok)
		require.Equal(t, str, string(got))
	}
}

func randishString(i int) string {
	// Deliberately produces repeats so dedup is exercised.
	alphabet := "abcdefghij"
	n := i % 7
	out := make([]byte, n)
	for j := range out {
		out[j] = alphabet[(i+j)%len(alphabet)]
	}
	return string(out)
}

func TestReopenRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	alloc, err := datastore.Open(dir, datastore.CreateOnly)
	require.NoError(t, err)

	s, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	loc, err := s.Intern([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, alloc.Close())

	alloc2, err := datastore.Open(dir, datastore.OpenOnly)
	require.NoError(t, err)
	defer alloc2.Close()

	s2, err := strtable.Open(alloc2, "strings")
	require.NoError(t, err)
	got, ok := s2.Get(loc)
	require.True(t, ok)
	require.Equal(t, "persisted", string(got))

	// Re-interning the same content after reopen must still dedup.
	loc2, err := s2.Intern([]byte("persisted"))
	require.NoError(t, err)
	require.Equal(t, loc, loc2)
}
