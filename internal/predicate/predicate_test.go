package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/predicate"
	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

func openStrings(t *testing.T) *strtable.Store {
	t.Helper()
	alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = alloc.Close() })
	strs, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	return strs
}

// S3. a > b over rows (1,2), (3,3), (5,1); row with "a" absent is skipped.
func TestScenarioGreaterThan(t *testing.T) {
	strs := openStrings(t)
	p, err := predicate.Compile([]byte(`{">": [{"var":"a"}, {"var":"b"}]}`))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, p.Vars())

	rows := []map[string]value.Value{
		{"a": value.FromI64(1), "b": value.FromI64(2)},
		{"a": value.FromI64(3), "b": value.FromI64(3)},
		{"a": value.FromI64(5), "b": value.FromI64(1)},
		{"b": value.FromI64(9)}, // "a" absent: must not match
	}

	var matched []int
	for i, row := range rows {
		if p.Eval(row, strs) {
			matched = append(matched, i)
		}
	}
	require.Equal(t, []int{2}, matched)
}

func TestEqualityAndStrings(t *testing.T) {
	strs := openStrings(t)
	loc, err := strs.Intern([]byte("alice"))
	require.NoError(t, err)

	p, err := predicate.Compile([]byte(`{"==": [{"var":"name"}, "alice"]}`))
	require.NoError(t, err)

	row := map[string]value.Value{"name": value.FromStrLocator(uint64(loc))}
	require.True(t, p.Eval(row, strs))

	otherLoc, err := strs.Intern([]byte("bob"))
	require.NoError(t, err)
	row2 := map[string]value.Value{"name": value.FromStrLocator(uint64(otherLoc))}
	require.False(t, p.Eval(row2, strs))
}

func TestStringVsNumericIncomparable(t *testing.T) {
	strs := openStrings(t)
	p, err := predicate.Compile([]byte(`{"==": [{"var":"a"}, 5]}`))
	require.NoError(t, err)

	loc, err := strs.Intern([]byte("5"))
	require.NoError(t, err)
	row := map[string]value.Value{"a": value.FromStrLocator(uint64(loc))}
	require.False(t, p.Eval(row, strs))
}

func TestAndOrNot(t *testing.T) {
	strs := openStrings(t)

	and, err := predicate.Compile([]byte(`{"and": [{">": [{"var":"a"}, 0]}, {"<": [{"var":"a"}, 10]}]}`))
	require.NoError(t, err)
	require.True(t, and.Eval(map[string]value.Value{"a": value.FromI64(5)}, strs))
	require.False(t, and.Eval(map[string]value.Value{"a": value.FromI64(20)}, strs))

	or, err := predicate.Compile([]byte(`{"or": [{"==": [{"var":"a"}, 1]}, {"==": [{"var":"a"}, 2]}]}`))
	require.NoError(t, err)
	require.True(t, or.Eval(map[string]value.Value{"a": value.FromI64(2)}, strs))
	require.False(t, or.Eval(map[string]value.Value{"a": value.FromI64(3)}, strs))

	not, err := predicate.Compile([]byte(`{"not": [{"==": [{"var":"a"}, 1]}]}`))
	require.NoError(t, err)
	require.True(t, not.Eval(map[string]value.Value{"a": value.FromI64(2)}, strs))
	require.False(t, not.Eval(map[string]value.Value{"a": value.FromI64(1)}, strs))
}

func TestInOperator(t *testing.T) {
	strs := openStrings(t)
	p, err := predicate.Compile([]byte(`{"in": [{"var":"a"}, [1, 2, 3]]}`))
	require.NoError(t, err)
	require.True(t, p.Eval(map[string]value.Value{"a": value.FromI64(2)}, strs))
	require.False(t, p.Eval(map[string]value.Value{"a": value.FromI64(9)}, strs))
}

// Invariant 6: determinism and single evaluation per variable per row.
func TestDeterministicAcrossRepeatedEval(t *testing.T) {
	strs := openStrings(t)
	p, err := predicate.Compile([]byte(`{"==": [{"var":"a"}, {"var":"a"}]}`))
	require.NoError(t, err)

	row := map[string]value.Value{"a": value.FromI64(7)}
	for i := 0; i < 10; i++ {
		require.True(t, p.Eval(row, strs))
	}
	require.Equal(t, []string{"a"}, p.Vars())
}

func TestInvalidRule(t *testing.T) {
	_, err := predicate.Compile([]byte(`not json`))
	require.Error(t, err)

	_, err = predicate.Compile([]byte(`{"bogus_op": [1, 2]}`))
	require.Error(t, err)
}
