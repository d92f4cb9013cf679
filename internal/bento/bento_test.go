package bento_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/bento"
	"github.com/cuemby/shardgraph/internal/datastore"
	"github.com/cuemby/shardgraph/internal/strtable"
)

func openFixture(t *testing.T) *bento.Store {
	t.Helper()
	alloc, err := datastore.Open(t.TempDir(), datastore.CreateOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = alloc.Close() })

	strs, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	store, err := bento.Open(alloc, strs, "docs")
	require.NoError(t, err)
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openFixture(t)

	id, err := store.Put(map[string]any{
		"name": "alice",
		"age":  float64(30),
		"tags": []any{"a", "b"},
	})
	require.NoError(t, err)

	v, ok := store.Get(id)
	require.True(t, ok)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", obj["name"])
	require.Equal(t, float64(30), obj["age"])
	require.Equal(t, []any{"a", "b"}, obj["tags"])
}

func TestArrayAccessor(t *testing.T) {
	store := openFixture(t)
	id, err := store.Put([]any{float64(1), float64(2), float64(3)})
	require.NoError(t, err)

	arr, ok := store.Array(id)
	require.True(t, ok)
	require.Equal(t, []any{float64(1), float64(2), float64(3)}, arr)

	_, ok = store.Object(id)
	require.False(t, ok)
}

func TestStringAccessor(t *testing.T) {
	store := openFixture(t)
	id, err := store.Put("hello")
	require.NoError(t, err)

	s, ok := store.String(id)
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestPutJSONAndMarshal(t *testing.T) {
	store := openFixture(t)
	id, err := store.PutJSON([]byte(`{"k": [1, 2, {"nested": true}]}`))
	require.NoError(t, err)

	raw, err := json.Marshal(store.At(id))
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, []any{float64(1), float64(2), map[string]any{"nested": true}}, back["k"])
}

func TestNumDocsAndDisjointIDs(t *testing.T) {
	store := openFixture(t)
	id1, err := store.Put(float64(1))
	require.NoError(t, err)
	id2, err := store.Put(float64(2))
	require.NoError(t, err)

	require.Equal(t, 2, store.NumDocs())
	require.NotEqual(t, id1, id2)
}

func TestReopenRebuildsDocs(t *testing.T) {
	dir := t.TempDir()
	alloc, err := datastore.Open(dir, datastore.CreateOnly)
	require.NoError(t, err)
	strs, err := strtable.Open(alloc, "strings")
	require.NoError(t, err)
	store, err := bento.Open(alloc, strs, "docs")
	require.NoError(t, err)

	id, err := store.Put(map[string]any{"x": float64(1)})
	require.NoError(t, err)
	require.NoError(t, alloc.Close())

	alloc2, err := datastore.Open(dir, datastore.OpenOnly)
	require.NoError(t, err)
	defer alloc2.Close()
	strs2, err := strtable.Open(alloc2, "strings")
	require.NoError(t, err)
	store2, err := bento.Open(alloc2, strs2, "docs")
	require.NoError(t, err)

	v, ok := store2.Get(id)
	require.True(t, ok)
	require.Equal(t, map[string]any{"x": float64(1)}, v)
}
