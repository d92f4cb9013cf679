package parquetio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/value"
)

func TestTagForMapsEveryPhysicalType(t *testing.T) {
	cases := map[FieldType]value.Tag{
		Int32:     value.I64,
		Int64:     value.I64,
		Float:     value.F64,
		Double:    value.F64,
		ByteArray: value.Str,
		Boolean:   value.Bool,
	}
	for ft, want := range cases {
		got, err := TagFor(ft)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTagForUnknownType(t *testing.T) {
	_, err := TagFor(FieldType("GROUP"))
	require.ErrorIs(t, err, errs.ErrUnsupportedFileType)
}

func TestBuildSchemaIncludesUTF8ForStrings(t *testing.T) {
	schema := buildSchema([]Field{
		{Name: "u", Type: ByteArray, Optional: false},
		{Name: "score", Type: Double, Optional: true},
	})
	require.Contains(t, schema, "name=u")
	require.Contains(t, schema, "convertedtype=UTF8")
	require.Contains(t, schema, "name=score")
	require.Contains(t, schema, "OPTIONAL")
}

func TestListFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.parquet")
	require.NoError(t, WriteRows(path, []Field{{Name: "x", Type: Int64, Optional: true}}, false, func(yield func(row map[string]any) bool) {
		yield(map[string]any{"x": float64(1)})
	}))

	files, err := listFiles(path, false)
	require.NoError(t, err)
	require.Equal(t, []string{path}, files)
}

func TestListFilesDirectoryWithoutRecursiveFails(t *testing.T) {
	dir := t.TempDir()
	_, err := listFiles(dir, false)
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestWriteRowsRefusesOverwriteByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.parquet")
	fields := []Field{{Name: "u", Type: ByteArray, Optional: false}}

	write := func() error {
		return WriteRows(path, fields, false, func(yield func(row map[string]any) bool) {
			yield(map[string]any{"u": "a"})
		})
	}
	require.NoError(t, write())
	err := write()
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrStoreExists))
}

func TestWriteThenReadRowsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.parquet")
	fields := []Field{
		{Name: "u", Type: ByteArray, Optional: false},
		{Name: "v", Type: ByteArray, Optional: false},
		{Name: "score", Type: Double, Optional: true},
	}

	want := []map[string]any{
		{"u": "A", "v": "B", "score": 1.5},
		{"u": "B", "v": "C", "score": 2.5},
	}
	i := 0
	require.NoError(t, WriteRows(path, fields, false, func(yield func(row map[string]any) bool) {
		for _, row := range want {
			if !yield(row) {
				break
			}
		}
		i = len(want)
	}))
	require.Equal(t, len(want), i)

	var got []map[string]any
	require.NoError(t, ReadRows(path, false, func(row map[string]any) error {
		got = append(got, row)
		return nil
	}))
	require.Len(t, got, len(want))
	for i, row := range got {
		require.Equal(t, want[i]["u"], row["u"])
		require.Equal(t, want[i]["v"], row["v"])
	}
}

func TestShardFileName(t *testing.T) {
	require.Equal(t, "out_nodes_rank3.parquet", ShardFileName("out", "nodes", 3))
}
