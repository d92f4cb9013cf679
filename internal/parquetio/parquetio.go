/*
Package parquetio bridges Parquet files and the record store's typed
cells (spec.md §4.8/§6.2's columnar file bridge): a column-type mapping
table, a per-row visitor shape for ingest, and a dump-one-file-per-shard
writer, grounded on original_source's include/parquet_writer/parquet_writer.cpp
and examples/multiseries/ingest_parquet.cpp.

Schemas are not known at compile time (a graph's node/edge series are
added and dropped at runtime), so ingest and dump both go through
xitongsys/parquet-go's JSON reader/writer rather than a generated struct
type, keeping one row as a map[string]any on both sides of the bridge.
*/
package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/cuemby/shardgraph/internal/errs"
	"github.com/cuemby/shardgraph/internal/value"
)

// FieldType is a Parquet column's physical type.
type FieldType string

const (
	Int32     FieldType = "INT32"
	Int64     FieldType = "INT64"
	Float     FieldType = "FLOAT"
	Double    FieldType = "DOUBLE"
	ByteArray FieldType = "BYTE_ARRAY"
	Boolean   FieldType = "BOOLEAN"
)

// TagFor maps a Parquet column's physical type to the record store value
// type it is ingested as (spec.md §4.8's type table): INT32/INT64 → i64,
// FLOAT/DOUBLE → f64, BYTE_ARRAY → interned string, BOOLEAN → bool.
func TagFor(ft FieldType) (value.Tag, error) {
	switch ft {
	case Int32, Int64:
		return value.I64, nil
	case Float, Double:
		return value.F64, nil
	case ByteArray:
		return value.Str, nil
	case Boolean:
		return value.Bool, nil
	default:
		return value.Null, fmt.Errorf("%w: parquet type %s", errs.ErrUnsupportedFileType, ft)
	}
}

// Field describes one column of a dynamic (runtime-built) Parquet schema.
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
}

type jsonSchemaField struct {
	Tag string `json:"Tag"`
}

type jsonSchema struct {
	Tag    string            `json:"Tag"`
	Fields []jsonSchemaField `json:"Fields"`
}

func buildSchema(fields []Field) string {
	s := jsonSchema{Tag: "name=root, repetitiontype=REQUIRED"}
	for _, f := range fields {
		rep := "REQUIRED"
		if f.Optional {
			rep = "OPTIONAL"
		}
		tag := fmt.Sprintf("name=%s, type=%s, repetitiontype=%s", f.Name, f.Type, rep)
		if f.Type == ByteArray {
			tag += ", convertedtype=UTF8"
		}
		s.Fields = append(s.Fields, jsonSchemaField{Tag: tag})
	}
	raw, _ := json.Marshal(s)
	return string(raw)
}

// listFiles resolves path to the set of .parquet files to read: the file
// itself, or every .parquet file under it if recursive and path is a
// directory (spec.md §4.5's ingest_parquet_edges(path, recursive, ...)).
func listFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", errs.ErrIO, path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	if !recursive {
		return nil, fmt.Errorf("%w: %s is a directory, recursive not set", errs.ErrIO, path)
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".parquet") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", errs.ErrIO, path, err)
	}
	return files, nil
}

// ReadRows visits every row of every Parquet file resolved from path, as a
// map keyed by column name, schema auto-detected from each file's footer.
func ReadRows(path string, recursive bool, visit func(row map[string]any) error) error {
	files, err := listFiles(path, recursive)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := readFile(f, visit); err != nil {
			return err
		}
	}
	return nil
}

func readFile(path string, visit func(row map[string]any) error) error {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return fmt.Errorf("%w: open parquet file %s: %v", errs.ErrIO, path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return fmt.Errorf("%w: read parquet schema %s: %v", errs.ErrIO, path, err)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	raw, err := pr.ReadByNumber(numRows)
	if err != nil {
		return fmt.Errorf("%w: read parquet rows %s: %v", errs.ErrIO, path, err)
	}
	for _, r := range raw {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if err := visit(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRows writes rows (as JSON-encoded records matching fields) to a
// single Parquet file at path, failing if it already exists unless
// overwrite is set (spec.md §4.5's dump_parquet_{nodes,edges} overwrite
// flag).
func WriteRows(path string, fields []Field, overwrite bool, rows func(yield func(row map[string]any) bool)) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s already exists", errs.ErrStoreExists, path)
		}
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("%w: create parquet file %s: %v", errs.ErrIO, path, err)
	}
	defer fw.Close()

	pw, err := writer.NewJSONWriter(buildSchema(fields), fw, 4)
	if err != nil {
		return fmt.Errorf("%w: init parquet writer %s: %v", errs.ErrIO, path, err)
	}

	var writeErr error
	rows(func(row map[string]any) bool {
		raw, err := json.Marshal(row)
		if err != nil {
			writeErr = err
			return false
		}
		if err := pw.Write(string(raw)); err != nil {
			writeErr = fmt.Errorf("%w: write parquet row %s: %v", errs.ErrIO, path, err)
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("%w: finalize parquet file %s: %v", errs.ErrIO, path, err)
	}
	return nil
}

// ShardFileName builds the "<prefix>_{nodes|edges}_rank<N>.parquet" name
// spec.md §4.5's dump_parquet_{nodes,edges} uses for its one-file-per-shard
// output.
func ShardFileName(prefix, which string, rank int) string {
	return fmt.Sprintf("%s_%s_rank%d.parquet", prefix, which, rank)
}
