package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/shardgraph/internal/parquetio"
)

func TestParseMetaFlagParsesColonPairs(t *testing.T) {
	meta, err := parseMetaFlag([]string{"weight:DOUBLE", "label:byte_array"})
	require.NoError(t, err)
	require.Equal(t, parquetio.Double, meta["weight"])
	require.Equal(t, parquetio.ByteArray, meta["label"])
}

func TestParseMetaFlagRejectsMalformedPair(t *testing.T) {
	_, err := parseMetaFlag([]string{"weight"})
	require.Error(t, err)
}

func TestParseMetaFlagRejectsUnknownType(t *testing.T) {
	_, err := parseMetaFlag([]string{"weight:NOT_A_TYPE"})
	require.Error(t, err)
}

func TestParseScalarValueParsesEachTag(t *testing.T) {
	v, err := parseScalarValue("I64", "42")
	require.NoError(t, err)
	n, ok := v.I64()
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	v, err = parseScalarValue("f64", "3.5")
	require.NoError(t, err)
	f, ok := v.F64()
	require.True(t, ok)
	require.Equal(t, 3.5, f)

	v, err = parseScalarValue("bool", "true")
	require.NoError(t, err)
	b, ok := v.Bool()
	require.True(t, ok)
	require.True(t, b)
}

func TestParseScalarValueRejectsBadLiteral(t *testing.T) {
	_, err := parseScalarValue("I64", "not-a-number")
	require.Error(t, err)
}

func TestParseScalarValueRejectsUnknownTag(t *testing.T) {
	_, err := parseScalarValue("ARR", "x")
	require.Error(t, err)
}

func TestParseIntArg(t *testing.T) {
	n, err := parseIntArg("10")
	require.NoError(t, err)
	require.Equal(t, 10, n)

	_, err = parseIntArg("ten")
	require.Error(t, err)
}
