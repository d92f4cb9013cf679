package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketOfIdentityWhenNoBucketSize(t *testing.T) {
	bucket := bucketOf(0)
	require.Equal(t, "7", bucket(int64(7)))
	require.Equal(t, "hello", bucket("hello"))
}

func TestBucketOfFixedWidthNumeric(t *testing.T) {
	bucket := bucketOf(10)
	require.Equal(t, "[0, 10)", bucket(float64(4)))
	require.Equal(t, "[10, 20)", bucket(int64(15)))
	require.Equal(t, "[-10, 0)", bucket(float64(-3)))
}
