package crate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntCodingRoundTrip(t *testing.T) {
	cases := [][]int64{
		{},
		{0},
		{1, 1, 1, 1},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17},
		{1000000, -1000000, 0, 42, 42, 42},
		{-5, 300, 70000, -70000, 2147483647, -2147483648},
	}
	for _, c := range cases {
		encoded := EncodeInts(c)
		decoded, err := DecodeInts(encoded, len(c))
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestIntCodingTruncatedDescriptorIsFormatError(t *testing.T) {
	_, err := DecodeInts([]byte{1, 2}, 5)
	assert.Error(t, err)
}

func TestIntCodingTruncatedPayloadIsFormatError(t *testing.T) {
	// descriptor selects width4 for element 0 but body is short.
	data := []byte{0x03, 0, 0, 0, 0xAA}
	_, err := DecodeInts(data, 1)
	assert.Error(t, err)
}

func TestIntCodingGroupBoundary(t *testing.T) {
	vals := make([]int64, 33)
	for i := range vals {
		vals[i] = int64(i * i)
	}
	encoded := EncodeInts(vals)
	decoded, err := DecodeInts(encoded, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, decoded)
}
