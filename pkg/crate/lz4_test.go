package crate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4BlockLiteralOnly(t *testing.T) {
	// token 0x30: litLen=3, matchLen=0 (no trailing match, end of block).
	src := []byte{0x30, 'f', 'o', 'o'}
	out, err := decompressLZ4Block(src, 3)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(out))
}

func TestLZ4BlockWithBackReference(t *testing.T) {
	// literal "A", then a match of length 4 at offset 1 -> "AAAAA".
	src := []byte{0x10, 'A', 0x01, 0x00}
	out, err := decompressLZ4Block(src, 5)
	require.NoError(t, err)
	assert.Equal(t, "AAAAA", string(out))
}

func TestLZ4BlockZeroOffsetIsError(t *testing.T) {
	src := []byte{0x10, 'A', 0x00, 0x00}
	_, err := decompressLZ4Block(src, 5)
	assert.Error(t, err)
}

func TestLZ4ChunkedSingleChunk(t *testing.T) {
	block := []byte{0x30, 'b', 'a', 'r'}
	header := make([]byte, 8)
	header[0] = byte(len(block))
	src := append(header, block...)
	out, err := decompressLZ4Chunked(src, 3)
	require.NoError(t, err)
	assert.Equal(t, "bar", string(out))
}
