package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// decompressLZ4Block decodes a single raw LZ4 block (no frame header,
// no checksum) into a buffer of exactly dstSize bytes. Crate stores
// its compressed sections this way: a sequence of chunks, each a
// uint64 compressed-size prefix followed by one raw LZ4 block (§4.5;
// see decompressLZ4Chunked). No ecosystem LZ4 package was
// available among the retrieved examples, so this is a pack-local,
// from-scratch block decoder restricted to the subset Crate actually
// produces, per SPEC_FULL.md §0.
func decompressLZ4Block(src []byte, dstSize int) ([]byte, error) {
	dst := make([]byte, 0, dstSize)
	i := 0
	for i < len(src) {
		if len(dst) >= dstSize {
			break
		}
		token := src[i]
		i++

		litLen := int(token >> 4)
		if litLen == 15 {
			for {
				if i >= len(src) {
					return nil, fmt.Errorf("%w: lz4 literal length overrun", tinyerr.ErrCrateFormat)
				}
				b := src[i]
				i++
				litLen += int(b)
				if b != 0xFF {
					break
				}
			}
		}
		if i+litLen > len(src) {
			return nil, fmt.Errorf("%w: lz4 literal body overrun", tinyerr.ErrCrateFormat)
		}
		dst = append(dst, src[i:i+litLen]...)
		i += litLen

		if i >= len(src) && len(dst) >= dstSize {
			break
		}
		if i+2 > len(src) {
			// end-of-block literal run with no trailing match.
			break
		}
		offset := int(binary.LittleEndian.Uint16(src[i : i+2]))
		i += 2
		if offset == 0 {
			return nil, fmt.Errorf("%w: lz4 zero match offset", tinyerr.ErrCrateFormat)
		}

		matchLen := int(token & 0x0F)
		if matchLen == 15 {
			for {
				if i >= len(src) {
					return nil, fmt.Errorf("%w: lz4 match length overrun", tinyerr.ErrCrateFormat)
				}
				b := src[i]
				i++
				matchLen += int(b)
				if b != 0xFF {
					break
				}
			}
		}
		matchLen += 4 // LZ4 minimum match length

		start := len(dst) - offset
		if start < 0 {
			return nil, fmt.Errorf("%w: lz4 match offset %d exceeds output size %d", tinyerr.ErrCrateFormat, offset, len(dst))
		}
		for k := 0; k < matchLen; k++ {
			dst = append(dst, dst[start+k])
		}
	}

	if len(dst) != dstSize {
		return nil, fmt.Errorf("%w: lz4 decompressed %d bytes, expected %d", tinyerr.ErrCrateFormat, len(dst), dstSize)
	}
	return dst, nil
}

// decompressLZ4Chunked decodes Crate's chunked LZ4 container: a
// sequence of (uint64 compressedSize, block) pairs with no leading
// chunk count, read until dstSize bytes have been produced, each
// chunk decompressing to at most 2^16 bytes
// (matching the original implementation's fixed chunk size).
const lz4ChunkSize = 1 << 16

func decompressLZ4Chunked(src []byte, dstSize int) ([]byte, error) {
	out := make([]byte, 0, dstSize)
	pos := 0
	for len(out) < dstSize {
		if pos+8 > len(src) {
			return nil, fmt.Errorf("%w: truncated lz4 chunk header", tinyerr.ErrCrateFormat)
		}
		compSize := int(binary.LittleEndian.Uint64(src[pos : pos+8]))
		pos += 8
		if pos+compSize > len(src) {
			return nil, fmt.Errorf("%w: truncated lz4 chunk body", tinyerr.ErrCrateFormat)
		}
		remaining := dstSize - len(out)
		chunkDst := lz4ChunkSize
		if remaining < chunkDst {
			chunkDst = remaining
		}
		block, err := decompressLZ4Block(src[pos:pos+compSize], chunkDst)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		pos += compSize
	}
	return out, nil
}
