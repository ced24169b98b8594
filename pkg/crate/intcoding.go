package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// groupSize is the number of integers covered by one 32-bit width
// descriptor (16 elements x 2 bits = 32 bits), per spec §4.5/§9:
// "implemented once and shared between Path decompression and
// compressed-int-array decoding".
const groupSize = 16

// width codes, 2 bits each, packed low-to-high into the descriptor.
const (
	widthSame TypeId2bit = 0 // delta == 0, no bytes consumed
	width1    TypeId2bit = 1 // 1-byte signed delta
	width2    TypeId2bit = 2 // 2-byte signed delta (little-endian)
	width4    TypeId2bit = 3 // 4-byte signed delta (little-endian)
)

// TypeId2bit is the 2-bit per-element width selector.
type TypeId2bit = uint8

// DecodeInts is the single shared group-of-16 integer decoder used by
// both Path delta-array reconstruction and compressed int-array
// decoding (§9's design note). It reconstructs n running-sum values
// from data: ceil(n/16) groups, each a little-endian 32-bit width
// descriptor followed by that group's encoded deltas.
func DecodeInts(data []byte, n int) ([]int64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", tinyerr.ErrCrateFormat, n)
	}
	out := make([]int64, 0, n)
	pos := 0
	var prev int64

	numGroups := (n + groupSize - 1) / groupSize
	for g := 0; g < numGroups; g++ {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated width descriptor at group %d", tinyerr.ErrCrateFormat, g)
		}
		descriptor := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4

		remaining := n - g*groupSize
		count := groupSize
		if remaining < groupSize {
			count = remaining
		}

		for i := 0; i < count; i++ {
			code := uint8((descriptor >> uint(2*i)) & 0x3)
			var delta int64
			switch code {
			case widthSame:
				delta = 0
			case width1:
				if pos+1 > len(data) {
					return nil, fmt.Errorf("%w: truncated 1-byte delta", tinyerr.ErrCrateFormat)
				}
				delta = int64(int8(data[pos]))
				pos++
			case width2:
				if pos+2 > len(data) {
					return nil, fmt.Errorf("%w: truncated 2-byte delta", tinyerr.ErrCrateFormat)
				}
				delta = int64(int16(binary.LittleEndian.Uint16(data[pos : pos+2])))
				pos += 2
			case width4:
				if pos+4 > len(data) {
					return nil, fmt.Errorf("%w: truncated 4-byte delta", tinyerr.ErrCrateFormat)
				}
				delta = int64(int32(binary.LittleEndian.Uint32(data[pos : pos+4])))
				pos += 4
			}
			prev += delta
			out = append(out, prev)
		}
	}

	if len(out) != n {
		return nil, fmt.Errorf("%w: decoded %d values, expected %d", tinyerr.ErrCrateFormat, len(out), n)
	}
	return out, nil
}

// EncodeInts is the DecodeInts counterpart, choosing the smallest
// width that represents each delta. It exists primarily so the
// decoder has an exhaustive round-trip-tested counterpart, per §9.
func EncodeInts(values []int64) []byte {
	var out []byte
	numGroups := (len(values) + groupSize - 1) / groupSize

	for g := 0; g < numGroups; g++ {
		start := g * groupSize
		end := start + groupSize
		if end > len(values) {
			end = len(values)
		}

		var descriptor uint32
		var payload []byte
		var prev int64
		if start > 0 {
			prev = values[start-1]
		}
		for i, v := range values[start:end] {
			delta := v - prev
			prev = v
			var code uint32
			switch {
			case delta == 0:
				code = uint32(widthSame)
			case delta >= -128 && delta <= 127:
				code = uint32(width1)
				payload = append(payload, byte(int8(delta)))
			case delta >= -32768 && delta <= 32767:
				code = uint32(width2)
				buf := make([]byte, 2)
				binary.LittleEndian.PutUint16(buf, uint16(int16(delta)))
				payload = append(payload, buf...)
			default:
				code = uint32(width4)
				buf := make([]byte, 4)
				binary.LittleEndian.PutUint32(buf, uint32(int32(delta)))
				payload = append(payload, buf...)
			}
			descriptor |= code << uint(2*i)
		}

		descBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(descBuf, descriptor)
		out = append(out, descBuf...)
		out = append(out, payload...)
	}
	return out
}
