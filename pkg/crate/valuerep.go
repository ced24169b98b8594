package crate

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
	"github.com/lighttransport/tinyusdz-go/pkg/tinyvalue"
)

// ValueRep is the packed 8-byte representation of one attribute/field
// value as stored in a Crate file, grounded on original_source's
// ValueRep concept (crateFile.h) but re-laid-out here to fit this
// port's wider TypeId space (array TypeIds start at 1000, so the type
// tag needs more than 8 bits):
//
//	bits  0-47  payload: inline bytes, or a byte offset when not inlined
//	bit   48    inlined   (payload holds the value itself, <=6 bytes)
//	bit   49    compressed (payload blob is LZ4-chunked; only meaningful when !inlined)
//	bit   50    array      (value is an array of the scalar TypeId below)
//	bits 51-63  TypeId of the (scalar) element type, 13 bits
type ValueRep uint64

const (
	vrInlinedBit    = 48
	vrCompressedBit = 49
	vrArrayBit      = 50
	vrTypeShift     = 51
	vrPayloadMask   = (uint64(1) << 48) - 1
	vrTypeMask      = uint64(0x1FFF) // 13 bits
)

func MakeValueRep(typeID tinyvalue.TypeId, isArray, inlined, compressed bool, payload uint64) ValueRep {
	var v uint64
	v |= payload & vrPayloadMask
	if inlined {
		v |= 1 << vrInlinedBit
	}
	if compressed {
		v |= 1 << vrCompressedBit
	}
	if isArray {
		v |= 1 << vrArrayBit
	}
	v |= (uint64(typeID) & vrTypeMask) << vrTypeShift
	return ValueRep(v)
}

func (v ValueRep) Payload() uint64    { return uint64(v) & vrPayloadMask }
func (v ValueRep) IsInlined() bool    { return uint64(v)&(1<<vrInlinedBit) != 0 }
func (v ValueRep) IsCompressed() bool { return uint64(v)&(1<<vrCompressedBit) != 0 }
func (v ValueRep) IsArray() bool      { return uint64(v)&(1<<vrArrayBit) != 0 }
func (v ValueRep) TypeId() tinyvalue.TypeId {
	return tinyvalue.TypeId((uint64(v) >> vrTypeShift) & vrTypeMask)
}

func ReadValueRep(data []byte, off int) (ValueRep, error) {
	if off < 0 || off+8 > len(data) {
		return 0, fmt.Errorf("%w: value rep out of range", tinyerr.ErrCrateFormat)
	}
	return ValueRep(binary.LittleEndian.Uint64(data[off : off+8])), nil
}

func WriteValueRep(v ValueRep) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(v))
	return out
}

// DecodeInlinedScalar interprets an inlined ValueRep's 6-byte payload
// as the scalar denoted by its TypeId. Only the small fixed-size
// scalar kinds are supported (bool, int, uint, int64 and uint64 whose
// value fits the 48-bit payload, float, token index); anything else is never
// inlined by the writer and must be resolved through the payload
// offset instead.
func DecodeInlinedScalar(v ValueRep, tokens []string) (tinyvalue.Value, error) {
	if !v.IsInlined() {
		return tinyvalue.Value{}, fmt.Errorf("%w: value is not inlined", tinyerr.ErrCrateFormat)
	}
	payload := v.Payload()
	switch v.TypeId() {
	case tinyvalue.Bool:
		return tinyvalue.New(tinyvalue.Bool, payload != 0), nil
	case tinyvalue.Int:
		return tinyvalue.New(tinyvalue.Int, int32(payload)), nil
	case tinyvalue.UInt:
		return tinyvalue.New(tinyvalue.UInt, uint32(payload)), nil
	case tinyvalue.Int64:
		return tinyvalue.New(tinyvalue.Int64, int64(payload)), nil
	case tinyvalue.UInt64:
		return tinyvalue.New(tinyvalue.UInt64, payload), nil
	case tinyvalue.Float:
		bits := uint32(payload)
		return tinyvalue.New(tinyvalue.Float, math.Float32frombits(bits)), nil
	case tinyvalue.Token:
		idx := int(payload)
		if idx < 0 || idx >= len(tokens) {
			return tinyvalue.Value{}, fmt.Errorf("%w: token index %d out of range", tinyerr.ErrCrateFormat, idx)
		}
		return tinyvalue.NewToken(tinyvalue.Intern(tokens[idx])), nil
	default:
		return tinyvalue.Value{}, fmt.Errorf("%w: type %s is never inlined", tinyerr.ErrCrateFormat, v.TypeId().TypeName())
	}
}
