package crate

import (
	"encoding/binary"
	"fmt"

	"github.com/lighttransport/tinyusdz-go/pkg/tinyerr"
)

// FieldValuePair binds one field name (by token index) to its value.
type FieldValuePair struct {
	TokenIndex int32
	Value      ValueRep
}

// ReadFields parses the FIELDS section: a uint64 count followed by
// that many (tokenIndex uint32, ValueRep uint64) pairs.
func ReadFields(section []byte) ([]FieldValuePair, error) {
	if len(section) < 8 {
		return nil, fmt.Errorf("%w: fields section too small", tinyerr.ErrCrateFormat)
	}
	count := binary.LittleEndian.Uint64(section[0:8])
	pos := 8
	need := pos + int(count)*12
	if count > 1<<24 || need > len(section) {
		return nil, fmt.Errorf("%w: fields section truncated (n=%d)", tinyerr.ErrCrateFormat, count)
	}
	out := make([]FieldValuePair, 0, count)
	for i := uint64(0); i < count; i++ {
		tok := int32(binary.LittleEndian.Uint32(section[pos : pos+4]))
		rep := binary.LittleEndian.Uint64(section[pos+4 : pos+12])
		out = append(out, FieldValuePair{TokenIndex: tok, Value: ValueRep(rep)})
		pos += 12
	}
	return out, nil
}

func WriteFields(fields []FieldValuePair) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(len(fields)))
	for _, f := range fields {
		buf := make([]byte, 12)
		binary.LittleEndian.PutUint32(buf[0:4], uint32(f.TokenIndex))
		binary.LittleEndian.PutUint64(buf[4:12], uint64(f.Value))
		out = append(out, buf...)
	}
	return out
}

// ReadFieldSets parses FIELDSETS: a flat int32 array (via DecodeInts)
// whose runs are split on the sentinel -1, each run being the list of
// FIELDS indices for one Spec.
func ReadFieldSets(section []byte) ([][]int32, error) {
	if len(section) < 8 {
		return nil, fmt.Errorf("%w: fieldsets section too small", tinyerr.ErrCrateFormat)
	}
	n := int(binary.LittleEndian.Uint64(section[0:8]))
	vals, err := DecodeInts(section[8:], n)
	if err != nil {
		return nil, err
	}
	var sets [][]int32
	var cur []int32
	for _, v := range vals {
		if v == -1 {
			sets = append(sets, cur)
			cur = nil
			continue
		}
		cur = append(cur, int32(v))
	}
	if len(cur) > 0 {
		sets = append(sets, cur)
	}
	return sets, nil
}

func WriteFieldSets(sets [][]int32) []byte {
	var flat []int64
	for _, s := range sets {
		for _, v := range s {
			flat = append(flat, int64(v))
		}
		flat = append(flat, -1)
	}
	head := make([]byte, 8)
	binary.LittleEndian.PutUint64(head, uint64(len(flat)))
	return append(head, EncodeInts(flat)...)
}
